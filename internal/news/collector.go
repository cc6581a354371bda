// Package news collects commodity news for a date window and stores it.
package news

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/commodity-panel-etl/internal/domain"
	"github.com/couchcryptid/commodity-panel-etl/internal/observability"
)

// DefaultQuery is the search used when none is given.
const DefaultQuery = "preço do milho"

// Searcher fetches articles for a query.
type Searcher interface {
	Search(ctx context.Context, query string) ([]domain.Article, error)
}

// ArticleStore persists articles, skipping ones already stored.
type ArticleStore interface {
	EnsureArticleSchema(ctx context.Context) error
	SaveArticles(ctx context.Context, articles []domain.Article) (int, error)
}

// Result reports one collection.
type Result struct {
	Articles []domain.Article
	Saved    int
}

// Collector filters search results to a publication window.
type Collector struct {
	search  Searcher
	store   ArticleStore
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewCollector creates a Collector. A nil store only collects.
func NewCollector(search Searcher, store ArticleStore, logger *slog.Logger, metrics *observability.Metrics) *Collector {
	return &Collector{search: search, store: store, logger: logger, metrics: metrics}
}

// Collect searches query and keeps articles published on a day within
// [from, to], both days inclusive.
func (c *Collector) Collect(ctx context.Context, query string, from, to time.Time) (Result, error) {
	if query == "" {
		query = DefaultQuery
	}
	from, to = domain.Day(from), domain.Day(to)
	if to.Before(from) {
		return Result{}, fmt.Errorf("window ends %s before it starts %s", to.Format(time.DateOnly), from.Format(time.DateOnly))
	}

	found, err := c.search.Search(ctx, query)
	if err != nil {
		return Result{}, err
	}

	var res Result
	for _, a := range found {
		day := domain.Day(a.PublishedOn)
		if day.Before(from) || day.After(to) {
			continue
		}
		res.Articles = append(res.Articles, a)
	}
	c.metrics.NewsArticles.WithLabelValues("collected").Add(float64(len(res.Articles)))
	c.logger.Info("news collected",
		"query", query,
		"from", from.Format(time.DateOnly),
		"to", to.Format(time.DateOnly),
		"found", len(found),
		"in_window", len(res.Articles),
	)

	if c.store == nil || len(res.Articles) == 0 {
		return res, nil
	}
	if err := c.store.EnsureArticleSchema(ctx); err != nil {
		return res, err
	}
	res.Saved, err = c.store.SaveArticles(ctx, res.Articles)
	if err != nil {
		return res, err
	}
	c.metrics.NewsArticles.WithLabelValues("saved").Add(float64(res.Saved))
	c.logger.Info("news saved", "saved", res.Saved, "duplicates", len(res.Articles)-res.Saved)
	return res, nil
}
