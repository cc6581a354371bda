// Package newsfeed searches an RSS news feed and maps its items to articles.
package newsfeed

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"golang.org/x/time/rate"

	"github.com/couchcryptid/commodity-panel-etl/internal/domain"
)

// DefaultBaseURL is the Google News RSS search endpoint.
const DefaultBaseURL = "https://news.google.com/rss/search"

// Config configures the feed client.
type Config struct {
	BaseURL  string
	Language string // hl parameter, e.g. "pt-BR"
	Country  string // gl parameter, e.g. "BR"
	Timeout  time.Duration
	// RequestsPerSecond paces feed requests. Zero means one per second.
	RequestsPerSecond float64
}

// Client fetches search feeds.
type Client struct {
	cfg     Config
	parser  *gofeed.Parser
	limiter *rate.Limiter
	loc     *time.Location
}

// New creates a Client.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Language == "" {
		cfg.Language = "pt-BR"
	}
	if cfg.Country == "" {
		cfg.Country = "BR"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 1
	}

	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: cfg.Timeout}
	parser.UserAgent = "commodity-panel-etl"

	return &Client{
		cfg:     cfg,
		parser:  parser,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		loc:     saoPaulo(),
	}
}

func saoPaulo() *time.Location {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		return time.FixedZone("BRT", -3*60*60)
	}
	return loc
}

// SearchURL builds the feed URL for a query.
func (c *Client) SearchURL(query string) string {
	v := url.Values{}
	v.Set("q", query)
	v.Set("hl", c.cfg.Language)
	v.Set("gl", c.cfg.Country)
	v.Set("ceid", c.cfg.Country+":"+strings.SplitN(c.cfg.Language, "-", 2)[0])
	return c.cfg.BaseURL + "?" + v.Encode()
}

// Search fetches the feed for query and returns its dated items as articles.
// Items without a publication date are dropped.
func (c *Client) Search(ctx context.Context, query string) ([]domain.Article, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	feed, err := c.parser.ParseURLWithContext(c.SearchURL(query), ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch news feed: %w", err)
	}

	collected := domain.Now().In(c.loc)
	out := make([]domain.Article, 0, len(feed.Items))
	for _, item := range feed.Items {
		a, ok := toArticle(item, feed.Title, collected)
		if ok {
			out = append(out, a)
		}
	}
	return out, nil
}

func toArticle(item *gofeed.Item, feedTitle string, collected time.Time) (domain.Article, bool) {
	published := item.PublishedParsed
	if published == nil {
		published = item.UpdatedParsed
	}
	if published == nil {
		return domain.Article{}, false
	}

	content := strings.TrimSpace(item.Description)
	if content == "" {
		content = strings.TrimSpace(item.Content)
	}
	source := feedTitle
	if item.Author != nil && item.Author.Name != "" {
		source = item.Author.Name
	}

	return domain.Article{
		PublishedOn: domain.Day(*published),
		Title:       strings.TrimSpace(item.Title),
		Content:     content,
		Source:      source,
		URL:         item.Link,
		CollectedAt: collected,
	}, true
}
