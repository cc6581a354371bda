package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/commodity-panel-etl/internal/adapter/newsfeed"
	"github.com/couchcryptid/commodity-panel-etl/internal/adapter/sqlstore"
	"github.com/couchcryptid/commodity-panel-etl/internal/domain"
	"github.com/couchcryptid/commodity-panel-etl/internal/news"
)

var newsCmd = &cobra.Command{
	Use:   "news",
	Short: "Collect news published in a date window",
	Example: `  panelctl news --from 2025-08-16 --to 2025-09-16
  panelctl news --query "milho safrinha" --dsn panel.db`,
	RunE: runNews,
}

var (
	newsQuery   string
	newsFrom    string
	newsTo      string
	newsDSN     string
	newsTimeout time.Duration
	newsFeedURL string
)

func init() {
	rootCmd.AddCommand(newsCmd)
	newsCmd.Flags().StringVar(&newsQuery, "query", news.DefaultQuery, "search terms")
	newsCmd.Flags().StringVar(&newsFrom, "from", "", "first publication day (YYYY-MM-DD, default 30 days ago)")
	newsCmd.Flags().StringVar(&newsTo, "to", "", "last publication day (YYYY-MM-DD, default today)")
	newsCmd.Flags().StringVar(&newsDSN, "dsn", "", "store articles in this database (defaults to DATABASE_URL; none prints only)")
	newsCmd.Flags().DurationVar(&newsTimeout, "timeout", 30*time.Second, "HTTP timeout")
	newsCmd.Flags().StringVar(&newsFeedURL, "feed-url", newsfeed.DefaultBaseURL, "RSS search endpoint")
}

func parseDay(s string, def time.Time) (time.Time, error) {
	if s == "" {
		return domain.Day(def), nil
	}
	return time.Parse(time.DateOnly, s)
}

func runNews(cmd *cobra.Command, _ []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	now := domain.Now()
	from, err := parseDay(newsFrom, now.AddDate(0, 0, -30))
	if err != nil {
		return fmt.Errorf("invalid --from: %w", err)
	}
	to, err := parseDay(newsTo, now)
	if err != nil {
		return fmt.Errorf("invalid --to: %w", err)
	}

	var store news.ArticleStore
	if dsn := newsDSN; dsn != "" || e.cfg.DatabaseURL != "" {
		if dsn == "" {
			dsn = e.cfg.DatabaseURL
		}
		s, err := sqlstore.Open(ctx, dsn)
		if err != nil {
			return err
		}
		defer s.Close()
		store = s
	}

	feed := newsfeed.New(newsfeed.Config{BaseURL: newsFeedURL, Timeout: newsTimeout})
	res, err := news.NewCollector(feed, store, e.logger, e.metrics).Collect(ctx, newsQuery, from, to)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, a := range res.Articles {
		fmt.Fprintf(out, "%s  %s  (%s)\n", a.PublishedOn.Format("02/01/2006"), a.Title, a.Source)
	}
	fmt.Fprintf(out, "\n%d articles, %d new in store\n", len(res.Articles), res.Saved)
	return nil
}
