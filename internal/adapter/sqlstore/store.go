// Package sqlstore loads normalized series and collected news into a
// relational database. PostgreSQL DSNs use lib/pq; anything else is opened as
// a SQLite file.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/couchcryptid/commodity-panel-etl/internal/domain"
)

const dateLayout = "2006-01-02"

// Store wraps the database handle.
type Store struct {
	db *sqlx.DB
}

// DriverFor picks the database/sql driver for a DSN.
func DriverFor(dsn string) (driver, source string) {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return "postgres", dsn
	case strings.HasPrefix(dsn, "sqlite://"):
		return "sqlite", strings.TrimPrefix(dsn, "sqlite://")
	default:
		return "sqlite", dsn
	}
}

// Open connects and pings the database.
func Open(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("database DSN is required")
	}
	driver, source := DriverFor(dsn)
	db, err := sqlx.Open(driver, source)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if driver == "sqlite" {
		db.SetMaxOpenConns(1)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

type priceRow struct {
	Date    string          `db:"date"`
	Local   sql.NullFloat64 `db:"price_local"`
	Foreign sql.NullFloat64 `db:"price_foreign"`
}

func nullable(v float64) sql.NullFloat64 {
	if domain.IsMissing(v) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

func fromNullable(v sql.NullFloat64) float64 {
	if !v.Valid {
		return domain.Missing()
	}
	return v.Float64
}

// ReplacePrices recreates the prices table with the given series inside one
// transaction and returns the number of rows inserted.
func (s *Store) ReplacePrices(ctx context.Context, series domain.PriceSeries) (int, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range []string{
		`DROP TABLE IF EXISTS prices`,
		`CREATE TABLE prices (
			date          TEXT PRIMARY KEY,
			price_local   DOUBLE PRECISION,
			price_foreign DOUBLE PRECISION
		)`,
	} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return 0, fmt.Errorf("recreate prices table: %w", err)
		}
	}

	insert := tx.Rebind(`INSERT INTO prices (date, price_local, price_foreign) VALUES (?, ?, ?)`)
	for _, p := range series {
		if _, err := tx.ExecContext(ctx, insert, p.Date.Format(dateLayout), nullable(p.Local), nullable(p.Foreign)); err != nil {
			return 0, fmt.Errorf("insert price %s: %w", p.Date.Format(dateLayout), err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit prices: %w", err)
	}
	return len(series), nil
}

// Prices reads the stored series in date order.
func (s *Store) Prices(ctx context.Context) (domain.PriceSeries, error) {
	var rows []priceRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT date, price_local, price_foreign FROM prices ORDER BY date`); err != nil {
		return nil, fmt.Errorf("select prices: %w", err)
	}
	out := make(domain.PriceSeries, 0, len(rows))
	for _, r := range rows {
		d, err := time.Parse(dateLayout, r.Date)
		if err != nil {
			return nil, fmt.Errorf("stored date %q: %w", r.Date, err)
		}
		out = append(out, domain.PricePoint{Date: d, Local: fromNullable(r.Local), Foreign: fromNullable(r.Foreign)})
	}
	return out, nil
}

type articleRow struct {
	PublishedOn string `db:"published_on"`
	Title       string `db:"title"`
	Content     string `db:"content"`
	Source      string `db:"source"`
	URL         string `db:"url"`
	CollectedAt string `db:"collected_at"`
}

// EnsureArticleSchema creates the articles table when it does not exist.
func (s *Store) EnsureArticleSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS articles (
		published_on TEXT NOT NULL,
		title        TEXT NOT NULL,
		content      TEXT NOT NULL,
		source       TEXT NOT NULL,
		url          TEXT NOT NULL,
		collected_at TEXT NOT NULL,
		UNIQUE (title, published_on)
	)`)
	if err != nil {
		return fmt.Errorf("create articles table: %w", err)
	}
	return nil
}

// SaveArticles inserts articles, skipping any whose (title, published_on)
// is already stored. It returns the number of new rows.
func (s *Store) SaveArticles(ctx context.Context, articles []domain.Article) (int, error) {
	if len(articles) == 0 {
		return 0, nil
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	insert := tx.Rebind(`INSERT INTO articles (published_on, title, content, source, url, collected_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (title, published_on) DO NOTHING`)

	saved := 0
	for _, a := range articles {
		res, err := tx.ExecContext(ctx, insert,
			a.PublishedOn.Format(dateLayout), a.Title, a.Content, a.Source, a.URL,
			a.CollectedAt.Format(time.RFC3339))
		if err != nil {
			return 0, fmt.Errorf("insert article %q: %w", a.Title, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, err
		}
		saved += int(n)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit articles: %w", err)
	}
	return saved, nil
}

// ListArticles returns the articles published within [from, to], newest first.
func (s *Store) ListArticles(ctx context.Context, from, to time.Time) ([]domain.Article, error) {
	var rows []articleRow
	query := s.db.Rebind(`SELECT published_on, title, content, source, url, collected_at
		FROM articles
		WHERE published_on >= ? AND published_on <= ?
		ORDER BY published_on DESC, title`)
	if err := s.db.SelectContext(ctx, &rows, query, from.Format(dateLayout), to.Format(dateLayout)); err != nil {
		return nil, fmt.Errorf("select articles: %w", err)
	}

	out := make([]domain.Article, 0, len(rows))
	for _, r := range rows {
		published, err := time.Parse(dateLayout, r.PublishedOn)
		if err != nil {
			return nil, fmt.Errorf("stored date %q: %w", r.PublishedOn, err)
		}
		collected, err := time.Parse(time.RFC3339, r.CollectedAt)
		if err != nil {
			return nil, fmt.Errorf("stored time %q: %w", r.CollectedAt, err)
		}
		out = append(out, domain.Article{
			PublishedOn: published,
			Title:       r.Title,
			Content:     r.Content,
			Source:      r.Source,
			URL:         r.URL,
			CollectedAt: collected,
		})
	}
	return out, nil
}
