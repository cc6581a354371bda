package domain

import "time"

// Article is a news item collected for the commodity. Title and PublishedOn
// identify it; PublishedOn is truncated to the day.
type Article struct {
	PublishedOn time.Time `json:"published_on"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	Source      string    `json:"source"`
	URL         string    `json:"url"`
	CollectedAt time.Time `json:"collected_at"`
}
