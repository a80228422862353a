package models

import "time"

// Category is one editorial topic the pipeline produces a post for each run.
// SourceKey is the upstream news category identifier.
type Category struct {
	Name      string `json:"name"`
	SourceKey string `json:"source_key"`
}

// AggregateSourceKey marks the synthetic category that merges all others.
const AggregateSourceKey = "top"

func (c Category) IsAggregate() bool {
	return c.SourceKey == AggregateSourceKey
}

// Article is a normalized news item. Link is its identity.
type Article struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Link        string    `json:"link"`
	Description string    `json:"description"`
	Content     string    `json:"content"`
	PublishedAt time.Time `json:"published_at"`
	ImageURL    string    `json:"image_url"`
	SourceName  string    `json:"source_name"`
}

// Text returns the body when present, otherwise the description.
func (a Article) Text() string {
	if a.Content != "" {
		return a.Content
	}
	return a.Description
}
