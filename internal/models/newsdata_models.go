package models

import "encoding/json"

// NewsDataResponse is the envelope returned by the NewsData latest endpoint.
// Results is kept raw because the API sends an error object in its place when
// Status is not "success".
type NewsDataResponse struct {
	Status       string          `json:"status"`
	TotalResults int             `json:"totalResults"`
	Results      json.RawMessage `json:"results"`
	NextPage     string          `json:"nextPage"`
}

type NewsDataArticle struct {
	ArticleID   string   `json:"article_id"`
	Title       string   `json:"title"`
	Link        string   `json:"link"`
	Description string   `json:"description"`
	Content     string   `json:"content"`
	PubDate     string   `json:"pubDate"`
	ImageURL    string   `json:"image_url"`
	SourceID    string   `json:"source_id"`
	SourceName  string   `json:"source_name"`
	Category    []string `json:"category"`
}

type NewsDataError struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}
