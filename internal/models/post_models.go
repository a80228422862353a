package models

import "time"

// PostStatusQueue is the status every new post is handed to the webhook with.
const PostStatusQueue = "Queue"

// WebhookPost is the JSON body sent to the downstream webhook.
type WebhookPost struct {
	Headline   string `json:"headline"`
	ImageURL   string `json:"imageUrl"`
	Summary    string `json:"summary"`
	SourceLink string `json:"sourceLink"`
	Status     string `json:"status"`
}

// PublishedPost describes one finished post. It is what goes to the Kafka
// event stream and the publication ledger.
type PublishedPost struct {
	Category    string    `json:"category" dynamodbav:"category"`
	Link        string    `json:"link" dynamodbav:"link"`
	Headline    string    `json:"headline" dynamodbav:"headline"`
	Caption     string    `json:"caption" dynamodbav:"caption"`
	SourceName  string    `json:"source_name" dynamodbav:"source_name"`
	ImageURL    string    `json:"image_url" dynamodbav:"image_url"`
	PublishedAt time.Time `json:"published_at" dynamodbav:"published_at"`
	ExpiresAt   int64     `json:"-" dynamodbav:"expires_at"`
}
