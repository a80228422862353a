package db

import (
	"context"
	"time"

	"github.com/spacesedan/newscard/internal/models"
)

// LEDGER_TTL is how long a publication record is kept.
const LEDGER_TTL = 7 * 24 * time.Hour

// Ledger records every post that reached the webhook. It is an audit trail
// only; nothing in the pipeline reads it back.
type Ledger interface {
	Record(ctx context.Context, post models.PublishedPost) error
}
