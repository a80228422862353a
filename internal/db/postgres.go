package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spacesedan/newscard/internal/models"
)

const createPublishedPosts = `
CREATE TABLE IF NOT EXISTS published_posts (
    id           BIGSERIAL PRIMARY KEY,
    category     TEXT NOT NULL,
    link         TEXT NOT NULL,
    headline     TEXT NOT NULL,
    caption      TEXT NOT NULL,
    source_name  TEXT NOT NULL,
    image_url    TEXT NOT NULL,
    published_at TIMESTAMPTZ NOT NULL,
    expires_at   TIMESTAMPTZ NOT NULL
)`

const insertPublishedPost = `
INSERT INTO published_posts
    (category, link, headline, caption, source_name, image_url, published_at, expires_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

// Rows past expires_at are purged on every insert, giving the table the same
// retention the DynamoDB TTL attribute gives the other backend.
const purgeExpiredPosts = `DELETE FROM published_posts WHERE expires_at < $1`

// Execer is the slice of pgxpool.Pool the ledger writes through.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type PostgresLedger struct {
	db   Execer
	pool *pgxpool.Pool
}

func NewPostgresLedgerWith(db Execer) *PostgresLedger {
	return &PostgresLedger{db: db}
}

// NewPostgresLedger connects, pings and makes sure the ledger table exists.
func NewPostgresLedger(ctx context.Context, dsn string) (*PostgresLedger, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("[Postgres] Unable to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("[Postgres] Failed to ping PostgreSQL: %w", err)
	}
	if _, err := pool.Exec(ctx, createPublishedPosts); err != nil {
		pool.Close()
		return nil, fmt.Errorf("[Postgres] Failed to create published_posts: %w", err)
	}

	slog.Info("[Postgres] Connected to PostgreSQL successfully")
	return &PostgresLedger{db: pool, pool: pool}, nil
}

func (p *PostgresLedger) Ping(ctx context.Context) error {
	if p.pool == nil {
		return nil
	}
	return p.pool.Ping(ctx)
}

func (p *PostgresLedger) Close() {
	if p.pool != nil {
		p.pool.Close()
	}
}

func (p *PostgresLedger) Record(ctx context.Context, post models.PublishedPost) error {
	_, err := p.db.Exec(ctx, insertPublishedPost,
		post.Category, post.Link, post.Headline, post.Caption, post.SourceName,
		post.ImageURL, post.PublishedAt, post.PublishedAt.Add(LEDGER_TTL))
	if err != nil {
		return fmt.Errorf("[Postgres] failed to insert post: %w", err)
	}

	tag, err := p.db.Exec(ctx, purgeExpiredPosts, post.PublishedAt)
	if err != nil {
		// The post is recorded; a failed purge is retried on the next insert.
		slog.Warn("[Postgres] Failed to purge expired posts", slog.Any("error", err))
		return nil
	}
	if n := tag.RowsAffected(); n > 0 {
		slog.Info("[Postgres] Purged expired posts", slog.Int64("rows", n))
	}
	return nil
}
