package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/spacesedan/newscard/internal/models"
	"github.com/stretchr/testify/require"
)

type execCall struct {
	sql  string
	args []any
}

type fakeExecer struct {
	calls    []execCall
	errs     map[string]error
	purgeTag pgconn.CommandTag
}

func (f *fakeExecer) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.calls = append(f.calls, execCall{sql: sql, args: args})
	if sql == purgeExpiredPosts {
		return f.purgeTag, f.errs[sql]
	}
	return pgconn.NewCommandTag("INSERT 0 1"), f.errs[sql]
}

func TestPostgresLedger_RecordInsertsThenPurges(t *testing.T) {
	fake := &fakeExecer{purgeTag: pgconn.NewCommandTag("DELETE 3")}
	published := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	err := NewPostgresLedgerWith(fake).Record(context.Background(), models.PublishedPost{
		Category:    "Business",
		Link:        "https://example.com/port",
		Headline:    "Dhaka Port Expansion Begins",
		PublishedAt: published,
	})
	require.NoError(t, err)
	require.Len(t, fake.calls, 2)

	insert := fake.calls[0]
	require.Equal(t, insertPublishedPost, insert.sql)
	require.Equal(t, "https://example.com/port", insert.args[1])
	require.Equal(t, published.Add(7*24*time.Hour), insert.args[7])

	purge := fake.calls[1]
	require.Equal(t, purgeExpiredPosts, purge.sql)
	require.Equal(t, []any{published}, purge.args)
}

func TestPostgresLedger_InsertErrorSkipsPurge(t *testing.T) {
	fake := &fakeExecer{errs: map[string]error{insertPublishedPost: errors.New("connection reset")}}

	err := NewPostgresLedgerWith(fake).Record(context.Background(), models.PublishedPost{})
	require.ErrorContains(t, err, "connection reset")
	require.Len(t, fake.calls, 1)
}

func TestPostgresLedger_PurgeErrorKeepsRecord(t *testing.T) {
	fake := &fakeExecer{errs: map[string]error{purgeExpiredPosts: errors.New("lock timeout")}}

	err := NewPostgresLedgerWith(fake).Record(context.Background(), models.PublishedPost{})
	require.NoError(t, err)
	require.Len(t, fake.calls, 2)
}
