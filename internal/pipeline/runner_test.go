package pipeline

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type blockingBatch struct {
	started chan struct{}
	release chan struct{}
	runs    atomic.Int32
}

func (b *blockingBatch) Run(_ context.Context) Summary {
	b.runs.Add(1)
	b.started <- struct{}{}
	<-b.release
	return Summary{Results: []CategoryResult{{Category: "Trending", Outcome: OutcomePublished}}}
}

func TestRunner_DropsOverlappingTriggers(t *testing.T) {
	batch := &blockingBatch{started: make(chan struct{}, 1), release: make(chan struct{})}
	r := NewRunner(context.Background(), batch, nil)

	require.True(t, r.Trigger("test"))
	<-batch.started
	require.True(t, r.Running())

	require.False(t, r.Trigger("test"))
	_, ok := r.RunNow(context.Background(), "test")
	require.False(t, ok)

	close(batch.release)
	r.Wait()
	require.False(t, r.Running())
	require.Equal(t, int32(1), batch.runs.Load())

	summary, ok := r.RunNow(context.Background(), "test")
	require.True(t, ok)
	require.Equal(t, 1, summary.Count(OutcomePublished))
	require.Equal(t, int32(2), batch.runs.Load())
}

func TestRunner_TriggerReturnsImmediately(t *testing.T) {
	batch := &blockingBatch{started: make(chan struct{}, 1), release: make(chan struct{})}
	r := NewRunner(context.Background(), batch, nil)

	done := make(chan bool)
	go func() { done <- r.Trigger("http") }()

	select {
	case ok := <-done:
		require.True(t, ok)
	case <-time.After(time.Second):
		t.Fatal("Trigger blocked on the batch")
	}
	close(batch.release)
	r.Wait()
}
