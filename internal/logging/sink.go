package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"
)

const (
	sinkTimeout = 5 * time.Second
	// sinkQueueSize bounds how many records wait for delivery. Records logged
	// while the queue is full are dropped.
	sinkQueueSize = 256
)

// SinkHandler POSTs every record as a flat JSON object
// {timestamp, level, message, ...attrs} to a remote collector. Delivery is
// fire-and-forget: Handle never blocks on the network and never fails. A
// single worker drains a bounded queue, so a slow sink costs dropped records,
// not goroutines.
type SinkHandler struct {
	level slog.Leveler
	queue *sinkQueue
	attrs []slog.Attr
	group string
}

// sinkQueue is shared by a handler and every handler derived from it.
type sinkQueue struct {
	entries chan []byte
	dropped atomic.Int64
}

func NewSinkHandler(url string, level slog.Leveler, client *http.Client) *SinkHandler {
	if client == nil {
		client = &http.Client{Timeout: sinkTimeout}
	}
	q := &sinkQueue{entries: make(chan []byte, sinkQueueSize)}
	go q.run(url, client)
	return &SinkHandler{level: level, queue: q}
}

// Dropped reports how many records were discarded because the queue was full.
func (h *SinkHandler) Dropped() int64 {
	return h.queue.dropped.Load()
}

func (h *SinkHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *SinkHandler) Handle(_ context.Context, r slog.Record) error {
	entry := make(map[string]any, 3+len(h.attrs)+r.NumAttrs())
	for _, a := range h.attrs {
		addAttr(entry, "", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		addAttr(entry, h.group, a)
		return true
	})
	entry["timestamp"] = r.Time.UTC().Format(time.RFC3339Nano)
	entry["level"] = r.Level.String()
	entry["message"] = r.Message

	body, err := json.Marshal(entry)
	if err != nil {
		return nil
	}
	select {
	case h.queue.entries <- body:
	default:
		h.queue.dropped.Add(1)
	}
	return nil
}

func (q *sinkQueue) run(url string, client *http.Client) {
	for body := range q.entries {
		post(client, url, body)
	}
}

func post(client *http.Client, url string, body []byte) {
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")
	res, err := client.Do(req)
	if err != nil {
		return
	}
	_, _ = io.Copy(io.Discard, res.Body)
	res.Body.Close()
}

func (h *SinkHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	next.attrs = append(next.attrs, h.attrs...)
	for _, a := range attrs {
		if h.group != "" {
			a.Key = h.group + "." + a.Key
		}
		next.attrs = append(next.attrs, a)
	}
	return &next
}

func (h *SinkHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	if h.group != "" {
		next.group = h.group + "." + name
	} else {
		next.group = name
	}
	return &next
}

func addAttr(entry map[string]any, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	key := a.Key
	if prefix != "" {
		key = prefix + "." + key
	}
	if a.Value.Kind() == slog.KindGroup {
		for _, ga := range a.Value.Group() {
			addAttr(entry, key, ga)
		}
		return
	}
	switch v := a.Value.Any().(type) {
	case error:
		entry[key] = v.Error()
	default:
		entry[key] = v
	}
}
