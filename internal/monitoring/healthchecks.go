package monitoring

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

const (
	HEALTHCHECK_INTERVAL = 30 * time.Second
	HEALTHCHECK_TIMEOUT  = 5 * time.Second
)

// Check probes one dependency. A nil error means healthy.
type Check func(ctx context.Context) error

// Health tracks the last known state of every registered dependency.
type Health struct {
	mu     sync.RWMutex
	checks map[string]*atomic.Bool
}

func NewHealth() *Health {
	return &Health{checks: make(map[string]*atomic.Bool)}
}

// Register adds a dependency that starts out healthy.
func (h *Health) Register(name string) *atomic.Bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	healthy := &atomic.Bool{}
	healthy.Store(true)
	h.checks[name] = healthy
	return healthy
}

// Unhealthy lists failing dependencies in name order.
func (h *Health) Unhealthy() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var names []string
	for name, healthy := range h.checks {
		if !healthy.Load() {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Monitor runs check every interval until ctx is done, storing the result in
// healthy.
func Monitor(ctx context.Context, name string, interval time.Duration, check Check, healthy *atomic.Bool) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			probe(ctx, name, check, healthy)
		}
	}
}

func probe(ctx context.Context, name string, check Check, healthy *atomic.Bool) {
	checkCtx, cancel := context.WithTimeout(ctx, HEALTHCHECK_TIMEOUT)
	defer cancel()

	err := check(checkCtx)
	was := healthy.Swap(err == nil)
	switch {
	case err != nil && was:
		slog.Warn("[HealthCheck] Dependency is unhealthy", slog.String("name", name), slog.String("error", err.Error()))
	case err == nil && !was:
		slog.Info("[HealthCheck] Dependency recovered", slog.String("name", name))
	}
}
