package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"training-quiz-service/internal/domain"
)

// LocalStore keeps encoded snapshots under a key. Get returns nil, nil when absent.
type LocalStore interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// RemoteSyncer mirrors snapshots to a remote endpoint on a best-effort basis.
type RemoteSyncer interface {
	Sync(ctx context.Context, key string, data []byte) error
}

// Gateway persists store snapshots without ever blocking or failing the caller.
// Offered snapshots are coalesced per key (latest wins) and written by Run.
type Gateway struct {
	local   LocalStore
	remote  RemoteSyncer
	logger  *slog.Logger
	timeout time.Duration

	mu      sync.Mutex
	pending map[string]domain.Snapshot
	order   []string
	wake    chan struct{}

	// flushMu keeps Clear from racing an in-flight write of the same key.
	flushMu sync.Mutex
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithTimeout bounds each local write and remote sync.
func WithTimeout(d time.Duration) Option {
	return func(g *Gateway) {
		if d > 0 {
			g.timeout = d
		}
	}
}

func New(local LocalStore, remote RemoteSyncer, logger *slog.Logger, opts ...Option) *Gateway {
	if remote == nil {
		remote = NewStubSyncer(logger)
	}
	g := &Gateway{
		local:   local,
		remote:  remote,
		logger:  logger,
		timeout: 5 * time.Second,
		pending: make(map[string]domain.Snapshot),
		wake:    make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Load returns the saved snapshot for key, or nil when there is none or it
// cannot be decoded. Failures are logged, never returned.
func (g *Gateway) Load(ctx context.Context, key string) *domain.Snapshot {
	data, err := g.local.Get(ctx, key)
	if err != nil {
		g.logger.Warn("snapshot load failed", "key", key, "error", err)
		return nil
	}
	if len(data) == 0 {
		return nil
	}
	var snap domain.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		g.logger.Warn("discarding unreadable snapshot", "key", key, "error", err)
		return nil
	}
	return &snap
}

// Offer queues snap for key and returns immediately.
func (g *Gateway) Offer(key string, snap domain.Snapshot) {
	g.mu.Lock()
	if _, queued := g.pending[key]; !queued {
		g.order = append(g.order, key)
	}
	g.pending[key] = snap.Clone()
	g.mu.Unlock()

	select {
	case g.wake <- struct{}{}:
	default:
	}
}

// Subscriber adapts Offer to a store listener for key.
func (g *Gateway) Subscriber(key string) func(domain.Snapshot) {
	return func(snap domain.Snapshot) {
		g.Offer(key, snap)
	}
}

// Clear drops any queued write for key and deletes the saved snapshot.
func (g *Gateway) Clear(ctx context.Context, key string) error {
	g.flushMu.Lock()
	defer g.flushMu.Unlock()

	g.mu.Lock()
	if _, ok := g.pending[key]; ok {
		delete(g.pending, key)
		for i, k := range g.order {
			if k == key {
				g.order = append(g.order[:i], g.order[i+1:]...)
				break
			}
		}
	}
	g.mu.Unlock()

	if err := g.local.Delete(ctx, key); err != nil {
		return fmt.Errorf("clear snapshot %s: %w", key, err)
	}
	return nil
}

// Run writes queued snapshots until ctx is done, then drains what is left.
func (g *Gateway) Run(ctx context.Context) {
	for {
		select {
		case <-g.wake:
			g.Flush(context.WithoutCancel(ctx))
		case <-ctx.Done():
			g.Flush(context.WithoutCancel(ctx))
			return
		}
	}
}

// Flush writes every queued snapshot now.
func (g *Gateway) Flush(ctx context.Context) {
	g.flushMu.Lock()
	defer g.flushMu.Unlock()

	for {
		g.mu.Lock()
		if len(g.order) == 0 {
			g.mu.Unlock()
			return
		}
		key := g.order[0]
		g.order = g.order[1:]
		snap := g.pending[key]
		delete(g.pending, key)
		g.mu.Unlock()

		g.write(ctx, key, snap)
	}
}

func (g *Gateway) write(ctx context.Context, key string, snap domain.Snapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		g.logger.Error("snapshot encode failed", "key", key, "error", err)
		return
	}

	localCtx, cancel := context.WithTimeout(ctx, g.timeout)
	err = g.local.Put(localCtx, key, data)
	cancel()
	if err != nil {
		g.logger.Error("snapshot save failed", "key", key, "error", err)
	}

	remoteCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	if err := g.remote.Sync(remoteCtx, key, data); err != nil {
		g.logger.Warn("remote sync failed", "key", key, "error", err)
	}
}

// StubSyncer stands in for the remote endpoint when none is configured.
type StubSyncer struct {
	logger *slog.Logger
}

func NewStubSyncer(logger *slog.Logger) *StubSyncer {
	return &StubSyncer{logger: logger}
}

func (s *StubSyncer) Sync(_ context.Context, key string, data []byte) error {
	s.logger.Debug("remote sync (stub)", "key", key, "bytes", len(data))
	return nil
}
