package gateway_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"training-quiz-service/internal/app"
	"training-quiz-service/internal/domain"
	"training-quiz-service/internal/gateway"
	"training-quiz-service/internal/infra/memory"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSubscriberPersistsLatestSnapshot(t *testing.T) {
	ctx := context.Background()
	local := memory.NewSnapshotStore()
	gw := gateway.New(local, nil, discardLogger())

	store := app.NewStore()
	store.Subscribe(gw.Subscriber("jj_sales_game:p1"))
	store.InitializeGame(3)
	if _, err := store.AnswerQuestion(0, true, domain.SingleAnswer(1), 5); err != nil {
		t.Fatalf("answer: %v", err)
	}
	gw.Flush(ctx)

	loaded := gw.Load(ctx, "jj_sales_game:p1")
	if loaded == nil {
		t.Fatalf("expected saved snapshot")
	}
	if loaded.Game.TotalScore != 5 || !loaded.Game.QuestionStatus[0].Answered {
		t.Fatalf("expected latest snapshot, got %+v", loaded.Game)
	}
	if i, ok := loaded.Game.QuestionStatus[0].UserAnswer.Index(); !ok || i != 1 {
		t.Fatalf("expected answer 1, got %v", loaded.Game.QuestionStatus[0].UserAnswer)
	}
}

func TestLoadTreatsGarbageAsNoSave(t *testing.T) {
	ctx := context.Background()
	local := memory.NewSnapshotStore()
	_ = local.Put(ctx, "k", []byte("{not json"))
	gw := gateway.New(local, nil, discardLogger())

	if snap := gw.Load(ctx, "k"); snap != nil {
		t.Fatalf("expected nil for unreadable snapshot, got %+v", snap)
	}
	if snap := gw.Load(ctx, "missing"); snap != nil {
		t.Fatalf("expected nil for missing snapshot, got %+v", snap)
	}
}

func TestFailuresNeverReachTheStore(t *testing.T) {
	ctx := context.Background()
	remote := &recordingSyncer{err: errors.New("endpoint down")}
	gw := gateway.New(failingStore{}, remote, discardLogger())

	store := app.NewStore()
	store.Subscribe(gw.Subscriber("k"))
	store.InitializeGame(2)
	if _, err := store.AnswerQuestion(0, false, domain.SingleAnswer(3), -1); err != nil {
		t.Fatalf("answer must succeed despite persistence failures: %v", err)
	}
	gw.Flush(ctx)

	if store.Get().Game.TotalScore != -1 {
		t.Fatalf("in-memory state must survive persistence failure")
	}
	if remote.count() != 1 {
		t.Fatalf("expected one coalesced remote sync, got %d", remote.count())
	}
}

func TestClearDropsQueuedAndSaved(t *testing.T) {
	ctx := context.Background()
	local := memory.NewSnapshotStore()
	gw := gateway.New(local, nil, discardLogger())

	gw.Offer("k", domain.Snapshot{User: domain.UserProfile{Name: "Alice"}})
	gw.Flush(ctx)
	gw.Offer("k", domain.Snapshot{User: domain.UserProfile{Name: "Alice", Team: "East"}})

	if err := gw.Clear(ctx, "k"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	gw.Flush(ctx)
	if snap := gw.Load(ctx, "k"); snap != nil {
		t.Fatalf("expected nothing after clear, got %+v", snap)
	}
}

func TestRunDrainsOnShutdown(t *testing.T) {
	local := memory.NewSnapshotStore()
	gw := gateway.New(local, nil, discardLogger(), gateway.WithTimeout(time.Second))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		gw.Run(ctx)
		close(done)
	}()

	gw.Offer("k", domain.Snapshot{CurrentPage: domain.PageGame})
	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("run did not stop")
	}

	snap := gw.Load(context.Background(), "k")
	if snap == nil || snap.CurrentPage != domain.PageGame {
		t.Fatalf("expected drained snapshot, got %+v", snap)
	}
}

type failingStore struct{}

func (failingStore) Put(context.Context, string, []byte) error   { return errors.New("disk full") }
func (failingStore) Get(context.Context, string) ([]byte, error) { return nil, errors.New("disk gone") }
func (failingStore) Delete(context.Context, string) error        { return nil }

type recordingSyncer struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (r *recordingSyncer) Sync(context.Context, string, []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	return r.err
}

func (r *recordingSyncer) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}
