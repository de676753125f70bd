package redis

import (
	"context"
	"testing"
	"time"

	"training-quiz-service/internal/app"
)

func TestSessionStoreSetsAndClearsKeys(t *testing.T) {
	mr := runMiniredis(t)
	store := NewSessionStore(newClient(mr), time.Minute)

	session := app.NewSession("p1", "jj_sales_game:p1", app.NewStore())
	if got := store.Add(session); got != session {
		t.Fatalf("expected session kept")
	}
	if !mr.Exists("training:session:p1") {
		t.Fatalf("expected redis key to be set")
	}
	if got, _ := mr.Get("training:session:p1"); got != "jj_sales_game:p1" {
		t.Fatalf("expected marker to name the snapshot key, got %q", got)
	}

	if got := store.Add(app.NewSession("p1", "other", app.NewStore())); got != session {
		t.Fatalf("expected existing session returned")
	}

	mr.FastForward(30 * time.Second)
	if err := store.Touch(context.Background(), "p1"); err != nil {
		t.Fatalf("touch: %v", err)
	}
	if ttl := mr.TTL("training:session:p1"); ttl != time.Minute {
		t.Fatalf("expected ttl refreshed, got %v", ttl)
	}

	store.Delete("p1")
	if mr.Exists("training:session:p1") {
		t.Fatalf("expected redis key to be removed")
	}
	if _, ok := store.Get("p1"); ok {
		t.Fatalf("expected session removed")
	}
}
