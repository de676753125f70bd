package app_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"training-quiz-service/internal/app"
	"training-quiz-service/internal/bank"
	"training-quiz-service/internal/domain"
	"training-quiz-service/internal/gateway"
	"training-quiz-service/internal/infra/memory"
)

func TestLoginValidatesProfile(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t, app.WithTeams("North", "South", "East", "West"))

	if _, err := service.Login(ctx, "p1", "  ", "North"); !errors.Is(err, domain.ErrInvalidProfile) {
		t.Fatalf("expected invalid profile for blank name, got %v", err)
	}
	if _, err := service.Login(ctx, "p1", "Alice", "Central"); !errors.Is(err, domain.ErrInvalidProfile) {
		t.Fatalf("expected invalid profile for unknown team, got %v", err)
	}

	snap, err := service.Login(ctx, "p1", " Alice ", "North")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if snap.User.Name != "Alice" || snap.CurrentPage != domain.PageGame {
		t.Fatalf("unexpected snapshot after login: %+v", snap)
	}
	if len(snap.Game.QuestionStatus) != 22 {
		t.Fatalf("expected game sized to bank, got %d", len(snap.Game.QuestionStatus))
	}
}

func TestGameRequiresLogin(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t)

	if _, err := service.Overview(ctx, "p1"); !errors.Is(err, domain.ErrNotLoggedIn) {
		t.Fatalf("expected not logged in, got %v", err)
	}
	if _, err := service.SubmitAnswer(ctx, "p1", 0, domain.ListAnswer(2, 3)); !errors.Is(err, domain.ErrNotLoggedIn) {
		t.Fatalf("expected not logged in, got %v", err)
	}
	if _, err := service.State(ctx, ""); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected session error for empty player, got %v", err)
	}
}

func TestQuestionsUnlockInOrder(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t)
	login(t, service, "p1")

	if _, err := service.OpenQuestion(ctx, "p1", 1); !errors.Is(err, domain.ErrQuestionLocked) {
		t.Fatalf("expected question 1 locked, got %v", err)
	}
	if _, err := service.OpenQuestion(ctx, "p1", 22); !errors.Is(err, domain.ErrInvalidIndex) {
		t.Fatalf("expected invalid index, got %v", err)
	}

	view, err := service.OpenQuestion(ctx, "p1", 0)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if view.ID != "q1" || view.Replay || view.Next == nil || *view.Next != 1 {
		t.Fatalf("unexpected view: %+v", view)
	}
	state, _ := service.State(ctx, "p1")
	if state.CurrentPage != domain.PageQuestion || state.Game.CurrentQuestionIndex != 0 {
		t.Fatalf("expected question page at 0, got %+v", state)
	}

	// a wrong answer still unlocks the next question
	res, err := service.SubmitAnswer(ctx, "p1", 0, domain.ListAnswer(0))
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if res.Verdict.Correct || res.Verdict.Points != -1 || !res.FirstAttempt {
		t.Fatalf("unexpected result: %+v", res)
	}
	if _, err := service.OpenQuestion(ctx, "p1", 1); err != nil {
		t.Fatalf("expected question 1 unlocked: %v", err)
	}
}

func TestReplayDoesNotChangeScore(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t)
	login(t, service, "p1")

	first, err := service.SubmitAnswer(ctx, "p1", 0, domain.ListAnswer(0))
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	replay, err := service.SubmitAnswer(ctx, "p1", 0, domain.ListAnswer(2, 3))
	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}
	if replay.FirstAttempt {
		t.Fatalf("expected replay to be flagged")
	}
	if !replay.Verdict.Correct || !replay.Status.Correct {
		t.Fatalf("expected replay verdict recorded, got %+v", replay)
	}
	if replay.TotalScore != first.TotalScore || replay.IncorrectCount != 1 || replay.CorrectCount != 0 {
		t.Fatalf("replay moved aggregates: %+v", replay)
	}

	view, err := service.OpenQuestion(ctx, "p1", 0)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if !view.Replay || view.Status.UserAnswer == nil {
		t.Fatalf("expected replay view with stored answer, got %+v", view)
	}
}

func TestPerfectRunReachesMaxScore(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t)
	login(t, service, "p1")

	var last app.SubmitResult
	for i, q := range service.Bank().Questions() {
		res, err := service.SubmitAnswer(ctx, "p1", i, correctAnswer(q))
		if err != nil {
			t.Fatalf("submit %s: %v", q.ID, err)
		}
		if !res.Verdict.Correct {
			t.Fatalf("expected %s correct, got %+v", q.ID, res.Verdict)
		}
		last = res
	}

	if !last.Complete || last.Next != nil {
		t.Fatalf("expected completed game, got %+v", last)
	}
	if last.TotalScore != service.Bank().MaxScore() || last.TotalScore != 240 {
		t.Fatalf("expected max score 240, got %d", last.TotalScore)
	}
	overview, err := service.Overview(ctx, "p1")
	if err != nil {
		t.Fatalf("overview failed: %v", err)
	}
	if overview.Accuracy != 100 || overview.Progress.Percentage != 100 || !overview.Complete {
		t.Fatalf("unexpected overview: %+v", overview)
	}
}

func TestSubmitRejectsMalformedAnswers(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t)
	login(t, service, "p1")

	for i, q := range service.Bank().Questions() {
		if i > 0 {
			if _, err := service.SubmitAnswer(ctx, "p1", i-1, correctAnswer(service.Bank().Questions()[i-1])); err != nil {
				t.Fatalf("unlock %d: %v", i, err)
			}
		}
		var bad []domain.Answer
		switch q.Kind {
		case domain.KindSingleSelect:
			bad = []domain.Answer{domain.ListAnswer(0), domain.SingleAnswer(len(q.Options))}
		case domain.KindMultiSelect:
			bad = []domain.Answer{domain.SingleAnswer(0), domain.ListAnswer(), domain.ListAnswer(0, 0)}
		case domain.KindBlank, domain.KindBlanks:
			bad = []domain.Answer{domain.ListAnswer(), domain.ListAnswer(make([]int, len(q.CorrectAnswers)+1)...)}
		case domain.KindOrder:
			bad = []domain.Answer{domain.SingleAnswer(0), domain.ListAnswer(0), domain.ListAnswer(make([]int, len(q.Options))...)}
		}
		for _, a := range bad {
			if _, err := service.SubmitAnswer(ctx, "p1", i, a); !errors.Is(err, domain.ErrInvalidAnswer) {
				t.Fatalf("%s (%s) answer %v: expected invalid answer, got %v", q.ID, q.Kind, a, err)
			}
		}
	}
	state, _ := service.State(ctx, "p1")
	if state.Game.QuestionStatus[21].Answered {
		t.Fatalf("rejected answer must not be recorded")
	}
}

func TestProgressSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	service, gw := newTestService(t)
	login(t, service, "p1")

	if _, err := service.SubmitAnswer(ctx, "p1", 0, domain.ListAnswer(2, 3)); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	gw.Flush(ctx)

	restarted := app.NewQuizService(memory.NewSessionStore(), defaultBank(t), gw, app.WithLogger(discardLogger()))
	state, err := restarted.State(ctx, "p1")
	if err != nil {
		t.Fatalf("state failed: %v", err)
	}
	if state.User.Name != "Alice" || state.Game.TotalScore != 10 || !state.Game.QuestionStatus[0].Correct {
		t.Fatalf("expected restored progress, got %+v", state)
	}
	if _, err := restarted.OpenQuestion(ctx, "p1", 1); err != nil {
		t.Fatalf("expected question 1 unlocked after restore: %v", err)
	}
}

func TestIncompatibleSaveStartsFresh(t *testing.T) {
	ctx := context.Background()
	service, gw := newTestService(t)

	gw.Offer("jj_sales_game:p1", domain.Snapshot{
		User:        domain.UserProfile{Name: "Bob", Team: "West"},
		CurrentPage: domain.PageGame,
		Game: domain.GameState{
			QuestionStatus: []domain.QuestionStatus{{Answered: true, Correct: true}},
			CorrectCount:   1,
			TotalScore:     5,
		},
	})
	gw.Flush(ctx)

	state, err := service.State(ctx, "p1")
	if err != nil {
		t.Fatalf("state failed: %v", err)
	}
	if len(state.Game.QuestionStatus) != 22 || state.Game.TotalScore != 0 {
		t.Fatalf("expected fresh game, got %+v", state.Game)
	}
	if state.User.Name != "Bob" {
		t.Fatalf("expected profile kept, got %+v", state.User)
	}
}

func TestResetForgetsPlayer(t *testing.T) {
	ctx := context.Background()
	service, gw := newTestService(t)
	login(t, service, "p1")
	if _, err := service.SubmitAnswer(ctx, "p1", 0, domain.ListAnswer(2, 3)); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	gw.Flush(ctx)

	if err := service.Reset(ctx, "p1"); err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	gw.Flush(ctx)
	if snap := gw.Load(ctx, "jj_sales_game:p1"); snap != nil {
		t.Fatalf("expected saved game removed, got %+v", snap)
	}
	state, err := service.State(ctx, "p1")
	if err != nil {
		t.Fatalf("state failed: %v", err)
	}
	if state.User.LoggedIn() || state.CurrentPage != domain.PageLogin || state.Game.TotalScore != 0 {
		t.Fatalf("expected fresh login state, got %+v", state)
	}
}

func TestWatchReceivesUpdates(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t)

	ch, cancel, err := service.Watch(ctx, "p1")
	if err != nil {
		t.Fatalf("watch failed: %v", err)
	}
	defer cancel()

	login(t, service, "p1")
	var update domain.Snapshot
	select {
	case update = <-ch:
	case <-time.After(time.Second):
		t.Fatalf("no update after login")
	}
	if update.User.Name != "Alice" {
		t.Fatalf("expected login update, got %+v", update)
	}

	cancel()
	if _, ok := <-drain(ch); ok {
		t.Fatalf("expected channel closed after cancel")
	}
}

func TestConcurrentFirstAccessSharesSession(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t)

	const n = 16
	sessions := make([]*app.Session, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := service.Session(ctx, "p1")
			if err != nil {
				t.Errorf("session: %v", err)
				return
			}
			sessions[i] = s
		}(i)
	}
	wg.Wait()
	for i := 1; i < n; i++ {
		if sessions[i] != sessions[0] {
			t.Fatalf("expected one shared session")
		}
	}
}

func TestReleaseEvictsAfterLastConnection(t *testing.T) {
	ctx := context.Background()
	sessions := memory.NewSessionStore()
	gw := gateway.New(memory.NewSnapshotStore(), nil, discardLogger())
	service := app.NewQuizService(sessions, defaultBank(t), gw, app.WithLogger(discardLogger()))

	service.Connect("p1")
	service.Connect("p1")
	login(t, service, "p1")
	if _, err := service.SubmitAnswer(ctx, "p1", 0, domain.ListAnswer(2, 3)); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	service.Release("p1")
	if sessions.Len() != 1 {
		t.Fatalf("session must stay while a connection remains, got %d", sessions.Len())
	}
	service.Release("p1")
	if sessions.Len() != 0 {
		t.Fatalf("expected session evicted, got %d live", sessions.Len())
	}

	gw.Flush(ctx)
	state, err := service.State(ctx, "p1")
	if err != nil {
		t.Fatalf("state failed: %v", err)
	}
	if state.User.Name != "Alice" || state.Game.TotalScore != 10 {
		t.Fatalf("expected progress resumed from storage, got %+v", state)
	}
}

func TestOverviewDoesNotCreateSessions(t *testing.T) {
	ctx := context.Background()
	sessions := memory.NewSessionStore()
	gw := gateway.New(memory.NewSnapshotStore(), nil, discardLogger())
	service := app.NewQuizService(sessions, defaultBank(t), gw, app.WithLogger(discardLogger()))

	for _, id := range []string{"ghost-1", "ghost-2", ""} {
		if _, err := service.Overview(ctx, id); !errors.Is(err, domain.ErrNotLoggedIn) {
			t.Fatalf("%q: expected not logged in, got %v", id, err)
		}
	}
	if sessions.Len() != 0 {
		t.Fatalf("overview created %d sessions", sessions.Len())
	}

	service.Connect("p1")
	login(t, service, "p1")
	service.Release("p1")
	gw.Flush(ctx)

	overview, err := service.Overview(ctx, "p1")
	if err != nil {
		t.Fatalf("overview from storage: %v", err)
	}
	if overview.User.Name != "Alice" || len(overview.Tiles) != 22 {
		t.Fatalf("unexpected overview: %+v", overview)
	}
	if sessions.Len() != 0 {
		t.Fatalf("overview revived a session")
	}
}

func TestConcurrentSubmitsReportOneFirstAttempt(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t)
	login(t, service, "p1")

	const n = 8
	results := make(chan app.SubmitResult, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := service.SubmitAnswer(ctx, "p1", 0, domain.ListAnswer(2, 3))
			if err != nil {
				t.Errorf("submit: %v", err)
				return
			}
			results <- res
		}()
	}
	wg.Wait()
	close(results)

	firsts := 0
	for res := range results {
		if res.FirstAttempt {
			firsts++
		}
	}
	if firsts != 1 {
		t.Fatalf("expected one first attempt, got %d", firsts)
	}
}

func TestResetDropsLateWrites(t *testing.T) {
	ctx := context.Background()
	service, gw := newTestService(t)
	login(t, service, "p1")

	old, err := service.Session(ctx, "p1")
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	updates, cancel, err := service.Watch(ctx, "p1")
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	defer cancel()

	if err := service.Reset(ctx, "p1"); err != nil {
		t.Fatalf("reset failed: %v", err)
	}

	// a request that still holds the old session
	user := domain.UserProfile{Name: "Alice", Team: "North"}
	old.Store().Set(app.Update{User: &user})
	if _, err := old.Store().AnswerQuestion(0, true, domain.ListAnswer(2, 3), 10); !errors.Is(err, domain.ErrSessionClosed) {
		t.Fatalf("expected closed session error, got %v", err)
	}
	gw.Flush(ctx)

	if snap := gw.Load(ctx, "jj_sales_game:p1"); snap != nil {
		t.Fatalf("late write resurrected the cleared snapshot: %+v", snap)
	}
	if _, ok := <-drain(updates); ok {
		t.Fatalf("expected watch of the reset session to close")
	}
	if _, err := service.Overview(ctx, "p1"); !errors.Is(err, domain.ErrNotLoggedIn) {
		t.Fatalf("expected fresh player after reset, got %v", err)
	}
}

func newTestService(t *testing.T, opts ...app.ServiceOption) (*app.QuizService, *gateway.Gateway) {
	t.Helper()
	gw := gateway.New(memory.NewSnapshotStore(), nil, discardLogger())
	opts = append([]app.ServiceOption{app.WithLogger(discardLogger())}, opts...)
	return app.NewQuizService(memory.NewSessionStore(), defaultBank(t), gw, opts...), gw
}

func defaultBank(t *testing.T) *bank.Bank {
	t.Helper()
	b, err := bank.New(bank.Default())
	if err != nil {
		t.Fatalf("default bank: %v", err)
	}
	return b
}

func login(t *testing.T, service *app.QuizService, playerID string) {
	t.Helper()
	if _, err := service.Login(context.Background(), playerID, "Alice", "North"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
}

func correctAnswer(q domain.Question) domain.Answer {
	switch q.Kind {
	case domain.KindSingleSelect:
		return domain.SingleAnswer(q.CorrectAnswers[0])
	case domain.KindOrder:
		return domain.ListAnswer(q.CorrectOrder...)
	default:
		return domain.ListAnswer(q.CorrectAnswers...)
	}
}

// drain skips buffered updates and reports whether the channel is still open.
func drain(ch <-chan domain.Snapshot) <-chan domain.Snapshot {
	for range ch {
	}
	return ch
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
