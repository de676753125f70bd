package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"training-quiz-service/internal/bank"
	"training-quiz-service/internal/domain"
	"training-quiz-service/internal/progress"
	"training-quiz-service/internal/scoring"
)

// DefaultStorageKey is the key prefix snapshots are saved under.
const DefaultStorageKey = "jj_sales_game"

// SessionRepository abstracts where live sessions are kept (in-memory, Redis-marked, etc).
type SessionRepository interface {
	Get(playerID string) (*Session, bool)
	// Add stores s unless a session for the same player exists, and returns the one kept.
	Add(s *Session) *Session
	Delete(playerID string)
}

// sessionToucher is implemented by repositories that track player liveness.
type sessionToucher interface {
	Touch(ctx context.Context, playerID string) error
}

// SnapshotGateway persists session snapshots.
type SnapshotGateway interface {
	Load(ctx context.Context, key string) *domain.Snapshot
	Subscriber(key string) func(domain.Snapshot)
	Clear(ctx context.Context, key string) error
}

// QuizService contains the quiz use cases for individual players.
type QuizService struct {
	sessions   SessionRepository
	bank       *bank.Bank
	gateway    SnapshotGateway
	storageKey string
	teams      map[string]struct{}
	logger     *slog.Logger
	sf         singleflight.Group

	connMu sync.Mutex
	conns  map[string]int
}

// ServiceOption configures a QuizService.
type ServiceOption func(*QuizService)

// WithStorageKey sets the snapshot key prefix.
func WithStorageKey(prefix string) ServiceOption {
	return func(s *QuizService) {
		if prefix != "" {
			s.storageKey = prefix
		}
	}
}

// WithTeams restricts login to the given team names.
func WithTeams(teams ...string) ServiceOption {
	return func(s *QuizService) {
		for _, t := range teams {
			s.teams[t] = struct{}{}
		}
	}
}

func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *QuizService) { s.logger = logger }
}

func NewQuizService(sessions SessionRepository, questions *bank.Bank, gateway SnapshotGateway, opts ...ServiceOption) *QuizService {
	s := &QuizService{
		sessions:   sessions,
		bank:       questions,
		gateway:    gateway,
		storageKey: DefaultStorageKey,
		teams:      make(map[string]struct{}),
		logger:     slog.Default(),
		conns:      make(map[string]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Bank exposes the question bank the service grades against.
func (s *QuizService) Bank() *bank.Bank {
	return s.bank
}

// QuestionView is a question as shown to the player, without its answer key.
type QuestionView struct {
	Index   int                   `json:"index"`
	Total   int                   `json:"total"`
	ID      string                `json:"id"`
	Topic   string                `json:"topic"`
	Kind    domain.Kind           `json:"type"`
	Text    string                `json:"question"`
	Options []string              `json:"options"`
	Blanks  int                   `json:"blanks,omitempty"`
	Status  domain.QuestionStatus `json:"status"`
	Replay  bool                  `json:"replay"`
	Next    *int                  `json:"next"`
}

// SubmitResult is the outcome of one submission.
type SubmitResult struct {
	Index          int                   `json:"index"`
	Verdict        domain.Verdict        `json:"verdict"`
	FirstAttempt   bool                  `json:"firstAttempt"`
	Status         domain.QuestionStatus `json:"status"`
	CorrectCount   int                   `json:"correctCount"`
	IncorrectCount int                   `json:"incorrectCount"`
	TotalScore     int                   `json:"totalScore"`
	Progress       domain.Progress       `json:"progress"`
	Next           *int                  `json:"next"`
	Complete       bool                  `json:"complete"`
}

// Overview is the data behind the game screen.
type Overview struct {
	User           domain.UserProfile `json:"user"`
	CurrentPage    domain.Page        `json:"currentPage"`
	CorrectCount   int                `json:"correctCount"`
	IncorrectCount int                `json:"incorrectCount"`
	TotalScore     int                `json:"totalScore"`
	MaxScore       int                `json:"maxScore"`
	Progress       domain.Progress    `json:"progress"`
	Tiles          []progress.Tile    `json:"tiles"`
	Topics         []bank.TopicCount  `json:"topics"`
	Complete       bool               `json:"complete"`
	Accuracy       int                `json:"accuracy"`
	ResumeIndex    int                `json:"resumeIndex"`
}

// Session returns the live session for playerID, loading the saved snapshot
// the first time. Concurrent callers for the same player share one load.
func (s *QuizService) Session(ctx context.Context, playerID string) (*Session, error) {
	if playerID == "" {
		return nil, domain.ErrSessionNotFound
	}
	if sess, ok := s.sessions.Get(playerID); ok {
		if t, ok := s.sessions.(sessionToucher); ok {
			if err := t.Touch(ctx, playerID); err != nil {
				s.logger.Debug("session touch failed", "player", playerID, "error", err)
			}
		}
		return sess, nil
	}

	v, err, _ := s.sf.Do(playerID, func() (interface{}, error) {
		if sess, ok := s.sessions.Get(playerID); ok {
			return sess, nil
		}
		key := s.key(playerID)
		store := NewStore()
		if saved := s.gateway.Load(ctx, key); saved != nil {
			if !store.Restore(*saved, s.bank.Total()) {
				s.logger.Info("saved game incompatible with bank, starting fresh", "player", playerID)
			}
		} else {
			store.InitializeGame(s.bank.Total())
		}

		sess := NewSession(playerID, key, store)
		kept := s.sessions.Add(sess)
		if kept == sess {
			sess.attach(s.gateway.Subscriber(key))
		}
		return kept, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Session), nil
}

// Connect registers an open connection for playerID. Every Connect must be
// paired with a Release.
func (s *QuizService) Connect(playerID string) {
	s.connMu.Lock()
	s.conns[playerID]++
	s.connMu.Unlock()
}

// Release drops a connection registered by Connect. When the last one goes,
// the live session is closed and evicted; its final snapshot has already been
// handed to the gateway, so the player resumes from storage next time.
func (s *QuizService) Release(playerID string) {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	if s.conns[playerID] > 1 {
		s.conns[playerID]--
		return
	}
	delete(s.conns, playerID)
	if sess, ok := s.sessions.Get(playerID); ok {
		sess.Close()
		s.sessions.Delete(playerID)
		s.logger.Debug("session released", "player", playerID)
	}
}

// snapshot reads the player's state without creating a live session: the
// live one if present, else the saved game.
func (s *QuizService) snapshot(ctx context.Context, playerID string) (domain.Snapshot, bool) {
	if playerID == "" {
		return domain.Snapshot{}, false
	}
	if sess, ok := s.sessions.Get(playerID); ok {
		return sess.store.Get(), true
	}
	saved := s.gateway.Load(ctx, s.key(playerID))
	if saved == nil {
		return domain.Snapshot{}, false
	}
	// Restore applies the same compatibility rules a live session would.
	scratch := NewStore()
	scratch.Restore(*saved, s.bank.Total())
	return scratch.Get(), true
}

// State returns the player's current snapshot.
func (s *QuizService) State(ctx context.Context, playerID string) (domain.Snapshot, error) {
	sess, err := s.Session(ctx, playerID)
	if err != nil {
		return domain.Snapshot{}, err
	}
	return sess.store.Get(), nil
}

// Login sets the player's profile and moves them to the game screen.
func (s *QuizService) Login(ctx context.Context, playerID, name, team string) (domain.Snapshot, error) {
	name = strings.TrimSpace(name)
	team = strings.TrimSpace(team)
	if name == "" || team == "" {
		return domain.Snapshot{}, fmt.Errorf("%w: name and team are required", domain.ErrInvalidProfile)
	}
	if len(s.teams) > 0 {
		if _, ok := s.teams[team]; !ok {
			return domain.Snapshot{}, fmt.Errorf("%w: unknown team %q", domain.ErrInvalidProfile, team)
		}
	}

	sess, err := s.Session(ctx, playerID)
	if err != nil {
		return domain.Snapshot{}, err
	}
	user := domain.UserProfile{Name: name, Team: team}
	page := domain.PageGame
	sess.store.Set(Update{User: &user, Page: &page})
	if len(sess.store.Get().Game.QuestionStatus) != s.bank.Total() {
		sess.store.InitializeGame(s.bank.Total())
	}
	s.logger.Info("player logged in", "player", playerID, "team", team)
	return sess.store.Get(), nil
}

// Overview summarizes the player's progress for the game screen.
// It never creates a session, so it is safe for unauthenticated callers.
func (s *QuizService) Overview(ctx context.Context, playerID string) (Overview, error) {
	snap, ok := s.snapshot(ctx, playerID)
	if !ok || !snap.User.LoggedIn() {
		return Overview{}, domain.ErrNotLoggedIn
	}
	total := s.bank.Total()
	return Overview{
		User:           snap.User,
		CurrentPage:    snap.CurrentPage,
		CorrectCount:   snap.Game.CorrectCount,
		IncorrectCount: snap.Game.IncorrectCount,
		TotalScore:     snap.Game.TotalScore,
		MaxScore:       s.bank.MaxScore(),
		Progress:       progress.GetProgress(snap.Game, total),
		Tiles:          progress.Tiles(snap.Game, total),
		Topics:         s.bank.Topics(),
		Complete:       progress.IsGameComplete(snap.Game, total),
		Accuracy:       progress.Accuracy(snap.Game, total),
		ResumeIndex:    snap.Game.CurrentQuestionIndex,
	}, nil
}

// OpenQuestion moves the player to index if it is unlocked.
func (s *QuizService) OpenQuestion(ctx context.Context, playerID string, index int) (QuestionView, error) {
	sess, err := s.loggedIn(ctx, playerID)
	if err != nil {
		return QuestionView{}, err
	}
	q, err := s.accessible(sess, index)
	if err != nil {
		return QuestionView{}, err
	}
	if err := sess.store.SetCurrentQuestion(index); err != nil {
		return QuestionView{}, err
	}
	page := domain.PageQuestion
	sess.store.Set(Update{Page: &page})
	return s.view(index, q, sess.store.Get().Game), nil
}

// SubmitAnswer grades answer for index and records the verdict.
func (s *QuizService) SubmitAnswer(ctx context.Context, playerID string, index int, answer domain.Answer) (SubmitResult, error) {
	sess, err := s.loggedIn(ctx, playerID)
	if err != nil {
		return SubmitResult{}, err
	}
	q, err := s.accessible(sess, index)
	if err != nil {
		return SubmitResult{}, err
	}
	if err := validateAnswer(q, answer); err != nil {
		return SubmitResult{}, err
	}

	verdict := scoring.CheckAnswer(q, answer)
	first, err := sess.store.AnswerQuestion(index, verdict.Correct, answer, verdict.Points)
	if err != nil {
		return SubmitResult{}, err
	}

	game := sess.store.Get().Game
	total := s.bank.Total()
	s.logger.Debug("answer recorded", "player", playerID, "question", q.ID, "correct", verdict.Correct, "points", verdict.Points, "first", first)
	return SubmitResult{
		Index:          index,
		Verdict:        verdict,
		FirstAttempt:   first,
		Status:         game.QuestionStatus[index],
		CorrectCount:   game.CorrectCount,
		IncorrectCount: game.IncorrectCount,
		TotalScore:     game.TotalScore,
		Progress:       progress.GetProgress(game, total),
		Next:           nextIndex(index, total),
		Complete:       progress.IsGameComplete(game, total),
	}, nil
}

// Watch streams the player's state after every change until cancel is called.
func (s *QuizService) Watch(ctx context.Context, playerID string) (<-chan domain.Snapshot, func(), error) {
	sess, err := s.Session(ctx, playerID)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := sess.watch()
	return ch, cancel, nil
}

// Reset forgets the player's progress and profile (sign out / new game).
// Closing the session first guarantees no late notification re-saves the
// cleared snapshot. Other connections of the player observe their watch
// closing and may watch again to follow the new session.
func (s *QuizService) Reset(ctx context.Context, playerID string) error {
	if sess, ok := s.sessions.Get(playerID); ok {
		sess.Close()
		s.sessions.Delete(playerID)
	}
	if err := s.gateway.Clear(ctx, s.key(playerID)); err != nil {
		return err
	}
	s.logger.Info("player reset", "player", playerID)
	return nil
}

func (s *QuizService) key(playerID string) string {
	return s.storageKey + ":" + playerID
}

func (s *QuizService) loggedIn(ctx context.Context, playerID string) (*Session, error) {
	sess, err := s.Session(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if !sess.store.Get().User.LoggedIn() {
		return nil, domain.ErrNotLoggedIn
	}
	return sess, nil
}

// accessible enforces linear gating before a question is shown or graded.
func (s *QuizService) accessible(sess *Session, index int) (domain.Question, error) {
	q, err := s.bank.Question(index)
	if err != nil {
		return domain.Question{}, err
	}
	if !progress.CanAccessQuestion(index, sess.store.Get().Game) {
		return domain.Question{}, fmt.Errorf("%w: %d", domain.ErrQuestionLocked, index)
	}
	return q, nil
}

func (s *QuizService) view(index int, q domain.Question, game domain.GameState) QuestionView {
	total := s.bank.Total()
	v := QuestionView{
		Index:   index,
		Total:   total,
		ID:      q.ID,
		Topic:   q.Topic,
		Kind:    q.Kind,
		Text:    q.Text,
		Options: q.Options,
		Replay:  progress.CanReplayQuestion(index, game),
		Next:    nextIndex(index, total),
	}
	if q.Kind.IsBlank() {
		v.Blanks = strings.Count(q.Text, bank.BlankPlaceholder)
	}
	if index < len(game.QuestionStatus) {
		v.Status = game.QuestionStatus[index]
	}
	return v
}

func nextIndex(index, total int) *int {
	if next, ok := progress.NextQuestionIndex(index, total); ok {
		return &next
	}
	return nil
}

// validateAnswer rejects submissions the presentation layer should never send.
func validateAnswer(q domain.Question, a domain.Answer) error {
	inRange := func(indices []int) error {
		for _, i := range indices {
			if i < 0 || i >= len(q.Options) {
				return fmt.Errorf("%w: option %d out of range", domain.ErrInvalidAnswer, i)
			}
		}
		return nil
	}

	switch q.Kind {
	case domain.KindSingleSelect:
		if _, ok := a.Index(); !ok {
			return fmt.Errorf("%w: %s expects a single option", domain.ErrInvalidAnswer, q.ID)
		}
		return inRange(a.Values())
	case domain.KindMultiSelect:
		picked := a.Indices()
		if !a.IsList() || len(picked) == 0 {
			return fmt.Errorf("%w: %s expects a non-empty selection", domain.ErrInvalidAnswer, q.ID)
		}
		seen := make(map[int]struct{}, len(picked))
		for _, i := range picked {
			if _, dup := seen[i]; dup {
				return fmt.Errorf("%w: option %d selected twice", domain.ErrInvalidAnswer, i)
			}
			seen[i] = struct{}{}
		}
		return inRange(picked)
	case domain.KindBlank, domain.KindBlanks:
		if len(a.Values()) != len(q.CorrectAnswers) {
			return fmt.Errorf("%w: %s expects %d blanks", domain.ErrInvalidAnswer, q.ID, len(q.CorrectAnswers))
		}
		return inRange(a.Values())
	case domain.KindOrder:
		order := a.Indices()
		if !a.IsList() || len(order) != len(q.Options) {
			return fmt.Errorf("%w: %s expects every option ordered", domain.ErrInvalidAnswer, q.ID)
		}
		if err := inRange(order); err != nil {
			return err
		}
		seen := make(map[int]struct{}, len(order))
		for _, i := range order {
			if _, dup := seen[i]; dup {
				return fmt.Errorf("%w: option %d placed twice", domain.ErrInvalidAnswer, i)
			}
			seen[i] = struct{}{}
		}
		return nil
	}
	return nil
}
