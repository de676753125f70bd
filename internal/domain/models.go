package domain

// Kind selects both the answer affordance and the grading rule of a question.
type Kind string

const (
	KindSingleSelect Kind = "single-select"
	KindMultiSelect  Kind = "multi-select"
	KindBlank        Kind = "drag-drop-blank"
	KindBlanks       Kind = "drag-drop-blanks"
	KindOrder        Kind = "drag-drop-order"
)

// Kinds lists every supported question kind.
var Kinds = []Kind{KindSingleSelect, KindMultiSelect, KindBlank, KindBlanks, KindOrder}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// IsBlank reports whether k is a fill-in-the-blank kind.
func (k Kind) IsBlank() bool {
	return k == KindBlank || k == KindBlanks
}

// Question is an immutable question definition with its answer key.
type Question struct {
	ID             string   `json:"id"`
	Topic          string   `json:"topic"`
	Kind           Kind     `json:"type"`
	Text           string   `json:"question"`
	Options        []string `json:"options"`
	CorrectAnswers []int    `json:"correctAnswers,omitempty"`
	CorrectOrder   []int    `json:"correctOrder,omitempty"` // drag-drop-order only
}

// Bank is an ordered set of questions.
type Bank struct {
	ID        string     `json:"id"`
	Questions []Question `json:"questions"`
}

// Verdict is the graded outcome of one submission.
type Verdict struct {
	Correct bool `json:"correct"`
	Points  int  `json:"points"`
	Partial bool `json:"partial,omitempty"`
}

// QuestionStatus records the latest verdict for one question.
type QuestionStatus struct {
	Answered   bool    `json:"answered"`
	Correct    bool    `json:"correct"`
	UserAnswer *Answer `json:"userAnswer"`
}

// GameState is the scored part of a player's session.
type GameState struct {
	CurrentQuestionIndex int              `json:"currentQuestionIndex"`
	QuestionStatus       []QuestionStatus `json:"questionStatus"`
	CorrectCount         int              `json:"correctCount"`
	IncorrectCount       int              `json:"incorrectCount"`
	TotalScore           int              `json:"totalScore"`
}

// Clone returns a copy sharing no slices or answers with g.
func (g GameState) Clone() GameState {
	out := g
	if g.QuestionStatus != nil {
		out.QuestionStatus = make([]QuestionStatus, len(g.QuestionStatus))
		for i, st := range g.QuestionStatus {
			out.QuestionStatus[i] = st
			if st.UserAnswer != nil {
				a := st.UserAnswer.Clone()
				out.QuestionStatus[i].UserAnswer = &a
			}
		}
	}
	return out
}

// UserProfile identifies the learner.
type UserProfile struct {
	Name string `json:"name"`
	Team string `json:"team"`
}

// LoggedIn reports whether a name has been set.
func (u UserProfile) LoggedIn() bool {
	return u.Name != ""
}

// Page marks the screen the player was last on.
type Page string

const (
	PageLogin    Page = "login"
	PageGame     Page = "game"
	PageQuestion Page = "question"
)

// Snapshot is the full persisted session.
type Snapshot struct {
	User        UserProfile `json:"user"`
	Game        GameState   `json:"game"`
	CurrentPage Page        `json:"currentPage"`
}

// Clone returns a deep copy of s.
func (s Snapshot) Clone() Snapshot {
	out := s
	out.Game = s.Game.Clone()
	return out
}

// Progress summarizes how many questions are answered.
type Progress struct {
	AnsweredCount int `json:"answeredCount"`
	TotalCount    int `json:"totalCount"`
	Percentage    int `json:"percentage"`
}
