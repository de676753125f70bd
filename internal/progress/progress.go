// Package progress answers gating and completion questions about a game state.
// Every function is pure; callers pass the freshest snapshot they have.
package progress

import (
	"math"

	"training-quiz-service/internal/domain"
)

// TileState is how a question appears in the question list.
type TileState string

const (
	TileLocked     TileState = "locked"
	TileUnanswered TileState = "unanswered"
	TileCorrect    TileState = "correct"
	TileIncorrect  TileState = "incorrect"
)

// Tile is one entry of the question list.
type Tile struct {
	Index int       `json:"index"`
	State TileState `json:"state"`
}

// CanAccessQuestion reports whether index may be opened: the first question
// always, any other only once its predecessor is answered.
func CanAccessQuestion(index int, game domain.GameState) bool {
	if index == 0 {
		return true
	}
	prev := index - 1
	return prev >= 0 && prev < len(game.QuestionStatus) && game.QuestionStatus[prev].Answered
}

// CanReplayQuestion reports whether index already holds a verdict to review.
func CanReplayQuestion(index int, game domain.GameState) bool {
	return index >= 0 && index < len(game.QuestionStatus) && game.QuestionStatus[index].Answered
}

// NextQuestionIndex returns the index after current, or false at the end of the quiz.
func NextQuestionIndex(current, total int) (int, bool) {
	if current < total-1 {
		return current + 1, true
	}
	return 0, false
}

// IsGameComplete reports whether every one of total questions is answered.
func IsGameComplete(game domain.GameState, total int) bool {
	if len(game.QuestionStatus) != total {
		return false
	}
	for _, st := range game.QuestionStatus {
		if !st.Answered {
			return false
		}
	}
	return true
}

// GetProgress counts answered questions. A zero total reports 0%.
func GetProgress(game domain.GameState, total int) domain.Progress {
	answered := 0
	for _, st := range game.QuestionStatus {
		if st.Answered {
			answered++
		}
	}
	return domain.Progress{
		AnsweredCount: answered,
		TotalCount:    total,
		Percentage:    percent(answered, total),
	}
}

// Accuracy is the share of correct answers over the whole quiz.
func Accuracy(game domain.GameState, total int) int {
	return percent(game.CorrectCount, total)
}

// Tiles describes every question for a list view.
func Tiles(game domain.GameState, total int) []Tile {
	tiles := make([]Tile, total)
	for i := range tiles {
		tiles[i] = Tile{Index: i, State: tileState(i, game)}
	}
	return tiles
}

func tileState(i int, game domain.GameState) TileState {
	switch {
	case !CanAccessQuestion(i, game):
		return TileLocked
	case !CanReplayQuestion(i, game):
		return TileUnanswered
	case game.QuestionStatus[i].Correct:
		return TileCorrect
	default:
		return TileIncorrect
	}
}

func percent(n, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(n) / float64(total)))
}
