package bank

import (
	"fmt"
	"strings"

	"training-quiz-service/internal/domain"
	"training-quiz-service/internal/scoring"
)

// BlankPlaceholder marks a fill-in slot in a question's text.
const BlankPlaceholder = "________"

// Bank is a validated, read-only question bank.
type Bank struct {
	id        string
	questions []domain.Question
	byID      map[string]int
}

// TopicCount is the number of questions in one topic.
type TopicCount struct {
	Topic string `json:"topic"`
	Count int    `json:"count"`
}

// New validates b and wraps it. The caller's slices are copied.
func New(b domain.Bank) (*Bank, error) {
	if len(b.Questions) == 0 {
		return nil, fmt.Errorf("%w: bank %q has no questions", domain.ErrInvalidBank, b.ID)
	}
	out := &Bank{
		id:        b.ID,
		questions: make([]domain.Question, len(b.Questions)),
		byID:      make(map[string]int, len(b.Questions)),
	}
	for i, q := range b.Questions {
		if err := Validate(q); err != nil {
			return nil, err
		}
		if _, dup := out.byID[q.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate question id %q", domain.ErrInvalidBank, q.ID)
		}
		out.byID[q.ID] = i
		out.questions[i] = cloneQuestion(q)
	}
	return out, nil
}

// Validate checks a single definition against the bank invariants.
func Validate(q domain.Question) error {
	if q.ID == "" {
		return fmt.Errorf("%w: question without id", domain.ErrInvalidBank)
	}
	if !q.Kind.Valid() {
		return fmt.Errorf("%w: %s has unknown type %q", domain.ErrInvalidBank, q.ID, q.Kind)
	}
	if len(q.Options) == 0 {
		return fmt.Errorf("%w: %s has no options", domain.ErrInvalidBank, q.ID)
	}
	for _, idx := range append(append([]int(nil), q.CorrectAnswers...), q.CorrectOrder...) {
		if idx < 0 || idx >= len(q.Options) {
			return fmt.Errorf("%w: %s key index %d out of range", domain.ErrInvalidBank, q.ID, idx)
		}
	}

	switch q.Kind {
	case domain.KindSingleSelect:
		if len(q.CorrectAnswers) != 1 {
			return fmt.Errorf("%w: %s needs exactly one correct answer", domain.ErrInvalidBank, q.ID)
		}
	case domain.KindMultiSelect:
		if len(q.CorrectAnswers) == 0 {
			return fmt.Errorf("%w: %s needs at least one correct answer", domain.ErrInvalidBank, q.ID)
		}
	case domain.KindBlank, domain.KindBlanks:
		if blanks := strings.Count(q.Text, BlankPlaceholder); blanks != len(q.CorrectAnswers) {
			return fmt.Errorf("%w: %s has %d blanks but %d keys", domain.ErrInvalidBank, q.ID, blanks, len(q.CorrectAnswers))
		}
	case domain.KindOrder:
		if !isPermutation(q.CorrectOrder, len(q.Options)) {
			return fmt.Errorf("%w: %s correct order is not a permutation of its options", domain.ErrInvalidBank, q.ID)
		}
	}
	return nil
}

func isPermutation(order []int, n int) bool {
	if len(order) != n {
		return false
	}
	seen := make([]bool, n)
	for _, i := range order {
		if seen[i] {
			return false
		}
		seen[i] = true
	}
	return true
}

func (b *Bank) ID() string { return b.id }

// Total is the number of questions.
func (b *Bank) Total() int { return len(b.questions) }

// Question returns the definition at index.
func (b *Bank) Question(index int) (domain.Question, error) {
	if index < 0 || index >= len(b.questions) {
		return domain.Question{}, fmt.Errorf("%w: %d", domain.ErrInvalidIndex, index)
	}
	return cloneQuestion(b.questions[index]), nil
}

// Lookup finds a question and its position by ID.
func (b *Bank) Lookup(id string) (int, domain.Question, error) {
	i, ok := b.byID[id]
	if !ok {
		return 0, domain.Question{}, fmt.Errorf("%w: %s", domain.ErrQuestionNotFound, id)
	}
	return i, cloneQuestion(b.questions[i]), nil
}

// Questions returns a copy of every definition in order.
func (b *Bank) Questions() []domain.Question {
	out := make([]domain.Question, len(b.questions))
	for i, q := range b.questions {
		out[i] = cloneQuestion(q)
	}
	return out
}

// MaxScore is the best achievable total for this bank.
func (b *Bank) MaxScore() int {
	return scoring.CalculateMaxScore(b.questions)
}

// Topics counts questions per topic in first-seen order.
func (b *Bank) Topics() []TopicCount {
	var out []TopicCount
	pos := make(map[string]int)
	for _, q := range b.questions {
		i, ok := pos[q.Topic]
		if !ok {
			i = len(out)
			pos[q.Topic] = i
			out = append(out, TopicCount{Topic: q.Topic})
		}
		out[i].Count++
	}
	return out
}

// Export returns the bank in its serializable form.
func (b *Bank) Export() domain.Bank {
	return domain.Bank{ID: b.id, Questions: b.Questions()}
}

func cloneQuestion(q domain.Question) domain.Question {
	q.Options = append([]string(nil), q.Options...)
	q.CorrectAnswers = append([]int(nil), q.CorrectAnswers...)
	q.CorrectOrder = append([]int(nil), q.CorrectOrder...)
	return q
}
