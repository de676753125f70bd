package scoring

import "training-quiz-service/internal/domain"

const (
	// PointsCorrect is awarded per correct unit (option, blank or whole answer).
	PointsCorrect = 5
	// PointsWrong is charged per incorrect unit.
	PointsWrong = -1
)

// CheckAnswer grades a raw answer against the question's key.
// An unknown kind yields a zero verdict rather than an error.
func CheckAnswer(q domain.Question, a domain.Answer) domain.Verdict {
	switch q.Kind {
	case domain.KindSingleSelect:
		return checkSingle(q, a)
	case domain.KindMultiSelect:
		return checkMulti(q, a)
	case domain.KindBlank, domain.KindBlanks:
		return checkBlanks(q, a)
	case domain.KindOrder:
		return checkOrder(q, a)
	default:
		return domain.Verdict{}
	}
}

// CalculateMaxScore is the score obtained by answering every question correctly.
// Per-unit kinds earn PointsCorrect per key entry; the rest earn it once.
func CalculateMaxScore(questions []domain.Question) int {
	total := 0
	for _, q := range questions {
		switch q.Kind {
		case domain.KindMultiSelect, domain.KindBlank, domain.KindBlanks:
			total += PointsCorrect * len(q.CorrectAnswers)
		default:
			total += PointsCorrect
		}
	}
	return total
}

func allOrNothing(ok bool) domain.Verdict {
	if ok {
		return domain.Verdict{Correct: true, Points: PointsCorrect}
	}
	return domain.Verdict{Points: PointsWrong}
}

func checkSingle(q domain.Question, a domain.Answer) domain.Verdict {
	index, ok := a.Index()
	return allOrNothing(ok && len(q.CorrectAnswers) > 0 && index == q.CorrectAnswers[0])
}

// checkMulti scores each submitted index on its own; duplicates are not collapsed.
func checkMulti(q domain.Question, a domain.Answer) domain.Verdict {
	key := make(map[int]struct{}, len(q.CorrectAnswers))
	for _, c := range q.CorrectAnswers {
		key[c] = struct{}{}
	}

	// single indices are not a valid multi-select submission and grade as empty
	submitted := a.Indices()
	picked := make(map[int]struct{}, len(submitted))
	points, hits, misses := 0, 0, 0
	for _, s := range submitted {
		picked[s] = struct{}{}
		if _, ok := key[s]; ok {
			points += PointsCorrect
			hits++
		} else {
			points += PointsWrong
			misses++
		}
	}

	complete := true
	for c := range key {
		if _, ok := picked[c]; !ok {
			complete = false
			break
		}
	}
	correct := complete && misses == 0
	return domain.Verdict{
		Correct: correct,
		Points:  points,
		Partial: hits > 0 && !correct,
	}
}

// checkBlanks compares position by position against the key.
func checkBlanks(q domain.Question, a domain.Answer) domain.Verdict {
	points, matches := 0, 0
	for i, s := range a.Values() {
		if i < len(q.CorrectAnswers) && s == q.CorrectAnswers[i] {
			points += PointsCorrect
			matches++
		} else {
			points += PointsWrong
		}
	}
	return domain.Verdict{
		Correct: matches == len(q.CorrectAnswers),
		Points:  points,
	}
}

func checkOrder(q domain.Question, a domain.Answer) domain.Verdict {
	if !a.IsList() {
		return allOrNothing(false)
	}
	got := a.Indices()
	if len(got) != len(q.CorrectOrder) {
		return allOrNothing(false)
	}
	for i := range got {
		if got[i] != q.CorrectOrder[i] {
			return allOrNothing(false)
		}
	}
	return allOrNothing(true)
}
