// Package engine holds the pure session state machines. Every function
// is a synchronous transformation of caller-owned state; randomness is
// injected so callers (and tests) control it.
package engine

import (
	"math/rand"

	"kidvoice-service/internal/domain"
)

// Direction moves the current question cursor.
type Direction int

const (
	Next Direction = iota
	Previous
)

// StartQuiz samples size questions from pool without replacement and
// builds a fresh session with everything unanswered. A pool smaller
// than size yields the whole pool; only an empty pool is an error.
func StartQuiz(pool []domain.QuestionItem, size int, rng *rand.Rand) (*domain.SessionState, error) {
	if len(pool) == 0 {
		return nil, domain.ErrEmptyPool
	}
	if size > len(pool) {
		size = len(pool)
	}
	if size < 0 {
		size = 0
	}

	picked := make([]domain.QuestionItem, len(pool))
	copy(picked, pool)
	rng.Shuffle(len(picked), func(i, j int) {
		picked[i], picked[j] = picked[j], picked[i]
	})
	picked = picked[:size]

	questions := make([]domain.QuestionState, 0, len(picked))
	for _, item := range picked {
		options := make([]domain.AnswerOption, 0, len(item.Options))
		for _, text := range item.Options {
			options = append(options, domain.AnswerOption{
				Text:    text,
				Correct: text == item.Answer,
			})
		}
		questions = append(questions, domain.QuestionState{Question: item, Options: options})
	}

	return &domain.SessionState{
		Questions: questions,
		Outcomes:  make([]domain.Outcome, len(questions)),
	}, nil
}

// SubmitAnswer marks the option matching text on the current question.
// It is a silent no-op when the question is already answered or the text
// matches no option; the bool result reports whether anything changed.
func SubmitAnswer(s *domain.SessionState, text string) (domain.Outcome, bool) {
	if s == nil || s.CurrentIndex < 0 || s.CurrentIndex >= len(s.Questions) {
		return domain.Unanswered, false
	}
	q := &s.Questions[s.CurrentIndex]
	if answered(q) {
		return s.Outcomes[s.CurrentIndex], false
	}

	selected := -1
	for i := range q.Options {
		if q.Options[i].Text == text {
			selected = i
			break
		}
	}
	if selected < 0 {
		return domain.Unanswered, false
	}

	q.Options[selected].Selected = true
	outcome := domain.Incorrect
	if q.Options[selected].Correct {
		outcome = domain.Correct
	}
	s.Outcomes[s.CurrentIndex] = outcome
	s.Complete = allAnswered(s)
	return outcome, true
}

// Advance moves the cursor one question forward or back, clamped to the
// session bounds. Boundary moves are no-ops.
func Advance(s *domain.SessionState, dir Direction) {
	if s == nil || len(s.Questions) == 0 {
		return
	}
	switch dir {
	case Next:
		if s.CurrentIndex < len(s.Questions)-1 {
			s.CurrentIndex++
		}
	case Previous:
		if s.CurrentIndex > 0 {
			s.CurrentIndex--
		}
	}
}

// FinishQuiz summarizes the session. It is computable at any time; a
// perfect score means every question was answered correctly.
func FinishQuiz(s *domain.SessionState) domain.QuizSummary {
	if s == nil {
		return domain.QuizSummary{}
	}
	correct := 0
	for _, o := range s.Outcomes {
		if o == domain.Correct {
			correct++
		}
	}
	total := len(s.Questions)
	return domain.QuizSummary{
		PerfectScore: total > 0 && correct == total,
		CorrectCount: correct,
		Total:        total,
	}
}

// ResetQuiz clears every selection and outcome and rewinds the cursor,
// keeping the sampled questions.
func ResetQuiz(s *domain.SessionState) {
	if s == nil {
		return
	}
	for i := range s.Questions {
		for j := range s.Questions[i].Options {
			s.Questions[i].Options[j].Selected = false
		}
	}
	for i := range s.Outcomes {
		s.Outcomes[i] = domain.Unanswered
	}
	s.CurrentIndex = 0
	s.Complete = false
}

func answered(q *domain.QuestionState) bool {
	for i := range q.Options {
		if q.Options[i].Selected {
			return true
		}
	}
	return false
}

func allAnswered(s *domain.SessionState) bool {
	for _, o := range s.Outcomes {
		if o == domain.Unanswered {
			return false
		}
	}
	return len(s.Outcomes) > 0
}
