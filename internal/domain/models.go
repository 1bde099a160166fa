package domain

// QuestionItem is one entry of a question pool. IDs are assigned
// positionally when the pool is loaded and are unique within the pool.
type QuestionItem struct {
	ID      int      `json:"id"`
	Prompt  string   `json:"question"`
	Options []string `json:"options"`
	Answer  string   `json:"answer"`
}

// AnswerOption is a per-session view of one option. Selected is set at
// most once per question; answers are final.
type AnswerOption struct {
	Text     string `json:"text"`
	Correct  bool   `json:"correct"`
	Selected bool   `json:"selected"`
}

// QuestionState pairs a pool question with its session-scoped options.
type QuestionState struct {
	Question QuestionItem   `json:"question"`
	Options  []AnswerOption `json:"options"`
}

// Outcome is the per-question answer state.
type Outcome int

const (
	Unanswered Outcome = iota
	Correct
	Incorrect
)

func (o Outcome) String() string {
	switch o {
	case Correct:
		return "correct"
	case Incorrect:
		return "incorrect"
	default:
		return "unanswered"
	}
}

// SessionState is one run through a fixed set of questions. Outcomes is
// parallel to Questions; Complete is true iff no outcome is Unanswered
// and never reverts once set.
type SessionState struct {
	Questions    []QuestionState `json:"questions"`
	CurrentIndex int             `json:"currentIndex"`
	Outcomes     []Outcome       `json:"outcomes"`
	Complete     bool            `json:"complete"`
}

// QuizSummary is the result of finishing (or inspecting) a session.
type QuizSummary struct {
	PerfectScore bool `json:"perfectScore"`
	CorrectCount int  `json:"correctCount"`
	Total        int  `json:"total"`
}

// ChallengeItem is one entry of a challenge pool.
type ChallengeItem struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
}

// Decision is the final verdict on a weekly challenge entry.
type Decision int

const (
	DecisionDone Decision = iota
	DecisionSkip
)

func (d Decision) String() string {
	if d == DecisionSkip {
		return "skip"
	}
	return "done"
}

// WeeklyChallengeEntry is a spun challenge in the active week's stack.
// Done and Skipped are mutually exclusive and immutable once either is
// set.
type WeeklyChallengeEntry struct {
	ID        int           `json:"id"`
	Challenge ChallengeItem `json:"challenge"`
	Done      bool          `json:"done"`
	Skipped   bool          `json:"skipped"`
}

// Finalized reports whether the entry has a permanent decision.
func (e WeeklyChallengeEntry) Finalized() bool {
	return e.Done || e.Skipped
}

// CompletedWeek archives the done challenges of a week.
type CompletedWeek struct {
	WeekNumber int                    `json:"weekNumber"`
	Challenges []WeeklyChallengeEntry `json:"challenges"`
}
