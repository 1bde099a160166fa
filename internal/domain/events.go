package domain

// Event payloads sent from the session engine to presentation layers.
// The engine is synchronous; pacing of reveals is up to the consumer.

// AnswerOutcomeEvent reports the result of one submitted answer.
type AnswerOutcomeEvent struct {
	Index   int  `json:"index"`
	Correct bool `json:"correct"`
}

// SessionCompleteEvent fires once when every question is answered.
type SessionCompleteEvent struct {
	CorrectCount int        `json:"correctCount"`
	Total        int        `json:"total"`
	Tier         RewardTier `json:"tier"`
	TierName     string     `json:"tierName"`
	Message      string     `json:"message"`
}

// SpinResultEvent reports a wheel spin. Item is nil when no eligible
// challenge remained for the landed slice; the wheel still turns.
type SpinResultEvent struct {
	Item        *ChallengeItem `json:"item"`
	TargetSlice int            `json:"targetSlice"`
	Rotation    float64        `json:"rotation"`
}

// DecisionRecordedEvent reports a finalized done/skip verdict.
type DecisionRecordedEvent struct {
	ID       int    `json:"id"`
	Decision string `json:"decision"`
}

// WeekCompleteEvent fires when all seven entries are finalized.
type WeekCompleteEvent struct {
	Week          CompletedWeek `json:"week"`
	DoneCount     int           `json:"doneCount"`
	RewardEarned  bool          `json:"rewardEarned"`
	WeeklyMessage string        `json:"weeklyMessage"`
}
