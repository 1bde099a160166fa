package domain

// RewardTier is a discrete reward bucket derived from the score ratio.
type RewardTier int

const (
	TierNone RewardTier = iota
	TierBronze
	TierSilver
	TierGold
)

func (t RewardTier) String() string {
	switch t {
	case TierGold:
		return "gold"
	case TierSilver:
		return "silver"
	case TierBronze:
		return "bronze"
	default:
		return "none"
	}
}

// Classify maps a quiz score to a reward tier. Gold requires a perfect
// score on a non-empty session; silver and bronze sit at 80% and 60%.
func Classify(correctCount, total int) RewardTier {
	if total <= 0 {
		return TierNone
	}
	if correctCount == total {
		return TierGold
	}
	ratio := float64(correctCount) / float64(total)
	switch {
	case ratio >= 0.80:
		return TierSilver
	case ratio >= 0.60:
		return TierBronze
	default:
		return TierNone
	}
}

// Message returns the child-facing result text for a tier.
func Message(tier RewardTier) string {
	switch tier {
	case TierGold:
		return "BRAVO !"
	case TierSilver, TierBronze:
		return "TU PEUX LE FAIRE"
	default:
		return "TU APPRENDS TOUS LES JOURS !"
	}
}

// QuizMessage maps the raw correct count of a five-question run to the
// encouragement text shown on the result screen.
func QuizMessage(correctCount, total int) string {
	if total > 0 && correctCount == total {
		return "BRAVO !"
	}
	switch {
	case correctCount >= 3:
		return "TU PEUX LE FAIRE"
	case correctCount >= 1:
		return "CONTINUE À TRAVAILLER !"
	default:
		return "TU APPRENDS TOUS LES JOURS !"
	}
}

// WeekRewardEarned reports whether the week's done count unlocks the
// reward popup (three missions or more).
func WeekRewardEarned(doneCount int) bool {
	return doneCount >= 3
}

// WeeklyMessage maps the number of done challenges in a handled week to
// the diligence text.
func WeeklyMessage(doneCount int) string {
	switch {
	case doneCount >= 7:
		return "Semaine parfaite, bravo !"
	case doneCount >= 5:
		return "Très bon rythme, continue !"
	case doneCount >= 3:
		return "Bravo, tu es très assidu !"
	default:
		return "Faites plus de missions !"
	}
}
