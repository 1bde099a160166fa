package engine

import (
	"math/rand"

	"kidvoice-service/internal/domain"
)

// WeekCapacity is the number of challenge slots in a week.
const WeekCapacity = 7

// Spin selects uniformly among pool items whose id is not in used.
// It returns nil when nothing is eligible; the wheel must not advance.
func Spin(pool []domain.ChallengeItem, used map[int]struct{}, rng *rand.Rand) *domain.ChallengeItem {
	eligible := eligibleItems(pool, used)
	if len(eligible) == 0 {
		return nil
	}
	item := eligible[rng.Intn(len(eligible))]
	return &item
}

// SpinSlice is the slice-filtered variant: the landed slice is drawn
// first, then eligibility is restricted to items whose id falls on that
// slice. The filtered set can be empty, in which case the wheel turns
// but no challenge comes up; that matches the app behavior.
func SpinSlice(pool []domain.ChallengeItem, used map[int]struct{}, slices int, rng *rand.Rand) (*domain.ChallengeItem, int) {
	if slices <= 0 {
		return nil, 0
	}
	target := rng.Intn(slices)
	var onSlice []domain.ChallengeItem
	for _, item := range eligibleItems(pool, used) {
		if item.ID%slices == target {
			onSlice = append(onSlice, item)
		}
	}
	if len(onSlice) == 0 {
		return nil, target
	}
	item := onSlice[rng.Intn(len(onSlice))]
	return &item, target
}

// Rotation computes the total wheel rotation in degrees. Full rotations
// are purely visual and never influence the selection.
func Rotation(fullRotations, targetSlice, slices int) float64 {
	if slices <= 0 {
		return 0
	}
	return float64(fullRotations)*360 + float64(targetSlice)*(360/float64(slices))
}

// PushEntry prepends a spun challenge to the week's stack, capped at
// WeekCapacity entries.
func PushEntry(entries []domain.WeeklyChallengeEntry, item domain.ChallengeItem) []domain.WeeklyChallengeEntry {
	if len(entries) >= WeekCapacity {
		return entries
	}
	entry := domain.WeeklyChallengeEntry{ID: item.ID, Challenge: item}
	return append([]domain.WeeklyChallengeEntry{entry}, entries...)
}

// UsedIDs collects the challenge ids already present in the week.
func UsedIDs(entries []domain.WeeklyChallengeEntry) map[int]struct{} {
	used := make(map[int]struct{}, len(entries))
	for _, e := range entries {
		used[e.ID] = struct{}{}
	}
	return used
}

// RecordDecision finalizes the entry with the given id. Entries that
// already carry a verdict are left untouched; the bool result reports
// whether the decision was applied.
func RecordDecision(entries []domain.WeeklyChallengeEntry, id int, decision domain.Decision) bool {
	for i := range entries {
		if entries[i].ID != id {
			continue
		}
		if entries[i].Finalized() {
			return false
		}
		entries[i].Done = decision == domain.DecisionDone
		entries[i].Skipped = decision == domain.DecisionSkip
		return true
	}
	return false
}

// IsWeekComplete reports whether all seven slots are filled and decided.
func IsWeekComplete(entries []domain.WeeklyChallengeEntry) bool {
	if len(entries) != WeekCapacity {
		return false
	}
	for _, e := range entries {
		if !e.Finalized() {
			return false
		}
	}
	return true
}

// DoneCount counts the entries marked done.
func DoneCount(entries []domain.WeeklyChallengeEntry) int {
	n := 0
	for _, e := range entries {
		if e.Done {
			n++
		}
	}
	return n
}

// ArchiveWeek builds the CompletedWeek record for the current entries,
// keeping only the done ones.
func ArchiveWeek(entries []domain.WeeklyChallengeEntry, weekNumber int) domain.CompletedWeek {
	done := make([]domain.WeeklyChallengeEntry, 0, len(entries))
	for _, e := range entries {
		if e.Done {
			done = append(done, e)
		}
	}
	return domain.CompletedWeek{WeekNumber: weekNumber, Challenges: done}
}

// StartNewWeek archives the current week and hands back an empty stack
// with the incremented week counter.
func StartNewWeek(entries []domain.WeeklyChallengeEntry, weekNumber int) (domain.CompletedWeek, []domain.WeeklyChallengeEntry, int) {
	archived := ArchiveWeek(entries, weekNumber)
	return archived, nil, weekNumber + 1
}

func eligibleItems(pool []domain.ChallengeItem, used map[int]struct{}) []domain.ChallengeItem {
	eligible := make([]domain.ChallengeItem, 0, len(pool))
	for _, item := range pool {
		if _, taken := used[item.ID]; taken {
			continue
		}
		eligible = append(eligible, item)
	}
	return eligible
}
