package domain

import "fmt"

// ThemeID identifies one of the four violence-prevention themes.
type ThemeID string

const (
	ThemeEcole      ThemeID = "ecole"
	ThemeMaison     ThemeID = "maison"
	ThemeNet        ThemeID = "net"
	ThemeDifferents ThemeID = "differents"
)

// Theme describes a quiz theme and the question pool backing it.
type Theme struct {
	ID       ThemeID `json:"id"`
	Title    string  `json:"title"`
	Subtitle string  `json:"subtitle"`
	Pool     string  `json:"pool"`
}

var themes = []Theme{
	{ID: ThemeEcole, Title: "À l'école", Subtitle: "Respect, harcèlement, entraide", Pool: "violence_ecole"},
	{ID: ThemeMaison, Title: "À la maison", Subtitle: "Famille, émotions, règles", Pool: "violence_maison"},
	{ID: ThemeNet, Title: "Sur le net", Subtitle: "Sécurité, écrans, réseaux", Pool: "violence_net"},
	{ID: ThemeDifferents, Title: "Tous différents", Subtitle: "Diversité, inclusion, amitié", Pool: "violence_autres_enfants"},
}

// Themes returns the fixed theme list.
func Themes() []Theme {
	out := make([]Theme, len(themes))
	copy(out, themes)
	return out
}

// ThemeByID resolves a theme identifier.
func ThemeByID(id ThemeID) (Theme, error) {
	for _, t := range themes {
		if t.ID == id {
			return t, nil
		}
	}
	return Theme{}, ErrUnknownTheme
}

// LevelCount is the number of map levels per theme.
const LevelCount = 12

// Level is one node of the per-theme progress map.
type Level struct {
	ID       int     `json:"id"`
	Title    string  `json:"title"`
	Locked   bool    `json:"locked"`
	Progress float64 `json:"progress"`
}

// BuildLevels derives the level map from the number of perfect quiz runs
// finished for the theme. The first two levels start unlocked; level n
// unlocks after n-1 perfect runs. Cleared levels carry full progress.
func BuildLevels(perfectRuns int) []Level {
	levels := make([]Level, 0, LevelCount)
	for i := 1; i <= LevelCount; i++ {
		unlocked := i <= 2 || perfectRuns >= i-1
		progress := 0.0
		if perfectRuns >= i {
			progress = 1.0
		}
		levels = append(levels, Level{
			ID:       i,
			Title:    fmt.Sprintf("Niveau %d", i),
			Locked:   !unlocked,
			Progress: progress,
		})
	}
	return levels
}
