package domain

import "testing"

func TestBuildLevelsFreshProfile(t *testing.T) {
	levels := BuildLevels(0)
	if len(levels) != LevelCount {
		t.Fatalf("expected %d levels, got %d", LevelCount, len(levels))
	}
	if levels[0].Locked || levels[1].Locked {
		t.Fatalf("first two levels start unlocked")
	}
	if !levels[2].Locked {
		t.Fatalf("level 3 starts locked")
	}
	for _, l := range levels {
		if l.Progress != 0 {
			t.Fatalf("fresh profile has no progress, level %d = %f", l.ID, l.Progress)
		}
	}
}

func TestBuildLevelsUnlocksMonotonically(t *testing.T) {
	prevUnlocked := -1
	for runs := 0; runs <= LevelCount; runs++ {
		unlocked := 0
		for _, l := range BuildLevels(runs) {
			if !l.Locked {
				unlocked++
			}
		}
		if unlocked < prevUnlocked {
			t.Fatalf("unlock count regressed at %d runs", runs)
		}
		prevUnlocked = unlocked
	}

	levels := BuildLevels(1)
	if levels[0].Progress != 1.0 {
		t.Fatalf("one perfect run clears level 1")
	}
	if !levels[2].Locked {
		t.Fatalf("level 3 must stay locked after a single run")
	}
}

func TestThemeByID(t *testing.T) {
	theme, err := ThemeByID(ThemeDifferents)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if theme.Pool != "violence_autres_enfants" {
		t.Fatalf("unexpected pool %q", theme.Pool)
	}
	if _, err := ThemeByID("plage"); err != ErrUnknownTheme {
		t.Fatalf("expected ErrUnknownTheme, got %v", err)
	}
}
