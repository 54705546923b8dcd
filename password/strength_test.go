package password

import (
	"reflect"
	"testing"
)

var allFeedback = []string{
	FeedbackLength,
	FeedbackLowercase,
	FeedbackUppercase,
	FeedbackDigit,
	FeedbackSpecial,
}

func TestCheckStrengthEmpty(t *testing.T) {
	s := CheckStrength("")
	if s.Score != 0 {
		t.Fatalf("expected score 0, got %d", s.Score)
	}
	if !reflect.DeepEqual(s.Feedback, allFeedback) {
		t.Fatalf("unexpected feedback: %#v", s.Feedback)
	}
}

func TestCheckStrengthShortWithoutVariety(t *testing.T) {
	for _, pw := range []string{" ", "       ", "#^~", "-_-_-"} {
		s := CheckStrength(pw)
		if s.Score != 0 {
			t.Fatalf("%q: expected score 0, got %d", pw, s.Score)
		}
		if !reflect.DeepEqual(s.Feedback, allFeedback) {
			t.Fatalf("%q: unexpected feedback: %#v", pw, s.Feedback)
		}
	}
}

func TestCheckStrengthAllClassesBelowBonus(t *testing.T) {
	s := CheckStrength("Abcdefgh1!")
	if s.Score != 5 {
		t.Fatalf("expected score 5, got %d", s.Score)
	}
	if s.Feedback == nil || len(s.Feedback) != 0 {
		t.Fatalf("expected empty non-nil feedback, got %#v", s.Feedback)
	}
}

func TestCheckStrengthAllClassesWithBonus(t *testing.T) {
	s := CheckStrength("Abcdefghijk1!")
	if s.Score != MaxStrengthScore {
		t.Fatalf("expected score %d, got %d", MaxStrengthScore, s.Score)
	}
	if len(s.Feedback) != 0 {
		t.Fatalf("expected no feedback, got %#v", s.Feedback)
	}
}

func TestCheckStrengthFeedbackOrder(t *testing.T) {
	cases := []struct {
		pw       string
		score    int
		feedback []string
	}{
		{"abc", 1, []string{FeedbackLength, FeedbackUppercase, FeedbackDigit, FeedbackSpecial}},
		{"ABC123", 2, []string{FeedbackLength, FeedbackLowercase, FeedbackSpecial}},
		{"abcdefgh", 2, []string{FeedbackUppercase, FeedbackDigit, FeedbackSpecial}},
		{"abcdefghijkl", 3, []string{FeedbackUppercase, FeedbackDigit, FeedbackSpecial}},
		{"aB3$", 4, []string{FeedbackLength}},
		{"12345678?", 3, []string{FeedbackLowercase, FeedbackUppercase}},
	}

	for _, tc := range cases {
		s := CheckStrength(tc.pw)
		if s.Score != tc.score {
			t.Fatalf("%q: expected score %d, got %d", tc.pw, tc.score, s.Score)
		}
		if !reflect.DeepEqual(s.Feedback, tc.feedback) {
			t.Fatalf("%q: expected feedback %#v, got %#v", tc.pw, tc.feedback, s.Feedback)
		}
	}
}

func TestCheckStrengthOnlyListedSymbolsCount(t *testing.T) {
	s := CheckStrength("Abcdefgh1#")
	if s.Score != 4 {
		t.Fatalf("expected '#' not to count as special, got score %d", s.Score)
	}
	if !reflect.DeepEqual(s.Feedback, []string{FeedbackSpecial}) {
		t.Fatalf("unexpected feedback: %#v", s.Feedback)
	}
}

func TestCheckStrengthCountsRunes(t *testing.T) {
	// Seven two-byte runes: 14 bytes but shorter than the minimum length.
	s := CheckStrength("ééééééé")
	if len(s.Feedback) == 0 || s.Feedback[0] != FeedbackLength {
		t.Fatalf("expected length feedback for 7-rune input, got %#v", s.Feedback)
	}
	// Non-ASCII letters do not satisfy the ASCII case classes.
	if s.Score != 0 {
		t.Fatalf("expected score 0, got %d", s.Score)
	}
}

func TestStrengthLevelBands(t *testing.T) {
	cases := []struct {
		score int
		level Level
		name  string
		color string
	}{
		{0, LevelWeak, "Weak", "red"},
		{2, LevelWeak, "Weak", "red"},
		{3, LevelMedium, "Medium", "yellow"},
		{4, LevelMedium, "Medium", "yellow"},
		{5, LevelStrong, "Strong", "green"},
		{6, LevelStrong, "Strong", "green"},
	}
	for _, tc := range cases {
		lvl := Strength{Score: tc.score}.Level()
		if lvl != tc.level {
			t.Fatalf("score %d: expected level %v, got %v", tc.score, tc.level, lvl)
		}
		if lvl.String() != tc.name || lvl.Color() != tc.color {
			t.Fatalf("score %d: got %s/%s", tc.score, lvl.String(), lvl.Color())
		}
	}
}

func TestStrengthPercent(t *testing.T) {
	if p := (Strength{Score: 0}).Percent(); p != 0 {
		t.Fatalf("expected 0%%, got %v", p)
	}
	if p := (Strength{Score: 3}).Percent(); p != 50 {
		t.Fatalf("expected 50%%, got %v", p)
	}
	if p := (Strength{Score: 6}).Percent(); p != 100 {
		t.Fatalf("expected 100%%, got %v", p)
	}
}

func FuzzCheckStrengthBounds(f *testing.F) {
	f.Add("")
	f.Add("Abcdefghijk1!")
	f.Add("\x00\xff")
	f.Fuzz(func(t *testing.T, pw string) {
		s := CheckStrength(pw)
		if s.Score < 0 || s.Score > MaxStrengthScore {
			t.Fatalf("score out of range: %d", s.Score)
		}
		if len(s.Feedback) > 5 {
			t.Fatalf("too many feedback items: %d", len(s.Feedback))
		}
		if s.Score+len(s.Feedback) < 5 || s.Score+len(s.Feedback) > 6 {
			t.Fatalf("score %d and %d feedback items disagree", s.Score, len(s.Feedback))
		}
	})
}
