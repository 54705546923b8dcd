package password

import "strings"

// MaxStrengthScore is the highest score [CheckStrength] can return.
const MaxStrengthScore = 6

const (
	minLength   = 8
	bonusLength = 12

	// SpecialCharacters lists the symbols that satisfy the special-character rule.
	SpecialCharacters = "@$!%*?&"
)

const (
	FeedbackLength    = "Use at least 8 characters"
	FeedbackLowercase = "Add lowercase letters"
	FeedbackUppercase = "Add uppercase letters"
	FeedbackDigit     = "Add numbers"
	FeedbackSpecial   = "Add special characters (@$!%*?&)"
)

// Strength is the result of scoring a candidate password.
//
// Feedback lists unmet criteria in evaluation order. The 12-character bonus
// never produces feedback.
type Strength struct {
	Score    int      `json:"score"`
	Feedback []string `json:"feedback"`
}

// Level is the coarse band a score falls into.
type Level uint8

const (
	LevelWeak Level = iota
	LevelMedium
	LevelStrong
)

// CheckStrength scores pw against five criteria plus a silent length bonus.
// It is pure and total: every input, including "", yields a result.
func CheckStrength(pw string) Strength {
	s := Strength{Feedback: make([]string, 0, 5)}
	n := len([]rune(pw))

	if n >= minLength {
		s.Score++
	} else {
		s.Feedback = append(s.Feedback, FeedbackLength)
	}

	if hasLower(pw) {
		s.Score++
	} else {
		s.Feedback = append(s.Feedback, FeedbackLowercase)
	}

	if hasUpper(pw) {
		s.Score++
	} else {
		s.Feedback = append(s.Feedback, FeedbackUppercase)
	}

	if hasDigit(pw) {
		s.Score++
	} else {
		s.Feedback = append(s.Feedback, FeedbackDigit)
	}

	if strings.ContainsAny(pw, SpecialCharacters) {
		s.Score++
	} else {
		s.Feedback = append(s.Feedback, FeedbackSpecial)
	}

	if n >= bonusLength {
		s.Score++
	}

	return s
}

// Level classifies the score: <=2 weak, 3-4 medium, >=5 strong.
func (s Strength) Level() Level {
	switch {
	case s.Score <= 2:
		return LevelWeak
	case s.Score <= 4:
		return LevelMedium
	default:
		return LevelStrong
	}
}

// Percent is the fill ratio of a strength bar, in [0, 100].
func (s Strength) Percent() float64 {
	return float64(s.Score) / MaxStrengthScore * 100
}

func (l Level) String() string {
	switch l {
	case LevelWeak:
		return "Weak"
	case LevelMedium:
		return "Medium"
	case LevelStrong:
		return "Strong"
	default:
		return "Unknown"
	}
}

// Color is the indicator color conventionally paired with the level.
func (l Level) Color() string {
	switch l {
	case LevelWeak:
		return "red"
	case LevelMedium:
		return "yellow"
	case LevelStrong:
		return "green"
	default:
		return ""
	}
}

// Character classes are ASCII-only, matching [a-z], [A-Z] and \d.

func hasLower(pw string) bool {
	for i := 0; i < len(pw); i++ {
		if pw[i] >= 'a' && pw[i] <= 'z' {
			return true
		}
	}
	return false
}

func hasUpper(pw string) bool {
	for i := 0; i < len(pw); i++ {
		if pw[i] >= 'A' && pw[i] <= 'Z' {
			return true
		}
	}
	return false
}

func hasDigit(pw string) bool {
	for i := 0; i < len(pw); i++ {
		if pw[i] >= '0' && pw[i] <= '9' {
			return true
		}
	}
	return false
}
