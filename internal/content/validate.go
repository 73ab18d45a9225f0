package content

import (
	"unicode/utf8"

	"github.com/jonesrussell/north-cloud/content-forge/internal/textnorm"
)

// Field limits for generated content. Word bounds are inclusive and
// character limits count runes, so accented text is not penalized for
// its byte width.
const (
	minTitleLen   = 6
	maxTitleLen   = 120
	minBodyWords  = 40
	maxBodyWords  = 90
	minFunFactLen = 10
	minHookLen    = 6

	minQuestionLen    = 10
	minExplanationLen = 12
	optionCount       = 4

	minCuriosityLevel = 1
	maxCuriosityLevel = 5
)

// ValidCuriosity reports whether a candidate curiosity satisfies every
// structural rule. Optional fields are only checked when present.
func ValidCuriosity(c *Curiosity) bool {
	if c == nil {
		return false
	}
	if title := utf8.RuneCountInString(c.Title); title < minTitleLen || title > maxTitleLen {
		return false
	}

	words := textnorm.WordCount(c.Content)
	if words < minBodyWords || words > maxBodyWords {
		return false
	}

	if utf8.RuneCountInString(c.FunFact) < minFunFactLen {
		return false
	}
	if c.Hook != "" && utf8.RuneCountInString(c.Hook) < minHookLen {
		return false
	}
	if c.CuriosityLevel != 0 &&
		(c.CuriosityLevel < minCuriosityLevel || c.CuriosityLevel > maxCuriosityLevel) {
		return false
	}

	return true
}

// ValidQuizQuestion reports whether a candidate quiz question satisfies
// every structural rule: known difficulty, exactly four pairwise-distinct
// options (after normalization), and a correct answer matching exactly
// one of them.
func ValidQuizQuestion(q *QuizQuestion) bool {
	if q == nil {
		return false
	}

	switch q.Difficulty {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
	default:
		return false
	}

	if utf8.RuneCountInString(q.Question) < minQuestionLen {
		return false
	}
	if utf8.RuneCountInString(q.Explanation) < minExplanationLen {
		return false
	}
	if len(q.Options) != optionCount {
		return false
	}

	seen := make(map[string]struct{}, optionCount)
	for _, opt := range q.Options {
		n := textnorm.Normalize(opt)
		if n == "" {
			return false
		}
		if _, dup := seen[n]; dup {
			return false
		}
		seen[n] = struct{}{}
	}

	answer := textnorm.Normalize(q.CorrectAnswer)
	matches := 0
	for _, opt := range q.Options {
		if textnorm.Normalize(opt) == answer {
			matches++
		}
	}

	return matches == 1
}
