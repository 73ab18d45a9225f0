// Package content defines the generated content model and the acceptance
// rules applied to raw model output before anything is persisted.
package content

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies a generated content kind within a category.
type Kind string

const (
	// KindCuriosity is the short educational fact kind.
	KindCuriosity Kind = "curiosities"
	// KindQuiz is the multiple-choice question kind.
	KindQuiz Kind = "quizzes"
)

// Kinds lists every content kind a category is populated with.
var Kinds = []Kind{KindCuriosity, KindQuiz}

// Difficulty grades a quiz question.
type Difficulty string

const (
	// DifficultyEasy marks introductory questions.
	DifficultyEasy Difficulty = "easy"
	// DifficultyMedium marks intermediate questions.
	DifficultyMedium Difficulty = "medium"
	// DifficultyHard marks advanced questions.
	DifficultyHard Difficulty = "hard"
)

// Curiosity is a short educational fact tied to a category.
type Curiosity struct {
	ID             string `json:"id"`
	CategoryID     string `json:"categoryId"`
	Title          string `json:"title"`
	Content        string `json:"content"`
	FunFact        string `json:"funFact"`
	Hook           string `json:"hook,omitempty"`
	CuriosityLevel int    `json:"curiosityLevel,omitempty"`
}

// QuizQuestion is a four-option multiple-choice question tied to a category.
type QuizQuestion struct {
	ID            string     `json:"id"`
	CategoryID    string     `json:"categoryId"`
	Difficulty    Difficulty `json:"difficulty"`
	Question      string     `json:"question"`
	Options       []string   `json:"options"`
	CorrectAnswer string     `json:"correctAnswer"`
	Explanation   string     `json:"explanation"`
}

// IDPrefix returns the persisted ID prefix for a kind within a category.
// Curiosities use the category ID itself; quiz questions are scoped under
// a "quiz-" prefix so the two sequences never collide.
func IDPrefix(kind Kind, categoryID string) string {
	if kind == KindQuiz {
		return "quiz-" + categoryID
	}
	return categoryID
}

// NextID computes the next sequential ID for the given prefix: the
// maximum numeric suffix among existing IDs, plus one.
func NextID(prefix string, existing []string) string {
	maxSuffix := 0
	for _, id := range existing {
		rest, ok := strings.CutPrefix(id, prefix+"-")
		if !ok {
			continue
		}
		n, err := strconv.Atoi(rest)
		if err != nil {
			continue
		}
		if n > maxSuffix {
			maxSuffix = n
		}
	}

	return fmt.Sprintf("%s-%d", prefix, maxSuffix+1)
}
