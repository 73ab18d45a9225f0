package content_test

import (
	"strings"
	"testing"

	"github.com/jonesrussell/north-cloud/content-forge/internal/content"
)

// validCuriosity returns a curiosity passing every rule; tests mutate
// single fields from here.
func validCuriosity() *content.Curiosity {
	return &content.Curiosity{
		ID:         "space-1",
		CategoryID: "space",
		Title:      "Neutron stars spin a thousand times per second",
		Content:    strings.Repeat("word ", 60),
		FunFact:    "A teaspoon of neutron star weighs billions of tons.",
		Hook:       "Heavier than a mountain",
	}
}

func validQuiz() *content.QuizQuestion {
	return &content.QuizQuestion{
		ID:            "quiz-space-1",
		CategoryID:    "space",
		Difficulty:    content.DifficultyMedium,
		Question:      "Which planet has the most moons?",
		Options:       []string{"Saturn", "Jupiter", "Neptune", "Mars"},
		CorrectAnswer: "Saturn",
		Explanation:   "Saturn overtook Jupiter with 274 confirmed moons.",
	}
}

func TestValidCuriosity_ContentWordBounds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		words int
		want  bool
	}{
		{39, false},
		{40, true},
		{90, true},
		{91, false},
	}

	for _, tt := range tests {
		c := validCuriosity()
		c.Content = strings.TrimSpace(strings.Repeat("word ", tt.words))
		if got := content.ValidCuriosity(c); got != tt.want {
			t.Errorf("ValidCuriosity with %d words = %v, want %v", tt.words, got, tt.want)
		}
	}
}

func TestValidCuriosity_TitleBounds(t *testing.T) {
	t.Parallel()

	c := validCuriosity()
	c.Title = strings.Repeat("a", 120)
	if !content.ValidCuriosity(c) {
		t.Error("120-char title should be accepted")
	}

	c.Title = strings.Repeat("a", 121)
	if content.ValidCuriosity(c) {
		t.Error("121-char title should be rejected")
	}

	c.Title = "short"
	if content.ValidCuriosity(c) {
		t.Error("5-char title should be rejected")
	}

	// Limits count runes, not bytes: 120 accented characters are 240
	// bytes but still a valid title.
	c = validCuriosity()
	c.Title = strings.Repeat("á", 120)
	if !content.ValidCuriosity(c) {
		t.Error("120-rune accented title should be accepted")
	}

	c.Title = strings.Repeat("á", 121)
	if content.ValidCuriosity(c) {
		t.Error("121-rune accented title should be rejected")
	}
}

func TestValidCuriosity_OptionalFields(t *testing.T) {
	t.Parallel()

	c := validCuriosity()
	c.Hook = ""
	c.CuriosityLevel = 0
	if !content.ValidCuriosity(c) {
		t.Error("missing optional fields should be accepted")
	}

	c = validCuriosity()
	c.Hook = "tiny"
	if content.ValidCuriosity(c) {
		t.Error("hook below 6 chars should be rejected")
	}

	c = validCuriosity()
	c.CuriosityLevel = 6
	if content.ValidCuriosity(c) {
		t.Error("curiosity level above 5 should be rejected")
	}
}

func TestValidQuizQuestion(t *testing.T) {
	t.Parallel()

	if !content.ValidQuizQuestion(validQuiz()) {
		t.Fatal("baseline quiz should be valid")
	}

	q := validQuiz()
	q.Difficulty = "extreme"
	if content.ValidQuizQuestion(q) {
		t.Error("unknown difficulty should be rejected")
	}

	q = validQuiz()
	q.Options = q.Options[:3]
	if content.ValidQuizQuestion(q) {
		t.Error("three options should be rejected")
	}

	// Distinctness is checked after normalization, so casing and accents
	// do not make options distinct.
	q = validQuiz()
	q.Options = []string{"Saturn", "SATURN!", "Neptune", "Mars"}
	if content.ValidQuizQuestion(q) {
		t.Error("normalization-equal options should be rejected")
	}

	q = validQuiz()
	q.CorrectAnswer = "Pluto"
	if content.ValidQuizQuestion(q) {
		t.Error("answer matching no option should be rejected")
	}

	q = validQuiz()
	q.CorrectAnswer = "sáturn"
	if !content.ValidQuizQuestion(q) {
		t.Error("answer should match options after normalization")
	}

	q = validQuiz()
	q.Explanation = "too short."
	if content.ValidQuizQuestion(q) {
		t.Error("explanation below 12 chars should be rejected")
	}

	q = validQuiz()
	q.Explanation = strings.Repeat("é", 12)
	if !content.ValidQuizQuestion(q) {
		t.Error("12-rune accented explanation should be accepted")
	}
}

func TestNextID(t *testing.T) {
	t.Parallel()

	existing := []string{"space-1", "space-2", "space-17", "space-x", "other-99"}
	if got := content.NextID("space", existing); got != "space-18" {
		t.Errorf("NextID = %s, want space-18", got)
	}

	if got := content.NextID("space", nil); got != "space-1" {
		t.Errorf("NextID with no existing items = %s, want space-1", got)
	}

	quiz := []string{"quiz-space-3"}
	if got := content.NextID(content.IDPrefix(content.KindQuiz, "space"), quiz); got != "quiz-space-4" {
		t.Errorf("quiz NextID = %s, want quiz-space-4", got)
	}
}
