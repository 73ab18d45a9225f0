package pipeline

import (
	"fmt"
	"strings"

	"github.com/jonesrussell/north-cloud/content-forge/internal/catalog"
	"github.com/jonesrussell/north-cloud/content-forge/internal/content"
)

// maxAvoidSamples bounds how many existing titles or questions are
// embedded in a prompt as "do not repeat" hints.
const maxAvoidSamples = 15

// buildPrompt renders the generation prompt for one batch. Recent
// existing items are sampled into the prompt so the model steers away
// from duplicates before dedup ever runs.
func buildPrompt(kind content.Kind, cat catalog.Category, count int, avoid []string) string {
	var sb strings.Builder

	if kind == content.KindQuiz {
		fmt.Fprintf(&sb,
			"Generate %d multiple-choice quiz questions about %q.\n"+
				"Each question has exactly 4 distinct options, one correct answer that "+
				"exactly matches one option, a difficulty of easy, medium or hard, and "+
				"an explanation of at least one sentence.\n",
			count, cat.Name)
	} else {
		fmt.Fprintf(&sb,
			"Generate %d surprising educational curiosities about %q.\n"+
				"Each curiosity has a catchy title, a body of 40 to 90 words, a short "+
				"fun fact, an optional one-line hook, and an optional curiosityLevel "+
				"from 1 to 5.\n",
			count, cat.Name)
	}

	sb.WriteString("Every item must cover a distinct topic. Respond with a JSON array only.\n")

	if len(avoid) > 0 {
		samples := avoid
		if len(samples) > maxAvoidSamples {
			samples = samples[len(samples)-maxAvoidSamples:]
		}
		sb.WriteString("Do not repeat or rephrase any of these existing items:\n")
		for _, s := range samples {
			fmt.Fprintf(&sb, "- %s\n", s)
		}
	}

	return sb.String()
}
