// Package parse turns raw model output into candidate items. Model
// output is frequently wrapped in markdown fences or prose, so parsing
// runs an ordered chain of strategies and the first success wins.
package parse

import (
	"encoding/json"
	"regexp"
	"strings"
)

// trailingComma matches a comma immediately before a closing bracket,
// the most common malformation in model-emitted JSON.
var trailingComma = regexp.MustCompile(`,\s*([\]}])`)

// smartQuotes maps typographic quotes to their ASCII equivalents.
var smartQuotes = strings.NewReplacer(
	"“", `"`, "”", `"`,
	"‘", "'", "’", "'",
)

// Candidates extracts a JSON array of candidate items from raw model
// output. Strategies, in order: direct parse of the trimmed text, a
// lenient parse after repairing common deviations, and extraction of
// bracket-delimited substrings (widest first, then from the last array
// opener) each followed by the same two parses. Returns nil when every
// strategy fails.
func Candidates(raw string) []json.RawMessage {
	text := strings.TrimSpace(raw)
	if text == "" {
		return nil
	}

	if items := tryParse(text); items != nil {
		return items
	}
	if items := tryParse(repair(text)); items != nil {
		return items
	}

	for _, extracted := range extractDelimited(text) {
		if items := tryParse(extracted); items != nil {
			return items
		}
		if items := tryParse(repair(extracted)); items != nil {
			return items
		}
	}

	return nil
}

// tryParse decodes text as a JSON array, or as a single object wrapped
// into a one-element array.
func tryParse(text string) []json.RawMessage {
	var items []json.RawMessage
	if err := json.Unmarshal([]byte(text), &items); err == nil {
		return items
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &obj); err == nil {
		return []json.RawMessage{json.RawMessage(text)}
	}

	return nil
}

// repair applies tolerant fixes for the deviations models actually
// produce: markdown code fences, smart quotes, and trailing commas.
func repair(text string) string {
	text = stripFences(text)
	text = smartQuotes.Replace(text)
	text = trailingComma.ReplaceAllString(text, "$1")
	return strings.TrimSpace(text)
}

// stripFences removes a surrounding markdown code fence, with or
// without a language tag.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	text = strings.TrimPrefix(text, "```")
	if idx := strings.Index(text, "\n"); idx >= 0 && len(strings.TrimSpace(text[:idx])) <= 8 {
		// Drop the language tag line (e.g. "json").
		text = text[idx+1:]
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")

	return strings.TrimSpace(text)
}

// extractDelimited returns candidate bracket-delimited substrings of
// text in preference order: the widest array span, then the span from
// the last array opener (prose such as "[Note]" before the payload
// poisons the widest span), then the widest object span.
func extractDelimited(text string) []string {
	var spans []string

	start := strings.IndexByte(text, '[')
	end := strings.LastIndexByte(text, ']')
	if start >= 0 && end > start {
		spans = append(spans, text[start:end+1])
		if last := strings.LastIndexByte(text[:end], '['); last > start {
			spans = append(spans, text[last:end+1])
		}
	}

	objStart, objEnd := strings.IndexByte(text, '{'), strings.LastIndexByte(text, '}')
	if objStart >= 0 && objEnd > objStart {
		spans = append(spans, text[objStart:objEnd+1])
	}

	return spans
}
