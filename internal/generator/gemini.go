package generator

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"

	"github.com/jonesrussell/north-cloud/content-forge/internal/content"
)

// GeminiConfig configures the Gemini backend.
type GeminiConfig struct {
	// APIKey authenticates against the Gemini API.
	APIKey string
	// Temperature controls sampling; structured content generation
	// wants some variety.
	Temperature float32
	// RequestsPerMinute paces calls across all worker tasks.
	RequestsPerMinute int
}

// GeminiBackend adapts the Gemini SDK to the Backend interface, asking
// for structured JSON output against a per-kind response schema.
type GeminiBackend struct {
	client      *genai.Client
	temperature float32
	limiter     *rate.Limiter
}

// NewGeminiBackend creates a Gemini-backed generation backend. The
// returned backend must be closed after the run.
func NewGeminiBackend(ctx context.Context, cfg GeminiConfig) (*GeminiBackend, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = 12
	}

	return &GeminiBackend{
		client:      client,
		temperature: cfg.Temperature,
		limiter:     rate.NewLimiter(rate.Limit(float64(rpm)/60), 1),
	}, nil
}

// Invoke issues one structured-output request to the named model.
func (b *GeminiBackend) Invoke(ctx context.Context, model string, kind content.Kind, prompt string) (string, error) {
	if err := b.limiter.Wait(ctx); err != nil {
		return "", err
	}

	m := b.client.GenerativeModel(model)
	m.ResponseMIMEType = "application/json"
	m.ResponseSchema = schemaFor(kind)
	m.SetTemperature(b.temperature)

	resp, err := m.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	text := responseText(resp)
	if text == "" {
		return "", ErrEmptyResponse
	}

	return text, nil
}

// Close releases the underlying SDK client.
func (b *GeminiBackend) Close() error {
	return b.client.Close()
}

// responseText concatenates the text parts of every candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				sb.WriteString(string(t))
			}
		}
	}
	return sb.String()
}

// schemaFor returns the structured-output schema for a content kind.
// The service is asked for an array of objects matching the persisted
// item shape minus the fields the pipeline assigns itself (IDs).
func schemaFor(kind content.Kind) *genai.Schema {
	if kind == content.KindQuiz {
		return &genai.Schema{
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"difficulty": {
						Type: genai.TypeString,
						Enum: []string{"easy", "medium", "hard"},
					},
					"question": {Type: genai.TypeString},
					"options": {
						Type:  genai.TypeArray,
						Items: &genai.Schema{Type: genai.TypeString},
					},
					"correctAnswer": {Type: genai.TypeString},
					"explanation":   {Type: genai.TypeString},
				},
				Required: []string{"difficulty", "question", "options", "correctAnswer", "explanation"},
			},
		}
	}

	return &genai.Schema{
		Type: genai.TypeArray,
		Items: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"title":          {Type: genai.TypeString},
				"content":        {Type: genai.TypeString},
				"funFact":        {Type: genai.TypeString},
				"hook":           {Type: genai.TypeString},
				"curiosityLevel": {Type: genai.TypeInteger},
			},
			Required: []string{"title", "content", "funFact"},
		},
	}
}
