// Package ai asks a generative model who should take a fault and how urgent
// it is. Every failure degrades to a local default; callers never see an error.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/fm-control/internal/models"
	"google.golang.org/genai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-3-flash-preview"

// Suggester proposes an assignee and priority for a fault description.
type Suggester interface {
	Suggest(ctx context.Context, details string, present []string) models.Suggestion
}

// Fallback is the answer given when the model cannot be consulted.
func Fallback(present []string) models.Suggestion {
	tech := "Admin"
	if len(present) > 0 {
		tech = present[0]
	}
	return models.Suggestion{
		SuggestedTech: tech,
		Priority:      models.PriorityMedium,
		Explanation:   "Auto-assignment failed, defaulting to available tech.",
	}
}

// FallbackSuggester always answers with Fallback. It is used when no API key
// is configured.
type FallbackSuggester struct{}

// Suggest implements Suggester.
func (FallbackSuggester) Suggest(_ context.Context, _ string, present []string) models.Suggestion {
	return Fallback(present)
}

// GeminiSuggester consults a Gemini model with a JSON response schema.
type GeminiSuggester struct {
	model    string
	generate func(ctx context.Context, prompt string) (string, error)
}

// NewSuggester returns a Gemini-backed suggester, or FallbackSuggester when
// apiKey is empty or the client cannot be built.
func NewSuggester(ctx context.Context, apiKey, model string) Suggester {
	if apiKey == "" {
		log.Info("No Gemini API key configured, assignment suggestions use the local fallback")
		return FallbackSuggester{}
	}
	s, err := NewGeminiSuggester(ctx, apiKey, model)
	if err != nil {
		log.WithError(err).Warn("Gemini client unavailable, assignment suggestions use the local fallback")
		return FallbackSuggester{}
	}
	log.WithField("suggester", s.Name()).Info("Assignment suggestions enabled")
	return s
}

// NewGeminiSuggester creates a suggester backed by the Gemini API.
func NewGeminiSuggester(ctx context.Context, apiKey, model string) (*GeminiSuggester, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   suggestionSchema(),
	}

	return &GeminiSuggester{
		model: model,
		generate: func(ctx context.Context, prompt string) (string, error) {
			resp, err := client.Models.GenerateContent(ctx, model, genai.Text(prompt), config)
			if err != nil {
				return "", fmt.Errorf("GenAI generate failed: %w", err)
			}
			return resp.Text(), nil
		},
	}, nil
}

func suggestionSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"suggestedTech": {Type: genai.TypeString},
			"priority": {
				Type: genai.TypeString,
				Enum: []string{string(models.PriorityLow), string(models.PriorityMedium), string(models.PriorityHigh)},
			},
			"explanation": {Type: genai.TypeString},
		},
		Required: []string{"suggestedTech", "priority", "explanation"},
	}
}

// Suggest implements Suggester.
func (s *GeminiSuggester) Suggest(ctx context.Context, details string, present []string) models.Suggestion {
	text, err := s.generate(ctx, buildPrompt(details, present))
	if err != nil {
		log.WithError(err).WithField("suggester", s.Name()).Warn("Assignment suggestion failed")
		return Fallback(present)
	}

	sug, err := parseSuggestion(text)
	if err != nil {
		log.WithError(err).WithField("suggester", s.Name()).Warn("Assignment suggestion unreadable")
		return Fallback(present)
	}
	if sug.SuggestedTech == "" {
		sug.SuggestedTech = Fallback(present).SuggestedTech
	}
	return sug
}

// Name identifies the backing model in logs.
func (s *GeminiSuggester) Name() string {
	return fmt.Sprintf("genai:%s", s.model)
}

func buildPrompt(details string, present []string) string {
	return fmt.Sprintf(`Analyze this facility fault description: "%s".
Given the available technicians: %s.
Suggest the best technician, assign a priority level, and provide a short one-sentence explanation.`,
		details, strings.Join(present, ", "))
}

func parseSuggestion(text string) (models.Suggestion, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		text = "{}"
	}
	var sug models.Suggestion
	if err := json.Unmarshal([]byte(text), &sug); err != nil {
		return models.Suggestion{}, err
	}
	sug.SuggestedTech = strings.TrimSpace(sug.SuggestedTech)
	sug.Priority = normalizePriority(sug.Priority)
	return sug, nil
}

func normalizePriority(p models.Priority) models.Priority {
	switch strings.ToLower(strings.TrimSpace(string(p))) {
	case "high", "urgent", "critical":
		return models.PriorityHigh
	case "low":
		return models.PriorityLow
	default:
		return models.PriorityMedium
	}
}
