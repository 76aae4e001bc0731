package llm

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// GeminiGenerator TextGenerator backed by the Gemini API
type GeminiGenerator struct {
	client *genai.Client
	logger *zap.Logger
}

// NewGeminiGenerator returns an error when apiKey is empty; callers treat
// that as "no remote model configured".
func NewGeminiGenerator(ctx context.Context, apiKey string, logger *zap.Logger) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiGenerator{client: client, logger: logger}, nil
}

var safetyCategories = []genai.HarmCategory{
	genai.HarmCategoryHarassment,
	genai.HarmCategoryHateSpeech,
	genai.HarmCategorySexuallyExplicit,
	genai.HarmCategoryDangerousContent,
}

func (g *GeminiGenerator) GenerateText(ctx context.Context, model, prompt string, opts GenerateOptions) (string, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(opts.Temperature),
	}
	if opts.MaxOutputTokens > 0 {
		cfg.MaxOutputTokens = opts.MaxOutputTokens
	}
	if opts.DisableSafety {
		for _, c := range safetyCategories {
			cfg.SafetySettings = append(cfg.SafetySettings, &genai.SafetySetting{
				Category:  c,
				Threshold: genai.HarmBlockThresholdBlockNone,
			})
		}
	}

	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}

	resp, err := g.client.Models.GenerateContent(ctx, model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("gemini %s: %w", model, err)
	}

	text := resp.Text()
	g.logger.Debug("Gemini response",
		zap.String("model", model),
		zap.Int("length", len(text)),
	)
	return text, nil
}
