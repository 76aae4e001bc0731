package service

import (
	"context"

	"baymax-vitals/internal/classifier"
	"baymax-vitals/internal/config"
	"baymax-vitals/internal/llm"
	"baymax-vitals/internal/narrative"
	"baymax-vitals/internal/store"

	"go.uber.org/zap"
)

// NewModelStack builds the classifier and the narrative generator. They share
// one threshold table and one breaker, so an invalid API key disables remote
// calls for both. Without an API key both run on the static table only.
func NewModelStack(ctx context.Context, cfg *config.Config, kv store.KV, logger *zap.Logger) (*classifier.Classifier, *narrative.Generator, error) {
	thresholds := classifier.DefaultThresholds()
	if cfg.Classifier.ThresholdsFile != "" {
		t, err := classifier.LoadThresholds(cfg.Classifier.ThresholdsFile)
		if err != nil {
			return nil, nil, err
		}
		thresholds = t
		logger.Info("Loaded threshold overrides", zap.String("file", cfg.Classifier.ThresholdsFile))
	}

	var remote llm.TextGenerator
	if cfg.Classifier.APIKey != "" {
		g, err := llm.NewGeminiGenerator(ctx, cfg.Classifier.APIKey, logger)
		if err != nil {
			return nil, nil, err
		}
		remote = g
	} else {
		logger.Warn("GEMINI_API_KEY not set, using static thresholds and templates only")
	}

	breaker := classifier.NewBreaker()
	cls := classifier.New(kv, remote, breaker, thresholds, classifier.Options{
		Models:       cfg.Classifier.Models,
		ResponseMode: classifier.ResponseMode(cfg.Classifier.ResponseMode),
		Timeout:      cfg.Classifier.Timeout,
	}, logger)

	gen := narrative.NewGenerator(kv, remote, thresholds, narrative.Options{
		Model:        cfg.Narrative.Model,
		MaxRetries:   cfg.Narrative.MaxRetries,
		MaxRetryWait: cfg.Narrative.MaxRetryWait,
		Breaker:      breaker,
	}, logger)

	return cls, gen, nil
}
