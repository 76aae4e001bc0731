// Package llm wraps the remote text-generation model used by the classifier
// and the narrative generator.
package llm

import "context"

// GenerateOptions per-call generation settings
type GenerateOptions struct {
	Temperature     float32
	MaxOutputTokens int32
	// DisableSafety turns every content-safety filter off
	DisableSafety bool
}

// TextGenerator produces text for a prompt with a named model.
type TextGenerator interface {
	GenerateText(ctx context.Context, model, prompt string, opts GenerateOptions) (string, error)
}
