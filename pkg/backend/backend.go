// Package backend defines the inference backend abstraction shared by the
// hosted-API and local-server clients.
package backend

import (
	"context"
	"fmt"
)

// Backend performs a single logical "ask the model" operation.
// Implementations own their transport, timeouts, and retry behavior.
type Backend interface {
	// Name returns the backend's canonical name (e.g. "huggingface", "ollama").
	Name() string

	// Generate sends the prompt to the model and returns the generated text.
	Generate(ctx context.Context, prompt string) (string, error)
}

// ErrorHumanizer is implemented by backends that map their own failure modes
// to tailored user-facing messages.
type ErrorHumanizer interface {
	HumanizeError(err error) string
}

// Reply runs Generate and folds any failure into a user-facing string. The
// conversation view appends the result as the assistant turn either way; no
// failure propagates past this point.
func Reply(ctx context.Context, b Backend, prompt string) string {
	text, err := b.Generate(ctx, prompt)
	if err != nil {
		return Humanize(b, err)
	}
	return text
}

// Humanize folds err into a user-facing string, preferring the backend's
// own mapping when it has one.
func Humanize(b Backend, err error) string {
	if h, ok := b.(ErrorHumanizer); ok {
		return h.HumanizeError(err)
	}
	return fmt.Sprintf("Sorry, I encountered an error: %v", err)
}
