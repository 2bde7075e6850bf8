package generation

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrMissingAPIKey = errors.New("api key is not set")
	ErrEmptyResponse = errors.New("generator returned no content")
)

// Generator produces an answer for a question from the supplied context.
type Generator interface {
	Generate(ctx context.Context, systemPrompt string, userPrompt string, retrieved string) (string, error)
}

// GeneratorFunc adapts a plain function to Generator.
type GeneratorFunc func(ctx context.Context, systemPrompt string, userPrompt string, retrieved string) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, systemPrompt string, userPrompt string, retrieved string) (string, error) {
	return f(ctx, systemPrompt, userPrompt, retrieved)
}

// UserMessage combines the retrieved context and the question into the user turn.
func UserMessage(userPrompt string, retrieved string) string {
	if retrieved == "" {
		retrieved = "No relevant files found."
	}
	return fmt.Sprintf("Context:\n%s\n\nUser Question: %s", retrieved, userPrompt)
}
