package generation

import (
	"context"

	"github.com/siherrmann/vaultgraph/helper"
	"golang.org/x/time/rate"
)

// RateLimited waits for the limiter before every call to the wrapped generator.
type RateLimited struct {
	inner   Generator
	limiter *rate.Limiter
}

// NewRateLimited wraps inner so calls wait for a token from limiter.
func NewRateLimited(inner Generator, limiter *rate.Limiter) *RateLimited {
	return &RateLimited{inner: inner, limiter: limiter}
}

// Generate waits for the limiter, then calls the wrapped generator.
func (r *RateLimited) Generate(ctx context.Context, systemPrompt string, userPrompt string, retrieved string) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", helper.NewError("rate limit wait", err)
	}
	return r.inner.Generate(ctx, systemPrompt, userPrompt, retrieved)
}
