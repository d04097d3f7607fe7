package provider

import (
	"context"

	"golang.org/x/time/rate"
)

// defaultRequestsPerSecond and defaultBurst bound how fast one provider
// client issues completion requests, ahead of CompleteWithRetry's
// exponential backoff: the backoff reacts to a RateLimited response
// that already happened, while this token bucket paces requests so a
// burst of tool-turns doesn't immediately draw one.
const (
	defaultRequestsPerSecond = 2
	defaultBurst             = 4
)

// rateLimitedProvider wraps an LLMProvider with a token-bucket limiter
// applied in front of Complete.
type rateLimitedProvider struct {
	LLMProvider
	limiter *rate.Limiter
}

func newRateLimitedProvider(p LLMProvider) *rateLimitedProvider {
	return &rateLimitedProvider{
		LLMProvider: p,
		limiter:     rate.NewLimiter(rate.Limit(defaultRequestsPerSecond), defaultBurst),
	}
}

func (p *rateLimitedProvider) Complete(ctx context.Context, opts CompletionOptions) (*CompletionResponse, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, Cancelled(p.Name())
	}
	return p.LLMProvider.Complete(ctx, opts)
}

var _ LLMProvider = (*rateLimitedProvider)(nil)
