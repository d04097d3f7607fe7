package provider

import (
	"context"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func TestRateLimitedProvider_WaitsOnceBurstExhausted(t *testing.T) {
	inner := &fakeLLMProvider{}
	p := &rateLimitedProvider{LLMProvider: inner, limiter: rate.NewLimiter(rate.Limit(50), 1)}

	ctx := context.Background()
	if _, err := p.Complete(ctx, CompletionOptions{}); err != nil {
		t.Fatalf("first call should consume the burst token without waiting: %v", err)
	}

	start := time.Now()
	if _, err := p.Complete(ctx, CompletionOptions{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if time.Since(start) <= 0 {
		t.Fatal("expected the second call to wait for a refilled token")
	}
}

func TestRateLimitedProvider_CancelledContextReturnsCancelledError(t *testing.T) {
	inner := &fakeLLMProvider{}
	p := &rateLimitedProvider{LLMProvider: inner, limiter: rate.NewLimiter(rate.Limit(1), 0)}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Complete(ctx, CompletionOptions{})
	apiErr, ok := err.(*ApiError)
	if !ok || apiErr.Kind != ErrCancelled {
		t.Fatalf("expected a Cancelled ApiError, got %v", err)
	}
}
