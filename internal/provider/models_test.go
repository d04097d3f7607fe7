package provider

import (
	"context"
	"testing"
)

func TestModelForID(t *testing.T) {
	meta, ok := ModelForID("claude-sonnet-4-5")
	if !ok {
		t.Fatal("expected claude-sonnet-4-5 to resolve")
	}
	if meta.ProviderKind != ProviderAnthropic {
		t.Fatalf("want ProviderAnthropic, got %v", meta.ProviderKind)
	}

	if _, ok := ModelForID("not-a-real-model"); ok {
		t.Fatal("expected unknown model to not resolve")
	}
}

func TestClients_MemoizesPerKey(t *testing.T) {
	calls := 0
	fake := &fakeLLMProvider{}
	c := NewClients(func(ctx context.Context, key string) (LLMProvider, error) {
		calls++
		return fake, nil
	})

	var first LLMProvider
	for i := 0; i < 3; i++ {
		client, err := c.ForModel(context.Background(), "grok-4")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		limited, ok := client.(*rateLimitedProvider)
		if !ok {
			t.Fatalf("expected ForModel to wrap the factory's client in a rate limiter, got %T", client)
		}
		if limited.LLMProvider != fake {
			t.Fatal("expected the memoized fake client behind the rate limiter")
		}
		if i == 0 {
			first = client
		} else if client != first {
			t.Fatal("expected the same memoized client instance back on every call")
		}
	}
	if calls != 1 {
		t.Fatalf("expected factory called exactly once, got %d", calls)
	}
}

type fakeLLMProvider struct{}

func (f *fakeLLMProvider) Name() string { return "fake" }
func (f *fakeLLMProvider) Complete(ctx context.Context, opts CompletionOptions) (*CompletionResponse, error) {
	return &CompletionResponse{}, nil
}
func (f *fakeLLMProvider) ListModels(ctx context.Context) ([]ModelInfo, error) { return nil, nil }
