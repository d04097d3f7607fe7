package provider

import (
	"context"
	"fmt"
	"sync"
)

// ModelMeta maps one concrete model identifier to the vendor that serves
// it and the flags spec.md §4.3 requires ("Model enum maps each concrete
// model identifier (with aliases) to a ProviderKind and flags").
type ModelMeta struct {
	ID               string
	Aliases          []string
	ProviderKind     Provider
	AuthMethod       AuthMethod
	SupportsThinking bool
}

// models is the static table backing ModelForID. New vendor models are
// added here and picked up by ModelForID/Clients.ForModel without
// touching the session or agent layers.
var models = []ModelMeta{
	{ID: "claude-opus-4-5", ProviderKind: ProviderAnthropic, AuthMethod: AuthAPIKey, SupportsThinking: true},
	{ID: "claude-sonnet-4-5", ProviderKind: ProviderAnthropic, AuthMethod: AuthAPIKey, SupportsThinking: true},
	{ID: "claude-haiku-4-5", ProviderKind: ProviderAnthropic, AuthMethod: AuthAPIKey},
	{ID: "gpt-5", ProviderKind: ProviderOpenAI, AuthMethod: AuthAPIKey},
	{ID: "gpt-5-codex", ProviderKind: ProviderOpenAI, AuthMethod: AuthAPIKey, SupportsThinking: true},
	{ID: "gemini-2.5-pro", ProviderKind: ProviderGoogle, AuthMethod: AuthAPIKey, SupportsThinking: true},
	{ID: "gemini-2.5-flash", ProviderKind: ProviderGoogle, AuthMethod: AuthAPIKey},
	{ID: "grok-4", ProviderKind: ProviderXAI, AuthMethod: AuthAPIKey, SupportsThinking: true},
	{ID: "grok-4-fast", ProviderKind: ProviderXAI, AuthMethod: AuthAPIKey},
	{ID: "grok-3-mini", ProviderKind: ProviderXAI, AuthMethod: AuthAPIKey},
}

// Key identifies the memoization bucket a ModelMeta belongs to: one
// provider client is shared across every model with the same
// (ProviderKind, AuthMethod) pairing.
func (m ModelMeta) Key() string {
	return string(m.ProviderKind) + ":" + string(m.AuthMethod)
}

// ModelForID looks up a model identifier, matching either its canonical
// ID or one of its aliases.
func ModelForID(id string) (ModelMeta, bool) {
	for _, m := range models {
		if m.ID == id {
			return m, true
		}
		for _, a := range m.Aliases {
			if a == id {
				return m, true
			}
		}
	}
	return ModelMeta{}, false
}

// Clients memoizes one LLMProvider instance per (provider, auth method)
// pairing, per spec.md §4.3: "Clients provision exactly one Provider
// instance per Model on demand; instances are memoized behind a
// read-biased lock."
type Clients struct {
	mu      sync.RWMutex
	byKey   map[string]LLMProvider
	factory func(ctx context.Context, key string) (LLMProvider, error)
}

// NewClients builds an empty memoized client cache. factory defaults to
// NewProvider when nil (tests may substitute a fake).
func NewClients(factory func(ctx context.Context, key string) (LLMProvider, error)) *Clients {
	if factory == nil {
		factory = NewProvider
	}
	return &Clients{byKey: make(map[string]LLMProvider), factory: factory}
}

// ForModel resolves modelID to its vendor client, building and caching it
// on first use. Concurrent callers requesting the same model race only
// the write lock's double-checked read, never the underlying factory.
func (c *Clients) ForModel(ctx context.Context, modelID string) (LLMProvider, error) {
	meta, ok := ModelForID(modelID)
	if !ok {
		return nil, fmt.Errorf("unknown model: %s", modelID)
	}
	key := meta.Key()

	c.mu.RLock()
	if client, ok := c.byKey[key]; ok {
		c.mu.RUnlock()
		return client, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if client, ok := c.byKey[key]; ok {
		return client, nil
	}
	client, err := c.factory(ctx, key)
	if err != nil {
		return nil, err
	}
	limited := newRateLimitedProvider(client)
	c.byKey[key] = limited
	return limited, nil
}
