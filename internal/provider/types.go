// Package provider implements the Provider Adapter (spec.md §4.3): a
// uniform completion contract in front of per-vendor wire clients, plus
// retry policy and provider memoization.
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/BrendanGraham14/steer-sub006/internal/message"
)

// Provider names a concrete vendor.
type Provider string

const (
	ProviderAnthropic Provider = "anthropic"
	ProviderOpenAI    Provider = "openai"
	ProviderGoogle    Provider = "google"
	ProviderXAI       Provider = "xai"
)

// AuthMethod names how credentials are supplied to a Provider.
type AuthMethod string

const (
	AuthAPIKey  AuthMethod = "api_key"
	AuthVertex  AuthMethod = "vertex"
	AuthBedrock AuthMethod = "bedrock"
)

// ProviderMeta is static metadata about one (Provider, AuthMethod) pairing.
type ProviderMeta struct {
	Provider    Provider
	AuthMethod  AuthMethod
	EnvVars     []string
	DisplayName string
}

func (m ProviderMeta) Key() string { return string(m.Provider) + ":" + string(m.AuthMethod) }

// ModelInfo describes one model available from a provider.
type ModelInfo struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	DisplayName      string   `json:"displayName,omitempty"`
	InputTokenLimit  int      `json:"inputTokenLimit,omitempty"`
	OutputTokenLimit int      `json:"outputTokenLimit,omitempty"`
	SupportsThinking bool     `json:"supportsThinking,omitempty"`
	ProviderKind     Provider `json:"providerKind"`
}

// Tool is a tool definition as handed to a provider's wire format.
type Tool struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Parameters  any    `json:"parameters"` // JSON Schema
}

// CompletionOptions is the input to a single completion call.
type CompletionOptions struct {
	Model        string
	Messages     []message.Message
	MaxTokens    int
	Temperature  float64
	Tools        []Tool
	SystemPrompt string
}

// ContentBlockType discriminates the normalized response content blocks
// every provider adapter must emit, per spec.md §4.3.
type ContentBlockType string

const (
	ContentText    ContentBlockType = "text"
	ContentToolUse ContentBlockType = "tool_use"
	ContentThought ContentBlockType = "thought"
)

// ContentBlock is one normalized block of a CompletionResponse.
type ContentBlock struct {
	Type ContentBlockType

	Text string

	ToolUseID    string
	ToolUseName  string
	ToolUseInput json.RawMessage

	ThoughtKind      message.ThoughtKind
	ThoughtText      string
	ThoughtSignature string
	ThoughtRedacted  string
}

// Usage reports token accounting for a completion.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// CompletionResponse is the normalized result of a completion call.
type CompletionResponse struct {
	Blocks     []ContentBlock
	StopReason string
	Usage      Usage
}

// Text concatenates every Text block, in emission order.
func (r *CompletionResponse) Text() string {
	var s string
	for _, b := range r.Blocks {
		if b.Type == ContentText {
			s += b.Text
		}
	}
	return s
}

// ToolUses returns every ToolUse block, in emission order.
func (r *CompletionResponse) ToolUses() []ContentBlock {
	var out []ContentBlock
	for _, b := range r.Blocks {
		if b.Type == ContentToolUse {
			out = append(out, b)
		}
	}
	return out
}

// ToAssistantBlocks converts the normalized response into the
// message.AssistantBlock slice the Conversation Store persists.
func (r *CompletionResponse) ToAssistantBlocks() []message.AssistantBlock {
	blocks := make([]message.AssistantBlock, 0, len(r.Blocks))
	for _, b := range r.Blocks {
		switch b.Type {
		case ContentText:
			blocks = append(blocks, message.TextBlock(b.Text))
		case ContentToolUse:
			blocks = append(blocks, message.ToolCallBlock(b.ToolUseID, b.ToolUseName, b.ToolUseInput))
		case ContentThought:
			switch b.ThoughtKind {
			case message.ThoughtSigned:
				blocks = append(blocks, message.SignedThoughtBlock(b.ThoughtText, b.ThoughtSignature))
			case message.ThoughtRedacted:
				blocks = append(blocks, message.RedactedThoughtBlock(b.ThoughtRedacted))
			default:
				blocks = append(blocks, message.SimpleThoughtBlock(b.ThoughtText))
			}
		}
	}
	return blocks
}

// ApiErrorKind enumerates the ApiError taxonomy from spec.md §4.3.
type ApiErrorKind string

const (
	ErrConfiguration   ApiErrorKind = "configuration"
	ErrRateLimited     ApiErrorKind = "rate_limited"
	ErrNoChoices       ApiErrorKind = "no_choices"
	ErrServerError     ApiErrorKind = "server_error"
	ErrCancelled       ApiErrorKind = "cancelled"
	ErrInvalidResponse ApiErrorKind = "invalid_response"
	ErrNetwork         ApiErrorKind = "network"
)

// ApiError is the structured error a completion call can fail with.
type ApiError struct {
	Kind     ApiErrorKind
	Provider string
	Code     int
	Details  string
}

func (e *ApiError) Error() string {
	if e.Provider != "" {
		return fmt.Sprintf("%s[%s]: %s", e.Kind, e.Provider, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Details)
}

func RateLimited(provider, details string) *ApiError {
	return &ApiError{Kind: ErrRateLimited, Provider: provider, Details: details}
}
func NoChoices(provider string) *ApiError {
	return &ApiError{Kind: ErrNoChoices, Provider: provider}
}
func ServerError(provider string, code int, details string) *ApiError {
	return &ApiError{Kind: ErrServerError, Provider: provider, Code: code, Details: details}
}
func Cancelled(provider string) *ApiError {
	return &ApiError{Kind: ErrCancelled, Provider: provider}
}
func InvalidResponse(msg string) *ApiError {
	return &ApiError{Kind: ErrInvalidResponse, Details: msg}
}
func Network(msg string) *ApiError {
	return &ApiError{Kind: ErrNetwork, Details: msg}
}
func Configuration(msg string) *ApiError {
	return &ApiError{Kind: ErrConfiguration, Details: msg}
}

// LLMProvider is the interface every per-vendor wire client implements.
type LLMProvider interface {
	Name() string
	Complete(ctx context.Context, opts CompletionOptions) (*CompletionResponse, error)
	ListModels(ctx context.Context) ([]ModelInfo, error)
}

// ProviderFactory builds an LLMProvider on demand.
type ProviderFactory func(ctx context.Context) (LLMProvider, error)

// CompleteWithRetry implements the retry policy from spec.md §4.3: retry on
// RateLimited with exponential backoff 2^(attempt-1) seconds; retry on
// ServerError and NoChoices without backoff; no retry otherwise. Cancellation
// is checked before every attempt.
func CompleteWithRetry(ctx context.Context, p LLMProvider, opts CompletionOptions, maxAttempts int) (*CompletionResponse, error) {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if ctx.Err() != nil {
			return nil, Cancelled(p.Name())
		}

		resp, err := p.Complete(ctx, opts)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		apiErr, ok := err.(*ApiError)
		if !ok {
			return nil, err
		}

		switch apiErr.Kind {
		case ErrRateLimited:
			if attempt == maxAttempts {
				return nil, err
			}
			backoff := time.Duration(1<<uint(attempt-1)) * time.Second
			select {
			case <-ctx.Done():
				return nil, Cancelled(p.Name())
			case <-time.After(backoff):
			}
		case ErrServerError, ErrNoChoices:
			if attempt == maxAttempts {
				return nil, err
			}
			continue
		default:
			return nil, err
		}
	}
	return nil, lastErr
}
