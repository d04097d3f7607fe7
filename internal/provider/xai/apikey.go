// Package xai implements the LLMProvider interface for xAI's Grok models.
// xAI's API is OpenAI-compatible, so we reuse the openai-go SDK with a
// custom base URL, the same approach the pack uses for Moonshot.
package xai

import (
	"context"
	"os"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/BrendanGraham14/steer-sub006/internal/provider"
)

// APIKeyMeta is the metadata for xAI via API Key.
var APIKeyMeta = provider.ProviderMeta{
	Provider:    provider.ProviderXAI,
	AuthMethod:  provider.AuthAPIKey,
	EnvVars:     []string{"XAI_API_KEY"},
	DisplayName: "Direct API",
}

// NewAPIKeyClient creates a new xAI client using API Key authentication.
func NewAPIKeyClient(ctx context.Context) (provider.LLMProvider, error) {
	baseURL := os.Getenv("XAI_BASE_URL")
	if baseURL == "" {
		baseURL = "https://api.x.ai/v1"
	}

	client := openai.NewClient(
		option.WithAPIKey(os.Getenv("XAI_API_KEY")),
		option.WithBaseURL(baseURL),
	)
	return NewClient(client, "xai:api_key"), nil
}

func init() {
	provider.Register(APIKeyMeta, NewAPIKeyClient)
}
