// Package provider provides interfaces and implementations for interacting with LLM providers.
package provider

import (
	"context"
	"fmt"

	"github.com/BrendanGraham14/steer-sub006/internal/provider/anthropic"
	"github.com/BrendanGraham14/steer-sub006/internal/provider/google"
	"github.com/BrendanGraham14/steer-sub006/internal/provider/openai"
	"github.com/BrendanGraham14/steer-sub006/internal/provider/xai"
)

// NewProvider creates a new LLMProvider from a "provider:authMethod" key.
func NewProvider(ctx context.Context, name string) (LLMProvider, error) {
	switch name {
	case "anthropic:api_key":
		return anthropic.NewAPIKeyClient(ctx)
	case "anthropic:vertex":
		return anthropic.NewVertexClient(ctx)
	case "google:api_key":
		return google.NewAPIKeyClient(ctx)
	case "openai:api_key":
		return openai.NewAPIKeyClient(ctx)
	case "xai:api_key":
		return xai.NewAPIKeyClient(ctx)
	default:
		return nil, fmt.Errorf("unknown provider: %s", name)
	}
}
