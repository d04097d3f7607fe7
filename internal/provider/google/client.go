package google

import (
	"context"
	"encoding/json"
	"os"
	"sort"
	"strings"

	"google.golang.org/genai"

	"github.com/BrendanGraham14/steer-sub006/internal/log"
	"github.com/BrendanGraham14/steer-sub006/internal/message"
	"github.com/BrendanGraham14/steer-sub006/internal/provider"
)

// Client implements provider.LLMProvider using the Google GenAI SDK.
type Client struct {
	client *genai.Client
	name   string
}

// NewClient creates a new Google client with the given SDK client.
func NewClient(client *genai.Client, name string) *Client {
	return &Client{client: client, name: name}
}

func (c *Client) Name() string { return c.name }

// Complete sends a non-streaming completion request, normalizing the
// response into provider.CompletionResponse per spec.md §4.3.
func (c *Client) Complete(ctx context.Context, opts provider.CompletionOptions) (*provider.CompletionResponse, error) {
	contents := toGoogleContents(opts.Messages)

	config := &genai.GenerateContentConfig{}
	if opts.SystemPrompt != "" {
		config.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: opts.SystemPrompt}}}
	}
	if opts.MaxTokens > 0 {
		config.MaxOutputTokens = int32(opts.MaxTokens)
	}
	if opts.Temperature > 0 {
		temp := float32(opts.Temperature)
		config.Temperature = &temp
	}
	if len(opts.Tools) > 0 {
		funcDecls := make([]*genai.FunctionDeclaration, 0, len(opts.Tools))
		for _, t := range opts.Tools {
			fd := &genai.FunctionDeclaration{Name: t.Name, Description: t.Description}
			if t.Parameters != nil {
				fd.ParametersJsonSchema = t.Parameters
			}
			funcDecls = append(funcDecls, fd)
		}
		config.Tools = []*genai.Tool{{FunctionDeclarations: funcDecls}}
	}

	log.LogRequest(c.name, opts.Model, opts)

	result, err := c.client.Models.GenerateContent(ctx, opts.Model, contents, config)
	if err != nil {
		if ctx.Err() != nil {
			return nil, provider.Cancelled(c.name)
		}
		log.LogError(c.name, err)
		return nil, classifyError(c.name, err)
	}

	normalized := &provider.CompletionResponse{}
	for _, candidate := range result.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part.Text != "" {
				normalized.Blocks = append(normalized.Blocks, provider.ContentBlock{Type: provider.ContentText, Text: part.Text})
			}
			if part.FunctionCall != nil {
				fc := part.FunctionCall
				argsJSON, _ := json.Marshal(fc.Args)
				normalized.Blocks = append(normalized.Blocks, provider.ContentBlock{
					Type: provider.ContentToolUse, ToolUseID: fc.ID, ToolUseName: fc.Name, ToolUseInput: argsJSON,
				})
			}
		}
		if candidate.FinishReason != "" {
			switch candidate.FinishReason {
			case "STOP":
				normalized.StopReason = "end_turn"
			case "MAX_TOKENS":
				normalized.StopReason = "max_tokens"
			default:
				normalized.StopReason = string(candidate.FinishReason)
			}
		}
	}

	if result.UsageMetadata != nil {
		normalized.Usage.InputTokens = int(result.UsageMetadata.PromptTokenCount)
		normalized.Usage.OutputTokens = int(result.UsageMetadata.CandidatesTokenCount)
	}

	if len(normalized.ToolUses()) > 0 && normalized.StopReason == "" {
		normalized.StopReason = "tool_use"
	}

	if len(normalized.Blocks) == 0 {
		return nil, provider.NoChoices(c.name)
	}

	log.LogResponse(c.name, normalized)
	return normalized, nil
}

func toGoogleContents(msgs []message.Message) []*genai.Content {
	contents := make([]*genai.Content, 0, len(msgs))
	for _, msg := range msgs {
		var role string
		var parts []*genai.Part

		switch msg.Role {
		case message.RoleUser:
			role = "user"
			if text := msg.TextContent(); text != "" {
				parts = append(parts, &genai.Part{Text: text})
			}
		case message.RoleAssistant:
			role = "model"
			if text := msg.TextContent(); text != "" {
				parts = append(parts, &genai.Part{Text: text})
			}
			for _, b := range msg.AssistantBlocks {
				if id, name, params, ok := b.ToolCall(); ok {
					var args map[string]any
					if len(params) > 0 {
						_ = json.Unmarshal(params, &args)
					}
					parts = append(parts, &genai.Part{FunctionCall: &genai.FunctionCall{ID: id, Name: name, Args: args}})
				}
			}
		case message.RoleTool:
			role = "user"
			if msg.ToolResult != nil {
				result := map[string]any{"result": resultText(*msg.ToolResult)}
				parts = append(parts, &genai.Part{
					FunctionResponse: &genai.FunctionResponse{
						ID:       msg.ToolResult.ToolUseID,
						Name:     msg.ToolResult.ToolUseID,
						Response: result,
					},
				})
			}
		case message.RoleSystem:
			role = "user"
			parts = append(parts, &genai.Part{Text: msg.SystemText})
		}

		if len(parts) == 0 {
			continue
		}
		contents = append(contents, &genai.Content{Role: role, Parts: parts})
	}
	return contents
}

func resultText(r message.ToolResult) string {
	if r.Err != nil {
		return r.Err.Error()
	}
	return r.Output
}

func classifyError(name string, err error) error {
	if apiErr, ok := err.(genai.APIError); ok {
		switch apiErr.Code {
		case 429:
			return provider.RateLimited(name, apiErr.Message)
		case 500, 502, 503:
			return provider.ServerError(name, apiErr.Code, apiErr.Message)
		}
	}
	return provider.Network(err.Error())
}

// ListModels returns the available models for Google using the API.
func (c *Client) ListModels(ctx context.Context) ([]provider.ModelInfo, error) {
	models := make([]provider.ModelInfo, 0)

	for m, err := range c.client.Models.All(ctx) {
		if err != nil {
			return nil, err
		}

		name := m.Name
		if strings.Contains(name, "gemini") {
			id, _ := strings.CutPrefix(name, "models/")

			if strings.Contains(id, "-exp") || strings.Contains(id, "-latest") {
				continue
			}

			displayName := m.DisplayName
			if displayName == "" {
				displayName = id
			}

			models = append(models, provider.ModelInfo{
				ID:               id,
				Name:             displayName,
				DisplayName:      displayName,
				InputTokenLimit:  int(m.InputTokenLimit),
				OutputTokenLimit: int(m.OutputTokenLimit),
				ProviderKind:     provider.ProviderGoogle,
			})
		}
	}

	sort.Slice(models, func(i, j int) bool { return models[i].ID < models[j].ID })

	return models, nil
}

// NewAPIKeyClient creates a new Google client using API Key authentication.
func NewAPIKeyClient(ctx context.Context) (provider.LLMProvider, error) {
	apiKey := os.Getenv("GOOGLE_API_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}

	return NewClient(client, "google:api_key"), nil
}

var _ provider.LLMProvider = (*Client)(nil)
