package xai

import (
	"context"
	"encoding/json"
	"errors"
	"sort"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/shared"

	"github.com/BrendanGraham14/steer-sub006/internal/log"
	"github.com/BrendanGraham14/steer-sub006/internal/message"
	"github.com/BrendanGraham14/steer-sub006/internal/provider"
)

// Client implements provider.LLMProvider for xAI's Grok models, via the
// OpenAI-compatible Chat Completions wire format.
type Client struct {
	client openai.Client
	name   string
}

// NewClient creates a new xAI client with the given OpenAI SDK client.
func NewClient(client openai.Client, name string) *Client {
	return &Client{client: client, name: name}
}

func (c *Client) Name() string { return c.name }

// Complete sends a non-streaming chat completion request.
func (c *Client) Complete(ctx context.Context, opts provider.CompletionOptions) (*provider.CompletionResponse, error) {
	log.LogRequest(c.name, opts.Model, opts)

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(opts.Messages)+1)
	if opts.SystemPrompt != "" {
		messages = append(messages, openai.SystemMessage(opts.SystemPrompt))
	}

	for _, msg := range opts.Messages {
		switch msg.Role {
		case message.RoleUser:
			if text := msg.TextContent(); text != "" {
				messages = append(messages, openai.UserMessage(text))
			}
		case message.RoleAssistant:
			var asstMsg openai.ChatCompletionAssistantMessageParam
			if text := msg.TextContent(); text != "" {
				asstMsg.Content.OfString = openai.Opt(text)
			}
			for _, b := range msg.AssistantBlocks {
				if id, name, params, ok := b.ToolCall(); ok {
					asstMsg.ToolCalls = append(asstMsg.ToolCalls, openai.ChatCompletionMessageToolCallUnionParam{
						OfFunction: &openai.ChatCompletionMessageFunctionToolCallParam{
							ID: id,
							Function: openai.ChatCompletionMessageFunctionToolCallFunctionParam{
								Name:      name,
								Arguments: string(params),
							},
						},
					})
				}
			}
			messages = append(messages, openai.ChatCompletionMessageParamUnion{OfAssistant: &asstMsg})
		case message.RoleTool:
			if msg.ToolResult != nil {
				messages = append(messages, openai.ToolMessage(resultText(*msg.ToolResult), msg.ToolResult.ToolUseID))
			}
		case message.RoleSystem:
			messages = append(messages, openai.SystemMessage(msg.SystemText))
		}
	}

	params := openai.ChatCompletionNewParams{Model: shared.ChatModel(opts.Model), Messages: messages}
	if opts.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(opts.MaxTokens))
	}
	if opts.Temperature > 0 {
		params.Temperature = openai.Float(opts.Temperature)
	}
	if len(opts.Tools) > 0 {
		tools := make([]openai.ChatCompletionToolUnionParam, 0, len(opts.Tools))
		for _, t := range opts.Tools {
			var funcParams openai.FunctionParameters
			if props, ok := t.Parameters.(map[string]any); ok {
				funcParams = props
			}
			tools = append(tools, openai.ChatCompletionToolUnionParam{
				OfFunction: &openai.ChatCompletionFunctionToolParam{
					Function: openai.FunctionDefinitionParam{
						Name:        t.Name,
						Description: openai.String(t.Description),
						Parameters:  funcParams,
					},
				},
			})
		}
		params.Tools = tools
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		if ctx.Err() != nil {
			return nil, provider.Cancelled(c.name)
		}
		log.LogError(c.name, err)
		return nil, classifyError(c.name, err)
	}
	if len(resp.Choices) == 0 {
		return nil, provider.NoChoices(c.name)
	}
	choice := resp.Choices[0]

	normalized := &provider.CompletionResponse{
		Usage: provider.Usage{
			InputTokens:  int(resp.Usage.PromptTokens),
			OutputTokens: int(resp.Usage.CompletionTokens),
		},
	}
	if choice.Message.Content != "" {
		normalized.Blocks = append(normalized.Blocks, provider.ContentBlock{Type: provider.ContentText, Text: choice.Message.Content})
	}
	for _, tc := range choice.Message.ToolCalls {
		normalized.Blocks = append(normalized.Blocks, provider.ContentBlock{
			Type: provider.ContentToolUse, ToolUseID: tc.ID, ToolUseName: tc.Function.Name, ToolUseInput: json.RawMessage(tc.Function.Arguments),
		})
	}

	switch choice.FinishReason {
	case "stop":
		normalized.StopReason = "end_turn"
	case "tool_calls":
		normalized.StopReason = "tool_use"
	case "length":
		normalized.StopReason = "max_tokens"
	default:
		normalized.StopReason = choice.FinishReason
	}

	if len(normalized.Blocks) == 0 {
		return nil, provider.NoChoices(c.name)
	}

	log.LogResponse(c.name, normalized)
	return normalized, nil
}

func resultText(r message.ToolResult) string {
	if r.Err != nil {
		return r.Err.Error()
	}
	return r.Output
}

func classifyError(name string, err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case 429:
			return provider.RateLimited(name, apiErr.Error())
		case 500, 502, 503:
			return provider.ServerError(name, apiErr.StatusCode, apiErr.Error())
		}
	}
	return provider.Network(err.Error())
}

// xaiModels is a static fallback list; xAI's /v1/models endpoint is
// OpenAI-compatible and used first when reachable.
var xaiModels = []provider.ModelInfo{
	{ID: "grok-4", Name: "Grok 4", DisplayName: "Grok 4", SupportsThinking: true, ProviderKind: provider.ProviderXAI},
	{ID: "grok-4-fast", Name: "Grok 4 Fast", DisplayName: "Grok 4 Fast", ProviderKind: provider.ProviderXAI},
	{ID: "grok-3-mini", Name: "Grok 3 Mini", DisplayName: "Grok 3 Mini", ProviderKind: provider.ProviderXAI},
}

// ListModels returns the available models for xAI using the API.
func (c *Client) ListModels(ctx context.Context) ([]provider.ModelInfo, error) {
	page, err := c.client.Models.List(ctx)
	if err != nil {
		return xaiModels, nil
	}

	models := make([]provider.ModelInfo, 0, len(page.Data))
	for _, m := range page.Data {
		models = append(models, provider.ModelInfo{ID: m.ID, Name: m.ID, DisplayName: m.ID, ProviderKind: provider.ProviderXAI})
	}
	if len(models) == 0 {
		return xaiModels, nil
	}

	sort.Slice(models, func(i, j int) bool { return models[i].ID < models[j].ID })
	return models, nil
}

var _ provider.LLMProvider = (*Client)(nil)
