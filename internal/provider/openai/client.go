package openai

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/responses"
	"github.com/openai/openai-go/v3/shared"

	"github.com/BrendanGraham14/steer-sub006/internal/log"
	"github.com/BrendanGraham14/steer-sub006/internal/message"
	"github.com/BrendanGraham14/steer-sub006/internal/provider"
)

// Client implements provider.LLMProvider using the OpenAI SDK.
type Client struct {
	client openai.Client
	name   string
}

// NewClient creates a new OpenAI client with the given SDK client.
func NewClient(client openai.Client, name string) *Client {
	return &Client{client: client, name: name}
}

func (c *Client) Name() string { return c.name }

// isResponsesModel returns true if the model uses the Responses API instead of Chat Completions.
func isResponsesModel(model string) bool {
	return strings.Contains(model, "codex")
}

// Complete sends a non-streaming completion request, routing to the
// Responses API for codex models and Chat Completions for all others.
func (c *Client) Complete(ctx context.Context, opts provider.CompletionOptions) (*provider.CompletionResponse, error) {
	log.LogRequest(c.name, opts.Model, opts)

	var normalized *provider.CompletionResponse
	var err error
	if isResponsesModel(opts.Model) {
		normalized, err = c.completeResponses(ctx, opts)
	} else {
		normalized, err = c.completeChatCompletions(ctx, opts)
	}
	if err != nil {
		if ctx.Err() != nil {
			return nil, provider.Cancelled(c.name)
		}
		log.LogError(c.name, err)
		return nil, classifyError(c.name, err)
	}
	if len(normalized.Blocks) == 0 {
		return nil, provider.NoChoices(c.name)
	}
	log.LogResponse(c.name, normalized)
	return normalized, nil
}

func (c *Client) completeResponses(ctx context.Context, opts provider.CompletionOptions) (*provider.CompletionResponse, error) {
	var inputItems responses.ResponseInputParam

	for _, msg := range opts.Messages {
		switch msg.Role {
		case message.RoleUser:
			if text := msg.TextContent(); text != "" {
				inputItems = append(inputItems, responses.ResponseInputItemUnionParam{
					OfMessage: &responses.EasyInputMessageParam{
						Role:    responses.EasyInputMessageRoleUser,
						Content: responses.EasyInputMessageContentUnionParam{OfString: openai.Opt(text)},
					},
				})
			}
		case message.RoleAssistant:
			if text := msg.TextContent(); text != "" {
				inputItems = append(inputItems, responses.ResponseInputItemUnionParam{
					OfMessage: &responses.EasyInputMessageParam{
						Role:    responses.EasyInputMessageRoleAssistant,
						Content: responses.EasyInputMessageContentUnionParam{OfString: openai.Opt(text)},
					},
				})
			}
			for _, b := range msg.AssistantBlocks {
				if id, name, params, ok := b.ToolCall(); ok {
					inputItems = append(inputItems, responses.ResponseInputItemUnionParam{
						OfFunctionCall: &responses.ResponseFunctionToolCallParam{
							CallID:    id,
							Name:      name,
							Arguments: string(params),
						},
					})
				}
			}
		case message.RoleTool:
			if msg.ToolResult != nil {
				inputItems = append(inputItems, responses.ResponseInputItemUnionParam{
					OfFunctionCallOutput: &responses.ResponseInputItemFunctionCallOutputParam{
						CallID: msg.ToolResult.ToolUseID,
						Output: responses.ResponseInputItemFunctionCallOutputOutputUnionParam{
							OfString: openai.Opt(resultText(*msg.ToolResult)),
						},
					},
				})
			}
		case message.RoleSystem:
			inputItems = append(inputItems, responses.ResponseInputItemUnionParam{
				OfMessage: &responses.EasyInputMessageParam{
					Role:    responses.EasyInputMessageRoleSystem,
					Content: responses.EasyInputMessageContentUnionParam{OfString: openai.Opt(msg.SystemText)},
				},
			})
		}
	}

	params := responses.ResponseNewParams{
		Model: opts.Model,
		Input: responses.ResponseNewParamsInputUnion{OfInputItemList: inputItems},
	}
	if opts.SystemPrompt != "" {
		params.Instructions = openai.Opt(opts.SystemPrompt)
	}
	if opts.MaxTokens > 0 {
		params.MaxOutputTokens = openai.Opt(int64(opts.MaxTokens))
	}
	if opts.Temperature > 0 {
		params.Temperature = openai.Opt(opts.Temperature)
	}
	if len(opts.Tools) > 0 {
		tools := make([]responses.ToolUnionParam, len(opts.Tools))
		for i, t := range opts.Tools {
			var funcParams map[string]any
			if props, ok := t.Parameters.(map[string]any); ok {
				funcParams = props
			}
			tools[i] = responses.ToolUnionParam{
				OfFunction: &responses.FunctionToolParam{
					Name:        t.Name,
					Description: openai.Opt(t.Description),
					Parameters:  funcParams,
				},
			}
		}
		params.Tools = tools
	}

	resp, err := c.client.Responses.New(ctx, params)
	if err != nil {
		return nil, err
	}

	normalized := &provider.CompletionResponse{
		Usage: provider.Usage{
			InputTokens:  int(resp.Usage.InputTokens),
			OutputTokens: int(resp.Usage.OutputTokens),
		},
	}
	hasToolCalls := false
	for _, item := range resp.Output {
		switch item.Type {
		case "message":
			m := item.AsMessage()
			for _, part := range m.Content {
				if part.Type == "output_text" {
					normalized.Blocks = append(normalized.Blocks, provider.ContentBlock{Type: provider.ContentText, Text: part.Text})
				}
			}
		case "function_call":
			fc := item.AsFunctionCall()
			hasToolCalls = true
			normalized.Blocks = append(normalized.Blocks, provider.ContentBlock{
				Type: provider.ContentToolUse, ToolUseID: fc.CallID, ToolUseName: fc.Name, ToolUseInput: json.RawMessage(fc.Arguments),
			})
		}
	}

	switch resp.Status {
	case responses.ResponseStatusCompleted:
		if hasToolCalls {
			normalized.StopReason = "tool_use"
		} else {
			normalized.StopReason = "end_turn"
		}
	case responses.ResponseStatusIncomplete:
		normalized.StopReason = "max_tokens"
	default:
		normalized.StopReason = string(resp.Status)
	}

	return normalized, nil
}

func (c *Client) completeChatCompletions(ctx context.Context, opts provider.CompletionOptions) (*provider.CompletionResponse, error) {
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
		return nil, err
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

// ListModels returns the available models for OpenAI using the API.
func (c *Client) ListModels(ctx context.Context) ([]provider.ModelInfo, error) {
	page, err := c.client.Models.List(ctx)
	if err != nil {
		return nil, err
	}

	models := make([]provider.ModelInfo, 0)

	for _, m := range page.Data {
		id := m.ID
		if strings.HasPrefix(id, "dall-e") ||
			strings.HasPrefix(id, "tts-") ||
			strings.HasPrefix(id, "whisper-") ||
			strings.HasPrefix(id, "text-embedding") ||
			strings.HasPrefix(id, "omni-moderation") ||
			strings.HasPrefix(id, "davinci") ||
			strings.HasPrefix(id, "babbage") ||
			strings.HasPrefix(id, "sora") ||
			strings.HasPrefix(id, "gpt-image") ||
			strings.Contains(id, "-tts") ||
			strings.Contains(id, "-transcribe") ||
			strings.Contains(id, "-realtime") ||
			strings.Contains(id, "computer-use") ||
			strings.HasSuffix(id, "-instruct") {
			continue
		}

		models = append(models, provider.ModelInfo{
			ID: id, Name: id, DisplayName: id, ProviderKind: provider.ProviderOpenAI,
		})
	}

	sort.Slice(models, func(i, j int) bool { return models[i].ID < models[j].ID })

	return models, nil
}

var _ provider.LLMProvider = (*Client)(nil)
