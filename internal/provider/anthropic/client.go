package anthropic

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/BrendanGraham14/steer-sub006/internal/log"
	"github.com/BrendanGraham14/steer-sub006/internal/message"
	"github.com/BrendanGraham14/steer-sub006/internal/provider"
)

// Client implements provider.LLMProvider using the Anthropic SDK.
type Client struct {
	client       anthropic.Client
	name         string
	cachedModels []provider.ModelInfo
}

func NewClient(client anthropic.Client, name string) *Client {
	return &Client{client: client, name: name}
}

func (c *Client) Name() string { return c.name }

// Complete sends a non-streaming completion request, normalizing the
// response into provider.CompletionResponse per spec.md §4.3.
func (c *Client) Complete(ctx context.Context, opts provider.CompletionOptions) (*provider.CompletionResponse, error) {
	msgs := toAnthropicMessages(opts.Messages)

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(opts.Model),
		MaxTokens: int64(opts.MaxTokens),
		Messages:  msgs,
	}
	if opts.SystemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: opts.SystemPrompt}}
	}
	if len(opts.Tools) > 0 {
		params.Tools = toAnthropicTools(opts.Tools)
	}

	log.LogRequest(c.name, opts.Model, opts)

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		if ctx.Err() != nil {
			return nil, provider.Cancelled(c.name)
		}
		log.LogError(c.name, err)
		return nil, classifyError(c.name, err)
	}

	normalized := &provider.CompletionResponse{
		StopReason: string(resp.StopReason),
		Usage: provider.Usage{
			InputTokens:  int(resp.Usage.InputTokens),
			OutputTokens: int(resp.Usage.OutputTokens),
		},
	}
	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			normalized.Blocks = append(normalized.Blocks, provider.ContentBlock{Type: provider.ContentText, Text: block.Text})
		case "tool_use":
			input, _ := json.Marshal(block.Input)
			normalized.Blocks = append(normalized.Blocks, provider.ContentBlock{
				Type: provider.ContentToolUse, ToolUseID: block.ID, ToolUseName: block.Name, ToolUseInput: input,
			})
		case "thinking":
			normalized.Blocks = append(normalized.Blocks, provider.ContentBlock{
				Type: provider.ContentThought, ThoughtKind: message.ThoughtSigned,
				ThoughtText: block.Thinking, ThoughtSignature: block.Signature,
			})
		case "redacted_thinking":
			normalized.Blocks = append(normalized.Blocks, provider.ContentBlock{
				Type: provider.ContentThought, ThoughtKind: message.ThoughtRedacted, ThoughtRedacted: block.Data,
			})
		}
	}

	if len(normalized.Blocks) == 0 {
		return nil, provider.NoChoices(c.name)
	}

	log.LogResponse(c.name, normalized)
	return normalized, nil
}

func classifyError(name string, err error) error {
	if apiErr, ok := err.(*anthropic.Error); ok {
		switch apiErr.StatusCode {
		case 429:
			return provider.RateLimited(name, apiErr.Error())
		case 500, 502, 503, 529:
			return provider.ServerError(name, apiErr.StatusCode, apiErr.Error())
		}
	}
	return provider.Network(err.Error())
}

func toAnthropicMessages(msgs []message.Message) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case message.RoleUser:
			if blocks := userBlocksToAnthropic(m); len(blocks) > 0 {
				out = append(out, anthropic.NewUserMessage(blocks...))
			}
		case message.RoleAssistant:
			if blocks := assistantBlocksToAnthropic(m); len(blocks) > 0 {
				out = append(out, anthropic.NewAssistantMessage(blocks...))
			}
		case message.RoleTool:
			if m.ToolResult != nil {
				out = append(out, anthropic.NewUserMessage(
					anthropic.NewToolResultBlock(m.ToolResult.ToolUseID, resultText(*m.ToolResult), m.ToolResult.IsError()),
				))
			}
		case message.RoleSystem:
			// synthetic compaction summaries fold into a user turn rather
			// than get their own wire role
			out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(m.SystemText)))
		}
	}
	return out
}

func resultText(r message.ToolResult) string {
	if r.Err != nil {
		return r.Err.Error()
	}
	return r.Output
}

func userBlocksToAnthropic(m message.Message) []anthropic.ContentBlockParamUnion {
	var blocks []anthropic.ContentBlockParamUnion
	for _, b := range m.UserBlocks {
		switch b.Type {
		case message.UserBlockText:
			if b.Text != "" {
				blocks = append(blocks, anthropic.NewTextBlock(b.Text))
			}
		case message.UserBlockCommandExec:
			text := fmt.Sprintf("$ %s\n%s%s", b.Command, b.Stdout, b.Stderr)
			blocks = append(blocks, anthropic.NewTextBlock(text))
		case message.UserBlockAppCommand:
			blocks = append(blocks, anthropic.NewTextBlock(fmt.Sprintf("/%s %s", b.AppCommandKind, b.AppResponse)))
		}
	}
	return blocks
}

func assistantBlocksToAnthropic(m message.Message) []anthropic.ContentBlockParamUnion {
	var blocks []anthropic.ContentBlockParamUnion
	for _, b := range m.AssistantBlocks {
		switch b.Type {
		case message.AssistantBlockText:
			if b.Text != "" {
				blocks = append(blocks, anthropic.NewTextBlock(b.Text))
			}
		case message.AssistantBlockToolCall:
			var input any = map[string]any{}
			if len(b.ToolCallParams) > 0 {
				_ = json.Unmarshal(b.ToolCallParams, &input)
			}
			blocks = append(blocks, anthropic.NewToolUseBlock(b.ToolCallID, input, b.ToolCallName))
		case message.AssistantBlockThought:
			switch b.ThoughtKind {
			case message.ThoughtSigned:
				blocks = append(blocks, anthropic.NewThinkingBlock(b.ThoughtSignature, b.ThoughtText))
			case message.ThoughtRedacted:
				blocks = append(blocks, anthropic.NewRedactedThinkingBlock(b.ThoughtRedacted))
			}
		}
	}
	return blocks
}

func toAnthropicTools(tools []provider.Tool) []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, 0, len(tools))
	for _, t := range tools {
		schema := anthropic.ToolInputSchemaParam{}
		if props, ok := t.Parameters.(map[string]any); ok {
			if properties, ok := props["properties"]; ok {
				schema.Properties = properties
			}
			if required, ok := props["required"].([]string); ok {
				schema.Required = required
			} else if required, ok := props["required"].([]any); ok {
				strs := make([]string, 0, len(required))
				for _, r := range required {
					if s, ok := r.(string); ok {
						strs = append(strs, s)
					}
				}
				schema.Required = strs
			}
		}
		out = append(out, anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{Name: t.Name, Description: anthropic.String(t.Description), InputSchema: schema},
		})
	}
	return out
}

var defaultModels = []provider.ModelInfo{
	{ID: "claude-opus-4-5", Name: "Claude Opus 4.5", DisplayName: "Claude Opus 4.5 (Most Capable)", SupportsThinking: true, ProviderKind: provider.ProviderAnthropic},
	{ID: "claude-sonnet-4-5", Name: "Claude Sonnet 4.5", DisplayName: "Claude Sonnet 4.5 (Balanced)", SupportsThinking: true, ProviderKind: provider.ProviderAnthropic},
	{ID: "claude-haiku-4-5", Name: "Claude Haiku 4.5", DisplayName: "Claude Haiku 4.5 (Fast)", ProviderKind: provider.ProviderAnthropic},
}

func (c *Client) ListModels(ctx context.Context) ([]provider.ModelInfo, error) {
	if len(c.cachedModels) > 0 {
		return c.cachedModels, nil
	}
	models, err := c.fetchModels(ctx)
	if err != nil {
		c.cachedModels = defaultModels
		return c.cachedModels, nil
	}
	c.cachedModels = models
	return c.cachedModels, nil
}

func (c *Client) fetchModels(ctx context.Context) ([]provider.ModelInfo, error) {
	pager := c.client.Models.ListAutoPaging(ctx, anthropic.ModelListParams{})
	var models []provider.ModelInfo
	for pager.Next() {
		m := pager.Current()
		models = append(models, provider.ModelInfo{ID: m.ID, Name: m.DisplayName, DisplayName: m.DisplayName, ProviderKind: provider.ProviderAnthropic})
	}
	if err := pager.Err(); err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, fmt.Errorf("no models returned from API")
	}
	return models, nil
}

var _ provider.LLMProvider = (*Client)(nil)
