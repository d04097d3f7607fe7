package log

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BrendanGraham14/steer-sub006/internal/provider"
)

// DevRequest is the JSON snapshot of one request written to DEV_DIR.
type DevRequest struct {
	Turn         int              `json:"turn"`
	Timestamp    time.Time        `json:"timestamp"`
	Provider     string           `json:"provider"`
	Model        string           `json:"model"`
	MaxTokens    int              `json:"max_tokens"`
	Temperature  float64          `json:"temperature"`
	SystemPrompt string           `json:"system_prompt,omitempty"`
	Tools        []provider.Tool  `json:"tools,omitempty"`
	Messages     json.RawMessage  `json:"messages"`
}

// DevResponse is the JSON snapshot of one response written to DEV_DIR.
type DevResponse struct {
	Turn       int                      `json:"turn"`
	Timestamp  time.Time                `json:"timestamp"`
	Provider   string                   `json:"provider"`
	StopReason string                   `json:"stop_reason"`
	Text       string                   `json:"text,omitempty"`
	ToolCalls  []provider.ContentBlock  `json:"tool_calls,omitempty"`
	Usage      provider.Usage           `json:"usage"`
}

// WriteDevRequest writes request data to a JSON file under DEV_DIR.
func WriteDevRequest(providerName, model string, opts provider.CompletionOptions, turn int) {
	if !devEnabled {
		return
	}
	msgsJSON, _ := json.Marshal(opts.Messages)
	req := DevRequest{
		Turn:         turn,
		Timestamp:    time.Now().UTC(),
		Provider:     providerName,
		Model:        model,
		MaxTokens:    opts.MaxTokens,
		Temperature:  opts.Temperature,
		SystemPrompt: opts.SystemPrompt,
		Tools:        opts.Tools,
		Messages:     msgsJSON,
	}
	writeJSON(filepath.Join(devDir, fmt.Sprintf("turn-%03d-request.json", turn)), req)
}

// WriteDevResponse writes response data to a JSON file under DEV_DIR.
func WriteDevResponse(providerName string, resp *provider.CompletionResponse, turn int) {
	if !devEnabled {
		return
	}
	res := DevResponse{
		Turn:       turn,
		Timestamp:  time.Now().UTC(),
		Provider:   providerName,
		StopReason: resp.StopReason,
		Text:       resp.Text(),
		ToolCalls:  resp.ToolUses(),
		Usage:      resp.Usage,
	}
	writeJSON(filepath.Join(devDir, fmt.Sprintf("turn-%03d-response.json", turn)), res)
}

func writeJSON(filename string, data any) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return
	}
	_ = os.WriteFile(filename, jsonData, 0644)
}
