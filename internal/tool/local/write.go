package local

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BrendanGraham14/steer-sub006/internal/message"
	"github.com/BrendanGraham14/steer-sub006/internal/tool"
)

// WriteTool writes a file's full contents, creating it (and any parent
// directories) if it does not exist. Returns a unified diff against the
// prior contents, or a summary line for a brand-new file.
type WriteTool struct {
	Cwd string
}

type writeParams struct {
	FilePath string `json:"file_path"`
	Content  string `json:"content"`
}

func (t *WriteTool) Schema() tool.ToolSchema {
	return tool.ToolSchema{
		Name:        "write",
		Description: "Write a file's full contents, creating it if necessary.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"file_path": map[string]any{"type": "string"},
				"content":   map[string]any{"type": "string"},
			},
			"required": []string{"file_path", "content"},
		},
		RequiresApproval: true,
		ReadOnly:         false,
	}
}

func (t *WriteTool) Execute(ctx context.Context, raw json.RawMessage) (string, error) {
	var p writeParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return "", message.NewToolError(message.ToolErrorInvalidParams, "write", err.Error())
	}
	if p.FilePath == "" {
		return "", message.NewToolError(message.ToolErrorInvalidParams, "write", "file_path is required")
	}

	path := t.resolve(p.FilePath)

	existing, err := os.ReadFile(path)
	isNewFile := err != nil

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", message.NewToolError(message.ToolErrorIO, "write", err.Error())
		}
	}
	if ctx.Err() != nil {
		return "", message.Cancelled("write")
	}
	if err := os.WriteFile(path, []byte(p.Content), 0o644); err != nil {
		return "", message.NewToolError(message.ToolErrorIO, "write", err.Error())
	}

	if isNewFile {
		return fmt.Sprintf("created %s (%d bytes)", p.FilePath, len(p.Content)), nil
	}
	return unifiedDiff(p.FilePath, string(existing), p.Content), nil
}

func (t *WriteTool) resolve(path string) string {
	if !filepath.IsAbs(path) && t.Cwd != "" {
		return filepath.Join(t.Cwd, path)
	}
	return path
}

var _ tool.ExecutableTool = (*WriteTool)(nil)
