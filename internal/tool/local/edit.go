package local

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"

	"github.com/BrendanGraham14/steer-sub006/internal/message"
	"github.com/BrendanGraham14/steer-sub006/internal/tool"
)

// EditTool replaces an exact string occurrence in a file and returns
// the unified diff of the change. A file-modifying reference
// ExecutableTool; never read-only, always approval-gated.
type EditTool struct {
	Cwd string
}

type editParams struct {
	FilePath   string `json:"file_path"`
	OldString  string `json:"old_string"`
	NewString  string `json:"new_string"`
	ReplaceAll bool   `json:"replace_all"`
}

func (t *EditTool) Schema() tool.ToolSchema {
	return tool.ToolSchema{
		Name:        "edit",
		Description: "Replace an exact string occurrence in a file.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"file_path":   map[string]any{"type": "string"},
				"old_string":  map[string]any{"type": "string"},
				"new_string":  map[string]any{"type": "string"},
				"replace_all": map[string]any{"type": "boolean", "description": "Replace every occurrence instead of requiring exactly one"},
			},
			"required": []string{"file_path", "old_string", "new_string"},
		},
		RequiresApproval: true,
		ReadOnly:         false,
	}
}

func (t *EditTool) Execute(ctx context.Context, raw json.RawMessage) (string, error) {
	var p editParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return "", message.NewToolError(message.ToolErrorInvalidParams, "edit", err.Error())
	}
	if p.FilePath == "" || p.OldString == "" {
		return "", message.NewToolError(message.ToolErrorInvalidParams, "edit", "file_path and old_string are required")
	}
	if p.OldString == p.NewString {
		return "", message.NewToolError(message.ToolErrorInvalidParams, "edit", "old_string and new_string are identical")
	}

	path := t.resolve(p.FilePath)
	data, err := os.ReadFile(path)
	if err != nil {
		return "", message.NewToolError(message.ToolErrorIO, "edit", err.Error())
	}
	oldContent := string(data)

	count := strings.Count(oldContent, p.OldString)
	if count == 0 {
		return "", message.NewToolError(message.ToolErrorExecution, "edit", "old_string not found in file")
	}
	if count > 1 && !p.ReplaceAll {
		return "", message.NewToolError(message.ToolErrorExecution, "edit", fmt.Sprintf("old_string is not unique: %d matches found, pass replace_all to replace them all", count))
	}

	var newContent string
	if p.ReplaceAll {
		newContent = strings.ReplaceAll(oldContent, p.OldString, p.NewString)
	} else {
		newContent = strings.Replace(oldContent, p.OldString, p.NewString, 1)
	}

	if ctx.Err() != nil {
		return "", message.Cancelled("edit")
	}
	if err := os.WriteFile(path, []byte(newContent), 0o644); err != nil {
		return "", message.NewToolError(message.ToolErrorIO, "edit", err.Error())
	}

	return unifiedDiff(p.FilePath, oldContent, newContent), nil
}

func (t *EditTool) resolve(path string) string {
	if !filepath.IsAbs(path) && t.Cwd != "" {
		return filepath.Join(t.Cwd, path)
	}
	return path
}

// unifiedDiff renders a myers-algorithm unified diff of oldContent →
// newContent, the textual form surfaced in ToolResult output for
// file-modifying tools (spec.md's dependency table assigns
// github.com/hexops/gotextdiff to this concern).
func unifiedDiff(filePath, oldContent, newContent string) string {
	edits := myers.ComputeEdits(span.URIFromPath(filePath), oldContent, newContent)
	unified := gotextdiff.ToUnified(filePath, filePath, oldContent, edits)
	return fmt.Sprint(unified)
}

var _ tool.ExecutableTool = (*EditTool)(nil)
