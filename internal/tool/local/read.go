package local

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BrendanGraham14/steer-sub006/internal/message"
	"github.com/BrendanGraham14/steer-sub006/internal/tool"
)

const (
	readMaxLines  = 2000
	readMaxLineLen = 500
)

// ReadTool reads file contents. A minimal read-only reference
// ExecutableTool, grounded on the teacher's file-reading conventions,
// used to exercise ToolVisibility's ReadOnly filter.
type ReadTool struct {
	Cwd string
}

type readParams struct {
	FilePath string `json:"file_path"`
	Offset   int    `json:"offset"`
	Limit    int    `json:"limit"`
}

func (t *ReadTool) Schema() tool.ToolSchema {
	return tool.ToolSchema{
		Name:        "read",
		Description: "Read file contents from the workspace.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"file_path": map[string]any{"type": "string", "description": "Path to the file, absolute or relative to the workspace root"},
				"offset":    map[string]any{"type": "integer", "description": "Line number to start reading from (1-based)"},
				"limit":     map[string]any{"type": "integer", "description": "Maximum number of lines to read"},
			},
			"required": []string{"file_path"},
		},
		RequiresApproval: false,
		ReadOnly:         true,
	}
}

func (t *ReadTool) Execute(ctx context.Context, raw json.RawMessage) (string, error) {
	var p readParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return "", message.NewToolError(message.ToolErrorInvalidParams, "read", err.Error())
	}
	if p.FilePath == "" {
		return "", message.NewToolError(message.ToolErrorInvalidParams, "read", "file_path is required")
	}

	path := p.FilePath
	if !filepath.IsAbs(path) && t.Cwd != "" {
		path = filepath.Join(t.Cwd, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return "", message.NewToolError(message.ToolErrorIO, "read", err.Error())
	}
	defer f.Close()

	offset := p.Offset
	if offset < 1 {
		offset = 1
	}
	limit := p.Limit
	if limit <= 0 {
		limit = readMaxLines
	}

	var sb strings.Builder
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNum := 0
	written := 0
	for scanner.Scan() {
		lineNum++
		if ctx.Err() != nil {
			return "", message.Cancelled("read")
		}
		if lineNum < offset {
			continue
		}
		if written >= limit {
			break
		}
		line := scanner.Text()
		if len(line) > readMaxLineLen {
			line = line[:readMaxLineLen] + "…"
		}
		fmt.Fprintf(&sb, "%d\t%s\n", lineNum, line)
		written++
	}
	if err := scanner.Err(); err != nil {
		return "", message.NewToolError(message.ToolErrorIO, "read", err.Error())
	}

	return sb.String(), nil
}

var _ tool.ExecutableTool = (*ReadTool)(nil)
