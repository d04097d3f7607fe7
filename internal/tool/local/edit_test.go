package local

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/BrendanGraham14/steer-sub006/internal/message"
)

func TestEditTool_ReplacesUniqueOccurrence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.go")
	if err := os.WriteFile(path, []byte("package a\n\nfunc f() {}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	tool := &EditTool{Cwd: dir}
	params, _ := json.Marshal(editParams{FilePath: "a.go", OldString: "func f() {}", NewString: "func g() {}"})

	out, err := tool.Execute(context.Background(), params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out == "" {
		t.Fatal("expected a non-empty unified diff")
	}

	got, _ := os.ReadFile(path)
	if string(got) != "package a\n\nfunc g() {}\n" {
		t.Fatalf("unexpected file contents: %q", got)
	}
}

func TestEditTool_AmbiguousMatchRequiresReplaceAll(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	os.WriteFile(path, []byte("x\nx\n"), 0o644)

	tool := &EditTool{Cwd: dir}
	params, _ := json.Marshal(editParams{FilePath: "a.txt", OldString: "x", NewString: "y"})

	_, err := tool.Execute(context.Background(), params)
	if err == nil {
		t.Fatal("expected an ambiguous-match error")
	}
	var toolErr *message.ToolError
	if !castToolError(err, &toolErr) || toolErr.Kind != message.ToolErrorExecution {
		t.Fatalf("expected an execution ToolError, got %v", err)
	}
}

func TestEditTool_NotFoundReturnsExecutionError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	os.WriteFile(path, []byte("hello\n"), 0o644)

	tool := &EditTool{Cwd: dir}
	params, _ := json.Marshal(editParams{FilePath: "a.txt", OldString: "missing", NewString: "y"})

	_, err := tool.Execute(context.Background(), params)
	if err == nil {
		t.Fatal("expected a not-found error")
	}
	var toolErr *message.ToolError
	if !castToolError(err, &toolErr) || toolErr.Kind != message.ToolErrorExecution {
		t.Fatalf("expected an execution ToolError, got %v", err)
	}
}

func castToolError(err error, out **message.ToolError) bool {
	te, ok := err.(*message.ToolError)
	if !ok {
		return false
	}
	*out = te
	return true
}
