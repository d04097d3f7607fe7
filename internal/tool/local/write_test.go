package local

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteTool_CreatesNewFileAndParentDirs(t *testing.T) {
	dir := t.TempDir()
	tool := &WriteTool{Cwd: dir}
	params, _ := json.Marshal(writeParams{FilePath: "nested/a.txt", Content: "hello\n"})

	out, err := tool.Execute(context.Background(), params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "created") {
		t.Fatalf("expected a created-file summary, got %q", out)
	}

	got, err := os.ReadFile(filepath.Join(dir, "nested/a.txt"))
	if err != nil {
		t.Fatalf("file was not written: %v", err)
	}
	if string(got) != "hello\n" {
		t.Fatalf("unexpected contents: %q", got)
	}
}

func TestWriteTool_OverwriteProducesDiff(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	os.WriteFile(path, []byte("old\n"), 0o644)

	tool := &WriteTool{Cwd: dir}
	params, _ := json.Marshal(writeParams{FilePath: "a.txt", Content: "new\n"})

	out, err := tool.Execute(context.Background(), params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "-old") || !strings.Contains(out, "+new") {
		t.Fatalf("expected a unified diff, got %q", out)
	}
}
