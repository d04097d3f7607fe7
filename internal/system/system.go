// Package system builds the system prompt from a model-specific base plus
// workspace environment context (cwd, platform, git status, memory files).
package system

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/BrendanGraham14/steer-sub006/internal/log"
	"go.uber.org/zap"
)

const maxImportDepth = 5

// Config holds the inputs needed to assemble a system prompt.
type Config struct {
	Provider string // provider name: anthropic, openai, google
	Model    string // model identifier
	Cwd      string
	IsGit    bool

	Memory   string
	PlanMode bool
	Extra    []string
}

// System generates system prompts for a session, caching nothing itself —
// callers (internal/session) own the model-keyed cache per spec §4.7.
type System struct {
	Provider string
	Model    string
	Cwd      string
	IsGit    bool
	PlanMode bool
	Extra    []string
	Memory   string
}

// Prompt builds the complete system prompt from the System's fields.
func (s *System) Prompt() string {
	memory := s.Memory
	if memory == "" {
		memory = LoadMemory(s.Cwd)
	}
	return BuildPrompt(Config{
		Provider: s.Provider,
		Model:    s.Model,
		Cwd:      s.Cwd,
		IsGit:    s.IsGit,
		PlanMode: s.PlanMode,
		Memory:   memory,
		Extra:    s.Extra,
	})
}

// BuildPrompt assembles: base + tools + provider/generic + env + plan mode +
// memory + extra.
func BuildPrompt(cfg Config) string {
	base := basePrompt
	tools := toolsPrompt
	providerPrompt := providerOrGeneric(cfg.Provider)
	env := formatEnv(cfg)

	parts := []string{base, tools, providerPrompt, env}

	if cfg.PlanMode {
		parts = append(parts, planModePrompt)
	}
	if cfg.Memory != "" {
		parts = append(parts, formatMemory(cfg.Memory))
	}
	parts = append(parts, cfg.Extra...)

	result := join(parts)

	log.Logger().Debug("system prompt assembled",
		zap.Int("total_len", len(result)),
		zap.String("provider", cfg.Provider),
		zap.String("model", cfg.Model))

	return result
}

// providerOrGeneric returns a provider-specific addendum, or the generic one.
func providerOrGeneric(provider string) string {
	switch provider {
	case "anthropic":
		return anthropicPrompt
	case "openai":
		return openaiPrompt
	case "google":
		return googlePrompt
	default:
		return genericPrompt
	}
}

// formatEnv generates the dynamic environment section.
func formatEnv(cfg Config) string {
	gitStatus := "No"
	if cfg.IsGit {
		gitStatus = "Yes"
	}
	return fmt.Sprintf(`<env>
Working directory: %s
Is git repo: %s
Platform: %s
Date: %s
Model: %s
</env>`, cfg.Cwd, gitStatus, runtime.GOOS, time.Now().Format("2006-01-02"), cfg.Model)
}

func formatMemory(m string) string {
	return "<memory>\n" + m + "\n</memory>"
}

func join(parts []string) string {
	var filtered []string
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			filtered = append(filtered, p)
		}
	}
	return strings.Join(filtered, "\n\n")
}

// CompactPrompt returns the prompt used to drive conversation compaction.
func CompactPrompt() string { return compactPrompt }

// MemoryFile represents a loaded memory file with metadata.
type MemoryFile struct {
	Path    string
	Size    int64
	Content string
	Level   string // "global", "project", or "local"
	Source  string // "rules" for rules-directory files, empty otherwise
}

// LoadMemory loads and concatenates memory content from standard locations.
// Priority: AGENTS.md files first, falling back to CLAUDE.md.
func LoadMemory(cwd string) string {
	files := LoadMemoryFiles(cwd)
	if len(files) == 0 {
		return ""
	}
	var parts []string
	for _, f := range files {
		parts = append(parts, f.Content)
	}
	return strings.Join(parts, "\n\n")
}

// LoadMemoryFiles loads all memory files with metadata, in order: global,
// global rules, project, project rules, local.
func LoadMemoryFiles(cwd string) []MemoryFile {
	var files []MemoryFile
	homeDir, _ := os.UserHomeDir()
	seen := make(map[string]bool)

	userSources := []string{
		filepath.Join(homeDir, ".steer", "AGENTS.md"),
		filepath.Join(homeDir, ".claude", "CLAUDE.md"),
	}
	if f := loadMemoryFile(userSources, "global", "", seen); f != nil {
		files = append(files, *f)
	}

	userRulesDir := filepath.Join(homeDir, ".steer", "rules")
	files = append(files, loadRulesDirectory(userRulesDir, "global", seen)...)

	projectSources := []string{
		filepath.Join(cwd, ".steer", "AGENTS.md"),
		filepath.Join(cwd, "AGENTS.md"),
		filepath.Join(cwd, ".claude", "CLAUDE.md"),
		filepath.Join(cwd, "CLAUDE.md"),
	}
	if f := loadMemoryFile(projectSources, "project", "", seen); f != nil {
		files = append(files, *f)
	}

	projectRulesDir := filepath.Join(cwd, ".steer", "rules")
	files = append(files, loadRulesDirectory(projectRulesDir, "project", seen)...)

	localSources := []string{filepath.Join(cwd, ".steer", "AGENTS.local.md")}
	if f := loadMemoryFile(localSources, "local", "", seen); f != nil {
		files = append(files, *f)
	}

	return files
}

func loadMemoryFile(sources []string, level, source string, seen map[string]bool) *MemoryFile {
	for _, src := range sources {
		info, err := os.Stat(src)
		if err != nil || seen[src] {
			continue
		}
		data, err := os.ReadFile(src)
		if err != nil {
			continue
		}
		content := strings.TrimSpace(string(data))
		if content == "" {
			continue
		}
		seen[src] = true
		content = resolveImports(content, filepath.Dir(src), 0, seen)

		return &MemoryFile{
			Path:    src,
			Size:    info.Size(),
			Content: fmt.Sprintf("<!-- Source: %s -->\n%s", src, content),
			Level:   level,
			Source:  source,
		}
	}
	return nil
}

func loadRulesDirectory(dir, level string, seen map[string]bool) []MemoryFile {
	var files []MemoryFile
	entries, err := os.ReadDir(dir)
	if err != nil {
		return files
	}
	var mdFiles []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasSuffix(strings.ToLower(entry.Name()), ".md") {
			mdFiles = append(mdFiles, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(mdFiles)
	for _, path := range mdFiles {
		if f := loadMemoryFile([]string{path}, level, "rules", seen); f != nil {
			files = append(files, *f)
		}
	}
	return files
}

var importRe = regexp.MustCompile(`(?m)^@([^\s@]+\.md)\s*$`)

// resolveImports expands @path/to/file.md import directives, cycle-safe and
// depth-limited.
func resolveImports(content, basePath string, depth int, seen map[string]bool) string {
	if depth >= maxImportDepth {
		return content
	}
	return importRe.ReplaceAllStringFunc(content, func(match string) string {
		importPath := strings.TrimPrefix(strings.TrimSpace(match), "@")
		fullPath := filepath.Clean(filepath.Join(basePath, importPath))

		if seen[fullPath] {
			return fmt.Sprintf("<!-- Skipped (cycle): @%s -->", importPath)
		}
		data, err := os.ReadFile(fullPath)
		if err != nil {
			return fmt.Sprintf("<!-- Import not found: @%s -->", importPath)
		}
		seen[fullPath] = true
		imported := resolveImports(strings.TrimSpace(string(data)), filepath.Dir(fullPath), depth+1, seen)
		return fmt.Sprintf("<!-- Imported: %s -->\n%s", importPath, imported)
	})
}

// MemoryPaths holds categorized memory file search paths.
type MemoryPaths struct {
	Global       []string
	GlobalRules  string
	Project      []string
	ProjectRules string
	Local        []string
}

// GetAllMemoryPaths returns all memory search paths organized by category.
func GetAllMemoryPaths(cwd string) MemoryPaths {
	homeDir, _ := os.UserHomeDir()
	return MemoryPaths{
		Global: []string{
			filepath.Join(homeDir, ".steer", "AGENTS.md"),
			filepath.Join(homeDir, ".claude", "CLAUDE.md"),
		},
		GlobalRules: filepath.Join(homeDir, ".steer", "rules"),
		Project: []string{
			filepath.Join(cwd, ".steer", "AGENTS.md"),
			filepath.Join(cwd, "AGENTS.md"),
			filepath.Join(cwd, ".claude", "CLAUDE.md"),
			filepath.Join(cwd, "CLAUDE.md"),
		},
		ProjectRules: filepath.Join(cwd, ".steer", "rules"),
		Local:        []string{filepath.Join(cwd, ".steer", "AGENTS.local.md")},
	}
}

// FindMemoryFile returns the first existing path from the list, or "".
func FindMemoryFile(paths []string) string {
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
