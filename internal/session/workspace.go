package session

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	workspaceScanMaxDepth   = 8
	workspaceScanMaxResults = 2000
)

// listWorkspaceFiles walks cwd depth-first, skipping ignorable
// directories, and returns every regular file path relative to cwd,
// sorted by depth then length, for the RequestWorkspaceFiles command.
func listWorkspaceFiles(cwd string) []string {
	var results []string

	var walk func(dir string, depth int)
	walk = func(dir string, depth int) {
		if depth > workspaceScanMaxDepth || len(results) >= workspaceScanMaxResults {
			return
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			return
		}

		var subdirs []string
		for _, entry := range entries {
			if len(results) >= workspaceScanMaxResults {
				return
			}
			name := entry.Name()
			full := filepath.Join(dir, name)

			if entry.IsDir() {
				if !shouldSkipWorkspaceDir(name) {
					subdirs = append(subdirs, full)
				}
				continue
			}

			rel, err := filepath.Rel(cwd, full)
			if err != nil {
				continue
			}
			results = append(results, rel)
		}

		for _, sub := range subdirs {
			walk(sub, depth+1)
		}
	}

	walk(cwd, 0)

	sort.Slice(results, func(i, j int) bool {
		di := strings.Count(results[i], string(filepath.Separator))
		dj := strings.Count(results[j], string(filepath.Separator))
		if di != dj {
			return di < dj
		}
		return len(results[i]) < len(results[j])
	})
	return results
}

// shouldSkipWorkspaceDir reports whether a directory should be excluded
// from workspace file enumeration.
func shouldSkipWorkspaceDir(name string) bool {
	if strings.HasPrefix(name, ".") && name != ".gen" {
		return true
	}
	switch name {
	case "node_modules", "vendor", "__pycache__", "dist", "build":
		return true
	}
	return false
}
