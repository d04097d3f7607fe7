package approval

import (
	"path/filepath"
	"strings"
)

// DestructiveCommands are patterns that should always require user
// confirmation, even when a bash glob pattern would otherwise auto-approve
// the command. These commands can cause irreversible data loss or system
// damage.
var DestructiveCommands = []string{
	"rm:-rf",
	"rm:-fr",
	"rm:-r",
	"git:reset --hard",
	"git:clean -fd",
	"git:clean -f",
	"git:push --force",
	"git:push -f",
	"chmod:777",
	"chmod:-R 777",
	":(){ :|:& };:", // fork bomb
	"> /dev/",       // device writes
	"dd:if=",        // direct disk access
	"mkfs",          // filesystem creation
	"fdisk",         // disk partitioning
}

// IsDestructiveCommand checks if a bash command matches any destructive
// pattern. Returns true if the command should always require user
// confirmation.
func IsDestructiveCommand(cmd string) bool {
	normalized := normalizeBashCommand(cmd)
	for _, pattern := range DestructiveCommands {
		if strings.Contains(normalized, pattern) {
			return true
		}
	}
	return false
}

// normalizeBashCommand normalizes a bash command for pattern matching.
// Examples:
//   - "npm install lodash" -> "npm:install lodash"
//   - "git commit -m 'msg'" -> "git:commit -m 'msg'"
//   - "/bin/rm -rf foo" -> "rm:-rf foo" (strips path prefix)
func normalizeBashCommand(cmd string) string {
	cmd = strings.TrimSpace(cmd)
	if cmd == "" {
		return ""
	}
	parts := strings.SplitN(cmd, " ", 2)

	baseCmd := filepath.Base(parts[0])
	if len(parts) == 1 {
		return baseCmd
	}
	return baseCmd + ":" + parts[1]
}
