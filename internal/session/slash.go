package session

import "strings"

// parseSlashCommand recognizes a leading "/name[ target]" input and maps
// it to an AppCommandType, per spec.md §6's app-command family. ok is
// false for plain text that happens to start with "/" but names no known
// command, so it falls through to ProcessUserInput as ordinary text.
func parseSlashCommand(text string) (typ AppCommandType, target string, ok bool) {
	body := strings.TrimPrefix(text, "/")
	name, rest, _ := strings.Cut(body, " ")
	target = strings.TrimSpace(rest)

	switch strings.ToLower(name) {
	case "clear":
		return AppCommandClear, target, true
	case "compact":
		return AppCommandCompact, target, true
	case "help":
		return AppCommandHelp, target, true
	case "auth":
		return AppCommandAuth, target, true
	case "cancel":
		return AppCommandCancel, target, true
	case "model":
		return AppCommandModel, target, true
	default:
		return 0, "", false
	}
}
