package common

import (
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// IsTerminalWriter reports whether w is a terminal file descriptor.
func IsTerminalWriter(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok || file == nil {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}

// SupportsColor reports whether w accepts ANSI escapes. NO_COLOR and dumb
// terminals disable them.
func SupportsColor(w io.Writer) bool {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		return false
	}
	if !IsTerminalWriter(w) {
		return false
	}

	termName := strings.TrimSpace(strings.ToLower(os.Getenv("TERM")))
	return termName != "" && termName != "dumb"
}
