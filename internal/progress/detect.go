package progress

import (
	"os"

	"golang.org/x/term"
)

// ShouldRender reports whether a live progress bar is appropriate for
// this invocation.
//
// Returns false if:
//   - stderr is not a terminal (piped output, log capture)
//   - PGBULK_NON_INTERACTIVE=1 is set
//   - CI=true is set (common CI/CD convention)
//   - NO_COLOR is set (accessibility/automation indicator)
func ShouldRender() bool {
	if os.Getenv("PGBULK_NON_INTERACTIVE") == "1" {
		return false
	}
	if os.Getenv("CI") != "" {
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}

	return term.IsTerminal(int(os.Stderr.Fd()))
}
