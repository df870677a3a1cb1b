// Package debug provides env-gated trace output. Set TRIAGE_DEBUG to
// any non-empty value, or enable --verbose, to see it.
package debug

import (
	"fmt"
	"os"
)

var (
	enabled     = os.Getenv("TRIAGE_DEBUG") != ""
	verboseMode = false
)

// Enabled reports whether debug output is on.
func Enabled() bool {
	return enabled || verboseMode
}

// SetVerbose enables debug output regardless of the environment.
func SetVerbose(verbose bool) {
	verboseMode = verbose
}

// Logf writes to stderr when debug output is enabled.
func Logf(format string, args ...any) {
	if Enabled() {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}
