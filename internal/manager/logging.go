package manager

import (
	"io"
	"os"
)

// discardIfDisabled returns stderr when logging is requested, otherwise a
// sink that drops everything -- simpler than threading a "logging_enabled"
// check through every log call site.
func discardIfDisabled(enabled bool) io.Writer {
	if enabled {
		return os.Stderr
	}
	return io.Discard
}
