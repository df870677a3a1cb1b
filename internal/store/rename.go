package store

import (
	"fmt"
	"os"
	"runtime"
	"time"
)

// renameWithRetry performs an atomic file rename with retry for Windows,
// where renames can fail with "Access is denied" while another process
// holds a handle on the target. Non-Windows errors are not retried.
func renameWithRetry(oldPath, newPath string, maxRetries int, initialDelay time.Duration) error {
	var lastErr error
	delay := initialDelay

	for attempt := 0; attempt <= maxRetries; attempt++ {
		err := os.Rename(oldPath, newPath)
		if err == nil {
			return nil
		}
		lastErr = err

		if runtime.GOOS != "windows" {
			break
		}
		if attempt < maxRetries {
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("rename failed after %d attempt(s): %w", maxRetries+1, lastErr)
}

func defaultRenameRetry(oldPath, newPath string) error {
	return renameWithRetry(oldPath, newPath, 3, 100*time.Millisecond)
}
