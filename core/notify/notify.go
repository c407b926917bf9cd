// Package notify passes a file path from another process into the running
// shell through a lock-protected drop file.
//
// A sender replaces the drop file's contents with an absolute path. The
// shell watches the file, takes the path, and empties the file. Only the most
// recent unconsumed path is kept.
package notify

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// DefaultFileName is the drop file's name inside the temp directory.
const DefaultFileName = "pipeshell_path.txt"

// DefaultPath is the drop file used when none is configured.
func DefaultPath() string {
	return filepath.Join(os.TempDir(), DefaultFileName)
}

// withLock opens the drop file and holds an exclusive advisory lock on it
// while fn runs.
func withLock(dropPath string, fn func(fd *os.File) error) error {
	fd, err := os.OpenFile(dropPath, os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		return err
	}
	defer fd.Close()

	if err := unix.Flock(int(fd.Fd()), unix.LOCK_EX); err != nil {
		return fmt.Errorf("locking %s: %w", dropPath, err)
	}
	defer unix.Flock(int(fd.Fd()), unix.LOCK_UN)

	return fn(fd)
}

// Send publishes path to the drop file, replacing any path that hasn't been
// consumed yet. Relative paths are made absolute first.
func Send(dropPath, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	return withLock(dropPath, func(fd *os.File) error {
		if err := fd.Truncate(0); err != nil {
			return err
		}
		_, err := fd.WriteAt([]byte(abs+"\n"), 0)
		return err
	})
}

// Take reads and clears the drop file. It returns "" if no path is waiting.
func Take(dropPath string) (string, error) {
	var out string
	err := withLock(dropPath, func(fd *os.File) error {
		contents, err := io.ReadAll(fd)
		if err != nil {
			return err
		}
		out = string(bytes.TrimSpace(contents))
		if len(contents) == 0 {
			return nil
		}
		return fd.Truncate(0)
	})
	return out, err
}
