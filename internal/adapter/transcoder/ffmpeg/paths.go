package ffmpeg

import (
	"errors"
	"strings"
)

var (
	ErrEmptyPath   = errors.New("path is empty")
	ErrInvalidPath = errors.New("path contains invalid characters")
)

// validatePath rejects paths that could smuggle extra arguments or
// terminate the string early when handed to the subprocess.
func validatePath(path string) error {
	if path == "" {
		return ErrEmptyPath
	}
	if strings.ContainsRune(path, '\x00') {
		return ErrInvalidPath
	}
	return nil
}
