package validation

import (
	"fmt"
	"strings"
)

// maxFilenameLength is the maximum allowed filename length (common filesystem limit).
const maxFilenameLength = 255

// ValidateDownloadName checks a caller-supplied filename before it is joined
// to the outputs directory. Finalized outputs are always named
// `<uuid>.<ext>`, so anything outside that shape is rejected: path
// separators, traversal sequences, control characters, or a missing
// extension.
func ValidateDownloadName(name string) error {
	if name == "" {
		return fmt.Errorf("filename is empty")
	}
	if len(name) > maxFilenameLength {
		return fmt.Errorf("filename exceeds %d characters", maxFilenameLength)
	}
	if strings.ContainsAny(name, "/\\") {
		return fmt.Errorf("filename contains a path separator")
	}
	if strings.Contains(name, "..") {
		return fmt.Errorf("filename contains a traversal sequence")
	}
	for _, r := range name {
		if r < 32 || r == 127 {
			return fmt.Errorf("filename contains a control character")
		}
	}
	dot := strings.LastIndexByte(name, '.')
	if dot <= 0 || dot == len(name)-1 {
		return fmt.Errorf("filename has no extension")
	}
	return nil
}

// ContentDisposition returns a safe Content-Disposition header value for a
// validated download name.
func ContentDisposition(filename string) string {
	return fmt.Sprintf("attachment; filename=%q", filename)
}
