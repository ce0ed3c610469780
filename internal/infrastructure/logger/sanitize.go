package logger

import (
	"fmt"
	"strings"
)

// SanitizeForLog escapes control characters in a string to prevent log
// injection. Caller-supplied URLs and ffmpeg stderr both pass through here
// before reaching a log line. Unicode is preserved; newlines, tabs, null
// bytes, ANSI escapes and other control characters are hex-escaped.
func SanitizeForLog(s string) string {
	var result strings.Builder
	result.Grow(len(s))

	for _, r := range s {
		switch r {
		case '\n':
			result.WriteString("\\n")
		case '\r':
			result.WriteString("\\r")
		case '\t':
			result.WriteString("\\t")
		case '\x00':
			result.WriteString("\\x00")
		default:
			if r < 32 || r == 127 || r == '\x1b' {
				result.WriteString(fmt.Sprintf("\\x%02x", r))
			} else {
				result.WriteRune(r)
			}
		}
	}
	return result.String()
}
