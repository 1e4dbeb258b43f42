package shader

import (
	"strings"
	"unicode/utf8"
)

// MaxDiagnosticLength is the largest diagnostic, in bytes, a Driver reports for a failed compile
// or link. It matches the info-log buffer GPU drivers are queried with.
const MaxDiagnosticLength = 512

// BoundDiagnostic trims surrounding whitespace and NUL padding from a raw driver info log and
// cuts it to at most MaxDiagnosticLength bytes without splitting a UTF-8 sequence.
//
// Parameters:
//   - raw: the info log as returned by the driver
//
// Returns:
//   - string: the cleaned, bounded diagnostic
func BoundDiagnostic(raw string) string {
	s := strings.TrimSpace(strings.TrimRight(raw, "\x00"))
	if len(s) <= MaxDiagnosticLength {
		return s
	}
	cut := MaxDiagnosticLength
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
