package util

import (
	"regexp"
	"strings"
)

var reBlankRuns = regexp.MustCompile(`\n{3,}`)

// SanitizeText strips NUL bytes and invalid UTF-8 sequences from extracted
// document text and collapses long runs of blank lines. Form feeds are kept
// because they carry page boundaries.
func SanitizeText(value string) string {
	if value == "" {
		return value
	}

	sanitized := strings.ToValidUTF8(value, "")
	sanitized = strings.ReplaceAll(sanitized, "\x00", "")
	sanitized = strings.ReplaceAll(sanitized, "\r\n", "\n")
	return reBlankRuns.ReplaceAllString(sanitized, "\n\n")
}
