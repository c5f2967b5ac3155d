// Package validation provides input validation utilities for the preview proxy
package validation

import (
	"regexp"
	"strings"
)

// base64Pattern matches canonical base64: groups of four characters with optional
// padding in the final group and a single optional trailing newline.
var base64Pattern = regexp.MustCompile(`^([A-Za-z0-9+/]{4})*([A-Za-z0-9+/]{3}=|[A-Za-z0-9+/]{2}==)?\n?$`)

// IsBase64 reports whether s is a base64 encoded string. Embedded newlines are
// ignored, as produced by wrapped encoders.
func IsBase64(s string) bool {
	if s == "" {
		return false
	}

	return base64Pattern.MatchString(strings.ReplaceAll(s, "\n", ""))
}
