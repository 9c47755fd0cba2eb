package util

import "strings"

// MaskSecret hides all but the first character of a secret for display.
func MaskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) == 1 {
		return "*"
	}
	return s[:1] + strings.Repeat("*", len(s)-1)
}

// CoalesceString returns the first non-empty string.
func CoalesceString(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
