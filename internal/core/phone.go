package core

import (
	"strings"
	"unicode"
)

// NormalizePhone canonicalizes a free-form phone number.
//
// Separators (commas, tabs, line breaks, parentheses, hyphens and any
// whitespace) are removed first. A result starting with "+" is returned as
// is; otherwise every remaining non-digit is dropped.
func NormalizePhone(raw string) string {
	if raw == "" {
		return ""
	}

	stripped := strings.Map(func(r rune) rune {
		switch r {
		case ',', '(', ')', '-':
			return -1
		}
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, raw)

	if strings.HasPrefix(stripped, "+") {
		return stripped
	}

	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, stripped)
}
