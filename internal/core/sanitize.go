package core

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// textPolicy strips all markup from imported text fields.
var textPolicy = bluemonday.StrictPolicy()

// CleanText removes HTML markup and surrounding whitespace from an imported
// value. Entities escaped by the policy are decoded again so that names like
// "Smith & Sons" survive unchanged.
func CleanText(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(textPolicy.Sanitize(s)))
}
