// Package sanitize keeps user-written text free of HTML.
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

var newlines = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// UserContent trims surrounding space. Text is stored as written and escaped by whoever renders it.
func UserContent(input string) string {
	return strings.TrimSpace(input)
}

// HasMarkup reports whether input carries tags, comments or scripts that the
// strict policy would drop. Entities and bare "<" or "&" are plain text.
func HasMarkup(input string) bool {
	text := newlines.Replace(input)
	return html.UnescapeString(strict.Sanitize(text)) != html.UnescapeString(text)
}
