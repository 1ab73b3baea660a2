package security

import (
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

// MaxTextLength bounds any user or bank supplied string rendered into a message.
const MaxTextLength = 1000

var htmlPolicy = bluemonday.StrictPolicy()

// SanitizeString trims whitespace, removes null bytes and limits length.
func SanitizeString(input string) string {
	input = strings.ReplaceAll(input, "\x00", "")
	input = strings.TrimSpace(input)

	if utf8.RuneCountInString(input) > MaxTextLength {
		input = string([]rune(input)[:MaxTextLength])
	}

	return input
}

// SanitizeHTML removes all HTML tags and escapes what remains, so the
// result can be embedded in an HTML parse-mode message.
func SanitizeHTML(input string) string {
	return htmlPolicy.Sanitize(SanitizeString(input))
}

// PlainText reverses the entity escaping done by SanitizeHTML.
func PlainText(input string) string {
	return html.UnescapeString(SanitizeHTML(input))
}
