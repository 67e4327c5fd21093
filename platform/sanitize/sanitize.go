// Package sanitize flattens HTML fragments to plain text. The mail
// intake uses it when a message carries only an HTML body.
package sanitize

import (
	"regexp"
	"strings"
)

var htmlTagRegex = regexp.MustCompile(`<[^>]*>`)

// StripHTML removes all HTML tags from a string and decodes the common
// entities, leaving text the extractor can read.
func StripHTML(s string) string {
	result := htmlTagRegex.ReplaceAllString(s, "")
	result = strings.ReplaceAll(result, "&nbsp;", " ")
	result = strings.ReplaceAll(result, "&lt;", "<")
	result = strings.ReplaceAll(result, "&gt;", ">")
	result = strings.ReplaceAll(result, "&amp;", "&")
	result = strings.ReplaceAll(result, "&quot;", "\"")
	result = strings.ReplaceAll(result, "&#39;", "'")
	// Entity decoding may have reassembled a tag; strip again.
	result = htmlTagRegex.ReplaceAllString(result, "")
	return strings.TrimSpace(result)
}
