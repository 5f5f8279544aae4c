// Package service implements prescription analysis: entity extraction,
// interaction aggregation, alternative resolution, and the analyzer facade
// that ties them together.
package service

import (
	"regexp"
	"strings"
)

// abbreviationExpansions maps Latin dosing abbreviations to the phrases the
// frequency parser understands. Keys are matched case-insensitively with the
// trailing periods optional.
var abbreviationExpansions = []struct {
	pattern     *regexp.Regexp
	replacement string
}{
	{regexp.MustCompile(`(?i)\bq\.?d\.?(?:\s|$|[,;.])`), "once daily "},
	{regexp.MustCompile(`(?i)\bb\.?i\.?d\.?(?:\s|$|[,;.])`), "twice daily "},
	{regexp.MustCompile(`(?i)\bt\.?i\.?d\.?(?:\s|$|[,;.])`), "three times daily "},
	{regexp.MustCompile(`(?i)\bq\.?i\.?d\.?(?:\s|$|[,;.])`), "four times daily "},
	{regexp.MustCompile(`(?i)\bp\.?r\.?n\.?(?:\s|$|[,;.])`), "as needed "},
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// PreprocessText normalizes prescription free text before extraction:
// whitespace runs collapse to single spaces and common Latin dosing
// abbreviations expand to their plain-language equivalents. The returned
// text is what both extraction paths operate on, so reported entity
// positions refer to the normalized form.
func PreprocessText(text string) string {
	normalized := whitespaceRun.ReplaceAllString(strings.TrimSpace(text), " ")
	for _, abbr := range abbreviationExpansions {
		normalized = abbr.pattern.ReplaceAllString(normalized, abbr.replacement)
	}
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(normalized, " "))
}
