package extractor

import "strings"

// itemSeparator replaces each line break of a multi-line card (title line,
// price line) so one product reads as one line.
const itemSeparator = ": "

// NormalizeText turns an item's rendered text into its list entry: every
// "\n" becomes ": ", then leading and trailing whitespace is trimmed.
// Nothing else is altered.
func NormalizeText(text string) string {
	return strings.TrimSpace(strings.ReplaceAll(text, "\n", itemSeparator))
}

// TrimMarkup is the normalization applied to a markup fallback.
func TrimMarkup(html string) string {
	return strings.TrimSpace(html)
}

// Preview returns at most the first n runes of s.
func Preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
