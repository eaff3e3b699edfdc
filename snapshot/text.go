package snapshot

import (
	"strings"

	"golang.org/x/net/html"
)

// nonRendered elements never contribute to layout or text.
var nonRendered = map[string]bool{
	"head": true, "title": true, "meta": true, "link": true,
	"script": true, "style": true, "template": true, "noscript": true,
}

// blockTags break lines around their content in innerText.
var blockTags = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"caption": true, "dd": true, "details": true, "dialog": true, "div": true,
	"dl": true, "dt": true, "fieldset": true, "figcaption": true, "figure": true,
	"footer": true, "form": true, "h1": true, "h2": true, "h3": true, "h4": true,
	"h5": true, "h6": true, "header": true, "hr": true, "li": true, "main": true,
	"nav": true, "ol": true, "p": true, "pre": true, "section": true,
	"summary": true, "table": true, "tbody": true, "tfoot": true, "thead": true,
	"tr": true, "ul": true,
}

// isVisible reports whether n and every ancestor would be rendered.
func isVisible(n *html.Node) bool {
	for cur := n; cur != nil; cur = cur.Parent {
		if cur.Type != html.ElementNode {
			continue
		}
		if !selfRendered(cur) {
			return false
		}
	}
	return true
}

// selfRendered looks at n alone, ignoring its ancestors.
func selfRendered(n *html.Node) bool {
	if nonRendered[n.Data] {
		return false
	}
	if _, ok := attr(n, "hidden"); ok {
		return false
	}
	if t, _ := attr(n, "type"); n.Data == "input" && strings.EqualFold(t, "hidden") {
		return false
	}
	style, _ := attr(n, "style")
	return !hiddenByStyle(style)
}

// hiddenByStyle checks an inline style for display:none or visibility:hidden.
func hiddenByStyle(style string) bool {
	for _, decl := range strings.Split(style, ";") {
		k, v, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		k = strings.ToLower(strings.TrimSpace(k))
		v = strings.ToLower(strings.TrimSpace(v))
		v = strings.TrimSpace(strings.TrimSuffix(v, "!important"))
		switch {
		case k == "display" && v == "none":
			return true
		case k == "visibility" && (v == "hidden" || v == "collapse"):
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// innerText approximates HTMLElement.innerText for n: whitespace collapses
// to single spaces, <br> and block boundaries become line breaks, hidden
// subtrees are skipped, and blank lines are dropped.
func innerText(n *html.Node) string {
	var b strings.Builder
	writeText(&b, n)

	lines := strings.Split(b.String(), "\n")
	out := lines[:0]
	for _, line := range lines {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

func writeText(b *strings.Builder, n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			b.WriteString(collapseSpace(c.Data))
		case html.ElementNode:
			if !selfRendered(c) {
				continue
			}
			switch {
			case c.Data == "br":
				b.WriteByte('\n')
			case c.Data == "td" || c.Data == "th":
				writeText(b, c)
				b.WriteByte(' ')
			case blockTags[c.Data]:
				b.WriteByte('\n')
				writeText(b, c)
				b.WriteByte('\n')
			default:
				writeText(b, c)
			}
		}
	}
}

// collapseSpace maps every whitespace run, newlines included, to one space.
func collapseSpace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r', '\f':
			if !space {
				b.WriteByte(' ')
			}
			space = true
		default:
			b.WriteRune(r)
			space = false
		}
	}
	return b.String()
}
