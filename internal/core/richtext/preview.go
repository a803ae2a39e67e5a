package richtext

import (
	"strings"
	"unicode"

	"golang.org/x/net/html"
)

// Ellipsis is appended to truncated previews.
const Ellipsis = "…"

// blockTags end a run of text; a separator is emitted so adjacent blocks do
// not fuse into one word.
var blockTags = map[string]bool{
	"p": true, "br": true, "div": true, "li": true, "ul": true, "ol": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"blockquote": true, "section": true, "article": true, "tr": true, "td": true,
}

// PlainText strips all markup from s and collapses whitespace.
func PlainText(s string) string {
	var b strings.Builder
	for _, n := range parseFragment(s) {
		collectText(&b, n)
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func collectText(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.ElementNode:
		if isDropped(n) {
			return
		}
	default:
		return
	}
	block := blockTags[strings.ToLower(n.Data)]
	if block {
		b.WriteByte(' ')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(b, c)
	}
	if block {
		b.WriteByte(' ')
	}
}

// ExtractPreview returns the plain text of s bounded to limit characters. A
// truncated preview is cut on the last word boundary inside the window when
// there is one, then gets Ellipsis appended, so the result never exceeds
// limit+1 characters.
func ExtractPreview(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	text := []rune(PlainText(s))
	if len(text) <= limit {
		return string(text)
	}

	cut := text[:limit]
	if !unicode.IsSpace(text[limit]) {
		for i := len(cut) - 1; i > 0; i-- {
			if unicode.IsSpace(cut[i]) {
				cut = cut[:i]
				break
			}
		}
	}
	return strings.TrimRightFunc(string(cut), unicode.IsSpace) + Ellipsis
}

// HasMoreContent reports whether ExtractPreview(s, limit) would truncate.
func HasMoreContent(s string, limit int) bool {
	if limit <= 0 {
		return PlainText(s) != ""
	}
	return len([]rune(PlainText(s))) > limit
}
