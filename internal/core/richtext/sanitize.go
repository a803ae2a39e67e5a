package richtext

import (
	"strings"
	"unicode"

	"golang.org/x/net/html"
)

var allowedTags = map[string]bool{
	"p": true, "br": true, "strong": true, "em": true, "u": true,
	"h1": true, "h2": true, "h3": true,
	"ul": true, "ol": true, "li": true,
	"img": true, "a": true,
}

var allowedAttrs = map[string]bool{
	"src": true, "alt": true, "class": true, "style": true, "href": true, "title": true,
}

var voidTags = map[string]bool{"br": true, "img": true}

// Sanitize returns the allowlisted subset of raw. Unknown elements are
// unwrapped to their content, script-like elements vanish with their
// content, and attributes outside the allowlist or carrying data: or script
// URLs are removed. Sanitize is idempotent.
func Sanitize(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	var b strings.Builder
	for _, n := range parseFragment(raw) {
		writeSafe(&b, n)
	}
	return b.String()
}

func writeSafe(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(html.EscapeString(n.Data))
		return
	case html.ElementNode:
	default:
		// Comments, doctypes and raw markup carry nothing renderable.
		return
	}

	if isDropped(n) {
		return
	}

	tag := strings.ToLower(n.Data)
	if !allowedTags[tag] {
		writeChildren(b, n)
		return
	}

	b.WriteByte('<')
	b.WriteString(tag)
	for _, a := range n.Attr {
		key := strings.ToLower(a.Key)
		if a.Namespace != "" || !allowedAttrs[key] || !safeValue(key, a.Val) {
			continue
		}
		b.WriteByte(' ')
		b.WriteString(key)
		b.WriteString(`="`)
		b.WriteString(html.EscapeString(a.Val))
		b.WriteByte('"')
	}
	b.WriteByte('>')
	if voidTags[tag] {
		return
	}
	writeChildren(b, n)
	b.WriteString("</")
	b.WriteString(tag)
	b.WriteByte('>')
}

func writeChildren(b *strings.Builder, n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeSafe(b, c)
	}
}

// safeValue rejects data: URIs in every attribute and script schemes in
// URL-bearing ones. Browsers ignore embedded whitespace and control
// characters in schemes, so those are stripped before comparing.
func safeValue(key, val string) bool {
	v := strings.ToLower(strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return -1
		}
		return r
	}, val))

	if strings.HasPrefix(v, "data:") {
		return false
	}
	switch key {
	case "href", "src":
		return !strings.HasPrefix(v, "javascript:") && !strings.HasPrefix(v, "vbscript:")
	case "style":
		// Quotes and CSS escapes can wrap or spell either scheme.
		return !strings.Contains(v, "expression(") &&
			!strings.Contains(v, "javascript:") &&
			!strings.Contains(v, "data:") &&
			!strings.Contains(v, `\`)
	}
	return true
}
