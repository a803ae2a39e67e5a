// Package richtext reduces externally authored HTML to the renderable subset
// and derives plain-text previews from it.
package richtext

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// dropped elements are removed together with everything inside them.
var dropped = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Iframe:   true,
	atom.Object:   true,
	atom.Embed:    true,
	atom.Noscript: true,
	atom.Template: true,
	atom.Textarea: true,
	atom.Title:    true,
	atom.Head:     true,
	atom.Svg:      true,
	atom.Math:     true,
}

// parseFragment parses s as the content of a <body> element. Parsing never
// fails on malformed markup; a reader error is the only failure mode and
// cannot occur with a strings.Reader, so nil is returned in that case.
func parseFragment(s string) []*html.Node {
	ctx := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(s), ctx)
	if err != nil {
		return nil
	}
	return nodes
}

func isDropped(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	if n.DataAtom != 0 {
		return dropped[n.DataAtom]
	}
	return dropped[atom.Lookup([]byte(strings.ToLower(n.Data)))]
}
