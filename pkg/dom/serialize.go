package dom

import (
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// voidElements cannot have children; AppendChild on them fails.
var voidElements = map[string]bool{
	"area":   true,
	"base":   true,
	"br":     true,
	"col":    true,
	"embed":  true,
	"hr":     true,
	"img":    true,
	"input":  true,
	"link":   true,
	"meta":   true,
	"param":  true,
	"source": true,
	"track":  true,
	"wbr":    true,
}

// IsVoidElement returns true if the tag is a void element.
func IsVoidElement(tag string) bool {
	return voidElements[tag]
}

// Render writes the HTML serialization of n to w. Fragments and shadow roots
// write their children.
func Render(w io.Writer, n *Node) error {
	switch n.kind {
	case KindFragment, KindShadowRoot:
		return renderChildren(w, n)
	}
	return html.Render(w, toHTML(n))
}

func renderChildren(w io.Writer, n *Node) error {
	for _, c := range n.children {
		if err := Render(w, c); err != nil {
			return err
		}
	}
	return nil
}

// OuterHTML returns the serialization of n itself.
func OuterHTML(n *Node) string {
	var b strings.Builder
	// Writes to a strings.Builder cannot fail and AppendChild keeps void
	// elements empty.
	_ = Render(&b, n)
	return b.String()
}

// InnerHTML returns the serialization of n's light children.
func InnerHTML(n *Node) string {
	var b strings.Builder
	_ = renderChildren(&b, n)
	return b.String()
}

// toHTML converts n into an x/net/html tree.
func toHTML(n *Node) *html.Node {
	switch n.kind {
	case KindText:
		return &html.Node{Type: html.TextNode, Data: n.data}
	case KindComment:
		return &html.Node{Type: html.CommentNode, Data: n.data}
	}

	var out *html.Node
	if n.kind == KindElement {
		out = &html.Node{
			Type:     html.ElementNode,
			Data:     n.tag,
			DataAtom: atom.Lookup([]byte(n.tag)),
			Attr:     make([]html.Attribute, 0, len(n.attrs)),
		}
		for _, a := range n.attrs {
			out.Attr = append(out.Attr, html.Attribute{Key: a.Name, Val: a.Value})
		}
		if n.shadow != nil {
			out.AppendChild(shadowTemplate(n))
		}
	} else {
		// Fragments and shadow roots nested in a tree: a template wrapper
		// keeps the subtree intact for html.Render.
		out = &html.Node{Type: html.ElementNode, Data: "template", DataAtom: atom.Template}
	}
	for _, c := range n.children {
		out.AppendChild(toHTML(c))
	}
	return out
}

// shadowTemplate serializes a shadow root as declarative shadow DOM.
func shadowTemplate(host *Node) *html.Node {
	t := &html.Node{
		Type:     html.ElementNode,
		Data:     "template",
		DataAtom: atom.Template,
		Attr:     []html.Attribute{{Key: "shadowrootmode", Val: string(host.shadowMode)}},
	}
	for _, c := range host.shadow.children {
		t.AppendChild(toHTML(c))
	}
	return t
}
