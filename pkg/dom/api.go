package dom

import "golang.org/x/net/html"

// API is the set of real-tree primitives the core consumes.
type API interface {
	CreateElement(tag string) *html.Node
	CreateText(text string) *html.Node
	CreateComment(text string) *html.Node

	// InsertBefore inserts child into parent before ref, or appends when
	// ref is nil. child is detached from its current parent first.
	InsertBefore(parent, child, ref *html.Node)
	AppendChild(parent, child *html.Node)
	RemoveChild(parent, child *html.Node)

	Parent(n *html.Node) *html.Node
	FirstChild(n *html.Node) *html.Node
	NextSibling(n *html.Node) *html.Node

	TagName(n *html.Node) string
	GetAttribute(n *html.Node, name string) (string, bool)
	SetAttribute(n *html.Node, name, value string)
	RemoveAttribute(n *html.Node, name string)
	TextContent(n *html.Node) string
	SetTextContent(n *html.Node, text string)

	// SetStyle sets one style property; an empty value removes it.
	SetStyle(n *html.Node, name, value string)

	IsElement(n *html.Node) bool
	IsText(n *html.Node) bool
	IsComment(n *html.Node) bool
}

// ChildNodes returns the children of n in document order.
func ChildNodes(api API, n *html.Node) []*html.Node {
	var out []*html.Node
	for c := api.FirstChild(n); c != nil; c = api.NextSibling(c) {
		out = append(out, c)
	}
	return out
}
