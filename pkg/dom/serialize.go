package dom

import (
	"bytes"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Parse parses a complete HTML document.
func Parse(s string) (*html.Node, error) {
	return html.Parse(strings.NewReader(s))
}

// ParseReader parses a complete HTML document from r.
func ParseReader(r io.Reader) (*html.Node, error) {
	return html.Parse(r)
}

// ParseFragment parses s as the content of a <body> element and returns
// the top-level nodes, detached.
func ParseFragment(s string) ([]*html.Node, error) {
	ctx := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(s), ctx)
	if err != nil {
		return nil, err
	}
	return nodes, nil
}

// Render serializes n and its descendants.
func Render(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// InnerHTML serializes the children of n.
func InnerHTML(n *html.Node) (string, error) {
	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

// Find returns the first node in document order, starting at root, for
// which match returns true.
func Find(root *html.Node, match func(*html.Node) bool) *html.Node {
	if root == nil {
		return nil
	}
	if match(root) {
		return root
	}
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if found := Find(c, match); found != nil {
			return found
		}
	}
	return nil
}

// FindTag returns the first element with the given tag.
func FindTag(root *html.Node, tag string) *html.Node {
	return Find(root, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == tag
	})
}

// Elements returns the element children of n, skipping text and comments.
func Elements(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, c)
		}
	}
	return out
}

// IsWhitespace reports whether n is a text node containing only whitespace.
func IsWhitespace(n *html.Node) bool {
	return n != nil && n.Type == html.TextNode && strings.TrimSpace(n.Data) == ""
}
