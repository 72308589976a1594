package dom

import (
	"sort"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// HTML implements API on golang.org/x/net/html nodes.
type HTML struct{}

// NewHTML returns the x/net/html backed API.
func NewHTML() *HTML {
	return &HTML{}
}

func (HTML) CreateElement(tag string) *html.Node {
	tag = strings.ToLower(tag)
	return &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
}

func (HTML) CreateText(text string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: text}
}

func (HTML) CreateComment(text string) *html.Node {
	return &html.Node{Type: html.CommentNode, Data: text}
}

func (HTML) InsertBefore(parent, child, ref *html.Node) {
	if ref == child {
		return
	}
	if child.Parent != nil {
		child.Parent.RemoveChild(child)
	}
	if ref == nil || ref.Parent != parent {
		parent.AppendChild(child)
		return
	}
	parent.InsertBefore(child, ref)
}

func (h HTML) AppendChild(parent, child *html.Node) {
	h.InsertBefore(parent, child, nil)
}

func (HTML) RemoveChild(parent, child *html.Node) {
	if child.Parent != parent {
		return
	}
	parent.RemoveChild(child)
}

func (HTML) Parent(n *html.Node) *html.Node      { return n.Parent }
func (HTML) FirstChild(n *html.Node) *html.Node  { return n.FirstChild }
func (HTML) NextSibling(n *html.Node) *html.Node { return n.NextSibling }

func (HTML) TagName(n *html.Node) string {
	if n.Type != html.ElementNode {
		return ""
	}
	return n.Data
}

func (HTML) GetAttribute(n *html.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

func (HTML) SetAttribute(n *html.Node, name, value string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == name {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: name, Val: value})
}

func (HTML) RemoveAttribute(n *html.Node, name string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == name {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			return
		}
	}
}

func (HTML) TextContent(n *html.Node) string {
	switch n.Type {
	case html.TextNode, html.CommentNode:
		return n.Data
	}
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				b.WriteString(c.Data)
			} else if c.Type == html.ElementNode {
				walk(c)
			}
		}
	}
	walk(n)
	return b.String()
}

func (HTML) SetTextContent(n *html.Node, text string) {
	switch n.Type {
	case html.TextNode, html.CommentNode:
		n.Data = text
		return
	}
	for n.FirstChild != nil {
		n.RemoveChild(n.FirstChild)
	}
	if text != "" {
		n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	}
}

func (h HTML) SetStyle(n *html.Node, name, value string) {
	current, _ := h.GetAttribute(n, "style")
	props := ParseStyle(current)
	if value == "" {
		delete(props, name)
	} else {
		props[name] = value
	}
	if len(props) == 0 {
		h.RemoveAttribute(n, "style")
		return
	}
	h.SetAttribute(n, "style", FormatStyle(props))
}

func (HTML) IsElement(n *html.Node) bool { return n != nil && n.Type == html.ElementNode }
func (HTML) IsText(n *html.Node) bool    { return n != nil && n.Type == html.TextNode }
func (HTML) IsComment(n *html.Node) bool { return n != nil && n.Type == html.CommentNode }

// ParseStyle splits a style attribute into properties.
func ParseStyle(s string) map[string]string {
	props := make(map[string]string)
	for _, decl := range strings.Split(s, ";") {
		name, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		value = strings.TrimSpace(value)
		if name != "" && value != "" {
			props[name] = value
		}
	}
	return props
}

// FormatStyle serializes properties sorted by name.
func FormatStyle(props map[string]string) string {
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for i, name := range names {
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString(name)
		b.WriteString(": ")
		b.WriteString(props[name])
		b.WriteString(";")
	}
	return b.String()
}
