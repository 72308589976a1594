package hydrate

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/vango-dev/graft/internal/errors"
	"github.com/vango-dev/graft/pkg/dom"
)

// Entry is one marked node of a hydrated document.
type Entry struct {
	Ident Ident

	// Node is the marked element or text node. It is nil for a text
	// marker whose text was empty and did not survive parsing.
	Node *html.Node

	// Parent is the real parent of the marked node. Identifiers are unique
	// among the entries sharing a parent and a component.
	Parent *html.Node

	Text bool

	// Leaf is set for elements written with a trailing ".".
	Leaf bool
}

// Index holds the markers of a hydrated document.
type Index struct {
	// Hosts maps a component ordinal to its host element.
	Hosts map[int]*html.Node

	// Entries lists every marked element and text in document order.
	Entries []Entry

	byParent map[*html.Node]map[Ident]int
}

// Len returns the number of marked elements and texts.
func (x *Index) Len() int { return len(x.Entries) }

// Lookup returns the entry with identifier id under parent.
func (x *Index) Lookup(parent *html.Node, id Ident) (Entry, bool) {
	i, ok := x.byParent[parent][id]
	if !ok {
		return Entry{}, false
	}
	return x.Entries[i], true
}

func (x *Index) add(e Entry) {
	ids := x.byParent[e.Parent]
	if ids == nil {
		ids = make(map[Ident]int)
		x.byParent[e.Parent] = ids
	}
	ids[e.Ident] = len(x.Entries)
	x.Entries = append(x.Entries, e)
}

// Collect reads the markers written by a Marker back out of root.
func Collect(api dom.API, root *html.Node) (*Index, error) {
	x := &Index{
		Hosts:    make(map[int]*html.Node),
		byParent: make(map[*html.Node]map[Ident]int),
	}

	var walk func(n *html.Node) error
	walk = func(n *html.Node) error {
		switch {
		case api.IsElement(n):
			if v, ok := api.GetAttribute(n, AttrHost); ok {
				c, err := strconv.Atoi(v)
				if err != nil {
					return malformed(AttrHost, v)
				}
				x.Hosts[c] = n
			}
			if v, ok := api.GetAttribute(n, AttrElement); ok {
				id, leaf, err := ParseIdent(v)
				if err != nil {
					return malformed(AttrElement, v)
				}
				x.add(Entry{Ident: id, Node: n, Parent: api.Parent(n), Leaf: leaf})
			}

		case api.IsComment(n):
			data := api.TextContent(n)
			if !strings.HasPrefix(data, TextOpen) {
				break
			}
			id, _, err := ParseIdent(strings.TrimPrefix(data, TextOpen))
			if err != nil {
				return malformed("text marker", data)
			}
			var text *html.Node
			if next := api.NextSibling(n); api.IsText(next) {
				text = next
			}
			x.add(Entry{Ident: id, Node: text, Parent: api.Parent(n), Text: true})
		}
		for c := api.FirstChild(n); c != nil; c = api.NextSibling(c) {
			if err := walk(c); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(root); err != nil {
		return nil, err
	}
	return x, nil
}

func malformed(what, value string) error {
	return errors.Newf(errors.CategoryHydration, "malformed %s %q", what, value)
}
