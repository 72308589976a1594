package hydrate

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/vango-dev/graft/internal/errors"
	"github.com/vango-dev/graft/pkg/dom"
	"github.com/vango-dev/graft/pkg/host"
	"github.com/vango-dev/graft/pkg/vdom"
)

// Marker attribute names and comment texts.
const (
	AttrHost     = "data-ssrv"
	AttrElement  = "data-ssrc"
	AttrDocument = "data-ssr"
	TextOpen     = "s."
	TextClose    = "/"
)

// Ident is a hydration identifier.
type Ident struct {
	Component int
	Insertion int
}

// String returns "<component>.<insertion>".
func (id Ident) String() string {
	return strconv.Itoa(id.Component) + "." + strconv.Itoa(id.Insertion)
}

// ParseIdent parses "<component>.<insertion>" with an optional trailing
// ".". leaf reports whether the trailing dot was present.
func ParseIdent(s string) (id Ident, leaf bool, err error) {
	if strings.HasSuffix(s, ".") {
		leaf = true
		s = strings.TrimSuffix(s, ".")
	}
	c, i, ok := strings.Cut(s, ".")
	if !ok {
		return Ident{}, false, fmt.Errorf("malformed identifier %q", s)
	}
	if id.Component, err = strconv.Atoi(c); err != nil {
		return Ident{}, false, fmt.Errorf("malformed identifier %q: %w", s, err)
	}
	if id.Insertion, err = strconv.Atoi(i); err != nil {
		return Ident{}, false, fmt.Errorf("malformed identifier %q: %w", s, err)
	}
	return id, leaf, nil
}

// MarkerState is the lifecycle of a Marker.
type MarkerState uint8

const (
	Unmarked MarkerState = iota
	Marking
	Marked
)

func (s MarkerState) String() string {
	switch s {
	case Unmarked:
		return "unmarked"
	case Marking:
		return "marking"
	case Marked:
		return "marked"
	default:
		return "unknown"
	}
}

// Marker assigns hydration identifiers to one document in a single pass.
// It cannot be reused.
type Marker struct {
	api   dom.API
	state MarkerState

	hosts  []*host.Element
	idents map[*html.Node]Ident
}

// NewMarker returns an unmarked marker writing through api.
func NewMarker(api dom.API) *Marker {
	return &Marker{api: api, idents: make(map[*html.Node]Ident)}
}

// State returns the marker's state.
func (m *Marker) State() MarkerState { return m.state }

// Hosts returns the marked hosts, indexed by component ordinal.
func (m *Marker) Hosts() []*host.Element { return m.hosts }

// Ident returns the identifier assigned to n.
func (m *Marker) Ident(n *html.Node) (Ident, bool) {
	id, ok := m.idents[n]
	return id, ok
}

// Mark walks root in document order, numbers every rendered host of rt it
// finds and marks each host's rendered nodes. Hosts that never completed a
// render are skipped. A second call fails with E041.
func (m *Marker) Mark(rt *host.Runtime, root *html.Node) error {
	if m.state != Unmarked {
		return errors.New("E041").WithDetailf("marker is %s", m.state)
	}
	m.state = Marking

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if el, ok := rt.Lookup(n); ok && el.Tree() != nil {
			m.hosts = append(m.hosts, el)
		}
		for c := m.api.FirstChild(n); c != nil; c = m.api.NextSibling(c) {
			walk(c)
		}
	}
	walk(root)

	for c, el := range m.hosts {
		m.api.SetAttribute(el.Node(), AttrHost, strconv.Itoa(c))
	}
	for c, el := range m.hosts {
		m.markHost(c, el)
	}

	m.state = Marked
	return nil
}

// markHost numbers the nodes el rendered. A node's insertion ordinal is its
// index among the rendered children of its parent, looking through slots
// and fragments. Projected content belongs to another component and is
// neither numbered nor counted.
func (m *Marker) markHost(c int, el *host.Element) {
	tree := el.Tree()
	if tree == nil {
		return
	}
	refs := el.Refs()

	var visit func(children []*vdom.VNode)
	visit = func(children []*vdom.VNode) {
		i := 0
		for _, v := range vdom.Flatten(children) {
			if v.Kind != vdom.KindElement && v.Kind != vdom.KindText {
				continue
			}
			id := Ident{Component: c, Insertion: i}
			i++
			n := refs[v]
			if n == nil {
				continue
			}
			m.idents[n] = id

			if v.Kind == vdom.KindText {
				m.bracket(n, id)
				continue
			}
			value := id.String()
			if !hasRenderedChildren(v) {
				value += "."
			}
			m.api.SetAttribute(n, AttrElement, value)
			visit(v.Children)
		}
	}
	visit(tree.Children)
}

// bracket surrounds text node n with its open and close comments.
func (m *Marker) bracket(n *html.Node, id Ident) {
	parent := m.api.Parent(n)
	if parent == nil {
		return
	}
	m.api.InsertBefore(parent, m.api.CreateComment(TextOpen+id.String()), n)
	m.api.InsertBefore(parent, m.api.CreateComment(TextClose), m.api.NextSibling(n))
}

// hasRenderedChildren reports whether v has child elements or texts of its
// own, looking through slots and fragments but not projected content.
func hasRenderedChildren(v *vdom.VNode) bool {
	for _, child := range vdom.Flatten(v.Children) {
		if child.Kind == vdom.KindElement || child.Kind == vdom.KindText {
			return true
		}
	}
	return false
}
