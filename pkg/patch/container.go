package patch

import (
	"slices"

	"golang.org/x/net/html"

	"github.com/vango-dev/graft/pkg/dom"
)

// Container is an ordered child list that operations insert into and
// remove from.
type Container interface {
	InsertBefore(child, ref *html.Node)
	Remove(child *html.Node)
	Contains(child *html.Node) bool
	NextSibling(child *html.Node) *html.Node
}

// Scope decides where the children of a realized node live and observes
// nodes entering and leaving the tree.
type Scope interface {
	// Container returns the child list of n. It is never asked for the
	// plan's root, whose children are always physical.
	Container(n *html.Node) Container

	// Created is called for every element Apply creates, after its
	// attributes are set and before its children are inserted.
	Created(n *html.Node)

	// Released is called for every realized node Apply removes. Projected
	// nodes are not released; they still belong to a light list.
	Released(n *html.Node)
}

// Physical is the Scope in which every element holds its children directly.
func Physical(api dom.API) Scope {
	return physical{api: api}
}

type physical struct {
	api dom.API
}

func (p physical) Container(n *html.Node) Container { return Element(p.api, n) }
func (physical) Created(*html.Node)                 {}
func (physical) Released(*html.Node)                {}

// Element returns the container of n's physical children.
func Element(api dom.API, n *html.Node) Container {
	return &element{api: api, node: n}
}

type element struct {
	api  dom.API
	node *html.Node
}

func (e *element) InsertBefore(child, ref *html.Node) {
	if ref == child {
		return
	}
	e.api.InsertBefore(e.node, child, ref)
}

func (e *element) Remove(child *html.Node) {
	if e.api.Parent(child) == e.node {
		e.api.RemoveChild(e.node, child)
	}
}

func (e *element) Contains(child *html.Node) bool {
	return e.api.Parent(child) == e.node
}

func (e *element) NextSibling(child *html.Node) *html.Node {
	return e.api.NextSibling(child)
}

// LightList is the logical child list of a component host: the nodes its
// parent rendered into it. Where those nodes physically end up is decided
// by the host's own distribution, so inserting only records the position.
// Removing also detaches the node physically.
type LightList struct {
	api   dom.API
	nodes []*html.Node

	// OnChange is called after every mutation.
	OnChange func()
}

// NewLightList returns a list holding nodes.
func NewLightList(api dom.API, nodes []*html.Node) *LightList {
	return &LightList{api: api, nodes: slices.Clone(nodes)}
}

// Nodes returns a copy of the list.
func (l *LightList) Nodes() []*html.Node {
	return slices.Clone(l.nodes)
}

// Len returns the number of nodes in the list.
func (l *LightList) Len() int {
	return len(l.nodes)
}

func (l *LightList) index(n *html.Node) int {
	return slices.Index(l.nodes, n)
}

func (l *LightList) InsertBefore(child, ref *html.Node) {
	if ref == child {
		return
	}
	if i := l.index(child); i >= 0 {
		l.nodes = slices.Delete(l.nodes, i, i+1)
	}
	at := len(l.nodes)
	if ref != nil {
		if i := l.index(ref); i >= 0 {
			at = i
		}
	}
	l.nodes = slices.Insert(l.nodes, at, child)
	l.changed()
}

func (l *LightList) Remove(child *html.Node) {
	i := l.index(child)
	if i < 0 {
		return
	}
	l.nodes = slices.Delete(l.nodes, i, i+1)
	if parent := l.api.Parent(child); parent != nil {
		l.api.RemoveChild(parent, child)
	}
	l.changed()
}

func (l *LightList) Contains(child *html.Node) bool {
	return l.index(child) >= 0
}

func (l *LightList) NextSibling(child *html.Node) *html.Node {
	i := l.index(child)
	if i < 0 || i+1 >= len(l.nodes) {
		return nil
	}
	return l.nodes[i+1]
}

func (l *LightList) changed() {
	if l.OnChange != nil {
		l.OnChange()
	}
}
