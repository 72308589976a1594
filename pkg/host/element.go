package host

import (
	"golang.org/x/net/html"

	"github.com/vango-dev/graft/pkg/component"
	"github.com/vango-dev/graft/pkg/patch"
	"github.com/vango-dev/graft/pkg/slot"
	"github.com/vango-dev/graft/pkg/vdom"
)

// State is the lifecycle state of a host element.
type State uint8

const (
	StatePending  State = iota // declared, not instantiated
	StateLoading               // instantiated, first render scheduled
	StateReady                 // first patch applied
	StateUpdating              // re-render in flight
	StateDetached              // removed from the tree, terminal
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateUpdating:
		return "updating"
	case StateDetached:
		return "detached"
	default:
		return "unknown"
	}
}

// Element is one component instance anchored at a real node.
type Element struct {
	node     *html.Node
	desc     *component.Descriptor
	state    State
	instance any
	light    *patch.LightList

	tree   *vdom.VNode
	refs   patch.Refs
	result *slot.Result

	renders   int
	queued    bool
	rendering bool
}

func (e *Element) Tag() string                       { return e.desc.Tag }
func (e *Element) Node() *html.Node                  { return e.node }
func (e *Element) State() State                      { return e.state }
func (e *Element) Descriptor() *component.Descriptor { return e.desc }

// Instance returns the component state created by the descriptor. Mutate
// it and call Runtime.Request to re-render.
func (e *Element) Instance() any { return e.instance }

// Light returns the host's light children in order.
func (e *Element) Light() []*html.Node {
	if e.light == nil {
		return nil
	}
	return e.light.Nodes()
}

// Tree returns the resolved tree of the last committed cycle. Its root is a
// node for the host element itself.
func (e *Element) Tree() *vdom.VNode { return e.tree }

// Refs returns the realized nodes of Tree.
func (e *Element) Refs() patch.Refs { return e.refs }

// Distribution returns the slot result of the last committed cycle.
func (e *Element) Distribution() *slot.Result { return e.result }

// Renders returns the number of committed cycles.
func (e *Element) Renders() int { return e.renders }
