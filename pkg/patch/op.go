package patch

import (
	"github.com/vango-dev/graft/pkg/vdom"
)

// OpKind is the type of a plan operation.
type OpKind uint8

const (
	OpCreate     OpKind = iota // realize Node (and its subtree) and insert it
	OpMove                     // insert an already realized Node at a new position
	OpRemove                   // remove Node (an old vnode) from Parent
	OpSetAttr                  // set attribute Key to Value
	OpRemoveAttr               // remove attribute Key
	OpSetStyle                 // set style property Key to Value; empty removes
	OpSetText                  // replace text content with Value
)

// String returns the op name.
func (k OpKind) String() string {
	switch k {
	case OpCreate:
		return "Create"
	case OpMove:
		return "Move"
	case OpRemove:
		return "Remove"
	case OpSetAttr:
		return "SetAttr"
	case OpRemoveAttr:
		return "RemoveAttr"
	case OpSetStyle:
		return "SetStyle"
	case OpSetText:
		return "SetText"
	default:
		return "Unknown"
	}
}

// Op is a single reconciliation step.
type Op struct {
	Kind OpKind

	// Node is the subject: a new vnode, or the old vnode for OpRemove.
	Node *vdom.VNode

	// Parent owns the child list affected by create, move and remove.
	Parent *vdom.VNode

	// Before anchors an insertion before its realized node. Nil means
	// append.
	Before *vdom.VNode

	Key   string // attribute or style property name
	Value string
}

// Stats counts operations by kind.
type Stats struct {
	Creates     int
	Moves       int
	Removes     int
	SetAttrs    int
	RemoveAttrs int
	SetStyles   int
	SetTexts    int
}

// Total returns the number of operations.
func (s Stats) Total() int {
	return s.Creates + s.Moves + s.Removes + s.SetAttrs + s.RemoveAttrs + s.SetStyles + s.SetTexts
}

// Add accumulates o into s.
func (s *Stats) Add(o Stats) {
	s.Creates += o.Creates
	s.Moves += o.Moves
	s.Removes += o.Removes
	s.SetAttrs += o.SetAttrs
	s.RemoveAttrs += o.RemoveAttrs
	s.SetStyles += o.SetStyles
	s.SetTexts += o.SetTexts
}

// ByKind returns the counts keyed by op name, omitting zeros.
func (s Stats) ByKind() map[string]int {
	out := make(map[string]int)
	add := func(k OpKind, n int) {
		if n > 0 {
			out[k.String()] = n
		}
	}
	add(OpCreate, s.Creates)
	add(OpMove, s.Moves)
	add(OpRemove, s.Removes)
	add(OpSetAttr, s.SetAttrs)
	add(OpRemoveAttr, s.RemoveAttrs)
	add(OpSetStyle, s.SetStyles)
	add(OpSetText, s.SetTexts)
	return out
}
