package vdom

import "golang.org/x/net/html"

// VKind is the node type discriminator.
type VKind uint8

const (
	KindInvalid   VKind = iota // zero value, never valid in a tree
	KindElement                // <div>, <button>, custom element hosts
	KindText                   // plain text node
	KindFragment               // grouping without wrapper
	KindSlot                   // insertion point sentinel
	KindProjected              // existing real node placed by distribution
)

// String returns the string representation of the VKind.
func (k VKind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	case KindFragment:
		return "Fragment"
	case KindSlot:
		return "Slot"
	case KindProjected:
		return "Projected"
	default:
		return "Invalid"
	}
}

// VNode is the virtual node.
type VNode struct {
	Kind     VKind      // Node type
	Tag      string     // Element tag name (e.g., "div"); "slot" for insertion points
	Props    Props      // Attributes
	Children []*VNode   // Child nodes, exclusively owned
	Key      string     // Reconciliation key
	Text     string     // For KindText
	Ref      *html.Node // For KindProjected: the real node being relocated
}

// Props holds attributes.
type Props map[string]any

// Attr represents a single attribute.
type Attr struct {
	Key   string
	Value any
}

// IsEmpty returns true if this is an empty/nil attribute.
func (a Attr) IsEmpty() bool {
	return a.Key == ""
}

// Style is a per-property style value. The reconciler diffs it property by
// property instead of replacing the whole style attribute.
type Style map[string]string

// SlotName returns the insertion point this node targets when it is
// projected, read from its "slot" attribute. Empty means the default slot.
func (v *VNode) SlotName() string {
	if v == nil || v.Props == nil {
		return ""
	}
	s, _ := v.Props["slot"].(string)
	return s
}

// InsertionName returns the name declared by an insertion point. Empty
// means the default insertion point. It returns "" for non-slot nodes.
func (v *VNode) InsertionName() string {
	if v == nil || v.Kind != KindSlot || v.Props == nil {
		return ""
	}
	s, _ := v.Props["name"].(string)
	return s
}

// Identity returns the value used to match this node against old siblings
// during keyed reconciliation: the key for keyed nodes, the real node for
// projected ones, nil otherwise.
func (v *VNode) Identity() any {
	if v == nil {
		return nil
	}
	if v.Kind == KindProjected {
		return v.Ref
	}
	if v.Key != "" {
		return v.Key
	}
	return nil
}

// SameNode reports whether b can be patched in place of a: same kind, same
// tag, same key. Projected nodes are the same only when they refer to the
// same real node.
func SameNode(a, b *VNode) bool {
	if a == nil || b == nil {
		return false
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindProjected:
		return a.Ref == b.Ref
	case KindText:
		return a.Key == b.Key
	default:
		return a.Tag == b.Tag && a.Key == b.Key
	}
}

// Walk visits v and its descendants depth-first in document order. If fn
// returns false the node's children are skipped.
func Walk(v *VNode, fn func(*VNode) bool) {
	if v == nil {
		return
	}
	if !fn(v) {
		return
	}
	for _, child := range v.Children {
		Walk(child, fn)
	}
}

// Flatten expands fragments and insertion points into the list of nodes
// they contribute to their parent, preserving order.
func Flatten(children []*VNode) []*VNode {
	flat := make([]*VNode, 0, len(children))
	for _, child := range children {
		flat = appendFlat(flat, child)
	}
	return flat
}

func appendFlat(dst []*VNode, v *VNode) []*VNode {
	if v == nil {
		return dst
	}
	if v.Kind == KindFragment || v.Kind == KindSlot {
		for _, child := range v.Children {
			dst = appendFlat(dst, child)
		}
		return dst
	}
	return append(dst, v)
}
