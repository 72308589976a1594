package component

import (
	"strings"

	"github.com/vango-dev/graft/pkg/vdom"
)

// Flags describe capabilities of a component.
type Flags uint8

const (
	// HasSlots is set when the render output declares insertion points.
	HasSlots Flags = 1 << iota
	// HasNamedSlots is set when at least one insertion point is named.
	HasNamedSlots
	// Scoped marks components whose styles are scoped to the host.
	Scoped
)

// Has reports whether all bits of f are set.
func (fl Flags) Has(f Flags) bool {
	return fl&f == f
}

// String returns a "|" separated flag list.
func (fl Flags) String() string {
	var parts []string
	if fl.Has(HasSlots) {
		parts = append(parts, "slots")
	}
	if fl.Has(HasNamedSlots) {
		parts = append(parts, "named-slots")
	}
	if fl.Has(Scoped) {
		parts = append(parts, "scoped")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// Descriptor is the implementation behind a component tag.
type Descriptor struct {
	// Tag is the custom element name. It must contain a hyphen.
	Tag string

	// New creates the per-instance state. Optional; nil state is passed to
	// Render when unset.
	New func() any

	// Render returns the component's virtual output for the given state.
	// A nil result renders nothing.
	Render func(state any) *vdom.VNode

	Flags Flags
}

// Instantiate returns fresh instance state.
func (d *Descriptor) Instantiate() any {
	if d.New == nil {
		return nil
	}
	return d.New()
}

// Func returns a stateless descriptor.
func Func(tag string, render func() *vdom.VNode) *Descriptor {
	return &Descriptor{
		Tag:    tag,
		Render: func(any) *vdom.VNode { return render() },
	}
}

// InferFlags derives slot flags from a sample render output.
func InferFlags(tree *vdom.VNode) Flags {
	var flags Flags
	vdom.Walk(tree, func(v *vdom.VNode) bool {
		if v.Kind == vdom.KindSlot {
			flags |= HasSlots
			if v.InsertionName() != "" {
				flags |= HasNamedSlots
			}
		}
		return true
	})
	return flags
}
