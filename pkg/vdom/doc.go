// Package vdom provides the virtual node model for graft.
//
// A VNode describes one prospective position in the real tree: an element
// with attributes and children, a text node, a fragment, or an insertion
// point (slot) that marks where content supplied by a parent component is
// projected. Trees are immutable by convention: render functions build a
// fresh tree every cycle and the reconciler compares it with the previous
// one instead of mutating either.
//
// # Building Trees
//
//	vdom.H("ion-card", vdom.Class("card"),
//	    vdom.H("header", vdom.Slot(vdom.Name("title"))),
//	    vdom.H("section", vdom.Slot()),
//	    vdom.Text("footer"),
//	)
//
// Strings passed to H become text children; nil arguments are ignored so
// conditional children can be written inline.
//
// # Sameness
//
// The reconciler never compares trees by value. Two nodes at the same
// position are the same logical node when their kind and tag agree and
// their keys are equal (see SameNode). Everything else is replaced.
//
// # Projection
//
// KindProjected nodes are never produced by render functions. The slot
// distributor substitutes them for insertion points: each one refers to
// an existing real node that is moved, not copied, into place.
package vdom
