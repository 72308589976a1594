// Package hydrate produces server-rendered HTML annotated for reattachment.
//
// HTML parses a document, mounts every registered component through a
// host.Runtime, and runs a Marker over the result before serializing it.
// The Marker writes:
//
//	data-ssrv="<c>"         on every component host
//	data-ssrc="<c>.<i>"     on every element a component rendered
//	<!--s.<c>.<i>-->text<!--/-->  around every text node a component rendered
//
// c is the host's component ordinal, assigned in document order. i is the
// node's index among the children its parent vnode rendered, with slots and
// fragments flattened away. An identifier is therefore unique only among
// siblings; a reattach pass resolves it relative to the parent it is
// walking. Projected content belongs to the component that rendered it, not
// to the one that received it. An element ordinal ending in "." marks an
// element with no rendered child nodes of its own.
//
// Collect reads the markers of a hydrated document back into an Index, which
// is what a client-side reattach pass walks.
package hydrate
