// Package host runs component render cycles against a real tree.
//
// A Runtime recognizes component hosts by tag, captures the light children
// their parent supplied, and renders each host through one cycle:
//
//	render → slot distribution → diff → apply
//
// Cycles are submitted to a FIFO queue with Request and drained by Flush.
// A host never has two cycles in flight; a request that arrives while its
// cycle runs is queued behind it. Hosts removed from the tree are detached
// and any pending cycle for them is dropped.
//
// Children that a parent renders into a nested component host are kept in
// the host's light list rather than placed physically. The nested host's own
// cycle, queued after its parent's, distributes them.
//
// A Runtime is not safe for concurrent use. Create one per document.
package host
