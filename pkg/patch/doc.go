// Package patch reconciles a previous virtual tree against a new one.
//
// Reconciliation is split in two phases. Diff walks both trees and produces
// a Plan: an ordered list of create, move, remove and update operations.
// Diff never touches the real tree, so a malformed input fails before any
// mutation happens. Apply then executes the plan through a dom.API.
//
// Child lists are diffed with a two-ended walk: old-start/new-start,
// old-end/new-end, old-start/new-end and old-end/new-start are compared on
// each pass, and a key lookup handles everything else. Nodes are the same
// when kind, tag and key agree; projected nodes are the same when they
// reference the same real node.
//
// Operations reference virtual nodes, not real ones. Anchors are resolved
// when the operation runs, through the plan's side table of realized nodes.
//
// Where a node's children live is decided by a Scope. Plain elements hold
// their children physically; a component host holds the children its parent
// renders in a LightList, which the host distributes on its own render.
package patch
