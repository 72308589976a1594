// Package slot resolves content projection for one component boundary.
//
// Distribute takes the host's light children (the real nodes its parent
// supplied) and the component's fresh render output, and returns a resolved
// tree in which every insertion point holds either projected references to
// the light nodes it receives or its fallback content. The reconciler then
// moves those real nodes into place, so identity is preserved through any
// number of nested component boundaries.
//
// Insertion points are visited depth-first in declaration order. When a
// name is declared more than once, each occurrence but the last takes one
// unit of matching content (leading whitespace text plus the next node) and
// the last occurrence takes the rest. Content whose slot name matches no
// insertion point is reported as dropped.
package slot
