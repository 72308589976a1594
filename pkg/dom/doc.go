// Package dom is the real-tree abstraction used by the reconciler, the slot
// distributor and the hydration marker.
//
// The core never touches tree nodes directly; every creation, insertion,
// removal and attribute access goes through API. HTML implements API on
// top of golang.org/x/net/html nodes, which doubles as the server-side DOM
// emulation used during prerendering. Recorder decorates any API and
// counts mutations, which the telemetry and tests rely on.
//
// Insertion has DOM move semantics: inserting a node that already has a
// parent detaches it first, so identity is preserved across relocations.
package dom
