// Package errors provides structured, coded errors for graft.
//
// Every error raised by the render pipeline, the hydration pass, the
// storage backends and the CLI carries a stable code (e.g. "E001") that
// maps to a category, a short message and a longer explanation.
//
// # Error Categories
//
//   - render: component render and host lifecycle failures
//   - distribution: insertion point (slot) contract violations
//   - patch: reconciler desynchronisation
//   - hydration: server-side marking and diagnostics
//   - protocol: live preview frame codec
//   - storage: prerender output backends
//   - config: graft.json problems
//   - cli: command line usage
//
// # Usage
//
//	err := errors.New("E001").
//	    WithDetail("child 2 of <ul> is nil").
//	    WithSuggestion("Filter nil children before building the slice")
//
//	fmt.Println(err.Format())
//
// Errors compare by code, so package sentinels built with New work with
// the standard library's errors.Is:
//
//	var ErrInvalidNode = errors.New("E001")
//	...
//	if stderrors.Is(err, vdom.ErrInvalidNode) { ... }
package errors
