// Package component maps custom element tags to component descriptors.
//
// A Registry is populated at startup, frozen, and then only read:
//
//	reg := component.NewRegistry()
//	reg.MustRegister(&component.Descriptor{
//		Tag:    "my-card",
//		New:    func() any { return &CardState{} },
//		Render: renderCard,
//	})
//	reg.Freeze()
//
// Template builds a descriptor from static markup, which is how the CLI and
// the HTTP server obtain components from graft.json.
package component
