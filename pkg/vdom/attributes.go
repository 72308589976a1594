package vdom

import "strings"

// attr creates an Attr with the given key and value.
func attr(key string, value any) Attr {
	return Attr{Key: key, Value: value}
}

// Prop sets an arbitrary attribute.
func Prop(key string, value any) Attr { return attr(key, value) }

// Key sets the reconciliation key. It is not rendered as an attribute.
func Key(key string) Attr { return attr("key", key) }

// Name sets the name of an insertion point.
func Name(name string) Attr { return attr("name", name) }

// SlotAttr targets a named insertion point of the enclosing component.
func SlotAttr(name string) Attr { return attr("slot", name) }

// ID sets the id attribute.
func ID(id string) Attr { return attr("id", id) }

// Class sets the class attribute, joining multiple classes with spaces.
func Class(classes ...string) Attr { return attr("class", strings.Join(classes, " ")) }

// Data creates a data-* attribute.
// Example: Data("id", "123") → data-id="123"
func Data(key, value string) Attr { return attr("data-"+key, value) }

// Hidden sets the boolean hidden attribute.
func Hidden(hidden bool) Attr { return attr("hidden", hidden) }

// StyleProps sets individual style properties.
func StyleProps(style Style) Attr { return attr("style", style) }

// Attrs merges attributes into a single slice, skipping empty ones.
func Attrs(attrs ...Attr) []Attr {
	out := make([]Attr, 0, len(attrs))
	for _, a := range attrs {
		if !a.IsEmpty() {
			out = append(out, a)
		}
	}
	return out
}
