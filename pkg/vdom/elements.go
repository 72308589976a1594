package vdom

// voidElements are elements that cannot have children.
var voidElements = map[string]bool{
	"area":   true,
	"base":   true,
	"br":     true,
	"col":    true,
	"embed":  true,
	"hr":     true,
	"img":    true,
	"input":  true,
	"link":   true,
	"meta":   true,
	"param":  true,
	"source": true,
	"track":  true,
	"wbr":    true,
}

// IsVoidElement returns true if the tag is a void element.
func IsVoidElement(tag string) bool {
	return voidElements[tag]
}

// SlotTag is the tag name that marks an insertion point.
const SlotTag = "slot"

// H creates an element node. Arguments can be: nil, Attr, []Attr, *VNode,
// []*VNode or string (a text child). A "slot" tag produces an insertion
// point, exactly like Slot.
func H(tag string, args ...any) *VNode {
	node := &VNode{
		Kind:  KindElement,
		Tag:   tag,
		Props: make(Props),
	}
	if tag == SlotTag {
		node.Kind = KindSlot
	}
	apply(node, args)
	return node
}

// Slot creates an insertion point. Children are fallback content, realized
// only when no supplied content matches the insertion point's name.
func Slot(args ...any) *VNode {
	return H(SlotTag, args...)
}

// apply adds attributes and children to node.
func apply(node *VNode, args []any) {
	for _, arg := range args {
		switch v := arg.(type) {
		case nil:
			// Ignore nil (allows conditional attributes)
			continue

		case Attr:
			setAttr(node, v)

		case []Attr:
			for _, a := range v {
				setAttr(node, a)
			}

		case *VNode:
			if v != nil {
				node.Children = append(node.Children, v)
			}

		case []*VNode:
			for _, child := range v {
				if child != nil {
					node.Children = append(node.Children, child)
				}
			}

		case string:
			// Shorthand for text node
			node.Children = append(node.Children, Text(v))
		}
	}
}

// setAttr stores a single attribute, lifting "key" into VNode.Key.
func setAttr(node *VNode, a Attr) {
	if a.Key == "" {
		return
	}
	if a.Key == "key" {
		if s, ok := a.Value.(string); ok {
			node.Key = s
		}
		return
	}
	if node.Props == nil {
		node.Props = make(Props)
	}
	node.Props[a.Key] = a.Value
}
