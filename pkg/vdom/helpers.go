package vdom

import (
	"fmt"

	"golang.org/x/net/html"
)

// Text creates a text node.
func Text(content string) *VNode {
	return &VNode{
		Kind: KindText,
		Text: content,
	}
}

// Textf creates a formatted text node.
func Textf(format string, args ...any) *VNode {
	return Text(fmt.Sprintf(format, args...))
}

// Fragment groups children without a wrapper element.
func Fragment(children ...any) *VNode {
	node := &VNode{Kind: KindFragment}
	for _, child := range children {
		switch v := child.(type) {
		case nil:
			continue
		case *VNode:
			if v != nil {
				node.Children = append(node.Children, v)
			}
		case []*VNode:
			for _, c := range v {
				if c != nil {
					node.Children = append(node.Children, c)
				}
			}
		case string:
			node.Children = append(node.Children, Text(v))
		}
	}
	return node
}

// Projected wraps an existing real node so it can take a position in a
// resolved tree. Only the slot distributor should need this.
func Projected(n *html.Node) *VNode {
	return &VNode{
		Kind: KindProjected,
		Ref:  n,
	}
}

// If returns the node if condition is true, nil otherwise.
func If(condition bool, node *VNode) *VNode {
	if condition {
		return node
	}
	return nil
}

// IfElse returns the first node if condition is true, the second otherwise.
func IfElse(condition bool, ifTrue, ifFalse *VNode) *VNode {
	if condition {
		return ifTrue
	}
	return ifFalse
}

// Range maps items to nodes. Nil results are dropped.
func Range[T any](items []T, fn func(int, T) *VNode) []*VNode {
	out := make([]*VNode, 0, len(items))
	for i, item := range items {
		if node := fn(i, item); node != nil {
			out = append(out, node)
		}
	}
	return out
}

// Clone returns a deep copy of v. Projected nodes keep their real node.
func Clone(v *VNode) *VNode {
	if v == nil {
		return nil
	}
	c := *v
	if v.Props != nil {
		c.Props = make(Props, len(v.Props))
		for k, val := range v.Props {
			c.Props[k] = val
		}
	}
	if v.Children != nil {
		c.Children = make([]*VNode, len(v.Children))
		for i, child := range v.Children {
			c.Children[i] = Clone(child)
		}
	}
	return &c
}
