package component

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/vango-dev/graft/internal/errors"
	"github.com/vango-dev/graft/pkg/dom"
	"github.com/vango-dev/graft/pkg/vdom"
)

// Template builds a stateless descriptor whose render output is the given
// markup. <slot> elements become insertion points. Whitespace-only text
// between tags is discarded and comments are ignored.
func Template(tag, markup string) (*Descriptor, error) {
	nodes, err := dom.ParseFragment(markup)
	if err != nil {
		return nil, errors.New("E021").WithDetailf("component %q", tag).Wrap(err)
	}

	root := vdom.Fragment(FromHTML(nodes))
	if err := vdom.Validate(root); err != nil {
		return nil, errors.New("E021").WithDetailf("component %q", tag).Wrap(err)
	}

	return &Descriptor{
		Tag: tag,
		Render: func(any) *vdom.VNode {
			return vdom.Clone(root)
		},
		Flags: InferFlags(root),
	}, nil
}

// FromHTML converts parsed markup to virtual nodes.
func FromHTML(nodes []*html.Node) []*vdom.VNode {
	out := make([]*vdom.VNode, 0, len(nodes))
	for _, n := range nodes {
		if v := fromHTML(n); v != nil {
			out = append(out, v)
		}
	}
	return out
}

func fromHTML(n *html.Node) *vdom.VNode {
	switch n.Type {
	case html.TextNode:
		if strings.TrimSpace(n.Data) == "" {
			return nil
		}
		return vdom.Text(n.Data)

	case html.ElementNode:
		args := make([]any, 0, len(n.Attr)+1)
		for _, a := range n.Attr {
			args = append(args, vdom.Prop(a.Key, a.Val))
		}
		var children []*html.Node
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			children = append(children, c)
		}
		args = append(args, FromHTML(children))
		return vdom.H(n.Data, args...)
	}
	return nil
}
