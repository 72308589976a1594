package patch

import (
	"golang.org/x/net/html"

	"github.com/vango-dev/graft/internal/errors"
	"github.com/vango-dev/graft/pkg/dom"
	"github.com/vango-dev/graft/pkg/vdom"
)

// Apply executes plan through api. A nil scope means Physical(api). After a
// successful Apply, plan.Refs covers every realized node of the new tree.
func Apply(api dom.API, plan *Plan, scope Scope) error {
	if scope == nil {
		scope = Physical(api)
	}
	a := &applier{api: api, plan: plan, scope: scope}
	for i := range plan.Ops {
		if err := a.apply(&plan.Ops[i]); err != nil {
			return err
		}
	}
	return nil
}

type applier struct {
	api   dom.API
	plan  *Plan
	scope Scope
}

func (a *applier) ref(v *vdom.VNode) (*html.Node, error) {
	if v.Kind == vdom.KindProjected {
		return v.Ref, nil
	}
	if n, ok := a.plan.Refs[v]; ok && n != nil {
		return n, nil
	}
	if n, ok := a.plan.prev[v]; ok && n != nil {
		return n, nil
	}
	return nil, errors.New("E010").WithDetailf("%s node %q has no realized node", v.Kind, v.Tag)
}

func (a *applier) container(parent *vdom.VNode) (Container, error) {
	n, err := a.ref(parent)
	if err != nil {
		return nil, err
	}
	if n == a.plan.Root {
		return Element(a.api, n), nil
	}
	return a.scope.Container(n), nil
}

func (a *applier) anchor(op *Op) (*html.Node, error) {
	if op.Before == nil {
		return nil, nil
	}
	return a.ref(op.Before)
}

func (a *applier) apply(op *Op) error {
	switch op.Kind {
	case OpCreate, OpMove:
		c, err := a.container(op.Parent)
		if err != nil {
			return err
		}
		ref, err := a.anchor(op)
		if err != nil {
			return err
		}
		var n *html.Node
		if op.Kind == OpCreate {
			n = a.build(op.Node)
		} else if n, err = a.ref(op.Node); err != nil {
			return err
		}
		c.InsertBefore(n, ref)

	case OpRemove:
		c, err := a.container(op.Parent)
		if err != nil {
			return err
		}
		n, err := a.ref(op.Node)
		if err != nil {
			return err
		}
		if op.Node.Kind == vdom.KindProjected {
			// Already claimed by another list in this cycle.
			if c.Contains(n) {
				c.Remove(n)
			}
			return nil
		}
		c.Remove(n)
		a.scope.Released(n)

	case OpSetAttr, OpRemoveAttr, OpSetStyle, OpSetText:
		n, err := a.ref(op.Node)
		if err != nil {
			return err
		}
		switch op.Kind {
		case OpSetAttr:
			a.api.SetAttribute(n, op.Key, op.Value)
		case OpRemoveAttr:
			a.api.RemoveAttribute(n, op.Key)
		case OpSetStyle:
			a.api.SetStyle(n, op.Key, op.Value)
		case OpSetText:
			a.api.SetTextContent(n, op.Value)
		}
	}
	return nil
}

// build realizes v and its subtree and records every new node in the plan.
func (a *applier) build(v *vdom.VNode) *html.Node {
	switch v.Kind {
	case vdom.KindProjected:
		a.plan.Refs[v] = v.Ref
		return v.Ref
	case vdom.KindText:
		n := a.api.CreateText(v.Text)
		a.plan.Refs[v] = n
		return n
	}

	n := a.api.CreateElement(v.Tag)
	a.plan.Refs[v] = n
	for _, key := range sortedKeys(v.Props) {
		val := v.Props[key]
		if style, ok := val.(vdom.Style); ok {
			for _, prop := range sortedStyle(style) {
				if style[prop] != "" {
					a.api.SetStyle(n, prop, style[prop])
				}
			}
			continue
		}
		if s, present := attrValue(val); present {
			a.api.SetAttribute(n, key, s)
		}
	}
	a.scope.Created(n)

	children := vdom.Flatten(v.Children)
	if len(children) == 0 {
		return n
	}
	c := a.scope.Container(n)
	for _, child := range children {
		c.InsertBefore(a.build(child), nil)
	}
	return n
}
