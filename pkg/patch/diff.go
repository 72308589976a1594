package patch

import (
	"golang.org/x/net/html"

	"github.com/vango-dev/graft/internal/errors"
	"github.com/vango-dev/graft/pkg/vdom"
)

// Refs is the side table from virtual nodes to the real nodes realizing
// them. It is a lookup table only; it never owns the real nodes.
type Refs map[*vdom.VNode]*html.Node

// Plan is the result of Diff.
type Plan struct {
	// Root is the real node both trees are rooted at.
	Root *html.Node

	Ops []Op

	// Refs maps every realized node of the new tree. Entries for matched
	// nodes are filled by Diff, entries for created nodes by Apply.
	Refs Refs

	// Warnings are non-fatal findings such as duplicate keys.
	Warnings []error

	prev Refs
}

// Stats counts the plan's operations by kind.
func (p *Plan) Stats() Stats {
	var s Stats
	for _, op := range p.Ops {
		switch op.Kind {
		case OpCreate:
			s.Creates++
		case OpMove:
			s.Moves++
		case OpRemove:
			s.Removes++
		case OpSetAttr:
			s.SetAttrs++
		case OpRemoveAttr:
			s.RemoveAttrs++
		case OpSetStyle:
			s.SetStyles++
		case OpSetText:
			s.SetTexts++
		}
	}
	return s
}

// Empty reports whether applying the plan would change nothing.
func (p *Plan) Empty() bool {
	return len(p.Ops) == 0
}

// Diff plans the changes turning old into next. Both trees must be rooted at
// the same real node, found as refs[old]. The roots' own attributes are not
// compared; they belong to whoever rendered the root element.
//
// next is validated before anything is planned. refs is read, never
// written.
func Diff(refs Refs, old, next *vdom.VNode) (*Plan, error) {
	if old == nil {
		return nil, errors.New("E001").WithDetail("previous tree is nil")
	}
	if err := vdom.Validate(next); err != nil {
		return nil, err
	}
	root, ok := refs[old]
	if !ok || root == nil {
		return nil, errors.New("E010").WithDetail("previous root is not realized")
	}

	d := &differ{
		plan: &Plan{
			Root: root,
			Refs: Refs{next: root},
			prev: refs,
		},
		homes: projectedHomes(next),
	}
	if err := d.diffChildren(next, vdom.Flatten(old.Children), vdom.Flatten(next.Children)); err != nil {
		return nil, err
	}
	return d.plan, nil
}

// Realize plans the first render of tree under root.
func Realize(root *html.Node, tree *vdom.VNode) (*Plan, error) {
	seed := &vdom.VNode{Kind: vdom.KindFragment}
	return Diff(Refs{seed: root}, seed, tree)
}

type differ struct {
	plan *Plan

	// homes maps each projected real node to the new parent whose child
	// list it ends up in.
	homes map[*html.Node]*vdom.VNode
}

// projectedHomes records the parent list of every projected node in tree.
func projectedHomes(tree *vdom.VNode) map[*html.Node]*vdom.VNode {
	homes := make(map[*html.Node]*vdom.VNode)
	var visit func(parent *vdom.VNode)
	visit = func(parent *vdom.VNode) {
		for _, c := range vdom.Flatten(parent.Children) {
			switch c.Kind {
			case vdom.KindProjected:
				homes[c.Ref] = parent
			case vdom.KindElement:
				visit(c)
			}
		}
	}
	visit(tree)
	return homes
}

// claimedElsewhere reports whether old child v is a projected node that
// the new tree places under a parent other than parent. Such a node may be
// moved out of the list before an insertion anchored on it runs.
func (d *differ) claimedElsewhere(parent, v *vdom.VNode) bool {
	return v.Kind == vdom.KindProjected && d.homes[v.Ref] != parent
}

// anchor returns the first old child in old[from..to] that stays in
// parent's list, or fallback when there is none.
func (d *differ) anchor(parent *vdom.VNode, old []*vdom.VNode, from, to int, fallback *vdom.VNode) *vdom.VNode {
	for i := from; i <= to; i++ {
		if v := old[i]; v != nil && !d.claimedElsewhere(parent, v) {
			return v
		}
	}
	return fallback
}

func (d *differ) emit(op Op) {
	d.plan.Ops = append(d.plan.Ops, op)
}

// prevRef returns the real node of an old vnode.
func (d *differ) prevRef(v *vdom.VNode) (*html.Node, error) {
	if v.Kind == vdom.KindProjected {
		return v.Ref, nil
	}
	if n, ok := d.plan.prev[v]; ok && n != nil {
		return n, nil
	}
	return nil, errors.New("E010").WithDetailf("%s node %q has no realized node", v.Kind, v.Tag)
}

// patchNode reconciles a matched pair in place.
func (d *differ) patchNode(old, next *vdom.VNode) error {
	real, err := d.prevRef(old)
	if err != nil {
		return err
	}
	d.plan.Refs[next] = real

	switch next.Kind {
	case vdom.KindText:
		if old.Text != next.Text {
			d.emit(Op{Kind: OpSetText, Node: next, Value: next.Text})
		}
	case vdom.KindElement:
		d.diffProps(old, next)
		return d.diffChildren(next, vdom.Flatten(old.Children), vdom.Flatten(next.Children))
	}
	return nil
}

// diffChildren runs the two-ended child list walk.
func (d *differ) diffChildren(parent *vdom.VNode, oldCh, newCh []*vdom.VNode) error {
	oldStart, oldEnd := 0, len(oldCh)-1
	newStart, newEnd := 0, len(newCh)-1

	var keyIndex map[any]int

	// tail is the first already placed node of the new list's suffix.
	tail := func() *vdom.VNode {
		if newEnd+1 < len(newCh) {
			return newCh[newEnd+1]
		}
		return nil
	}

	for oldStart <= oldEnd && newStart <= newEnd {
		oldS, oldE := oldCh[oldStart], oldCh[oldEnd]
		newS, newE := newCh[newStart], newCh[newEnd]

		switch {
		case oldS == nil:
			oldStart++

		case oldE == nil:
			oldEnd--

		case vdom.SameNode(oldS, newS):
			if err := d.patchNode(oldS, newS); err != nil {
				return err
			}
			oldStart++
			newStart++

		case vdom.SameNode(oldE, newE):
			if err := d.patchNode(oldE, newE); err != nil {
				return err
			}
			oldEnd--
			newEnd--

		case vdom.SameNode(oldS, newE):
			if err := d.patchNode(oldS, newE); err != nil {
				return err
			}
			d.emit(Op{Kind: OpMove, Node: newE, Parent: parent, Before: tail()})
			oldStart++
			newEnd--

		case vdom.SameNode(oldE, newS):
			if err := d.patchNode(oldE, newS); err != nil {
				return err
			}
			d.emit(Op{Kind: OpMove, Node: newS, Parent: parent,
				Before: d.anchor(parent, oldCh, oldStart, oldEnd-1, tail())})
			oldEnd--
			newStart++

		default:
			if keyIndex == nil {
				keyIndex = d.indexKeys(oldCh, oldStart, oldEnd)
			}
			idx, found := -1, false
			if id := newS.Identity(); id != nil {
				idx, found = keyIndex[id]
			}
			if found && oldCh[idx] != nil && vdom.SameNode(oldCh[idx], newS) {
				if err := d.patchNode(oldCh[idx], newS); err != nil {
					return err
				}
				oldCh[idx] = nil
				d.emit(Op{Kind: OpMove, Node: newS, Parent: parent,
					Before: d.anchor(parent, oldCh, oldStart, oldEnd, tail())})
			} else {
				d.create(parent, newS, d.anchor(parent, oldCh, oldStart, oldEnd, tail()))
			}
			newStart++
		}
	}

	if newStart <= newEnd {
		before := tail()
		for i := newStart; i <= newEnd; i++ {
			d.create(parent, newCh[i], before)
		}
	}
	if oldStart <= oldEnd {
		for i := oldStart; i <= oldEnd; i++ {
			if oldCh[i] != nil {
				d.emit(Op{Kind: OpRemove, Node: oldCh[i], Parent: parent})
			}
		}
	}
	return nil
}

// create plans the realization of v. Projected nodes already exist and are
// moved instead.
func (d *differ) create(parent, v, before *vdom.VNode) {
	if v.Kind == vdom.KindProjected {
		d.plan.Refs[v] = v.Ref
		d.emit(Op{Kind: OpMove, Node: v, Parent: parent, Before: before})
		return
	}
	d.emit(Op{Kind: OpCreate, Node: v, Parent: parent, Before: before})
}

// indexKeys maps identities in old[start..end] to their index. The first
// occurrence of a duplicate key wins; later ones are left unkeyed.
func (d *differ) indexKeys(old []*vdom.VNode, start, end int) map[any]int {
	index := make(map[any]int)
	for i := start; i <= end; i++ {
		v := old[i]
		if v == nil {
			continue
		}
		id := v.Identity()
		if id == nil {
			continue
		}
		if _, dup := index[id]; dup {
			if key, ok := id.(string); ok {
				d.plan.Warnings = append(d.plan.Warnings,
					errors.New("E011").WithDetailf("key %q under <%s>", key, v.Tag))
			}
			continue
		}
		index[id] = i
	}
	return index
}
