package slot

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/vango-dev/graft/pkg/dom"
	"github.com/vango-dev/graft/pkg/vdom"
)

// Binding records what one insertion point received.
type Binding struct {
	Name     string       // "" for the default insertion point
	Nodes    []*html.Node // projected light nodes, in document order
	Fallback bool         // fallback content was realized instead
}

// Result describes one distribution pass. It is valid for a single render
// cycle only.
type Result struct {
	Bindings []Binding
	Dropped  []*html.Node
}

// Bound returns the light nodes assigned to name across all occurrences.
func (r *Result) Bound(name string) []*html.Node {
	var out []*html.Node
	for _, b := range r.Bindings {
		if b.Name == name {
			out = append(out, b.Nodes...)
		}
	}
	return out
}

// Distributor assigns light nodes to insertion points.
type Distributor struct {
	api dom.API
}

// NewDistributor returns a distributor reading slot names through api.
func NewDistributor(api dom.API) *Distributor {
	return &Distributor{api: api}
}

// Distribute resolves the insertion points of tree against light. The input
// tree is not modified. A nil tree resolves to nil with every light node
// dropped.
func (d *Distributor) Distribute(light []*html.Node, tree *vdom.VNode) (*vdom.VNode, *Result, error) {
	res := &Result{}
	if tree == nil {
		res.Dropped = append(res.Dropped, light...)
		return nil, res, nil
	}
	if err := vdom.Validate(tree); err != nil {
		return nil, nil, err
	}

	resolved := vdom.Clone(tree)

	remaining := map[string]int{}
	vdom.Walk(resolved, func(v *vdom.VNode) bool {
		if v.Kind == vdom.KindSlot {
			remaining[v.InsertionName()]++
			return false
		}
		return true
	})

	pools := d.classify(light)
	placed := make(map[*html.Node]bool, len(light))

	var resolve func(v *vdom.VNode)
	resolve = func(v *vdom.VNode) {
		if v.Kind != vdom.KindSlot {
			for _, child := range v.Children {
				resolve(child)
			}
			return
		}

		name := v.InsertionName()
		remaining[name]--

		var taken []*html.Node
		if p := pools[name]; p != nil {
			if remaining[name] > 0 {
				taken, p.nodes = d.takeUnit(p.nodes)
			} else {
				taken, p.nodes = p.nodes, nil
			}
		}

		// Fallback children stay in place; nested insertion points inside
		// them were not counted and keep their own fallback.
		if len(taken) == 0 {
			res.Bindings = append(res.Bindings, Binding{Name: name, Fallback: len(v.Children) > 0})
			return
		}

		v.Children = make([]*vdom.VNode, len(taken))
		for i, n := range taken {
			v.Children[i] = vdom.Projected(n)
			placed[n] = true
		}
		res.Bindings = append(res.Bindings, Binding{Name: name, Nodes: taken})
	}
	resolve(resolved)

	for _, n := range light {
		if !placed[n] {
			res.Dropped = append(res.Dropped, n)
		}
	}
	return resolved, res, nil
}

type pool struct {
	nodes []*html.Node
}

// classify groups light nodes by target slot name, keeping document order.
func (d *Distributor) classify(light []*html.Node) map[string]*pool {
	pools := make(map[string]*pool)
	for _, n := range light {
		name := d.slotOf(n)
		p := pools[name]
		if p == nil {
			p = &pool{}
			pools[name] = p
		}
		p.nodes = append(p.nodes, n)
	}
	return pools
}

// slotOf returns the slot a light node targets. Only elements can name a
// slot; text and comments always go to the default insertion point.
func (d *Distributor) slotOf(n *html.Node) string {
	if !d.api.IsElement(n) {
		return ""
	}
	name, _ := d.api.GetAttribute(n, "slot")
	return name
}

// takeUnit splits off leading whitespace-only text nodes plus the next
// node.
func (d *Distributor) takeUnit(nodes []*html.Node) (unit, rest []*html.Node) {
	i := 0
	for i < len(nodes) && d.isBlank(nodes[i]) {
		i++
	}
	if i < len(nodes) {
		i++
	}
	return nodes[:i:i], nodes[i:]
}

func (d *Distributor) isBlank(n *html.Node) bool {
	return d.api.IsText(n) && strings.TrimSpace(d.api.TextContent(n)) == ""
}
