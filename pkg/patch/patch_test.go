package patch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	gerrors "github.com/vango-dev/graft/internal/errors"
	"github.com/vango-dev/graft/pkg/dom"
	"github.com/vango-dev/graft/pkg/vdom"
)

// harness realizes successive trees under one root element.
type harness struct {
	t     *testing.T
	api   dom.API
	root  *html.Node
	tree  *vdom.VNode
	refs  Refs
	scope Scope
}

func newHarness(t *testing.T, tag string) *harness {
	api := dom.NewHTML()
	return &harness{t: t, api: api, root: api.CreateElement(tag)}
}

func (h *harness) render(tree *vdom.VNode) *Plan {
	h.t.Helper()
	var plan *Plan
	var err error
	if h.tree == nil {
		plan, err = Realize(h.root, tree)
	} else {
		plan, err = Diff(h.refs, h.tree, tree)
	}
	require.NoError(h.t, err)
	require.NoError(h.t, Apply(h.api, plan, h.scope))
	h.tree, h.refs = tree, plan.Refs
	return plan
}

func (h *harness) html() string {
	h.t.Helper()
	out, err := dom.InnerHTML(h.root)
	require.NoError(h.t, err)
	return out
}

func list(keys ...string) *vdom.VNode {
	return vdom.H("ul", vdom.Range(keys, func(_ int, k string) *vdom.VNode {
		return vdom.H("li", vdom.Key(k), k)
	}))
}

func children(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}

func TestRealize(t *testing.T) {
	h := newHarness(t, "div")
	h.render(vdom.H("div",
		vdom.H("p", vdom.ID("a"), vdom.Class("x"), "hi"),
		vdom.H("input", vdom.Prop("disabled", true), vdom.Hidden(false)),
		vdom.H("span", vdom.StyleProps(vdom.Style{"margin": "0", "color": "red"})),
		vdom.Fragment("a", "b"),
	))
	assert.Equal(t,
		`<p class="x" id="a">hi</p><input disabled=""/><span style="color: red; margin: 0;"></span>ab`,
		h.html())
}

func TestRootAttributesUntouched(t *testing.T) {
	h := newHarness(t, "div")
	h.api.SetAttribute(h.root, "id", "owned-by-parent")
	h.render(vdom.H("div", vdom.Class("ignored")))
	h.render(vdom.H("div"))
	assert.Equal(t, []html.Attribute{{Key: "id", Val: "owned-by-parent"}}, h.root.Attr)
}

func TestRerenderSameTreeIsEmpty(t *testing.T) {
	build := func() *vdom.VNode {
		return vdom.H("div",
			vdom.H("p", vdom.Class("x"), vdom.StyleProps(vdom.Style{"color": "red"}), "text"),
			list("a", "b", "c"),
		)
	}
	h := newHarness(t, "div")
	h.render(build())
	before := h.html()

	plan := h.render(build())
	assert.True(t, plan.Empty())
	assert.Equal(t, before, h.html())
}

func TestKeyedReorderPreservesIdentity(t *testing.T) {
	h := newHarness(t, "div")
	h.render(vdom.H("div", list("a", "b", "c", "d")))
	ul := h.root.FirstChild
	byText := map[string]*html.Node{}
	for _, li := range children(ul) {
		byText[li.FirstChild.Data] = li
	}

	plan := h.render(vdom.H("div", list("d", "a", "c", "b")))
	assert.Equal(t, `<ul><li>d</li><li>a</li><li>c</li><li>b</li></ul>`, h.html())

	stats := plan.Stats()
	assert.Zero(t, stats.Creates)
	assert.Zero(t, stats.Removes)
	assert.Equal(t, 2, stats.Moves)
	for _, li := range children(ul) {
		assert.Same(t, byText[li.FirstChild.Data], li)
	}
}

func TestKeyedReverse(t *testing.T) {
	h := newHarness(t, "div")
	h.render(vdom.H("div", list("1", "2", "3", "4", "5")))
	plan := h.render(vdom.H("div", list("5", "4", "3", "2", "1")))
	assert.Equal(t, `<ul><li>5</li><li>4</li><li>3</li><li>2</li><li>1</li></ul>`, h.html())
	assert.Zero(t, plan.Stats().Creates)
	assert.Zero(t, plan.Stats().Removes)
}

func TestKeyedInsertAndRemove(t *testing.T) {
	h := newHarness(t, "div")
	h.render(vdom.H("div", list("a", "b", "c")))
	plan := h.render(vdom.H("div", list("a", "x", "c")))
	assert.Equal(t, `<ul><li>a</li><li>x</li><li>c</li></ul>`, h.html())
	assert.Equal(t, 1, plan.Stats().Creates)
	assert.Equal(t, 1, plan.Stats().Removes)
}

func TestKeyedShuffleWithGrowth(t *testing.T) {
	h := newHarness(t, "div")
	h.render(vdom.H("div", list("a", "b", "c")))
	h.render(vdom.H("div", list("c", "e", "a", "f")))
	assert.Equal(t, `<ul><li>c</li><li>e</li><li>a</li><li>f</li></ul>`, h.html())
	h.render(vdom.H("div", list()))
	assert.Equal(t, `<ul></ul>`, h.html())
}

func TestDifferentKeysNeverMatch(t *testing.T) {
	h := newHarness(t, "div")
	h.render(vdom.H("div", vdom.H("p", vdom.Key("one"))))
	first := h.root.FirstChild
	plan := h.render(vdom.H("div", vdom.H("p", vdom.Key("two"))))
	assert.NotSame(t, first, h.root.FirstChild)
	assert.Equal(t, 1, plan.Stats().Creates)
	assert.Equal(t, 1, plan.Stats().Removes)
}

func TestTextUpdatedInPlace(t *testing.T) {
	h := newHarness(t, "div")
	h.render(vdom.H("div", vdom.H("p", "parent message")))
	txt := h.root.FirstChild.FirstChild

	plan := h.render(vdom.H("div", vdom.H("p", "change 1")))
	assert.Same(t, txt, h.root.FirstChild.FirstChild)
	assert.Equal(t, "change 1", txt.Data)
	require.Len(t, plan.Ops, 1)
	assert.Equal(t, OpSetText, plan.Ops[0].Kind)
}

func TestKindMismatchRecreates(t *testing.T) {
	h := newHarness(t, "div")
	h.render(vdom.H("div", "text"))
	plan := h.render(vdom.H("div", vdom.H("b")))
	assert.Equal(t, `<b></b>`, h.html())
	assert.Equal(t, 1, plan.Stats().Creates)
	assert.Equal(t, 1, plan.Stats().Removes)
}

func TestAttributeDiff(t *testing.T) {
	h := newHarness(t, "div")
	h.render(vdom.H("div", vdom.H("a",
		vdom.ID("x"),
		vdom.Prop("href", "/old"),
		vdom.Prop("disabled", true),
		vdom.StyleProps(vdom.Style{"color": "red", "margin": "0"}),
	)))

	plan := h.render(vdom.H("div", vdom.H("a",
		vdom.ID("x"),
		vdom.Prop("href", "/new"),
		vdom.Prop("disabled", false),
		vdom.Prop("tabindex", 2),
		vdom.StyleProps(vdom.Style{"color": "blue"}),
	)))
	assert.Equal(t, `<a href="/new" id="x" style="color: blue;" tabindex="2"></a>`, h.html())

	stats := plan.Stats()
	assert.Equal(t, 2, stats.SetAttrs)
	assert.Equal(t, 1, stats.RemoveAttrs)
	assert.Equal(t, 2, stats.SetStyles)
}

func TestStyleMapToString(t *testing.T) {
	h := newHarness(t, "div")
	h.render(vdom.H("div", vdom.H("p", vdom.StyleProps(vdom.Style{"color": "red"}))))
	h.render(vdom.H("div", vdom.H("p", vdom.Prop("style", "display: none"))))
	assert.Equal(t, `<p style="display: none"></p>`, h.html())
	h.render(vdom.H("div", vdom.H("p", vdom.StyleProps(vdom.Style{"top": "0"}))))
	assert.Equal(t, `<p style="top: 0;"></p>`, h.html())
}

func TestInvalidTreeFailsBeforeMutation(t *testing.T) {
	h := newHarness(t, "div")
	h.render(vdom.H("div", vdom.H("p", "keep")))
	before := h.html()

	_, err := Diff(h.refs, h.tree, vdom.H("div", &vdom.VNode{Kind: vdom.KindElement}))
	require.Error(t, err)
	assert.Equal(t, "E001", gerrors.CodeOf(err))
	assert.Equal(t, before, h.html())
}

func TestDiffRequiresRealizedRoot(t *testing.T) {
	_, err := Diff(Refs{}, vdom.H("div"), vdom.H("div"))
	assert.Equal(t, "E010", gerrors.CodeOf(err))

	_, err = Diff(Refs{}, nil, vdom.H("div"))
	assert.Equal(t, "E001", gerrors.CodeOf(err))
}

func TestDuplicateKeysWarn(t *testing.T) {
	h := newHarness(t, "div")
	h.render(vdom.H("div", list("a", "b", "b")))
	plan := h.render(vdom.H("div", list("c")))
	assert.Equal(t, `<ul><li>c</li></ul>`, h.html())
	require.Len(t, plan.Warnings, 1)
	assert.Equal(t, "E011", gerrors.CodeOf(plan.Warnings[0]))
}

func TestProjectedNodesMoveByIdentity(t *testing.T) {
	h := newHarness(t, "my-host")
	a := h.api.CreateElement("a")
	b := h.api.CreateElement("b")

	h.render(vdom.H("my-host", vdom.H("section", vdom.Projected(a), vdom.Projected(b))))
	assert.Equal(t, `<section><a></a><b></b></section>`, h.html())

	plan := h.render(vdom.H("my-host", vdom.H("section", vdom.Projected(a), vdom.Projected(b))))
	assert.True(t, plan.Empty())

	h.render(vdom.H("my-host",
		vdom.H("section", vdom.Projected(b)),
		vdom.H("aside", vdom.Projected(a)),
	))
	assert.Equal(t, `<section><b></b></section><aside><a></a></aside>`, h.html())

	// The section list claims a before the aside list lets go of it.
	h.render(vdom.H("my-host",
		vdom.H("aside", vdom.Projected(b)),
		vdom.H("section", vdom.Projected(a)),
	))
	assert.Equal(t, `<aside><b></b></aside><section><a></a></section>`, h.html())
	assert.Same(t, a, h.root.LastChild.FirstChild)
	assert.Same(t, b, h.root.FirstChild.FirstChild)
}

func TestSlotsAreFlattened(t *testing.T) {
	h := newHarness(t, "my-host")
	h.render(vdom.H("my-host", vdom.H("p", vdom.Slot(vdom.Text("fallback")))))
	assert.Equal(t, `<p>fallback</p>`, h.html())
}

type lightScope struct {
	api     dom.API
	host    *html.Node
	light   *LightList
	created []*html.Node
	freed   []*html.Node
}

func (s *lightScope) Container(n *html.Node) Container {
	if n == s.host {
		return s.light
	}
	return Element(s.api, n)
}

func (s *lightScope) Created(n *html.Node) {
	if n.Data == "x-host" {
		s.host = n
	}
	s.created = append(s.created, n)
}

func (s *lightScope) Released(n *html.Node) { s.freed = append(s.freed, n) }

func TestLightListContainer(t *testing.T) {
	h := newHarness(t, "div")
	scope := &lightScope{api: h.api}
	scope.light = NewLightList(h.api, nil)
	changes := 0
	scope.light.OnChange = func() { changes++ }
	h.scope = scope

	h.render(vdom.H("div", vdom.H("x-host", vdom.H("p", "one"), vdom.H("p", "two"))))
	assert.Equal(t, `<x-host></x-host>`, h.html())
	assert.Equal(t, 2, scope.light.Len())
	assert.Equal(t, 2, changes)
	assert.Len(t, scope.created, 3)

	// Place the light nodes the way the host's own render would.
	for _, n := range scope.light.Nodes() {
		h.api.AppendChild(scope.host, n)
	}
	first := scope.light.Nodes()[0]

	plan := h.render(vdom.H("div", vdom.H("x-host", vdom.H("p", "two"))))
	assert.Equal(t, 1, plan.Stats().SetTexts)
	assert.Equal(t, 1, scope.light.Len())
	assert.Same(t, first, scope.light.Nodes()[0])
	assert.Equal(t, `<x-host><p>two</p></x-host>`, h.html())
	require.Len(t, scope.freed, 1)
	assert.Nil(t, scope.freed[0].Parent)
}

func TestLightListOrdering(t *testing.T) {
	api := dom.NewHTML()
	a, b, c := api.CreateElement("a"), api.CreateElement("b"), api.CreateElement("c")
	l := NewLightList(api, []*html.Node{a, b})

	l.InsertBefore(c, a)
	assert.Equal(t, []*html.Node{c, a, b}, l.Nodes())
	l.InsertBefore(c, nil)
	assert.Equal(t, []*html.Node{a, b, c}, l.Nodes())
	assert.Same(t, b, l.NextSibling(a))
	assert.Nil(t, l.NextSibling(c))
	assert.True(t, l.Contains(b))

	parent := api.CreateElement("div")
	api.AppendChild(parent, b)
	l.Remove(b)
	assert.False(t, l.Contains(b))
	assert.Nil(t, b.Parent)
}

func TestStats(t *testing.T) {
	s := Stats{Creates: 1, Moves: 2, SetTexts: 3}
	assert.Equal(t, 6, s.Total())
	assert.Equal(t, map[string]int{"Create": 1, "Move": 2, "SetText": 3}, s.ByKind())

	var sum Stats
	sum.Add(s)
	sum.Add(s)
	assert.Equal(t, 12, sum.Total())
	assert.Equal(t, "RemoveAttr", OpRemoveAttr.String())
}
