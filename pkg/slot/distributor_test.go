package slot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	gerrors "github.com/vango-dev/graft/internal/errors"
	"github.com/vango-dev/graft/pkg/dom"
	"github.com/vango-dev/graft/pkg/vdom"
)

func light(t *testing.T, markup string) []*html.Node {
	t.Helper()
	nodes, err := dom.ParseFragment(markup)
	require.NoError(t, err)
	return nodes
}

func projected(v *vdom.VNode) []*html.Node {
	var out []*html.Node
	for _, c := range v.Children {
		if c.Kind == vdom.KindProjected {
			out = append(out, c.Ref)
		}
	}
	return out
}

func TestDefaultSlot(t *testing.T) {
	d := NewDistributor(dom.NewHTML())
	nodes := light(t, `<p>x</p>`)
	tree := vdom.H("my-host", vdom.Slot())

	resolved, res, err := d.Distribute(nodes, tree)
	require.NoError(t, err)
	assert.Equal(t, nodes, projected(resolved.Children[0]))
	assert.Empty(t, res.Dropped)
	require.Len(t, res.Bindings, 1)
	assert.Equal(t, "", res.Bindings[0].Name)

	// The input tree is left untouched.
	assert.Empty(t, tree.Children[0].Children)
}

func TestNamedSlotMultipleOccurrences(t *testing.T) {
	d := NewDistributor(dom.NewHTML())
	nodes := light(t, `<a slot="start">A</a><b slot="start">B</b>`)
	tree := vdom.H("div",
		vdom.H("section", vdom.Slot(vdom.Name("start"))),
		vdom.H("section", vdom.Slot(vdom.Name("start"))),
	)

	resolved, res, err := d.Distribute(nodes, tree)
	require.NoError(t, err)
	assert.Equal(t, []*html.Node{nodes[0]}, projected(resolved.Children[0].Children[0]))
	assert.Equal(t, []*html.Node{nodes[1]}, projected(resolved.Children[1].Children[0]))
	assert.Equal(t, nodes, res.Bound("start"))
}

func TestDuplicateNameLastTakesRest(t *testing.T) {
	d := NewDistributor(dom.NewHTML())
	nodes := light(t, ` <a slot="s"></a> <b slot="s"></b><i slot="s"></i>`)
	tree := vdom.H("div", vdom.Slot(vdom.Name("s")), vdom.Slot(vdom.Name("s")))

	resolved, _, err := d.Distribute(nodes, tree)
	require.NoError(t, err)

	// Whitespace text is default content, so the named pool is a, b, i.
	first := projected(resolved.Children[0])
	second := projected(resolved.Children[1])
	require.Len(t, first, 1)
	assert.Equal(t, "a", first[0].Data)
	require.Len(t, second, 2)
	assert.Equal(t, "b", second[0].Data)
	assert.Equal(t, "i", second[1].Data)
}

func TestDuplicateDefaultUnitKeepsLeadingWhitespace(t *testing.T) {
	d := NewDistributor(dom.NewHTML())
	nodes := light(t, ` <a></a> <b></b>`)
	tree := vdom.H("div", vdom.Slot(), vdom.Slot())

	resolved, res, err := d.Distribute(nodes, tree)
	require.NoError(t, err)
	assert.Equal(t, nodes[:2], projected(resolved.Children[0]))
	assert.Equal(t, nodes[2:], projected(resolved.Children[1]))
	assert.Empty(t, res.Dropped)
}

func TestTooFewChildrenForOccurrences(t *testing.T) {
	d := NewDistributor(dom.NewHTML())
	nodes := light(t, `<a slot="s"></a>`)
	tree := vdom.H("div",
		vdom.Slot(vdom.Name("s")),
		vdom.Slot(vdom.Name("s")),
		vdom.Slot(vdom.Name("s"), vdom.Text("fb")),
	)

	resolved, res, err := d.Distribute(nodes, tree)
	require.NoError(t, err)
	assert.Len(t, projected(resolved.Children[0]), 1)
	assert.Empty(t, resolved.Children[1].Children)
	require.Len(t, resolved.Children[2].Children, 1)
	assert.Equal(t, "fb", resolved.Children[2].Children[0].Text)
	assert.True(t, res.Bindings[2].Fallback)
	assert.False(t, res.Bindings[1].Fallback)
}

func TestFallbackOnlyWithoutContent(t *testing.T) {
	d := NewDistributor(dom.NewHTML())
	tree := vdom.H("div", vdom.Slot(vdom.Text("fallback")))

	resolved, _, err := d.Distribute(nil, tree)
	require.NoError(t, err)
	require.Len(t, resolved.Children[0].Children, 1)
	assert.Equal(t, vdom.KindText, resolved.Children[0].Children[0].Kind)

	nodes := light(t, `<span></span>`)
	resolved, _, err = d.Distribute(nodes, tree)
	require.NoError(t, err)
	assert.Equal(t, nodes, projected(resolved.Children[0]))
	assert.Len(t, resolved.Children[0].Children, 1)
}

func TestUnmatchedContentDropped(t *testing.T) {
	d := NewDistributor(dom.NewHTML())
	nodes := light(t, `<a slot="start"></a><b slot="end"></b>text`)
	tree := vdom.H("div", vdom.Slot(vdom.Name("start")))

	_, res, err := d.Distribute(nodes, tree)
	require.NoError(t, err)
	assert.Equal(t, []*html.Node{nodes[1], nodes[2]}, res.Dropped)
}

func TestNilTreeDropsEverything(t *testing.T) {
	d := NewDistributor(dom.NewHTML())
	nodes := light(t, `<a></a><b></b>`)

	resolved, res, err := d.Distribute(nodes, nil)
	require.NoError(t, err)
	assert.Nil(t, resolved)
	assert.Equal(t, nodes, res.Dropped)
}

func TestDepthFirstDeclarationOrder(t *testing.T) {
	d := NewDistributor(dom.NewHTML())
	nodes := light(t, `<a slot="s"></a><b slot="s"></b>`)
	// The nested occurrence is declared first in a depth-first walk.
	tree := vdom.H("div",
		vdom.H("div", vdom.H("div", vdom.Slot(vdom.Name("s")))),
		vdom.Slot(vdom.Name("s")),
	)

	resolved, _, err := d.Distribute(nodes, tree)
	require.NoError(t, err)
	deep := resolved.Children[0].Children[0].Children[0]
	assert.Equal(t, []*html.Node{nodes[0]}, projected(deep))
	assert.Equal(t, []*html.Node{nodes[1]}, projected(resolved.Children[1]))
}

func TestDistributeIsRepeatable(t *testing.T) {
	d := NewDistributor(dom.NewHTML())
	nodes := light(t, `<a slot="x"></a><b></b><c slot="y"></c>`)
	tree := vdom.H("div", vdom.Slot(vdom.Name("x")), vdom.Slot())

	first, r1, err := d.Distribute(nodes, tree)
	require.NoError(t, err)
	second, r2, err := d.Distribute(nodes, tree)
	require.NoError(t, err)

	assert.Equal(t, projected(first.Children[0]), projected(second.Children[0]))
	assert.Equal(t, projected(first.Children[1]), projected(second.Children[1]))
	assert.Equal(t, r1.Dropped, r2.Dropped)
}

func TestTextAlwaysTargetsDefault(t *testing.T) {
	d := NewDistributor(dom.NewHTML())
	api := dom.NewHTML()
	txt := api.CreateText("hi")
	tree := vdom.H("div", vdom.Slot(vdom.Name("named")), vdom.Slot())

	resolved, _, err := d.Distribute([]*html.Node{txt}, tree)
	require.NoError(t, err)
	assert.Empty(t, resolved.Children[0].Children)
	assert.Equal(t, []*html.Node{txt}, projected(resolved.Children[1]))
}

func TestInvalidSlotName(t *testing.T) {
	d := NewDistributor(dom.NewHTML())
	tree := vdom.H("div", vdom.Slot(vdom.Prop("name", 3)))

	_, _, err := d.Distribute(nil, tree)
	require.Error(t, err)
	assert.Equal(t, "E002", gerrors.CodeOf(err))
}

// readCounter counts text reads so tests can see the distributor going
// through the API it was given.
type readCounter struct {
	dom.API
	reads int
}

func (r *readCounter) TextContent(n *html.Node) string {
	r.reads++
	return r.API.TextContent(n)
}

func TestBlankTextIsReadThroughAPI(t *testing.T) {
	api := &readCounter{API: dom.NewHTML()}
	d := NewDistributor(api)
	nodes := light(t, ` <p>1</p> <p>2</p>`)
	require.Len(t, nodes, 4)
	tree := vdom.H("div", vdom.Slot(), vdom.Slot())

	resolved, _, err := d.Distribute(nodes, tree)
	require.NoError(t, err)
	assert.Equal(t, nodes[:2], projected(resolved.Children[0]))
	assert.Equal(t, nodes[2:], projected(resolved.Children[1]))
	assert.Positive(t, api.reads)
}
