package component

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gerrors "github.com/vango-dev/graft/internal/errors"
	"github.com/vango-dev/graft/pkg/vdom"
)

func TestValidTag(t *testing.T) {
	tests := []struct {
		tag  string
		want bool
	}{
		{"my-cmp", true},
		{"ion-test", true},
		{"x-1.2_b", true},
		{"div", false},
		{"", false},
		{"-lead", false},
		{"1-abc", false},
		{"My-Cmp", false},
		{"my cmp", false},
	}
	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidTag(tt.tag))
		})
	}
}

func TestRegistryRegisterLookup(t *testing.T) {
	reg := NewRegistry()
	d := Func("My-Card", func() *vdom.VNode { return vdom.H("div") })
	require.NoError(t, reg.Register(d))
	assert.Equal(t, "my-card", d.Tag)

	got, ok := reg.Lookup("my-card")
	require.True(t, ok)
	assert.Same(t, d, got)
	assert.True(t, reg.Has("my-card"))
	assert.False(t, reg.Has("other-card"))
	assert.Equal(t, 1, reg.Len())
}

func TestRegistryRejects(t *testing.T) {
	render := func() *vdom.VNode { return nil }

	t.Run("invalid tag", func(t *testing.T) {
		err := NewRegistry().Register(Func("div", render))
		require.Error(t, err)
		assert.Equal(t, "E020", gerrors.CodeOf(err))
	})

	t.Run("no render", func(t *testing.T) {
		err := NewRegistry().Register(&Descriptor{Tag: "a-b"})
		assert.True(t, errors.Is(err, gerrors.New("E020")))
	})

	t.Run("duplicate", func(t *testing.T) {
		reg := NewRegistry()
		require.NoError(t, reg.Register(Func("a-b", render)))
		err := reg.Register(Func("a-b", render))
		assert.Equal(t, "E020", gerrors.CodeOf(err))
	})

	t.Run("frozen", func(t *testing.T) {
		reg := NewRegistry()
		reg.Freeze()
		assert.True(t, reg.Frozen())
		err := reg.Register(Func("a-b", render))
		assert.Equal(t, "E020", gerrors.CodeOf(err))
		assert.Zero(t, reg.Len())
	})

	t.Run("must register panics", func(t *testing.T) {
		assert.Panics(t, func() { NewRegistry().MustRegister(nil) })
	})
}

func TestRegistryTagsSorted(t *testing.T) {
	reg := NewRegistry()
	for _, tag := range []string{"z-a", "a-z", "m-m"} {
		reg.MustRegister(Func(tag, func() *vdom.VNode { return nil }))
	}
	assert.Equal(t, []string{"a-z", "m-m", "z-a"}, reg.Tags())
}

func TestDescriptorInstantiate(t *testing.T) {
	type state struct{ n int }
	d := &Descriptor{
		Tag:    "a-b",
		New:    func() any { return &state{n: 1} },
		Render: func(any) *vdom.VNode { return nil },
	}
	s1 := d.Instantiate().(*state)
	s2 := d.Instantiate().(*state)
	assert.NotSame(t, s1, s2)
	assert.Nil(t, Func("a-b", func() *vdom.VNode { return nil }).Instantiate())
}

func TestFlags(t *testing.T) {
	assert.Equal(t, "none", Flags(0).String())
	assert.Equal(t, "slots|named-slots", (HasSlots | HasNamedSlots).String())
	assert.True(t, (HasSlots | Scoped).Has(Scoped))
	assert.False(t, HasSlots.Has(HasNamedSlots))

	tree := vdom.H("div", vdom.Slot(), vdom.H("p", vdom.Slot(vdom.Name("end"))))
	assert.Equal(t, HasSlots|HasNamedSlots, InferFlags(tree))
	assert.Equal(t, Flags(0), InferFlags(vdom.H("div")))
}

func TestTemplate(t *testing.T) {
	d, err := Template("cmp-a", `
		<header><slot name="start"></slot></header>
		<main class="body"><slot>fallback</slot></main>
		<!-- ignored -->
	`)
	require.NoError(t, err)
	assert.Equal(t, HasSlots|HasNamedSlots, d.Flags)

	out := d.Render(nil)
	require.NotNil(t, out)
	assert.Equal(t, vdom.KindFragment, out.Kind)
	require.Len(t, out.Children, 2)

	header := out.Children[0]
	assert.Equal(t, "header", header.Tag)
	require.Len(t, header.Children, 1)
	assert.Equal(t, vdom.KindSlot, header.Children[0].Kind)
	assert.Equal(t, "start", header.Children[0].InsertionName())

	main := out.Children[1]
	assert.Equal(t, "body", main.Props["class"])
	def := main.Children[0]
	assert.Equal(t, vdom.KindSlot, def.Kind)
	assert.Equal(t, "", def.InsertionName())
	require.Len(t, def.Children, 1)
	assert.Equal(t, "fallback", def.Children[0].Text)
}

func TestTemplateRendersFreshTrees(t *testing.T) {
	d, err := Template("cmp-a", `<p>x</p>`)
	require.NoError(t, err)
	a := d.Render(nil)
	b := d.Render(nil)
	assert.NotSame(t, a, b)
	assert.NotSame(t, a.Children[0], b.Children[0])
}

func TestTemplateKeyAttribute(t *testing.T) {
	d, err := Template("cmp-a", `<li key="k1">one</li>`)
	require.NoError(t, err)
	li := d.Render(nil).Children[0]
	assert.Equal(t, "k1", li.Key)
	_, hasKey := li.Props["key"]
	assert.False(t, hasKey)
}
