package host

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/html"

	"github.com/vango-dev/graft/internal/errors"
	"github.com/vango-dev/graft/pkg/component"
	"github.com/vango-dev/graft/pkg/dom"
	"github.com/vango-dev/graft/pkg/patch"
	"github.com/vango-dev/graft/pkg/slot"
	"github.com/vango-dev/graft/pkg/telemetry"
	"github.com/vango-dev/graft/pkg/vdom"
)

// CycleError reports a failed render cycle of one host.
type CycleError struct {
	Tag string
	Err error
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("render <%s>: %v", e.Tag, e.Err)
}

func (e *CycleError) Unwrap() error { return e.Err }

// CommitHook is called after a cycle's plan has been applied.
type CommitHook func(el *Element, plan *patch.Plan)

// Option configures a Runtime.
type Option func(*Runtime)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runtime) {
		r.logger = logger
	}
}

// WithMetrics records cycles into m.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(r *Runtime) {
		r.metrics = m
	}
}

// WithTracer sets the tracer used for render spans.
func WithTracer(t trace.Tracer) Option {
	return func(r *Runtime) {
		r.tracer = t
	}
}

// WithCommitHook registers fn to run after every committed cycle.
func WithCommitHook(fn CommitHook) Option {
	return func(r *Runtime) {
		r.hooks = append(r.hooks, fn)
	}
}

// Runtime owns the hosts of one document and their render queue.
type Runtime struct {
	api  dom.API
	reg  *component.Registry
	dist *slot.Distributor

	hosts map[*html.Node]*Element
	order []*Element
	queue []*Element

	flushing bool

	logger  *slog.Logger
	metrics *telemetry.Metrics
	tracer  trace.Tracer
	hooks   []CommitHook
}

// New returns a runtime resolving tags through reg and mutating the tree
// through api.
func New(reg *component.Registry, api dom.API, opts ...Option) *Runtime {
	r := &Runtime{
		api:   api,
		reg:   reg,
		dist:  slot.NewDistributor(api),
		hosts: make(map[*html.Node]*Element),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default().With("component", "host")
	}
	if r.tracer == nil {
		r.tracer = telemetry.Tracer()
	}
	return r
}

// API returns the real-tree API the runtime mutates through.
func (r *Runtime) API() dom.API { return r.api }

// Lookup returns the host anchored at n.
func (r *Runtime) Lookup(n *html.Node) (*Element, bool) {
	el, ok := r.hosts[n]
	return el, ok
}

// Hosts returns the attached hosts in connection order.
func (r *Runtime) Hosts() []*Element {
	out := make([]*Element, len(r.order))
	copy(out, r.order)
	return out
}

// Pending returns the number of queued cycles.
func (r *Runtime) Pending() int { return len(r.queue) }

// Connect finds every registered component element at or below root, in
// document order, captures its light children and requests its first
// render. Elements already connected are skipped.
func (r *Runtime) Connect(root *html.Node) []*Element {
	var found []*html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if r.api.IsElement(n) {
			if _, known := r.hosts[n]; !known && r.reg.Has(r.api.TagName(n)) {
				found = append(found, n)
			}
		}
		for c := r.api.FirstChild(n); c != nil; c = r.api.NextSibling(c) {
			walk(c)
		}
	}
	walk(root)

	connected := make([]*Element, 0, len(found))
	for _, n := range found {
		light := dom.ChildNodes(r.api, n)
		for _, c := range light {
			r.api.RemoveChild(n, c)
		}
		el := r.attach(n, light)
		connected = append(connected, el)
	}
	return connected
}

// attach creates the host for n and queues its first render.
func (r *Runtime) attach(n *html.Node, light []*html.Node) *Element {
	desc, _ := r.reg.Lookup(r.api.TagName(n))
	el := &Element{
		node:  n,
		desc:  desc,
		state: StatePending,
	}
	el.light = patch.NewLightList(r.api, light)
	el.light.OnChange = func() { r.Request(el) }

	el.instance = desc.Instantiate()
	el.state = StateLoading

	r.hosts[n] = el
	r.order = append(r.order, el)
	r.Request(el)
	return el
}

// Request queues a render cycle for el. Requests for detached hosts are
// ignored and duplicate requests coalesce.
func (r *Runtime) Request(el *Element) {
	if el == nil || el.state == StateDetached || el.queued {
		return
	}
	el.queued = true
	r.queue = append(r.queue, el)
}

// Flush drains the queue, running cycles in submission order. Cycles
// requested while flushing run in the same call. A failing cycle does not
// stop the others; all failures are joined into the returned error.
func (r *Runtime) Flush(ctx context.Context) error {
	if r.flushing {
		return nil
	}
	r.flushing = true
	defer func() { r.flushing = false }()

	var errs []error
	for len(r.queue) > 0 {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		el := r.queue[0]
		r.queue[0] = nil
		r.queue = r.queue[1:]
		el.queued = false

		if el.state == StateDetached {
			continue
		}
		if err := r.Render(ctx, el); err != nil {
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}

// Mount connects every host under root and flushes.
func (r *Runtime) Mount(ctx context.Context, root *html.Node) ([]*Element, error) {
	connected := r.Connect(root)
	return connected, r.Flush(ctx)
}

// Render runs one cycle for el immediately. A call for a host whose cycle
// is already running is queued instead. Detached hosts fail with E004.
func (r *Runtime) Render(ctx context.Context, el *Element) error {
	if el.state == StateDetached {
		return errors.New("E004").WithDetailf("<%s>", el.Tag())
	}
	if el.rendering {
		r.logger.Debug("render deferred", "tag", el.Tag(), "code", "E003")
		r.Request(el)
		return nil
	}

	el.rendering = true
	defer func() { el.rendering = false }()

	prev := el.state
	if prev == StateReady {
		el.state = StateUpdating
	}

	_, span := telemetry.Start(ctx, r.tracer, "graft.render",
		attribute.String("graft.tag", el.Tag()),
		attribute.Int("graft.renders", el.renders),
	)
	start := time.Now()

	plan, err := r.cycle(el)
	r.metrics.ObserveRender(el.Tag(), time.Since(start), err)
	if err != nil {
		el.state = prev
		telemetry.End(span, err)
		r.logger.Warn("render failed", "tag", el.Tag(), "err", err)
		return &CycleError{Tag: el.Tag(), Err: err}
	}

	stats := plan.Stats()
	span.SetAttributes(attribute.Int("graft.ops", stats.Total()))
	telemetry.End(span, nil)
	r.metrics.AddOps(stats.ByKind())

	if el.state != StateDetached {
		el.state = StateReady
	}
	el.renders++
	for _, hook := range r.hooks {
		hook(el, plan)
	}
	return nil
}

// cycle renders, distributes, diffs and applies. Everything before Apply is
// free of side effects on the real tree.
func (r *Runtime) cycle(el *Element) (*patch.Plan, error) {
	out, err := r.renderOutput(el)
	if err != nil {
		return nil, err
	}

	root := vdom.H(el.Tag(), out)
	resolved, res, err := r.dist.Distribute(el.light.Nodes(), root)
	if err != nil {
		return nil, err
	}

	var plan *patch.Plan
	if el.tree == nil {
		plan, err = patch.Realize(el.node, resolved)
	} else {
		plan, err = patch.Diff(el.refs, el.tree, resolved)
	}
	if err != nil {
		return nil, err
	}
	for _, w := range plan.Warnings {
		r.logger.Debug("patch warning", "tag", el.Tag(), "err", w)
	}

	if err := patch.Apply(r.api, plan, scope{r}); err != nil {
		return nil, err
	}

	for _, n := range res.Dropped {
		if p := r.api.Parent(n); p != nil {
			r.api.RemoveChild(p, n)
		}
	}
	r.metrics.AddDropped(el.Tag(), len(res.Dropped))

	el.tree, el.refs, el.result = resolved, plan.Refs, res
	return plan, nil
}

// renderOutput calls the descriptor, turning a panic into E005.
func (r *Runtime) renderOutput(el *Element) (out *vdom.VNode, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = errors.New("E005").WithDetailf("<%s>: %v", el.Tag(), p)
		}
	}()
	return el.desc.Render(el.instance), nil
}

// ensureHost attaches a host to an element created by a parent's cycle.
func (r *Runtime) ensureHost(n *html.Node) {
	if _, known := r.hosts[n]; known {
		return
	}
	if r.reg.Has(r.api.TagName(n)) {
		r.attach(n, nil)
	}
}

// Detach marks every host at or below n as detached, including hosts held
// in light lists that are not currently placed. Their retained render
// state is released and pending cycles are dropped.
func (r *Runtime) Detach(n *html.Node) {
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if el, ok := r.hosts[n]; ok {
			light := el.Light()
			r.release(el)
			for _, c := range light {
				walk(c)
			}
		}
		for c := r.api.FirstChild(n); c != nil; c = r.api.NextSibling(c) {
			walk(c)
		}
	}
	walk(n)
}

func (r *Runtime) release(el *Element) {
	if el.state == StateDetached {
		return
	}
	el.state = StateDetached
	el.tree, el.refs, el.result, el.instance = nil, nil, nil, nil
	delete(r.hosts, el.node)
	for i, other := range r.order {
		if other == el {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.logger.Debug("host detached", "tag", el.Tag())
}

// scope routes the children of hosts to their light lists.
type scope struct {
	r *Runtime
}

func (s scope) Container(n *html.Node) patch.Container {
	if el, ok := s.r.hosts[n]; ok {
		return el.light
	}
	return patch.Element(s.r.api, n)
}

func (s scope) Created(n *html.Node) { s.r.ensureHost(n) }

func (s scope) Released(n *html.Node) { s.r.Detach(n) }
