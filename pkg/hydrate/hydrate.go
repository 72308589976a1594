package hydrate

import (
	"context"
	stderrors "errors"
	"log/slog"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/html"

	"github.com/vango-dev/graft/internal/errors"
	"github.com/vango-dev/graft/pkg/component"
	"github.com/vango-dev/graft/pkg/dom"
	"github.com/vango-dev/graft/pkg/host"
	"github.com/vango-dev/graft/pkg/patch"
	"github.com/vango-dev/graft/pkg/telemetry"
)

// Defaults applied by HTML when the corresponding option is empty.
const (
	DefaultHydratedClass = "hydrated"
	DefaultDir           = "ltr"
)

// Options configures a hydration pass.
type Options struct {
	// HTML is the document to hydrate.
	HTML string

	// HydratedClass is added to every host. Defaults to "hydrated".
	HydratedClass string

	// Dir is written to the dir attribute of <html>. Defaults to "ltr".
	Dir string

	Logger  *slog.Logger
	Metrics *telemetry.Metrics
	Tracer  trace.Tracer
}

// Diagnostic is a non-fatal problem found during a pass.
type Diagnostic struct {
	Code    string `json:"code"`
	Level   string `json:"level"`
	Tag     string `json:"tag,omitempty"`
	Message string `json:"message"`
}

// ComponentUsage summarizes one component tag in a hydrated document.
// Depth is the deepest nesting of the tag below other hosts, starting at 1.
type ComponentUsage struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
	Depth int    `json:"depth"`
}

// Results is the outcome of a hydration pass.
type Results struct {
	HTML        string           `json:"html"`
	Diagnostics []Diagnostic     `json:"diagnostics"`
	Components  []ComponentUsage `json:"components"`

	// Stats counts the operations applied by every committed render.
	Stats patch.Stats `json:"stats"`
}

// HasErrors reports whether any diagnostic is at error level.
func (r *Results) HasErrors() bool {
	for _, d := range r.Diagnostics {
		if d.Level == "error" {
			return true
		}
	}
	return false
}

// HTML hydrates opts.HTML against reg. A document without any registered
// component is returned unchanged with a single E040 diagnostic. Components
// that fail to render are reported as E042 diagnostics and left as they
// are; the rest of the document is still marked.
func HTML(ctx context.Context, reg *component.Registry, opts Options) (res *Results, err error) {
	if opts.HydratedClass == "" {
		opts.HydratedClass = DefaultHydratedClass
	}
	if opts.Dir == "" {
		opts.Dir = DefaultDir
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default().With("component", "hydrate")
	}
	if opts.Tracer == nil {
		opts.Tracer = telemetry.Tracer()
	}

	ctx, span := telemetry.Start(ctx, opts.Tracer, "graft.hydrate",
		attribute.Int("graft.input_bytes", len(opts.HTML)),
	)
	start := time.Now()
	defer func() {
		opts.Metrics.ObserveHydration(time.Since(start), err)
		if res != nil {
			for _, d := range res.Diagnostics {
				opts.Metrics.AddDiagnostic(d.Code)
				opts.Logger.Debug("hydration diagnostic", "code", d.Code, "tag", d.Tag, "msg", d.Message)
			}
			span.SetAttributes(attribute.Int("graft.diagnostics", len(res.Diagnostics)))
		}
		telemetry.End(span, err)
	}()

	api := dom.NewHTML()
	doc, err := dom.Parse(opts.HTML)
	if err != nil {
		return nil, errors.Newf(errors.CategoryHydration, "parse document").Wrap(err)
	}

	res = &Results{HTML: opts.HTML}
	if !hasComponents(api, reg, doc) {
		res.Diagnostics = append(res.Diagnostics, diagnostic(errors.New("E040"), ""))
		return res, nil
	}

	rt := host.New(reg, api,
		host.WithLogger(opts.Logger),
		host.WithMetrics(opts.Metrics),
		host.WithTracer(opts.Tracer),
		host.WithCommitHook(func(_ *host.Element, plan *patch.Plan) {
			res.Stats.Add(plan.Stats())
		}),
	)
	if _, err := rt.Mount(ctx, doc); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		res.Diagnostics = append(res.Diagnostics, cycleDiagnostics(err)...)
		restore(api, rt)
	}

	marker := NewMarker(api)
	if err := marker.Mark(rt, doc); err != nil {
		return nil, err
	}

	if root := dom.FindTag(doc, "html"); root != nil {
		api.SetAttribute(root, "dir", opts.Dir)
		api.SetAttribute(root, AttrDocument, "")
	}
	for _, el := range marker.Hosts() {
		addClass(api, el.Node(), opts.HydratedClass)
	}

	out, err := dom.Render(doc)
	if err != nil {
		return nil, errors.Newf(errors.CategoryHydration, "serialize document").Wrap(err)
	}
	res.HTML = out
	res.Components = usage(rt, marker.Hosts())
	return res, nil
}

// restore puts the light children of hosts that never rendered back under
// their host.
func restore(api dom.API, rt *host.Runtime) {
	for _, el := range rt.Hosts() {
		if el.Tree() != nil {
			continue
		}
		for _, n := range el.Light() {
			api.AppendChild(el.Node(), n)
		}
	}
}

func hasComponents(api dom.API, reg *component.Registry, doc *html.Node) bool {
	return dom.Find(doc, func(n *html.Node) bool {
		return api.IsElement(n) && reg.Has(api.TagName(n))
	}) != nil
}

// cycleDiagnostics turns the joined error returned by Flush into one E042
// diagnostic per failed host.
func cycleDiagnostics(err error) []Diagnostic {
	var errs []error
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		errs = joined.Unwrap()
	} else {
		errs = []error{err}
	}

	out := make([]Diagnostic, 0, len(errs))
	for _, e := range errs {
		var tag string
		var ce *host.CycleError
		if stderrors.As(e, &ce) {
			tag = ce.Tag
		}
		out = append(out, diagnostic(errors.New("E042").Wrap(e), tag))
	}
	return out
}

func diagnostic(e *errors.Error, tag string) Diagnostic {
	level := "warn"
	if e.Code == "E042" {
		level = "error"
	}
	return Diagnostic{Code: e.Code, Level: level, Tag: tag, Message: e.Error()}
}

func addClass(api dom.API, n *html.Node, class string) {
	current, _ := api.GetAttribute(n, "class")
	for _, c := range strings.Fields(current) {
		if c == class {
			return
		}
	}
	if current = strings.TrimSpace(current); current != "" {
		class = current + " " + class
	}
	api.SetAttribute(n, "class", class)
}

// usage counts hosts per tag and records how deeply each tag nests inside
// other hosts.
func usage(rt *host.Runtime, hosts []*host.Element) []ComponentUsage {
	api := rt.API()
	byTag := make(map[string]*ComponentUsage)
	for _, el := range hosts {
		depth := 1
		for p := api.Parent(el.Node()); p != nil; p = api.Parent(p) {
			if _, ok := rt.Lookup(p); ok {
				depth++
			}
		}
		u, ok := byTag[el.Tag()]
		if !ok {
			u = &ComponentUsage{Tag: el.Tag()}
			byTag[el.Tag()] = u
		}
		u.Count++
		if depth > u.Depth {
			u.Depth = depth
		}
	}

	out := make([]ComponentUsage, 0, len(byTag))
	for _, u := range byTag {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Tag < out[j].Tag })
	return out
}
