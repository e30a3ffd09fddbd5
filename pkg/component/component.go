package component

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/loom/pkg/dom"
	"github.com/vango-dev/loom/pkg/reactive"
	"github.com/vango-dev/loom/pkg/tmpl"
)

// Init builds a component's content. It runs inside the instance's scope, so
// signals, derivations, bindings and cleanups it creates are torn down with
// the instance.
type Init[P any] func(h *Host, props P) (*dom.Node, error)

// Definition is a component constructor.
type Definition[P any] struct {
	name string
	tag  string
	init Init[P]
}

// Define registers name in the default registry and returns its constructor.
// It panics if name is invalid, which makes it suitable for package-level
// variables.
func Define[P any](name string, init Init[P]) *Definition[P] {
	d, err := DefineIn(defaultRegistry, name, init)
	if err != nil {
		panic(err)
	}
	return d
}

// DefineIn registers name in reg and returns its constructor.
func DefineIn[P any](reg *Registry, name string, init Init[P]) (*Definition[P], error) {
	tag, err := reg.Register(name)
	if err != nil {
		return nil, err
	}
	return &Definition[P]{name: name, tag: tag, init: init}, nil
}

// Name returns the human-readable component name.
func (d *Definition[P]) Name() string { return d.name }

// Tag returns the generated element tag.
func (d *Definition[P]) Tag() string { return d.tag }

// traceContext carries the span of the component being constructed so nested
// constructions become child spans.
var traceContext = reactive.NewContext[context.Context]("loom.trace")

// New creates an instance: an element with a closed shadow root, a scope
// forked under the scope active at the call site, and init's content mounted
// into the shadow root.
//
// If init fails or panics, the instance's scope is disposed before the error
// or panic reaches the caller.
func (d *Definition[P]) New(rt *reactive.Runtime, doc *dom.Document, props P) (*Instance, error) {
	parent, ok := traceContext.Lookup(rt)
	if !ok || parent == nil {
		parent = context.Background()
	}
	ctx, span := rt.Tracer().Start(parent, "component.New",
		trace.WithAttributes(
			attribute.String("loom.component", d.name),
			attribute.String("loom.tag", d.tag),
		),
	)
	defer span.End()

	el := doc.CreateElement(d.tag)
	root, err := el.AttachShadow(dom.ShadowClosed)
	if err != nil {
		return nil, err
	}

	h := &Host{rt: rt, doc: doc, el: el, root: root}
	scope, err := rt.Fork(rt.CurrentScope(), func() error {
		h.scope = rt.CurrentScope()
		return reactive.Provide(rt, traceContext, ctx, func() error {
			content, err := d.init(h, props)
			if err != nil {
				return err
			}
			if content == nil {
				return nil
			}
			return root.AppendChild(content)
		})
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("%s: %w", d.name, err)
	}

	span.SetAttributes(attribute.Int64("loom.scope", int64(scope.ID())))
	rt.Observer().ComponentCreated(d.name)
	rt.Logger().Debug("component created", "component", d.name, "tag", d.tag, "scope", scope.ID())

	return &Instance{Element: el, API: h.api, name: d.name, scope: scope}, nil
}

// Host is the initializer's handle on the instance being built.
type Host struct {
	rt    *reactive.Runtime
	doc   *dom.Document
	el    *dom.Node
	root  *dom.Node
	scope *reactive.Scope
	api   any
}

// Runtime returns the runtime the instance is built on.
func (h *Host) Runtime() *reactive.Runtime { return h.rt }

// Document returns the owning document.
func (h *Host) Document() *dom.Document { return h.doc }

// Element returns the custom element.
func (h *Host) Element() *dom.Node { return h.el }

// Root returns the closed shadow root content is mounted into.
func (h *Host) Root() *dom.Node { return h.root }

// Scope returns the instance's lifecycle scope.
func (h *Host) Scope() *reactive.Scope { return h.scope }

// Expose publishes an imperative API on the instance.
func (h *Host) Expose(api any) { h.api = api }

// OnCleanup registers fn on the instance's scope.
func (h *Host) OnCleanup(fn func()) { h.scope.OnCleanup(fn) }

// HTML executes a template in the instance's document.
func (h *Host) HTML(markup string, holes ...any) (*dom.Node, error) {
	return tmpl.HTML(h.rt, h.doc, markup, holes...)
}

// Emit dispatches a bubbling event with detail from the custom element.
func (h *Host) Emit(event string, detail any) bool {
	e := dom.NewEvent(event)
	e.Detail = detail
	return h.el.Dispatch(e)
}

// Instance is a constructed component.
type Instance struct {
	// Element is the custom element hosting the shadow root.
	Element *dom.Node

	// API is whatever the initializer passed to Expose, or nil.
	API any

	name  string
	scope *reactive.Scope
}

// Name returns the component name.
func (i *Instance) Name() string { return i.name }

// Tag returns the element tag.
func (i *Instance) Tag() string { return i.Element.Tag() }

// Node returns the element, so instances can be placed in template holes.
func (i *Instance) Node() *dom.Node { return i.Element }

// Scope returns the instance's lifecycle scope.
func (i *Instance) Scope() *reactive.Scope { return i.scope }

// Uninit tears down the instance's scope and every scope nested in it. The
// element stays where it is; removing it is up to the owner.
func (i *Instance) Uninit() error {
	return i.scope.Dispose()
}

// APIOf returns the instance's API as a T.
func APIOf[T any](i *Instance) (T, bool) {
	api, ok := i.API.(T)
	return api, ok
}
