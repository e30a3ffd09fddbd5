package render

import (
	"context"
	"errors"
	"slices"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/loom/pkg/dom"
	"github.com/vango-dev/loom/pkg/reactive"
)

// Mount is one mounted subtree and the scope that owns it. The two always
// co-terminate: Dispose tears down the scope and detaches the nodes.
//
// A mount is a run of siblings bounded by the first and last node its render
// function returned. Nodes that a nested combinator later inserts inside that
// run belong to the mount too, so moving or detaching it takes them along.
type Mount struct {
	Scope *reactive.Scope

	first *dom.Node
	last  *dom.Node
}

// Nodes returns the mount's current sibling run, first to last.
func (m *Mount) Nodes() []*dom.Node {
	switch {
	case m.first == nil:
		return nil
	case m.first == m.last:
		return []*dom.Node{m.first}
	}
	parent := m.first.Parent()
	if parent != nil && m.last.Parent() == parent {
		kids := parent.Children()
		i, j := slices.Index(kids, m.first), slices.Index(kids, m.last)
		if i >= 0 && j >= i {
			return kids[i : j+1]
		}
	}
	return []*dom.Node{m.first, m.last}
}

// Dispose tears down the scope, then detaches the nodes. Calling it again is
// a no-op.
func (m *Mount) Dispose() error {
	err := m.Scope.Dispose()
	for _, n := range m.Nodes() {
		n.Remove()
	}
	return err
}

// NewMount runs fn in a new child scope of parent and records the nodes it
// returns. A fragment result contributes its children. If fn fails, the scope
// is disposed and the error returned.
func NewMount(rt *reactive.Runtime, parent *reactive.Scope, fn func() (*dom.Node, error)) (*Mount, error) {
	var node *dom.Node
	scope, err := rt.Fork(parent, func() error {
		n, err := fn()
		node = n
		return err
	})
	if err != nil {
		return nil, err
	}

	m := &Mount{Scope: scope}
	switch {
	case node == nil:
	case node.Kind() == dom.KindFragment:
		m.first, m.last = node.FirstChild(), node.LastChild()
	default:
		m.first, m.last = node, node
	}
	return m, nil
}

// region is the stretch of siblings between two anchor comments.
type region struct {
	start *dom.Node
	end   *dom.Node
}

// newRegion returns a fragment holding a fresh pair of anchors.
func newRegion(doc *dom.Document, kind string) (*dom.Node, *region) {
	frag := doc.CreateFragment()
	r := &region{start: doc.CreateComment(kind), end: doc.CreateComment("/" + kind)}
	// Appending fresh nodes to a fragment cannot fail.
	_ = frag.AppendChild(r.start)
	_ = frag.AppendChild(r.end)
	return frag, r
}

// place inserts m's sibling run, in order, before ref inside the region.
func (r *region) place(m *Mount, ref *dom.Node) error {
	parent := r.end.Parent()
	if parent == nil {
		return dom.ErrNotFound
	}
	var errs []error
	for _, n := range m.Nodes() {
		if err := parent.InsertBefore(n, ref); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// reconcileSpan starts a span for one reconciliation pass.
func reconcileSpan(rt *reactive.Runtime, kind string) trace.Span {
	_, span := rt.Tracer().Start(context.Background(), "render."+kind,
		trace.WithAttributes(attribute.String("loom.combinator", kind)),
	)
	return span
}
