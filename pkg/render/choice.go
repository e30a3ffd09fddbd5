package render

import (
	"errors"

	"go.opentelemetry.io/otel/attribute"

	"github.com/vango-dev/loom/pkg/dom"
	"github.com/vango-dev/loom/pkg/reactive"
)

// Branch is one alternative of a Choice.
type Branch struct {
	When   *reactive.Signal[bool]
	Render func() (*dom.Node, error)
}

// If mounts fn's subtree while cond is true. Every rising edge calls fn again
// in a fresh scope, so no local state survives a false period; every falling
// edge disposes the subtree.
func If(rt *reactive.Runtime, doc *dom.Document, cond *reactive.Signal[bool], fn func() (*dom.Node, error)) (*dom.Node, error) {
	return choose(rt, doc, "if", []Branch{{When: cond, Render: fn}})
}

// Choice mounts the first branch, in list order, whose condition is true, and
// nothing when none is. When a different branch becomes the winner the current
// one is disposed before the new one mounts, so at most one branch is ever
// attached. The mounted branch is kept while it stays the winner.
func Choice(rt *reactive.Runtime, doc *dom.Document, branches []Branch) (*dom.Node, error) {
	return choose(rt, doc, "choice", branches)
}

type chooser struct {
	rt       *reactive.Runtime
	kind     string
	owner    *reactive.Scope
	region   *region
	branches []Branch
	active   int
	current  *Mount
}

func choose(rt *reactive.Runtime, doc *dom.Document, kind string, branches []Branch) (*dom.Node, error) {
	owner := rt.RequireScope(kind)
	frag, reg := newRegion(doc, kind)
	c := &chooser{
		rt:       rt,
		kind:     kind,
		owner:    owner,
		region:   reg,
		branches: branches,
		active:   -1,
	}

	if err := c.update(); err != nil {
		return nil, err
	}

	sources := make([]reactive.Source, 0, len(branches))
	for _, b := range branches {
		if b.When != nil {
			sources = append(sources, b.When)
		}
	}
	reactive.Watch(rt, kind, sources, c.update)
	owner.OnCleanup(func() {
		if c.current != nil {
			c.current.Dispose()
			c.current = nil
		}
	})
	return frag, nil
}

// winner returns the index of the first true branch, or -1.
func (c *chooser) winner() int {
	for i, b := range c.branches {
		if b.When != nil && b.When.Get() {
			return i
		}
	}
	return -1
}

func (c *chooser) update() error {
	next := c.winner()
	if next == c.active {
		return nil
	}

	span := reconcileSpan(c.rt, c.kind)
	defer span.End()

	var errs []error
	created, removed := 0, 0
	if c.current != nil {
		if err := c.current.Dispose(); err != nil {
			errs = append(errs, err)
		}
		c.current = nil
		c.active = -1
		removed++
	}

	if next >= 0 {
		m, err := NewMount(c.rt, c.owner, c.branches[next].Render)
		if err != nil {
			errs = append(errs, err)
		} else {
			if err := c.region.place(m, c.region.end); err != nil {
				errs = append(errs, err)
			}
			c.current = m
			c.active = next
			created++
		}
	}

	span.SetAttributes(attribute.Int("loom.branch", c.active))
	c.rt.Observer().Reconciled(c.kind, created, 0, removed)
	c.rt.Logger().Debug("branch switched", "combinator", c.kind, "branch", c.active)
	return errors.Join(errs...)
}
