package tmpl

import (
	"fmt"
	"strconv"
	"strings"

	loomerr "github.com/vango-dev/loom/internal/errors"
	"github.com/vango-dev/loom/pkg/dom"
	"github.com/vango-dev/loom/pkg/reactive"
)

// HTML compiles markup and executes it with holes.
func HTML(rt *reactive.Runtime, doc *dom.Document, markup string, holes ...any) (*dom.Node, error) {
	t, err := Compile(markup)
	if err != nil {
		return nil, err
	}
	return t.Execute(rt, doc, holes...)
}

// MustHTML is like HTML but panics on error.
func MustHTML(rt *reactive.Runtime, doc *dom.Document, markup string, holes ...any) *dom.Node {
	n, err := HTML(rt, doc, markup, holes...)
	if err != nil {
		panic(err)
	}
	return n
}

// Execute builds a new DOM subtree from the template. When the result has
// exactly one top-level node it is returned directly; otherwise the nodes are
// returned in a fragment.
//
// Bindings to signals are owned by the current scope. If Execute fails, the
// bindings it already made stay registered on that scope until it is
// disposed.
func (t *Template) Execute(rt *reactive.Runtime, doc *dom.Document, holes ...any) (*dom.Node, error) {
	if len(holes) != len(t.holes) {
		return nil, loomerr.New("E204").
			WithDetailf("template has %d holes but %d values were given", len(t.holes), len(holes)).
			WithSource(t.name, t.markup, 1, 0)
	}

	b := &builder{t: t, rt: rt, doc: doc, holes: holes}
	for _, n := range t.roots {
		if err := b.build(nil, n); err != nil {
			return nil, err
		}
	}

	if len(b.top) == 1 {
		return b.top[0], nil
	}
	frag := doc.CreateFragment()
	for _, n := range b.top {
		if err := frag.AppendChild(n); err != nil {
			return nil, err
		}
	}
	return frag, nil
}

// Noder is implemented by values that render as a single node, such as
// component instances.
type Noder interface {
	Node() *dom.Node
}

type builder struct {
	t     *Template
	rt    *reactive.Runtime
	doc   *dom.Document
	holes []any

	// top collects the top-level nodes, which have no parent yet.
	top []*dom.Node
}

// place appends n to parent, or to the top-level nodes when parent is nil.
func (b *builder) place(parent, n *dom.Node) error {
	if n == nil {
		return dom.ErrHierarchy
	}
	if parent == nil {
		b.top = append(b.top, n)
		return nil
	}
	return parent.AppendChild(n)
}

// fail attaches the hole's location to err.
func (b *builder) fail(hole int, err error) error {
	h := b.t.holes[hole]
	e := loomerr.FromError(err, "E202")
	if e.Location == nil {
		e.WithSource(b.t.name, b.t.markup, h.Line, 0)
	}
	return e
}

func (b *builder) build(parent *dom.Node, n *tnode) error {
	switch n.kind {
	case staticText:
		return b.place(parent, b.doc.CreateTextNode(n.text))
	case staticComment:
		return b.place(parent, b.doc.CreateComment(n.text))
	case contentHole:
		if err := b.content(parent, b.holes[n.hole]); err != nil {
			return b.fail(n.hole, err)
		}
		return nil
	}

	el := b.doc.CreateElement(n.tag)
	for _, a := range n.attrs {
		if err := b.attr(el, a); err != nil {
			return err
		}
	}

	var refs []Ref
	for _, i := range n.directives {
		ref, err := b.directive(el, b.holes[i])
		if err != nil {
			return b.fail(i, err)
		}
		if ref != nil {
			refs = append(refs, ref)
		}
	}

	for _, c := range n.children {
		if err := b.build(el, c); err != nil {
			return err
		}
	}
	if err := b.place(parent, el); err != nil {
		return err
	}
	for _, ref := range refs {
		ref(el)
	}
	return nil
}

// content places a content-position value under parent.
func (b *builder) content(parent *dom.Node, v any) error {
	switch x := v.(type) {
	case nil:
		return nil
	case *dom.Node:
		return b.place(parent, x)
	case []*dom.Node:
		for _, n := range x {
			if err := b.place(parent, n); err != nil {
				return err
			}
		}
		return nil
	case Noder:
		return b.place(parent, x.Node())
	case Directive, Ref, func(*dom.Node):
		return invalidValue(v, "content")
	}

	r := reactive.Lift(v)
	if !r.IsDynamic() {
		s, ok := textOf(r.Get())
		if !ok {
			return invalidValue(v, "content")
		}
		return b.place(parent, b.doc.CreateTextNode(s))
	}

	text := b.doc.CreateTextNode("")
	if err := b.place(parent, text); err != nil {
		return err
	}
	return reactive.Bind(b.rt, r, func(v any) error {
		s, ok := textOf(v)
		if !ok {
			return invalidValue(v, "content")
		}
		text.SetData(s)
		return nil
	})
}

// directive applies an attribute-name position value. Refs are returned to be
// called once the element is complete.
func (b *builder) directive(el *dom.Node, v any) (Ref, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case Ref:
		return x, nil
	case func(*dom.Node):
		return x, nil
	case Directive:
		for _, key := range x.keys() {
			if err := reactive.Bind(b.rt, reactive.Lift(x.props[key]), slot(el, key)); err != nil {
				return nil, err
			}
		}
		return nil, nil
	}
	return nil, invalidValue(v, "an attribute-name position")
}

// attr writes an attribute whose value may contain holes.
func (b *builder) attr(el *dom.Node, a attrSpec) error {
	if len(a.parts) == 1 && a.parts[0].hole < 0 {
		el.SetAttribute(a.name, a.parts[0].text)
		return nil
	}

	// A value that is exactly one hole follows the Set slot rules, so
	// disabled="${}" or onclick="${}" behave like their Set equivalents.
	if len(a.parts) == 1 {
		i := a.parts[0].hole
		if err := reactive.Bind(b.rt, reactive.Lift(b.holes[i]), slot(el, a.name)); err != nil {
			return b.fail(i, err)
		}
		return nil
	}

	values := make([]reactive.Reactive[any], len(a.parts))
	var sources []reactive.Source
	for i, p := range a.parts {
		if p.hole < 0 {
			values[i] = reactive.Static[any](p.text)
			continue
		}
		values[i] = reactive.Lift(b.holes[p.hole])
		if values[i].IsDynamic() {
			sources = append(sources, values[i].Source())
		}
	}

	write := func() error {
		var sb strings.Builder
		for _, v := range values {
			s, ok := textOf(v.Get())
			if !ok {
				return invalidValue(v.Get(), "the value of attribute "+a.name)
			}
			sb.WriteString(s)
		}
		el.SetAttribute(a.name, sb.String())
		return nil
	}

	if err := write(); err != nil {
		return b.fail(firstHole(a.parts), err)
	}
	if len(sources) > 0 {
		reactive.Watch(b.rt, "attr", sources, write)
	}
	return nil
}

func firstHole(parts []part) int {
	for _, p := range parts {
		if p.hole >= 0 {
			return p.hole
		}
	}
	return 0
}

// textOf stringifies the values allowed as text.
func textOf(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", true
	case string:
		return x, true
	case bool:
		return strconv.FormatBool(x), true
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return fmt.Sprint(x), true
	case fmt.Stringer:
		return x.String(), true
	case error:
		return x.Error(), true
	}
	return "", false
}

func invalidValue(v any, where string) error {
	return loomerr.New("E202").WithDetailf("a %T cannot be used as %s", v, where)
}
