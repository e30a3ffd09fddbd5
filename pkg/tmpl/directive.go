package tmpl

import (
	"sort"
	"strings"

	"github.com/vango-dev/loom/pkg/dom"
)

// Props maps property, attribute and event-handler names to plain values or
// signals. See Set for how each key is written.
type Props map[string]any

// Directive is a set of bindings applied to the element whose attribute-name
// hole it fills.
type Directive struct {
	props Props
}

// Set returns a directive that binds each entry of p to the element it
// annotates. Keys are applied in sorted order:
//
//   - "on<event>" fills the event handler slot; values may be
//     func(*dom.Event), func(), dom.Handler or nil.
//   - ".name" always writes the property name.
//   - boolean properties such as disabled or checked, "value", and any key
//     whose value is a bool write a property.
//   - anything else writes an attribute; nil removes it.
//
// A signal value re-writes its slot after every change for the lifetime of the
// current scope.
func Set(p Props) Directive {
	return Directive{props: p}
}

func (d Directive) keys() []string {
	keys := make([]string, 0, len(d.props))
	for k := range d.props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Ref is called with the element once it has been built.
type Ref func(*dom.Node)

// Capture returns a Ref that stores the element in *dst.
func Capture(dst **dom.Node) Ref {
	return func(n *dom.Node) { *dst = n }
}

// slot returns the writer for one binding key on el.
func slot(el *dom.Node, key string) func(any) error {
	switch {
	case len(key) > 2 && strings.HasPrefix(key, "on"):
		event := key[2:]
		return func(v any) error {
			h, ok := handlerOf(v)
			if !ok {
				return invalidValue(v, "an event handler for "+key)
			}
			el.SetHandler(event, h)
			return nil
		}

	case strings.HasPrefix(key, ".") && len(key) > 1:
		name := key[1:]
		return func(v any) error {
			el.SetProperty(name, v)
			return nil
		}

	case dom.IsBooleanProperty(key) || key == "value":
		return func(v any) error {
			el.SetProperty(key, v)
			return nil
		}
	}

	return func(v any) error {
		switch x := v.(type) {
		case nil:
			el.RemoveAttribute(key)
		case bool:
			el.SetProperty(key, x)
		default:
			s, ok := textOf(v)
			if !ok {
				return invalidValue(v, "the value of attribute "+key)
			}
			el.SetAttribute(key, s)
		}
		return nil
	}
}

func handlerOf(v any) (dom.Handler, bool) {
	switch h := v.(type) {
	case nil:
		return nil, true
	case dom.Handler:
		return h, true
	case func(*dom.Event):
		return h, true
	case func():
		return func(*dom.Event) { h() }, true
	}
	return nil, false
}
