// Package component turns initializer functions into component constructors.
//
// Each instance is a custom element with a closed shadow root and a private
// lifecycle scope. The scope is a child of the scope active where the
// instance was constructed, so tearing down a parent cascades to every
// component it created:
//
//	var Counter = component.Define("Counter", func(h *component.Host, start int) (*dom.Node, error) {
//	    count := reactive.NewSignal(start)
//	    h.Expose(count)
//	    return h.HTML(`<button ${}>${}</button>`,
//	        tmpl.Set(tmpl.Props{"onclick": func() { count.Update(func(n int) int { return n + 1 }) }}),
//	        count,
//	    )
//	})
//
//	inst, err := Counter.New(rt, doc, 0)
//	defer inst.Uninit()
//
// Element tags are generated by a Registry from the component name plus a
// hash suffix, so callers never pick globally unique names themselves.
// Instances never tear themselves down; their owner calls Uninit.
package component
