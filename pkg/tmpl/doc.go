// Package tmpl compiles HTML markup with interpolation holes into live DOM.
//
// A template is a markup string in which every ${} marks one hole. Holes are
// filled positionally by the values passed to Execute or HTML, and each value
// is classified by where its hole sits and what it is at run time:
//
//	tmpl.HTML(rt, doc, `
//	    <button ${} class="btn ${}">${}</button>`,
//	    tmpl.Set(tmpl.Props{"onclick": inc, "disabled": busy}),
//	    variant,
//	    count,
//	)
//
// In content position a *dom.Node is spliced in, a signal becomes a text node
// kept in sync, and primitives become text. In attribute-name position a Set
// directive applies bindings and a func(*dom.Node) receives the element once
// it is built. In attribute-value position the attribute is re-written
// whenever a dynamic part changes.
//
// Dynamic bindings live as long as the lifecycle scope that was current when
// the template executed. Executing a template with a signal and no active
// scope panics with E102.
//
// The static parse of a markup string is cached; every execution still builds
// a fresh DOM subtree.
package tmpl
