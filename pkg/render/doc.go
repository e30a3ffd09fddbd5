// Package render provides the reactive rendering combinators If, Choice and
// Each.
//
// Every combinator returns a fragment holding two anchor comments. Mounted
// content always lives between the anchors, which travel with it when the
// fragment is spliced into a parent, so a combinator can be placed in a
// template hole like any other node:
//
//	list, err := render.Each(rt, doc, todos, func(t Todo) (*dom.Node, error) {
//	    return tmpl.HTML(rt, doc, `<li>${}</li>`, t.Title)
//	})
//	page, err := tmpl.HTML(rt, doc, `<ul>${}</ul>`, list)
//
// Each mounted subtree is a Mount: its nodes plus a scope forked under the
// scope that was current when the combinator was created. Combinators own
// their mounts explicitly and dispose them on replacement, on removal and
// when their own scope is torn down.
package render
