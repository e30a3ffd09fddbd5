// Package loomtest provides testing helpers for loom components and
// templates.
//
// # Quick Start
//
//	func TestCounter(t *testing.T) {
//	    env := loomtest.NewEnv(t)
//	    node := env.Mount(func() (*dom.Node, error) {
//	        inst, err := Counter.New(env.RT, env.Doc, 1)
//	        return inst.Node(), err
//	    })
//	    loomtest.ExpectContains(t, node, "1")
//	}
//
// Mount runs inside a lifecycle scope that is torn down when the test ends,
// so subscriptions never leak between tests.
//
// # Render Assertions
//
// Assert on serialized markup. Shadow roots serialize as declarative
// <template shadowrootmode> children:
//
//	loomtest.ExpectContains(t, node, "<li>milk</li>")
//	loomtest.ExpectNotContains(t, node, "Empty")
//	loomtest.ExpectElement(t, node, "button")
package loomtest
