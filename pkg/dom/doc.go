// Package dom provides the in-memory document the loom runtime renders into.
//
// The document is a small, single-threaded model of the browser DOM: elements,
// text, comments, fragments and shadow roots, with ordered attributes,
// properties, per-event handler slots and bubbling event dispatch. Every
// mutation is counted in Stats and reported to observers as a MutationRecord,
// which is how the inspector streams changes and how tests assert that
// reconciliation moved nodes instead of recreating them.
//
// # Tree Operations
//
// AppendChild and InsertBefore follow DOM semantics: inserting a node that is
// already attached moves it, and inserting a fragment moves its children and
// leaves the fragment empty.
//
//	doc := dom.NewDocument()
//	ul := doc.CreateElement("ul")
//	li := doc.CreateElement("li")
//	li.AppendChild(doc.CreateTextNode("one"))
//	ul.AppendChild(li)
//	doc.Body().AppendChild(ul)
//
// # Serialization
//
// Render, OuterHTML and InnerHTML serialize through golang.org/x/net/html.
// Shadow roots, including closed ones, are written as declarative
// <template shadowrootmode> children of their host.
package dom
