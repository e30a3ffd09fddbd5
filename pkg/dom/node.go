package dom

import (
	"errors"
	"slices"
	"strings"
)

// Kind is the node type discriminator.
type Kind uint8

const (
	KindElement    Kind = iota // <div>, <button>, etc.
	KindText                   // Character data
	KindComment                // <!-- ... -->, used as anchors
	KindFragment               // Detached grouping container
	KindShadowRoot             // Root of an element's shadow tree
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	case KindComment:
		return "Comment"
	case KindFragment:
		return "Fragment"
	case KindShadowRoot:
		return "ShadowRoot"
	default:
		return "Unknown"
	}
}

var (
	// ErrHierarchy is returned when an insertion would produce an invalid tree.
	ErrHierarchy = errors.New("dom: hierarchy request error")

	// ErrNotFound is returned when a reference node is not a child of the
	// node being modified.
	ErrNotFound = errors.New("dom: node not found")
)

// Node is a node in a Document.
type Node struct {
	id   uint64
	kind Kind
	doc  *Document

	tag  string // elements
	data string // text and comments

	parent   *Node
	children []*Node

	attrs    []Attr
	props    map[string]any
	handlers map[string]Handler

	shadow     *Node
	shadowMode ShadowMode
	host       *Node // shadow roots only
}

// ID returns the node's document-unique identifier.
func (n *Node) ID() uint64 { return n.id }

// Kind returns the node type.
func (n *Node) Kind() Kind { return n.kind }

// Tag returns the lower-case tag name of an element, or "" for other kinds.
func (n *Node) Tag() string { return n.tag }

// Document returns the owning document.
func (n *Node) Document() *Document { return n.doc }

// Parent returns the parent node, or nil when detached. A shadow root has no
// parent; see Host.
func (n *Node) Parent() *Node { return n.parent }

// Children returns a copy of the child list.
func (n *Node) Children() []*Node { return slices.Clone(n.children) }

// ChildCount returns the number of children.
func (n *Node) ChildCount() int { return len(n.children) }

// FirstChild returns the first child, or nil.
func (n *Node) FirstChild() *Node {
	if len(n.children) == 0 {
		return nil
	}
	return n.children[0]
}

// LastChild returns the last child, or nil.
func (n *Node) LastChild() *Node {
	if len(n.children) == 0 {
		return nil
	}
	return n.children[len(n.children)-1]
}

// NextSibling returns the following sibling, or nil.
func (n *Node) NextSibling() *Node {
	if n.parent == nil {
		return nil
	}
	i := n.parent.indexOf(n)
	if i+1 < len(n.parent.children) {
		return n.parent.children[i+1]
	}
	return nil
}

// PreviousSibling returns the preceding sibling, or nil.
func (n *Node) PreviousSibling() *Node {
	if n.parent == nil {
		return nil
	}
	if i := n.parent.indexOf(n); i > 0 {
		return n.parent.children[i-1]
	}
	return nil
}

func (n *Node) indexOf(child *Node) int {
	return slices.Index(n.children, child)
}

// Contains reports whether other is n or one of its descendants. Shadow trees
// are not searched.
func (n *Node) Contains(other *Node) bool {
	for p := other; p != nil; p = p.parent {
		if p == n {
			return true
		}
	}
	return false
}

// IsConnected reports whether the node is reachable from the document body,
// crossing shadow boundaries.
func (n *Node) IsConnected() bool {
	for p := n; p != nil; {
		if p == n.doc.body {
			return true
		}
		if p.parent == nil && p.kind == KindShadowRoot {
			p = p.host
			continue
		}
		p = p.parent
	}
	return false
}

// AppendChild inserts child as the last child of n.
func (n *Node) AppendChild(child *Node) error {
	return n.InsertBefore(child, nil)
}

// InsertBefore inserts child before ref, or at the end when ref is nil.
//
// An attached child is moved. A fragment child is emptied into n in order.
func (n *Node) InsertBefore(child, ref *Node) error {
	if err := n.checkInsert(child, ref); err != nil {
		return err
	}
	if child == ref {
		return nil
	}

	if child.kind == KindFragment {
		moved := slices.Clone(child.children)
		for _, c := range moved {
			child.detach()
			n.insertAt(c, ref)
		}
		if len(moved) > 0 {
			child.doc.stats.Inserted += len(moved)
			n.doc.emit(MutationRecord{Type: MutationChildList, Target: n, Added: moved})
		}
		return nil
	}

	oldParent := child.parent
	if oldParent != nil {
		oldParent.removeAt(oldParent.indexOf(child))
	}
	n.insertAt(child, ref)

	if oldParent != nil {
		n.doc.stats.Moved++
		n.doc.emit(MutationRecord{Type: MutationMove, Target: n, Added: []*Node{child}, OldParent: oldParent})
		return nil
	}
	n.doc.stats.Inserted++
	n.doc.emit(MutationRecord{Type: MutationChildList, Target: n, Added: []*Node{child}})
	return nil
}

func (n *Node) checkInsert(child, ref *Node) error {
	switch {
	case child == nil:
		return ErrHierarchy
	case n.kind == KindText || n.kind == KindComment:
		return ErrHierarchy
	case n.kind == KindElement && voidElements[n.tag]:
		return ErrHierarchy
	case child.kind == KindShadowRoot:
		return ErrHierarchy
	case child.doc != n.doc:
		return ErrHierarchy
	case child.Contains(n):
		return ErrHierarchy
	case ref != nil && ref.parent != n:
		return ErrNotFound
	}
	return nil
}

// insertAt links child under n before ref without recording anything.
func (n *Node) insertAt(child, ref *Node) {
	child.parent = n
	if ref == nil {
		n.children = append(n.children, child)
		return
	}
	n.children = slices.Insert(n.children, n.indexOf(ref), child)
}

func (n *Node) removeAt(i int) {
	n.children[i].parent = nil
	n.children = slices.Delete(n.children, i, i+1)
}

// detach removes the first child of a fragment during a splice.
func (n *Node) detach() {
	n.removeAt(0)
}

// RemoveChild detaches child from n.
func (n *Node) RemoveChild(child *Node) error {
	if child == nil || child.parent != n {
		return ErrNotFound
	}
	n.removeAt(n.indexOf(child))
	n.doc.stats.Removed++
	n.doc.emit(MutationRecord{Type: MutationChildList, Target: n, Removed: []*Node{child}})
	return nil
}

// Remove detaches n from its parent. It is a no-op on a detached node.
func (n *Node) Remove() {
	if n.parent != nil {
		_ = n.parent.RemoveChild(n)
	}
}

// Data returns the character data of a text or comment node.
func (n *Node) Data() string { return n.data }

// SetData replaces the character data of a text or comment node.
func (n *Node) SetData(s string) {
	if n.data == s {
		return
	}
	old := n.data
	n.data = s
	n.doc.emit(MutationRecord{Type: MutationCharacterData, Target: n, OldValue: old, Value: s})
}

// TextContent returns the concatenated text of n and its descendants.
// Comments contribute nothing unless n is itself a comment.
func (n *Node) TextContent() string {
	switch n.kind {
	case KindText, KindComment:
		return n.data
	}
	var b strings.Builder
	n.collectText(&b)
	return b.String()
}

func (n *Node) collectText(b *strings.Builder) {
	for _, c := range n.children {
		switch c.kind {
		case KindText:
			b.WriteString(c.data)
		case KindElement, KindFragment:
			c.collectText(b)
		}
	}
}

// Walk visits n and its descendants depth first, shadow trees before light
// children. Returning false from fn stops the walk.
func Walk(n *Node, fn func(*Node) bool) bool {
	if !fn(n) {
		return false
	}
	if n.shadow != nil && !Walk(n.shadow, fn) {
		return false
	}
	for _, c := range slices.Clone(n.children) {
		if !Walk(c, fn) {
			return false
		}
	}
	return true
}

// Find returns the first node under n, shadow trees included, for which match
// returns true.
func Find(n *Node, match func(*Node) bool) *Node {
	var found *Node
	Walk(n, func(c *Node) bool {
		if match(c) {
			found = c
			return false
		}
		return true
	})
	return found
}

// FindAll returns every node under n, shadow trees included, for which match
// returns true, in document order.
func FindAll(n *Node, match func(*Node) bool) []*Node {
	var found []*Node
	Walk(n, func(c *Node) bool {
		if match(c) {
			found = append(found, c)
		}
		return true
	})
	return found
}

// ByTag matches elements with the given tag.
func ByTag(tag string) func(*Node) bool {
	tag = strings.ToLower(tag)
	return func(n *Node) bool {
		return n.kind == KindElement && n.tag == tag
	}
}

// ByAttr matches elements whose attribute name equals value.
func ByAttr(name, value string) func(*Node) bool {
	return func(n *Node) bool {
		v, ok := n.GetAttribute(name)
		return ok && v == value
	}
}
