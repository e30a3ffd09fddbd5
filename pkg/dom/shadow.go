package dom

import loomerr "github.com/vango-dev/loom/internal/errors"

// ShadowMode is the encapsulation mode of a shadow root.
type ShadowMode string

const (
	ShadowOpen   ShadowMode = "open"
	ShadowClosed ShadowMode = "closed"
)

// AttachShadow gives an element a shadow root. Only one shadow root may be
// attached per element; a second call fails with E402.
func (n *Node) AttachShadow(mode ShadowMode) (*Node, error) {
	if n.kind != KindElement {
		return nil, ErrHierarchy
	}
	if n.shadow != nil {
		return nil, loomerr.New("E402").WithDetailf("<%s> already has a %s shadow root", n.tag, n.shadowMode)
	}
	root := n.doc.newNode(KindShadowRoot)
	root.host = n
	n.shadow = root
	n.shadowMode = mode
	return root, nil
}

// ShadowRoot returns an open shadow root. Closed roots are only reachable
// through the value AttachShadow returned.
func (n *Node) ShadowRoot() *Node {
	if n.shadowMode == ShadowOpen {
		return n.shadow
	}
	return nil
}

// HasShadowRoot reports whether a shadow root of either mode is attached.
func (n *Node) HasShadowRoot() bool {
	return n.shadow != nil
}

// Host returns the element a shadow root is attached to.
func (n *Node) Host() *Node {
	return n.host
}
