package dom

import (
	"slices"
	"strings"
)

// Document owns every node created through it and the observers of their
// mutations. A Document is not safe for concurrent use; all access happens on
// the goroutine that runs the reactive runtime.
type Document struct {
	seq       uint64
	body      *Node
	observers []*observer
	stats     Stats
}

// Stats counts structural work done on a document.
type Stats struct {
	Created  int `json:"created"`  // nodes created
	Inserted int `json:"inserted"` // nodes attached that had no parent
	Moved    int `json:"moved"`    // attached nodes re-inserted elsewhere
	Removed  int `json:"removed"`  // nodes detached by RemoveChild
}

type observer struct {
	fn        func(MutationRecord)
	cancelled bool
}

// NewDocument creates an empty document with a <body> element.
func NewDocument() *Document {
	d := &Document{}
	d.body = d.newNode(KindElement)
	d.body.tag = "body"
	d.stats = Stats{}
	return d
}

// Body returns the document body.
func (d *Document) Body() *Node {
	return d.body
}

func (d *Document) newNode(kind Kind) *Node {
	d.seq++
	d.stats.Created++
	return &Node{id: d.seq, kind: kind, doc: d}
}

// CreateElement creates a detached element. Tag names are lower-cased.
func (d *Document) CreateElement(tag string) *Node {
	n := d.newNode(KindElement)
	n.tag = strings.ToLower(tag)
	return n
}

// CreateTextNode creates a detached text node.
func (d *Document) CreateTextNode(s string) *Node {
	n := d.newNode(KindText)
	n.data = s
	return n
}

// CreateComment creates a detached comment node.
func (d *Document) CreateComment(s string) *Node {
	n := d.newNode(KindComment)
	n.data = s
	return n
}

// CreateFragment creates an empty fragment.
func (d *Document) CreateFragment() *Node {
	return d.newNode(KindFragment)
}

// Stats returns a copy of the document's counters.
func (d *Document) Stats() Stats {
	return d.stats
}

// ResetStats zeroes the document's counters.
func (d *Document) ResetStats() {
	d.stats = Stats{}
}

// Observe calls fn for every subsequent mutation until the returned cancel
// function is called.
func (d *Document) Observe(fn func(MutationRecord)) (cancel func()) {
	o := &observer{fn: fn}
	d.observers = append(d.observers, o)
	return func() {
		if o.cancelled {
			return
		}
		o.cancelled = true
		if i := slices.Index(d.observers, o); i >= 0 {
			d.observers = slices.Delete(d.observers, i, i+1)
		}
	}
}

func (d *Document) emit(rec MutationRecord) {
	if len(d.observers) == 0 {
		return
	}
	for _, o := range slices.Clone(d.observers) {
		if !o.cancelled {
			o.fn(rec)
		}
	}
}
