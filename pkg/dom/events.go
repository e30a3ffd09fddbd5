package dom

import "strings"

// Handler handles a dispatched event.
type Handler func(*Event)

// Event is a dispatched DOM event.
type Event struct {
	// Type is the event name without the "on" prefix, e.g. "click".
	Type string

	// Target is the node the event was dispatched on, retargeted to the
	// shadow host once the event leaves a shadow tree.
	Target *Node

	// CurrentTarget is the node whose handler is running.
	CurrentTarget *Node

	// Detail carries an arbitrary payload.
	Detail any

	// Bubbles controls propagation to ancestors.
	Bubbles bool

	stopped   bool
	prevented bool
}

// NewEvent creates a bubbling event.
func NewEvent(typ string) *Event {
	return &Event{Type: eventName(typ), Bubbles: true}
}

// StopPropagation prevents the event from reaching further ancestors.
func (e *Event) StopPropagation() { e.stopped = true }

// PreventDefault marks the event's default action as cancelled.
func (e *Event) PreventDefault() { e.prevented = true }

// DefaultPrevented reports whether PreventDefault was called.
func (e *Event) DefaultPrevented() bool { return e.prevented }

// eventName normalizes "onclick" and "click" to "click".
func eventName(s string) string {
	s = strings.ToLower(s)
	return strings.TrimPrefix(s, "on")
}

// SetHandler fills the handler slot for event, replacing any previous handler.
// A nil handler clears the slot. Both "click" and "onclick" name the same slot.
func (n *Node) SetHandler(event string, h Handler) {
	name := eventName(event)
	if h == nil {
		if _, ok := n.handlers[name]; !ok {
			return
		}
		delete(n.handlers, name)
	} else {
		if n.handlers == nil {
			n.handlers = make(map[string]Handler)
		}
		n.handlers[name] = h
	}
	n.doc.emit(MutationRecord{Type: MutationProperty, Target: n, Name: "on" + name, Value: h})
}

// Handler returns the handler in the slot for event, or nil.
func (n *Node) Handler(event string) Handler {
	return n.handlers[eventName(event)]
}

// Dispatch delivers e to n and, when it bubbles, to each ancestor, crossing
// from a shadow root to its host. It returns false when a handler called
// PreventDefault.
func (n *Node) Dispatch(e *Event) bool {
	e.Type = eventName(e.Type)
	e.Target = n
	for cur := n; cur != nil; {
		if h := cur.handlers[e.Type]; h != nil {
			e.CurrentTarget = cur
			h(e)
		}
		if e.stopped || !e.Bubbles {
			break
		}
		if cur.parent == nil && cur.kind == KindShadowRoot {
			cur = cur.host
			e.Target = cur
			continue
		}
		cur = cur.parent
	}
	e.CurrentTarget = nil
	return !e.prevented
}

// Click dispatches a bubbling click event on n.
func (n *Node) Click() bool {
	return n.Dispatch(NewEvent("click"))
}
