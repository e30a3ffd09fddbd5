package dom

import "slices"

// Attr is a single element attribute.
type Attr struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// reflectedBooleans are properties whose truthiness is mirrored by the
// presence of the attribute of the same name.
var reflectedBooleans = map[string]bool{
	"allowfullscreen": true,
	"async":           true,
	"autofocus":       true,
	"autoplay":        true,
	"checked":         true,
	"controls":        true,
	"default":         true,
	"defer":           true,
	"disabled":        true,
	"formnovalidate":  true,
	"hidden":          true,
	"inert":           true,
	"ismap":           true,
	"loop":            true,
	"multiple":        true,
	"muted":           true,
	"novalidate":      true,
	"open":            true,
	"playsinline":     true,
	"readonly":        true,
	"required":        true,
	"reversed":        true,
	"selected":        true,
}

// reflectedStrings maps string properties to the attribute they mirror.
var reflectedStrings = map[string]string{
	"id":        "id",
	"className": "class",
	"title":     "title",
	"href":      "href",
	"src":       "src",
	"name":      "name",
	"type":      "type",
}

// IsBooleanProperty reports whether name is a boolean property reflected as an
// attribute.
func IsBooleanProperty(name string) bool {
	return reflectedBooleans[name]
}

// Attrs returns a copy of the element's attributes in insertion order.
func (n *Node) Attrs() []Attr {
	return slices.Clone(n.attrs)
}

func (n *Node) attrIndex(name string) int {
	for i, a := range n.attrs {
		if a.Name == name {
			return i
		}
	}
	return -1
}

// GetAttribute returns the attribute value and whether it is present.
func (n *Node) GetAttribute(name string) (string, bool) {
	if i := n.attrIndex(name); i >= 0 {
		return n.attrs[i].Value, true
	}
	return "", false
}

// HasAttribute reports whether the attribute is present.
func (n *Node) HasAttribute(name string) bool {
	return n.attrIndex(name) >= 0
}

// SetAttribute sets an attribute, keeping the position of an existing one.
func (n *Node) SetAttribute(name, value string) {
	old, had := n.GetAttribute(name)
	if had && old == value {
		return
	}
	if i := n.attrIndex(name); i >= 0 {
		n.attrs[i].Value = value
	} else {
		n.attrs = append(n.attrs, Attr{Name: name, Value: value})
	}
	n.doc.emit(MutationRecord{Type: MutationAttributes, Target: n, Name: name, OldValue: old, Value: value})
}

// RemoveAttribute removes an attribute if present.
func (n *Node) RemoveAttribute(name string) {
	i := n.attrIndex(name)
	if i < 0 {
		return
	}
	old := n.attrs[i].Value
	n.attrs = slices.Delete(n.attrs, i, i+1)
	n.doc.emit(MutationRecord{Type: MutationAttributes, Target: n, Name: name, OldValue: old})
}

// Property returns a property value and whether it was ever set.
func (n *Node) Property(name string) (any, bool) {
	v, ok := n.props[name]
	return v, ok
}

// SetProperty sets a property. Boolean properties such as disabled or checked
// also add or remove their attribute; a few string properties such as id and
// className write their attribute.
func (n *Node) SetProperty(name string, value any) {
	if n.props == nil {
		n.props = make(map[string]any)
	}
	n.props[name] = value
	n.doc.emit(MutationRecord{Type: MutationProperty, Target: n, Name: name, Value: value})

	if reflectedBooleans[name] {
		if truthy(value) {
			n.SetAttribute(name, "")
		} else {
			n.RemoveAttribute(name)
		}
		return
	}
	if attr, ok := reflectedStrings[name]; ok {
		if s, ok := value.(string); ok {
			n.SetAttribute(attr, s)
		} else if value == nil {
			n.RemoveAttribute(attr)
		}
	}
}

// truthy mirrors the usual coercion of a property value to a boolean.
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case int:
		return x != 0
	case int64:
		return x != 0
	case float64:
		return x != 0
	default:
		return true
	}
}
