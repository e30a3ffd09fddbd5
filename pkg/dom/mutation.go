package dom

import (
	"encoding/json"
	"fmt"
)

// MutationType classifies a MutationRecord.
type MutationType uint8

const (
	MutationChildList     MutationType = iota // nodes added or removed
	MutationMove                              // an attached node re-inserted
	MutationAttributes                        // attribute set or removed
	MutationProperty                          // property or handler slot written
	MutationCharacterData                     // text or comment data changed
)

// String returns the string representation of the MutationType.
func (t MutationType) String() string {
	switch t {
	case MutationChildList:
		return "childList"
	case MutationMove:
		return "move"
	case MutationAttributes:
		return "attributes"
	case MutationProperty:
		return "property"
	case MutationCharacterData:
		return "characterData"
	default:
		return "unknown"
	}
}

// MutationRecord describes one change to a document.
type MutationRecord struct {
	Type   MutationType
	Target *Node

	// Added and Removed list the affected children for childList and move
	// records.
	Added   []*Node
	Removed []*Node

	// OldParent is the previous parent of a moved node.
	OldParent *Node

	// Name is the attribute or property name.
	Name string

	// OldValue is the previous attribute value or character data.
	OldValue string

	// Value is the new value. For attribute removals it is nil.
	Value any
}

type recordJSON struct {
	Type      string   `json:"type"`
	Target    uint64   `json:"target"`
	Tag       string   `json:"tag,omitempty"`
	Added     []uint64 `json:"added,omitempty"`
	Removed   []uint64 `json:"removed,omitempty"`
	OldParent uint64   `json:"oldParent,omitempty"`
	Name      string   `json:"name,omitempty"`
	OldValue  string   `json:"oldValue,omitempty"`
	Value     any      `json:"value,omitempty"`
}

// MarshalJSON encodes the record with nodes replaced by their IDs.
func (r MutationRecord) MarshalJSON() ([]byte, error) {
	out := recordJSON{
		Type:     r.Type.String(),
		Name:     r.Name,
		OldValue: r.OldValue,
		Value:    jsonValue(r.Value),
		Added:    nodeIDs(r.Added),
		Removed:  nodeIDs(r.Removed),
	}
	if r.Target != nil {
		out.Target = r.Target.id
		out.Tag = r.Target.tag
	}
	if r.OldParent != nil {
		out.OldParent = r.OldParent.id
	}
	return json.Marshal(out)
}

func nodeIDs(nodes []*Node) []uint64 {
	if len(nodes) == 0 {
		return nil
	}
	ids := make([]uint64, len(nodes))
	for i, n := range nodes {
		ids[i] = n.id
	}
	return ids
}

// jsonValue keeps values JSON can represent and describes the rest.
func jsonValue(v any) any {
	switch x := v.(type) {
	case nil, string, bool, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, float32, float64:
		return x
	case Handler:
		if x == nil {
			return nil
		}
		return "[handler]"
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprintf("[%T]", v)
	}
}
