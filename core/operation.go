package core

import "encoding/json"

// OpType discriminates the operation payloads that carry positional
// semantics. Anything else passes through the transform engine unchanged.
type OpType string

const (
	// OpInsert inserts text at a position.
	OpInsert OpType = "insert"
	// OpDelete removes a range starting at a position.
	OpDelete OpType = "delete"
)

// Operation is the typed form of an edit operation payload. On the wire the
// payload stays opaque JSON so fields beyond these survive a transform
// round-trip; Operation exists for constructing payloads and for the
// transform engine's internal arithmetic.
type Operation struct {
	Type     OpType `json:"type"`
	Position int    `json:"position"`
	Text     string `json:"text,omitempty"`
	Length   int    `json:"length,omitempty"`
}

// NewInsert builds an insert operation placing text at position.
func NewInsert(position int, text string) Operation {
	return Operation{Type: OpInsert, Position: position, Text: text}
}

// NewDelete builds a delete operation removing length characters at position.
func NewDelete(position, length int) Operation {
	return Operation{Type: OpDelete, Position: position, Length: length}
}

// Payload serializes the operation to its opaque JSON wire form.
func (o Operation) Payload() json.RawMessage {
	buf, err := json.Marshal(o)
	if err != nil {
		// Operation contains only marshalable fields.
		panic(err)
	}
	return buf
}
