package expr

import (
	"encoding/json"
	"fmt"
)

type jsonExpression struct {
	Type      string       `json:"type"`
	Symbol    string       `json:"symbol"`
	Bracketed bool         `json:"bracketed,omitempty"`
	Children  []Expression `json:"children,omitempty"`
}

// MarshalText lets Type serve as a JSON/YAML string.
func (t Type) MarshalText() ([]byte, error) {
	switch t {
	case Value, UnaryOperator, BinaryOperator:
		return []byte(t.String()), nil
	}
	return nil, fmt.Errorf("expr: unknown type %d", int(t))
}

// UnmarshalText parses the names produced by MarshalText.
func (t *Type) UnmarshalText(b []byte) error {
	switch string(b) {
	case "value":
		*t = Value
	case "unary":
		*t = UnaryOperator
	case "binary":
		*t = BinaryOperator
	default:
		return fmt.Errorf("expr: unknown type %q", string(b))
	}
	return nil
}

// MarshalJSON encodes the tree with string type tags.
func (e Expression) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonExpression{
		Type:      e.Type.String(),
		Symbol:    e.Symbol,
		Bracketed: e.Bracketed,
		Children:  e.Children,
	})
}

// UnmarshalJSON decodes a tree and rejects nodes whose child count does not
// match their type.
func (e *Expression) UnmarshalJSON(b []byte) error {
	var raw jsonExpression
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	var t Type
	if err := t.UnmarshalText([]byte(raw.Type)); err != nil {
		return err
	}
	if len(raw.Children) != t.Arity() {
		return fmt.Errorf("expr: %s node %q has %d children, want %d", t, raw.Symbol, len(raw.Children), t.Arity())
	}
	*e = Expression{Type: t, Symbol: raw.Symbol, Bracketed: raw.Bracketed, Children: raw.Children}
	return nil
}
