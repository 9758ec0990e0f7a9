package nn

import (
	"fmt"
	"strings"
)

// Value is one entry of a decision context: either a flat numeric vector or
// a nested Context. The zero Value is empty and rejected by NewStimulus.
type Value struct {
	vector []float64
	nested Context
	isTree bool
}

func Scalar(v float64) Value {
	return Value{vector: []float64{v}}
}

func Vector(values ...float64) Value {
	return Value{vector: append([]float64(nil), values...)}
}

func Nested(ctx Context) Value {
	return Value{nested: ctx, isTree: true}
}

func (v Value) IsNested() bool {
	return v.isTree
}

// Floats returns a copy of a leaf vector, or nil for nested values.
func (v Value) Floats() []float64 {
	if v.isTree {
		return nil
	}
	return append([]float64(nil), v.vector...)
}

func (v Value) Context() Context {
	return v.nested
}

type Field struct {
	Key   string
	Value Value
}

// Context is an ordered tree of named numeric values. Field order is
// significant: it fixes the input layout of the network that evaluates it.
type Context []Field

// With returns a copy of c extended by one field.
func (c Context) With(key string, value Value) Context {
	out := make(Context, 0, len(c)+1)
	out = append(out, c...)
	return append(out, Field{Key: key, Value: value})
}

func (c Context) Lookup(key string) (Value, bool) {
	for _, field := range c {
		if field.Key == key {
			return field.Value, true
		}
	}
	return Value{}, false
}

func (c Context) String() string {
	parts := make([]string, 0, len(c))
	for _, field := range c {
		if field.Value.isTree {
			parts = append(parts, fmt.Sprintf("%s:%s", field.Key, field.Value.nested.String()))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s:%v", field.Key, field.Value.vector))
	}
	return "{" + strings.Join(parts, " ") + "}"
}
