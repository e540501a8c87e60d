package api

import (
	"fmt"
	"strconv"
)

// Kind identifies which member of the Value union is populated.
type Kind uint8

const (
	KindNone Kind = iota
	KindInt
	KindFloat
	KindString
	KindBool
	KindIntVector
	KindFloatVector
	KindStringVector
	KindBoolVector
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindIntVector:
		return "int_vector"
	case KindFloatVector:
		return "float_vector"
	case KindStringVector:
		return "string_vector"
	case KindBoolVector:
		return "bool_vector"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// vector is the shared backing storage for vector-kinded Values. Copying a
// Value copies the pointer, never the elements, so handing one large payload
// to many consumer nodes is cheap. The slices are immutable once published.
type vector struct {
	ints    []int64
	floats  []float64
	strings []string
	bools   []bool
}

// Value is the unit of data exchange between nodes. It is a closed tagged
// union over scalar and vector kinds. Values are immutable: a later write
// under the same context name replaces the Value wholesale, it never mutates
// in place.
type Value struct {
	kind Kind
	i    int64
	f    float64
	s    string
	b    bool
	vec  *vector
}

// None returns the absence-marker Value. The zero Value is also None.
func None() Value { return Value{} }

// Int returns an integer Value.
func Int(v int64) Value { return Value{kind: KindInt, i: v} }

// Float returns a floating-point Value.
func Float(v float64) Value { return Value{kind: KindFloat, f: v} }

// Str returns a string Value.
func Str(v string) Value { return Value{kind: KindString, s: v} }

// Bool returns a boolean Value.
func Bool(v bool) Value { return Value{kind: KindBool, b: v} }

// IntVector returns a Value holding the given slice as shared immutable
// storage. The caller must not modify vs after the call.
func IntVector(vs []int64) Value {
	return Value{kind: KindIntVector, vec: &vector{ints: vs}}
}

// FloatVector returns a Value holding the given slice as shared immutable
// storage. The caller must not modify vs after the call.
func FloatVector(vs []float64) Value {
	return Value{kind: KindFloatVector, vec: &vector{floats: vs}}
}

// StringVector returns a Value holding the given slice as shared immutable
// storage. The caller must not modify vs after the call.
func StringVector(vs []string) Value {
	return Value{kind: KindStringVector, vec: &vector{strings: vs}}
}

// BoolVector returns a Value holding the given slice as shared immutable
// storage. The caller must not modify vs after the call.
func BoolVector(vs []bool) Value {
	return Value{kind: KindBoolVector, vec: &vector{bools: vs}}
}

// Kind reports which union member the Value holds.
func (v Value) Kind() Kind { return v.kind }

// IsNone reports whether the Value is the absence marker.
func (v Value) IsNone() bool { return v.kind == KindNone }

// AsInt returns the integer payload, if the Value holds one.
func (v Value) AsInt() (int64, bool) {
	if v.kind != KindInt {
		return 0, false
	}
	return v.i, true
}

// AsFloat returns the float payload, if the Value holds one.
func (v Value) AsFloat() (float64, bool) {
	if v.kind != KindFloat {
		return 0, false
	}
	return v.f, true
}

// Float64 returns the numeric payload as a float64, converting from Int
// when needed.
func (v Value) Float64() (float64, bool) {
	switch v.kind {
	case KindFloat:
		return v.f, true
	case KindInt:
		return float64(v.i), true
	default:
		return 0, false
	}
}

// AsString returns the string payload, if the Value holds one.
func (v Value) AsString() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.s, true
}

// AsBool returns the boolean payload, if the Value holds one.
func (v Value) AsBool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.b, true
}

// Ints returns the shared backing slice of an int-vector Value. The slice is
// a read-only view; callers must not modify it.
func (v Value) Ints() []int64 {
	if v.kind != KindIntVector {
		return nil
	}
	return v.vec.ints
}

// Floats returns the shared backing slice of a float-vector Value. The slice
// is a read-only view; callers must not modify it.
func (v Value) Floats() []float64 {
	if v.kind != KindFloatVector {
		return nil
	}
	return v.vec.floats
}

// Strings returns the shared backing slice of a string-vector Value. The
// slice is a read-only view; callers must not modify it.
func (v Value) Strings() []string {
	if v.kind != KindStringVector {
		return nil
	}
	return v.vec.strings
}

// Bools returns the shared backing slice of a bool-vector Value. The slice
// is a read-only view; callers must not modify it.
func (v Value) Bools() []bool {
	if v.kind != KindBoolVector {
		return nil
	}
	return v.vec.bools
}

// Len returns the element count of a vector Value, or 0 for scalars.
func (v Value) Len() int {
	if v.vec == nil {
		return 0
	}
	switch v.kind {
	case KindIntVector:
		return len(v.vec.ints)
	case KindFloatVector:
		return len(v.vec.floats)
	case KindStringVector:
		return len(v.vec.strings)
	case KindBoolVector:
		return len(v.vec.bools)
	default:
		return 0
	}
}

// SharesStorage reports whether two vector Values are backed by the same
// storage. It is what makes the zero-copy distribution of large payloads
// observable.
func (v Value) SharesStorage(other Value) bool {
	return v.vec != nil && v.vec == other.vec
}

// Equal reports whether two Values hold the same kind and payload. Vector
// Values compare element-wise. go-cmp picks this method up automatically.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNone:
		return true
	case KindInt:
		return v.i == other.i
	case KindFloat:
		return v.f == other.f
	case KindString:
		return v.s == other.s
	case KindBool:
		return v.b == other.b
	case KindIntVector:
		return equalSlices(v.vec.ints, other.vec.ints)
	case KindFloatVector:
		return equalSlices(v.vec.floats, other.vec.floats)
	case KindStringVector:
		return equalSlices(v.vec.strings, other.vec.strings)
	case KindBoolVector:
		return equalSlices(v.vec.bools, other.vec.bools)
	default:
		return false
	}
}

func equalSlices[T comparable](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// String renders the Value for diagnostics and diagram labels.
func (v Value) String() string {
	switch v.kind {
	case KindNone:
		return "none"
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindString:
		return v.s
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindIntVector:
		return fmt.Sprintf("int_vector(len=%d)", len(v.vec.ints))
	case KindFloatVector:
		return fmt.Sprintf("float_vector(len=%d)", len(v.vec.floats))
	case KindStringVector:
		return fmt.Sprintf("string_vector(len=%d)", len(v.vec.strings))
	case KindBoolVector:
		return fmt.Sprintf("bool_vector(len=%d)", len(v.vec.bools))
	default:
		return "invalid"
	}
}
