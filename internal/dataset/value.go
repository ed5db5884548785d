package dataset

import (
	"strconv"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	KindMissing Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
)

// String returns the kind name as used in reports
func (k Kind) String() string {
	switch k {
	case KindMissing:
		return "missing"
	case KindBool:
		return "boolean"
	case KindInt:
		return "integer"
	case KindFloat:
		return "float"
	default:
		return "string"
	}
}

// Value is a tagged cell variant. The missing marker is a distinct variant,
// not an empty string or numeric zero.
type Value struct {
	Kind  Kind
	Bool  bool
	Int   int64
	Float float64
	Str   string
}

// Missing returns the missing marker
func Missing() Value {
	return Value{Kind: KindMissing}
}

// BoolValue wraps a boolean cell
func BoolValue(b bool) Value {
	return Value{Kind: KindBool, Bool: b}
}

// IntValue wraps an integer cell
func IntValue(i int64) Value {
	return Value{Kind: KindInt, Int: i}
}

// FloatValue wraps a float cell
func FloatValue(f float64) Value {
	return Value{Kind: KindFloat, Float: f}
}

// StringValue wraps a string cell
func StringValue(s string) Value {
	return Value{Kind: KindString, Str: s}
}

// IsMissing reports whether the value is the missing marker
func (v Value) IsMissing() bool {
	return v.Kind == KindMissing
}

// Equal reports whether two cells hold the same variant and payload.
// Missing equals missing; an integer and a float compare by numeric value
// so 1 and 1.0 in a mixed column are the same cell.
func (v Value) Equal(other Value) bool {
	if v.Kind == other.Kind {
		switch v.Kind {
		case KindMissing:
			return true
		case KindBool:
			return v.Bool == other.Bool
		case KindInt:
			return v.Int == other.Int
		case KindFloat:
			return v.Float == other.Float
		default:
			return v.Str == other.Str
		}
	}
	// Numeric cross-kind comparison
	if v.IsNumeric() && other.IsNumeric() {
		return v.AsFloat() == other.AsFloat()
	}
	return false
}

// IsNumeric reports whether the value holds an integer or float
func (v Value) IsNumeric() bool {
	return v.Kind == KindInt || v.Kind == KindFloat
}

// AsFloat returns the numeric payload as float64. Non-numeric values
// (including missing) return 0; callers must check IsNumeric first.
func (v Value) AsFloat() float64 {
	switch v.Kind {
	case KindInt:
		return float64(v.Int)
	case KindFloat:
		return v.Float
	default:
		return 0
	}
}

// Render returns the CSV text representation of the cell.
// Missing renders as the empty string.
func (v Value) Render() string {
	switch v.Kind {
	case KindMissing:
		return ""
	case KindBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	default:
		return v.Str
	}
}

// key returns a stable representation used for duplicate-row detection.
// Numeric kinds share a representation so Equal and key agree.
func (v Value) key() string {
	switch v.Kind {
	case KindMissing:
		return "\x00"
	case KindBool:
		if v.Bool {
			return "b1"
		}
		return "b0"
	case KindInt:
		return "n" + strconv.FormatFloat(float64(v.Int), 'g', -1, 64)
	case KindFloat:
		return "n" + strconv.FormatFloat(v.Float, 'g', -1, 64)
	default:
		return "s" + v.Str
	}
}
