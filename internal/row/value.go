// Package row defines the source-independent record model shared by the
// flat-file loader, the relational loader, the join engine and the sorter.
//
// A Value is a closed set of variants (null, integer, real, text, boolean,
// timestamp). Accessors report whether the value holds the requested variant
// instead of coercing silently, so a text column read as an integer is a
// visible miss rather than a zero.
package row

import (
	"cmp"
	"strconv"
	"strings"
	"time"
)

// Kind enumerates the Value variants.
type Kind uint8

const (
	KindNull Kind = iota
	KindInt
	KindReal
	KindText
	KindBool
	KindTime
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindInt:
		return "integer"
	case KindReal:
		return "real"
	case KindText:
		return "text"
	case KindBool:
		return "boolean"
	case KindTime:
		return "timestamp"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is one typed column value. The zero Value is null.
type Value struct {
	kind Kind
	i    int64
	f    float64
	s    string
	t    time.Time
}

// Null returns the absent value.
func Null() Value { return Value{} }

// Int returns an integer value.
func Int(v int64) Value { return Value{kind: KindInt, i: v} }

// Real returns a floating point value.
func Real(v float64) Value { return Value{kind: KindReal, f: v} }

// Text returns a string value.
func Text(v string) Value { return Value{kind: KindText, s: v} }

// Bool returns a boolean value.
func Bool(v bool) Value {
	var i int64
	if v {
		i = 1
	}
	return Value{kind: KindBool, i: i}
}

// Time returns a timestamp value.
func Time(v time.Time) Value { return Value{kind: KindTime, t: v} }

// Kind reports the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is absent.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsInt returns the integer held by v.
func (v Value) AsInt() (int64, bool) {
	if v.kind != KindInt {
		return 0, false
	}
	return v.i, true
}

// AsReal returns the number held by v. Integers widen to float64.
func (v Value) AsReal() (float64, bool) {
	switch v.kind {
	case KindReal:
		return v.f, true
	case KindInt:
		return float64(v.i), true
	}
	return 0, false
}

// AsText returns the string held by v.
func (v Value) AsText() (string, bool) {
	if v.kind != KindText {
		return "", false
	}
	return v.s, true
}

// AsBool returns the boolean held by v.
func (v Value) AsBool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.i != 0, true
}

// AsTime returns the timestamp held by v.
func (v Value) AsTime() (time.Time, bool) {
	if v.kind != KindTime {
		return time.Time{}, false
	}
	return v.t, true
}

// Any returns v as a plain Go value suitable for database/sql and pgx
// arguments: nil, int64, float64, string, bool or time.Time.
func (v Value) Any() any {
	switch v.kind {
	case KindInt:
		return v.i
	case KindReal:
		return v.f
	case KindText:
		return v.s
	case KindBool:
		return v.i != 0
	case KindTime:
		return v.t
	}
	return nil
}

// String renders v for logs and debugging. Null renders as the empty string.
func (v Value) String() string {
	switch v.kind {
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindReal:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindText:
		return v.s
	case KindBool:
		return strconv.FormatBool(v.i != 0)
	case KindTime:
		return v.t.Format("2006-01-02 15:04:05")
	}
	return ""
}

// Equal reports whether v and o hold the same variant and value.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindInt, KindBool:
		return v.i == o.i
	case KindReal:
		return v.f == o.f
	case KindText:
		return v.s == o.s
	case KindTime:
		return v.t.Equal(o.t)
	}
	return false
}

// Compare orders two values by their natural ordering: null sorts first,
// integers and reals compare numerically with each other, text compares
// lexicographically, false sorts before true and timestamps chronologically.
// Values of unrelated variants order by variant so the result stays total.
func Compare(a, b Value) int {
	if a.kind == KindNull || b.kind == KindNull {
		switch {
		case a.kind == b.kind:
			return 0
		case a.kind == KindNull:
			return -1
		default:
			return 1
		}
	}
	if a.kind == KindInt && b.kind == KindInt {
		return cmp.Compare(a.i, b.i)
	}
	if isNumeric(a.kind) && isNumeric(b.kind) {
		af, _ := a.AsReal()
		bf, _ := b.AsReal()
		return cmp.Compare(af, bf)
	}
	if a.kind != b.kind {
		return cmp.Compare(a.kind, b.kind)
	}
	switch a.kind {
	case KindText:
		return strings.Compare(a.s, b.s)
	case KindBool:
		return cmp.Compare(a.i, b.i)
	case KindTime:
		return a.t.Compare(b.t)
	}
	return 0
}

func isNumeric(k Kind) bool { return k == KindInt || k == KindReal }
