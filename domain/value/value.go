// Package value implements typed scalar values.
//
// A Value carries a logical Type and a canonical encoding of its content.
// Equality and hashing are defined over the (type, content) pair, so values
// of different logical types never compare equal even when they are
// numerically the same: Int32(1) and Int64(1) are distinct keys.
package value

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Key is the hashable identity of a Value. Two values are equal iff their
// keys are equal, which makes Key suitable as a Go map key.
type Key string

// Value is an immutable typed scalar
type Value struct {
	typ     Type
	content string
	fields  []Value // struct members, in type field order
}

// Bool returns a bool value
func Bool(b bool) Value {
	var c byte
	if b {
		c = 1
	}
	return Value{typ: TypeBool, content: string([]byte{c})}
}

func Int8(v int8) Value { return Value{typ: TypeInt8, content: string([]byte{byte(v)})} }

func Int16(v int16) Value {
	return Value{typ: TypeInt16, content: string(binary.BigEndian.AppendUint16(nil, uint16(v)))}
}

func Int32(v int32) Value {
	return Value{typ: TypeInt32, content: string(binary.BigEndian.AppendUint32(nil, uint32(v)))}
}

func Int64(v int64) Value {
	return Value{typ: TypeInt64, content: string(binary.BigEndian.AppendUint64(nil, uint64(v)))}
}

func Uint8(v uint8) Value { return Value{typ: TypeUint8, content: string([]byte{v})} }

func Uint16(v uint16) Value {
	return Value{typ: TypeUint16, content: string(binary.BigEndian.AppendUint16(nil, v))}
}

func Uint32(v uint32) Value {
	return Value{typ: TypeUint32, content: string(binary.BigEndian.AppendUint32(nil, v))}
}

func Uint64(v uint64) Value {
	return Value{typ: TypeUint64, content: string(binary.BigEndian.AppendUint64(nil, v))}
}

// Float32 returns a float32 value. Negative zero is folded into zero and
// every NaN payload into a single NaN, so they hash together.
func Float32(v float32) Value {
	bits := math.Float32bits(v)
	switch {
	case math.IsNaN(float64(v)):
		bits = math.Float32bits(float32(math.NaN()))
	case v == 0:
		bits = 0
	}
	return Value{typ: TypeFloat32, content: string(binary.BigEndian.AppendUint32(nil, bits))}
}

// Float64 returns a float64 value, canonicalized like Float32
func Float64(v float64) Value {
	bits := math.Float64bits(v)
	switch {
	case math.IsNaN(v):
		bits = math.Float64bits(math.NaN())
	case v == 0:
		bits = 0
	}
	return Value{typ: TypeFloat64, content: string(binary.BigEndian.AppendUint64(nil, bits))}
}

// String returns a string value
func String(s string) Value { return Value{typ: TypeString, content: s} }

// LargeString returns a string value of the large_string type. It never
// equals a String value with the same text.
func LargeString(s string) Value { return Value{typ: TypeLargeString, content: s} }

// Binary returns a binary value holding a copy of b
func Binary(b []byte) Value { return Value{typ: TypeBinary, content: string(b)} }

// Timestamp returns a timestamp of v units since the Unix epoch
func Timestamp(unit TimeUnit, v int64) Value {
	return TimestampOf(TimestampType(unit), v)
}

// TimestampOf returns a timestamp of v units of typ since the Unix epoch.
// It panics if typ is not a timestamp type.
func TimestampOf(typ Type, v int64) Value {
	if typ.kind != KindTimestamp {
		panic(fmt.Sprintf("value: TimestampOf with %s type", typ))
	}
	return Value{typ: typ, content: string(binary.BigEndian.AppendUint64(nil, uint64(v)))}
}

// Struct builds a composite value. The members must match typ's fields in
// number and type, in field order.
func Struct(typ Type, fields ...Value) (Value, error) {
	if typ.kind != KindStruct {
		return Value{}, fmt.Errorf("value: %s is not a struct type", typ)
	}
	if len(fields) != len(typ.fields) {
		return Value{}, fmt.Errorf("value: %s has %d fields, got %d values", typ, len(typ.fields), len(fields))
	}

	var content []byte
	for i, f := range fields {
		want := typ.fields[i]
		if !f.typ.Equal(want.Type) {
			return Value{}, fmt.Errorf("value: field %q wants %s, got %s", want.Name, want.Type, f.typ)
		}
		content = binary.AppendUvarint(content, uint64(len(f.content)))
		content = append(content, f.content...)
	}

	owned := make([]Value, len(fields))
	copy(owned, fields)
	return Value{typ: typ, content: string(content), fields: owned}, nil
}

// Type returns the value's logical type
func (v Value) Type() Type { return v.typ }

// IsValid reports whether v was built by a constructor (the zero Value is not)
func (v Value) IsValid() bool { return v.typ.IsValid() }

// Key returns the hashable identity of v: the type fingerprint followed by
// the canonical content.
func (v Value) Key() Key {
	buf := make([]byte, 0, binary.MaxVarintLen64+len(v.typ.fp)+len(v.content))
	buf = binary.AppendUvarint(buf, uint64(len(v.typ.fp)))
	buf = append(buf, v.typ.fp...)
	buf = append(buf, v.content...)
	return Key(buf)
}

// Equal reports whether v and o have the same type and content
func (v Value) Equal(o Value) bool {
	return v.typ.Equal(o.typ) && v.content == o.content
}

// Int64 returns the value of a signed integer or timestamp. It panics for
// other kinds.
func (v Value) Int64() int64 {
	c := []byte(v.content)
	switch v.typ.kind {
	case KindInt8:
		return int64(int8(c[0]))
	case KindInt16:
		return int64(int16(binary.BigEndian.Uint16(c)))
	case KindInt32:
		return int64(int32(binary.BigEndian.Uint32(c)))
	case KindInt64, KindTimestamp:
		return int64(binary.BigEndian.Uint64(c))
	}
	panic(fmt.Sprintf("value: Int64 of %s value", v.typ))
}

// Uint64 returns the value of an unsigned integer. It panics for other kinds.
func (v Value) Uint64() uint64 {
	c := []byte(v.content)
	switch v.typ.kind {
	case KindUint8:
		return uint64(c[0])
	case KindUint16:
		return uint64(binary.BigEndian.Uint16(c))
	case KindUint32:
		return uint64(binary.BigEndian.Uint32(c))
	case KindUint64:
		return binary.BigEndian.Uint64(c)
	}
	panic(fmt.Sprintf("value: Uint64 of %s value", v.typ))
}

// Float64 returns the value of a float. It panics for other kinds.
func (v Value) Float64() float64 {
	c := []byte(v.content)
	switch v.typ.kind {
	case KindFloat32:
		return float64(math.Float32frombits(binary.BigEndian.Uint32(c)))
	case KindFloat64:
		return math.Float64frombits(binary.BigEndian.Uint64(c))
	}
	panic(fmt.Sprintf("value: Float64 of %s value", v.typ))
}

// Bool returns the value of a bool. It panics for other kinds.
func (v Value) Bool() bool {
	if v.typ.kind != KindBool {
		panic(fmt.Sprintf("value: Bool of %s value", v.typ))
	}
	return v.content[0] == 1
}

// Str returns the content of a string or binary value. It panics for
// other kinds.
func (v Value) Str() string {
	if !v.typ.kind.IsString() && v.typ.kind != KindBinary {
		panic(fmt.Sprintf("value: Str of %s value", v.typ))
	}
	return v.content
}

// Time converts a timestamp to a UTC time.Time. It panics for other kinds.
func (v Value) Time() time.Time {
	if v.typ.kind != KindTimestamp {
		panic(fmt.Sprintf("value: Time of %s value", v.typ))
	}
	n := v.Int64()
	switch v.typ.unit {
	case Second:
		return time.Unix(n, 0).UTC()
	case Millisecond:
		return time.UnixMilli(n).UTC()
	case Microsecond:
		return time.UnixMicro(n).UTC()
	default:
		return time.Unix(0, n).UTC()
	}
}

// Fields returns a copy of a struct value's members
func (v Value) Fields() []Value {
	out := make([]Value, len(v.fields))
	copy(out, v.fields)
	return out
}

// Field returns the named member of a struct value
func (v Value) Field(name string) (Value, bool) {
	i := v.typ.FieldIndex(name)
	if i < 0 {
		return Value{}, false
	}
	return v.fields[i], true
}

// String renders the value for humans; it is not a canonical encoding
func (v Value) String() string {
	k := v.typ.kind
	switch {
	case k == KindInvalid:
		return "<invalid>"
	case k == KindBool:
		return strconv.FormatBool(v.Bool())
	case k.IsSigned():
		return strconv.FormatInt(v.Int64(), 10)
	case k.IsUnsigned():
		return strconv.FormatUint(v.Uint64(), 10)
	case k == KindFloat32:
		return strconv.FormatFloat(v.Float64(), 'g', -1, 32)
	case k == KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'g', -1, 64)
	case k.IsString():
		return strconv.Quote(v.content)
	case k == KindBinary:
		return fmt.Sprintf("0x%x", v.content)
	case k == KindTimestamp:
		return v.Time().Format(time.RFC3339Nano)
	case k == KindStruct:
		var b strings.Builder
		b.WriteByte('{')
		for i, f := range v.fields {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(v.typ.fields[i].Name)
			b.WriteByte('=')
			b.WriteString(f.String())
		}
		b.WriteByte('}')
		return b.String()
	}
	return fmt.Sprintf("%s(%x)", v.typ, v.content)
}
