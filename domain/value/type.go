package value

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// Kind identifies the logical type family of a value
type Kind uint8

const (
	KindInvalid Kind = iota
	KindBool
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindUint8
	KindUint16
	KindUint32
	KindUint64
	KindFloat32
	KindFloat64
	KindString
	KindBinary
	KindTimestamp
	KindStruct
	KindLargeString
)

var kindNames = map[Kind]string{
	KindInvalid:   "invalid",
	KindBool:      "bool",
	KindInt8:      "int8",
	KindInt16:     "int16",
	KindInt32:     "int32",
	KindInt64:     "int64",
	KindUint8:     "uint8",
	KindUint16:    "uint16",
	KindUint32:    "uint32",
	KindUint64:    "uint64",
	KindFloat32:   "float32",
	KindFloat64:   "float64",
	KindString:    "string",
	KindBinary:    "binary",
	KindTimestamp: "timestamp",
	KindStruct:    "struct",

	KindLargeString: "large_string",
}

// String returns the lowercase name of the kind
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// IsSigned reports whether the kind is a signed integer
func (k Kind) IsSigned() bool {
	return k >= KindInt8 && k <= KindInt64
}

// IsUnsigned reports whether the kind is an unsigned integer
func (k Kind) IsUnsigned() bool {
	return k >= KindUint8 && k <= KindUint64
}

// IsString reports whether the kind holds UTF-8 text
func (k Kind) IsString() bool {
	return k == KindString || k == KindLargeString
}

// IsFloat reports whether the kind is a floating point number
func (k Kind) IsFloat() bool {
	return k == KindFloat32 || k == KindFloat64
}

// TimeUnit is the resolution of a timestamp
type TimeUnit uint8

const (
	Second TimeUnit = iota
	Millisecond
	Microsecond
	Nanosecond
)

// String returns the short unit suffix (s, ms, us, ns)
func (u TimeUnit) String() string {
	switch u {
	case Second:
		return "s"
	case Millisecond:
		return "ms"
	case Microsecond:
		return "us"
	case Nanosecond:
		return "ns"
	default:
		return fmt.Sprintf("unit(%d)", uint8(u))
	}
}

// Field is one named member of a struct type
type Field struct {
	Name string
	Type Type
}

// Type is a logical type: a kind, plus a unit and time zone for
// timestamps and an ordered field list for structs.
type Type struct {
	kind   Kind
	unit   TimeUnit
	zone   string
	fields []Field

	// fp is an unambiguous binary fingerprint; types are equal iff their
	// fingerprints are equal.
	fp string
}

var (
	TypeBool    = primitive(KindBool)
	TypeInt8    = primitive(KindInt8)
	TypeInt16   = primitive(KindInt16)
	TypeInt32   = primitive(KindInt32)
	TypeInt64   = primitive(KindInt64)
	TypeUint8   = primitive(KindUint8)
	TypeUint16  = primitive(KindUint16)
	TypeUint32  = primitive(KindUint32)
	TypeUint64  = primitive(KindUint64)
	TypeFloat32 = primitive(KindFloat32)
	TypeFloat64 = primitive(KindFloat64)
	TypeString  = primitive(KindString)
	TypeBinary  = primitive(KindBinary)

	TypeLargeString = primitive(KindLargeString)
)

func primitive(k Kind) Type {
	return Type{kind: k, fp: string([]byte{byte(k)})}
}

// TimestampType returns the zone-less timestamp type with the given unit
func TimestampType(unit TimeUnit) Type {
	return ZonedTimestampType(unit, "")
}

// ZonedTimestampType returns a timestamp type bound to a time zone name.
// Types differing only in zone are different types.
func ZonedTimestampType(unit TimeUnit, zone string) Type {
	fp := append([]byte{byte(KindTimestamp), byte(unit)}, zone...)
	return Type{kind: KindTimestamp, unit: unit, zone: zone, fp: string(fp)}
}

// StructType assembles a struct type from fields, in the given order.
// It panics if a field name is empty or repeated.
func StructType(fields ...Field) Type {
	seen := make(map[string]struct{}, len(fields))
	fp := []byte{byte(KindStruct)}
	fp = binary.AppendUvarint(fp, uint64(len(fields)))
	for _, f := range fields {
		if f.Name == "" {
			panic("value: struct field with empty name")
		}
		if _, dup := seen[f.Name]; dup {
			panic(fmt.Sprintf("value: duplicate struct field %q", f.Name))
		}
		seen[f.Name] = struct{}{}

		fp = binary.AppendUvarint(fp, uint64(len(f.Name)))
		fp = append(fp, f.Name...)
		fp = binary.AppendUvarint(fp, uint64(len(f.Type.fp)))
		fp = append(fp, f.Type.fp...)
	}

	owned := make([]Field, len(fields))
	copy(owned, fields)
	return Type{kind: KindStruct, fields: owned, fp: string(fp)}
}

// Kind returns the type's kind
func (t Type) Kind() Kind { return t.kind }

// Unit returns the timestamp unit; meaningless for other kinds
func (t Type) Unit() TimeUnit { return t.unit }

// Zone returns the timestamp time zone name, empty when unset
func (t Type) Zone() string { return t.zone }

// NumFields returns the number of struct fields
func (t Type) NumFields() int { return len(t.fields) }

// Field returns the i-th struct field
func (t Type) Field(i int) Field { return t.fields[i] }

// Fields returns a copy of the struct fields
func (t Type) Fields() []Field {
	out := make([]Field, len(t.fields))
	copy(out, t.fields)
	return out
}

// FieldIndex returns the position of the named field, or -1
func (t Type) FieldIndex(name string) int {
	for i, f := range t.fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// Equal reports whether two types are the same logical type
func (t Type) Equal(o Type) bool {
	return t.fp == o.fp
}

// IsValid reports whether t is a usable type (the zero Type is not)
func (t Type) IsValid() bool {
	return t.kind != KindInvalid
}

// String renders the type signature, e.g. struct<id: uint32, time: timestamp[s]>
func (t Type) String() string {
	switch t.kind {
	case KindTimestamp:
		if t.zone != "" {
			return fmt.Sprintf("timestamp[%s, %s]", t.unit, t.zone)
		}
		return fmt.Sprintf("timestamp[%s]", t.unit)
	case KindStruct:
		parts := make([]string, len(t.fields))
		for i, f := range t.fields {
			parts[i] = f.Name + ": " + f.Type.String()
		}
		return "struct<" + strings.Join(parts, ", ") + ">"
	default:
		return t.kind.String()
	}
}
