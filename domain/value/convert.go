package value

import (
	"fmt"
	"math"
	"time"
)

// Convert coerces a Go value to typ. Integers are range checked, times are
// truncated to the timestamp unit, and struct types accept a
// map[string]any keyed by field name. A Value argument must already have
// type typ.
func Convert(typ Type, x any) (Value, error) {
	if v, ok := x.(Value); ok {
		if !v.typ.Equal(typ) {
			return Value{}, fmt.Errorf("value: have %s, want %s", v.typ, typ)
		}
		return v, nil
	}

	k := typ.kind
	switch {
	case k == KindBool:
		if b, ok := x.(bool); ok {
			return Bool(b), nil
		}
	case k.IsSigned():
		if n, ok := asInt64(x); ok && fitsSigned(n, k) {
			return signed(k, n), nil
		}
	case k.IsUnsigned():
		if n, ok := asUint64(x); ok && fitsUnsigned(n, k) {
			return unsigned(k, n), nil
		}
	case k.IsFloat():
		if f, ok := asFloat64(x); ok {
			if k == KindFloat32 {
				return Float32(float32(f)), nil
			}
			return Float64(f), nil
		}
	case k.IsString():
		if s, ok := x.(string); ok {
			return Value{typ: typ, content: s}, nil
		}
	case k == KindBinary:
		switch b := x.(type) {
		case []byte:
			return Binary(b), nil
		case string:
			return Binary([]byte(b)), nil
		}
	case k == KindTimestamp:
		if t, ok := x.(time.Time); ok {
			return TimestampOf(typ, unitsSinceEpoch(t, typ.unit)), nil
		}
		if n, ok := asInt64(x); ok {
			return TimestampOf(typ, n), nil
		}
	case k == KindStruct:
		if m, ok := x.(map[string]any); ok {
			return convertStruct(typ, m)
		}
	}
	return Value{}, fmt.Errorf("value: cannot convert %T(%v) to %s", x, x, typ)
}

func convertStruct(typ Type, m map[string]any) (Value, error) {
	if len(m) != len(typ.fields) {
		return Value{}, fmt.Errorf("value: %s has %d fields, got %d", typ, len(typ.fields), len(m))
	}
	members := make([]Value, len(typ.fields))
	for i, f := range typ.fields {
		raw, ok := m[f.Name]
		if !ok {
			return Value{}, fmt.Errorf("value: missing field %q for %s", f.Name, typ)
		}
		v, err := Convert(f.Type, raw)
		if err != nil {
			return Value{}, fmt.Errorf("field %q: %w", f.Name, err)
		}
		members[i] = v
	}
	return Struct(typ, members...)
}

func unitsSinceEpoch(t time.Time, unit TimeUnit) int64 {
	switch unit {
	case Second:
		return t.Unix()
	case Millisecond:
		return t.UnixMilli()
	case Microsecond:
		return t.UnixMicro()
	default:
		return t.UnixNano()
	}
}

func signed(k Kind, n int64) Value {
	switch k {
	case KindInt8:
		return Int8(int8(n))
	case KindInt16:
		return Int16(int16(n))
	case KindInt32:
		return Int32(int32(n))
	default:
		return Int64(n)
	}
}

func unsigned(k Kind, n uint64) Value {
	switch k {
	case KindUint8:
		return Uint8(uint8(n))
	case KindUint16:
		return Uint16(uint16(n))
	case KindUint32:
		return Uint32(uint32(n))
	default:
		return Uint64(n)
	}
}

func fitsSigned(n int64, k Kind) bool {
	switch k {
	case KindInt8:
		return n >= math.MinInt8 && n <= math.MaxInt8
	case KindInt16:
		return n >= math.MinInt16 && n <= math.MaxInt16
	case KindInt32:
		return n >= math.MinInt32 && n <= math.MaxInt32
	}
	return true
}

func fitsUnsigned(n uint64, k Kind) bool {
	switch k {
	case KindUint8:
		return n <= math.MaxUint8
	case KindUint16:
		return n <= math.MaxUint16
	case KindUint32:
		return n <= math.MaxUint32
	}
	return true
}

func asInt64(x any) (int64, bool) {
	switch v := x.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint:
		return int64(v), uint64(v) <= math.MaxInt64
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint64:
		return int64(v), v <= math.MaxInt64
	}
	return 0, false
}

func asUint64(x any) (uint64, bool) {
	switch v := x.(type) {
	case uint:
		return uint64(v), true
	case uint8:
		return uint64(v), true
	case uint16:
		return uint64(v), true
	case uint32:
		return uint64(v), true
	case uint64:
		return v, true
	}
	if n, ok := asInt64(x); ok && n >= 0 {
		return uint64(n), true
	}
	return 0, false
}

func asFloat64(x any) (float64, bool) {
	switch v := x.(type) {
	case float32:
		return float64(v), true
	case float64:
		return v, true
	}
	if n, ok := asInt64(x); ok {
		return float64(n), true
	}
	return 0, false
}
