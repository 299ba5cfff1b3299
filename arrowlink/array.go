// Package arrowlink lets Apache Arrow data take part in linkages: arrow
// arrays serve as key arrays and record batches serve as tables.
package arrowlink

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"

	"github.com/spenczar/quiver/domain/value"
)

// Array presents an arrow array as a key array. Struct arrays become
// composite values; a struct row counts as null when the row itself or
// any of its fields is null.
type Array struct {
	arr   arrow.Array
	typ   value.Type
	get   func(i int) value.Value
	null  func(i int) bool
	nullN int
}

// NewArray wraps arr. The caller keeps ownership of arr and must keep it
// alive while the Array is in use.
func NewArray(arr arrow.Array) (*Array, error) {
	acc, err := accessorFor(arr)
	if err != nil {
		return nil, err
	}

	a := &Array{arr: arr, typ: acc.typ, get: acc.get, null: acc.null}
	if arr.DataType().ID() == arrow.STRUCT {
		for i := 0; i < arr.Len(); i++ {
			if acc.null(i) {
				a.nullN++
			}
		}
	} else {
		a.nullN = arr.NullN()
	}
	return a, nil
}

func (a *Array) Len() int { return a.arr.Len() }

func (a *Array) NullN() int { return a.nullN }

func (a *Array) IsNull(i int) bool { return a.null(i) }

func (a *Array) Type() value.Type { return a.typ }

// Value returns row i. The result for a null row is the zero Value.
func (a *Array) Value(i int) value.Value {
	if a.null(i) {
		return value.Value{}
	}
	return a.get(i)
}

// Arrow returns the wrapped array
func (a *Array) Arrow() arrow.Array { return a.arr }

type accessor struct {
	typ  value.Type
	get  func(i int) value.Value
	null func(i int) bool
}

func accessorFor(arr arrow.Array) (accessor, error) {
	acc := accessor{null: arr.IsNull}

	switch a := arr.(type) {
	case *array.Boolean:
		acc.typ, acc.get = value.TypeBool, func(i int) value.Value { return value.Bool(a.Value(i)) }
	case *array.Int8:
		acc.typ, acc.get = value.TypeInt8, func(i int) value.Value { return value.Int8(a.Value(i)) }
	case *array.Int16:
		acc.typ, acc.get = value.TypeInt16, func(i int) value.Value { return value.Int16(a.Value(i)) }
	case *array.Int32:
		acc.typ, acc.get = value.TypeInt32, func(i int) value.Value { return value.Int32(a.Value(i)) }
	case *array.Int64:
		acc.typ, acc.get = value.TypeInt64, func(i int) value.Value { return value.Int64(a.Value(i)) }
	case *array.Uint8:
		acc.typ, acc.get = value.TypeUint8, func(i int) value.Value { return value.Uint8(a.Value(i)) }
	case *array.Uint16:
		acc.typ, acc.get = value.TypeUint16, func(i int) value.Value { return value.Uint16(a.Value(i)) }
	case *array.Uint32:
		acc.typ, acc.get = value.TypeUint32, func(i int) value.Value { return value.Uint32(a.Value(i)) }
	case *array.Uint64:
		acc.typ, acc.get = value.TypeUint64, func(i int) value.Value { return value.Uint64(a.Value(i)) }
	case *array.Float32:
		acc.typ, acc.get = value.TypeFloat32, func(i int) value.Value { return value.Float32(a.Value(i)) }
	case *array.Float64:
		acc.typ, acc.get = value.TypeFloat64, func(i int) value.Value { return value.Float64(a.Value(i)) }
	case *array.String:
		acc.typ, acc.get = value.TypeString, func(i int) value.Value { return value.String(a.Value(i)) }
	case *array.LargeString:
		acc.typ, acc.get = value.TypeLargeString, func(i int) value.Value { return value.LargeString(a.Value(i)) }
	case *array.Binary:
		acc.typ, acc.get = value.TypeBinary, func(i int) value.Value { return value.Binary(a.Value(i)) }
	case *array.Timestamp:
		dt := a.DataType().(*arrow.TimestampType)
		unit, err := timeUnit(dt.Unit)
		if err != nil {
			return accessor{}, err
		}
		typ := value.ZonedTimestampType(unit, dt.TimeZone)
		acc.typ = typ
		acc.get = func(i int) value.Value { return value.TimestampOf(typ, int64(a.Value(i))) }
	case *array.Struct:
		return structAccessor(a)
	default:
		return accessor{}, fmt.Errorf("arrowlink: unsupported arrow type %s", arr.DataType())
	}
	return acc, nil
}

func structAccessor(a *array.Struct) (accessor, error) {
	st := a.DataType().(*arrow.StructType)
	if st.NumFields() == 0 {
		return accessor{}, fmt.Errorf("arrowlink: struct without fields")
	}

	fields := make([]value.Field, st.NumFields())
	children := make([]accessor, st.NumFields())
	seen := make(map[string]bool, st.NumFields())
	for j, f := range st.Fields() {
		if f.Name == "" || seen[f.Name] {
			return accessor{}, fmt.Errorf("arrowlink: struct field names must be unique and non-empty, got %q", f.Name)
		}
		seen[f.Name] = true
		child, err := accessorFor(a.Field(j))
		if err != nil {
			return accessor{}, fmt.Errorf("field %q: %w", f.Name, err)
		}
		fields[j] = value.Field{Name: f.Name, Type: child.typ}
		children[j] = child
	}

	typ := value.StructType(fields...)
	acc := accessor{typ: typ}
	acc.null = func(i int) bool {
		if a.IsNull(i) {
			return true
		}
		for _, c := range children {
			if c.null(i) {
				return true
			}
		}
		return false
	}
	acc.get = func(i int) value.Value {
		members := make([]value.Value, len(children))
		for j, c := range children {
			members[j] = c.get(i)
		}
		v, err := value.Struct(typ, members...)
		if err != nil {
			panic(err)
		}
		return v
	}
	return acc, nil
}

func timeUnit(u arrow.TimeUnit) (value.TimeUnit, error) {
	switch u {
	case arrow.Second:
		return value.Second, nil
	case arrow.Millisecond:
		return value.Millisecond, nil
	case arrow.Microsecond:
		return value.Microsecond, nil
	case arrow.Nanosecond:
		return value.Nanosecond, nil
	}
	return 0, fmt.Errorf("arrowlink: unsupported time unit %s", u)
}
