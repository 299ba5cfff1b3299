package column

import (
	"fmt"

	"github.com/RoaringBitmap/roaring"

	"github.com/spenczar/quiver/domain/value"
)

// Vector is a growable typed column. Null rows are tracked in a roaring
// bitmap; their slot in vals holds the zero Value.
type Vector struct {
	typ   value.Type
	vals  []value.Value
	nulls *roaring.Bitmap
}

// NewVector returns an empty vector of the given type
func NewVector(typ value.Type) *Vector {
	return &Vector{
		typ:   typ,
		nulls: roaring.New(),
	}
}

// Append adds a non-null value; its type must match the vector's
func (v *Vector) Append(x value.Value) error {
	if !x.Type().Equal(v.typ) {
		return fmt.Errorf("column: cannot append %s to %s vector", x.Type(), v.typ)
	}
	v.vals = append(v.vals, x)
	return nil
}

// AppendNull adds a null row
func (v *Vector) AppendNull() {
	v.nulls.Add(uint32(len(v.vals)))
	v.vals = append(v.vals, value.Value{})
}

// AppendAny converts x to the vector's type and appends it. A nil x
// appends a null.
func (v *Vector) AppendAny(x any) error {
	if x == nil {
		v.AppendNull()
		return nil
	}
	val, err := value.Convert(v.typ, x)
	if err != nil {
		return err
	}
	v.vals = append(v.vals, val)
	return nil
}

func (v *Vector) Len() int { return len(v.vals) }

func (v *Vector) NullN() int { return int(v.nulls.GetCardinality()) }

func (v *Vector) IsNull(i int) bool { return v.nulls.Contains(uint32(i)) }

func (v *Vector) Type() value.Type { return v.typ }

func (v *Vector) Value(i int) value.Value { return v.vals[i] }

// Take returns a new vector holding the given rows, in the given order
func (v *Vector) Take(rows []int) *Vector {
	out := &Vector{
		typ:   v.typ,
		vals:  make([]value.Value, len(rows)),
		nulls: roaring.New(),
	}
	for i, r := range rows {
		out.vals[i] = v.vals[r]
		if v.nulls.Contains(uint32(r)) {
			out.nulls.Add(uint32(i))
		}
	}
	return out
}

// Of builds a vector of typ from Go values; nil entries become nulls
func Of(typ value.Type, xs ...any) (*Vector, error) {
	vec := NewVector(typ)
	for i, x := range xs {
		if err := vec.AppendAny(x); err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
	}
	return vec, nil
}

func fromValues[T any](typ value.Type, mk func(T) value.Value, xs []T) *Vector {
	vec := NewVector(typ)
	vec.vals = make([]value.Value, len(xs))
	for i, x := range xs {
		vec.vals[i] = mk(x)
	}
	return vec
}

func Int32s(xs ...int32) *Vector { return fromValues(value.TypeInt32, value.Int32, xs) }

func Int64s(xs ...int64) *Vector { return fromValues(value.TypeInt64, value.Int64, xs) }

func Uint32s(xs ...uint32) *Vector { return fromValues(value.TypeUint32, value.Uint32, xs) }

func Uint64s(xs ...uint64) *Vector { return fromValues(value.TypeUint64, value.Uint64, xs) }

func Float64s(xs ...float64) *Vector { return fromValues(value.TypeFloat64, value.Float64, xs) }

func Strings(xs ...string) *Vector { return fromValues(value.TypeString, value.String, xs) }

// Timestamps builds a timestamp vector of the given unit
func Timestamps(unit value.TimeUnit, xs ...int64) *Vector {
	return fromValues(value.TimestampType(unit), func(n int64) value.Value {
		return value.Timestamp(unit, n)
	}, xs)
}
