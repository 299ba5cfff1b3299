package column

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spenczar/quiver/domain/value"
)

func TestVectorNulls(t *testing.T) {
	vec, err := Of(value.TypeInt64, 1, nil, 3, nil)
	require.NoError(t, err)
	require.Equal(t, 4, vec.Len())
	require.Equal(t, 2, vec.NullN())
	require.True(t, vec.IsNull(1))
	require.False(t, vec.IsNull(2))
	require.True(t, vec.Value(2).Equal(value.Int64(3)))

	taken := vec.Take([]int{3, 2, 0})
	require.Equal(t, 3, taken.Len())
	require.Equal(t, 1, taken.NullN())
	require.True(t, taken.IsNull(0))
	require.True(t, taken.Value(1).Equal(value.Int64(3)))
	require.True(t, taken.Value(2).Equal(value.Int64(1)))

	// the source is untouched
	require.Equal(t, 4, vec.Len())
	require.Equal(t, 2, vec.NullN())
}

func TestVectorAppendChecksType(t *testing.T) {
	vec := NewVector(value.TypeUint32)
	require.NoError(t, vec.Append(value.Uint32(1)))
	require.Error(t, vec.Append(value.Int64(1)))
	require.Error(t, vec.AppendAny("one"))
	require.Equal(t, 1, vec.Len())

	_, err := Of(value.TypeUint8, 1, 256)
	require.Error(t, err)
}

func TestSameType(t *testing.T) {
	require.True(t, SameType(Int64s(1), Int64s(2, 3)))
	require.False(t, SameType(Int64s(1), Uint32s(1)))
	require.False(t, SameType(Timestamps(value.Second, 1), Timestamps(value.Millisecond, 1)))
}

func TestZip(t *testing.T) {
	typ := value.StructType(
		value.Field{Name: "id", Type: value.TypeInt64},
		value.Field{Name: "time", Type: value.TypeInt64},
	)
	arr, err := Zip(typ, Int64s(1, 1, 2), Int64s(0, 1, 0))
	require.NoError(t, err)
	require.Equal(t, 3, arr.Len())
	require.Equal(t, 0, arr.NullN())

	want, err := value.Struct(typ, value.Int64(1), value.Int64(1))
	require.NoError(t, err)
	require.True(t, arr.Value(1).Equal(want))
}

func TestZipNulls(t *testing.T) {
	typ := value.StructType(
		value.Field{Name: "a", Type: value.TypeInt64},
		value.Field{Name: "b", Type: value.TypeInt64},
	)
	a, err := Of(value.TypeInt64, 1, nil, 3)
	require.NoError(t, err)
	b, err := Of(value.TypeInt64, nil, nil, 3)
	require.NoError(t, err)

	arr, err := Zip(typ, a, b)
	require.NoError(t, err)
	require.Equal(t, 2, arr.NullN())
	require.True(t, arr.IsNull(0))
	require.True(t, arr.IsNull(1))
	require.False(t, arr.IsNull(2))
	require.False(t, arr.Value(0).IsValid())
}

func TestZipRejectsMismatches(t *testing.T) {
	typ := value.StructType(value.Field{Name: "a", Type: value.TypeInt64})

	_, err := Zip(value.TypeInt64, Int64s(1))
	require.Error(t, err)
	_, err = Zip(typ, Int64s(1), Int64s(1))
	require.Error(t, err)
	_, err = Zip(typ, Uint32s(1))
	require.Error(t, err)

	two := value.StructType(
		value.Field{Name: "a", Type: value.TypeInt64},
		value.Field{Name: "b", Type: value.TypeInt64},
	)
	_, err = Zip(two, Int64s(1, 2), Int64s(1))
	require.Error(t, err)
}
