package arrowlink

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/require"

	qerrors "github.com/spenczar/quiver/domain/errors"
	"github.com/spenczar/quiver/domain/value"
	"github.com/spenczar/quiver/linkage"
)

func int64Array(mem memory.Allocator, xs ...int64) arrow.Array {
	b := array.NewInt64Builder(mem)
	defer b.Release()
	b.AppendValues(xs, nil)
	return b.NewArray()
}

func stringArray(mem memory.Allocator, xs ...string) arrow.Array {
	b := array.NewStringBuilder(mem)
	defer b.Release()
	b.AppendValues(xs, nil)
	return b.NewArray()
}

func timestampArray(mem memory.Allocator, xs ...int64) arrow.Array {
	return zonedTimestampArray(mem, "", xs...)
}

func zonedTimestampArray(mem memory.Allocator, zone string, xs ...int64) arrow.Array {
	b := array.NewTimestampBuilder(mem, &arrow.TimestampType{Unit: arrow.Second, TimeZone: zone})
	defer b.Release()
	for _, x := range xs {
		b.Append(arrow.Timestamp(x))
	}
	return b.NewArray()
}

// keyedRecord builds a record with an int64 "key" column and an int64
// "pos" column holding each row's position.
func keyedRecord(mem memory.Allocator, keys ...int64) arrow.RecordBatch {
	pos := make([]int64, len(keys))
	for i := range pos {
		pos[i] = int64(i)
	}
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "key", Type: arrow.PrimitiveTypes.Int64},
		{Name: "pos", Type: arrow.PrimitiveTypes.Int64},
	}, nil)
	cols := []arrow.Array{int64Array(mem, keys...), int64Array(mem, pos...)}
	rec := array.NewRecordBatch(schema, cols, int64(len(keys)))
	for _, c := range cols {
		c.Release()
	}
	return rec
}

func positions(t *testing.T, tbl *RecordTable) []int64 {
	t.Helper()
	col := tbl.Record().Column(1).(*array.Int64)
	out := make([]int64, col.Len())
	for i := range out {
		out[i] = col.Value(i)
	}
	return out
}

func TestArrayPrimitives(t *testing.T) {
	mem := memory.NewGoAllocator()

	ints := int64Array(mem, 3, 4)
	defer ints.Release()
	a, err := NewArray(ints)
	require.NoError(t, err)
	require.Equal(t, 2, a.Len())
	require.True(t, a.Type().Equal(value.TypeInt64))
	require.True(t, a.Value(1).Equal(value.Int64(4)))

	strs := stringArray(mem, "x", "y")
	defer strs.Release()
	s, err := NewArray(strs)
	require.NoError(t, err)
	require.True(t, s.Value(0).Equal(value.String("x")))

	ts := timestampArray(mem, 10)
	defer ts.Release()
	tsa, err := NewArray(ts)
	require.NoError(t, err)
	require.True(t, tsa.Type().Equal(value.TimestampType(value.Second)))
	require.True(t, tsa.Value(0).Equal(value.Timestamp(value.Second, 10)))
}

func TestArrayNulls(t *testing.T) {
	mem := memory.NewGoAllocator()
	b := array.NewInt32Builder(mem)
	defer b.Release()
	b.Append(1)
	b.AppendNull()
	b.Append(3)
	arr := b.NewArray()
	defer arr.Release()

	a, err := NewArray(arr)
	require.NoError(t, err)
	require.Equal(t, 1, a.NullN())
	require.True(t, a.IsNull(1))
	require.False(t, a.Value(1).IsValid())
}

func TestArrayStruct(t *testing.T) {
	mem := memory.NewGoAllocator()

	ids := int64Array(mem, 1, 2)
	defer ids.Release()

	nb := array.NewStringBuilder(mem)
	defer nb.Release()
	nb.Append("a")
	nb.AppendNull()
	names := nb.NewArray()
	defer names.Release()

	st, err := array.NewStructArray([]arrow.Array{ids, names}, []string{"id", "name"})
	require.NoError(t, err)
	defer st.Release()

	a, err := NewArray(st)
	require.NoError(t, err)
	require.Equal(t, "struct<id: int64, name: string>", a.Type().String())
	require.Equal(t, 1, a.NullN())
	require.True(t, a.IsNull(1))

	want, err := value.Struct(a.Type(), value.Int64(1), value.String("a"))
	require.NoError(t, err)
	require.True(t, a.Value(0).Equal(want))
}

func TestArrayUnsupportedType(t *testing.T) {
	mem := memory.NewGoAllocator()
	b := array.NewListBuilder(mem, arrow.PrimitiveTypes.Int64)
	defer b.Release()
	b.AppendNull()
	arr := b.NewArray()
	defer arr.Release()

	_, err := NewArray(arr)
	require.Error(t, err)
}

func TestRecordTableTake(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	rec := keyedRecord(mem, 7, 8, 9, 10, 11)
	tbl := NewRecordTable(rec, mem)
	rec.Release()
	defer tbl.Release()

	single := tbl.Take([]int{1, 2, 3})
	require.Equal(t, []int64{1, 2, 3}, positions(t, single))
	single.Release()

	scattered := tbl.Take([]int{4, 0, 1, 3})
	require.Equal(t, 4, scattered.Len())
	require.Equal(t, []int64{4, 0, 1, 3}, positions(t, scattered))
	scattered.Release()

	empty := tbl.Take(nil)
	require.Equal(t, 0, empty.Len())
	require.True(t, empty.Record().Schema().Equal(rec.Schema()))
	empty.Release()
}

func TestRecordTableColumn(t *testing.T) {
	mem := memory.NewGoAllocator()
	rec := keyedRecord(mem, 1, 2)
	tbl := NewRecordTable(rec, nil)
	rec.Release()
	defer tbl.Release()

	keys, err := tbl.Column("key")
	require.NoError(t, err)
	require.Equal(t, 2, keys.Len())

	_, err = tbl.Column("missing")
	require.Error(t, err)
}

func TestLinkRecordBatches(t *testing.T) {
	mem := memory.NewGoAllocator()

	lrec := keyedRecord(mem, 1, 2, 2, 3)
	rrec := keyedRecord(mem, 2, 3, 3, 4)
	left, right := NewRecordTable(lrec, mem), NewRecordTable(rrec, mem)
	lrec.Release()
	rrec.Release()
	defer left.Release()
	defer right.Release()

	lk, err := left.Column("key")
	require.NoError(t, err)
	rk, err := right.Column("key")
	require.NoError(t, err)

	l, err := linkage.New(left, right, lk, rk)
	require.NoError(t, err)
	require.Equal(t, 4, l.Len())

	sel := l.SelectLeft(value.Int64(2))
	require.Equal(t, []int64{1, 2}, positions(t, sel))
	sel.Release()

	sel = l.SelectRight(value.Int64(3))
	require.Equal(t, []int64{1, 2}, positions(t, sel))
	sel.Release()

	sel = l.SelectRight(value.Int64(1))
	require.Equal(t, 0, sel.Len())
	sel.Release()
}

func TestLinkRejectsArrowNulls(t *testing.T) {
	mem := memory.NewGoAllocator()

	b := array.NewInt64Builder(mem)
	defer b.Release()
	b.Append(1)
	b.AppendNull()
	keys := b.NewArray()
	defer keys.Release()

	lk, err := NewArray(keys)
	require.NoError(t, err)

	rec := keyedRecord(mem, 1, 2)
	tbl := NewRecordTable(rec, mem)
	rec.Release()
	defer tbl.Release()
	rk, err := tbl.Column("key")
	require.NoError(t, err)

	_, err = linkage.New(tbl, tbl, lk, rk)
	require.ErrorIs(t, err, qerrors.ErrNullKeyValue)
}

func TestMultiKeyOverRecords(t *testing.T) {
	mem := memory.NewGoAllocator()

	schema := arrow.NewSchema([]arrow.Field{
		{Name: "id", Type: arrow.PrimitiveTypes.Int64},
		{Name: "time", Type: &arrow.TimestampType{Unit: arrow.Second}},
	}, nil)
	build := func(ids, times []int64) *RecordTable {
		cols := []arrow.Array{int64Array(mem, ids...), timestampArray(mem, times...)}
		rec := array.NewRecordBatch(schema, cols, int64(len(ids)))
		for _, c := range cols {
			c.Release()
		}
		tbl := NewRecordTable(rec, mem)
		rec.Release()
		return tbl
	}
	keysOf := func(tbl *RecordTable) []linkage.KeyColumn {
		id, err := tbl.Column("id")
		require.NoError(t, err)
		ts, err := tbl.Column("time")
		require.NoError(t, err)
		return []linkage.KeyColumn{{Name: "id", Array: id}, {Name: "time", Array: ts}}
	}

	left := build([]int64{1, 1, 2}, []int64{0, 1, 0})
	right := build([]int64{1, 2, 2}, []int64{0, 0, 1})
	defer left.Release()
	defer right.Release()

	l, err := linkage.NewMultiKey(left, right, keysOf(left), keysOf(right))
	require.NoError(t, err)

	k, err := l.Key(map[string]any{"id": 2, "time": 0})
	require.NoError(t, err)
	lsel, rsel := l.Select(k)
	defer lsel.Release()
	defer rsel.Release()
	require.Equal(t, 1, lsel.Len())
	require.Equal(t, 1, rsel.Len())
	require.EqualValues(t, 2, lsel.Record().Column(0).(*array.Int64).Value(0))
}

func TestArrayKeepsArrowTypeDistinctions(t *testing.T) {
	mem := memory.NewGoAllocator()

	lb := array.NewLargeStringBuilder(mem)
	defer lb.Release()
	lb.AppendValues([]string{"x"}, nil)
	large := lb.NewArray()
	defer large.Release()

	la, err := NewArray(large)
	require.NoError(t, err)
	require.True(t, la.Type().Equal(value.TypeLargeString))
	require.True(t, la.Value(0).Equal(value.LargeString("x")))

	utc := zonedTimestampArray(mem, "UTC", 5)
	defer utc.Release()
	ua, err := NewArray(utc)
	require.NoError(t, err)
	require.Equal(t, "timestamp[s, UTC]", ua.Type().String())
	require.True(t, ua.Value(0).Equal(value.TimestampOf(value.ZonedTimestampType(value.Second, "UTC"), 5)))
}

func TestMultiKeyRejectsDifferingArrowTypes(t *testing.T) {
	mem := memory.NewGoAllocator()

	rec := keyedRecord(mem, 0)
	tbl := NewRecordTable(rec, mem)
	rec.Release()
	defer tbl.Release()

	wrap := func(arr arrow.Array) *Array {
		a, err := NewArray(arr)
		require.NoError(t, err)
		return a
	}

	strs := stringArray(mem, "x")
	defer strs.Release()
	lb := array.NewLargeStringBuilder(mem)
	defer lb.Release()
	lb.Append("x")
	large := lb.NewArray()
	defer large.Release()

	_, err := linkage.NewMultiKey(tbl, tbl,
		[]linkage.KeyColumn{{Name: "name", Array: wrap(strs)}},
		[]linkage.KeyColumn{{Name: "name", Array: wrap(large)}})
	require.ErrorIs(t, err, qerrors.ErrKeyTypeMismatch)

	utc := zonedTimestampArray(mem, "UTC", 0)
	defer utc.Release()
	ny := zonedTimestampArray(mem, "America/New_York", 0)
	defer ny.Release()

	_, err = linkage.NewMultiKey(tbl, tbl,
		[]linkage.KeyColumn{{Name: "time", Array: wrap(utc)}},
		[]linkage.KeyColumn{{Name: "time", Array: wrap(ny)}})
	require.ErrorIs(t, err, qerrors.ErrKeyTypeMismatch)

	utc2 := zonedTimestampArray(mem, "UTC", 0)
	defer utc2.Release()
	l, err := linkage.NewMultiKey(tbl, tbl,
		[]linkage.KeyColumn{{Name: "time", Array: wrap(utc)}},
		[]linkage.KeyColumn{{Name: "time", Array: wrap(utc2)}})
	require.NoError(t, err)
	require.Equal(t, 1, l.Len())
}
