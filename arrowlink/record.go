package arrowlink

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// RecordTable presents an arrow record batch as a linkable table. Tables
// returned by Take and Empty hold their own reference and should be
// released when no longer needed.
type RecordTable struct {
	rec arrow.RecordBatch
	mem memory.Allocator
}

// NewRecordTable wraps rec, retaining it. Selections are allocated from
// mem, or from memory.DefaultAllocator when mem is nil.
func NewRecordTable(rec arrow.RecordBatch, mem memory.Allocator) *RecordTable {
	if mem == nil {
		mem = memory.DefaultAllocator
	}
	rec.Retain()
	return &RecordTable{rec: rec, mem: mem}
}

func (t *RecordTable) Len() int { return int(t.rec.NumRows()) }

// Record returns the wrapped record batch
func (t *RecordTable) Record() arrow.RecordBatch { return t.rec }

// Release drops this table's reference to its record batch
func (t *RecordTable) Release() { t.rec.Release() }

// Column returns the named column as a key array
func (t *RecordTable) Column(name string) (*Array, error) {
	idx := t.rec.Schema().FieldIndices(name)
	if len(idx) == 0 {
		return nil, fmt.Errorf("arrowlink: no column %q", name)
	}
	return NewArray(t.rec.Column(idx[0]))
}

// Empty returns a zero-row table with the same schema
func (t *RecordTable) Empty() *RecordTable {
	return &RecordTable{rec: t.rec.NewSlice(0, 0), mem: t.mem}
}

// Take returns a table with the given rows in the given order. Runs of
// consecutive rows are sliced rather than copied; a table made of a single
// run shares memory with the source.
func (t *RecordTable) Take(rows []int) *RecordTable {
	if len(rows) == 0 {
		return t.Empty()
	}

	runs := consecutiveRuns(rows)
	if len(runs) == 1 {
		return &RecordTable{rec: t.rec.NewSlice(runs[0].start, runs[0].end), mem: t.mem}
	}

	cols := make([]arrow.Array, t.rec.NumCols())
	pieces := make([]arrow.Array, len(runs))
	for c := range cols {
		col := t.rec.Column(c)
		for i, r := range runs {
			pieces[i] = array.NewSlice(col, r.start, r.end)
		}
		merged, err := array.Concatenate(pieces, t.mem)
		for _, p := range pieces {
			p.Release()
		}
		if err != nil {
			// Slices of one column always share a type; this is an
			// allocator failure.
			panic(fmt.Errorf("arrowlink: take column %d: %w", c, err))
		}
		cols[c] = merged
	}

	rec := array.NewRecordBatch(t.rec.Schema(), cols, int64(len(rows)))
	for _, c := range cols {
		c.Release()
	}
	return &RecordTable{rec: rec, mem: t.mem}
}

type run struct {
	start, end int64
}

func consecutiveRuns(rows []int) []run {
	runs := []run{{start: int64(rows[0]), end: int64(rows[0]) + 1}}
	for _, r := range rows[1:] {
		last := &runs[len(runs)-1]
		if int64(r) == last.end {
			last.end++
			continue
		}
		runs = append(runs, run{start: int64(r), end: int64(r) + 1})
	}
	return runs
}
