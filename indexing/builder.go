// Package indexing builds value-to-row-position indexes over key arrays.
package indexing

import (
	"log/slog"

	"github.com/spenczar/quiver/domain/column"
	qerrors "github.com/spenczar/quiver/domain/errors"
	"github.com/spenczar/quiver/domain/value"
)

// ColumnIndex maps each distinct value of a key array to the ascending
// list of rows holding it. It is immutable once built.
type ColumnIndex struct {
	typ       value.Type
	rows      int
	positions map[value.Key][]int
	values    []value.Value // distinct values, first-occurrence order
}

// Option configures a Build call
type Option func(*buildOptions)

type buildOptions struct {
	logger *slog.Logger
}

// WithLogger sets the logger that receives build diagnostics. A nil
// logger leaves slog.Default in place.
func WithLogger(logger *slog.Logger) Option {
	return func(o *buildOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Build indexes arr in a single forward pass. Arrays with nulls are
// rejected with ErrNullKeyValue.
func Build(arr column.Array, opts ...Option) (*ColumnIndex, error) {
	o := buildOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	if n := arr.NullN(); n > 0 {
		return nil, qerrors.NewNullKeyValue(qerrors.SideNone, "", n)
	}

	n := arr.Len()
	idx := &ColumnIndex{
		typ:       arr.Type(),
		rows:      n,
		positions: make(map[value.Key][]int),
	}

	for rowPos := 0; rowPos < n; rowPos++ {
		val := arr.Value(rowPos)
		key := val.Key()

		rows, seen := idx.positions[key]
		if !seen {
			idx.values = append(idx.values, val)
		}
		idx.positions[key] = append(rows, rowPos)
	}

	o.logger.Debug("index built",
		slog.String("type", idx.typ.String()),
		slog.Int("rows", n),
		slog.Int("unique_values", len(idx.values)))

	return idx, nil
}

// Get returns the rows holding v in ascending order. The slice is shared
// with the index and must not be modified.
func (idx *ColumnIndex) Get(v value.Value) ([]int, bool) {
	rows, ok := idx.positions[v.Key()]
	return rows, ok
}

// Contains reports whether v occurs in the indexed array
func (idx *ColumnIndex) Contains(v value.Value) bool {
	_, ok := idx.positions[v.Key()]
	return ok
}

// Values returns the distinct values in order of first occurrence
func (idx *ColumnIndex) Values() []value.Value {
	out := make([]value.Value, len(idx.values))
	copy(out, idx.values)
	return out
}

// Len returns the number of distinct values
func (idx *ColumnIndex) Len() int { return len(idx.values) }

// Rows returns the length of the indexed array
func (idx *ColumnIndex) Rows() int { return idx.rows }

// Type returns the logical type of the indexed array
func (idx *ColumnIndex) Type() value.Type { return idx.typ }
