// Package column defines the read-only key array contract used by the
// linkage engine, together with an in-memory reference implementation.
package column

import (
	"github.com/spenczar/quiver/domain/value"
)

// Array is the narrow view of a typed, null-tracking column that indexing
// needs. Implementations must not change after they are handed to a
// linkage.
type Array interface {
	Len() int
	NullN() int
	IsNull(i int) bool
	Type() value.Type
	// Value returns the scalar at row i. The result for a null row is
	// unspecified.
	Value(i int) value.Value
}

// SameType reports whether two arrays have the same logical type
func SameType(a, b Array) bool {
	return a.Type().Equal(b.Type())
}
