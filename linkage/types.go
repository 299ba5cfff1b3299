package linkage

import (
	"github.com/spenczar/quiver/domain/value"
)

// Table is the capability a row collection needs to take part in a
// linkage. Take must return a new table holding exactly the given rows in
// the given order without modifying the receiver, and Empty must return a
// zero-row table with the receiver's schema.
type Table[T any] interface {
	Len() int
	Take(rows []int) T
	Empty() T
}

// Group is one key value together with the matching rows from each side
type Group[L Table[L], R Table[R]] struct {
	Key   value.Value
	Left  L
	Right R
}

// JoinType selects which key values an enumeration visits
type JoinType int

const (
	JoinFull  JoinType = iota // Every key present on either side
	JoinInner                 // Keys present on both sides
	JoinLeft                  // Keys present on the left side
	JoinRight                 // Keys present on the right side
)

// String returns the string representation of the join type
func (jt JoinType) String() string {
	switch jt {
	case JoinInner:
		return "INNER JOIN"
	case JoinLeft:
		return "LEFT JOIN"
	case JoinRight:
		return "RIGHT JOIN"
	case JoinFull:
		return "FULL OUTER JOIN"
	default:
		return "UNKNOWN JOIN"
	}
}

func (jt JoinType) includes(inLeft, inRight bool) bool {
	switch jt {
	case JoinInner:
		return inLeft && inRight
	case JoinLeft:
		return inLeft
	case JoinRight:
		return inRight
	case JoinFull:
		return true
	}
	return false
}
