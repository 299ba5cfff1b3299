package testutil

import (
	"sort"
	"testing"

	"github.com/spenczar/quiver/domain/table"
	"github.com/spenczar/quiver/domain/value"
)

// AssertRowCount checks if the table has the expected number of rows
func AssertRowCount(t *testing.T, tbl *table.Table, expected int, context string) {
	t.Helper()
	if tbl.Len() != expected {
		t.Errorf("%s: expected %d rows, got %d", context, expected, tbl.Len())
	}
}

// AssertPositions checks that a table built by KeyedTable holds exactly the
// given source rows, in order
func AssertPositions(t *testing.T, tbl *table.Table, expected []int64, context string) {
	t.Helper()
	got := Positions(tbl)
	if len(got) != len(expected) {
		t.Errorf("%s: expected positions %v, got %v", context, expected, got)
		return
	}
	for i := range got {
		if got[i] != expected[i] {
			t.Errorf("%s: expected positions %v, got %v", context, expected, got)
			return
		}
	}
}

// Positions returns the "pos" column of a KeyedTable-shaped table
func Positions(tbl *table.Table) []int64 {
	col := MustColumn(tbl, "pos")
	out := make([]int64, col.Len())
	for i := range out {
		out[i] = col.Value(i).Int64()
	}
	return out
}

// AssertSameValues checks that two value lists hold the same set of
// values, ignoring order. Each list must be free of duplicates.
func AssertSameValues(t *testing.T, actual, expected []value.Value, context string) {
	t.Helper()
	a, e := sortedKeys(actual), sortedKeys(expected)
	if len(a) != len(e) {
		t.Errorf("%s: expected values %v, got %v", context, expected, actual)
		return
	}
	for i := range a {
		if a[i] != e[i] {
			t.Errorf("%s: expected values %v, got %v", context, expected, actual)
			return
		}
	}
}

func sortedKeys(vs []value.Value) []string {
	keys := make([]string, len(vs))
	for i, v := range vs {
		keys[i] = string(v.Key())
	}
	sort.Strings(keys)
	return keys
}
