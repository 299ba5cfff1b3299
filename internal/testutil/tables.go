// Package testutil holds shared fixtures and assertions for package tests.
package testutil

import (
	"github.com/spenczar/quiver/domain/column"
	"github.com/spenczar/quiver/domain/table"
	"github.com/spenczar/quiver/domain/value"
)

// KeyedTable creates a table with a "key" column holding keys and a "pos"
// column holding each row's original position, so selections can be
// traced back to source rows.
func KeyedTable(name string, keys ...int64) *table.Table {
	pos := make([]int64, len(keys))
	for i := range keys {
		pos[i] = int64(i)
	}
	return table.MustNew(name,
		table.Col("key", column.Int64s(keys...)),
		table.Col("pos", column.Int64s(pos...)),
	)
}

// CreatePositionsTable creates object positions sampled at whole seconds
func CreatePositionsTable() *table.Table {
	return table.MustNew("positions",
		table.Col("id", column.Uint32s(1, 1, 2, 2, 3)),
		table.Col("time", column.Timestamps(value.Second, 0, 1, 0, 1, 0)),
		table.Col("x", column.Float64s(0.0, 1.0, 10.0, 12.0, 100.0)),
		table.Col("y", column.Float64s(0.0, 0.5, 10.0, 9.0, 100.0)),
	)
}

// CreateVelocitiesTable creates velocities for some of the positions.
// Object 3 has no velocity and object 4 has no position.
func CreateVelocitiesTable() *table.Table {
	return table.MustNew("velocities",
		table.Col("id", column.Uint32s(1, 2, 2, 4)),
		table.Col("time", column.Timestamps(value.Second, 0, 0, 1, 0)),
		table.Col("vx", column.Float64s(1.0, 2.0, 0.0, -1.0)),
		table.Col("vy", column.Float64s(0.5, -1.0, 0.0, 1.0)),
	)
}

// MustColumn returns the named column or panics
func MustColumn(t *table.Table, name string) *column.Vector {
	c, ok := t.Column(name)
	if !ok {
		panic("testutil: no column " + name + " in " + t.Name)
	}
	return c
}
