package main

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/spenczar/quiver/arrowlink"
	"github.com/spenczar/quiver/domain/column"
	"github.com/spenczar/quiver/domain/table"
	"github.com/spenczar/quiver/domain/value"
	"github.com/spenczar/quiver/linkage"
)

func samplePositions() *table.Table {
	return table.MustNew("positions",
		table.Col("id", column.Uint32s(1, 1, 2, 2, 3)),
		table.Col("time", column.Timestamps(value.Second, 0, 60, 0, 60, 0)),
		table.Col("x", column.Float64s(0.0, 1.0, 10.0, 12.0, 100.0)),
		table.Col("y", column.Float64s(0.0, 0.5, 10.0, 9.0, 100.0)),
	)
}

func sampleVelocities() *table.Table {
	return table.MustNew("velocities",
		table.Col("id", column.Uint32s(1, 2, 2, 4)),
		table.Col("time", column.Timestamps(value.Second, 0, 0, 60, 0)),
		table.Col("vx", column.Float64s(1.0, 2.0, 0.0, -1.0)),
		table.Col("vy", column.Float64s(0.5, -1.0, 0.0, 1.0)),
	)
}

func mustColumn(t *table.Table, name string) *column.Vector {
	c, ok := t.Column(name)
	if !ok {
		panic(fmt.Sprintf("table %s has no column %q", t.Name, name))
	}
	return c
}

func linkByID(positions, velocities *table.Table, opts []linkage.Option) error {
	l, err := linkage.New(positions, velocities,
		mustColumn(positions, "id"), mustColumn(velocities, "id"), opts...)
	if err != nil {
		return fmt.Errorf("linking by id: %w", err)
	}

	for _, kind := range []linkage.JoinType{linkage.JoinInner, linkage.JoinFull} {
		for g := range l.Groups(kind) {
			slog.Info("group",
				slog.String("join", kind.String()),
				slog.String("id", g.Key.String()),
				slog.Int("positions", g.Left.Len()),
				slog.Int("velocities", g.Right.Len()))
		}
	}
	return nil
}

func linkByIDAndTime(ctx context.Context, workers int, positions, velocities *table.Table, opts []linkage.Option) error {
	keys := func(t *table.Table) []linkage.KeyColumn {
		return []linkage.KeyColumn{
			{Name: "id", Array: mustColumn(t, "id")},
			{Name: "time", Array: mustColumn(t, "time")},
		}
	}
	l, err := linkage.NewMultiKey(positions, velocities, keys(positions), keys(velocities), opts...)
	if err != nil {
		return fmt.Errorf("linking by id and time: %w", err)
	}

	k, err := l.Key(map[string]any{"id": 2, "time": 60})
	if err != nil {
		return err
	}
	pos, vel := l.Select(k)
	slog.Info("lookup", slog.String("key", k.String()), slog.Any("positions", pos.Rows()), slog.Any("velocities", vel.Rows()))

	var matched atomic.Int64
	err = l.ForEach(ctx, workers, func(g linkage.Group[*table.Table, *table.Table]) error {
		if g.Left.Len() > 0 && g.Right.Len() > 0 {
			matched.Add(1)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("enumerating id/time groups: %w", err)
	}
	slog.Info("states with position and velocity",
		slog.Int64("matched", matched.Load()),
		slog.Int("keys", l.Len()),
		slog.String("key_type", l.CompositeType().String()))
	return nil
}

// linkArrow repeats the id linkage over arrow record batches
func linkArrow(opts []linkage.Option) error {
	mem := memory.NewGoAllocator()

	left := arrowTable(mem, []uint32{1, 1, 2, 2, 3})
	defer left.Release()
	right := arrowTable(mem, []uint32{1, 2, 2, 4})
	defer right.Release()

	lk, err := left.Column("id")
	if err != nil {
		return err
	}
	rk, err := right.Column("id")
	if err != nil {
		return err
	}

	l, err := linkage.New(left, right, lk, rk, opts...)
	if err != nil {
		return fmt.Errorf("linking arrow records: %w", err)
	}
	for g := range l.Iterate() {
		slog.Info("arrow group",
			slog.String("id", g.Key.String()),
			slog.Int64("left_rows", g.Left.Record().NumRows()),
			slog.Int64("right_rows", g.Right.Record().NumRows()))
		g.Left.Release()
		g.Right.Release()
	}
	return nil
}

func arrowTable(mem memory.Allocator, ids []uint32) *arrowlink.RecordTable {
	b := array.NewUint32Builder(mem)
	defer b.Release()
	b.AppendValues(ids, nil)
	col := b.NewArray()
	defer col.Release()

	schema := arrow.NewSchema([]arrow.Field{{Name: "id", Type: arrow.PrimitiveTypes.Uint32}}, nil)
	rec := array.NewRecordBatch(schema, []arrow.Array{col}, int64(len(ids)))
	defer rec.Release()
	return arrowlink.NewRecordTable(rec, mem)
}
