// Package linkage relates the rows of two tables through shared key
// values. A Linkage indexes a key array on each side once, at
// construction, and afterwards answers "which rows hold this key?" for
// either side in constant time and enumerates every key with its matching
// row groups. It is a reusable hash-join primitive: the caller decides
// what to do with each group.
//
// A ready Linkage is immutable. It is safe for concurrent readers as long
// as the tables and key arrays handed to it are not modified either.
package linkage

import (
	"fmt"
	"iter"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/spenczar/quiver/domain/column"
	qerrors "github.com/spenczar/quiver/domain/errors"
	"github.com/spenczar/quiver/domain/value"
	"github.com/spenczar/quiver/indexing"
)

// Linkage maps rows across a left and a right table by key value
type Linkage[L Table[L], R Table[R]] struct {
	id    string
	left  L
	right R

	leftIndex  *indexing.ColumnIndex
	rightIndex *indexing.ColumnIndex

	// keys is the union of both sides' distinct values: left values in
	// first-occurrence order, then values found only on the right.
	keys []value.Value
}

// Option configures linkage construction
type Option func(*builder)

// WithLogger sets the logger used for construction diagnostics
func WithLogger(logger *slog.Logger) Option {
	return func(b *builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithObserver registers an observer for construction events
func WithObserver(o Observer) Option {
	return func(b *builder) {
		if o != nil {
			b.observers = append(b.observers, o)
		}
	}
}

// builder carries the state of one construction attempt
type builder struct {
	id        string
	logger    *slog.Logger
	observers []Observer
	started   time.Time
}

func newBuilder(opts []Option) *builder {
	b := &builder{
		id:      uuid.New().String(),
		logger:  slog.Default(),
		started: time.Now(),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.notify(EventBuildStart, nil)
	return b
}

func (b *builder) notify(t EventType, data any) {
	if len(b.observers) == 0 {
		return
	}
	event := Event{Type: t, LinkageID: b.id, Timestamp: time.Now(), Data: data}
	for _, o := range b.observers {
		o.OnEvent(event)
	}
}

func (b *builder) fail(err error) error {
	b.logger.Debug("linkage build failed",
		slog.String("linkage_id", b.id),
		slog.Any("error", err))
	b.notify(EventBuildFailed, err)
	return err
}

// New links left and right through leftKeys and rightKeys. Each key array
// must be null-free and as long as its table. On failure no linkage is
// returned; the error unwraps to ErrLengthMismatch or ErrNullKeyValue.
func New[L Table[L], R Table[R]](left L, right R, leftKeys, rightKeys column.Array, opts ...Option) (*Linkage[L, R], error) {
	return link(newBuilder(opts), left, right, leftKeys, rightKeys)
}

func link[L Table[L], R Table[R]](b *builder, left L, right R, leftKeys, rightKeys column.Array) (*Linkage[L, R], error) {
	if leftKeys.Len() != left.Len() {
		return nil, b.fail(qerrors.NewLengthMismatch(qerrors.SideLeft, "", leftKeys.Len(), left.Len()))
	}
	if rightKeys.Len() != right.Len() {
		return nil, b.fail(qerrors.NewLengthMismatch(qerrors.SideRight, "", rightKeys.Len(), right.Len()))
	}
	if n := leftKeys.NullN(); n > 0 {
		return nil, b.fail(qerrors.NewNullKeyValue(qerrors.SideLeft, "", n))
	}
	if n := rightKeys.NullN(); n > 0 {
		return nil, b.fail(qerrors.NewNullKeyValue(qerrors.SideRight, "", n))
	}

	leftIndex, err := indexing.Build(leftKeys, indexing.WithLogger(b.logger))
	if err != nil {
		return nil, b.fail(fmt.Errorf("indexing left keys: %w", err))
	}
	b.notify(EventIndexBuilt, indexStats(qerrors.SideLeft, leftIndex))

	rightIndex, err := indexing.Build(rightKeys, indexing.WithLogger(b.logger))
	if err != nil {
		return nil, b.fail(fmt.Errorf("indexing right keys: %w", err))
	}
	b.notify(EventIndexBuilt, indexStats(qerrors.SideRight, rightIndex))

	keys := leftIndex.Values()
	for _, v := range rightIndex.Values() {
		if !leftIndex.Contains(v) {
			keys = append(keys, v)
		}
	}

	l := &Linkage[L, R]{
		id:         b.id,
		left:       left,
		right:      right,
		leftIndex:  leftIndex,
		rightIndex: rightIndex,
		keys:       keys,
	}

	stats := BuildStats{
		LeftRows:      leftIndex.Rows(),
		RightRows:     rightIndex.Rows(),
		LeftDistinct:  leftIndex.Len(),
		RightDistinct: rightIndex.Len(),
		Union:         len(keys),
		Duration:      time.Since(b.started),
	}
	b.logger.Debug("linkage built",
		slog.String("linkage_id", l.id),
		slog.Int("left_rows", stats.LeftRows),
		slog.Int("right_rows", stats.RightRows),
		slog.Int("unique_values", stats.Union),
		slog.Duration("duration", stats.Duration))
	b.notify(EventBuildEnd, stats)

	return l, nil
}

func indexStats(side qerrors.Side, idx *indexing.ColumnIndex) IndexStats {
	return IndexStats{
		Side:     side,
		Type:     idx.Type().String(),
		Rows:     idx.Rows(),
		Distinct: idx.Len(),
	}
}

// SelectLeft returns the left rows whose key equals v, in their original
// order. An absent key yields the left table's empty table.
func (l *Linkage[L, R]) SelectLeft(v value.Value) L {
	rows, ok := l.leftIndex.Get(v)
	if !ok {
		return l.left.Empty()
	}
	return l.left.Take(slices.Clone(rows))
}

// SelectRight is SelectLeft for the right table
func (l *Linkage[L, R]) SelectRight(v value.Value) R {
	rows, ok := l.rightIndex.Get(v)
	if !ok {
		return l.right.Empty()
	}
	return l.right.Take(slices.Clone(rows))
}

// Select returns the matching rows from both tables
func (l *Linkage[L, R]) Select(v value.Value) (L, R) {
	return l.SelectLeft(v), l.SelectRight(v)
}

func (l *Linkage[L, R]) group(v value.Value) Group[L, R] {
	left, right := l.Select(v)
	return Group[L, R]{Key: v, Left: left, Right: right}
}

// Iterate yields one group for every key present on either side. A key
// found on one side only is paired with the other side's empty table.
// The order of keys is unspecified. Each call starts a fresh sequence.
func (l *Linkage[L, R]) Iterate() iter.Seq[Group[L, R]] {
	return l.Groups(JoinFull)
}

// Groups is Iterate restricted to the keys selected by kind
func (l *Linkage[L, R]) Groups(kind JoinType) iter.Seq[Group[L, R]] {
	return func(yield func(Group[L, R]) bool) {
		for _, v := range l.keys {
			if !kind.includes(l.leftIndex.Contains(v), l.rightIndex.Contains(v)) {
				continue
			}
			if !yield(l.group(v)) {
				return
			}
		}
	}
}

// Len returns the number of distinct keys across both sides
func (l *Linkage[L, R]) Len() int { return len(l.keys) }

// Keys returns the distinct keys across both sides
func (l *Linkage[L, R]) Keys() []value.Value {
	return slices.Clone(l.keys)
}

// Contains reports whether v occurs on either side
func (l *Linkage[L, R]) Contains(v value.Value) bool {
	return l.leftIndex.Contains(v) || l.rightIndex.Contains(v)
}

// ID returns the identifier reported in construction events
func (l *Linkage[L, R]) ID() string { return l.id }

// Left returns the left table
func (l *Linkage[L, R]) Left() L { return l.left }

// Right returns the right table
func (l *Linkage[L, R]) Right() R { return l.right }

// LeftIndex returns the index over the left keys
func (l *Linkage[L, R]) LeftIndex() *indexing.ColumnIndex { return l.leftIndex }

// RightIndex returns the index over the right keys
func (l *Linkage[L, R]) RightIndex() *indexing.ColumnIndex { return l.rightIndex }
