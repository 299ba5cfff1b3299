package linkage

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spenczar/quiver/domain/column"
	qerrors "github.com/spenczar/quiver/domain/errors"
	"github.com/spenczar/quiver/internal/testutil"
)

type recorder struct {
	events []Event
}

func (r *recorder) OnEvent(e Event) { r.events = append(r.events, e) }

func (r *recorder) types() []EventType {
	out := make([]EventType, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

func TestObserverReceivesBuildEvents(t *testing.T) {
	left := testutil.KeyedTable("left", 1, 2, 2)
	right := testutil.KeyedTable("right", 2, 3)

	rec := &recorder{}
	l, err := New(left, right,
		testutil.MustColumn(left, "key"),
		testutil.MustColumn(right, "key"),
		WithObserver(rec))
	require.NoError(t, err)

	require.Equal(t, []EventType{EventBuildStart, EventIndexBuilt, EventIndexBuilt, EventBuildEnd}, rec.types())
	for _, e := range rec.events {
		require.Equal(t, l.ID(), e.LinkageID)
	}

	leftStats, ok := rec.events[1].Data.(IndexStats)
	require.True(t, ok)
	require.Equal(t, qerrors.SideLeft, leftStats.Side)
	require.Equal(t, 3, leftStats.Rows)
	require.Equal(t, 2, leftStats.Distinct)
	require.Equal(t, "int64", leftStats.Type)

	stats, ok := rec.events[3].Data.(BuildStats)
	require.True(t, ok)
	require.Equal(t, 3, stats.LeftRows)
	require.Equal(t, 2, stats.RightRows)
	require.Equal(t, 3, stats.Union)
}

func TestObserverReceivesFailure(t *testing.T) {
	left := testutil.KeyedTable("left", 1, 2)
	right := testutil.KeyedTable("right", 1)

	rec := &recorder{}
	_, err := New(left, right, column.Int64s(1), testutil.MustColumn(right, "key"), WithObserver(rec))
	require.Error(t, err)

	require.Equal(t, []EventType{EventBuildStart, EventBuildFailed}, rec.types())
	require.ErrorIs(t, rec.events[1].Data.(error), qerrors.ErrLengthMismatch)
}

func TestMultiKeyFailureNotifiesObserver(t *testing.T) {
	left := testutil.KeyedTable("left", 1)
	right := testutil.KeyedTable("right", 1)

	var got []EventType
	obs := ObserverFunc(func(e Event) { got = append(got, e.Type) })
	_, err := NewMultiKey(left, right, nil, nil, WithObserver(obs))
	require.ErrorIs(t, err, qerrors.ErrEmptyKeySet)
	require.Equal(t, []EventType{EventBuildStart, EventBuildFailed}, got)
}

func TestLoggingObserver(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	left := testutil.KeyedTable("left", 1)
	right := testutil.KeyedTable("right", 1)
	_, err := New(left, right,
		testutil.MustColumn(left, "key"),
		testutil.MustColumn(right, "key"),
		WithLogger(logger),
		WithObserver(NewLoggingObserver(logger)))
	require.NoError(t, err)

	out := buf.String()
	require.Contains(t, out, "linkage_lifecycle")
	require.Contains(t, out, "event=build_start")
	require.Contains(t, out, "event=build_end")
	require.Contains(t, out, "msg=\"linkage built\"")
	require.Equal(t, 2, strings.Count(out, "msg=\"index built\""))
}

func TestNilOptionsAreIgnored(t *testing.T) {
	left := testutil.KeyedTable("left", 1)
	right := testutil.KeyedTable("right", 1)
	_, err := New(left, right,
		testutil.MustColumn(left, "key"),
		testutil.MustColumn(right, "key"),
		WithLogger(nil), WithObserver(nil))
	require.NoError(t, err)
}
