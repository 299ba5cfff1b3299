package linkage

import (
	"context"
	"log/slog"
	"time"

	qerrors "github.com/spenczar/quiver/domain/errors"
)

// EventType represents a phase of linkage construction
type EventType string

const (
	EventBuildStart  EventType = "build_start"
	EventIndexBuilt  EventType = "index_built"
	EventBuildEnd    EventType = "build_end"
	EventBuildFailed EventType = "build_failed"
)

// Event is emitted to observers while a linkage is being built
type Event struct {
	Type      EventType // Phase of construction
	LinkageID string    // ID the linkage has (or would have had) once ready
	Timestamp time.Time // When the event occurred
	Data      any       // IndexStats, BuildStats or error, depending on Type
}

// IndexStats is the payload of EventIndexBuilt
type IndexStats struct {
	Side     qerrors.Side
	Type     string
	Rows     int
	Distinct int
}

// BuildStats is the payload of EventBuildEnd
type BuildStats struct {
	LeftRows      int
	RightRows     int
	LeftDistinct  int
	RightDistinct int
	Union         int
	Duration      time.Duration
}

// Observer receives construction events. OnEvent is called synchronously
// from the constructing goroutine.
type Observer interface {
	OnEvent(event Event)
}

// ObserverFunc adapts a function to Observer
type ObserverFunc func(Event)

func (f ObserverFunc) OnEvent(event Event) { f(event) }

// LoggingObserver logs every construction event with structured fields
type LoggingObserver struct {
	logger *slog.Logger
}

// NewLoggingObserver creates a logging observer; a nil logger means slog.Default()
func NewLoggingObserver(logger *slog.Logger) *LoggingObserver {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingObserver{logger: logger}
}

// OnEvent implements the Observer interface
func (lo *LoggingObserver) OnEvent(event Event) {
	level := slog.LevelInfo
	if event.Type == EventBuildFailed {
		level = slog.LevelWarn
	}
	lo.logger.Log(context.Background(), level, "linkage_lifecycle",
		"event", event.Type,
		"linkage_id", event.LinkageID,
		"timestamp", event.Timestamp,
		"data", event.Data,
	)
}
