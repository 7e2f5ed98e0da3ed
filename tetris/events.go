package tetris

import "time"

type EventKind string

const (
	EventLinesCleared      EventKind = "lines_cleared"
	EventScoreChanged      EventKind = "score_changed"
	EventLevelChanged      EventKind = "level_changed"
	EventGravityChanged    EventKind = "gravity_changed"
	EventShopOpened        EventKind = "shop_opened"
	EventShopClosed        EventKind = "shop_closed"
	EventShopSlotCompleted EventKind = "shop_slot_completed"
	EventGameOver          EventKind = "game_over"
)

// Event is emitted by Tick for whoever consumes the game's progress.
// Only the fields relevant to Kind are set.
type Event struct {
	Kind    EventKind
	Lines   int
	Score   int
	Level   int
	Gravity time.Duration
	Shape   Shape
}

// Sink receives the events of a running Game.
type Sink interface {
	Emit(Event)
}

type nopSink struct{}

func (nopSink) Emit(Event) {}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(Event)

func (f SinkFunc) Emit(e Event) { f(e) }

// MultiSink fans every event out to all the sinks.
type MultiSink []Sink

func (m MultiSink) Emit(e Event) {
	for _, s := range m {
		s.Emit(e)
	}
}
