package tetris

import (
	"io"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"
)

// MockTicker is a mock implementation of the ticker interface.
type MockTicker struct {
	ch          chan time.Time
	stop, reset bool
	mu          sync.Mutex
}

func NewMockTicker() *MockTicker           { return &MockTicker{ch: make(chan time.Time)} }
func (m *MockTicker) C() <-chan time.Time  { return m.ch }
func (m *MockTicker) Tick()                { m.ch <- time.Now() }
func (m *MockTicker) TickAt(now time.Time) { m.ch <- now }
func (m *MockTicker) Reset(time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reset = true
}
func (m *MockTicker) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stop = true
}
func (m *MockTicker) IsReset() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reset
}
func (m *MockTicker) IsStop() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stop
}

// TestOptions returns the default options with a seeded random source.
func TestOptions() Options {
	o := DefaultOptions()
	o.Rand = rand.New(rand.NewPCG(1, 2))
	return o
}

// NewTestGame creates a game around a specific TestTetris and returns it with
// a manual ticker. The game is already listening.
func NewTestGame(t *Tetris, sink Sink) (*Game, *MockTicker) {
	ticker := NewMockTicker()
	if sink == nil {
		sink = nopSink{}
	}
	g := &Game{
		UpdateCh: make(chan *Snapshot),
		actionCh: make(chan command),
		doneCh:   make(chan bool, 1),
		quitCh:   make(chan struct{}),
		tetris:   t,
		options:  t.opts,
		ticker:   ticker,
		tick:     DefaultTick,
		sink:     sink,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	go g.listen(t, g.quitCh)
	return g, ticker
}

// NewTestTetris creates a game on an empty board whose current and next
// tetromino have the given shape.
func NewTestTetris(shape Shape) *Tetris {
	t := New(TestOptions())
	t.piece = newTetromino(shape, t.opts.Width)
	t.next = shape
	return t
}
