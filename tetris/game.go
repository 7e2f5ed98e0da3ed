package tetris

import (
	"io"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"
)

type Ticker interface {
	C() <-chan time.Time
	Reset(time.Duration)
	Stop()
}

type wrappedTicker struct {
	ticker *time.Ticker
}

func newWrappedTicker(d time.Duration) *wrappedTicker {
	return &wrappedTicker{ticker: time.NewTicker(d)}
}

func (t *wrappedTicker) C() <-chan time.Time   { return t.ticker.C }
func (t *wrappedTicker) Stop()                 { t.ticker.Stop() }
func (t *wrappedTicker) Reset(d time.Duration) { t.ticker.Reset(d) }

// DefaultTick is the period of the game loop, about 60 ticks per second.
const DefaultTick = 16 * time.Millisecond

type command struct {
	action Action
	down   bool
}

// Game runs a Tetris in its own goroutine: every tick of the ticker
// advances it with the actions received in between.
type Game struct {
	UpdateCh chan *Snapshot

	actionCh chan command
	doneCh   chan bool
	options  Options
	ticker   Ticker
	tick     time.Duration
	sink     Sink
	logger   *slog.Logger

	// mu guards the running game and its quit channel, both swapped by Start.
	mu     sync.Mutex
	quitCh chan struct{}
	tetris *Tetris
}

type GameOptions struct {
	Options Options
	Tick    time.Duration
	Sink    Sink
	Logger  *slog.Logger
}

func NewGame(o *GameOptions) *Game {
	tick := o.Tick
	if tick <= 0 {
		tick = DefaultTick
	}
	return NewConfigurableGame(newWrappedTicker(tick), o)
}

func NewConfigurableGame(ticker Ticker, o *GameOptions) *Game {
	g := &Game{
		UpdateCh: make(chan *Snapshot),
		actionCh: make(chan command),
		doneCh:   make(chan bool, 1),
		options:  o.Options,
		ticker:   ticker,
		tick:     o.Tick,
		sink:     o.Sink,
		logger:   o.Logger,
	}
	if g.tick <= 0 {
		g.tick = DefaultTick
	}
	if g.sink == nil {
		g.sink = nopSink{}
	}
	if g.logger == nil {
		g.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	g.tetris = New(g.options)
	return g
}

// Start resets the game and runs it until it's over or Stop is called.
func (g *Game) Start() {
	t, quit := New(g.options), make(chan struct{})
	g.mu.Lock()
	g.tetris, g.quitCh = t, quit
	g.mu.Unlock()
	select {
	case <-g.doneCh:
	default:
	}
	g.update()
	g.ticker.Reset(g.tick)
	go g.listen(t, quit)
}

// Stop ends the running game and waits for its loop to return.
func (g *Game) Stop() {
	g.ticker.Stop()
	g.mu.Lock()
	quit := g.quitCh
	g.mu.Unlock()
	if quit == nil {
		return
	}
	select {
	case g.doneCh <- true:
	default:
	}
	<-quit
}

// Press signals that the action's key went down.
func (g *Game) Press(a Action) { g.send(command{action: a, down: true}) }

// Release signals that the action's key went up.
func (g *Game) Release(a Action) { g.send(command{action: a}) }

// send drops the command when the game isn't running.
func (g *Game) send(c command) {
	g.mu.Lock()
	quit := g.quitCh
	g.mu.Unlock()
	if quit == nil {
		return
	}
	select {
	case g.actionCh <- c:
	case <-quit:
	}
}

func (g *Game) GetUpdate() <-chan *Snapshot { return g.UpdateCh }

// Read returns a copy of the current game that's safe to read concurrently.
func (g *Game) Read() *Snapshot {
	g.mu.Lock()
	t := g.tetris
	g.mu.Unlock()
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.Snapshot()
}

func (g *Game) listen(t *Tetris, quit chan struct{}) {
	defer close(quit)
	held := make(map[Action]bool)
	var pressed []Action
	for {
		select {
		case now := <-g.ticker.C():
			t.mu.Lock()
			events := t.Tick(now, Input{Held: maps.Clone(held), Pressed: pressed})
			pressed = nil
			over := t.IsGameOver()
			t.mu.Unlock()

			for _, e := range events {
				g.logger.Debug("game event",
					slog.String("kind", string(e.Kind)),
					slog.Int("lines", e.Lines),
					slog.Int("score", e.Score),
					slog.Int("level", e.Level),
					slog.String("shape", string(e.Shape)),
				)
				g.sink.Emit(e)
			}
			g.update()
			if over {
				g.ticker.Stop()
				return
			}
		case c := <-g.actionCh:
			if c.down && !held[c.action] {
				pressed = append(pressed, c.action)
			}
			if slices.Contains(repeatable, c.action) {
				held[c.action] = c.down
			}
		case <-g.doneCh:
			return
		}
	}
}

func (g *Game) update() {
	g.UpdateCh <- g.Read()
}

