// Package tetris contains the logic of the game: a guideline style falling
// block engine with a shop played on an extra region of the board.
// Based on https://tetris.wiki/Tetris_Guideline
package tetris

import (
	"math/rand/v2"
	"sync"
	"time"
)

type Action string

const (
	MoveLeft  Action = "left"      // Moves the Tetromino one step to the left while held.
	MoveRight Action = "right"     // Moves the Tetromino one step to the right while held.
	SoftDrop  Action = "down"      // Moves the Tetromino one step down while held.
	HardDrop  Action = "drop"      // Drops the Tetromino down the stack and locks it.
	RotateCW  Action = "rotatecw"  // Rotates the Tetromino clockwise.
	RotateCCW Action = "rotateccw" // Rotates the Tetromino counter-clockwise.
	Hold      Action = "hold"      // Swaps the Tetromino with the held one.
)

// Input is what the player is doing during a tick. Held keeps the state of
// the repeatable actions, Pressed the actions that went down since the
// previous tick.
type Input struct {
	Held    map[Action]bool
	Pressed []Action
}

type Options struct {
	Width, Height, ShopWidth int

	ARR, DAS, LockDelay time.Duration
	Gravity             time.Duration
	ShopGravity         time.Duration

	ShopLevels     []int
	ShopSlots      int
	ShopBandTop    int
	ShopBandBottom int

	// Rand drives the bag and the shop. A random source is used when nil.
	Rand *rand.Rand
}

func DefaultOptions() Options {
	return Options{
		Width:          10,
		Height:         20,
		ShopWidth:      20,
		ARR:            50 * time.Millisecond,
		DAS:            150 * time.Millisecond,
		LockDelay:      500 * time.Millisecond,
		Gravity:        500 * time.Millisecond,
		ShopGravity:    time.Second,
		ShopLevels:     []int{3, 6, 9},
		ShopSlots:      3,
		ShopBandTop:    4,
		ShopBandBottom: 8,
	}
}

// Tetris is the whole state of one game. It's not safe for concurrent use;
// Game serializes access to it.
type Tetris struct {
	opts     Options
	board    *Board
	piece    *Tetromino
	next     Shape
	held     Shape
	canHold  bool
	bag      *bag
	timers   timers
	progress *Progression
	shop     *shop
	gameOver bool
	started  bool

	mu sync.RWMutex
}

func New(o Options) *Tetris {
	rng := o.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	t := &Tetris{
		opts:     o,
		board:    NewBoard(o.Width, o.Height, o.ShopWidth),
		bag:      newBag(rng),
		timers:   newTimers(),
		progress: newProgression(o.Gravity),
		shop:     newShop(&o, rng),
		canHold:  true,
	}
	t.shop.update(t.board, t.progress.Level)
	t.next = t.bag.draw()
	t.spawn(t.bag.draw(), time.Time{})
	return t
}

// Tick advances the game to now. It returns the events the tick produced.
// Once the game is over Tick does nothing.
func (t *Tetris) Tick(now time.Time, in Input) []Event {
	if t.gameOver {
		return nil
	}
	if !t.started {
		t.started = true
		t.timers.reset(now)
	}

	var events []Event
	for _, a := range in.Pressed {
		switch a {
		case RotateCW:
			t.rotate(Clockwise)
		case RotateCCW:
			t.rotate(CounterClockwise)
		case Hold:
			events = append(events, t.hold(now)...)
		case HardDrop:
			t.piece.Y += t.board.DropDistance(t.piece)
			events = append(events, t.lock(now)...)
		}
		if t.gameOver {
			return events
		}
	}

	t.repeatKeys(now, in)
	t.gravityStep(now)
	if t.lockDue(now) {
		events = append(events, t.lock(now)...)
	}
	return events
}

// spawn puts a new piece of shape s at its spawn location and reports
// whether it fits.
func (t *Tetris) spawn(s Shape, now time.Time) bool {
	t.piece = newTetromino(s, t.opts.Width)
	t.timers.reset(now)
	return t.board.CanPlace(t.piece, 0, 0)
}

func (t *Tetris) hold(now time.Time) []Event {
	if !t.canHold {
		return nil
	}
	current := t.piece.Shape
	next := t.held
	if next == "" {
		next = t.next
		t.next = t.bag.draw()
	}
	t.held = current
	t.canHold = false
	if !t.spawn(next, now) {
		return t.over()
	}
	return nil
}

// lock settles the piece, clears lines, updates the progression and the
// shop, and spawns the next piece.
func (t *Tetris) lock(now time.Time) []Event {
	var events []Event
	t.board.Stamp(t.piece)
	t.piece = nil

	for _, s := range t.shop.onPieceLocked(t.board) {
		events = append(events, Event{Kind: EventShopSlotCompleted, Shape: s})
	}

	if n := t.board.ClearFullRows(); n > 0 {
		level, gravity := t.progress.Level, t.gravity()
		t.progress.OnLinesCleared(n)
		events = append(events,
			Event{Kind: EventLinesCleared, Lines: n},
			Event{Kind: EventScoreChanged, Score: t.progress.Score},
		)
		if t.progress.Level != level {
			events = append(events, Event{Kind: EventLevelChanged, Level: t.progress.Level})
		}
		if t.shop.update(t.board, t.progress.Level) {
			kind := EventShopClosed
			if t.shop.active {
				kind = EventShopOpened
			}
			events = append(events, Event{Kind: kind, Level: t.progress.Level})
		}
		if g := t.gravity(); g != gravity {
			events = append(events, Event{Kind: EventGravityChanged, Gravity: g})
		}
	}

	if t.board.topOccupied() {
		return append(events, t.over()...)
	}
	shape := t.next
	t.next = t.bag.draw()
	t.canHold = true
	if !t.spawn(shape, now) {
		return append(events, t.over()...)
	}
	return events
}

func (t *Tetris) over() []Event {
	t.gameOver = true
	t.piece = nil
	return []Event{{Kind: EventGameOver, Score: t.progress.Score, Lines: t.progress.Lines}}
}

// Snapshot is a read only copy of everything a renderer needs.
type Snapshot struct {
	Cells                    [][]Cell
	Width, Height, ShopWidth int
	Tetromino                *Tetromino
	GhostY                   int
	Next, Held               Shape
	Lines, Score, Level      int
	Gravity                  time.Duration
	ShopOpen                 bool
	Slots                    []ShopSlot
	GameOver                 bool
}

func (t *Tetris) Snapshot() *Snapshot {
	s := &Snapshot{
		Cells:     t.board.Cells(),
		Width:     t.board.Width,
		Height:    t.board.Height,
		ShopWidth: t.board.ShopWidth,
		Tetromino: t.piece.copy(),
		Next:      t.next,
		Held:      t.held,
		Lines:     t.progress.Lines,
		Score:     t.progress.Score,
		Level:     t.progress.Level,
		Gravity:   t.gravity(),
		ShopOpen:  t.shop.active,
		Slots:     t.shop.list(),
		GameOver:  t.gameOver,
	}
	if t.piece != nil {
		s.GhostY = t.piece.Y + t.board.DropDistance(t.piece)
	}
	return s
}

// Board returns the board of the game. Callers must not keep it across ticks.
func (t *Tetris) Board() *Board { return t.board }

func (t *Tetris) Progression() Progression { return *t.progress }

func (t *Tetris) IsGameOver() bool { return t.gameOver }

func (t *Tetris) LockState() LockState { return t.timers.state }

// ShopSlots returns a copy of the current shop slots.
func (t *Tetris) ShopSlots() []ShopSlot { return t.shop.list() }
