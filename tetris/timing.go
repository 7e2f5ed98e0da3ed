package tetris

import (
	"slices"
	"time"
)

type LockState int

const (
	Falling LockState = iota
	LockPending
)

// repeatable are the actions that keep acting while held, subject to DAS and ARR.
var repeatable = []Action{MoveLeft, MoveRight, SoftDrop}

type keyState struct {
	held       bool
	dasElapsed bool
	since      time.Time // key down
	last       time.Time // last move
}

type timers struct {
	keys         map[Action]*keyState
	lastGravity  time.Time
	lockStart    time.Time // zero when not running
	pendingReset bool
	state        LockState
}

func newTimers() timers {
	keys := make(map[Action]*keyState, len(repeatable))
	for _, a := range repeatable {
		keys[a] = &keyState{}
	}
	return timers{keys: keys}
}

// reset restarts the piece scoped timers. Held keys stay held but have to
// charge DAS again.
func (tm *timers) reset(now time.Time) {
	tm.lastGravity = now
	tm.lockStart = time.Time{}
	tm.pendingReset = false
	tm.state = Falling
	for _, k := range tm.keys {
		k.dasElapsed = false
		k.since, k.last = now, now
	}
}

// repeatKeys runs the initial move of every key that went down and the
// auto repeat of every key that is still held.
func (t *Tetris) repeatKeys(now time.Time, in Input) {
	for _, a := range repeatable {
		k := t.timers.keys[a]
		down := in.Held[a]
		tapped := slices.Contains(in.Pressed, a)
		switch {
		case !k.held && (down || tapped):
			t.do(now, a)
			k.held = down
			k.dasElapsed = false
			k.since, k.last = now, now
		case k.held && !down:
			k.held = false
			k.dasElapsed = false
		case k.held:
			if !k.dasElapsed && now.Sub(k.since) >= t.opts.DAS {
				k.dasElapsed = true
			}
			if k.dasElapsed && now.Sub(k.last) >= t.opts.ARR {
				t.do(now, a)
				k.last = now
			}
		}
	}
}

func (t *Tetris) do(now time.Time, a Action) {
	switch a {
	case MoveLeft:
		t.shift(-1)
	case MoveRight:
		t.shift(1)
	case SoftDrop:
		t.fall(now)
	}
}

// shift moves the piece sideways. A successful move postpones locking.
func (t *Tetris) shift(dx int) bool {
	if !t.board.CanPlace(t.piece, dx, 0) {
		return false
	}
	t.piece.X += dx
	t.timers.pendingReset = true
	return true
}

func (t *Tetris) rotate(d Direction) bool {
	if !Rotate(t.board, t.piece, d) {
		return false
	}
	t.timers.pendingReset = true
	return true
}

// fall moves the piece one row down. When it's blocked the piece is grounded
// and the lock timer starts if it isn't running yet.
func (t *Tetris) fall(now time.Time) bool {
	if t.board.CanPlace(t.piece, 0, 1) {
		t.piece.Y++
		t.timers.state = Falling
		t.timers.lockStart = time.Time{}
		return true
	}
	t.timers.state = LockPending
	if t.timers.lockStart.IsZero() {
		t.timers.lockStart = now
	}
	return false
}

func (t *Tetris) gravityStep(now time.Time) {
	if now.Sub(t.timers.lastGravity) >= t.gravity() {
		t.timers.lastGravity = now
		t.fall(now)
	}
}

// lockDue consumes any pending reset and reports whether the grounded piece
// has to lock now.
func (t *Tetris) lockDue(now time.Time) bool {
	tm := &t.timers
	reset := tm.pendingReset
	tm.pendingReset = false
	if tm.state != LockPending {
		return false
	}
	if t.board.CanPlace(t.piece, 0, 1) {
		tm.state = Falling
		tm.lockStart = time.Time{}
		return false
	}
	if reset {
		tm.lockStart = now
		return false
	}
	return now.Sub(tm.lockStart) >= t.opts.LockDelay
}

// gravity is the interval in use: pinned while the shop is open.
func (t *Tetris) gravity() time.Duration {
	if t.shop.active {
		return t.opts.ShopGravity
	}
	return t.progress.Gravity
}
