package tetris_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"shoptris/tetris"
)

func TestUpdateCh(t *testing.T) {
	ticker := tetris.NewMockTicker()
	game := tetris.NewConfigurableGame(ticker, &tetris.GameOptions{Options: tetris.TestOptions()})
	var at atomic.Int32
	doneCh := make(chan struct{})

	go func() {
		for {
			select {
			case <-game.UpdateCh:
				at.Add(1)
			case <-time.After(1 * time.Second):
				t.Error("Timed out waiting for update signal")
				return
			case <-doneCh:
				return
			}
		}
	}()
	game.Start()
	time.Sleep(50 * time.Millisecond)
	if at.Load() != 1 {
		t.Errorf("Expected update count to be 1, but got %d", at.Load())
	}
	ticker.Tick()
	time.Sleep(50 * time.Millisecond)
	if at.Load() != 2 {
		t.Errorf("Expected update count to be 2, but got %d", at.Load())
	}
	doneCh <- struct{}{}
}

func TestStartStop(t *testing.T) {
	ticker := tetris.NewMockTicker()
	game := tetris.NewConfigurableGame(ticker, &tetris.GameOptions{Options: tetris.TestOptions()})
	go func() {
		for range game.UpdateCh {
		}
	}()
	game.Start()
	time.Sleep(50 * time.Millisecond)
	if !ticker.IsReset() {
		t.Errorf("Expected ticker to be reset")
	}
	game.Stop()
	if !ticker.IsStop() {
		t.Errorf("Expected ticker to be stopped")
	}
	// actions after the game stopped are dropped instead of blocking
	time.Sleep(50 * time.Millisecond)
	game.Press(tetris.HardDrop)
}

type recorder struct {
	mu     sync.Mutex
	events []tetris.Event
}

func (r *recorder) Emit(e tetris.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) kinds() []tetris.EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	var k []tetris.EventKind
	for _, e := range r.events {
		k = append(k, e.Kind)
	}
	return k
}

func TestGameActions(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("a hard drop is applied on the next tick", func(t *testing.T) {
		tt := tetris.NewTestTetris(tetris.I)
		game, ticker := tetris.NewTestGame(tt, nil)
		defer game.Stop()

		game.Press(tetris.HardDrop)
		go ticker.TickAt(now)
		s := <-game.UpdateCh
		for x := 3; x < 7; x++ {
			if s.Cells[19][x] != tetris.Locked {
				t.Errorf("wanted column %d of the floor to be locked", x)
			}
		}
		if s.Tetromino == nil || s.Tetromino.Y != -1 {
			t.Errorf("wanted a new piece at its spawn, got %+v", s.Tetromino)
		}
	})

	t.Run("holding a key repeats it until released", func(t *testing.T) {
		tt := tetris.NewTestTetris(tetris.O)
		game, ticker := tetris.NewTestGame(tt, nil)
		defer game.Stop()

		game.Press(tetris.MoveLeft)
		go ticker.TickAt(now)
		if s := <-game.UpdateCh; s.Tetromino.X != 3 {
			t.Fatalf("wanted X 3, got %d", s.Tetromino.X)
		}
		go ticker.TickAt(now.Add(200 * time.Millisecond))
		if s := <-game.UpdateCh; s.Tetromino.X != 2 {
			t.Fatalf("wanted X 2, got %d", s.Tetromino.X)
		}
		game.Release(tetris.MoveLeft)
		go ticker.TickAt(now.Add(400 * time.Millisecond))
		if s := <-game.UpdateCh; s.Tetromino.X != 2 {
			t.Errorf("wanted the piece to stop at X 2, got %d", s.Tetromino.X)
		}
	})

	t.Run("game over reaches the sink and stops the ticker", func(t *testing.T) {
		tt := tetris.NewTestTetris(tetris.I)
		tt.Board().SetCell(0, 1, tetris.Locked)
		rec := &recorder{}
		game, ticker := tetris.NewTestGame(tt, rec)

		game.Press(tetris.HardDrop)
		go ticker.TickAt(now)
		s := <-game.UpdateCh
		if !s.GameOver {
			t.Error("wanted the snapshot to report game over")
		}
		if k := rec.kinds(); len(k) != 1 || k[0] != tetris.EventGameOver {
			t.Errorf("wanted a single game over event, got %v", k)
		}
		time.Sleep(50 * time.Millisecond)
		if !ticker.IsStop() {
			t.Error("wanted the ticker to be stopped")
		}
		game.Press(tetris.HardDrop)
	})
}

func TestRestartWhilePressing(t *testing.T) {
	ticker := tetris.NewMockTicker()
	game := tetris.NewConfigurableGame(ticker, &tetris.GameOptions{Options: tetris.TestOptions()})
	go func() {
		for range game.UpdateCh {
		}
	}()

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
				game.Press(tetris.MoveLeft)
				game.Release(tetris.MoveLeft)
			}
		}
	}()

	for range 3 {
		game.Start()
		time.Sleep(10 * time.Millisecond)
		if s := game.Read(); s.GameOver {
			t.Error("wanted a fresh game after each start")
		}
		game.Stop()
	}
	close(done)
	wg.Wait()
}

func TestMultiSink(t *testing.T) {
	rec := &recorder{}
	var shapes []tetris.Shape
	sink := tetris.MultiSink{rec, tetris.SinkFunc(func(e tetris.Event) {
		shapes = append(shapes, e.Shape)
	})}

	sink.Emit(tetris.Event{Kind: tetris.EventShopSlotCompleted, Shape: tetris.T})
	if k := rec.kinds(); len(k) != 1 || k[0] != tetris.EventShopSlotCompleted {
		t.Errorf("wanted the recorder to get the event, got %v", k)
	}
	if len(shapes) != 1 || shapes[0] != tetris.T {
		t.Errorf("wanted the func to get the event, got %v", shapes)
	}
}
