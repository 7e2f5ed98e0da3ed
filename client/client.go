package client

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/eiannone/keyboard"

	"shoptris/tetris"
)

// DefaultReleaseAfter is how long a key counts as held after its last key
// event. Terminals only report key presses and their auto repeat, never the
// release, so a key is released once its events stop. It's kept under the
// DAS so taps don't repeat.
const DefaultReleaseAfter = 100 * time.Millisecond

type tetrisGame interface {
	Start()
	Stop()
	GetUpdate() <-chan *tetris.Snapshot
	Press(tetris.Action)
	Release(tetris.Action)
}

type renderer interface {
	local(*tetris.Snapshot)
	lobby([]string)
	reset()
}

type Client struct {
	tetris  tetrisGame
	render  renderer
	options *Options
	logger  *slog.Logger
	kbCh    <-chan keyboard.KeyEvent
	lobby   atomic.Bool

	held map[tetris.Action]*heldKey
	mu   sync.Mutex
}

type heldKey struct {
	timer *time.Timer
	last  time.Time // last key event
}

type Options struct {
	NoGhost      bool
	ReleaseAfter time.Duration
	Game         *tetris.GameOptions
}

func New(l *slog.Logger, o *Options) (*Client, error) {
	r, err := newRender(l, o.NoGhost)
	if err != nil {
		return nil, fmt.Errorf("failed to load renderer: %w", err)
	}
	kb, err := keyboard.GetKeys(20)
	if err != nil {
		return nil, fmt.Errorf("failed to open keyboard: %w", err)
	}
	return newClient(tetris.NewGame(o.Game), r, kb, l, o), nil
}

func newClient(g tetrisGame, r renderer, kb <-chan keyboard.KeyEvent, l *slog.Logger, o *Options) *Client {
	if o.ReleaseAfter <= 0 {
		o.ReleaseAfter = DefaultReleaseAfter
	}
	c := &Client{
		tetris:  g,
		render:  r,
		options: o,
		logger:  l,
		kbCh:    kb,
		held:    make(map[tetris.Action]*heldKey),
	}
	c.lobby.Store(true)
	return c
}

// Start shows the lobby and handles the keyboard until the player quits.
func (c *Client) Start() {
	c.render.reset()
	c.render.lobby(defaultLobby())
	c.listenKB()
}

// Close restores the terminal.
func (c *Client) Close() {
	fmt.Print(clearScreen + resetPos + showCursor)
	if err := keyboard.Close(); err != nil {
		c.logger.Error("unable to close keyboard", slog.String("error", err.Error()))
	}
}

func (c *Client) listenKB() {
	for {
		event, ok := <-c.kbCh
		if !ok {
			c.logger.Error("Keyboard events channel closed unexpectedly")
			return
		}
		if event.Err != nil {
			c.logger.Error("keysEvents error", slog.String("error", event.Err.Error()))
			return
		}
		if event.Key == keyboard.KeyCtrlC {
			return
		}
		if c.lobby.Load() {
			switch event.Rune {
			case 'p':
				c.lobby.Store(false)
				go c.listenTetris()
			case 'q':
				return
			}
			continue
		}
		if a, ok := action(event); ok {
			c.act(a)
		}
	}
}

// action maps a key to the game action it triggers.
func action(e keyboard.KeyEvent) (tetris.Action, bool) {
	switch {
	case e.Key == keyboard.KeyArrowDown || e.Rune == 's':
		return tetris.SoftDrop, true
	case e.Key == keyboard.KeyArrowLeft || e.Rune == 'a':
		return tetris.MoveLeft, true
	case e.Key == keyboard.KeyArrowRight || e.Rune == 'd':
		return tetris.MoveRight, true
	case e.Key == keyboard.KeyArrowUp || e.Rune == 'e':
		return tetris.RotateCW, true
	case e.Rune == 'q':
		return tetris.RotateCCW, true
	case e.Key == keyboard.KeySpace:
		return tetris.HardDrop, true
	case e.Rune == 'c':
		return tetris.Hold, true
	}
	return "", false
}

// act presses a. Moves stay held until their key events stop.
func (c *Client) act(a tetris.Action) {
	c.tetris.Press(a)
	switch a {
	case tetris.MoveLeft, tetris.MoveRight, tetris.SoftDrop:
	default:
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if k, ok := c.held[a]; ok {
		k.last = time.Now()
		return
	}
	c.held[a] = &heldKey{
		timer: time.AfterFunc(c.options.ReleaseAfter, func() { c.expire(a) }),
		last:  time.Now(),
	}
}

// expire releases a once no key event arrived for ReleaseAfter.
func (c *Client) expire(a tetris.Action) {
	c.mu.Lock()
	k := c.held[a]
	if wait := c.options.ReleaseAfter - time.Since(k.last); wait > 0 {
		k.timer.Reset(wait)
		c.mu.Unlock()
		return
	}
	delete(c.held, a)
	c.mu.Unlock()
	c.tetris.Release(a)
}

func (c *Client) listenTetris() {
	c.render.reset()
	go c.tetris.Start()
	for u := range c.tetris.GetUpdate() {
		c.render.local(u)
		if u.GameOver {
			c.logger.Info("game over", slog.Int("score", u.Score), slog.Int("lines", u.Lines))
			c.lobby.Store(true)
			return
		}
	}
}
