// Package config loads the settings of the game client and the feed server
// from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"shoptris/tetris"
)

// Prefix is prepended to every variable name.
const Prefix = "SHOPTRIS_"

type Config struct {
	Width       int           `env:"WIDTH" envDefault:"10"`
	Height      int           `env:"HEIGHT" envDefault:"20"`
	ShopWidth   int           `env:"SHOP_WIDTH" envDefault:"20"`
	ARR         time.Duration `env:"ARR" envDefault:"50ms"`
	DAS         time.Duration `env:"DAS" envDefault:"150ms"`
	LockDelay   time.Duration `env:"LOCK_DELAY" envDefault:"500ms"`
	Gravity     time.Duration `env:"GRAVITY" envDefault:"500ms"`
	ShopGravity time.Duration `env:"SHOP_GRAVITY" envDefault:"1s"`
	ShopLevels  []int         `env:"SHOP_LEVELS" envDefault:"3,6,9"`
	ShopSlots   int           `env:"SHOP_SLOTS" envDefault:"3"`
	Tick        time.Duration `env:"TICK" envDefault:"16ms"`

	// FeedAddr is the event feed the client publishes to. Empty disables it.
	FeedAddr   string     `env:"FEED_ADDR"`
	ListenAddr string     `env:"LISTEN_ADDR" envDefault:":9000"`
	LogLevel   slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	LogFile    string     `env:"LOG_FILE" envDefault:"shoptris.log"`
	NoGhost    bool       `env:"NO_GHOST"`
}

// Load reads the optional dotenv files, .env when none is given, and parses
// the environment.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading dotenv: %w", err)
	}
	cfg, err := env.ParseAsWithOptions[Config](env.Options{Prefix: Prefix})
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	for name, v := range map[string]int{"width": c.Width, "height": c.Height} {
		if v <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %d", name, v))
		}
	}
	if c.Height <= tetris.BufferRows {
		errs = append(errs, fmt.Errorf("height must leave room under the %d buffer rows, got %d", tetris.BufferRows, c.Height))
	}
	if c.ShopWidth < 0 || c.ShopSlots < 0 {
		errs = append(errs, errors.New("shop width and slots can't be negative"))
	}
	for name, d := range map[string]time.Duration{
		"gravity":      c.Gravity,
		"shop gravity": c.ShopGravity,
		"tick":         c.Tick,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %v", name, d))
		}
	}
	if c.ARR < 0 || c.DAS < 0 || c.LockDelay < 0 {
		errs = append(errs, errors.New("key and lock timings can't be negative"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Options returns the engine options for this configuration.
func (c *Config) Options() tetris.Options {
	o := tetris.DefaultOptions()
	o.Width, o.Height, o.ShopWidth = c.Width, c.Height, c.ShopWidth
	o.ARR, o.DAS, o.LockDelay = c.ARR, c.DAS, c.LockDelay
	o.Gravity, o.ShopGravity = c.Gravity, c.ShopGravity
	o.ShopLevels = c.ShopLevels
	o.ShopSlots = c.ShopSlots
	return o
}

// GameOptions returns the runner options for this configuration.
func (c *Config) GameOptions(sink tetris.Sink, logger *slog.Logger) *tetris.GameOptions {
	return &tetris.GameOptions{
		Options: c.Options(),
		Tick:    c.Tick,
		Sink:    sink,
		Logger:  logger,
	}
}
