package main

import (
	"log"
	"log/slog"
	"os"

	"shoptris/client"
	"shoptris/config"
	"shoptris/tetris"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("unable to load config: %v", err)
	}

	// stdout is the game screen, logs go to a file.
	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.Fatalf("unable to open log file: %v", err)
	}
	defer f.Close()
	logger := slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{Level: cfg.LogLevel}))

	sink := tetris.MultiSink{tetris.SinkFunc(func(e tetris.Event) { logMilestone(logger, e) })}
	if cfg.FeedAddr != "" {
		p, err := client.NewPublisher(cfg.FeedAddr, logger)
		if err != nil {
			log.Fatalf("unable to connect to the event feed: %v", err)
		}
		defer func() {
			if err := p.Close(); err != nil {
				logger.Error("unable to close publisher", slog.String("error", err.Error()))
			}
		}()
		logger.Info("publishing to the event feed", slog.String("addr", cfg.FeedAddr), slog.String("session", p.Session()))
		sink = append(sink, p)
	}

	c, err := client.New(logger, &client.Options{
		NoGhost: cfg.NoGhost,
		Game:    cfg.GameOptions(sink, logger),
	})
	if err != nil {
		log.Fatalf("unable to start client: %v", err)
	}
	defer c.Close()

	c.Start()
}

// logMilestone records the events that change the course of a game.
func logMilestone(l *slog.Logger, e tetris.Event) {
	switch e.Kind {
	case tetris.EventLevelChanged, tetris.EventShopOpened, tetris.EventShopClosed:
		l.Info("level milestone", slog.String("kind", string(e.Kind)), slog.Int("level", e.Level))
	case tetris.EventShopSlotCompleted:
		l.Info("shop slot completed", slog.String("shape", string(e.Shape)))
	}
}
