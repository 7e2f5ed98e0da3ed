package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"shoptris/client"
	"shoptris/config"
	"shoptris/proto"
	"shoptris/tetris"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	addr := cfg.FeedAddr
	if addr == "" {
		addr = "localhost" + cfg.ListenAddr
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))

	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		log.Fatalf("unable to create gRPC client: %v", err)
	}
	defer conn.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Info("watching the event feed", slog.String("addr", addr))
	err = client.Watch(ctx, proto.NewFeedClient(conn), func(session string, e tetris.Event) {
		logger.Info(string(e.Kind),
			slog.String("session", session),
			slog.Int("lines", e.Lines),
			slog.Int("score", e.Score),
			slog.Int("level", e.Level),
			slog.Duration("gravity", e.Gravity),
			slog.String("shape", string(e.Shape)),
		)
	})
	if err != nil {
		log.Fatalf("watch failed: %v", err)
	}
}
