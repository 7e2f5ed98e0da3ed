package client

import (
	"context"
	"io"
	"log"
	"log/slog"
	"net"
	"sync"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"

	"shoptris/proto"
	"shoptris/server"
	"shoptris/tetris"
)

type watched struct {
	session string
	event   tetris.Event
}

func TestPublishAndWatch(t *testing.T) {
	fc, closer := testFeed()
	defer closer()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	gotCh := make(chan watched, 10)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		err := Watch(ctx, fc, func(session string, e tetris.Event) {
			gotCh <- watched{session: session, event: e}
		})
		if err != nil {
			t.Errorf("unexpected watch error: %v", err)
		}
	}()
	// the subscriber has to be registered before events are published.
	time.Sleep(50 * time.Millisecond)

	p, err := newPublisher(fc, logger)
	if err != nil {
		t.Fatalf("unable to create publisher: %v", err)
	}
	var sink tetris.Sink = p
	sent := []tetris.Event{
		{Kind: tetris.EventLinesCleared, Lines: 2},
		{Kind: tetris.EventShopSlotCompleted, Shape: tetris.O},
		{Kind: tetris.EventGameOver, Score: 200, Lines: 2},
	}
	for _, e := range sent {
		sink.Emit(e)
	}
	if err := p.Close(); err != nil {
		t.Errorf("unexpected close error: %v", err)
	}
	p.Emit(tetris.Event{Kind: tetris.EventGameOver})

	for _, want := range sent {
		select {
		case got := <-gotCh:
			if got.session != p.Session() {
				t.Errorf("wanted session %q, got %q", p.Session(), got.session)
			}
			if got.event != want {
				t.Errorf("wanted %+v, got %+v", want, got.event)
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for %v", want.Kind)
		}
	}

	cancel()
	wg.Wait()
	select {
	case got := <-gotCh:
		t.Errorf("wanted events after close to be dropped, got %+v", got)
	default:
	}
}

func testFeed() (proto.FeedClient, func()) {
	lis := bufconn.Listen(1024 * 1024)
	s := grpc.NewServer()
	proto.RegisterFeedServer(s, server.New(slog.New(slog.NewTextHandler(io.Discard, nil))))
	go func() {
		if err := s.Serve(lis); err != nil {
			log.Printf("unable to serve: %v", err)
		}
	}()

	conn, err := grpc.NewClient("passthrough:///bufnet", grpc.WithContextDialer(func(context.Context, string) (net.Conn, error) {
		return lis.Dial()
	}), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		log.Printf("error connecting to server: %v", err)
	}

	return proto.NewFeedClient(conn), func() {
		conn.Close() //nolint: errcheck
		lis.Close()  //nolint: errcheck
		s.Stop()
	}
}
