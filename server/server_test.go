package server

import (
	"context"
	"io"
	"log"
	"log/slog"
	"net"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"shoptris/proto"
	"shoptris/tetris"
)

func TestFeed(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	client, srv, closer := testServer()
	defer closer()

	sub, err := client.Subscribe(ctx, &emptypb.Empty{})
	if err != nil {
		t.Fatalf("error calling Subscribe: %v", err)
	}
	waitForSubscribers(t, srv, 1)

	pub, err := client.Publish(ctx)
	if err != nil {
		t.Fatalf("error calling Publish: %v", err)
	}
	sent := []tetris.Event{
		{Kind: tetris.EventLinesCleared, Lines: 1},
		{Kind: tetris.EventScoreChanged, Score: 100},
		{Kind: tetris.EventGameOver, Score: 100, Lines: 1},
	}
	for _, e := range sent {
		msg, err := proto.EncodeEvent("player-1", e)
		if err != nil {
			t.Fatalf("error encoding event: %v", err)
		}
		if err := pub.Send(msg); err != nil {
			t.Fatalf("error sending event: %v", err)
		}
	}
	if _, err := pub.CloseAndRecv(); err != nil {
		t.Errorf("error closing publish stream: %v", err)
	}

	for _, want := range sent {
		msg, err := sub.Recv()
		if err != nil {
			t.Fatalf("error receiving event: %v", err)
		}
		session, got, err := proto.DecodeEvent(msg)
		if err != nil {
			t.Fatalf("error decoding event: %v", err)
		}
		if session != "player-1" {
			t.Errorf("expected session player-1, got %q", session)
		}
		if got != want {
			t.Errorf("expected %+v, got %+v", want, got)
		}
	}
}

func TestFeedAssignsSession(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	client, srv, closer := testServer()
	defer closer()

	sub, err := client.Subscribe(ctx, &emptypb.Empty{})
	if err != nil {
		t.Fatalf("error calling Subscribe: %v", err)
	}
	waitForSubscribers(t, srv, 1)

	pub, err := client.Publish(ctx)
	if err != nil {
		t.Fatalf("error calling Publish: %v", err)
	}
	for range 2 {
		msg, _ := proto.EncodeEvent("", tetris.Event{Kind: tetris.EventShopOpened, Level: 3})
		if err := pub.Send(msg); err != nil {
			t.Fatalf("error sending event: %v", err)
		}
	}

	var sessions []string
	for range 2 {
		msg, err := sub.Recv()
		if err != nil {
			t.Fatalf("error receiving event: %v", err)
		}
		session, _, _ := proto.DecodeEvent(msg)
		sessions = append(sessions, session)
	}
	if sessions[0] == "" || sessions[0] != sessions[1] {
		t.Errorf("expected one generated session for the stream, got %q", sessions)
	}
}

func TestFeedRejectsMalformedEvents(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	client, _, closer := testServer()
	defer closer()

	pub, err := client.Publish(ctx)
	if err != nil {
		t.Fatalf("error calling Publish: %v", err)
	}
	msg, _ := structpb.NewStruct(map[string]any{proto.FieldKind: "teleport"})
	if err := pub.Send(msg); err != nil && err != io.EOF {
		t.Fatalf("error sending event: %v", err)
	}
	_, err = pub.CloseAndRecv()
	if status.Code(err) != codes.InvalidArgument {
		t.Errorf("expected InvalidArgument, got %v", err)
	}
}

func TestSubscriberLeaves(t *testing.T) {
	client, srv, closer := testServer()
	defer closer()

	ctx, cancel := context.WithCancel(context.Background())
	if _, err := client.Subscribe(ctx, &emptypb.Empty{}); err != nil {
		t.Fatalf("error calling Subscribe: %v", err)
	}
	waitForSubscribers(t, srv, 1)
	cancel()
	waitForSubscribers(t, srv, 0)
}

func waitForSubscribers(t *testing.T, srv *feedServer, n int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for srv.subscriberCount() != n {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %d subscribers, got %d", n, srv.subscriberCount())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func testServer() (proto.FeedClient, *feedServer, func()) {
	buffer := 101024 * 1024
	lis := bufconn.Listen(buffer)

	s := grpc.NewServer()
	srv := New(slog.New(slog.NewTextHandler(io.Discard, nil))).(*feedServer)
	proto.RegisterFeedServer(s, srv)
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

	closer := func() {
		if err := conn.Close(); err != nil {
			log.Printf("error closing connection: %v", err)
		}
		if err := lis.Close(); err != nil {
			log.Printf("error closing listener: %v", err)
		}
		s.Stop()
	}

	return proto.NewFeedClient(conn), srv, closer
}
