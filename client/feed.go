package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"shoptris/proto"
	"shoptris/tetris"
)

const publishBuffer = 32

// Publisher is a tetris.Sink that streams the events of one game session to
// the event feed. Emit never blocks the game: events are dropped when the
// feed falls behind.
type Publisher struct {
	session string
	logger  *slog.Logger
	conn    *grpc.ClientConn
	stream  grpc.ClientStreamingClient[structpb.Struct, emptypb.Empty]
	cancel  context.CancelFunc

	eventsCh chan tetris.Event
	doneCh   chan struct{}
	closed   bool
	mu       sync.Mutex
}

// NewPublisher connects to the feed at addr and opens a publish stream.
func NewPublisher(addr string, l *slog.Logger) (*Publisher, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("unable to create gRPC client: %w", err)
	}
	p, err := newPublisher(proto.NewFeedClient(conn), l)
	if err != nil {
		conn.Close() //nolint: errcheck
		return nil, err
	}
	p.conn = conn
	return p, nil
}

func newPublisher(fc proto.FeedClient, l *slog.Logger) (*Publisher, error) {
	ctx, cancel := context.WithCancel(context.Background())
	stream, err := fc.Publish(ctx)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("unable to open publish stream: %w", err)
	}
	p := &Publisher{
		session:  uuid.New().String(),
		logger:   l,
		stream:   stream,
		cancel:   cancel,
		eventsCh: make(chan tetris.Event, publishBuffer),
		doneCh:   make(chan struct{}),
	}
	go p.run()
	return p, nil
}

func (p *Publisher) Session() string { return p.session }

func (p *Publisher) Emit(e tetris.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	select {
	case p.eventsCh <- e:
	default:
		p.logger.Warn("feed is behind, dropping event", slog.String("kind", string(e.Kind)))
	}
}

// Close flushes the queued events and closes the stream.
func (p *Publisher) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.eventsCh)
	p.mu.Unlock()

	<-p.doneCh
	defer p.cancel()
	var errs []error
	if _, err := p.stream.CloseAndRecv(); err != nil {
		errs = append(errs, fmt.Errorf("closing publish stream: %w", err))
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing gRPC client: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (p *Publisher) run() {
	defer close(p.doneCh)
	for e := range p.eventsCh {
		msg, err := proto.EncodeEvent(p.session, e)
		if err != nil {
			p.logger.Error("unable to encode event", slog.String("error", err.Error()))
			continue
		}
		if err := p.stream.Send(msg); err != nil {
			if errors.Is(err, io.EOF) {
				// the actual error is returned by CloseAndRecv
				p.logger.Debug("publish stream closed by the feed", slog.String("msg", err.Error()))
			} else {
				p.logger.Error("unable to send event", slog.String("error", err.Error()))
			}
			for range p.eventsCh {
			}
			return
		}
	}
}

// Watch subscribes to the feed and calls fn for every event until ctx is
// done or the feed closes the stream.
func Watch(ctx context.Context, fc proto.FeedClient, fn func(session string, e tetris.Event)) error {
	stream, err := fc.Subscribe(ctx, &emptypb.Empty{})
	if err != nil {
		return fmt.Errorf("unable to subscribe to feed: %w", err)
	}
	for {
		msg, err := stream.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) || status.Code(err) == codes.Canceled {
				return nil
			}
			return fmt.Errorf("unable to receive event: %w", err)
		}
		session, e, err := proto.DecodeEvent(msg)
		if err != nil {
			return fmt.Errorf("unable to decode event: %w", err)
		}
		fn(session, e)
	}
}
