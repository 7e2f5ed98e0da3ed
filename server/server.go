package server

import (
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"shoptris/proto"
)

// subscriberBuffer is how many events a slow subscriber may fall behind
// before events are dropped for it.
const subscriberBuffer = 64

type feedServer struct {
	logger      *slog.Logger
	subscribers map[string]chan *structpb.Struct
	mu          sync.Mutex
}

// New returns an event feed that relays every published event to every
// subscriber.
func New(l *slog.Logger) proto.FeedServer {
	return &feedServer{
		logger:      l,
		subscribers: make(map[string]chan *structpb.Struct),
	}
}

func (f *feedServer) Publish(stream grpc.ClientStreamingServer[structpb.Struct, emptypb.Empty]) error {
	// sessions that don't name themselves get one per stream.
	streamSession := uuid.New().String()
	for {
		msg, err := stream.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				f.logger.Debug("publisher finished", slog.String("session", streamSession))
				return stream.SendAndClose(&emptypb.Empty{})
			}
			if status.Code(err) == codes.Canceled {
				f.logger.Debug("publisher canceled", slog.String("session", streamSession))
				return nil
			}
			return status.Errorf(codes.Internal, "receiving event: %v", err)
		}

		session, e, err := proto.DecodeEvent(msg)
		if err != nil {
			f.logger.Warn("rejected event", slog.String("session", streamSession), slog.String("error", err.Error()))
			return status.Errorf(codes.InvalidArgument, "malformed event: %v", err)
		}
		if session == "" {
			msg.Fields[proto.FieldSession] = structpb.NewStringValue(streamSession)
			session = streamSession
		}
		f.logger.Info("event",
			slog.String("session", session),
			slog.String("kind", string(e.Kind)),
		)
		f.broadcast(msg)
	}
}

func (f *feedServer) Subscribe(_ *emptypb.Empty, stream grpc.ServerStreamingServer[structpb.Struct]) error {
	id, ch := f.subscribe()
	defer f.unsubscribe(id)
	f.logger.Debug("subscriber joined", slog.String("subscriber", id))

	ctx := stream.Context()
	for {
		select {
		case <-ctx.Done():
			f.logger.Debug("subscriber left", slog.String("subscriber", id))
			return nil
		case msg := <-ch:
			if err := stream.Send(msg); err != nil {
				if status.Code(err) == codes.Canceled || errors.Is(err, io.EOF) {
					return nil
				}
				return status.Errorf(codes.Unavailable, "sending event: %v", err)
			}
		}
	}
}

func (f *feedServer) subscribe() (string, <-chan *structpb.Struct) {
	id := uuid.New().String()
	ch := make(chan *structpb.Struct, subscriberBuffer)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subscribers[id] = ch
	return id, ch
}

func (f *feedServer) unsubscribe(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.subscribers, id)
}

func (f *feedServer) broadcast(msg *structpb.Struct) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, ch := range f.subscribers {
		select {
		case ch <- msg:
		default:
			f.logger.Warn("subscriber is behind, dropping event", slog.String("subscriber", id))
		}
	}
}

func (f *feedServer) subscriberCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subscribers)
}
