// Package proto holds the wire contract of the event feed. Messages are
// well known protobuf types so no code generation is needed.
package proto

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	FeedServiceName         = "shoptris.feed.EventFeed"
	FeedPublishFullMethod   = "/" + FeedServiceName + "/Publish"
	FeedSubscribeFullMethod = "/" + FeedServiceName + "/Subscribe"
)

// FeedServer is the server API for the EventFeed service.
type FeedServer interface {
	// Publish receives the events of one game session.
	Publish(grpc.ClientStreamingServer[structpb.Struct, emptypb.Empty]) error
	// Subscribe streams the events of every session to the caller.
	Subscribe(*emptypb.Empty, grpc.ServerStreamingServer[structpb.Struct]) error
}

func RegisterFeedServer(s grpc.ServiceRegistrar, srv FeedServer) {
	s.RegisterService(&FeedServiceDesc, srv)
}

func feedPublishHandler(srv any, stream grpc.ServerStream) error {
	return srv.(FeedServer).Publish(&grpc.GenericServerStream[structpb.Struct, emptypb.Empty]{ServerStream: stream})
}

func feedSubscribeHandler(srv any, stream grpc.ServerStream) error {
	m := new(emptypb.Empty)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(FeedServer).Subscribe(m, &grpc.GenericServerStream[emptypb.Empty, structpb.Struct]{ServerStream: stream})
}

var FeedServiceDesc = grpc.ServiceDesc{
	ServiceName: FeedServiceName,
	HandlerType: (*FeedServer)(nil),
	Methods:     []grpc.MethodDesc{},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Publish",
			Handler:       feedPublishHandler,
			ClientStreams: true,
		},
		{
			StreamName:    "Subscribe",
			Handler:       feedSubscribeHandler,
			ServerStreams: true,
		},
	},
	Metadata: "feed.proto",
}

// FeedClient is the client API for the EventFeed service.
type FeedClient interface {
	Publish(ctx context.Context, opts ...grpc.CallOption) (grpc.ClientStreamingClient[structpb.Struct, emptypb.Empty], error)
	Subscribe(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (grpc.ServerStreamingClient[structpb.Struct], error)
}

type feedClient struct {
	cc grpc.ClientConnInterface
}

func NewFeedClient(cc grpc.ClientConnInterface) FeedClient {
	return &feedClient{cc}
}

func (c *feedClient) Publish(ctx context.Context, opts ...grpc.CallOption) (grpc.ClientStreamingClient[structpb.Struct, emptypb.Empty], error) {
	stream, err := c.cc.NewStream(ctx, &FeedServiceDesc.Streams[0], FeedPublishFullMethod, opts...)
	if err != nil {
		return nil, err
	}
	return &grpc.GenericClientStream[structpb.Struct, emptypb.Empty]{ClientStream: stream}, nil
}

func (c *feedClient) Subscribe(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (grpc.ServerStreamingClient[structpb.Struct], error) {
	stream, err := c.cc.NewStream(ctx, &FeedServiceDesc.Streams[1], FeedSubscribeFullMethod, opts...)
	if err != nil {
		return nil, err
	}
	x := &grpc.GenericClientStream[emptypb.Empty, structpb.Struct]{ClientStream: stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}
