// Package grpc implements the gRPC transport for mandirate.
//
// The service is mandirate.v1.PriceAssistant. Messages travel as JSON using
// the same field names as the WebSocket events, so no generated code is
// needed: Ask answers one query, Converse is a bidirectional session stream
// driven by the session gateway.
package grpc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"

	"github.com/nadzzz/mandirate/internal/message"
	"github.com/nadzzz/mandirate/internal/session"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "mandirate.v1.PriceAssistant"

// Transport implements transport.Transport over gRPC.
type Transport struct {
	port    int
	gateway *session.Gateway
	server  *grpc.Server
}

// New creates a new gRPC transport on the given port.
func New(port int, gateway *session.Gateway) *Transport {
	return &Transport{port: port, gateway: gateway}
}

// Name returns the transport identifier.
func (t *Transport) Name() string { return "grpc" }

// NewServer builds a gRPC server with the PriceAssistant service registered.
func (t *Transport) NewServer(opts ...grpc.ServerOption) *grpc.Server {
	opts = append(opts, grpc.ForceServerCodec(jsonCodec{}))
	s := grpc.NewServer(opts...)
	s.RegisterService(&serviceDesc, &service{t: t})
	return s
}

// Listen starts the gRPC server.
func (t *Transport) Listen(ctx context.Context) error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", t.port))
	if err != nil {
		return fmt.Errorf("grpc listen: %w", err)
	}

	t.server = t.NewServer()

	slog.Info("grpc transport listening", "port", t.port, "service", ServiceName)

	go func() {
		<-ctx.Done()
		slog.Info("grpc transport shutting down")
		t.stop()
	}()

	if err := t.server.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("grpc serve: %w", err)
	}
	return nil
}

// Close gracefully stops the gRPC server.
func (t *Transport) Close() error {
	if t.server != nil {
		t.stop()
	}
	return nil
}

// stop waits for open streams to finish, then forces them closed.
// Converse streams stay open as long as their clients do.
func (t *Transport) stop() {
	done := make(chan struct{})
	go func() {
		t.server.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.server.Stop()
	}
}

// priceAssistantServer is the handler type checked by RegisterService.
type priceAssistantServer interface {
	Ask(ctx context.Context, ev *message.QueryEvent) (*message.Result, error)
	Converse(stream grpc.ServerStream) error
}

type service struct {
	t *Transport
}

// Ask answers one stateless query.
func (s *service) Ask(ctx context.Context, ev *message.QueryEvent) (*message.Result, error) {
	if err := ev.Validate(); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	gw := s.t.gateway
	res, err := gw.Handler()(ctx, gw.NewQuery(ev))
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return res, nil
}

// Converse runs one session over a bidirectional stream.
func (s *service) Converse(stream grpc.ServerStream) error {
	remote := ""
	if p, ok := peer.FromContext(stream.Context()); ok && p.Addr != nil {
		remote = p.Addr.String()
	}
	if err := s.t.gateway.Serve(stream.Context(), &streamConn{stream: stream}, s.t.Name(), remote); err != nil {
		return status.Error(codes.Internal, err.Error())
	}
	return nil
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*priceAssistantServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Ask", Handler: askHandler},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Converse",
			Handler:       converseHandler,
			ServerStreams: true,
			ClientStreams: true,
		},
	},
	Metadata: "mandirate/v1/price_assistant.proto",
}

func askHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(message.QueryEvent)
	if err := dec(in); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if interceptor == nil {
		return srv.(priceAssistantServer).Ask(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/" + ServiceName + "/Ask",
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(priceAssistantServer).Ask(ctx, req.(*message.QueryEvent))
	}
	return interceptor(ctx, in, info, handler)
}

func converseHandler(srv any, stream grpc.ServerStream) error {
	return srv.(priceAssistantServer).Converse(stream)
}

// streamConn adapts a Converse stream to session.Conn.
type streamConn struct {
	stream grpc.ServerStream
}

func (c *streamConn) Receive(ctx context.Context) (*message.QueryEvent, error) {
	var frame rawFrame
	if err := c.stream.RecvMsg(&frame); err != nil {
		if errors.Is(err, io.EOF) || ctx.Err() != nil || status.Code(err) == codes.Canceled {
			return nil, session.ErrClosed
		}
		return nil, err
	}
	return message.DecodeQuery(frame)
}

func (c *streamConn) Send(ctx context.Context, r *message.Result) error {
	if err := c.stream.SendMsg(r); err != nil {
		if ctx.Err() != nil || status.Code(err) == codes.Canceled {
			return session.ErrClosed
		}
		return err
	}
	return nil
}
