// Package transport defines the interface for pluggable client transports.
//
// Each transport (HTTP/WebSocket, gRPC, MQTT) implements this interface. The
// dispatcher doesn't care how queries arrive; duplex transports hand every
// connection to the session gateway, which calls the Handler.
package transport

import (
	"context"

	"github.com/nadzzz/mandirate/internal/message"
)

// Handler processes one accepted query and returns its reply.
// The dispatcher provides this handler.
type Handler func(ctx context.Context, q *message.Query) (*message.Result, error)

// Transport is the interface that every transport adapter must implement.
type Transport interface {
	// Name returns the transport identifier (e.g., "http", "grpc", "mqtt").
	Name() string

	// Listen starts accepting clients. It blocks until the context is cancelled.
	Listen(ctx context.Context) error

	// Close gracefully shuts down the transport.
	Close() error
}
