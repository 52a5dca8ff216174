// Package session implements the duplex session gateway.
//
// One Session exists per client connection. A session reads one query event,
// runs it through the handler, writes exactly one result and only then reads
// the next event, so replies leave in the order queries arrived. Sessions
// share nothing mutable with each other.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/nadzzz/mandirate/internal/lang"
	"github.com/nadzzz/mandirate/internal/message"
	"github.com/nadzzz/mandirate/internal/transport"
)

// ErrClosed is returned by a Conn whose peer went away normally.
var ErrClosed = errors.New("connection closed")

// Conn is one duplex client channel as seen by the gateway.
type Conn interface {
	// Receive blocks for the next inbound query event. Undecodable or
	// incomplete events are reported as message.ErrMalformed; a normal
	// disconnect as ErrClosed or io.EOF.
	Receive(ctx context.Context) (*message.QueryEvent, error)

	// Send writes one result event.
	Send(ctx context.Context, r *message.Result) error
}

// State is a session's position in its lifecycle.
type State int32

const (
	Connected State = iota
	AwaitingQuery
	Processing
	Disconnected
)

func (s State) String() string {
	switch s {
	case Connected:
		return "connected"
	case AwaitingQuery:
		return "awaiting_query"
	case Processing:
		return "processing"
	default:
		return "disconnected"
	}
}

// Prefs are the only per-session state: the languages the client last asked for.
type Prefs struct {
	Source lang.Code
	Target lang.Code
}

// Session is the state of one live connection.
type Session struct {
	ID        string
	Transport string
	Remote    string

	prefs   Prefs
	state   atomic.Int32
	handled int
	dropped int
	logger  *slog.Logger
}

// State returns the current lifecycle state.
func (s *Session) State() State { return State(s.state.Load()) }

// Prefs returns the current language preferences.
func (s *Session) Prefs() Prefs { return s.prefs }

func (s *Session) setState(st State) { s.state.Store(int32(st)) }

// accept turns a valid event into a Query, updating the session's language
// preferences with whatever the event states.
func (s *Session) accept(ev *message.QueryEvent) *message.Query {
	if ev.SourceLang != "" {
		s.prefs.Source = lang.Resolve(ev.SourceLang, lang.Default)
	}
	if ev.TargetLang != "" {
		s.prefs.Target = lang.Resolve(ev.TargetLang, lang.Default)
	}
	return &message.Query{
		ID:         uuid.NewString(),
		Session:    s.ID,
		RawText:    *ev.Message,
		SourceLang: s.prefs.Source,
		TargetLang: s.prefs.Target,
		ReceivedAt: time.Now(),
	}
}

// Gateway drives sessions for every duplex transport.
type Gateway struct {
	handler  transport.Handler
	defaults Prefs
	active   atomic.Int64

	// observe, when set, is called with each session as it opens. Tests use
	// it to watch lifecycle transitions.
	observe func(*Session)
}

// NewGateway creates a gateway that answers queries with handler. defaultLang
// seeds both preferences of every new session.
func NewGateway(handler transport.Handler, defaultLang lang.Code) *Gateway {
	if !defaultLang.Valid() {
		defaultLang = lang.Default
	}
	return &Gateway{
		handler:  handler,
		defaults: Prefs{Source: defaultLang, Target: defaultLang},
	}
}

// Active returns the number of open sessions.
func (g *Gateway) Active() int64 { return g.active.Load() }

// Handler returns the query handler sessions call.
func (g *Gateway) Handler() transport.Handler { return g.handler }

// NewQuery builds a stateless query for one-shot transports, applying the
// gateway's default languages to anything the event leaves out.
func (g *Gateway) NewQuery(ev *message.QueryEvent) *message.Query {
	s := &Session{prefs: g.defaults}
	return s.accept(ev)
}

// Serve runs one session over conn until the client disconnects or ctx is
// cancelled. A normal disconnect returns nil.
func (g *Gateway) Serve(ctx context.Context, conn Conn, transportName, remote string) error {
	s := &Session{
		ID:        uuid.NewString(),
		Transport: transportName,
		Remote:    remote,
		prefs:     g.defaults,
	}
	s.logger = slog.With("session_id", s.ID, "transport", transportName, "remote", remote)
	s.setState(Connected)
	g.active.Add(1)
	if g.observe != nil {
		g.observe(s)
	}
	s.logger.Info("session connected", "active", g.active.Load())

	defer func() {
		s.setState(Disconnected)
		g.active.Add(-1)
		s.logger.Info("session disconnected", "handled", s.handled, "dropped", s.dropped, "active", g.active.Load())
	}()

	for {
		s.setState(AwaitingQuery)
		ev, err := conn.Receive(ctx)
		if err != nil {
			switch {
			case errors.Is(err, message.ErrMalformed):
				s.dropped++
				s.logger.Warn("dropping malformed query", "error", err)
				continue
			case errors.Is(err, ErrClosed), errors.Is(err, io.EOF), ctx.Err() != nil:
				return nil
			default:
				return fmt.Errorf("session %s receive: %w", s.ID, err)
			}
		}
		if err := ev.Validate(); err != nil {
			s.dropped++
			s.logger.Warn("dropping malformed query", "error", err)
			continue
		}

		s.setState(Processing)
		q := s.accept(ev)
		res, err := g.handler(ctx, q)
		if err != nil {
			return fmt.Errorf("session %s query %s: %w", s.ID, q.ID, err)
		}
		if err := conn.Send(ctx, res); err != nil {
			if errors.Is(err, ErrClosed) || ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("session %s send: %w", s.ID, err)
		}
		s.handled++
	}
}
