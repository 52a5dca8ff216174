// Package http implements the HTTP/WebSocket transport for mandirate.
//
// This transport exposes the duplex query channel as a WebSocket at /ws, the
// read-only price listings used by the vendor UI, a one-shot query endpoint
// and the Swagger UI. It is best suited for browsers and phones.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/cors"

	_ "github.com/nadzzz/mandirate/docs" // registers the OpenAPI document with swag
	"github.com/nadzzz/mandirate/internal/livefeed"
	"github.com/nadzzz/mandirate/internal/message"
	"github.com/nadzzz/mandirate/internal/session"

	httpSwagger "github.com/swaggo/http-swagger/v2"
)

const maxFrameBytes = 64 << 10

// PriceSource is what the listing endpoints read from.
type PriceSource interface {
	Fetch(ctx context.Context, limit int) livefeed.Listing
	BillingItems(ctx context.Context) []livefeed.BillingItem
}

// Transport implements transport.Transport over HTTP and WebSocket.
type Transport struct {
	port         int
	gateway      *session.Gateway
	prices       PriceSource
	listingLimit int
	upgrader     websocket.Upgrader
	server       *http.Server
}

// New creates a new HTTP transport on the given port.
func New(port int, gateway *session.Gateway, prices PriceSource, listingLimit int) *Transport {
	return &Transport{
		port:         port,
		gateway:      gateway,
		prices:       prices,
		listingLimit: listingLimit,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Any origin may connect, matching the CORS policy below.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Name returns the transport identifier.
func (t *Transport) Name() string { return "http" }

// Handler builds the routed, CORS-wrapped handler. Exposed for tests.
func (t *Transport) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()

	// GET /ws: duplex query/result session.
	mux.HandleFunc("GET /ws", func(w http.ResponseWriter, r *http.Request) {
		t.handleWebSocket(ctx, w, r)
	})

	mux.HandleFunc("POST /query", t.handleQuery)
	mux.HandleFunc("GET /live-prices", t.handleLivePrices)
	mux.HandleFunc("GET /billing-items", t.handleBillingItems)

	// Swagger UI, serving the registered OpenAPI docs.
	mux.Handle("GET /swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	return cors.AllowAll().Handler(mux)
}

// Listen starts the HTTP server.
func (t *Transport) Listen(ctx context.Context) error {
	t.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", t.port),
		Handler:           t.Handler(ctx),
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("http transport listening", "port", t.port)

	go func() {
		<-ctx.Done()
		slog.Info("http transport shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = t.server.Shutdown(shutdownCtx)
	}()

	if err := t.server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("http listen: %w", err)
	}
	return nil
}

// handleWebSocket upgrades the request and runs one session over it.
//
// Frames in:  {"event":"query","data":{"message":"...","sourceLang":"hi","targetLang":"en"}}
// Frames out: {"event":"result","data":{"originalMessage":"...","translatedMessage":"...","isPrice":true}}
func (t *Transport) handleWebSocket(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	ws, err := t.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		slog.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	defer ws.Close()
	ws.SetReadLimit(maxFrameBytes)

	// Unblock the reader when the server shuts down.
	sessCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		<-sessCtx.Done()
		_ = ws.SetReadDeadline(time.Now())
	}()

	if err := t.gateway.Serve(sessCtx, &wsConn{ws: ws}, t.Name(), r.RemoteAddr); err != nil {
		slog.Error("websocket session failed", "remote", r.RemoteAddr, "error", err)
	}
}

// wsConn adapts a WebSocket to session.Conn.
type wsConn struct {
	ws *websocket.Conn
}

func (c *wsConn) Receive(ctx context.Context) (*message.QueryEvent, error) {
	kind, frame, err := c.ws.ReadMessage()
	if err != nil {
		if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway,
			websocket.CloseNoStatusReceived, websocket.CloseAbnormalClosure) ||
			errors.Is(err, io.EOF) || ctx.Err() != nil {
			return nil, session.ErrClosed
		}
		return nil, err
	}
	if kind != websocket.TextMessage {
		return nil, fmt.Errorf("%w: binary frame", message.ErrMalformed)
	}
	return message.DecodeQueryFrame(frame)
}

func (c *wsConn) Send(ctx context.Context, r *message.Result) error {
	frame, err := message.EncodeResultFrame(r)
	if err != nil {
		return err
	}
	_ = c.ws.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return c.ws.WriteMessage(websocket.TextMessage, frame)
}

// handleQuery answers a single query without a session.
//
// @Summary     Ask one price question
// @Description Runs one query through the engine and returns the reply. Omitted languages default to the server default.
// @Tags        query
// @Accept      json
// @Produce     json
// @Param       query  body      message.QueryEvent  true  "Query event"
// @Success     200    {object}  message.Result
// @Failure     400    {string}  string  "Missing message field or invalid JSON"
// @Router      /query [post]
func (t *Transport) handleQuery(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxFrameBytes))
	if err != nil {
		http.Error(w, "reading body: "+err.Error(), http.StatusBadRequest)
		return
	}
	ev, err := message.DecodeQuery(body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := t.gateway.Handler()(r.Context(), t.gateway.NewQuery(ev))
	if err != nil {
		slog.Error("query failed", "error", err)
		http.Error(w, "query error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, result)
}

// handleLivePrices lists current mandi prices.
//
// @Summary     Live mandi prices
// @Description Returns up to the configured number of market price records. When the upstream source is unavailable the fixed demo records are returned instead; this endpoint never fails.
// @Tags        prices
// @Produce     json
// @Success     200  {array}  livefeed.Record
// @Router      /live-prices [get]
func (t *Transport) handleLivePrices(w http.ResponseWriter, r *http.Request) {
	listing := t.prices.Fetch(r.Context(), t.listingLimit)
	w.Header().Set("X-Price-Provenance", string(listing.Provenance))
	writeJSON(w, listing.Records)
}

// handleBillingItems lists priced items for the billing screen.
//
// @Summary     Billing items
// @Description Returns up to eight priced items from the live listing, or five fixed demo items when it is unavailable.
// @Tags        prices
// @Produce     json
// @Success     200  {array}  livefeed.BillingItem
// @Router      /billing-items [get]
func (t *Transport) handleBillingItems(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, t.prices.BillingItems(r.Context()))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("writing response", "error", err)
	}
}

// Close gracefully shuts down the HTTP server.
func (t *Transport) Close() error {
	if t.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return t.server.Shutdown(ctx)
	}
	return nil
}
