// Package mqtt implements the MQTT transport for mandirate.
//
// Each device publishes queries to <prefix>/<client>/query and receives
// results on <prefix>/<client>/result. A message on <prefix>/<client>/disconnect
// ends the device's session. Payloads are the bare JSON bodies of the
// query and result events.
package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/nadzzz/mandirate/internal/config"
	"github.com/nadzzz/mandirate/internal/message"
	"github.com/nadzzz/mandirate/internal/session"
)

// Topic suffixes.
const (
	topicQuery      = "query"
	topicResult     = "result"
	topicDisconnect = "disconnect"
)

const connectTimeout = 10 * time.Second

// Transport implements transport.Transport over MQTT.
type Transport struct {
	cfg     config.MQTTConfig
	gateway *session.Gateway
	client  paho.Client

	// publish sends one payload; replaced in tests.
	publish func(ctx context.Context, topic string, payload []byte) error

	mu       sync.Mutex
	ctx      context.Context
	sessions map[string]*clientConn
	closing  bool // set by closeSessions; no new sessions after that
	wg       sync.WaitGroup
}

// New creates a new MQTT transport.
func New(cfg config.MQTTConfig, gateway *session.Gateway) *Transport {
	t := &Transport{
		cfg:      cfg,
		gateway:  gateway,
		ctx:      context.Background(),
		sessions: make(map[string]*clientConn),
	}
	t.publish = t.publishBroker
	return t
}

// Name returns the transport identifier.
func (t *Transport) Name() string { return "mqtt" }

// Listen connects to the broker, subscribes to the query and disconnect
// topics of every client and serves sessions until ctx is cancelled.
func (t *Transport) Listen(ctx context.Context) error {
	t.mu.Lock()
	t.ctx = ctx
	t.mu.Unlock()

	opts := paho.NewClientOptions().
		AddBroker(t.cfg.Broker).
		SetClientID(t.cfg.ClientID).
		SetAutoReconnect(true).
		SetOrderMatters(true).
		SetConnectTimeout(connectTimeout).
		SetOnConnectHandler(func(c paho.Client) {
			if err := t.subscribe(c); err != nil {
				slog.Error("mqtt subscribe failed", "error", err)
			}
		}).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			slog.Warn("mqtt connection lost", "error", err)
		})

	t.client = paho.NewClient(opts)
	token := t.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return fmt.Errorf("mqtt connect %s: timed out", t.cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt connect %s: %w", t.cfg.Broker, err)
	}

	slog.Info("mqtt transport listening", "broker", t.cfg.Broker, "topics", t.cfg.TopicPrefix+"/+/"+topicQuery)

	<-ctx.Done()
	slog.Info("mqtt transport shutting down")
	t.closeSessions()
	t.wg.Wait()
	return nil
}

func (t *Transport) subscribe(c paho.Client) error {
	filters := map[string]byte{
		t.cfg.TopicPrefix + "/+/" + topicQuery:      t.cfg.QoS,
		t.cfg.TopicPrefix + "/+/" + topicDisconnect: t.cfg.QoS,
	}
	token := c.SubscribeMultiple(filters, func(_ paho.Client, m paho.Message) {
		t.route(m.Topic(), m.Payload())
	})
	token.Wait()
	return token.Error()
}

// route hands an inbound message to its client's session, opening one on
// the first query. It never blocks, so the paho router keeps flowing.
func (t *Transport) route(topic string, payload []byte) {
	client, kind, ok := parseTopic(t.cfg.TopicPrefix, topic)
	if !ok {
		slog.Debug("mqtt ignoring topic", "topic", topic)
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	conn := t.sessions[client]
	switch kind {
	case topicDisconnect:
		if conn != nil {
			conn.close()
			delete(t.sessions, client)
		}
		return
	case topicQuery:
		if conn == nil {
			if t.closing {
				slog.Debug("mqtt shutting down, ignoring query", "client", client)
				return
			}
			conn = newClientConn(t, client)
			t.sessions[client] = conn
			t.wg.Add(1)
			go t.serve(t.ctx, conn)
		}
		conn.push(payload)
	}
}

func (t *Transport) serve(ctx context.Context, conn *clientConn) {
	defer t.wg.Done()
	if err := t.gateway.Serve(ctx, conn, t.Name(), conn.client); err != nil {
		slog.Error("mqtt session failed", "client", conn.client, "error", err)
	}

	t.mu.Lock()
	if t.sessions[conn.client] == conn {
		delete(t.sessions, conn.client)
	}
	t.mu.Unlock()
}

func (t *Transport) closeSessions() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closing = true
	for id, conn := range t.sessions {
		conn.close()
		delete(t.sessions, id)
	}
}

func (t *Transport) publishBroker(ctx context.Context, topic string, payload []byte) error {
	token := t.client.Publish(topic, t.cfg.QoS, false, payload)
	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return session.ErrClosed
	}
}

// Close disconnects from the MQTT broker.
func (t *Transport) Close() error {
	t.closeSessions()
	if t.client != nil && t.client.IsConnected() {
		t.client.Disconnect(250)
	}
	return nil
}

// parseTopic splits <prefix>/<client>/<kind>.
func parseTopic(prefix, topic string) (client, kind string, ok bool) {
	rest, found := strings.CutPrefix(topic, prefix+"/")
	if !found {
		return "", "", false
	}
	client, kind, found = strings.Cut(rest, "/")
	if !found || client == "" || strings.Contains(kind, "/") {
		return "", "", false
	}
	if kind != topicQuery && kind != topicDisconnect {
		return "", "", false
	}
	return client, kind, true
}

// clientConn is a session.Conn fed by the subscription callback. Its inbox is
// unbounded so that a slow session never stalls delivery to other clients.
type clientConn struct {
	t      *Transport
	client string

	mu     sync.Mutex
	inbox  [][]byte
	closed bool
	notify chan struct{}
}

func newClientConn(t *Transport, client string) *clientConn {
	return &clientConn{t: t, client: client, notify: make(chan struct{}, 1)}
}

func (c *clientConn) push(payload []byte) {
	c.mu.Lock()
	c.inbox = append(c.inbox, append([]byte(nil), payload...))
	c.mu.Unlock()
	c.wake()
}

func (c *clientConn) close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.wake()
}

func (c *clientConn) wake() {
	select {
	case c.notify <- struct{}{}:
	default:
	}
}

// Receive returns queued queries before honouring a disconnect.
func (c *clientConn) Receive(ctx context.Context) (*message.QueryEvent, error) {
	for {
		c.mu.Lock()
		if len(c.inbox) > 0 {
			payload := c.inbox[0]
			c.inbox[0] = nil
			c.inbox = c.inbox[1:]
			c.mu.Unlock()
			return message.DecodeQuery(payload)
		}
		closed := c.closed
		c.mu.Unlock()
		if closed {
			return nil, session.ErrClosed
		}

		select {
		case <-c.notify:
		case <-ctx.Done():
			return nil, session.ErrClosed
		}
	}
}

func (c *clientConn) Send(ctx context.Context, r *message.Result) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshalling result: %w", err)
	}
	topic := c.t.cfg.TopicPrefix + "/" + c.client + "/" + topicResult
	return c.t.publish(ctx, topic, payload)
}
