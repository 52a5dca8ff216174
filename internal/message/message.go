// Package message defines the events flowing between clients and the
// price assistant: inbound queries and outbound results.
package message

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nadzzz/mandirate/internal/lang"
)

// Event names on the duplex channel.
const (
	EventQuery  = "query"
	EventResult = "result"
)

// ErrMalformed marks an inbound event that cannot be turned into a Query.
// Malformed events are dropped without a reply.
var ErrMalformed = errors.New("malformed query event")

// QueryEvent is the inbound payload as sent by a client.
type QueryEvent struct {
	// Message is the utterance text. A nil Message means the field was
	// missing, which makes the event malformed.
	Message *string `json:"message"`

	// SourceLang is the language the user spoke in (e.g. "hi", "en-US").
	SourceLang string `json:"sourceLang,omitempty"`

	// TargetLang is the language the reply should be phrased in.
	TargetLang string `json:"targetLang,omitempty"`
}

// Validate reports ErrMalformed when the message field is absent.
func (e *QueryEvent) Validate() error {
	if e == nil || e.Message == nil {
		return fmt.Errorf("%w: missing message field", ErrMalformed)
	}
	return nil
}

// Query is one accepted inbound question. It lives only while its event is handled.
type Query struct {
	// ID correlates log lines for this query.
	ID string `json:"id"`

	// Session is the session the query arrived on, empty for one-shot queries.
	Session string `json:"session,omitempty"`

	RawText    string    `json:"raw_text"`
	SourceLang lang.Code `json:"source_lang"`
	TargetLang lang.Code `json:"target_lang"`
	ReceivedAt time.Time `json:"received_at"`
}

// Result is the outbound reply; exactly one per accepted query.
type Result struct {
	OriginalMessage   string `json:"originalMessage"`
	TranslatedMessage string `json:"translatedMessage"`
	IsPrice           bool   `json:"isPrice"`
}

// Envelope frames an event on text-based duplex channels (WebSocket).
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// DecodeQueryFrame parses an enveloped query frame. Any failure is ErrMalformed.
func DecodeQueryFrame(frame []byte) (*QueryEvent, error) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if env.Event != EventQuery {
		return nil, fmt.Errorf("%w: unexpected event %q", ErrMalformed, env.Event)
	}
	return DecodeQuery(env.Data)
}

// DecodeQuery parses a bare query payload. Any failure is ErrMalformed.
func DecodeQuery(data []byte) (*QueryEvent, error) {
	var ev QueryEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := ev.Validate(); err != nil {
		return nil, err
	}
	return &ev, nil
}

// EncodeResultFrame wraps a result in an envelope.
func EncodeResultFrame(r *Result) ([]byte, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("marshalling result: %w", err)
	}
	return json.Marshal(Envelope{Event: EventResult, Data: data})
}
