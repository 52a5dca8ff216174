package grpc

import "encoding/json"

// rawFrame carries a message body undecoded so that malformed queries can be
// dropped by the session instead of failing the stream.
type rawFrame []byte

// jsonCodec is the wire codec for the PriceAssistant service.
type jsonCodec struct{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(v any) ([]byte, error) {
	if f, ok := v.(*rawFrame); ok {
		return *f, nil
	}
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	if f, ok := v.(*rawFrame); ok {
		*f = append((*f)[:0], data...)
		return nil
	}
	return json.Unmarshal(data, v)
}
