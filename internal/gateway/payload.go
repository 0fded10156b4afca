package gateway

import (
	"encoding/json"
	"strings"
)

// Payload is a decoded JSON response body.
type Payload map[string]any

// Message returns the payload's "message" field when it is a non-blank string.
func (p Payload) Message() string {
	s, _ := p["message"].(string)
	if strings.TrimSpace(s) == "" {
		return ""
	}
	return s
}

// Decode re-encodes the payload into v, typically a response DTO.
func (p Payload) Decode(v any) error {
	b, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

// decodePayload reports ok=false when body is not valid JSON (including an empty body).
// A top-level value that is not an object is wrapped under "data".
func decodePayload(body []byte) (Payload, bool) {
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, false
	}
	if m, ok := v.(map[string]any); ok {
		return Payload(m), true
	}
	return Payload{"data": v}, true
}
