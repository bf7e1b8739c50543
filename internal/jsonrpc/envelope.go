// Package jsonrpc builds JSON-RPC 2.0 request envelopes and classifies
// responses into request outcomes. Both transports (HTTP POST and WebSocket)
// share this logic.
package jsonrpc

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// Version is the protocol version stamped into every envelope.
const Version = "2.0"

// Envelope is the JSON-RPC 2.0 request body.
type Envelope struct {
	Version string          `json:"jsonrpc"`
	ID      int64           `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
}

// Marshal serializes one request envelope. Params must already be a valid
// JSON array (see ValidateParams).
func Marshal(id int64, method string, params json.RawMessage) ([]byte, error) {
	if len(params) == 0 {
		params = json.RawMessage("[]")
	}
	return json.Marshal(Envelope{
		Version: Version,
		ID:      id,
		Method:  method,
		Params:  params,
	})
}

// ValidateParams checks that raw is a JSON array and returns it as a raw
// message. A non-array value is a configuration error, rejected before any
// worker is spawned.
func ValidateParams(raw string) (json.RawMessage, error) {
	if raw == "" {
		return json.RawMessage("[]"), nil
	}
	if !gjson.Valid(raw) {
		return nil, fmt.Errorf("params is not valid JSON: %q", raw)
	}
	if !gjson.Parse(raw).IsArray() {
		return nil, fmt.Errorf("params must be a JSON array, got %q", raw)
	}
	return json.RawMessage(raw), nil
}
