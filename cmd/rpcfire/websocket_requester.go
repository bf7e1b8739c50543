package main

import (
	"context"
	"encoding/json"
	"time"

	"github.com/torosent/rpcfire/internal/jsonrpc"
	"github.com/torosent/rpcfire/internal/metrics"
	"github.com/torosent/rpcfire/internal/websocket"
)

// wsRequester implements runner.Executor over a persistent WebSocket
// connection. Each worker owns its own connection; a failed call resets it
// so the next request redials instead of reading a stale frame.
type wsRequester struct {
	client *websocket.Client
	method string
	params json.RawMessage
}

func (r *wsRequester) Execute(ctx context.Context, requestID int64) metrics.Outcome {
	start := time.Now()

	if !r.client.Connected() {
		if err := r.client.Connect(ctx); err != nil {
			return jsonrpc.ClassifyTransportError(err, time.Since(start))
		}
	}

	payload, err := jsonrpc.Marshal(requestID, r.method, r.params)
	if err != nil {
		return jsonrpc.ClassifyTransportError(err, time.Since(start))
	}

	reply, err := r.client.Call(payload)
	if err != nil {
		r.client.Reset()
		return jsonrpc.ClassifyTransportError(err, time.Since(start))
	}

	o := jsonrpc.ClassifyBody(reply, 0, 0)
	o.Latency = time.Since(start)
	return o
}

// Close releases the worker's connection after the campaign ends.
func (r *wsRequester) Close() error {
	return r.client.Close()
}
