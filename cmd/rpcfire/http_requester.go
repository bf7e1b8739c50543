package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/torosent/rpcfire/internal/jsonrpc"
	"github.com/torosent/rpcfire/internal/metrics"
	"github.com/torosent/rpcfire/internal/tracing"
)

const maxBodyReadSize = 1024 * 1024

// httpRequester implements runner.Executor over HTTP POST. The shared
// http.Client is safe for concurrent use; everything else here is
// per-request state.
type httpRequester struct {
	client  *http.Client
	url     string
	method  string
	params  json.RawMessage
	headers map[string]string
	tracer  *tracing.Provider
}

// Execute sends one JSON-RPC request and classifies the result. Latency is
// measured from just before dispatch to the point the outcome is
// determined: the status line for HTTP errors, the decoded body for 200s.
func (r *httpRequester) Execute(ctx context.Context, requestID int64) metrics.Outcome {
	payload, err := jsonrpc.Marshal(requestID, r.method, r.params)
	if err != nil {
		return jsonrpc.ClassifyTransportError(err, 0)
	}

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(payload))
	if err != nil {
		return jsonrpc.ClassifyTransportError(err, time.Since(start))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Connection", "keep-alive")
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}
	r.tracer.InjectHTTPHeaders(ctx, req)

	resp, err := r.client.Do(req)
	if err != nil {
		return jsonrpc.ClassifyTransportError(err, time.Since(start))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// The outcome is determined the moment the status line arrives; the
		// body read below only feeds the 502 diagnostic capture.
		latency := time.Since(start)
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodyReadSize))
		_, _ = io.Copy(io.Discard, resp.Body)
		return jsonrpc.ClassifyResponse(resp.StatusCode, resp.Header, body, latency)
	}

	body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyReadSize))
	if readErr != nil {
		return jsonrpc.ClassifyTransportError(readErr, time.Since(start))
	}

	o := jsonrpc.ClassifyBody(body, 0, resp.StatusCode)
	o.Latency = time.Since(start)
	return o
}
