package jsonrpc_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/torosent/rpcfire/internal/jsonrpc"
	"github.com/torosent/rpcfire/internal/metrics"
)

func TestClassifySuccess(t *testing.T) {
	o := jsonrpc.ClassifyResponse(200, nil, []byte(`{"jsonrpc":"2.0","id":1,"result":"0x1"}`), 50*time.Millisecond)
	if o.Kind != metrics.KindSuccess {
		t.Fatalf("expected success, got %s", o.Kind)
	}
	if o.Latency != 50*time.Millisecond {
		t.Errorf("latency not carried through: %s", o.Latency)
	}
	if o.HTTPStatus != 200 {
		t.Errorf("expected status 200, got %d", o.HTTPStatus)
	}
}

func TestClassifyProtocolError(t *testing.T) {
	o := jsonrpc.ClassifyResponse(200, nil, []byte(`{"jsonrpc":"2.0","id":1,"error":{"code":-32000,"message":"execution reverted"}}`), time.Millisecond)
	if o.Kind != metrics.KindProtocolError {
		t.Fatalf("expected rpc error, got %s", o.Kind)
	}
	if o.RPCErrCode != "-32000" {
		t.Errorf("expected code -32000, got %q", o.RPCErrCode)
	}
}

func TestClassifyProtocolErrorWithoutCode(t *testing.T) {
	o := jsonrpc.ClassifyResponse(200, nil, []byte(`{"error":{"message":"nope"}}`), time.Millisecond)
	if o.Kind != metrics.KindProtocolError {
		t.Fatalf("expected rpc error, got %s", o.Kind)
	}
	if o.RPCErrCode != "unknown" {
		t.Errorf("missing code must map to \"unknown\", got %q", o.RPCErrCode)
	}
}

func TestClassifyStringErrorCode(t *testing.T) {
	o := jsonrpc.ClassifyResponse(200, nil, []byte(`{"error":{"code":"RATE_LIMITED"}}`), time.Millisecond)
	if o.RPCErrCode != "RATE_LIMITED" {
		t.Errorf("non-numeric codes must be preserved, got %q", o.RPCErrCode)
	}
}

func TestClassifyDecodeError(t *testing.T) {
	o := jsonrpc.ClassifyResponse(200, nil, []byte(`<html>not json</html>`), time.Millisecond)
	if o.Kind != metrics.KindDecodeError {
		t.Fatalf("expected decode error, got %s", o.Kind)
	}
	if o.ErrKind != "invalid_json" {
		t.Errorf("expected invalid_json, got %q", o.ErrKind)
	}
}

func TestClassifyHTTPError(t *testing.T) {
	o := jsonrpc.ClassifyResponse(503, nil, []byte("busy"), time.Millisecond)
	if o.Kind != metrics.KindHTTPError || o.HTTPStatus != 503 {
		t.Fatalf("expected http error 503, got %s/%d", o.Kind, o.HTTPStatus)
	}
	if o.Diagnostic != nil {
		t.Error("diagnostics are only captured for 502")
	}
}

func TestClassifyBadGatewayDiagnostic(t *testing.T) {
	header := http.Header{}
	header.Set("Server", "nginx/1.24")
	header.Set("Via", "1.1 lb-7")

	longBody := make([]byte, 4096)
	for i := range longBody {
		longBody[i] = 'x'
	}

	o := jsonrpc.ClassifyResponse(502, header, longBody, time.Millisecond)
	if o.Diagnostic == nil {
		t.Fatal("expected diagnostic capture on 502")
	}
	if len(o.Diagnostic.BodyExcerpt) > 150 {
		t.Errorf("body excerpt not capped: %d bytes", len(o.Diagnostic.BodyExcerpt))
	}
	if o.Diagnostic.Server != "nginx/1.24" {
		t.Errorf("expected Server header captured, got %q", o.Diagnostic.Server)
	}
	if o.Diagnostic.Via != "1.1 lb-7" {
		t.Errorf("expected Via header captured, got %q", o.Diagnostic.Via)
	}
	if o.Diagnostic.XPoweredBy != "none" {
		t.Errorf("missing header must degrade to placeholder, got %q", o.Diagnostic.XPoweredBy)
	}
}

func TestClassifyTransportTimeout(t *testing.T) {
	o := jsonrpc.ClassifyTransportError(fmt.Errorf("post: %w", context.DeadlineExceeded), 2*time.Second)
	if o.Kind != metrics.KindTimeout {
		t.Fatalf("expected timeout, got %s", o.Kind)
	}
	if o.Latency != 2*time.Second {
		t.Errorf("expected latency to the point the timeout fired, got %s", o.Latency)
	}
}

func TestClassifyTransportFailure(t *testing.T) {
	o := jsonrpc.ClassifyTransportError(fmt.Errorf("connect failed"), 3*time.Millisecond)
	if o.Kind != metrics.KindTransportError {
		t.Fatalf("expected transport error, got %s", o.Kind)
	}
	if o.ErrKind == "" {
		t.Error("transport errors must carry a failure class")
	}
}
