package jsonrpc

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/torosent/rpcfire/internal/metrics"
)

const (
	// maxBodyExcerpt caps the 502 body capture, matching what fits on a
	// report line.
	maxBodyExcerpt = 150

	headerUnknown = "unknown"
	headerAbsent  = "none"
)

// ClassifyResponse maps a received HTTP response to an outcome. The latency
// argument must already include body read and, for 200 responses, decode
// time: the measurement unit is "time to obtain an interpretable result".
func ClassifyResponse(status int, header http.Header, body []byte, latency time.Duration) metrics.Outcome {
	if status != http.StatusOK {
		o := metrics.Outcome{
			Kind:       metrics.KindHTTPError,
			Latency:    latency,
			HTTPStatus: status,
		}
		if status == http.StatusBadGateway {
			o.Diagnostic = badGatewayDetail(header, body)
		}
		return o
	}
	return ClassifyBody(body, latency, status)
}

// ClassifyBody inspects a protocol-level response body. status carries the
// HTTP status behind the body, or zero for transports without one.
func ClassifyBody(body []byte, latency time.Duration, status int) metrics.Outcome {
	if !gjson.ValidBytes(body) {
		return metrics.Outcome{
			Kind:       metrics.KindDecodeError,
			Latency:    latency,
			HTTPStatus: status,
			ErrKind:    "invalid_json",
		}
	}

	if errField := gjson.GetBytes(body, "error"); errField.Exists() {
		code := headerUnknown
		if c := gjson.GetBytes(body, "error.code"); c.Exists() {
			code = c.String()
		}
		return metrics.Outcome{
			Kind:       metrics.KindProtocolError,
			Latency:    latency,
			HTTPStatus: status,
			RPCErrCode: code,
		}
	}

	return metrics.Outcome{
		Kind:       metrics.KindSuccess,
		Latency:    latency,
		HTTPStatus: status,
	}
}

// ClassifyTransportError maps a failed dispatch to either a timeout or a
// transport-error outcome, with latency measured to the point the failure
// surfaced.
func ClassifyTransportError(err error, latency time.Duration) metrics.Outcome {
	if isTimeout(err) {
		return metrics.Outcome{
			Kind:    metrics.KindTimeout,
			Latency: latency,
		}
	}
	return metrics.Outcome{
		Kind:    metrics.KindTransportError,
		Latency: latency,
		ErrKind: metrics.ErrKind(err),
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	// http.Client surfaces its own timeout as a url.Error whose message
	// mentions the deadline without matching the net.Error timeout path on
	// all Go versions.
	return err != nil && strings.Contains(err.Error(), "Client.Timeout exceeded")
}

// badGatewayDetail captures the proxy-revealing fields of a 502 response.
// Extraction never fails: missing headers degrade to placeholder values.
func badGatewayDetail(header http.Header, body []byte) *metrics.BadGatewayDetail {
	excerpt := strings.TrimSpace(string(body))
	if len(excerpt) > maxBodyExcerpt {
		excerpt = excerpt[:maxBodyExcerpt]
	}
	return &metrics.BadGatewayDetail{
		BodyExcerpt: excerpt,
		Server:      headerOr(header, "Server", headerUnknown),
		Via:         headerOr(header, "Via", headerAbsent),
		XPoweredBy:  headerOr(header, "X-Powered-By", headerAbsent),
	}
}

func headerOr(header http.Header, key, fallback string) string {
	if header == nil {
		return fallback
	}
	if v := header.Get(key); v != "" {
		return v
	}
	return fallback
}
