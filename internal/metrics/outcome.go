package metrics

import (
	"fmt"
	"time"
)

// Kind classifies the result of one request attempt. The kinds are mutually
// exclusive: every completed request maps to exactly one.
type Kind string

const (
	KindSuccess        Kind = "success"
	KindHTTPError      Kind = "http_error"
	KindProtocolError  Kind = "rpc_error"
	KindTimeout        Kind = "timeout"
	KindTransportError Kind = "transport_error"
	KindDecodeError    Kind = "decode_error"
)

// Outcome is the classified result of a single request. It is owned by the
// worker that produced it until merged into the Accumulator.
type Outcome struct {
	Kind    Kind
	Latency time.Duration

	// HTTPStatus is set whenever an HTTP response was received, including
	// the 200 behind successes and protocol errors. Zero means the request
	// failed before a status line arrived.
	HTTPStatus int

	// RPCErrCode holds the JSON-RPC error code for KindProtocolError,
	// rendered as text since servers emit numbers and strings alike.
	// "unknown" marks an error object without a code member.
	RPCErrCode string

	// ErrKind names the underlying failure class for transport and decode
	// errors.
	ErrKind string

	// Diagnostic carries the optional 502 forensic capture.
	Diagnostic *BadGatewayDetail
}

// Key returns the classification-counter key for this outcome, matching the
// breakdown shown in the final report.
func (o Outcome) Key() string {
	switch o.Kind {
	case KindSuccess:
		return "success"
	case KindHTTPError:
		return fmt.Sprintf("http_%d", o.HTTPStatus)
	case KindProtocolError:
		return "rpc_error_" + o.RPCErrCode
	case KindTimeout:
		return "timeout"
	case KindTransportError:
		return "transport_" + o.ErrKind
	case KindDecodeError:
		return "decode_" + o.ErrKind
	default:
		return string(o.Kind)
	}
}
