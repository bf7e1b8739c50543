package metrics

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"
)

const maxErrKindLen = 30

// ErrKind maps an error to a stable, short failure-class name suitable for
// use in classification-counter keys. Well-known network failures get fixed
// names; anything else falls back to the innermost concrete error type.
func ErrKind(err error) string {
	if err == nil {
		return ""
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return "dns"
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return "connection_refused"
	}
	if errors.Is(err, syscall.ECONNRESET) {
		return "connection_reset"
	}
	if errors.Is(err, syscall.EPIPE) {
		return "broken_pipe"
	}

	inner := err
	for {
		next := errors.Unwrap(inner)
		if next == nil {
			break
		}
		inner = next
	}

	name := strings.TrimPrefix(fmt.Sprintf("%T", inner), "*")
	if idx := strings.LastIndex(name, "/"); idx != -1 {
		name = name[idx+1:]
	}
	if len(name) > maxErrKindLen {
		name = name[len(name)-maxErrKindLen:]
	}
	return name
}
