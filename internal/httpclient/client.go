package httpclient

import (
	"net"
	"net/http"
	"time"
)

// minPoolSize keeps small campaigns from running with a degenerate pool.
const minPoolSize = 10

// NewClient returns an HTTP client tuned for sustained load generation
// against one endpoint: persistent keep-alive connections, an idle pool
// sized to the configured concurrency so acquisition never becomes a hidden
// bottleneck, and no automatic retry anywhere in the stack, so failures
// surface to the outcome classifier instead of being absorbed.
//
// Each worker owns one client for its whole lifetime. Constructing a fresh
// client per request would contaminate latency measurements with
// connection-setup cost.
func NewClient(timeout time.Duration, concurrency int) *http.Client {
	if timeout < 0 {
		timeout = 0
	}
	poolSize := concurrency
	if poolSize < minPoolSize {
		poolSize = minPoolSize
	}

	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          poolSize * 2,
		MaxIdleConnsPerHost:   poolSize,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}
