package metrics

import "sync"

// DefaultDiagnosticCapacity bounds how many 502 captures a campaign keeps.
const DefaultDiagnosticCapacity = 3

// BadGatewayDetail is one forensic capture of a 502 response: a body excerpt
// plus the headers that reveal hidden proxy layers. Fields fall back to
// placeholder values when the response did not provide them.
type BadGatewayDetail struct {
	BodyExcerpt string `json:"body_excerpt"`
	Server      string `json:"server"`
	Via         string `json:"via"`
	XPoweredBy  string `json:"x_powered_by"`
}

// DiagnosticBuffer is a fixed-capacity capture buffer with a non-blocking
// append that silently drops once full.
type DiagnosticBuffer struct {
	mu      sync.Mutex
	entries []BadGatewayDetail
	cap     int
}

func NewDiagnosticBuffer(capacity int) *DiagnosticBuffer {
	if capacity <= 0 {
		capacity = DefaultDiagnosticCapacity
	}
	return &DiagnosticBuffer{cap: capacity}
}

// TryAdd appends d unless the buffer is full. It reports whether the entry
// was kept.
func (b *DiagnosticBuffer) TryAdd(d BadGatewayDetail) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.entries) >= b.cap {
		return false
	}
	b.entries = append(b.entries, d)
	return true
}

// Entries returns a copy of the captured details.
func (b *DiagnosticBuffer) Entries() []BadGatewayDetail {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.entries) == 0 {
		return nil
	}
	out := make([]BadGatewayDetail, len(b.entries))
	copy(out, b.entries)
	return out
}
