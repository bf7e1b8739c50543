package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/torosent/rpcfire/internal/metrics"
)

func sampleSummary() metrics.Summary {
	return metrics.Summary{
		RunID:          "01JTESTRUN",
		Total:          100,
		Successes:      90,
		Failures:       10,
		ErrorRate:      10,
		Elapsed:        2 * time.Second,
		ElapsedMs:      2000,
		RequestsPerSec: 50,
		SuccessPerSec:  45,
		Latency: &metrics.LatencySummary{
			Min:  10 * time.Millisecond,
			Max:  120 * time.Millisecond,
			Mean: 40 * time.Millisecond,
			P50:  35 * time.Millisecond,
			P90:  80 * time.Millisecond,
			P95:  100 * time.Millisecond,
			P99:  115 * time.Millisecond,
		},
		StatusCodes: map[int]int64{200: 90, 502: 7, 503: 3},
		RPCErrors:   map[string]int64{"-32000": 2},
		ErrorsByKey: map[string]int64{"http_502": 7, "http_503": 3},
		BadGatewayDetails: []metrics.BadGatewayDetail{
			{BodyExcerpt: "upstream unavailable", Server: "nginx", Via: "none", XPoweredBy: "none"},
		},
		WorkerFaults: []string{"worker 3: index out of range"},
	}
}

func TestPrintReport(t *testing.T) {
	var buf bytes.Buffer
	PrintReport(&buf, sampleSummary())
	out := buf.String()

	for _, want := range []string{
		"Total Requests:    100",
		"Successful:        90",
		"Failed:            10",
		"Error Rate:        10.00%",
		"Requests/sec:      50.00",
		"P99:             115ms",
		"502: 7",
		"code -32000: 2",
		"http_502: 7",
		"server=nginx",
		"body: upstream unavailable",
		"worker 3: index out of range",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q\nfull output:\n%s", want, out)
		}
	}
}

func TestPrintReportNoSuccesses(t *testing.T) {
	var buf bytes.Buffer
	s := sampleSummary()
	s.Latency = nil
	PrintReport(&buf, s)
	if strings.Contains(buf.String(), "Latency:") {
		t.Error("latency block should be omitted when no samples were recorded")
	}
}

func TestPrintJSONReport(t *testing.T) {
	var buf bytes.Buffer
	if err := PrintJSONReport(&buf, sampleSummary()); err != nil {
		t.Fatalf("PrintJSONReport: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded["total"].(float64) != 100 {
		t.Errorf("total = %v, want 100", decoded["total"])
	}
	if _, ok := decoded["latency"]; !ok {
		t.Error("expected latency key in JSON output")
	}
}
