// Package output renders campaign results as human-readable text or JSON.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/torosent/rpcfire/internal/metrics"
)

// PrintReport outputs a human-readable summary report.
func PrintReport(w io.Writer, s metrics.Summary) {
	fmt.Fprintln(w, "\n--- Campaign Results ---")
	fmt.Fprintf(w, "Run ID:            %s\n", s.RunID)
	fmt.Fprintf(w, "Total Requests:    %d\n", s.Total)
	fmt.Fprintf(w, "Successful:        %d\n", s.Successes)
	fmt.Fprintf(w, "Failed:            %d\n", s.Failures)
	fmt.Fprintf(w, "Error Rate:        %.2f%%\n", s.ErrorRate)
	fmt.Fprintf(w, "Duration:          %s\n", s.Elapsed)
	fmt.Fprintf(w, "Requests/sec:      %.2f\n", s.RequestsPerSec)
	fmt.Fprintf(w, "Successes/sec:     %.2f\n", s.SuccessPerSec)

	if s.Latency != nil {
		fmt.Fprintln(w, "\nLatency:")
		fmt.Fprintf(w, "  Min:             %s\n", s.Latency.Min)
		fmt.Fprintf(w, "  Max:             %s\n", s.Latency.Max)
		fmt.Fprintf(w, "  Mean:            %s\n", s.Latency.Mean)
		fmt.Fprintf(w, "  P50:             %s\n", s.Latency.P50)
		fmt.Fprintf(w, "  P90:             %s\n", s.Latency.P90)
		fmt.Fprintf(w, "  P95:             %s\n", s.Latency.P95)
		fmt.Fprintf(w, "  P99:             %s\n", s.Latency.P99)
	}

	if len(s.StatusCodes) > 0 {
		fmt.Fprintln(w, "\nHTTP Status Codes:")
		codes := make([]int, 0, len(s.StatusCodes))
		for code := range s.StatusCodes {
			codes = append(codes, code)
		}
		sort.Ints(codes)
		for _, code := range codes {
			fmt.Fprintf(w, "  %d: %d\n", code, s.StatusCodes[code])
		}
	}

	if len(s.RPCErrors) > 0 {
		fmt.Fprintln(w, "\nJSON-RPC Errors:")
		for _, code := range sortedKeys(s.RPCErrors) {
			fmt.Fprintf(w, "  code %s: %d\n", code, s.RPCErrors[code])
		}
	}

	if len(s.ErrorsByKey) > 0 {
		fmt.Fprintln(w, "\nError Breakdown:")
		for _, key := range sortedKeys(s.ErrorsByKey) {
			fmt.Fprintf(w, "  %s: %d\n", key, s.ErrorsByKey[key])
		}
	}

	if len(s.BadGatewayDetails) > 0 {
		fmt.Fprintln(w, "\n502 Bad Gateway Samples:")
		for i, d := range s.BadGatewayDetails {
			fmt.Fprintf(w, "  [%d] server=%s via=%s x-powered-by=%s\n", i+1, d.Server, d.Via, d.XPoweredBy)
			if d.BodyExcerpt != "" {
				fmt.Fprintf(w, "      body: %s\n", d.BodyExcerpt)
			}
		}
	}

	if len(s.WorkerFaults) > 0 {
		fmt.Fprintln(w, "\nWorker Faults:")
		for _, fault := range s.WorkerFaults {
			fmt.Fprintf(w, "  %s\n", fault)
		}
	}
}

// PrintJSONReport outputs the summary as indented JSON.
func PrintJSONReport(w io.Writer, s metrics.Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

func sortedKeys(m map[string]int64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
