// Command rpc_sample_server runs a local JSON-RPC endpoint for exercising
// rpcfire by hand. It answers eth_blockNumber style requests over HTTP or
// WebSocket and can inject failures on demand.
//
// Usage:
//
//	go run ./scripts/testservers/rpc_sample_server -mode http -port 8545
//	go run ./scripts/testservers/rpc_sample_server -mode websocket -port 8546
//
// Failure injection flags make every Nth response misbehave, which is handy
// for checking the error breakdown and the 502 diagnostics capture.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/tidwall/gjson"
)

type serverMode string

const (
	modeHTTP      serverMode = "http"
	modeWebSocket serverMode = "websocket"
)

type faultPlan struct {
	badGatewayEvery int
	rpcErrorEvery   int
	slowEvery       int
	slowDelay       time.Duration
	counter         int64
}

func main() {
	mode := flag.String("mode", "http", "Server mode: http, websocket")
	port := flag.Int("port", 8545, "Listening port")
	badGatewayEvery := flag.Int("bad-gateway-every", 0, "Return 502 for every Nth request (0 disables)")
	rpcErrorEvery := flag.Int("rpc-error-every", 0, "Return a JSON-RPC error for every Nth request (0 disables)")
	slowEvery := flag.Int("slow-every", 0, "Delay every Nth request (0 disables)")
	slowDelay := flag.Duration("slow-delay", 10*time.Second, "Delay applied to slow responses")
	flag.Parse()

	plan := &faultPlan{
		badGatewayEvery: *badGatewayEvery,
		rpcErrorEvery:   *rpcErrorEvery,
		slowEvery:       *slowEvery,
		slowDelay:       *slowDelay,
	}

	switch serverMode(*mode) {
	case modeHTTP:
		log.Fatal(runHTTPServer(*port, plan))
	case modeWebSocket:
		log.Fatal(runWebSocketServer(*port, plan))
	default:
		log.Fatalf("unknown mode %q", *mode)
	}
}

// every reports whether the current request matches an every-Nth schedule.
func (p *faultPlan) every(n int, seq int64) bool {
	return n > 0 && seq%int64(n) == 0
}

func (p *faultPlan) next() int64 {
	return atomic.AddInt64(&p.counter, 1)
}

func (p *faultPlan) reply(seq int64, body []byte) (status int, payload string) {
	if p.every(p.slowEvery, seq) {
		time.Sleep(p.slowDelay)
	}
	if p.every(p.badGatewayEvery, seq) {
		return http.StatusBadGateway, "upstream connect error or disconnect/reset before headers"
	}

	id := gjson.GetBytes(body, "id").Raw
	if id == "" {
		id = "null"
	}
	if p.every(p.rpcErrorEvery, seq) {
		return http.StatusOK, fmt.Sprintf(`{"jsonrpc":"2.0","id":%s,"error":{"code":-32000,"message":"header not found"}}`, id)
	}
	return http.StatusOK, fmt.Sprintf(`{"jsonrpc":"2.0","id":%s,"result":"0x%x"}`, id, seq)
}

func runHTTPServer(port int, plan *faultPlan) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		seq := plan.next()
		status, payload := plan.reply(seq, body)
		if status == http.StatusBadGateway {
			w.Header().Set("Server", "rpc-sample-proxy")
			w.Header().Set("Via", "1.1 rpc-sample")
		} else {
			w.Header().Set("Content-Type", "application/json")
		}
		w.WriteHeader(status)
		fmt.Fprint(w, payload)
	})

	addr := fmt.Sprintf(":%d", port)
	log.Printf("JSON-RPC sample HTTP server listening on %s", addr)
	return http.ListenAndServe(addr, mux)
}

func runWebSocketServer(port int, plan *faultPlan) error {
	upgrader := websocket.Upgrader{}
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			seq := plan.next()
			status, payload := plan.reply(seq, msg)
			if status != http.StatusOK {
				// No status line on a socket; drop the frame so the
				// client times out instead.
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, []byte(payload)); err != nil {
				return
			}
		}
	})

	addr := fmt.Sprintf(":%d", port)
	log.Printf("JSON-RPC sample WebSocket server listening on %s", addr)
	return http.ListenAndServe(addr, mux)
}
