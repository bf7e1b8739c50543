// Package websocket wraps gorilla/websocket into a persistent call/response
// client for JSON-RPC endpoints that speak ws:// (Ethereum-style nodes).
package websocket

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// Config configures the WebSocket client behavior.
type Config struct {
	URL              string
	Headers          http.Header
	HandshakeTimeout time.Duration
	CallTimeout      time.Duration
	MaxMessageSize   int64
}

// Client is a single-owner WebSocket connection. It is not safe for
// concurrent use; each worker holds exactly one for its lifetime.
type Client struct {
	url         string
	headers     http.Header
	dialer      *websocket.Dialer
	conn        *websocket.Conn
	callTimeout time.Duration
	maxMsgSize  int64
}

// NewClient creates a WebSocket client with the given configuration. No
// connection is made until Connect.
func NewClient(cfg Config) *Client {
	if cfg.HandshakeTimeout == 0 {
		cfg.HandshakeTimeout = 30 * time.Second
	}
	if cfg.MaxMessageSize == 0 {
		cfg.MaxMessageSize = 1024 * 1024
	}

	dialer := &websocket.Dialer{
		HandshakeTimeout: cfg.HandshakeTimeout,
		Proxy:            http.ProxyFromEnvironment,
	}

	return &Client{
		url:         cfg.URL,
		headers:     cfg.Headers,
		dialer:      dialer,
		callTimeout: cfg.CallTimeout,
		maxMsgSize:  cfg.MaxMessageSize,
	}
}

// Connect establishes the WebSocket connection. Calling Connect on an
// already-connected client is an error.
func (c *Client) Connect(ctx context.Context) error {
	if c.conn != nil {
		return fmt.Errorf("already connected")
	}

	conn, resp, err := c.dialer.DialContext(ctx, c.url, c.headers)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("websocket dial failed with status %d: %w", resp.StatusCode, err)
		}
		return fmt.Errorf("websocket dial failed: %w", err)
	}
	conn.SetReadLimit(c.maxMsgSize)
	c.conn = conn
	return nil
}

// Connected reports whether a live connection is held.
func (c *Client) Connected() bool {
	return c.conn != nil
}

// Call sends one text frame and blocks for the next frame from the server,
// both bounded by the per-call timeout. JSON-RPC over a dedicated socket has
// exactly one request in flight, so the next frame is the response. Any
// error leaves the connection in an unknown state; the caller must Reset
// before the next call.
func (c *Client) Call(payload []byte) ([]byte, error) {
	if c.conn == nil {
		return nil, fmt.Errorf("not connected")
	}

	deadline := time.Time{}
	if c.callTimeout > 0 {
		deadline = time.Now().Add(c.callTimeout)
	}

	if err := c.conn.SetWriteDeadline(deadline); err != nil {
		return nil, fmt.Errorf("set write deadline: %w", err)
	}
	if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		return nil, fmt.Errorf("write message: %w", err)
	}

	if err := c.conn.SetReadDeadline(deadline); err != nil {
		return nil, fmt.Errorf("set read deadline: %w", err)
	}
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return nil, fmt.Errorf("read message: %w", err)
	}
	return data, nil
}

// Reset drops the current connection so the next Call can redial.
func (c *Client) Reset() {
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
}

// Close closes the connection gracefully.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}

	err := c.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(5*time.Second),
	)

	closeErr := c.conn.Close()
	c.conn = nil

	if err != nil {
		return err
	}
	return closeErr
}
