// Package wsconn provides a production-grade WebSocket client with reconnection.
package wsconn

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/quantfi/flasharb/internal/apperror"
)

// State represents the connection state.
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
	StateReconnecting State = "reconnecting"
)

// Config holds WebSocket client configuration.
type Config struct {
	URL            string
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	MaxReconnects  int // 0 = infinite
	PingInterval   time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig(url string) Config {
	return Config{
		URL:            url,
		InitialBackoff: 1 * time.Second,
		MaxBackoff:     30 * time.Second,
		MaxReconnects:  0, // infinite
		PingInterval:   30 * time.Second,
	}
}

// Client is a production-grade WebSocket client.
type Client struct {
	config     Config
	state      State
	stateMu    sync.RWMutex
	conn       *websocket.Conn
	connMu     sync.Mutex
	messages   chan []byte
	done       chan struct{}
	closeOnce  sync.Once
	reconnects int
}

// New creates a new WebSocket client.
func New(config Config) *Client {
	return &Client{
		config:   config,
		state:    StateDisconnected,
		messages: make(chan []byte, 100),
		done:     make(chan struct{}),
	}
}

// Connect establishes the WebSocket connection and starts the read loop.
// The read loop reconnects with exponential backoff until Close is called
// or the reconnect budget is exhausted.
func (c *Client) Connect(ctx context.Context) error {
	c.setState(StateConnecting)

	conn, err := c.dial(ctx)
	if err != nil {
		c.setState(StateDisconnected)
		return apperror.New(apperror.CodeWebSocketConnectionError,
			apperror.WithCause(err),
			apperror.WithContext("dial "+c.config.URL),
		)
	}

	c.setConn(conn)
	c.setState(StateConnected)

	go c.readLoop(ctx)
	go c.pingLoop(ctx)

	return nil
}

func (c *Client) dial(ctx context.Context) (*websocket.Conn, error) {
	conn, _, err := websocket.Dial(ctx, c.config.URL, nil)
	if err != nil {
		return nil, err
	}
	conn.SetReadLimit(1 << 20)
	return conn, nil
}

func (c *Client) readLoop(ctx context.Context) {
	for {
		select {
		case <-c.done:
			return
		case <-ctx.Done():
			return
		default:
		}

		conn := c.getConn()
		if conn == nil {
			return
		}

		_, data, err := conn.Read(ctx)
		if err != nil {
			if ctx.Err() != nil || c.isClosed() {
				return
			}
			if !c.reconnect(ctx) {
				return
			}
			continue
		}

		select {
		case c.messages <- data:
		case <-c.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

// reconnect re-dials with exponential backoff. Returns false when the
// client is closed or the reconnect budget ran out.
func (c *Client) reconnect(ctx context.Context) bool {
	c.setState(StateReconnecting)

	backoff := c.config.InitialBackoff
	for {
		c.reconnects++
		if c.config.MaxReconnects > 0 && c.reconnects > c.config.MaxReconnects {
			c.setState(StateDisconnected)
			return false
		}

		select {
		case <-time.After(backoff):
		case <-c.done:
			return false
		case <-ctx.Done():
			return false
		}

		conn, err := c.dial(ctx)
		if err == nil {
			c.setConn(conn)
			c.setState(StateConnected)
			return true
		}

		backoff *= 2
		if backoff > c.config.MaxBackoff {
			backoff = c.config.MaxBackoff
		}
	}
}

func (c *Client) pingLoop(ctx context.Context) {
	if c.config.PingInterval <= 0 {
		return
	}

	ticker := time.NewTicker(c.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			conn := c.getConn()
			if conn == nil || c.State() != StateConnected {
				continue
			}
			// Read loop notices the broken connection and reconnects.
			_ = conn.Ping(ctx)
		case <-c.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Send sends a message through the WebSocket.
func (c *Client) Send(ctx context.Context, msg []byte) error {
	conn := c.getConn()
	if conn == nil || c.State() != StateConnected {
		return apperror.New(apperror.CodeWebSocketClosed)
	}

	if err := conn.Write(ctx, websocket.MessageText, msg); err != nil {
		return apperror.New(apperror.CodeWebSocketConnectionError, apperror.WithCause(err))
	}
	return nil
}

// Messages returns the channel for receiving messages.
func (c *Client) Messages() <-chan []byte {
	return c.messages
}

// State returns the current connection state.
func (c *Client) State() State {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.state
}

// Close gracefully closes the WebSocket connection.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		if conn := c.getConn(); conn != nil {
			closeErr := conn.Close(websocket.StatusNormalClosure, "shutting down")
			if closeErr != nil && !errors.Is(closeErr, context.Canceled) {
				err = closeErr
			}
		}
		c.setState(StateDisconnected)
	})
	return err
}

func (c *Client) isClosed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

func (c *Client) setState(state State) {
	c.stateMu.Lock()
	c.state = state
	c.stateMu.Unlock()
}

func (c *Client) setConn(conn *websocket.Conn) {
	c.connMu.Lock()
	c.conn = conn
	c.connMu.Unlock()
}

func (c *Client) getConn() *websocket.Conn {
	c.connMu.Lock()
	defer c.connMu.Unlock()
	return c.conn
}
