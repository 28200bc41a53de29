// Package livefeed maintains a client-side live session to the catalog's
// invalidation channel. It probes a prioritized list of candidate endpoints,
// reconnects after a fixed delay when an established connection drops, and
// hands received invalidation notices to local subscribers.
package livefeed

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// TypeProductsInvalidate is the one message kind the feed currently carries.
// Any other type is reserved for future kinds and ignored.
const TypeProductsInvalidate = "products:invalidate"

// DefaultBackoff is the fixed delay before a reconnect attempt. Deliberately
// not exponential: the feed is cheap to probe and a stale catalog view is
// worse than a little reconnect traffic.
const DefaultBackoff = 1500 * time.Millisecond

// ErrClosed is returned by Connect after Close has been called.
var ErrClosed = errors.New("livefeed: client closed")

// State is the connection lifecycle of the client.
type State int32

const (
	StateIdle State = iota
	StateConnecting
	StateOpen
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	default:
		return "closed"
	}
}

// Message is an inbound live-channel message.
type Message struct {
	Type string `json:"type"`
}

// Subscriber receives invalidation notices. Dispatch is synchronous on the
// read goroutine; keep handlers short.
type Subscriber func(Message)

// Option configures a Client.
type Option func(*Client)

func WithLogger(logger *logrus.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

func WithBackoff(d time.Duration) Option {
	return func(c *Client) { c.backoff = d }
}

func WithDialer(d *websocket.Dialer) Option {
	return func(c *Client) { c.dialer = d }
}

// Client manages at most one live session at a time.
type Client struct {
	candidates []string
	dialer     *websocket.Dialer
	logger     *logrus.Logger
	backoff    time.Duration

	mu       sync.Mutex
	state    State
	conn     *websocket.Conn
	endpoint string // endpoint of the current or last successful connection
	subs     []Subscriber
	bypass   string
	timer    *time.Timer
	closed   bool
}

// New builds a client over the given candidate endpoints, ordered most
// likely-reachable first. Connect must be called to establish the session.
func New(candidates []string, opts ...Option) *Client {
	c := &Client{
		candidates: append([]string(nil), candidates...),
		dialer:     websocket.DefaultDialer,
		backoff:    DefaultBackoff,
		bypass:     uuid.NewString(),
		state:      StateIdle,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Connect probes the candidates sequentially and stops at the first that
// opens. If every candidate fails, the client stays disconnected until
// Connect is called again; there is no standing retry loop over a list that
// never connected.
func (c *Client) Connect() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.state = StateConnecting
	order := append([]string(nil), c.candidates...)
	c.mu.Unlock()

	return c.connectSequentially(order)
}

// connectSequentially walks the endpoint order with a plain cursor; a failed
// attempt moves to the next candidate, a success starts the read loop.
func (c *Client) connectSequentially(order []string) error {
	for _, endpoint := range order {
		if c.logger != nil {
			c.logger.WithField("endpoint", endpoint).Debug("attempting live feed connection")
		}
		conn, resp, err := c.dialer.Dial(endpoint, nil)
		if resp != nil && resp.Body != nil {
			resp.Body.Close()
		}
		if err != nil {
			if c.logger != nil {
				c.logger.WithError(err).WithField("endpoint", endpoint).Debug("live feed candidate failed")
			}
			continue
		}

		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			conn.Close()
			return ErrClosed
		}
		c.conn = conn
		c.endpoint = endpoint
		c.state = StateOpen
		c.mu.Unlock()

		if c.logger != nil {
			c.logger.WithField("endpoint", endpoint).Info("live feed connected")
		}
		go c.readLoop(conn, endpoint)
		return nil
	}

	c.mu.Lock()
	c.state = StateClosed
	c.mu.Unlock()
	return fmt.Errorf("livefeed: no endpoint reachable out of %d candidates", len(order))
}

// readLoop consumes the session until it breaks, then schedules a reconnect.
func (c *Client) readLoop(conn *websocket.Conn, endpoint string) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			conn.Close()
			c.mu.Lock()
			stale := c.conn != conn || c.closed
			c.mu.Unlock()
			if stale {
				return
			}
			if c.logger != nil {
				c.logger.WithError(err).WithField("endpoint", endpoint).Warn("live feed connection lost")
			}
			c.scheduleReconnect(endpoint)
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil || msg.Type == "" {
			// Malformed payloads are dropped; they must never take the
			// session down.
			if c.logger != nil {
				c.logger.Debug("dropping malformed live feed payload")
			}
			continue
		}
		if msg.Type != TypeProductsInvalidate {
			continue
		}
		c.dispatch(msg)
	}
}

// dispatch refreshes the bypass token and hands the notice to subscribers.
func (c *Client) dispatch(msg Message) {
	c.mu.Lock()
	c.bypass = uuid.NewString()
	subs := append([]Subscriber(nil), c.subs...)
	c.mu.Unlock()

	for _, fn := range subs {
		fn(msg)
	}
}

// scheduleReconnect retries after the fixed backoff, the lost endpoint first
// and then the remaining candidates in their original order.
func (c *Client) scheduleReconnect(lost string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.state = StateClosed
	c.conn = nil

	order := make([]string, 0, len(c.candidates)+1)
	order = append(order, lost)
	for _, cand := range c.candidates {
		if cand != lost {
			order = append(order, cand)
		}
	}
	c.timer = time.AfterFunc(c.backoff, func() { c.reconnect(order) })
}

func (c *Client) reconnect(order []string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.state = StateConnecting
	c.mu.Unlock()

	if err := c.connectSequentially(order); err != nil {
		if c.logger != nil {
			c.logger.WithError(err).Warn("live feed reconnect failed, retrying")
		}
		// The session had been established once, so keep retrying it.
		c.mu.Lock()
		if !c.closed {
			c.timer = time.AfterFunc(c.backoff, func() { c.reconnect(order) })
		}
		c.mu.Unlock()
	}
}

// Subscribe registers fn for every invalidation notice received.
func (c *Client) Subscribe(fn Subscriber) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subs = append(c.subs, fn)
}

// State reports the current connection state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Endpoint reports the endpoint of the current or last successful session.
func (c *Client) Endpoint() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.endpoint
}

// BypassToken returns the current cache-busting value for read requests. It
// carries no meaning server-side; it only perturbs intermediary cache keys.
func (c *Client) BypassToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bypass
}

// Bump regenerates the bypass token, for use after local mutations whose
// broadcast notice this same client would otherwise wait on.
func (c *Client) Bump() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bypass = uuid.NewString()
	return c.bypass
}

// Close tears the client down; it cannot be reused afterward.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	c.state = StateClosed
	if c.timer != nil {
		c.timer.Stop()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
