package live

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"
)

// Conn is one established push connection.
type Conn interface {
	// Next blocks until the next event arrives or the connection dies.
	Next() (Event, error)
	// Ack answers a server heartbeat on transports that require a
	// liveness reply. No-op for plain event streams.
	Ack() error
	Close() error
}

// Dialer establishes a push connection scoped to one restaurant.
type Dialer interface {
	Dial(ctx context.Context, restaurantID, token string) (Conn, error)
}

// Config parameterizes a Channel.
type Config struct {
	RestaurantID string
	Token        string

	// Handler receives every non-heartbeat event. Required.
	Handler func(Event)
	// OnStateChange, when set, observes connection state transitions.
	OnStateChange func(ConnectionState)

	// BaseDelay grows linearly with consecutive failures up to MaxDelay.
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	MaxAttempts int
}

const (
	defaultBaseDelay   = 2 * time.Second
	defaultMaxDelay    = 30 * time.Second
	defaultMaxAttempts = 10
)

// ErrChannelClosed is returned by Open on a handle that was closed.
var ErrChannelClosed = errors.New("live channel closed")

// Channel owns one live push connection and its reconnect loop. At most
// one connection attempt is in flight per handle; a manual Close cancels
// any pending reconnect and never triggers another attempt.
type Channel struct {
	cfg    Config
	dialer Dialer

	mu      sync.Mutex
	state   ConnectionState
	cancel  context.CancelFunc
	running bool
	closed  bool
	done    chan struct{}

	// after is time.After, injectable for backoff tests.
	after func(time.Duration) <-chan time.Time
}

// NewChannel creates a channel using the given transport dialer.
func NewChannel(cfg Config, dialer Dialer) *Channel {
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = defaultBaseDelay
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = defaultMaxDelay
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	return &Channel{
		cfg:    cfg,
		dialer: dialer,
		state:  StateDisconnected,
		after:  time.After,
	}
}

// State returns the current connection state.
func (c *Channel) State() ConnectionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Open starts the connection loop. Calling Open while the loop is still
// running or after Close is an error. After the retry budget is exhausted
// the loop exits and the caller may Open again explicitly.
func (c *Channel) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrChannelClosed
	}
	if c.running {
		return errors.New("live channel already open")
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.running = true
	c.done = make(chan struct{})
	go c.run(ctx)
	return nil
}

// Close tears the channel down: the active connection is closed and any
// pending reconnect timer is cancelled. Safe to call more than once.
func (c *Channel) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	cancel := c.cancel
	done := c.done
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

func (c *Channel) setState(s ConnectionState) {
	c.mu.Lock()
	if c.state == s {
		c.mu.Unlock()
		return
	}
	c.state = s
	c.mu.Unlock()
	if c.cfg.OnStateChange != nil {
		c.cfg.OnStateChange(s)
	}
}

// run is the single connection loop: dial, consume until the connection
// dies, back off, repeat. Stops for good after MaxAttempts consecutive
// failures or on context cancellation.
func (c *Channel) run(ctx context.Context) {
	defer close(c.done)
	defer func() {
		c.mu.Lock()
		c.running = false
		c.mu.Unlock()
	}()

	attempts := 0
	for {
		c.setState(StateConnecting)
		conn, err := c.dialer.Dial(ctx, c.cfg.RestaurantID, c.cfg.Token)
		if err == nil {
			attempts = 0
			c.setState(StateConnected)
			// Next blocks inside the transport, so cancellation must
			// tear the connection out from under it.
			stop := make(chan struct{})
			go func() {
				select {
				case <-ctx.Done():
					_ = conn.Close()
				case <-stop:
				}
			}()
			err = c.consume(conn)
			close(stop)
			_ = conn.Close()
		}

		if ctx.Err() != nil {
			c.setState(StateDisconnected)
			return
		}
		if err != nil {
			log.Printf("[live] connection lost: %v", err)
		}
		c.setState(StateDisconnected)

		attempts++
		if attempts >= c.cfg.MaxAttempts {
			log.Printf("[live] giving up after %d consecutive failures", attempts)
			return
		}
		delay := backoffDelay(attempts, c.cfg.BaseDelay, c.cfg.MaxDelay)
		log.Printf("[live] reconnecting in %s (attempt %d/%d)", delay, attempts, c.cfg.MaxAttempts)
		select {
		case <-c.after(delay):
		case <-ctx.Done():
			return
		}
	}
}

// consume forwards events until the connection fails. Heartbeats are
// acknowledged and swallowed.
func (c *Channel) consume(conn Conn) error {
	for {
		ev, err := conn.Next()
		if err != nil {
			return err
		}
		if ev.Type == EventHeartbeat {
			if err := conn.Ack(); err != nil {
				return err
			}
			continue
		}
		c.cfg.Handler(ev)
	}
}

func backoffDelay(attempt int, base, limit time.Duration) time.Duration {
	d := time.Duration(attempt) * base
	if d > limit {
		return limit
	}
	return d
}
