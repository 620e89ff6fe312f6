package live

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/BrayanMorningstar237/waiter-sync/internal/orders"
)

// scriptedConn feeds a fixed sequence of events, then fails.
type scriptedConn struct {
	events []Event
	i      int
	acks   int
	mu     sync.Mutex
}

func (c *scriptedConn) Next() (Event, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.i >= len(c.events) {
		return Event{}, errors.New("connection dropped")
	}
	ev := c.events[c.i]
	c.i++
	return ev, nil
}

func (c *scriptedConn) Ack() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.acks++
	return nil
}

func (c *scriptedConn) Close() error { return nil }

// scriptedDialer fails a set number of times before optionally handing
// out connections.
type scriptedDialer struct {
	mu       sync.Mutex
	failures int
	dials    int
	conns    []*scriptedConn
}

func (d *scriptedDialer) Dial(ctx context.Context, restaurantID, token string) (Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dials++
	if d.dials <= d.failures {
		return nil, errors.New("connection refused")
	}
	if len(d.conns) == 0 {
		return nil, errors.New("no more scripted connections")
	}
	c := d.conns[0]
	d.conns = d.conns[1:]
	return c, nil
}

func (d *scriptedDialer) dialCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dials
}

// recordingClock captures requested delays and releases them instantly.
type recordingClock struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (c *recordingClock) after(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	c.delays = append(c.delays, d)
	c.mu.Unlock()
	ch := make(chan time.Time, 1)
	ch <- time.Now()
	return ch
}

func (c *recordingClock) recorded() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]time.Duration, len(c.delays))
	copy(out, c.delays)
	return out
}

func waitDone(t *testing.T, ch *Channel) {
	t.Helper()
	select {
	case <-ch.done:
	case <-time.After(2 * time.Second):
		t.Fatalf("channel loop did not stop in time")
	}
}

func TestBackoffMonotonicAndCapped(t *testing.T) {
	dialer := &scriptedDialer{failures: 100}
	clock := &recordingClock{}
	ch := NewChannel(Config{
		RestaurantID: "r1",
		Token:        "t",
		Handler:      func(Event) {},
		BaseDelay:    2 * time.Second,
		MaxDelay:     5 * time.Second,
		MaxAttempts:  6,
	}, dialer)
	ch.after = clock.after

	if err := ch.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	waitDone(t, ch)

	if got := dialer.dialCount(); got != 6 {
		t.Fatalf("expected exactly MaxAttempts dials, got %d", got)
	}
	delays := clock.recorded()
	// one backoff wait between each pair of attempts
	if len(delays) != 5 {
		t.Fatalf("expected 5 backoff waits, got %v", delays)
	}
	want := []time.Duration{2 * time.Second, 4 * time.Second, 5 * time.Second, 5 * time.Second, 5 * time.Second}
	for i := range want {
		if delays[i] != want[i] {
			t.Fatalf("delay %d: expected %s, got %s (all: %v)", i, want[i], delays[i], delays)
		}
	}
	for i := 1; i < len(delays); i++ {
		if delays[i] < delays[i-1] {
			t.Fatalf("backoff must be non-decreasing: %v", delays)
		}
	}
	if ch.State() != StateDisconnected {
		t.Fatalf("exhausted channel must stay disconnected, got %s", ch.State())
	}
}

func TestNoDialsAfterGivingUpUntilReopen(t *testing.T) {
	dialer := &scriptedDialer{failures: 100}
	clock := &recordingClock{}
	ch := NewChannel(Config{
		RestaurantID: "r1",
		Token:        "t",
		Handler:      func(Event) {},
		MaxAttempts:  3,
	}, dialer)
	ch.after = clock.after

	if err := ch.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	waitDone(t, ch)
	stopped := dialer.dialCount()
	if stopped != 3 {
		t.Fatalf("expected 3 dials, got %d", stopped)
	}

	// explicit reopen restarts the attempt budget
	if err := ch.Open(); err != nil {
		t.Fatalf("reopen: %v", err)
	}
	waitDone(t, ch)
	if dialer.dialCount() != stopped+3 {
		t.Fatalf("reopen should dial again, got %d total", dialer.dialCount())
	}
}

func TestCloseCancelsPendingReconnect(t *testing.T) {
	dialer := &scriptedDialer{failures: 100}
	release := make(chan time.Time)
	var mu sync.Mutex
	waits := 0
	ch := NewChannel(Config{
		RestaurantID: "r1",
		Token:        "t",
		Handler:      func(Event) {},
		MaxAttempts:  10,
	}, dialer)
	ch.after = func(d time.Duration) <-chan time.Time {
		mu.Lock()
		waits++
		mu.Unlock()
		return release
	}

	if err := ch.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	// wait until the loop parks on the reconnect timer
	deadline := time.Now().Add(2 * time.Second)
	for {
		mu.Lock()
		w := waits
		mu.Unlock()
		if w >= 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("loop never reached the backoff wait")
		}
		time.Sleep(time.Millisecond)
	}

	ch.Close()
	if got := dialer.dialCount(); got != 1 {
		t.Fatalf("close during backoff must not dial again, got %d", got)
	}
	if ch.State() != StateDisconnected {
		t.Fatalf("closed channel must report disconnected")
	}
	if err := ch.Open(); err != ErrChannelClosed {
		t.Fatalf("reopening a closed handle must fail, got %v", err)
	}
}

func TestHeartbeatsAckedNotForwarded(t *testing.T) {
	conn := &scriptedConn{events: []Event{
		{Type: EventConnected},
		{Type: EventHeartbeat},
		{Type: EventNewOrder, Order: &orders.Order{ID: "o1"}},
		{Type: EventHeartbeat},
	}}
	dialer := &scriptedDialer{conns: []*scriptedConn{conn}}
	clock := &recordingClock{}

	var mu sync.Mutex
	var seen []EventType
	ch := NewChannel(Config{
		RestaurantID: "r1",
		Token:        "t",
		Handler: func(ev Event) {
			mu.Lock()
			seen = append(seen, ev.Type)
			mu.Unlock()
		},
		MaxAttempts: 1, // stop after the scripted connection drops
	}, dialer)
	ch.after = clock.after

	if err := ch.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	waitDone(t, ch)

	mu.Lock()
	defer mu.Unlock()
	want := []EventType{EventConnected, EventNewOrder}
	if len(seen) != len(want) {
		t.Fatalf("expected %v, got %v", want, seen)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, seen)
		}
	}
	if conn.acks != 2 {
		t.Fatalf("each heartbeat must be acknowledged, got %d acks", conn.acks)
	}
}

// blockingConn parks Next until its own Close, like a healthy idle
// socket between heartbeats.
type blockingConn struct {
	closed    chan struct{}
	closeOnce sync.Once
}

func newBlockingConn() *blockingConn {
	return &blockingConn{closed: make(chan struct{})}
}

func (c *blockingConn) Next() (Event, error) {
	<-c.closed
	return Event{}, errors.New("connection closed")
}

func (c *blockingConn) Ack() error { return nil }

func (c *blockingConn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}

type singleConnDialer struct{ conn Conn }

func (d *singleConnDialer) Dial(ctx context.Context, restaurantID, token string) (Conn, error) {
	return d.conn, nil
}

func TestCloseUnblocksLiveConnection(t *testing.T) {
	conn := newBlockingConn()
	ch := NewChannel(Config{
		RestaurantID: "r1",
		Token:        "t",
		Handler:      func(Event) {},
	}, &singleConnDialer{conn: conn})

	if err := ch.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for ch.State() != StateConnected {
		if time.Now().After(deadline) {
			t.Fatalf("channel never connected")
		}
		time.Sleep(time.Millisecond)
	}

	// teardown must not wait for the transport to deliver anything
	closed := make(chan struct{})
	go func() {
		ch.Close()
		close(closed)
	}()
	select {
	case <-closed:
	case <-time.After(time.Second):
		t.Fatalf("Close blocked on an idle live connection")
	}
	if ch.State() != StateDisconnected {
		t.Fatalf("closed channel must report disconnected, got %s", ch.State())
	}
}

func TestSuccessfulConnectResetsAttempts(t *testing.T) {
	conn := &scriptedConn{events: []Event{{Type: EventConnected}}}
	dialer := &scriptedDialer{failures: 2, conns: []*scriptedConn{conn}}
	clock := &recordingClock{}
	ch := NewChannel(Config{
		RestaurantID: "r1",
		Token:        "t",
		Handler:      func(Event) {},
		BaseDelay:    time.Second,
		MaxDelay:     10 * time.Second,
		MaxAttempts:  4,
	}, dialer)
	ch.after = clock.after

	if err := ch.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	waitDone(t, ch)

	// two failed dials, one success, connection drops, then a fresh
	// backoff run starting from attempt 1 again
	delays := clock.recorded()
	if len(delays) < 3 {
		t.Fatalf("expected backoff waits around the successful connect, got %v", delays)
	}
	if delays[2] != time.Second {
		t.Fatalf("attempt counter must reset after a successful connect: %v", delays)
	}
}
