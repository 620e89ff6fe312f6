package live

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// SSEDialer connects over a plain Server-Sent Events stream.
type SSEDialer struct {
	// BaseURL is the http:// or https:// root of the backend.
	BaseURL string
	// Client, when nil, falls back to a streaming-safe default (no
	// overall timeout; lifetime is bound to the dial context).
	Client *http.Client
}

func (d *SSEDialer) Dial(ctx context.Context, restaurantID, token string) (Conn, error) {
	u := d.BaseURL + "/events?" + url.Values{"restaurant": {restaurantID}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "text/event-stream")

	client := d.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("event stream returned status %d", resp.StatusCode)
	}
	scanner := bufio.NewScanner(resp.Body)
	// a frame carries a whole order; the default 64KB line cap is too
	// tight for large item lists
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	return &sseConn{resp: resp, scanner: scanner}, nil
}

// sseConn reads "data:" frames off an event stream. Comment lines and
// event-name lines are skipped; each data frame carries one JSON event.
type sseConn struct {
	resp    *http.Response
	scanner *bufio.Scanner
}

func (c *sseConn) Next() (Event, error) {
	for c.scanner.Scan() {
		line := strings.TrimSpace(c.scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "" {
			continue
		}
		var ev Event
		if err := json.Unmarshal([]byte(payload), &ev); err != nil {
			return Event{}, fmt.Errorf("malformed event frame: %w", err)
		}
		return ev, nil
	}
	if err := c.scanner.Err(); err != nil {
		return Event{}, err
	}
	return Event{}, fmt.Errorf("event stream ended")
}

// Ack is a no-op: the event-stream transport has no client-to-server
// liveness reply.
func (c *sseConn) Ack() error { return nil }

func (c *sseConn) Close() error { return c.resp.Body.Close() }
