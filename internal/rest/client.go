package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/BrayanMorningstar237/waiter-sync/internal/orders"
)

// fetchTimeout caps one-shot calls; a stuck bulk fetch is treated as a
// failure rather than left pending.
const fetchTimeout = 8 * time.Second

// Session is the identity resolved once at startup and threaded through
// every call. Nothing in this package reads ambient storage.
type Session struct {
	RestaurantID string
	Token        string
}

// APIError carries the backend's rejection of a call. Message prefers the
// response body over a generic status line so it is suitable for direct
// display.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string { return e.Message }

// Client talks to the order backend's REST surface.
type Client struct {
	baseURL string
	session Session
	http    *http.Client
}

// NewClient creates a client for the given backend base URL.
func NewClient(baseURL string, session Session) *Client {
	return &Client{
		baseURL: baseURL,
		session: session,
		http:    &http.Client{Timeout: fetchTimeout},
	}
}

// WithTimeout overrides the per-call timeout. Mostly for tests.
func (c *Client) WithTimeout(d time.Duration) *Client {
	c.http.Timeout = d
	return c
}

// Session returns the identity this client is bound to.
func (c *Client) Session() Session { return c.session }

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.session.Token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("call %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Message: errorMessage(resp)}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// errorMessage extracts a display-ready message from an error response,
// preferring the body's message/error field over a generic status line.
func errorMessage(resp *http.Response) string {
	var body struct {
		Message string `json:"message"`
		Err     string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Err != "" {
			return body.Err
		}
	}
	return fmt.Sprintf("server returned status %d", resp.StatusCode)
}

// FetchOrders retrieves the full order snapshot for the session's
// restaurant.
func (c *Client) FetchOrders(ctx context.Context) ([]orders.Order, error) {
	q := url.Values{"status": {"all"}}
	var out []orders.Order
	if err := c.do(ctx, http.MethodGet, "/orders?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateStatus asks the backend to move an order to a new status and
// returns the authoritative updated order.
func (c *Client) UpdateStatus(ctx context.Context, id, status string) (orders.Order, error) {
	var out orders.Order
	body := map[string]string{"status": status}
	err := c.do(ctx, http.MethodPut, "/orders/"+id+"/status", body, &out)
	return out, err
}

// MarkPaid marks an order paid; the server assigns paidAt.
func (c *Client) MarkPaid(ctx context.Context, id string) (orders.Order, error) {
	var out orders.Order
	err := c.do(ctx, http.MethodPut, "/orders/"+id+"/pay", nil, &out)
	return out, err
}

// MarkUnpaid reverts an order's payment status to pending.
func (c *Client) MarkUnpaid(ctx context.Context, id string) (orders.Order, error) {
	var out orders.Order
	err := c.do(ctx, http.MethodPut, "/orders/"+id+"/unpay", nil, &out)
	return out, err
}

// CreateOrder submits a checkout payload and returns the created order
// with its server-assigned id and number.
func (c *Client) CreateOrder(ctx context.Context, payload OrderPayload) (orders.Order, error) {
	var out orders.Order
	err := c.do(ctx, http.MethodPost, "/orders", payload, &out)
	return out, err
}
