package live

import (
	"context"
	"net/http"
	"net/url"
	"sync"

	"github.com/gorilla/websocket"
)

// WSDialer connects over an authenticated WebSocket.
type WSDialer struct {
	// BaseURL is the ws:// or wss:// root of the backend.
	BaseURL string
}

func (d *WSDialer) Dial(ctx context.Context, restaurantID, token string) (Conn, error) {
	u := d.BaseURL + "/ws?" + url.Values{"restaurant": {restaurantID}}.Encode()
	header := http.Header{"Authorization": {"Bearer " + token}}
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, u, header)
	if err != nil {
		return nil, err
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	return &wsConn{conn: conn}, nil
}

// wsConn wraps a websocket connection. Writes are serialized; reads stay
// on the channel's single consume goroutine.
type wsConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsConn) Next() (Event, error) {
	var ev Event
	if err := c.conn.ReadJSON(&ev); err != nil {
		return Event{}, err
	}
	return ev, nil
}

// Ack replies to a server heartbeat so the backend can tell live
// consumers from dead ones.
func (c *wsConn) Ack() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(map[string]string{"type": "heartbeat_ack"})
}

func (c *wsConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.Close()
}
