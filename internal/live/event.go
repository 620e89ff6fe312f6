package live

import "github.com/BrayanMorningstar237/waiter-sync/internal/orders"

// EventType discriminates push events from the backend.
type EventType string

const (
	EventConnected    EventType = "connected"
	EventNewOrder     EventType = "new_order"
	EventOrderUpdated EventType = "order_updated"
	EventOrderPaid    EventType = "order_paid"
	// EventHeartbeat is transport-internal: acknowledged where the
	// transport requires it and never forwarded to subscribers.
	EventHeartbeat EventType = "heartbeat"
)

// Event is one message on the live channel.
type Event struct {
	Type  EventType     `json:"type"`
	Order *orders.Order `json:"order,omitempty"`
}

// ConnectionState reports the channel's view of its connection.
type ConnectionState string

const (
	StateConnecting   ConnectionState = "connecting"
	StateConnected    ConnectionState = "connected"
	StateDisconnected ConnectionState = "disconnected"
)
