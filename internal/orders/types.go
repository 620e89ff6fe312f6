package orders

import "time"

// Order statuses, in lifecycle order.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusPreparing = "preparing"
	StatusReady     = "ready"
	StatusServed    = "served"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Payment statuses.
const (
	PaymentPending  = "pending"
	PaymentPaid     = "paid"
	PaymentRefunded = "refunded" // assigned server-side only
)

// Order types.
const (
	TypeDineIn   = "dine_in"
	TypeTakeaway = "takeaway"
)

// statusRank orders the forward progression. Cancelled is not ranked;
// it is reachable from any non-terminal status.
var statusRank = map[string]int{
	StatusPending:   0,
	StatusConfirmed: 1,
	StatusPreparing: 2,
	StatusReady:     3,
	StatusServed:    4,
	StatusCompleted: 5,
}

// ValidStatus reports whether s is a known order status.
func ValidStatus(s string) bool {
	if s == StatusCancelled {
		return true
	}
	_, ok := statusRank[s]
	return ok
}

// IsTerminal reports whether no further transitions are allowed from s.
func IsTerminal(s string) bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransition reports whether an order may move from one status to
// another: any forward move along the progression, or cancellation from
// any non-terminal status.
func CanTransition(from, to string) bool {
	if IsTerminal(from) {
		return false
	}
	if to == StatusCancelled {
		return true
	}
	f, ok1 := statusRank[from]
	t, ok2 := statusRank[to]
	return ok1 && ok2 && t > f
}

// NextStatus returns the next status in the progression, or "" when the
// order is already terminal or served-and-awaiting-completion has no
// single successor rule to apply.
func NextStatus(from string) string {
	r, ok := statusRank[from]
	if !ok || from == StatusCompleted {
		return ""
	}
	for s, rank := range statusRank {
		if rank == r+1 {
			return s
		}
	}
	return ""
}

// OrderItem is one ordered line. Prices are minor currency units.
type OrderItem struct {
	MenuItemID   string `json:"menuItem"`
	Name         string `json:"name"`
	Quantity     int    `json:"quantity"`
	Price        int64  `json:"price"` // unit price as charged at submission
	IsTakeaway   bool   `json:"isTakeaway"`
	Instructions string `json:"instructions,omitempty"`
}

// Order is the central entity of the platform. The server assigns ID and
// OrderNumber; the client treats the server copy as authoritative except
// during the optimistic window of an in-flight mutation.
type Order struct {
	ID            string      `json:"_id"`
	OrderNumber   string      `json:"orderNumber"`
	RestaurantID  string      `json:"restaurant"`
	CustomerName  string      `json:"customerName"`
	Items         []OrderItem `json:"items"`
	TotalAmount   int64       `json:"totalAmount"`
	Status        string      `json:"status"`
	PaymentStatus string      `json:"paymentStatus"`
	OrderType     string      `json:"orderType"`
	TableNumber   string      `json:"table,omitempty"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
	PaidAt        *time.Time  `json:"paidAt,omitempty"`

	// JustPaid is a transient UI flag set right after a successful
	// mark-as-paid. Never serialized, never sent on the wire.
	JustPaid bool `json:"-"`
}

// Clone returns a deep copy of the order.
func (o Order) Clone() Order {
	c := o
	if o.Items != nil {
		c.Items = make([]OrderItem, len(o.Items))
		copy(c.Items, o.Items)
	}
	if o.PaidAt != nil {
		t := *o.PaidAt
		c.PaidAt = &t
	}
	return c
}
