// Package devserver is a wire-compatible stand-in for the order backend,
// used by integration tests and local development. It mirrors the REST +
// push contract the SDK consumes; the production backend itself is an
// external system and lives elsewhere.
package devserver

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/BrayanMorningstar237/waiter-sync/internal/live"
	"github.com/BrayanMorningstar237/waiter-sync/internal/orders"
	"github.com/BrayanMorningstar237/waiter-sync/internal/rest"
	"github.com/BrayanMorningstar237/waiter-sync/internal/validation"
)

type subscriber struct {
	restaurantID string
	ch           chan live.Event
}

// Server holds the stub's in-memory state.
type Server struct {
	mu     sync.Mutex
	byID   map[string]*orders.Order
	ids    []string // newest first
	seq    int
	tokens map[string]string // bearer token -> restaurant id
	subs   map[*subscriber]struct{}

	validate  *validatorv10.Validate
	upgrader  websocket.Upgrader
	nowFunc   func() time.Time
	heartbeat time.Duration
}

// New creates an empty stub server.
func New() *Server {
	return &Server{
		byID:      map[string]*orders.Order{},
		tokens:    map[string]string{},
		subs:      map[*subscriber]struct{}{},
		validate:  validation.New(),
		upgrader:  websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
		nowFunc:   time.Now,
		heartbeat: 15 * time.Second,
	}
}

// AddRestaurant registers a restaurant and the bearer token that scopes
// calls to it.
func (s *Server) AddRestaurant(id, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = id
}

// SetHeartbeatInterval shortens the push heartbeat period. For tests.
func (s *Server) SetHeartbeatInterval(d time.Duration) { s.heartbeat = d }

// Seed inserts an order directly, bypassing the REST surface. For tests
// and demo data.
func (s *Server) Seed(o orders.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := o.Clone()
	s.byID[o.ID] = &c
	s.ids = append([]string{o.ID}, s.ids...)
}

// Router builds the gin engine exposing the backend contract.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authed := r.Group("/", s.authMiddleware())
	authed.GET("/orders", s.listOrders)
	authed.POST("/orders", s.createOrder)
	authed.PUT("/orders/:id/status", s.updateStatus)
	authed.PUT("/orders/:id/pay", s.markPaid)
	authed.PUT("/orders/:id/unpay", s.markUnpaid)
	authed.GET("/events", s.serveSSE)
	authed.GET("/ws", s.serveWS)

	return r
}

func (s *Server) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		const prefix = "Bearer "
		header := c.GetHeader("Authorization")
		if len(header) <= len(prefix) || header[:len(prefix)] != prefix {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "missing bearer token"})
			return
		}
		s.mu.Lock()
		restaurantID, ok := s.tokens[header[len(prefix):]]
		s.mu.Unlock()
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "invalid token"})
			return
		}
		c.Set("restaurant", restaurantID)
		c.Next()
	}
}

func restaurantOf(c *gin.Context) string {
	return c.GetString("restaurant")
}

func (s *Server) listOrders(c *gin.Context) {
	restaurantID := restaurantOf(c)
	status := c.DefaultQuery("status", "all")

	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]orders.Order, 0, len(s.ids))
	for _, id := range s.ids {
		o := s.byID[id]
		if o.RestaurantID != restaurantID {
			continue
		}
		if status != "all" && o.Status != status {
			continue
		}
		out = append(out, o.Clone())
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) createOrder(c *gin.Context) {
	var payload rest.OrderPayload
	if err := validation.BindAndValidate(c, &payload, s.validate); err != nil {
		return
	}
	if payload.RestaurantID != restaurantOf(c) {
		c.JSON(http.StatusForbidden, gin.H{"message": "order belongs to another restaurant"})
		return
	}

	now := s.nowFunc()
	s.mu.Lock()
	s.seq++
	o := orders.Order{
		ID:            uuid.NewString(),
		OrderNumber:   fmt.Sprintf("ORD-%04d", s.seq),
		RestaurantID:  payload.RestaurantID,
		CustomerName:  payload.CustomerName,
		TableNumber:   payload.TableNumber,
		TotalAmount:   payload.TotalAmount,
		Status:        orders.StatusPending,
		PaymentStatus: orders.PaymentPending,
		OrderType:     payload.OrderType,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	for _, it := range payload.Items {
		o.Items = append(o.Items, orders.OrderItem{
			MenuItemID:   it.MenuItemID,
			Name:         it.Name,
			Quantity:     it.Quantity,
			Price:        it.Price,
			IsTakeaway:   it.IsTakeaway,
			Instructions: it.Instructions,
		})
	}
	stored := o.Clone()
	s.byID[o.ID] = &stored
	s.ids = append([]string{o.ID}, s.ids...)
	s.mu.Unlock()

	s.broadcast(live.Event{Type: live.EventNewOrder, Order: &o})
	c.JSON(http.StatusCreated, o)
}

// mutateOrder applies fn to the order under lock and returns a copy, or a
// non-nil error message with its HTTP status.
func (s *Server) mutateOrder(c *gin.Context, fn func(o *orders.Order) (int, string)) (orders.Order, bool) {
	id := c.Param("id")
	s.mu.Lock()
	o, ok := s.byID[id]
	if !ok || o.RestaurantID != restaurantOf(c) {
		s.mu.Unlock()
		c.JSON(http.StatusNotFound, gin.H{"message": "order not found"})
		return orders.Order{}, false
	}
	if code, msg := fn(o); msg != "" {
		s.mu.Unlock()
		c.JSON(code, gin.H{"message": msg})
		return orders.Order{}, false
	}
	o.UpdatedAt = s.nowFunc()
	updated := o.Clone()
	s.mu.Unlock()
	return updated, true
}

func (s *Server) updateStatus(c *gin.Context) {
	var body struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}
	updated, ok := s.mutateOrder(c, func(o *orders.Order) (int, string) {
		if !orders.ValidStatus(body.Status) {
			return http.StatusBadRequest, fmt.Sprintf("unknown status %q", body.Status)
		}
		if !orders.CanTransition(o.Status, body.Status) {
			return http.StatusConflict, fmt.Sprintf("cannot move order from %s to %s", o.Status, body.Status)
		}
		o.Status = body.Status
		return 0, ""
	})
	if !ok {
		return
	}
	s.broadcast(live.Event{Type: live.EventOrderUpdated, Order: &updated})
	c.JSON(http.StatusOK, updated)
}

func (s *Server) markPaid(c *gin.Context) {
	updated, ok := s.mutateOrder(c, func(o *orders.Order) (int, string) {
		if o.PaymentStatus == orders.PaymentRefunded {
			return http.StatusConflict, "refunded orders cannot be marked paid"
		}
		o.PaymentStatus = orders.PaymentPaid
		paidAt := s.nowFunc()
		o.PaidAt = &paidAt
		return 0, ""
	})
	if !ok {
		return
	}
	s.broadcast(live.Event{Type: live.EventOrderPaid, Order: &updated})
	c.JSON(http.StatusOK, updated)
}

func (s *Server) markUnpaid(c *gin.Context) {
	updated, ok := s.mutateOrder(c, func(o *orders.Order) (int, string) {
		if o.PaymentStatus == orders.PaymentRefunded {
			return http.StatusConflict, "refunded orders cannot be reverted"
		}
		o.PaymentStatus = orders.PaymentPending
		o.PaidAt = nil
		return 0, ""
	})
	if !ok {
		return
	}
	s.broadcast(live.Event{Type: live.EventOrderUpdated, Order: &updated})
	c.JSON(http.StatusOK, updated)
}
