package devserver

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/BrayanMorningstar237/waiter-sync/internal/live"
)

func (s *Server) subscribe(restaurantID string) *subscriber {
	sub := &subscriber{restaurantID: restaurantID, ch: make(chan live.Event, 16)}
	s.mu.Lock()
	s.subs[sub] = struct{}{}
	s.mu.Unlock()
	return sub
}

func (s *Server) unsubscribe(sub *subscriber) {
	s.mu.Lock()
	delete(s.subs, sub)
	s.mu.Unlock()
}

// broadcast fans an event out to every subscriber of the order's
// restaurant. Slow consumers lose events rather than block mutations.
func (s *Server) broadcast(ev live.Event) {
	if ev.Order == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for sub := range s.subs {
		if sub.restaurantID != ev.Order.RestaurantID {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
		}
	}
}

// serveSSE streams events as text/event-stream data frames. Heartbeats
// ride the same framing; the SDK swallows them.
func (s *Server) serveSSE(c *gin.Context) {
	if c.Query("restaurant") != restaurantOf(c) {
		c.JSON(http.StatusForbidden, gin.H{"message": "restaurant mismatch"})
		return
	}
	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "streaming unsupported"})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	sub := s.subscribe(restaurantOf(c))
	defer s.unsubscribe(sub)

	write := func(ev live.Event) bool {
		b, err := json.Marshal(ev)
		if err != nil {
			return false
		}
		if _, err := fmt.Fprintf(c.Writer, "data: %s\n\n", b); err != nil {
			return false
		}
		flusher.Flush()
		return true
	}

	if !write(live.Event{Type: live.EventConnected}) {
		return
	}

	ticker := time.NewTicker(s.heartbeat)
	defer ticker.Stop()
	for {
		select {
		case ev := <-sub.ch:
			if !write(ev) {
				return
			}
		case <-ticker.C:
			if !write(live.Event{Type: live.EventHeartbeat}) {
				return
			}
		case <-c.Request.Context().Done():
			return
		}
	}
}

// serveWS streams events over a websocket and expects heartbeat acks.
func (s *Server) serveWS(c *gin.Context) {
	if c.Query("restaurant") != restaurantOf(c) {
		c.JSON(http.StatusForbidden, gin.H{"message": "restaurant mismatch"})
		return
	}
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[devserver] ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	sub := s.subscribe(restaurantOf(c))
	defer s.unsubscribe(sub)

	// Reader drains client frames (heartbeat acks) and flags the close.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := conn.WriteJSON(live.Event{Type: live.EventConnected}); err != nil {
		return
	}

	ticker := time.NewTicker(s.heartbeat)
	defer ticker.Stop()
	for {
		select {
		case ev := <-sub.ch:
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteJSON(live.Event{Type: live.EventHeartbeat}); err != nil {
				return
			}
		case <-closed:
			return
		case <-c.Request.Context().Done():
			return
		}
	}
}
