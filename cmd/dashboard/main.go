// Command dashboard is the merchant-facing order watcher: it loads the
// current order snapshot, follows the live channel and prints a revenue
// summary as orders arrive and change.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/BrayanMorningstar237/waiter-sync/internal/live"
	"github.com/BrayanMorningstar237/waiter-sync/internal/orders"
	"github.com/BrayanMorningstar237/waiter-sync/internal/ordersync"
	"github.com/BrayanMorningstar237/waiter-sync/internal/rest"
	"github.com/BrayanMorningstar237/waiter-sync/internal/stats"
)

func main() {
	_ = godotenv.Load()

	apiURL := envOr("WAITER_API_URL", "http://localhost:8080")
	restaurantID := os.Getenv("WAITER_RESTAURANT_ID")
	token := os.Getenv("WAITER_TOKEN")
	transport := envOr("WAITER_TRANSPORT", "sse")
	if restaurantID == "" || token == "" {
		log.Fatalf("WAITER_RESTAURANT_ID and WAITER_TOKEN must be set")
	}

	session := rest.Session{RestaurantID: restaurantID, Token: token}
	client := rest.NewClient(apiURL, session)
	store := orders.NewStore()
	syncer := ordersync.NewSyncer(store, client, func(msg string) {
		log.Printf("[dashboard] %s", msg)
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := syncer.Bootstrap(ctx); err != nil {
		log.Fatalf("initial order fetch failed: %v", err)
	}
	log.Printf("[dashboard] loaded %d orders for restaurant %s", store.Len(), restaurantID)
	printSummary(store)

	channel := live.NewChannel(live.Config{
		RestaurantID: restaurantID,
		Token:        token,
		Handler: func(ev live.Event) {
			syncer.HandleEvent(ev)
			if ev.Order != nil {
				log.Printf("[dashboard] %s: order %s (%s)", ev.Type, ev.Order.OrderNumber, ev.Order.Status)
			}
			printSummary(store)
		},
		OnStateChange: func(state live.ConnectionState) {
			log.Printf("[dashboard] live channel %s", state)
		},
	}, dialerFor(transport, apiURL))

	if err := channel.Open(); err != nil {
		log.Fatalf("open live channel: %v", err)
	}
	defer channel.Close()

	<-ctx.Done()
	log.Printf("[dashboard] shutting down")
}

func dialerFor(transport, apiURL string) live.Dialer {
	if transport == "ws" {
		wsURL := strings.Replace(apiURL, "http", "ws", 1)
		return &live.WSDialer{BaseURL: wsURL}
	}
	return &live.SSEDialer{BaseURL: apiURL}
}

func printSummary(store *orders.Store) {
	snapshot := store.Snapshot()
	today, err := stats.NamedRange(stats.RangeToday, time.Now())
	if err != nil {
		return
	}
	snap := stats.Compute(stats.FilterByRange(snapshot, today))
	unpaid := stats.Filter(snapshot, stats.FilterSpec{Tab: stats.TabUnpaid, Status: stats.StatusAll})
	log.Printf("[dashboard] today: %d paid orders, revenue %d, %d unpaid open", snap.OrderCount, snap.TotalRevenue, len(unpaid))
	if snap.BestSeller != nil {
		log.Printf("[dashboard] best seller: %s (x%d)", snap.BestSeller.Name, snap.BestSeller.Quantity)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
