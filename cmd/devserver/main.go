// Command devserver runs the local stub backend: the REST + push surface
// the SDK consumes, with in-memory state and a seeded demo restaurant.
package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/BrayanMorningstar237/waiter-sync/internal/devserver"
)

func main() {
	_ = godotenv.Load()

	addr := ":8080"
	if p := os.Getenv("PORT"); p != "" {
		addr = ":" + p
	}
	restaurantID := envOr("DEV_RESTAURANT_ID", "demo-restaurant")
	token := envOr("DEV_TOKEN", "dev-token")

	srv := devserver.New()
	srv.AddRestaurant(restaurantID, token)

	log.Printf("[devserver] listening on %s (restaurant=%s token=%s)", addr, restaurantID, token)
	if err := srv.Router().Run(addr); err != nil {
		log.Fatalf("devserver: %v", err)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
