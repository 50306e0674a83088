package main // Entry point package

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/tigertix/event-ticketing/internal/booking"
	"github.com/tigertix/event-ticketing/internal/config"
	"github.com/tigertix/event-ticketing/internal/database"
	"github.com/tigertix/event-ticketing/internal/handler"
	"github.com/tigertix/event-ticketing/internal/queue"
	"github.com/tigertix/event-ticketing/internal/repository"
	"github.com/tigertix/event-ticketing/internal/router"
)

func main() {
	// Best-effort .env load for local development; real deployments set
	// the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := database.Connect(ctx, cfg)
	cancel()
	if err != nil {
		log.Fatalf("database init failed: %v", err)
	}

	eventRepo := repository.NewEventRepo(db)
	ticketRepo := repository.NewTicketRepo(db)
	bookingSvc := booking.NewService(ticketRepo, config.LoadBookingPolicy())

	// Redis may be nil; cache and rate limiting then become no-ops.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; response cache and rate limiting disabled")
	}

	// Background consumer writing the sales log; reconnects on its own.
	go queue.StartSaleConsumer()

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterPublic(e,
		handler.NewPublicHandler(eventRepo),
		handler.NewPurchaseHandler(bookingSvc),
		handler.NewChatHandler(eventRepo, bookingSvc),
		rdb,
	)
	router.RegisterAdmin(e, handler.NewAdminHandler(eventRepo, ticketRepo), cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
