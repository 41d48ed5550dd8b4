package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // .env loading for local development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/event-ticketing/internal/authz"
	"github.com/iliyamo/event-ticketing/internal/config"
	"github.com/iliyamo/event-ticketing/internal/database"
	"github.com/iliyamo/event-ticketing/internal/handler"
	"github.com/iliyamo/event-ticketing/internal/queue"
	"github.com/iliyamo/event-ticketing/internal/repository"
	"github.com/iliyamo/event-ticketing/internal/router"
	"github.com/iliyamo/event-ticketing/internal/service"
	"github.com/iliyamo/event-ticketing/internal/storage"
	"github.com/iliyamo/event-ticketing/internal/ticket"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using system environment variables")
	}
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is optional: a nil client disables rate limiting and caching.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; rate limiting and response caching disabled")
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	events := repository.NewEventRepo(db)
	registrants := repository.NewRegistrantRepo(db)

	oracle := authz.NewOracle(users, events)

	store, err := storage.NewDiskStore(cfg.TicketStoreDir, cfg.TicketBaseURL)
	if err != nil {
		log.Fatalf("ticket store: %v", err)
	}
	encoder := ticket.NewEncoder(cfg.TicketQRSize)
	pacer := service.NewFixedDelayPacer(cfg.TicketBulkDelay)

	issuance := service.NewIssuanceService(oracle, encoder, store, pacer, queue.PublishTicketIssued)
	validation := service.NewValidationService(oracle, registrants)

	// Background consumer writing issuance audit lines; runs its own
	// reconnect loop.
	go func() {
		if err := queue.StartIssuanceConsumer(); err != nil {
			log.Printf("issuance consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens), cfg.JWTSecret)
	router.RegisterEvents(e, handler.NewEventHandler(events, registrants, users, oracle), cfg.JWTSecret, rdb)
	router.RegisterTickets(e, handler.NewTicketHandler(issuance, validation, events, registrants), cfg.JWTSecret, rdb, store.Root())

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
