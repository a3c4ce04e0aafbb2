package main // Entry point package

import (
	"log"

	"github.com/labstack/echo/v4"

	"github.com/tourhive/tour-booking-auth/internal/config"
	"github.com/tourhive/tour-booking-auth/internal/database"
	"github.com/tourhive/tour-booking-auth/internal/email"
	"github.com/tourhive/tour-booking-auth/internal/handler"
	"github.com/tourhive/tour-booking-auth/internal/middleware"
	"github.com/tourhive/tour-booking-auth/internal/queue"
	"github.com/tourhive/tour-booking-auth/internal/repository"
	"github.com/tourhive/tour-booking-auth/internal/router"
	queue_publisher "github.com/tourhive/tour-booking-auth/internal/service"
)

func main() {
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	users := repository.NewUserRepo(db)
	mailer := email.NewSMTP(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.EmailFrom)
	events := queue_publisher.New(cfg.AMQPURL)
	auth := handler.NewAuthHandler(cfg, users, mailer, events)

	// The welcome-mail consumer runs for the lifetime of the process and
	// reconnects on its own; it never takes the API down with it.
	go func() {
		if err := queue.StartEmailConsumer(cfg.AMQPURL, mailer); err != nil {
			log.Printf("email consumer stopped: %v", err)
		}
	}()

	// Nil Redis client disables rate limiting rather than blocking startup.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; rate limiting disabled")
	}
	limiter := middleware.RateLimit(config.LoadRateLimitConfig(), rdb)

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, auth, users, limiter)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
