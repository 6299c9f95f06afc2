package main // Entry point package

import (
    "context" // lifecycle control for background loops
    "log"     // Logging library
    "time"    // sweep interval for the pending-expiry loop

    "github.com/joho/godotenv"    // loads .env files in local development
    "github.com/labstack/echo/v4" // Echo web framework

    "github.com/zonehub/zonehub/internal/config"
    "github.com/zonehub/zonehub/internal/database"
    "github.com/zonehub/zonehub/internal/handler"
    "github.com/zonehub/zonehub/internal/queue"
    "github.com/zonehub/zonehub/internal/repository"
    "github.com/zonehub/zonehub/internal/router"
    "github.com/zonehub/zonehub/internal/service"
    "github.com/zonehub/zonehub/internal/ws"
)

func main() {
    // Load .env if present; real deployments inject env vars directly.
    _ = godotenv.Load()

    cfg := config.Load()

    db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
    if err != nil {
        log.Fatalf("database: %v", err)
    }
    defer db.Close()

    // Redis backs the public-route rate limiter and response cache.
    // A nil client simply disables both.
    rdb := config.NewRedisClient()
    if rdb == nil {
        log.Println("redis unavailable, rate limiting and caching disabled")
    }

    // Repositories.
    reservationRepo := repository.NewReservationRepo(db, cfg.PendingTTL)
    fieldRepo := repository.NewFieldRepo(db)
    teamRepo := repository.NewTeamRepo(db)
    challengeRepo := repository.NewChallengeRepo(db)
    messageRepo := repository.NewMessageRepo(db)
    notificationRepo := repository.NewNotificationRepo(db)

    // Live channel and services.
    hub := ws.NewHub()
    notifications := service.NewNotificationService(notificationRepo, hub)
    bookings := service.NewReservationService(reservationRepo, fieldRepo, notifications, queue.Publish, cfg.SlotGranularity, cfg.LockWait)
    chat := service.NewChatService(messageRepo, challengeRepo, teamRepo, hub)
    challenges := service.NewChallengeService(challengeRepo, teamRepo, messageRepo, chat, notifications, queue.Publish)

    // Handlers.
    fieldHandler := handler.NewFieldHandler(fieldRepo, reservationRepo, bookings)
    bookingHandler := handler.NewBookingHandler(bookings)
    notificationHandler := handler.NewNotificationHandler(notifications)
    challengeHandler := handler.NewChallengeHandler(challenges)
    chatHandler := handler.NewChatHandler(hub, chat, cfg.JWTSecret, cfg.HistoryLimit)

    // Background workers: the audit-log event consumer and the sweep
    // that auto-cancels stale PENDING bookings.
    ctx, cancel := context.WithCancel(context.Background())
    defer cancel()
    go func() {
        if err := queue.StartEventConsumer(); err != nil {
            log.Printf("queue: consumer stopped: %v", err)
        }
    }()
    go bookings.StartExpiryLoop(ctx, 5*time.Minute)

    e := echo.New()
    router.RegisterRoutes(e)
    router.RegisterPublic(e, fieldHandler, rdb)
    router.RegisterAPI(e, bookingHandler, fieldHandler, notificationHandler, challengeHandler, chatHandler, cfg.JWTSecret)

    addr := ":" + cfg.Port
    log.Printf("listening on %s (env=%s)", addr, cfg.Env)
    if err := e.Start(addr); err != nil {
        log.Fatal(err)
    }
}
