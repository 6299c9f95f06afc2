package router // package router defines how HTTP routes are registered for the API

import (
    "github.com/labstack/echo/v4" // import the Echo web framework to handle routing
    "github.com/redis/go-redis/v9"

    "github.com/zonehub/zonehub/internal/config"
    "github.com/zonehub/zonehub/internal/handler"
    "github.com/zonehub/zonehub/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  Currently it exposes only a health check
// used by load balancers and monitoring.
func RegisterRoutes(e *echo.Echo) {
    e.GET("/healthz", handler.Health)
}

// RegisterPublic registers unauthenticated browse endpoints.  These are
// the guest-facing read paths: field listing with filters, field
// details and the availability grid.  They carry the Redis token-bucket
// rate limiter and the response cache; both degrade to no-ops when no
// Redis client is available.
func RegisterPublic(e *echo.Echo, f *handler.FieldHandler, rdb *redis.Client) {
    limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
    cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

    pub := e.Group("", limiter, cache)
    pub.GET("/v1/fields", f.GetPublicFields)
    pub.GET("/v1/fields/:id", f.GetPublicField)
    pub.GET("/v1/fields/:id/availability", f.GetAvailability)
}

// RegisterAPI registers the authenticated surface under /v1.  Every
// route requires a valid access token; field management additionally
// requires the OWNER role.  The websocket endpoint authenticates inside
// the handler because browsers cannot attach headers to a websocket
// handshake, so it is registered outside the JWT group.
func RegisterAPI(e *echo.Echo, b *handler.BookingHandler, f *handler.FieldHandler, n *handler.NotificationHandler, ch *handler.ChallengeHandler, chat *handler.ChatHandler, jwtSecret string) {
    auth := e.Group("/v1")
    auth.Use(middleware.JWTAuth(jwtSecret))
    auth.Use(middleware.RequireRole("OWNER", "PLAYER"))

    // Booking lifecycle.
    auth.POST("/bookings", b.CreateBooking)
    auth.GET("/bookings", b.ListMyBookings)
    auth.POST("/bookings/:id/confirm", b.ConfirmBooking)
    auth.POST("/bookings/:id/cancel", b.CancelBooking)

    // Notifications inbox and polling fallback.
    auth.GET("/notifications", n.List)
    auth.GET("/notifications/unread-count", n.UnreadCount)
    auth.PUT("/notifications/:id/read", n.MarkRead)
    auth.PUT("/notifications/read-all", n.MarkAllRead)

    // Match challenges.
    auth.POST("/challenges", ch.CreateChallenge)
    auth.GET("/challenges", ch.ListMyChallenges)
    auth.PUT("/challenges/:id/accept", ch.AcceptChallenge)
    auth.PUT("/challenges/:id/decline", ch.DeclineChallenge)

    // Room history over plain HTTP.
    auth.GET("/rooms/:id/messages", chat.GetRoomHistory)

    // Field management is reserved for owners.
    owner := e.Group("/v1/fields")
    owner.Use(middleware.JWTAuth(jwtSecret))
    owner.Use(middleware.RequireRole("OWNER"))
    owner.POST("", f.CreateField)
    owner.PUT("/:id", f.UpdateField)
    owner.DELETE("/:id", f.DeactivateField)
    owner.GET("/:id/bookings", b.ListFieldBookings)

    // Live channel: chat rooms plus notification push.
    e.GET("/v1/ws", chat.Serve)
}
