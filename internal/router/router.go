package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/tigertix/event-ticketing/internal/config"
	"github.com/tigertix/event-ticketing/internal/handler"
	"github.com/tigertix/event-ticketing/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication.
// Currently it exposes only a health check for load balancers and
// monitoring.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterPublic registers the unauthenticated browse and purchase
// surface.  Browse GETs go through the redis response cache; the
// purchase route is rate limited per client IP.  Both middlewares
// degrade to pass-through when redis is unavailable.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, buy *handler.PurchaseHandler, chat *handler.ChatHandler, rdb *redis.Client) {
	cacheMW := middleware.CacheGET(config.LoadCacheConfig(), rdb)
	limitMW := middleware.RateLimit(config.LoadRateLimitConfig(), rdb)

	e.GET("/v1/events", p.ListEvents, cacheMW)
	e.GET("/v1/events/:id", p.GetEvent, cacheMW)
	e.POST("/v1/events/:id/purchase", buy.Purchase, limitMW)

	// Conversational booking: parse preview and the full chat flow.
	e.POST("/v1/chat/parse", chat.ParseOnly)
	e.POST("/v1/chat", chat.Chat, limitMW)
}

// RegisterAdmin registers event administration endpoints under JWT
// authentication with the ADMIN role.  Tokens are issued by the
// external identity service; this service only verifies them.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, jwtSecret string) {
	g := e.Group("/v1/admin")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole("ADMIN"))

	g.POST("/events", a.CreateEvent)
	g.GET("/events/:id/tickets", a.ListTickets)
	g.GET("/events/:id/consistency", a.CheckConsistency)
}
