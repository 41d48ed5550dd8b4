package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/event-ticketing/internal/authz"
	"github.com/iliyamo/event-ticketing/internal/config"
	"github.com/iliyamo/event-ticketing/internal/handler"    // import the handlers that implement business logic
	"github.com/iliyamo/event-ticketing/internal/middleware" // import middleware for JWT authentication and role enforcement
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Load balancers and monitoring systems use this to verify the service
	// is up.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication‑related routes and applies the
// necessary middleware.  Unauthenticated operations live under /v1/auth,
// while protected endpoints live under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole(authz.RoleAdmin, authz.RoleOrganizer, authz.RoleAttendee))
	auth.GET("/me", a.Me)
}

// RegisterEvents registers event management and registration routes. The
// public event detail endpoint sits outside the JWT group and is cached in
// Redis; everything else requires an authenticated actor.
func RegisterEvents(e *echo.Echo, ev *handler.EventHandler, jwtSecret string, rdb *redis.Client) {
	cacheCfg := config.LoadCacheConfig()
	e.GET("/v1/events/:slug", ev.GetEvent, middleware.NewRedisCache(cacheCfg, rdb))

	g := e.Group("/v1/events")
	g.Use(middleware.JWTAuth(jwtSecret))
	// Only organizers and admins create and list their events; registration
	// is open to every authenticated role.
	g.POST("", ev.CreateEvent, middleware.RequireRole(authz.RoleAdmin, authz.RoleOrganizer))
	g.GET("", ev.ListMyEvents, middleware.RequireRole(authz.RoleAdmin, authz.RoleOrganizer))
	g.POST("/:slug/register", ev.Register)
	g.GET("/:slug/registrants", ev.ListRegistrants)
}

// RegisterTickets registers the issuance and validation routes. Validation
// is the endpoint a venue hammers during check-in, so it carries the
// Redis token-bucket rate limiter.
func RegisterTickets(e *echo.Echo, t *handler.TicketHandler, jwtSecret string, rdb *redis.Client, artifactDir string) {
	g := e.Group("/v1/events/:slug")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.POST("/tickets", t.IssueOne)
	g.POST("/tickets/bulk", t.IssueMany)

	rlCfg := config.LoadRateLimitConfig()
	g.POST("/validate", t.Validate, middleware.NewTokenBucket(rlCfg, rdb))

	// Rendered ticket images are public by URL; the URLs returned by
	// issuance point into this route.
	e.Static("/tickets", artifactDir)
}
