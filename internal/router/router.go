// Package router wires handlers and middleware onto an echo instance.
package router

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/musicuration-desk/internal/config"
	"github.com/iliyamo/musicuration-desk/internal/handler"
	"github.com/iliyamo/musicuration-desk/internal/middleware"
	"github.com/iliyamo/musicuration-desk/internal/validation"
)

// AllowedOrigins are the front-end dev servers allowed to call the API with
// credentials.
var AllowedOrigins = []string{"http://localhost:3000", "http://localhost:5173"}

// Deps collects everything New needs. Redis may be nil, which disables the
// rate limiter and the response cache.
type Deps struct {
	Auth          *handler.AuthHandler
	Catalog       *handler.CatalogHandler
	Collections   *handler.CollectionHandler
	Authenticator middleware.Authenticator
	DB            handler.Pinger
	Redis         *redis.Client
	RateLimit     config.RateLimitConfig
	Cache         config.CacheConfig
}

// New builds the echo instance with every route registered.
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validation.Echo{}

	// Routes are registered without a trailing slash; "/artists/" and
	// "/artists" reach the same handler.
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger())
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))

	RegisterRoutes(e, d.DB)
	RegisterAuth(e, d)
	RegisterCatalog(e, d.Catalog, middleware.NewRedisCache(d.Cache, d.Redis))
	RegisterCollection(e, d.Collections, middleware.JWTAuth(d.Authenticator))
	return e
}

// RegisterRoutes registers the unauthenticated infrastructure routes.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	e.GET("/healthz", handler.Health(db))
}

// RegisterAuth registers the session endpoints and the account routes.
// Credential endpoints are throttled per client.
func RegisterAuth(e *echo.Echo, d Deps) {
	a := d.Auth
	throttle := middleware.NewTokenBucket(d.RateLimit, d.Redis)
	guard := middleware.JWTAuth(d.Authenticator)

	e.POST("/token", a.Login, throttle)
	e.POST("/refresh", a.Refresh, throttle)
	e.POST("/logout", a.Logout, guard)

	e.POST("/users", a.Register)
	e.GET("/users/me", a.Me, guard)
}
