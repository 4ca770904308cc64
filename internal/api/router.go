package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"parking-reservation-backend/config"
	"parking-reservation-backend/internal/auth"
	"parking-reservation-backend/internal/mw"
	"parking-reservation-backend/internal/store"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(s store.Store, issuer *auth.TokenIssuer, cfg *config.ServerConfig) *gin.Engine {
	r := gin.Default()

	handler := NewHandler(s, issuer)

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst)

	// Response cache for lot search only. Search results carry descriptive
	// lot fields; reservation state is always read fresh per operation.
	cacheTTL := time.Duration(cfg.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(cacheTTL, 2*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)

	authed := mw.Auth(issuer)
	adminOnly := mw.RequireAdmin()

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.POST("/auth/register", handler.Register)
		api.POST("/auth/login", handler.Login)

		api.GET("/lots", authed, caching, handler.SearchLots)
		api.POST("/lots", authed, adminOnly, handler.CreateLot)
		api.PUT("/lots/:lot_id/capacity", authed, adminOnly, handler.ResizeLot)
		api.DELETE("/lots/:lot_id", authed, adminOnly, handler.DeleteLot)
		api.DELETE("/spots/:spot_id", authed, adminOnly, handler.DeleteSpot)
		api.GET("/spots/:spot_id", authed, adminOnly, handler.SpotDetail)

		api.GET("/reports/lots", authed, adminOnly, handler.LotReport)
		api.GET("/users/:user_id/summary", authed, handler.UserSummary)

		api.POST("/reservations", authed, handler.Allocate)
		api.POST("/reservations/:id/release", authed, handler.Release)
	}

	return r
}
