package http

import (
	"time"

	"cointap/internal/config"
	"cointap/internal/engine"
	"cointap/internal/http/handlers"
	"cointap/internal/http/middleware"
	"cointap/internal/leaderboard"
	"cointap/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

func RegisterRoutes(r *gin.Engine, manager *engine.Manager, lb *leaderboard.Leaderboard, hub *ws.Hub, db *pgxpool.Pool, cfg *config.Config, version string) {
	h := handlers.NewHandler(manager, lb, hub)
	h.BotToken = cfg.BotToken
	h.BotUsername = cfg.BotUsername
	h.WebAppShortName = cfg.WebAppShortName
	h.DevMode = cfg.DevMode
	h.LeaderboardSize = cfg.LeaderboardSize

	healthHandler := handlers.NewHealthHandler(db, version)

	// Health checks (no rate limiting)
	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)

	// API v1 routes
	v1 := r.Group("/api/v1")
	v1.Use(middleware.RedisRateLimit(cfg.APIRateLimit, cfg.APIRateWindow))
	registerAPIRoutes(v1, h, cfg)

	// WebSocket for tap events and live snapshots. The JWT comes in as a
	// query parameter because browsers cannot set headers on websocket dials.
	r.GET("/ws", middleware.JWT(), h.Events)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{"error": "not found"})
	})
}

func registerAPIRoutes(api *gin.RouterGroup, h *handlers.Handler, cfg *config.Config) {
	// Auth (Telegram initData exchange, stricter limit)
	api.POST("/auth", middleware.RedisRateLimit(cfg.AuthRateLimit, cfg.AuthRateWindow), h.Auth)

	// Player state
	api.GET("/state", middleware.JWT(), h.GetState)
	api.POST("/login-check", middleware.JWT(), h.CheckDailyLogin)

	// Taps are batched client-side; the per-player limit bounds how many
	// batches a client can submit, the energy pool bounds total earnings.
	tapRL := middleware.PlayerRateLimit("tap", 30, time.Minute)
	api.POST("/tap", middleware.JWT(), tapRL, h.Tap)

	// Upgrades
	api.GET("/upgrades", middleware.JWT(), h.ListUpgrades)
	api.POST("/upgrades/:id/buy", middleware.JWT(), h.BuyUpgrade)

	// Daily tasks
	api.GET("/tasks", middleware.JWT(), h.ListTasks)
	api.POST("/tasks/:id/claim", middleware.JWT(), h.ClaimTask)

	// Purchases (coin packs bought for TON)
	api.POST("/purchases", middleware.JWT(), h.CreatePurchase)

	// Referral system
	referral := api.Group("/referral")
	referral.Use(middleware.JWT())
	{
		referral.GET("/link", h.GetReferralLink)
		referral.GET("/stats", h.GetReferralStats)
	}

	// Leaderboard (top by lifetime coins + caller's rank)
	api.GET("/leaderboard", h.GetLeaderboard)
	api.GET("/leaderboard/rank", middleware.JWT(), h.GetMyRank)
}
