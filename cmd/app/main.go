package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cointap/internal/config"
	"cointap/internal/db"
	"cointap/internal/engine"
	httpServer "cointap/internal/http"
	"cointap/internal/http/middleware"
	"cointap/internal/leaderboard"
	"cointap/internal/logger"
	"cointap/internal/service"
	"cointap/internal/storage"
	"cointap/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

const version = "1.0.0"

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)
	service.InitJWT(cfg.JWTSecret)

	// Postgres is optional; without DATABASE_URL state lives in memory and
	// is lost on restart (dev setups).
	var dbPool *pgxpool.Pool
	var kv storage.KV
	if cfg.DatabaseURL != "" {
		dbPool = db.Connect(cfg.DatabaseURL)
		defer dbPool.Close()

		pg := storage.NewPostgresKV(dbPool)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := pg.EnsureSchema(ctx); err != nil {
			cancel()
			logger.Fatal("failed to ensure schema", "error", err)
		}
		cancel()
		kv = pg
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory storage")
		kv = storage.NewMemoryKV()
	}

	middleware.InitRedisRateLimiter(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
	}
	lb := leaderboard.New(redisClient)

	hub := ws.NewHub()

	manager := engine.NewManager(storage.NewAdapter(kv))
	manager.OnTapEvent = func(ev engine.TapEvent) {
		hub.Broadcast(ev.PlayerID, "tap", ev)
	}
	manager.OnTotalCoins = func(playerID, totalCoins int64) {
		lb.Update(playerID, totalCoins)
	}

	scheduler := engine.NewScheduler(manager, cfg.TickInterval)
	scheduler.Start()

	if !cfg.DevMode {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()

	// CORS for production (frontend on different domain)
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		}
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	httpServer.RegisterRoutes(r, manager, lb, hub, dbPool, cfg, version)

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: r,
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	scheduler.Stop()
	hub.Close()

	// Persist any regen accumulated since the last high-value save.
	manager.Flush(ctx)

	logger.Info("server exited")
}
