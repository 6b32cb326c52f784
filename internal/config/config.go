package config

import (
	"os"
	"strconv"
	"time"

	"cointap/internal/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort     string
	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	BotToken        string
	BotUsername     string
	WebAppShortName string
	JWTSecret       string

	LogLevel string
	LogJSON  bool
	DevMode  bool

	// Tick cadence of the game scheduler; production default is 1 second.
	TickInterval time.Duration

	// HTTP limits
	APIRateLimit   int
	APIRateWindow  time.Duration
	AuthRateLimit  int
	AuthRateWindow time.Duration

	// Leaderboard page size
	LeaderboardSize int64
}

// Load reads configuration from the environment (optionally via .env).
func Load() *Config {
	_ = godotenv.Load()

	devMode := os.Getenv("DEV_MODE") == "true"

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Fatal("JWT_SECRET is not set")
	}

	botToken := os.Getenv("BOT_TOKEN")
	if botToken == "" && !devMode {
		logger.Fatal("BOT_TOKEN is not set")
	}

	botUsername := os.Getenv("BOT_USERNAME")
	if botUsername == "" {
		botUsername = "CoinTapBot"
	}

	shortName := os.Getenv("WEBAPP_SHORT_NAME")
	if shortName == "" {
		shortName = "app"
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	redisDB := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			redisDB = n
		}
	}

	tick := time.Second
	if v := os.Getenv("TICK_INTERVAL_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			tick = time.Duration(n) * time.Millisecond
		}
	}

	apiRateLimit := 120
	if v := os.Getenv("API_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			apiRateLimit = n
		}
	}
	apiRateWindow := time.Minute
	if v := os.Getenv("API_RATE_WINDOW_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			apiRateWindow = time.Duration(n) * time.Second
		}
	}

	authRateLimit := 5
	if v := os.Getenv("AUTH_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			authRateLimit = n
		}
	}
	authRateWindow := time.Minute
	if v := os.Getenv("AUTH_RATE_WINDOW_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			authRateWindow = time.Duration(n) * time.Second
		}
	}

	leaderboardSize := int64(100)
	if v := os.Getenv("LEADERBOARD_SIZE"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			leaderboardSize = n
		}
	}

	return &Config{
		AppPort:         port,
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		RedisDB:         redisDB,
		BotToken:        botToken,
		BotUsername:     botUsername,
		WebAppShortName: shortName,
		JWTSecret:       jwtSecret,
		LogLevel:        os.Getenv("LOG_LEVEL"),
		LogJSON:         os.Getenv("LOG_JSON") == "true",
		DevMode:         devMode,
		TickInterval:    tick,
		APIRateLimit:    apiRateLimit,
		APIRateWindow:   apiRateWindow,
		AuthRateLimit:   authRateLimit,
		AuthRateWindow:  authRateWindow,
		LeaderboardSize: leaderboardSize,
	}
}
