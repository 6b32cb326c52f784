package handlers

import (
	"net/http"
	"time"

	"cointap/internal/engine"
	"cointap/internal/leaderboard"
	"cointap/internal/ws"

	"github.com/gin-gonic/gin"
)

// Handler bundles the collaborators every endpoint needs. The HTTP layer
// never computes game state; it parses input, calls session operations and
// serializes snapshots.
type Handler struct {
	Manager     *engine.Manager
	Leaderboard *leaderboard.Leaderboard
	Hub         *ws.Hub

	BotToken        string
	BotUsername     string
	WebAppShortName string
	DevMode         bool
	LeaderboardSize int64
}

func NewHandler(manager *engine.Manager, lb *leaderboard.Leaderboard, hub *ws.Hub) *Handler {
	return &Handler{
		Manager:         manager,
		Leaderboard:     lb,
		Hub:             hub,
		LeaderboardSize: 100,
	}
}

// getPlayerID extracts the authenticated player id set by the JWT middleware.
func getPlayerID(c *gin.Context) (int64, bool) {
	idVal, ok := c.Get("player_id")
	if !ok {
		return 0, false
	}
	switch v := idVal.(type) {
	case int64:
		return v, true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}

// session resolves the caller's live session, writing the error response
// when authentication or initialization is missing.
func (h *Handler) session(c *gin.Context) (*engine.Session, bool) {
	playerID, ok := getPlayerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return nil, false
	}
	sess, ok := h.Manager.Get(playerID)
	if !ok {
		c.JSON(http.StatusConflict, gin.H{"error": "session not initialized, call /auth first"})
		return nil, false
	}
	return sess, true
}

func nowMs() int64 {
	return time.Now().UnixMilli()
}
