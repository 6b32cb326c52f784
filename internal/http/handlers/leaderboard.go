package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetLeaderboard returns the top players by lifetime coins. Empty (not an
// error) when no redis is configured.
func (h *Handler) GetLeaderboard(c *gin.Context) {
	entries, err := h.Leaderboard.Top(c.Request.Context(), h.LeaderboardSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get leaderboard"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"top": entries})
}

// GetMyRank returns the caller's leaderboard position.
func (h *Handler) GetMyRank(c *gin.Context) {
	playerID, ok := getPlayerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	entry, ok := h.Leaderboard.Rank(c.Request.Context(), playerID)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"ranked": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ranked": true, "rank": entry})
}
