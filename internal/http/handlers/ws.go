package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Events upgrades the connection and streams floating-text events and
// snapshots for the authenticated player. The token comes in as a query
// parameter because browsers cannot set headers on websocket dials.
func (h *Handler) Events(c *gin.Context) {
	playerID, ok := getPlayerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := h.Hub.Serve(c.Writer, c.Request, playerID); err != nil {
		// Upgrade already wrote the error response.
		return
	}
}
