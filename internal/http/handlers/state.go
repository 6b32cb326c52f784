package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetState returns a read-only snapshot of the caller's player state.
func (h *Handler) GetState(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": sess.Snapshot()})
}

type TapRequest struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Count int     `json:"count"`
}

const maxTapBatch = 50

// Tap applies a small batch of manual taps. Each unit is an independent tap:
// its own energy guard, lucky draw and persist. Taps the energy pool cannot
// cover are silently dropped, matching the single-tap no-op semantics.
func (h *Handler) Tap(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	var req TapRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}
	if req.Count <= 0 {
		req.Count = 1
	}
	if req.Count > maxTapBatch {
		req.Count = maxTapBatch
	}

	var earned int64
	applied := 0
	luckyHits := 0
	for i := 0; i < req.Count; i++ {
		value, lucky := sess.Tap(c.Request.Context(), req.X, req.Y)
		if value == 0 {
			break // out of energy
		}
		earned += value
		applied++
		if lucky {
			luckyHits++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"applied":    applied,
		"earned":     earned,
		"lucky_hits": luckyHits,
		"state":      sess.Snapshot(),
	})
}

// CheckDailyLogin runs the streak state machine opportunistically; the same
// evaluation already happens at session init.
func (h *Handler) CheckDailyLogin(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	transitioned := sess.CheckDailyLogin(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"transitioned": transitioned,
		"state":        sess.Snapshot(),
	})
}
