package handlers

import (
	"net/http"

	"cointap/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type PurchaseRequest struct {
	PackageID     string  `json:"package_id" binding:"required"`
	Coins         int64   `json:"coins" binding:"required,min=1"`
	PriceTON      float64 `json:"price_ton" binding:"min=0"`
	ExternalTxRef string  `json:"external_tx_ref"`
}

// CreatePurchase credits a completed external purchase. The payment flow is a
// boundary collaborator: by the time this is called the purchase already
// succeeded, so the handler only records and credits it.
func (h *Handler) CreatePurchase(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	var req PurchaseRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	rec := domain.PurchaseRecord{
		ID:            uuid.NewString(),
		PackageID:     req.PackageID,
		Coins:         req.Coins,
		PriceTON:      req.PriceTON,
		Timestamp:     nowMs(),
		ExternalTxRef: req.ExternalTxRef,
	}
	sess.AddPurchase(c.Request.Context(), rec)

	c.JSON(http.StatusOK, gin.H{
		"purchase": rec,
		"state":    sess.Snapshot(),
	})
}
