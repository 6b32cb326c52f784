package handlers

import (
	"errors"
	"net/http"

	"cointap/internal/catalog"
	"cointap/internal/engine"

	"github.com/gin-gonic/gin"
)

// upgradeView is one catalog entry joined with the caller's ownership.
type upgradeView struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	Icon          string  `json:"icon"`
	MaxLevel      int     `json:"max_level"`
	OwnedLevel    int     `json:"owned_level"`
	NextCost      int64   `json:"next_cost,omitempty"`
	Maxed         bool    `json:"maxed"`
	CurrentEffect float64 `json:"current_effect"`
	NextEffect    float64 `json:"next_effect,omitempty"`
}

// ListUpgrades returns the catalog with owned levels and next-level costs.
func (h *Handler) ListUpgrades(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	snap := sess.Snapshot()

	views := make([]upgradeView, 0, len(catalog.Upgrades))
	for i := range catalog.Upgrades {
		def := &catalog.Upgrades[i]
		owned := snap.UpgradeLevel(def.ID)

		v := upgradeView{
			ID:          def.ID,
			Name:        def.Name,
			Description: def.Description,
			Icon:        def.Icon,
			MaxLevel:    def.MaxLevel,
			OwnedLevel:  owned,
			Maxed:       owned >= def.MaxLevel,
		}
		if owned > 0 {
			v.CurrentEffect = def.Effect(owned)
		}
		if !v.Maxed {
			v.NextCost = catalog.Cost(def, owned)
			v.NextEffect = def.Effect(owned + 1)
		}
		views = append(views, v)
	}

	c.JSON(http.StatusOK, gin.H{"upgrades": views, "coins": snap.Coins})
}

// BuyUpgrade purchases one level of an upgrade. Failures are status-coded
// no-ops: 404 unknown id, 409 already maxed, 402 insufficient coins.
func (h *Handler) BuyUpgrade(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	id := c.Param("id")
	err := sess.BuyUpgrade(c.Request.Context(), id)
	switch {
	case errors.Is(err, engine.ErrUnknownUpgrade):
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown upgrade"})
		return
	case errors.Is(err, engine.ErrUpgradeMaxed):
		c.JSON(http.StatusConflict, gin.H{"error": "upgrade already at max level"})
		return
	case errors.Is(err, engine.ErrInsufficientFunds):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": "not enough coins"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "purchase failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"state": sess.Snapshot()})
}
