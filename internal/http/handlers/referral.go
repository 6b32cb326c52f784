package handlers

import (
	"net/http"

	"cointap/internal/referral"

	"github.com/gin-gonic/gin"
)

// GetReferralLink returns the caller's code and the Telegram deep link that
// carries it as the mini app's start parameter.
func (h *Handler) GetReferralLink(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	snap := sess.Snapshot()

	c.JSON(http.StatusOK, gin.H{
		"code": snap.ReferralCode,
		"link": referral.Link(h.BotUsername, h.WebAppShortName, snap.ID),
		"rewards": gin.H{
			"referrer":     referral.Reward,
			"friend_bonus": referral.FriendBonus,
		},
	})
}

// GetReferralStats returns the caller's referral list and lifetime earnings
// from referrals.
func (h *Handler) GetReferralStats(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	snap := sess.Snapshot()

	c.JSON(http.StatusOK, gin.H{
		"referrals":     snap.Referrals,
		"total_invited": len(snap.Referrals),
		"total_earned":  snap.TotalReferralEarnings,
		"referred_by":   snap.ReferredBy,
	})
}
