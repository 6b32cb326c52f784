package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"cointap/internal/domain"
	"cointap/internal/service"

	"github.com/gin-gonic/gin"
)

type AuthRequest struct {
	InitData   string `json:"init_data"`
	StartParam string `json:"start_param"`
}

// Auth validates Telegram init data, initializes (or reuses) the player's
// session - which runs the referral protocol and the daily-login check - and
// issues a JWT. Idempotent per player per process.
func (h *Handler) Auth(c *gin.Context) {
	var req AuthRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	var user domain.TelegramUser
	startParam := req.StartParam

	if h.DevMode {
		// DEV MODE: accept a bare user JSON instead of signed init data.
		if err := json.Unmarshal([]byte(req.InitData), &user); err != nil || user.ID == 0 {
			user = domain.TelegramUser{ID: 12345, Username: "testuser", FirstName: "Test"}
		}
	} else {
		values, ok := service.ValidateTelegramInitData(req.InitData, h.BotToken)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or stale telegram data"})
			return
		}

		user, ok = service.ExtractTelegramUser(values)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "user not found in init data"})
			return
		}
		if sp := service.ExtractStartParam(values); sp != "" {
			startParam = sp
		}
	}

	sess, outcome := h.Manager.Init(c.Request.Context(), user, strings.TrimSpace(startParam))

	token, err := service.GenerateJWT(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token generation failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":    token,
		"state":    sess.Snapshot(),
		"referral": outcome,
	})
}
