package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"cointap/internal/domain"
)

// Telegram init data stays well under this; anything bigger is garbage and
// not worth hashing.
const maxInitDataLen = 4096

// ValidateTelegramInitData verifies Telegram WebApp init_data HMAC and checks
// that the auth_date is recent (within 1 hour) to mitigate replay attacks.
func ValidateTelegramInitData(initData, botToken string) (url.Values, bool) {
	if len(initData) > maxInitDataLen {
		return nil, false
	}
	values, err := url.ParseQuery(initData)
	if err != nil {
		return nil, false
	}

	hash := values.Get("hash")
	if hash == "" {
		return nil, false
	}
	values.Del("hash")

	var dataCheck []string
	for k, v := range values {
		dataCheck = append(dataCheck, k+"="+strings.Join(v, ""))
	}

	sort.Strings(dataCheck)
	dataString := strings.Join(dataCheck, "\n")

	secret := sha256.Sum256([]byte(botToken))
	h := hmac.New(sha256.New, secret[:])
	h.Write([]byte(dataString))

	calculated := h.Sum(nil)
	provided, err := hex.DecodeString(hash)
	if err != nil {
		return nil, false
	}

	if !hmac.Equal(calculated, provided) {
		return nil, false
	}

	// Freshness check: require auth_date within the last hour
	authDateStr := values.Get("auth_date")
	if authDateStr == "" {
		return nil, false
	}
	authDate, err := strconv.ParseInt(authDateStr, 10, 64)
	if err != nil {
		return nil, false
	}

	now := time.Now().Unix()
	// allow small clock skew, but reject anything older than 1 hour
	if now-authDate > 3600 || authDate-now > 300 {
		return nil, false
	}

	return values, true
}

// ExtractTelegramUser decodes the "user" JSON field of validated init data.
func ExtractTelegramUser(values url.Values) (domain.TelegramUser, bool) {
	userRaw := values.Get("user")
	if userRaw == "" {
		return domain.TelegramUser{}, false
	}

	var user domain.TelegramUser
	if err := json.Unmarshal([]byte(userRaw), &user); err != nil || user.ID == 0 {
		return domain.TelegramUser{}, false
	}
	return user, true
}

// ExtractStartParam returns the deep-link start parameter (the referral code
// carrier), empty when absent.
func ExtractStartParam(values url.Values) string {
	if v := values.Get("start_param"); v != "" {
		return v
	}
	// older clients used tgWebAppStartParam
	return values.Get("tgWebAppStartParam")
}
