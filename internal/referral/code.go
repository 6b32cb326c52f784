// Package referral implements the referral code codec and the outcome type
// of the referral-crediting protocol run at session init.
package referral

import (
	"strconv"
	"strings"
)

// Rewards credited when a referral code is applied. The referrer credit is
// best-effort (skipped if their record is not locally present); the friend
// bonus always lands.
const (
	Reward      int64 = 5000 // to the referrer
	FriendBonus int64 = 2500 // to the new player
)

const codePrefix = "ref_"

// GenerateCode builds the referral code for a player id: "ref_<id>".
func GenerateCode(playerID int64) string {
	return codePrefix + strconv.FormatInt(playerID, 10)
}

// ParseCode inverts GenerateCode. ok is false for anything that is not a
// well-formed code with a positive decimal id. Zero is rejected: player ids
// are always positive, and an unset referrer is stored as 0.
func ParseCode(code string) (playerID int64, ok bool) {
	raw, found := strings.CutPrefix(code, codePrefix)
	if !found || raw == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// Link is the Telegram deep link that opens the mini app with the player's
// code as start parameter.
func Link(botUsername, webAppShortName string, playerID int64) string {
	return "https://t.me/" + botUsername + "/" + webAppShortName + "?startapp=" + GenerateCode(playerID)
}

// Status tags the outcome of applying an incoming referral code.
type Status string

const (
	// StatusNone - no code supplied.
	StatusNone Status = "none"
	// StatusAlreadyReferred - the player already has a referrer; nothing changed.
	StatusAlreadyReferred Status = "already_referred"
	// StatusInvalidCode - the code did not parse.
	StatusInvalidCode Status = "invalid_code"
	// StatusSelfReferral - the code points at the player themselves.
	StatusSelfReferral Status = "self_referral"
	// StatusApplied - new player credited AND referrer credited.
	StatusApplied Status = "applied"
	// StatusReferrerMissing - new player credited, but the referrer's record
	// is not locally present; their credit is skipped, not retried.
	StatusReferrerMissing Status = "referrer_missing"
)

// Outcome is the tagged result of the protocol. The partial-failure mode
// (friend credited, referrer not) is explicit rather than swallowed.
type Outcome struct {
	Status      Status `json:"status"`
	ReferrerID  int64  `json:"referrer_id,omitempty"`
	FriendBonus int64  `json:"friend_bonus,omitempty"`
}

// Credited reports whether the new player received the friend bonus.
func (o Outcome) Credited() bool {
	return o.Status == StatusApplied || o.Status == StatusReferrerMissing
}
