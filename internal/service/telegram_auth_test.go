package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"testing"
	"time"
)

// buildInitData builds a valid init_data string for tests using the same
// algorithm as ValidateTelegramInitData.
func buildInitData(t *testing.T, botToken string, fields map[string]string) string {
	t.Helper()
	var parts []string
	for k, v := range fields {
		parts = append(parts, k+"="+v)
	}
	sort.Strings(parts)
	dataString := strings.Join(parts, "\n")

	secret := sha256.Sum256([]byte(botToken))
	mac := hmac.New(sha256.New, secret[:])
	mac.Write([]byte(dataString))
	hash := hex.EncodeToString(mac.Sum(nil))

	vals := url.Values{}
	for k, v := range fields {
		vals.Add(k, v)
	}
	vals.Add("hash", hash)
	return vals.Encode()
}

func TestValidateTelegramInitData_Valid(t *testing.T) {
	botToken := "test-bot-token"
	fields := map[string]string{
		"auth_date": strconv.FormatInt(time.Now().Unix(), 10),
		"user":      `{"id":1,"username":"u","first_name":"F"}`,
	}

	initData := buildInitData(t, botToken, fields)

	vals, ok := ValidateTelegramInitData(initData, botToken)
	if !ok {
		t.Fatalf("expected valid init data")
	}
	if vals.Get("user") == "" {
		t.Fatalf("expected user field in values")
	}
}

func TestValidateTelegramInitData_Tampered(t *testing.T) {
	botToken := "test-bot-token"
	fields := map[string]string{
		"auth_date": strconv.FormatInt(time.Now().Unix(), 10),
		"user":      `{"id":1,"username":"u","first_name":"F"}`,
	}
	initData := buildInitData(t, botToken, fields)

	// tamper with data by appending an extra field (will break the hash)
	tampered := initData + "&x=1"

	_, ok := ValidateTelegramInitData(tampered, botToken)
	if ok {
		t.Fatalf("expected tampered init data to be invalid")
	}
}

func TestValidateTelegramInitData_Stale(t *testing.T) {
	botToken := "test-bot-token"
	fields := map[string]string{
		"auth_date": strconv.FormatInt(time.Now().Add(-2*time.Hour).Unix(), 10),
		"user":      `{"id":1,"username":"u","first_name":"F"}`,
	}
	initData := buildInitData(t, botToken, fields)

	if _, ok := ValidateTelegramInitData(initData, botToken); ok {
		t.Fatalf("expected stale init data to be rejected")
	}
}

func TestValidateTelegramInitData_Oversized(t *testing.T) {
	botToken := "test-bot-token"
	fields := map[string]string{
		"auth_date": strconv.FormatInt(time.Now().Unix(), 10),
		"user":      `{"id":1,"username":"u","first_name":"F"}`,
		"padding":   strings.Repeat("a", 8192),
	}
	initData := buildInitData(t, botToken, fields)

	if _, ok := ValidateTelegramInitData(initData, botToken); ok {
		t.Fatalf("expected oversized init data to be rejected")
	}
}

func TestExtractTelegramUser(t *testing.T) {
	vals := url.Values{}
	vals.Set("user", `{"id":42,"username":"miner","first_name":"M","is_premium":true}`)

	user, ok := ExtractTelegramUser(vals)
	if !ok {
		t.Fatalf("expected user to parse")
	}
	if user.ID != 42 || user.Username != "miner" || !user.IsPremium {
		t.Fatalf("user = %+v", user)
	}
}

func TestExtractTelegramUser_Invalid(t *testing.T) {
	cases := map[string]url.Values{
		"no user field": {},
		"malformed":     {"user": {`{not json`}},
		"missing id":    {"user": {`{"username":"x"}`}},
	}
	for name, vals := range cases {
		if _, ok := ExtractTelegramUser(vals); ok {
			t.Fatalf("%s: expected rejection", name)
		}
	}
}

func TestExtractStartParam(t *testing.T) {
	vals := url.Values{}
	if got := ExtractStartParam(vals); got != "" {
		t.Fatalf("empty values gave %q", got)
	}

	vals.Set("tgWebAppStartParam", "ref_2")
	if got := ExtractStartParam(vals); got != "ref_2" {
		t.Fatalf("fallback param gave %q", got)
	}

	vals.Set("start_param", "ref_1")
	if got := ExtractStartParam(vals); got != "ref_1" {
		t.Fatalf("start_param gave %q; want ref_1", got)
	}
}
