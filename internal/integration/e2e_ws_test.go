package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"cointap/internal/config"
	"cointap/internal/engine"
	httpserver "cointap/internal/http"
	"cointap/internal/leaderboard"
	"cointap/internal/service"
	"cointap/internal/storage"
	"cointap/internal/ws"
)

// End-to-end: auth in dev mode, open the event stream, tap over HTTP and
// expect the tap events on the websocket. Everything runs in-process against
// in-memory storage.
func TestE2E_TapEvents(t *testing.T) {
	gin.SetMode(gin.TestMode)
	service.InitJWT("test-secret")

	adapter := storage.NewAdapter(storage.NewMemoryKV())
	manager := engine.NewManager(adapter)
	hub := ws.NewHub()
	manager.OnTapEvent = func(ev engine.TapEvent) {
		hub.Broadcast(ev.PlayerID, "tap", ev)
	}

	cfg := &config.Config{
		DevMode:         true,
		BotUsername:     "CoinTapBot",
		WebAppShortName: "app",
		APIRateLimit:    1000,
		APIRateWindow:   time.Minute,
		AuthRateLimit:   1000,
		AuthRateWindow:  time.Minute,
		LeaderboardSize: 100,
	}

	r := gin.New()
	httpserver.RegisterRoutes(r, manager, leaderboard.New(nil), hub, nil, cfg, "test")
	ts := httptest.NewServer(r)
	defer ts.Close()

	// auth
	authBody, _ := json.Marshal(map[string]string{
		"init_data": `{"id":1001,"username":"e2e"}`,
	})
	res, err := http.Post(ts.URL+"/api/v1/auth", "application/json", bytes.NewReader(authBody))
	if err != nil {
		t.Fatalf("auth: %v", err)
	}
	var auth struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(res.Body).Decode(&auth); err != nil {
		t.Fatalf("decode auth: %v", err)
	}
	res.Body.Close()
	if auth.Token == "" {
		t.Fatalf("no token issued")
	}

	// open the event stream
	wsURL := strings.Replace(ts.URL, "http", "ws", 1) + "/ws?token=" + auth.Token
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	events := make(chan []byte, 16)
	go func() {
		defer close(events)
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			events <- msg
		}
	}()

	// the hub registers after the handshake; give the pump a moment
	time.Sleep(50 * time.Millisecond)

	// tap over HTTP
	tapBody, _ := json.Marshal(map[string]any{"x": 10, "y": 20, "count": 3})
	req, _ := http.NewRequest("POST", ts.URL+"/api/v1/tap", bytes.NewReader(tapBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+auth.Token)
	tapRes, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("tap: %v", err)
	}
	tapRes.Body.Close()
	if tapRes.StatusCode != 200 {
		t.Fatalf("tap status = %d", tapRes.StatusCode)
	}

	// expect 3 tap events
	deadline := time.After(3 * time.Second)
	received := 0
	for received < 3 {
		select {
		case msg, ok := <-events:
			if !ok {
				t.Fatalf("stream closed after %d events", received)
			}
			var ev struct {
				Type string          `json:"type"`
				Data engine.TapEvent `json:"data"`
			}
			if err := json.Unmarshal(msg, &ev); err != nil {
				t.Fatalf("decode event: %v", err)
			}
			if ev.Type != "tap" {
				continue
			}
			if ev.Data.PlayerID != 1001 || ev.Data.Value != 1 {
				t.Fatalf("event = %+v", ev.Data)
			}
			received++
		case <-deadline:
			t.Fatalf("timeout: got %d of 3 tap events", received)
		}
	}
}
