package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/websocket"
)

// Smoke client for a locally running server in dev mode: authenticates,
// opens the event stream, fires a tap batch and prints what comes back.
func main() {
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}
	base := fmt.Sprintf("http://127.0.0.1:%s", port)

	// dev-mode auth with a bare user payload
	authBody, _ := json.Marshal(map[string]string{
		"init_data": `{"id":3001,"username":"smoke","first_name":"S"}`,
	})
	res, err := http.Post(base+"/api/v1/auth", "application/json", bytes.NewReader(authBody))
	if err != nil {
		log.Fatalf("auth: %v", err)
	}
	defer res.Body.Close()

	var auth struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(res.Body).Decode(&auth); err != nil || auth.Token == "" {
		log.Fatalf("auth response: %v (is DEV_MODE=true?)", err)
	}

	// use 127.0.0.1 to prefer IPv4 (avoid resolving to [::1])
	wsURL := fmt.Sprintf("ws://127.0.0.1:%s/ws?token=%s", port, auth.Token)
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		log.Fatalf("dial: %v", err)
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

	tapBody, _ := json.Marshal(map[string]any{"x": 10, "y": 20, "count": 3})
	req, _ := http.NewRequest("POST", base+"/api/v1/tap", bytes.NewReader(tapBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+auth.Token)
	tapRes, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatalf("tap: %v", err)
	}
	tapRes.Body.Close()
	log.Printf("tap status: %d", tapRes.StatusCode)

	deadline := time.After(3 * time.Second)
	received := 0
	for received < 3 {
		select {
		case msg, ok := <-events:
			if !ok {
				log.Fatal("stream closed early")
			}
			log.Printf("event: %s", string(msg))
			received++
		case <-deadline:
			log.Fatalf("timeout: got %d of 3 tap events", received)
		}
	}

	log.Println("smoke test finished")
}
