package main

import (
	"context"
	"flag"
	"log"
	"os"

	"cointap/internal/db"
	"cointap/internal/domain"
	"cointap/internal/service"
	"cointap/internal/storage"
)

// Seeds (or reuses) a player record and prints a JWT for manual testing.
// Expects DATABASE_URL and JWT_SECRET env vars.
func main() {
	tgID := flag.Int64("id", 1234567890, "telegram id of the seeded player")
	username := flag.String("username", "testuser", "username of the seeded player")
	coins := flag.Int64("coins", 0, "starting coin balance")
	flag.Parse()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL not set")
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET not set")
	}

	pool := db.Connect(dsn)
	defer pool.Close()

	pg := storage.NewPostgresKV(pool)
	ctx := context.Background()
	if err := pg.EnsureSchema(ctx); err != nil {
		log.Fatalf("ensure schema: %v", err)
	}

	adapter := storage.NewAdapter(pg)
	user := domain.TelegramUser{ID: *tgID, Username: *username, FirstName: "Tester"}

	// Load creates the default record on first run and reuses it after.
	state := adapter.Load(ctx, user)
	if *coins > 0 {
		state.Coins += *coins
		state.TotalCoins += *coins
	}
	if err := adapter.Save(ctx, state); err != nil {
		log.Fatalf("save player: %v", err)
	}
	log.Printf("player ready id=%d coins=%d total=%d code=%s\n", state.ID, state.Coins, state.TotalCoins, state.ReferralCode)

	service.InitJWT(secret)
	token, err := service.GenerateJWT(state.ID)
	if err != nil {
		log.Fatalf("generate token: %v", err)
	}
	log.Printf("token=%s\n", token)
}
