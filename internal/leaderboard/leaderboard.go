// Package leaderboard keeps a redis sorted set of lifetime coin totals.
// Fail-open: without a redis client every operation is a cheap no-op, the
// game itself never depends on it.
package leaderboard

import (
	"context"
	"strconv"

	redis "github.com/redis/go-redis/v9"

	"cointap/internal/logger"
)

const key = "leaderboard:total_coins"

// Entry is one leaderboard row.
type Entry struct {
	Rank       int   `json:"rank"`
	PlayerID   int64 `json:"player_id"`
	TotalCoins int64 `json:"total_coins"`
}

type Leaderboard struct {
	client *redis.Client
}

// New builds a leaderboard over an optional redis client; nil disables it.
func New(client *redis.Client) *Leaderboard {
	return &Leaderboard{client: client}
}

// Update publishes a player's lifetime total. TotalCoins is monotonic, so a
// plain ZADD (absolute score) is replay-safe.
func (l *Leaderboard) Update(playerID, totalCoins int64) {
	if l.client == nil {
		return
	}
	ctx := context.Background()
	err := l.client.ZAdd(ctx, key, redis.Z{
		Score:  float64(totalCoins),
		Member: strconv.FormatInt(playerID, 10),
	}).Err()
	if err != nil {
		logger.Warn("leaderboard update failed", "player_id", playerID, "error", err)
	}
}

// Top returns the n highest lifetime totals, best first.
func (l *Leaderboard) Top(ctx context.Context, n int64) ([]Entry, error) {
	if l.client == nil {
		return []Entry{}, nil
	}
	rows, err := l.client.ZRevRangeWithScores(ctx, key, 0, n-1).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(rows))
	for i, z := range rows {
		member, _ := z.Member.(string)
		id, err := strconv.ParseInt(member, 10, 64)
		if err != nil {
			continue
		}
		entries = append(entries, Entry{
			Rank:       i + 1,
			PlayerID:   id,
			TotalCoins: int64(z.Score),
		})
	}
	return entries, nil
}

// Rank returns a player's 1-based rank and score; ok is false when the
// player is absent or redis is unavailable.
func (l *Leaderboard) Rank(ctx context.Context, playerID int64) (Entry, bool) {
	if l.client == nil {
		return Entry{}, false
	}
	member := strconv.FormatInt(playerID, 10)
	rank, err := l.client.ZRevRank(ctx, key, member).Result()
	if err != nil {
		return Entry{}, false
	}
	score, err := l.client.ZScore(ctx, key, member).Result()
	if err != nil {
		return Entry{}, false
	}
	return Entry{Rank: int(rank) + 1, PlayerID: playerID, TotalCoins: int64(score)}, true
}
