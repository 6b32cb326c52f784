package storage

import (
	"context"
	"encoding/json"
	"math"
	"time"

	"cointap/internal/catalog"
	"cointap/internal/domain"
	"cointap/internal/logger"
	"cointap/internal/referral"
)

// Offline automation is capped at 3 hours of elapsed time and runs at 50%
// efficiency.
const (
	maxOfflineSeconds = 3 * 60 * 60
	offlineEfficiency = 0.5
)

// Adapter loads and saves PlayerState records. Load never fails: a missing or
// malformed record yields a fresh default state, a storage error falls back
// the same way. Save is best-effort; the in-memory state stays valid when it
// fails.
type Adapter struct {
	kv KV

	// Now is the adapter's clock, swappable in tests.
	Now func() time.Time
}

func NewAdapter(kv KV) *Adapter {
	return &Adapter{kv: kv, Now: time.Now}
}

// Load reads the record for the user's id, migrates it forward, refreshes the
// profile from the identity source and applies regen/offline catch-up. A
// first-ever load constructs the default state.
func (a *Adapter) Load(ctx context.Context, user domain.TelegramUser) *domain.PlayerState {
	nowMs := a.Now().UnixMilli()

	data, err := a.kv.Get(ctx, user.ID)
	if err != nil {
		if err != ErrNotFound {
			logger.Warn("state load failed, starting fresh", "player_id", user.ID, "error", err)
		}
		return a.defaultState(user, nowMs)
	}

	var state domain.PlayerState
	if err := json.Unmarshal(data, &state); err != nil {
		// Malformed persisted data is treated like no prior record.
		logger.Warn("state record malformed, starting fresh", "player_id", user.ID, "error", err)
		return a.defaultState(user, nowMs)
	}

	state.ID = user.ID
	state.Normalize()
	state.RefreshProfile(user)
	if state.ReferralCode == "" {
		state.ReferralCode = referral.GenerateCode(user.ID)
	}
	if state.CreatedAt == 0 {
		state.CreatedAt = nowMs
	}

	a.catchUp(&state, nowMs)
	state.Level = catalog.LevelFor(state.TotalCoins)
	return &state
}

// LoadExisting reads a record without profile refresh or catch-up. Used for
// the cross-record referrer credit; returns ErrNotFound (or a parse error)
// when the referrer's data is not locally present.
func (a *Adapter) LoadExisting(ctx context.Context, playerID int64) (*domain.PlayerState, error) {
	data, err := a.kv.Get(ctx, playerID)
	if err != nil {
		return nil, err
	}
	var state domain.PlayerState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	state.Normalize()
	return &state, nil
}

// Save writes the full record under the player's key.
func (a *Adapter) Save(ctx context.Context, state *domain.PlayerState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	if err := a.kv.Put(ctx, state.ID, data); err != nil {
		logger.Warn("state save failed", "player_id", state.ID, "error", err)
		return err
	}
	return nil
}

func (a *Adapter) defaultState(user domain.TelegramUser, nowMs int64) *domain.PlayerState {
	state := domain.NewPlayerState(user, nowMs)
	state.ReferralCode = referral.GenerateCode(user.ID)
	return state
}

// catchUp applies energy regeneration and capped offline auto-tap earnings
// for the time elapsed since the record was last touched.
func (a *Adapter) catchUp(state *domain.PlayerState, nowMs int64) {
	elapsed := float64(nowMs-state.LastEnergyUpdate) / 1000
	if elapsed < 0 {
		elapsed = 0
	}

	regen := int64(math.Floor(elapsed * state.EnergyRegenRate))
	state.Energy += regen
	state.ClampEnergy()

	if state.AutoTapRate > 0 {
		offlineSeconds := math.Min(elapsed, maxOfflineSeconds)
		earned := int64(math.Floor(offlineSeconds * float64(state.AutoTapRate) * offlineEfficiency))
		if earned > 0 {
			state.Coins += earned
			state.TotalCoins += earned
		}
	}

	state.LastEnergyUpdate = nowMs
}
