// Package engine holds the game-state store: per-player sessions owning the
// canonical PlayerState, the session manager that runs the referral protocol
// at init, and the tick scheduler driving time-based mutations.
package engine

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"cointap/internal/catalog"
	"cointap/internal/domain"
	"cointap/internal/storage"
	"cointap/internal/tasks"
)

var (
	ErrUnknownUpgrade    = errors.New("engine: unknown upgrade id")
	ErrUpgradeMaxed      = errors.New("engine: upgrade already at max level")
	ErrInsufficientFunds = errors.New("engine: insufficient coins")
)

// TapEvent is the transient floating-text event emitted by a tap. The
// coordinates are opaque UI-space values carried through for presentation.
type TapEvent struct {
	PlayerID int64   `json:"player_id"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Value    int64   `json:"value"`
	Lucky    bool    `json:"lucky"`
}

// Session owns the canonical in-memory state for one player. Every operation
// locks for its whole body, so mutations are run-to-completion with respect
// to interleaved HTTP callers and the scheduler goroutine.
type Session struct {
	mu    sync.Mutex
	state *domain.PlayerState
	store *storage.Adapter

	now  func() time.Time
	rand func() float64

	// Session-scoped counters for task eligibility. Reset when the session
	// is created, never persisted.
	tapCount        int64
	sessionEarnings int64

	// dirty marks low-value mutations (energy regen) not yet persisted;
	// they ride along with the next high-value save or the shutdown flush.
	dirty bool

	onTapEvent   func(TapEvent)
	onTotalCoins func(playerID, totalCoins int64)
}

// Snapshot is a read-only copy of the player state plus derived display
// fields, safe to serialize outside the session lock.
type Snapshot struct {
	domain.PlayerState
	LevelName       string  `json:"level_name"`
	LevelProgress   float64 `json:"level_progress"`
	TapCount        int64   `json:"tap_count"`
	SessionEarnings int64   `json:"session_earnings"`
}

// Tap applies one manual tap at UI coordinates (x, y). No-op returning 0 when
// energy is below the tap cost. Returns the coins awarded and whether the
// lucky multiplier hit.
func (s *Session) Tap(ctx context.Context, x, y float64) (earned int64, lucky bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state
	if st.Energy < st.TapPower {
		return 0, false
	}

	chance := catalog.LuckyChance(st.UpgradeLevel(catalog.UpgradeLuckyTap))
	lucky = chance > 0 && s.rand() < chance
	earned = st.TapPower
	if lucky {
		earned = 5 * st.TapPower
		LuckyTapsTotal.Inc()
	}

	st.Coins += earned
	st.TotalCoins += earned
	st.Energy -= st.TapPower // energy cost is the tap power, not the award
	st.LastEnergyUpdate = s.now().UnixMilli()
	st.Level = catalog.LevelFor(st.TotalCoins)

	s.tapCount++
	s.sessionEarnings += earned
	TapsTotal.Inc()
	CoinsEarnedTotal.WithLabelValues("tap").Add(float64(earned))

	if s.onTapEvent != nil {
		s.onTapEvent(TapEvent{PlayerID: st.ID, X: x, Y: y, Value: earned, Lucky: lucky})
	}

	s.persist(ctx)
	return earned, lucky
}

// BuyUpgrade raises the owned level of an upgrade by one, deducting the exact
// cost and recomputing all dependent stats. Failures leave state untouched.
func (s *Session) BuyUpgrade(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	def := catalog.Find(id)
	if def == nil {
		return ErrUnknownUpgrade
	}

	st := s.state
	current := st.UpgradeLevel(id)
	if current >= def.MaxLevel {
		return ErrUpgradeMaxed
	}

	cost := catalog.Cost(def, current)
	if st.Coins < cost {
		return ErrInsufficientFunds
	}

	st.Coins -= cost
	st.SetUpgradeLevel(id, current+1)

	stats := catalog.RecomputeStats(st.Upgrades)
	st.TapPower = stats.TapPower
	st.MaxEnergy = stats.MaxEnergy
	st.EnergyRegenRate = stats.EnergyRegenRate
	st.AutoTapRate = stats.AutoTapRate
	st.ClampEnergy()

	UpgradesPurchasedTotal.WithLabelValues(id).Inc()
	s.persist(ctx)
	return nil
}

// ClaimDailyTask marks a task completed and credits its reward. Already
// claimed ids are a no-op. The reward magnitude is trusted from the caller,
// which looks it up in the generated daily list.
func (s *Session) ClaimDailyTask(ctx context.Context, id string, reward int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state
	if st.TaskCompleted(id) {
		return false
	}

	st.Coins += reward
	st.TotalCoins += reward
	st.Level = catalog.LevelFor(st.TotalCoins)
	st.DailyTasksCompleted = append(st.DailyTasksCompleted, id)

	TasksClaimedTotal.WithLabelValues(id).Inc()
	CoinsEarnedTotal.WithLabelValues("task").Add(float64(reward))
	s.persist(ctx)
	return true
}

// CanClaimTask checks eligibility against the completion set and the session
// counters.
func (s *Session) CanClaimTask(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return tasks.CanClaim(id, s.state, s.progressLocked())
}

// DailyTasks returns today's task list for the player's streak.
func (s *Session) DailyTasks() []tasks.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return tasks.DailyTasks(s.state.LoginStreak)
}

// Progress exposes the session counters for eligibility checks.
func (s *Session) Progress() tasks.Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progressLocked()
}

func (s *Session) progressLocked() tasks.Progress {
	return tasks.Progress{TapCount: s.tapCount, SessionEarnings: s.sessionEarnings}
}

// AddPurchase credits a completed external purchase and appends it to the
// ledger.
func (s *Session) AddPurchase(ctx context.Context, rec domain.PurchaseRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state
	st.Coins += rec.Coins
	st.TotalCoins += rec.Coins
	st.Level = catalog.LevelFor(st.TotalCoins)
	st.Purchases = append(st.Purchases, rec)
	st.TotalSpentTON += rec.PriceTON

	CoinsEarnedTotal.WithLabelValues("purchase").Add(float64(rec.Coins))
	s.persist(ctx)
}

// RegenEnergy adds one second of regeneration. Low-value mutation: it is not
// persisted per tick, only marked dirty for the next save.
func (s *Session) RegenEnergy() {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state
	if st.Energy >= st.MaxEnergy {
		return
	}
	st.Energy += int64(math.Ceil(st.EnergyRegenRate))
	st.ClampEnergy()
	st.LastEnergyUpdate = s.now().UnixMilli()
	s.dirty = true
}

// AutoTapTick credits one second of passive generation. No-op when the
// auto-tap upgrade is unowned.
func (s *Session) AutoTapTick(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state
	if st.AutoTapRate <= 0 {
		return
	}
	st.Coins += st.AutoTapRate
	st.TotalCoins += st.AutoTapRate
	st.Level = catalog.LevelFor(st.TotalCoins)
	s.sessionEarnings += st.AutoTapRate

	CoinsEarnedTotal.WithLabelValues("auto_tap").Add(float64(st.AutoTapRate))
	s.persist(ctx)
}

// CoinMagnetTick credits the once-per-minute coin-magnet bonus.
func (s *Session) CoinMagnetTick(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state
	bonus := catalog.CoinMagnetBonus(st.UpgradeLevel(catalog.UpgradeCoinMagnet))
	if bonus <= 0 {
		return
	}
	st.Coins += bonus
	st.TotalCoins += bonus
	st.Level = catalog.LevelFor(st.TotalCoins)

	CoinsEarnedTotal.WithLabelValues("coin_magnet").Add(float64(bonus))
	s.persist(ctx)
}

// CheckDailyLogin runs the streak state machine. Idempotent within the same
// calendar day; on a transition it bumps or resets the streak and clears the
// daily completion set. Returns whether a transition happened.
func (s *Session) CheckDailyLogin(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	today := now.Format("2006-01-02")
	st := s.state
	if st.LastLoginDate == today {
		return false
	}

	yesterday := now.AddDate(0, 0, -1).Format("2006-01-02")
	if st.LastLoginDate == yesterday {
		st.LoginStreak++
	} else {
		st.LoginStreak = 1
	}
	st.LastLoginDate = today
	st.DailyTasksCompleted = st.DailyTasksCompleted[:0]
	st.LastDailyReset = now.UnixMilli()

	s.persist(ctx)
	return true
}

// Flush persists pending low-value mutations, if any. Called on shutdown.
func (s *Session) Flush(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dirty {
		s.persist(ctx)
	}
}

// Snapshot copies the state for read-only consumers.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := *s.state
	st.Upgrades = append([]domain.OwnedUpgrade(nil), s.state.Upgrades...)
	st.DailyTasksCompleted = append([]string(nil), s.state.DailyTasksCompleted...)
	st.Referrals = append([]domain.ReferralEntry(nil), s.state.Referrals...)
	st.Purchases = append([]domain.PurchaseRecord(nil), s.state.Purchases...)

	return Snapshot{
		PlayerState:     st,
		LevelName:       catalog.LevelName(st.Level),
		LevelProgress:   catalog.LevelProgress(st.TotalCoins),
		TapCount:        s.tapCount,
		SessionEarnings: s.sessionEarnings,
	}
}

// persist saves the record and publishes the lifetime total to the
// leaderboard hook. Save failures are non-fatal; dirty stays set so the
// shutdown flush retries.
func (s *Session) persist(ctx context.Context) {
	if err := s.store.Save(ctx, s.state); err == nil {
		s.dirty = false
	}
	if s.onTotalCoins != nil {
		s.onTotalCoins(s.state.ID, s.state.TotalCoins)
	}
}
