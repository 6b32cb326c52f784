package engine

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"cointap/internal/catalog"
	"cointap/internal/domain"
	"cointap/internal/logger"
	"cointap/internal/referral"
	"cointap/internal/storage"
)

// Manager owns one Session per player for the life of the process. Init is
// idempotent per player: a second call returns the existing session without
// rerunning the referral protocol or the load path.
type Manager struct {
	mu       sync.Mutex
	sessions map[int64]*Session
	store    *storage.Adapter

	// Clock and rng injected into new sessions; swappable in tests.
	Now  func() time.Time
	Rand func() float64

	// OnTapEvent receives floating-text events for the presentation stream.
	OnTapEvent func(TapEvent)
	// OnTotalCoins is invoked after saves with the player's lifetime total,
	// feeding the leaderboard.
	OnTotalCoins func(playerID, totalCoins int64)
}

func NewManager(store *storage.Adapter) *Manager {
	return &Manager{
		sessions: make(map[int64]*Session),
		store:    store,
		Now:      time.Now,
		Rand:     rand.Float64,
	}
}

// Init loads (or creates) the player's record, applies an incoming referral
// code and runs the daily-login check. Returns the session and the referral
// outcome; for an already-initialized player the outcome is StatusNone.
func (m *Manager) Init(ctx context.Context, user domain.TelegramUser, startParam string) (*Session, referral.Outcome) {
	m.mu.Lock()
	if sess, ok := m.sessions[user.ID]; ok {
		m.mu.Unlock()
		return sess, referral.Outcome{Status: referral.StatusNone}
	}
	m.mu.Unlock()

	state := m.store.Load(ctx, user)
	outcome := m.applyReferral(ctx, state, startParam, user)

	sess := &Session{
		state:        state,
		store:        m.store,
		now:          m.Now,
		rand:         m.Rand,
		onTapEvent:   m.OnTapEvent,
		onTotalCoins: m.OnTotalCoins,
	}
	sess.CheckDailyLogin(ctx)
	sess.mu.Lock()
	sess.persist(ctx)
	sess.mu.Unlock()

	m.mu.Lock()
	// Lose the race gracefully: keep whichever session landed first.
	if existing, ok := m.sessions[user.ID]; ok {
		m.mu.Unlock()
		return existing, referral.Outcome{Status: referral.StatusNone}
	}
	m.sessions[user.ID] = sess
	SessionsActive.Set(float64(len(m.sessions)))
	m.mu.Unlock()

	logger.Info("session initialized",
		"player_id", user.ID,
		"level", state.Level,
		"referral_status", string(outcome.Status),
	)
	return sess, outcome
}

// Get returns the live session for a player id, if one was initialized.
func (m *Manager) Get(playerID int64) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[playerID]
	return sess, ok
}

// ForEach runs fn over all live sessions. Used by the tick scheduler.
func (m *Manager) ForEach(fn func(*Session)) {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.Unlock()

	for _, s := range sessions {
		fn(s)
	}
}

// Flush persists every session with pending mutations. Called on shutdown.
func (m *Manager) Flush(ctx context.Context) {
	m.ForEach(func(s *Session) {
		s.Flush(ctx)
	})
}

// applyReferral runs the referral-crediting protocol once at init.
//
// The new player's friend bonus (step 3) always lands once the code passes
// the guards. The referrer credit (step 4) is best-effort: if their record
// is not locally present it is skipped, not retried - the accepted asymmetry
// is surfaced as StatusReferrerMissing instead of being swallowed.
func (m *Manager) applyReferral(ctx context.Context, state *domain.PlayerState, startParam string, user domain.TelegramUser) referral.Outcome {
	if startParam == "" {
		return referral.Outcome{Status: referral.StatusNone}
	}
	if state.ReferredBy != 0 {
		return referral.Outcome{Status: referral.StatusAlreadyReferred}
	}

	referrerID, ok := referral.ParseCode(startParam)
	if !ok {
		return referral.Outcome{Status: referral.StatusInvalidCode}
	}
	if referrerID == user.ID {
		return referral.Outcome{Status: referral.StatusSelfReferral}
	}

	state.ReferredBy = referrerID
	state.Coins += referral.FriendBonus
	state.TotalCoins += referral.FriendBonus
	state.Level = catalog.LevelFor(state.TotalCoins)

	outcome := referral.Outcome{
		Status:      referral.StatusApplied,
		ReferrerID:  referrerID,
		FriendBonus: referral.FriendBonus,
	}

	referrer, err := m.store.LoadExisting(ctx, referrerID)
	if err != nil {
		// Referrer's data lives elsewhere (another device); their credit is
		// skipped and never corrected.
		outcome.Status = referral.StatusReferrerMissing
		logger.Info("referrer record not present, credit skipped",
			"player_id", user.ID, "referrer_id", referrerID)
		return outcome
	}

	if !referrer.HasReferral(user.ID) {
		referrer.Referrals = append(referrer.Referrals, domain.ReferralEntry{
			ReferredID: user.ID,
			Username:   user.Username,
			FirstName:  user.FirstName,
			JoinedAt:   m.Now().UnixMilli(),
			Earned:     0,
		})
		referrer.Coins += referral.Reward
		referrer.TotalCoins += referral.Reward
		referrer.TotalReferralEarnings += referral.Reward
		referrer.Level = catalog.LevelFor(referrer.TotalCoins)
		_ = m.store.Save(ctx, referrer)

		// If the referrer is live in this process, their in-memory state is
		// stale now; refresh the fields the credit touched.
		if live, ok := m.Get(referrerID); ok {
			live.mu.Lock()
			live.state.Referrals = referrer.Referrals
			live.state.Coins = referrer.Coins
			live.state.TotalCoins = referrer.TotalCoins
			live.state.TotalReferralEarnings = referrer.TotalReferralEarnings
			live.state.Level = referrer.Level
			live.mu.Unlock()
		}
	}

	return outcome
}
