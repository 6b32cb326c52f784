package domain

// TelegramUser holds the profile fields delivered by the Telegram initData
// payload. The engine never computes these; they are refreshed from the
// identity source on every load.
type TelegramUser struct {
	ID           int64  `json:"id"`
	Username     string `json:"username,omitempty"`
	FirstName    string `json:"first_name,omitempty"`
	LastName     string `json:"last_name,omitempty"`
	PhotoURL     string `json:"photo_url,omitempty"`
	IsPremium    bool   `json:"is_premium,omitempty"`
	LanguageCode string `json:"language_code,omitempty"`
}

// OwnedUpgrade is one purchased upgrade; unique by ID, Level never decreases.
type OwnedUpgrade struct {
	ID    string `json:"id"`
	Level int    `json:"level"`
}

// ReferralEntry records one player referred by this player. Append-only,
// unique by ReferredID.
type ReferralEntry struct {
	ReferredID int64  `json:"referred_id"`
	Username   string `json:"username,omitempty"`
	FirstName  string `json:"first_name,omitempty"`
	JoinedAt   int64  `json:"joined_at"` // unix milliseconds
	Earned     int64  `json:"earned"`
}

// PurchaseRecord is one entry of the append-only purchase ledger.
type PurchaseRecord struct {
	ID            string  `json:"id"`
	PackageID     string  `json:"package_id"`
	Coins         int64   `json:"coins"`
	PriceTON      float64 `json:"price_ton"`
	Timestamp     int64   `json:"timestamp"` // unix milliseconds
	ExternalTxRef string  `json:"external_tx_ref,omitempty"`
}

// Default stats for a fresh player. Upgrade effects override these; stats
// whose upgrade is unowned keep the initial value.
const (
	InitialEnergy    int64   = 1000
	InitialTapPower  int64   = 1
	InitialRegenRate float64 = 1 // energy units per second
)

// PlayerState is the canonical per-player record, keyed by the Telegram id.
// All timestamps are unix milliseconds; LastLoginDate is a calendar day
// ("2006-01-02"), not a timestamp.
type PlayerState struct {
	// Identity/profile, refreshed from Telegram on every load.
	ID        int64  `json:"id"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	PhotoURL  string `json:"photo_url,omitempty"`
	IsPremium bool   `json:"is_premium,omitempty"`

	// Currency. TotalCoins never decreases and is the sole driver of Level.
	Coins      int64 `json:"coins"`
	TotalCoins int64 `json:"total_coins"`

	// Energy and tap stats.
	TapPower        int64   `json:"tap_power"`
	Energy          int64   `json:"energy"`
	MaxEnergy       int64   `json:"max_energy"`
	EnergyRegenRate float64 `json:"energy_regen_rate"`
	AutoTapRate     int64   `json:"auto_tap_rate"` // coins/second, 0 = disabled

	Upgrades []OwnedUpgrade `json:"upgrades"`

	LastEnergyUpdate int64  `json:"last_energy_update"`
	LastLoginDate    string `json:"last_login_date,omitempty"`
	LoginStreak      int    `json:"login_streak"`
	LastDailyReset   int64  `json:"last_daily_reset"`

	DailyTasksCompleted []string `json:"daily_tasks_completed"`

	// Derived from TotalCoins, cached.
	Level int `json:"level"`

	ReferralCode          string          `json:"referral_code"`
	ReferredBy            int64           `json:"referred_by,omitempty"`
	Referrals             []ReferralEntry `json:"referrals"`
	TotalReferralEarnings int64           `json:"total_referral_earnings"`

	Purchases     []PurchaseRecord `json:"purchases"`
	TotalSpentTON float64          `json:"total_spent_ton"`

	CreatedAt int64 `json:"created_at"`
}

// NewPlayerState builds the default record for a first-ever load.
func NewPlayerState(user TelegramUser, nowMs int64) *PlayerState {
	s := &PlayerState{
		ID:                  user.ID,
		Coins:               0,
		TotalCoins:          0,
		TapPower:            InitialTapPower,
		Energy:              InitialEnergy,
		MaxEnergy:           InitialEnergy,
		EnergyRegenRate:     InitialRegenRate,
		AutoTapRate:         0,
		Upgrades:            []OwnedUpgrade{},
		LastEnergyUpdate:    nowMs,
		DailyTasksCompleted: []string{},
		Referrals:           []ReferralEntry{},
		Purchases:           []PurchaseRecord{},
		CreatedAt:           nowMs,
	}
	s.RefreshProfile(user)
	return s
}

// RefreshProfile overwrites the profile fields from the identity source.
func (s *PlayerState) RefreshProfile(user TelegramUser) {
	s.Username = user.Username
	s.FirstName = user.FirstName
	s.LastName = user.LastName
	s.PhotoURL = user.PhotoURL
	s.IsPremium = user.IsPremium
}

// UpgradeLevel returns the owned level for an upgrade id, 0 if unowned.
func (s *PlayerState) UpgradeLevel(id string) int {
	for _, u := range s.Upgrades {
		if u.ID == id {
			return u.Level
		}
	}
	return 0
}

// SetUpgradeLevel records an owned level, creating the entry on first purchase.
func (s *PlayerState) SetUpgradeLevel(id string, level int) {
	for i := range s.Upgrades {
		if s.Upgrades[i].ID == id {
			s.Upgrades[i].Level = level
			return
		}
	}
	s.Upgrades = append(s.Upgrades, OwnedUpgrade{ID: id, Level: level})
}

// TaskCompleted reports whether a daily task id was already claimed today.
func (s *PlayerState) TaskCompleted(id string) bool {
	for _, t := range s.DailyTasksCompleted {
		if t == id {
			return true
		}
	}
	return false
}

// HasReferral reports whether the given player is already in the referrals
// list. Guards the cross-record credit against replay.
func (s *PlayerState) HasReferral(referredID int64) bool {
	for _, r := range s.Referrals {
		if r.ReferredID == referredID {
			return true
		}
	}
	return false
}

// ClampEnergy forces energy back into [0, MaxEnergy].
func (s *PlayerState) ClampEnergy() {
	if s.Energy > s.MaxEnergy {
		s.Energy = s.MaxEnergy
	}
	if s.Energy < 0 {
		s.Energy = 0
	}
}

// Normalize populates fields a record persisted by an older schema may lack.
// Forward migration only: absent fields get safe defaults, nothing is dropped.
func (s *PlayerState) Normalize() {
	if s.TapPower < InitialTapPower {
		s.TapPower = InitialTapPower
	}
	if s.MaxEnergy <= 0 {
		s.MaxEnergy = InitialEnergy
	}
	if s.EnergyRegenRate <= 0 {
		s.EnergyRegenRate = InitialRegenRate
	}
	if s.Upgrades == nil {
		s.Upgrades = []OwnedUpgrade{}
	}
	if s.DailyTasksCompleted == nil {
		s.DailyTasksCompleted = []string{}
	}
	if s.Referrals == nil {
		s.Referrals = []ReferralEntry{}
	}
	if s.Purchases == nil {
		s.Purchases = []PurchaseRecord{}
	}
	s.ClampEnergy()
}
