package engine

import (
	"context"
	"testing"
	"time"

	"cointap/internal/catalog"
	"cointap/internal/domain"
	"cointap/internal/storage"
	"cointap/internal/tasks"
)

func testSession(t *testing.T, now time.Time) (*Session, *storage.Adapter) {
	t.Helper()
	a := storage.NewAdapter(storage.NewMemoryKV())
	a.Now = func() time.Time { return now }

	state := domain.NewPlayerState(domain.TelegramUser{ID: 1, Username: "u"}, now.UnixMilli())
	return &Session{
		state: state,
		store: a,
		now:   func() time.Time { return now },
		rand:  func() float64 { return 1 }, // never lucky unless overridden
	}, a
}

func TestTapBasics(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s, _ := testSession(t, now)
	ctx := context.Background()

	earned, lucky := s.Tap(ctx, 10, 20)
	if earned != 1 || lucky {
		t.Fatalf("Tap = (%d, %v); want (1, false)", earned, lucky)
	}

	snap := s.Snapshot()
	if snap.Coins != 1 || snap.TotalCoins != 1 {
		t.Fatalf("coins = %d/%d; want 1/1", snap.Coins, snap.TotalCoins)
	}
	if snap.Energy != domain.InitialEnergy-1 {
		t.Fatalf("energy = %d; want %d", snap.Energy, domain.InitialEnergy-1)
	}
	if snap.TapCount != 1 || snap.SessionEarnings != 1 {
		t.Fatalf("session counters = %d/%d; want 1/1", snap.TapCount, snap.SessionEarnings)
	}
}

func TestTapBlockedWithoutEnergy(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s, _ := testSession(t, now)
	s.state.Energy = 0

	earned, lucky := s.Tap(context.Background(), 0, 0)
	if earned != 0 || lucky {
		t.Fatalf("Tap with no energy = (%d, %v); want (0, false)", earned, lucky)
	}
	if s.state.Coins != 0 || s.state.Energy != 0 {
		t.Fatalf("blocked tap mutated state: coins=%d energy=%d", s.state.Coins, s.state.Energy)
	}
}

func TestTapBlockedWhenEnergyBelowTapPower(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s, _ := testSession(t, now)
	s.state.TapPower = 10
	s.state.Energy = 9

	if earned, _ := s.Tap(context.Background(), 0, 0); earned != 0 {
		t.Fatalf("tap should be blocked when energy < tap power, earned %d", earned)
	}
}

func TestTapLucky(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s, _ := testSession(t, now)
	s.state.TapPower = 3
	s.state.SetUpgradeLevel(catalog.UpgradeLuckyTap, 4) // 20% chance
	s.rand = func() float64 { return 0.19 }             // just under the threshold

	earned, lucky := s.Tap(context.Background(), 0, 0)
	if !lucky || earned != 15 {
		t.Fatalf("lucky tap = (%d, %v); want (15, true)", earned, lucky)
	}
	// energy cost is the tap power, not the 5x award
	if s.state.Energy != domain.InitialEnergy-3 {
		t.Fatalf("energy = %d; want %d", s.state.Energy, domain.InitialEnergy-3)
	}

	s.rand = func() float64 { return 0.20 } // at the threshold: not lucky
	earned, lucky = s.Tap(context.Background(), 0, 0)
	if lucky || earned != 3 {
		t.Fatalf("tap at threshold = (%d, %v); want (3, false)", earned, lucky)
	}
}

func TestTapEmitsEvent(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s, _ := testSession(t, now)

	var got TapEvent
	s.onTapEvent = func(ev TapEvent) { got = ev }

	s.Tap(context.Background(), 12.5, 88)
	if got.PlayerID != 1 || got.X != 12.5 || got.Y != 88 || got.Value != 1 {
		t.Fatalf("tap event = %+v", got)
	}
}

func TestBuyUpgrade(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s, _ := testSession(t, now)
	s.state.Coins = 300
	ctx := context.Background()

	if err := s.BuyUpgrade(ctx, catalog.UpgradeTapPower); err != nil {
		t.Fatalf("buy: %v", err)
	}
	if s.state.Coins != 200 {
		t.Fatalf("coins = %d; want 200 (exact cost deducted)", s.state.Coins)
	}
	if s.state.UpgradeLevel(catalog.UpgradeTapPower) != 1 {
		t.Fatalf("level = %d; want 1", s.state.UpgradeLevel(catalog.UpgradeTapPower))
	}
	if s.state.TapPower != 2 {
		t.Fatalf("tap power = %d; want 2", s.state.TapPower)
	}

	// second level costs 180
	if err := s.BuyUpgrade(ctx, catalog.UpgradeTapPower); err != nil {
		t.Fatalf("buy level 2: %v", err)
	}
	if s.state.Coins != 20 {
		t.Fatalf("coins = %d; want 20", s.state.Coins)
	}
	if s.state.TapPower != 3 {
		t.Fatalf("tap power = %d; want 3", s.state.TapPower)
	}
}

func TestBuyUpgradeErrors(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s, _ := testSession(t, now)
	ctx := context.Background()

	if err := s.BuyUpgrade(ctx, "warp-drive"); err != ErrUnknownUpgrade {
		t.Fatalf("unknown id: %v; want ErrUnknownUpgrade", err)
	}

	s.state.Coins = 99 // one short of the 100 base cost
	if err := s.BuyUpgrade(ctx, catalog.UpgradeTapPower); err != ErrInsufficientFunds {
		t.Fatalf("underfunded: %v; want ErrInsufficientFunds", err)
	}
	if s.state.Coins != 99 || len(s.state.Upgrades) != 0 {
		t.Fatalf("failed buy mutated state: coins=%d upgrades=%d", s.state.Coins, len(s.state.Upgrades))
	}

	s.state.Coins = 1 << 50
	s.state.SetUpgradeLevel(catalog.UpgradeLuckyTap, 10) // max level
	if err := s.BuyUpgrade(ctx, catalog.UpgradeLuckyTap); err != ErrUpgradeMaxed {
		t.Fatalf("maxed: %v; want ErrUpgradeMaxed", err)
	}
	if s.state.Coins != 1<<50 {
		t.Fatalf("maxed buy deducted coins")
	}
}

func TestBuyUpgradeClampsEnergy(t *testing.T) {
	// Shrinking is impossible in the catalog, but the clamp also covers the
	// capacity upgrade leaving energy above a freshly recomputed max.
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s, _ := testSession(t, now)
	s.state.Coins = 10000
	s.state.Energy = 5000 // inconsistent on purpose

	if err := s.BuyUpgrade(context.Background(), catalog.UpgradeEnergyCapacity); err != nil {
		t.Fatalf("buy: %v", err)
	}
	// level 1 capacity: 1000 + 500 = 1500
	if s.state.MaxEnergy != 1500 {
		t.Fatalf("max energy = %d; want 1500", s.state.MaxEnergy)
	}
	if s.state.Energy != 1500 {
		t.Fatalf("energy = %d; want clamped to 1500", s.state.Energy)
	}
}

func TestClaimDailyTaskIdempotent(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s, _ := testSession(t, now)
	ctx := context.Background()

	if !s.ClaimDailyTask(ctx, tasks.TaskDailyLogin, 100) {
		t.Fatalf("first claim refused")
	}
	if s.state.Coins != 100 {
		t.Fatalf("coins = %d; want 100", s.state.Coins)
	}
	if s.ClaimDailyTask(ctx, tasks.TaskDailyLogin, 100) {
		t.Fatalf("second claim accepted")
	}
	if s.state.Coins != 100 {
		t.Fatalf("coins = %d after replay; want 100", s.state.Coins)
	}
}

func TestRegenEnergy(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s, _ := testSession(t, now)
	s.state.Energy = 10
	s.state.EnergyRegenRate = 1.5

	s.RegenEnergy()
	// ceil(1.5) = 2 per tick
	if s.state.Energy != 12 {
		t.Fatalf("energy = %d; want 12", s.state.Energy)
	}
	if !s.dirty {
		t.Fatalf("regen did not mark the session dirty")
	}

	s.state.Energy = s.state.MaxEnergy
	s.dirty = false
	s.RegenEnergy()
	if s.state.Energy != s.state.MaxEnergy {
		t.Fatalf("regen exceeded max: %d", s.state.Energy)
	}
	if s.dirty {
		t.Fatalf("full-energy regen marked dirty")
	}
}

func TestFlushPersistsDirtyState(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s, a := testSession(t, now)
	ctx := context.Background()

	s.state.Energy = 10
	s.RegenEnergy()
	s.Flush(ctx)
	if s.dirty {
		t.Fatalf("flush left the session dirty")
	}

	got, err := a.LoadExisting(ctx, 1)
	if err != nil {
		t.Fatalf("load after flush: %v", err)
	}
	if got.Energy != 11 {
		t.Fatalf("persisted energy = %d; want 11", got.Energy)
	}
}

func TestAutoTapTick(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s, _ := testSession(t, now)
	ctx := context.Background()

	// unowned: no-op
	s.AutoTapTick(ctx)
	if s.state.Coins != 0 {
		t.Fatalf("auto-tap credited without the upgrade")
	}

	s.state.AutoTapRate = 6
	s.AutoTapTick(ctx)
	if s.state.Coins != 6 || s.state.TotalCoins != 6 {
		t.Fatalf("coins = %d/%d; want 6/6", s.state.Coins, s.state.TotalCoins)
	}
	if s.sessionEarnings != 6 {
		t.Fatalf("session earnings = %d; want 6", s.sessionEarnings)
	}
}

func TestCoinMagnetTick(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s, _ := testSession(t, now)
	ctx := context.Background()

	s.CoinMagnetTick(ctx)
	if s.state.Coins != 0 {
		t.Fatalf("coin magnet credited without the upgrade")
	}

	s.state.SetUpgradeLevel(catalog.UpgradeCoinMagnet, 3)
	s.CoinMagnetTick(ctx)
	if s.state.Coins != 30 {
		t.Fatalf("coins = %d; want 30", s.state.Coins)
	}
}

func TestCheckDailyLogin(t *testing.T) {
	day1 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s, _ := testSession(t, day1)
	ctx := context.Background()

	if !s.CheckDailyLogin(ctx) {
		t.Fatalf("first login not a transition")
	}
	if s.state.LoginStreak != 1 || s.state.LastLoginDate != "2025-06-01" {
		t.Fatalf("after first login: streak=%d date=%q", s.state.LoginStreak, s.state.LastLoginDate)
	}

	// same day: idempotent
	if s.CheckDailyLogin(ctx) {
		t.Fatalf("same-day login transitioned")
	}
	if s.state.LoginStreak != 1 {
		t.Fatalf("same-day login changed streak")
	}

	// next day: streak continues
	s.now = func() time.Time { return day1.AddDate(0, 0, 1) }
	if !s.CheckDailyLogin(ctx) {
		t.Fatalf("next-day login not a transition")
	}
	if s.state.LoginStreak != 2 {
		t.Fatalf("streak = %d; want 2", s.state.LoginStreak)
	}

	// a missed day resets to 1
	s.now = func() time.Time { return day1.AddDate(0, 0, 3) }
	if !s.CheckDailyLogin(ctx) {
		t.Fatalf("post-gap login not a transition")
	}
	if s.state.LoginStreak != 1 {
		t.Fatalf("streak = %d after gap; want 1", s.state.LoginStreak)
	}
}

func TestCheckDailyLoginClearsCompletedTasks(t *testing.T) {
	day1 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s, _ := testSession(t, day1)
	ctx := context.Background()

	s.CheckDailyLogin(ctx)
	s.ClaimDailyTask(ctx, tasks.TaskDailyLogin, 100)
	if !s.state.TaskCompleted(tasks.TaskDailyLogin) {
		t.Fatalf("claim not recorded")
	}

	s.now = func() time.Time { return day1.AddDate(0, 0, 1) }
	s.CheckDailyLogin(ctx)
	if s.state.TaskCompleted(tasks.TaskDailyLogin) {
		t.Fatalf("daily rollover kept yesterday's completions")
	}
}

func TestAddPurchase(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s, _ := testSession(t, now)

	s.AddPurchase(context.Background(), domain.PurchaseRecord{
		ID:        "p1",
		PackageID: "starter",
		Coins:     100000,
		PriceTON:  0.5,
		Timestamp: now.UnixMilli(),
	})

	if s.state.Coins != 100000 || s.state.TotalCoins != 100000 {
		t.Fatalf("coins = %d/%d; want 100000/100000", s.state.Coins, s.state.TotalCoins)
	}
	if s.state.Level != catalog.LevelFor(100000) {
		t.Fatalf("level = %d; want %d", s.state.Level, catalog.LevelFor(100000))
	}
	if len(s.state.Purchases) != 1 || s.state.TotalSpentTON != 0.5 {
		t.Fatalf("ledger: %d entries, %v TON", len(s.state.Purchases), s.state.TotalSpentTON)
	}
}

func TestSnapshotIsolation(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s, _ := testSession(t, now)
	s.state.SetUpgradeLevel(catalog.UpgradeTapPower, 1)

	snap := s.Snapshot()
	snap.Upgrades[0].Level = 99

	if s.state.Upgrades[0].Level != 1 {
		t.Fatalf("snapshot mutation leaked into live state")
	}
}
