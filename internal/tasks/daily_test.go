package tasks

import (
	"testing"

	"cointap/internal/domain"
)

func TestDailyTasksRewardScaling(t *testing.T) {
	// base = 100 × (1 + streak/3), integer division
	cases := []struct {
		streak   int
		wantBase int64
	}{
		{0, 100},
		{1, 100},
		{2, 100},
		{3, 200},
		{6, 300},
		{9, 400},
	}
	for _, tc := range cases {
		list := DailyTasks(tc.streak)
		login := Find(list, TaskDailyLogin)
		if login == nil {
			t.Fatalf("streak %d: daily-login missing", tc.streak)
		}
		if login.Reward != tc.wantBase {
			t.Fatalf("streak %d: daily-login reward = %d; want %d", tc.streak, login.Reward, tc.wantBase)
		}
		invite := Find(list, TaskInviteFriend)
		if invite.Reward != tc.wantBase*5 {
			t.Fatalf("streak %d: invite-friend reward = %d; want %d", tc.streak, invite.Reward, tc.wantBase*5)
		}
	}
}

func TestDailyTasksDeterministic(t *testing.T) {
	a := DailyTasks(5)
	b := DailyTasks(5)
	if len(a) != len(b) {
		t.Fatalf("same streak produced different list lengths")
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("task %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestFindUnknownTask(t *testing.T) {
	if Find(DailyTasks(0), "no-such-task") != nil {
		t.Fatalf("expected nil for unknown task id")
	}
}

func TestCanClaim(t *testing.T) {
	base := func() *domain.PlayerState {
		return &domain.PlayerState{
			Upgrades:            []domain.OwnedUpgrade{},
			DailyTasksCompleted: []string{},
			Referrals:           []domain.ReferralEntry{},
		}
	}

	cases := []struct {
		name  string
		id    string
		state func() *domain.PlayerState
		prog  Progress
		want  bool
	}{
		{"login always claimable", TaskDailyLogin, base, Progress{}, true},
		{"tap-100 below threshold", TaskTap100, base, Progress{TapCount: 99}, false},
		{"tap-100 at threshold", TaskTap100, base, Progress{TapCount: 100}, true},
		{"earn-1000 below threshold", TaskEarn1000, base, Progress{SessionEarnings: 999}, false},
		{"earn-1000 at threshold", TaskEarn1000, base, Progress{SessionEarnings: 1000}, true},
		{"upgrade-once without upgrades", TaskUpgradeOnce, base, Progress{}, false},
		{"upgrade-once with an upgrade", TaskUpgradeOnce, func() *domain.PlayerState {
			s := base()
			s.Upgrades = append(s.Upgrades, domain.OwnedUpgrade{ID: "tap-power", Level: 1})
			return s
		}, Progress{}, true},
		{"invite-friend without referrals", TaskInviteFriend, base, Progress{}, false},
		{"invite-friend with a referral", TaskInviteFriend, func() *domain.PlayerState {
			s := base()
			s.Referrals = append(s.Referrals, domain.ReferralEntry{ReferredID: 7})
			return s
		}, Progress{}, true},
		{"unknown id", "no-such-task", base, Progress{}, false},
	}

	for _, tc := range cases {
		if got := CanClaim(tc.id, tc.state(), tc.prog); got != tc.want {
			t.Fatalf("%s: CanClaim = %v; want %v", tc.name, got, tc.want)
		}
	}
}

func TestCanClaimCompletedTask(t *testing.T) {
	st := &domain.PlayerState{
		DailyTasksCompleted: []string{TaskDailyLogin},
	}
	if CanClaim(TaskDailyLogin, st, Progress{}) {
		t.Fatalf("completed task should not be claimable again")
	}
}
