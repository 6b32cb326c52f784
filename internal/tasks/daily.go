// Package tasks derives the daily task list from the login streak and checks
// claim eligibility against session counters.
package tasks

import "cointap/internal/domain"

// Task ids. The set is fixed; only rewards scale with the streak.
const (
	TaskDailyLogin   = "daily-login"
	TaskTap100       = "tap-100"
	TaskEarn1000     = "earn-1000"
	TaskUpgradeOnce  = "upgrade-once"
	TaskInviteFriend = "invite-friend"
)

// Task is one daily task with its reward for the current streak.
type Task struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Reward      int64  `json:"reward"`
	Icon        string `json:"icon"`
}

// DailyTasks produces the day's task list. Deterministic: same streak, same
// list. Rewards scale by 100 × (1 + streak/3) with a per-task multiplier.
func DailyTasks(streak int) []Task {
	base := int64(100 * (1 + streak/3))
	return []Task{
		{ID: TaskDailyLogin, Title: "Daily Login", Description: "Log in today", Reward: base, Icon: "📅"},
		{ID: TaskTap100, Title: "Tap 100 Times", Description: "Tap the coin 100 times", Reward: base * 2, Icon: "👆"},
		{ID: TaskEarn1000, Title: "Earn 1,000 Coins", Description: "Earn 1,000 coins today", Reward: base * 3, Icon: "💰"},
		{ID: TaskUpgradeOnce, Title: "Buy an Upgrade", Description: "Purchase any upgrade", Reward: base * 2, Icon: "⬆️"},
		{ID: TaskInviteFriend, Title: "Invite a Friend", Description: "Refer a friend with your link", Reward: base * 5, Icon: "🤝"},
	}
}

// Find returns the task with the given id from a generated list, nil if the
// id is not part of the day's set.
func Find(list []Task, id string) *Task {
	for i := range list {
		if list[i].ID == id {
			return &list[i]
		}
	}
	return nil
}

// Progress holds the session-scoped counters task eligibility is checked
// against. They live in memory only and reset on process restart, not on the
// daily rollover.
type Progress struct {
	TapCount        int64
	SessionEarnings int64
}

// CanClaim reports whether a task may be claimed: not completed yet and its
// type-specific condition holds.
func CanClaim(id string, state *domain.PlayerState, p Progress) bool {
	if state.TaskCompleted(id) {
		return false
	}
	switch id {
	case TaskDailyLogin:
		return true
	case TaskTap100:
		return p.TapCount >= 100
	case TaskEarn1000:
		return p.SessionEarnings >= 1000
	case TaskUpgradeOnce:
		return len(state.Upgrades) > 0
	case TaskInviteFriend:
		return len(state.Referrals) > 0
	default:
		return false
	}
}
