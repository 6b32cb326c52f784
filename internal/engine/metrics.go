package engine

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	TapsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cointap_taps_total",
			Help: "Total manual taps applied",
		},
	)
	LuckyTapsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cointap_lucky_taps_total",
			Help: "Total taps that hit the lucky multiplier",
		},
	)
	CoinsEarnedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cointap_coins_earned_total",
			Help: "Total coins credited, by source",
		},
		[]string{"source"},
	)
	UpgradesPurchasedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cointap_upgrades_purchased_total",
			Help: "Total upgrade purchases, by upgrade id",
		},
		[]string{"upgrade"},
	)
	TasksClaimedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cointap_tasks_claimed_total",
			Help: "Total daily task claims, by task id",
		},
		[]string{"task"},
	)
	SessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "cointap_sessions_active",
			Help: "Player sessions currently held in memory",
		},
	)
)

func init() {
	prometheus.MustRegister(TapsTotal)
	prometheus.MustRegister(LuckyTapsTotal)
	prometheus.MustRegister(CoinsEarnedTotal)
	prometheus.MustRegister(UpgradesPurchasedTotal)
	prometheus.MustRegister(TasksClaimedTotal)
	prometheus.MustRegister(SessionsActive)
}
