package engine

import (
	"context"
	"time"
)

// Scheduler is the periodic driver of time-based mutations: energy regen and
// auto-tap every tick (1 Hz in production), the coin-magnet bonus every 60
// ticks. It is the only autonomous mutation source; each per-session call
// still executes atomically under the session lock.
type Scheduler struct {
	manager  *Manager
	interval time.Duration

	magnetEvery int
	stop        chan struct{}
	done        chan struct{}
}

func NewScheduler(m *Manager, interval time.Duration) *Scheduler {
	return &Scheduler{
		manager:     m,
		interval:    interval,
		magnetEvery: 60,
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
	}
}

// Start launches the tick loop in its own goroutine.
func (s *Scheduler) Start() {
	go s.run()
}

func (s *Scheduler) run() {
	defer close(s.done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	tickCount := 0
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			tickCount++
			s.Tick(tickCount%s.magnetEvery == 0)
		}
	}
}

// Tick applies one scheduler tick to every live session. Exposed so tests
// can advance virtual time without real timers.
func (s *Scheduler) Tick(coinMagnet bool) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.manager.ForEach(func(sess *Session) {
		sess.RegenEnergy()
		sess.AutoTapTick(ctx)
		if coinMagnet {
			sess.CoinMagnetTick(ctx)
		}
	})
}

// Stop cancels the periodic callbacks as a unit and waits for the loop to
// exit. No in-flight cancellation is needed; ticks are instantaneous.
func (s *Scheduler) Stop() {
	close(s.stop)
	<-s.done
}
