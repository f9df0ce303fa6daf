/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"time"
)

// Scheduler advances every started lobby by one game step per tick.
//
// Ticks come from a time.Ticker, which drops ticks its receiver is not ready
// for: a pass that overruns the interval causes the missed fires to be
// skipped, never queued. Lobbies within a pass are stepped one after
// another, each under its own lock.
type Scheduler struct {
	cfg      *Config
	lobbies  *LobbyRegistry
	interval time.Duration
}

func newScheduler(cfg *Config, lobbies *LobbyRegistry) *Scheduler {
	return &Scheduler{
		cfg:      cfg,
		lobbies:  lobbies,
		interval: cfg.tickInterval(),
	}
}

// Run fires until ctx is done.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	logf(s.cfg, "TICK: Stepping started lobbies every %s", s.interval)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			start := time.Now()

			stepped := s.fire()

			if elapsed := time.Since(start); elapsed > s.interval {
				logf(s.cfg, "TICK: Pass over %d lobbies took %s, exceeding %s; late ticks are skipped",
					stepped, elapsed.Round(time.Microsecond), s.interval)
			}
		}
	}
}

// fire runs one pass over a snapshot of the registry and returns the number
// of lobbies stepped.
func (s *Scheduler) fire() int {
	stepped := 0

	for _, l := range s.lobbies.List() {
		out, res := l.DoGameStep()
		if res != Ok {
			continue
		}
		stepped++

		l.Broadcast("game-update", out)
	}

	return stepped
}
