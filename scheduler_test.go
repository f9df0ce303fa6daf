/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"testing"
	"time"
)

func TestFireStepsOnlyStartedLobbies(t *testing.T) {
	r, players, factory := newRegistryFixture(t)
	s := newScheduler(testConfig(), r)

	idle, _ := r.Create(LobbyConfig{Name: "Idle", Capacity: 2}, registeredPlayer(players, "Ann"))
	live, _ := r.Create(LobbyConfig{Name: "Live", Capacity: 2}, registeredPlayer(players, "Ben"))

	if res := live.StartGame(); res != Ok {
		t.Fatalf("start: got %v", res)
	}

	for i := 1; i <= 5; i++ {
		if n := s.fire(); n != 1 {
			t.Fatalf("fire %d: expected one lobby stepped, got %d", i, n)
		}
		if got := factory.created()[0].stepCount(); got != i {
			t.Fatalf("fire %d: expected %d steps, got %d", i, i, got)
		}
	}

	if idle.Started() || len(factory.created()) != 1 {
		t.Fatalf("unstarted lobby must never receive steps")
	}
}

func TestFireBroadcastsStepOutput(t *testing.T) {
	r, players, _ := newRegistryFixture(t)
	s := newScheduler(testConfig(), r)

	ann := registeredPlayer(players, "Ann")
	watcher := registeredPlayer(players, "Ben")
	l, _ := r.Create(LobbyConfig{Name: "Live", Capacity: 2}, ann)
	l.AddPlayer(watcher, true)
	l.StartGame()

	s.fire()

	for _, p := range []*Player{ann, watcher} {
		conn := p.conn.(*fakeConn)
		if conn.count("game-update") != 1 {
			t.Fatalf("%s: expected one game-update, got %d", p.Name(), conn.count("game-update"))
		}
		if out, _ := conn.last("game-update"); out != 1 {
			t.Fatalf("%s: unexpected step output %v", p.Name(), out)
		}
	}
}

func TestFireSkipsDeletedLobbies(t *testing.T) {
	r, players, factory := newRegistryFixture(t)
	s := newScheduler(testConfig(), r)

	l, _ := r.Create(LobbyConfig{Name: "Live", Capacity: 2}, registeredPlayer(players, "Ann"))
	l.StartGame()
	r.Delete(l.ID())

	if n := s.fire(); n != 0 {
		t.Fatalf("expected no steps after delete, got %d", n)
	}
	if factory.created()[0].stepCount() != 0 {
		t.Fatalf("deleted lobby was stepped")
	}
}

func TestRunStepsUntilCancelled(t *testing.T) {
	cfg := testConfig()
	cfg.stepsPerSecond = 100

	players := newPlayerRegistry()
	factory := &fakeFactory{}
	r := newLobbyRegistry(cfg, players, factory.New)
	s := newScheduler(cfg, r)

	l, _ := r.Create(LobbyConfig{Name: "Live", Capacity: 2}, registeredPlayer(players, "Ann"))
	l.StartGame()
	game := factory.created()[0]

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for game.stepCount() < 3 {
		if time.Now().After(deadline) {
			t.Fatalf("scheduler did not step in time, got %d steps", game.stepCount())
		}
		time.Sleep(5 * time.Millisecond)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("scheduler did not stop after cancellation")
	}

	after := game.stepCount()
	time.Sleep(50 * time.Millisecond)
	if game.stepCount() != after {
		t.Fatalf("scheduler kept stepping after it stopped")
	}
}
