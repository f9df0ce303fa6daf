/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"

	"github.com/Seednode/lobbybox/games"
)

// Server owns the process-wide registries and the components built on them.
type Server struct {
	cfg       *Config
	players   *PlayerRegistry
	lobbies   *LobbyRegistry
	chat      *Room
	router    *Router
	scheduler *Scheduler
}

func newServer(cfg *Config, newGame games.Factory) *Server {
	players := newPlayerRegistry()
	lobbies := newLobbyRegistry(cfg, players, newGame)
	chat := newRoom(chatRoom)

	return &Server{
		cfg:       cfg,
		players:   players,
		lobbies:   lobbies,
		chat:      chat,
		router:    newRouter(cfg, players, chat),
		scheduler: newScheduler(cfg, lobbies),
	}
}

// Start launches the tick scheduler and, if enabled, the idle lobby reaper.
// Both stop when ctx is done.
func (s *Server) Start(ctx context.Context) {
	go s.scheduler.Run(ctx)

	if s.cfg.lobbyTimeout > 0 {
		go s.lobbies.reaperLoop(ctx, s.cfg.lobbyTimeout)
	}
}
