/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"net/http"
	"net/url"

	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
)

const qrSize = 320

// lobbyInviteURL is the address a client opens to join lobby id.
func lobbyInviteURL(cfg *Config, r *http.Request, id string) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	u := url.URL{
		Scheme:   scheme,
		Host:     r.Host,
		Path:     cfg.prefix + "/",
		RawQuery: url.Values{"lobby": {id}}.Encode(),
	}

	return u.String()
}

// serveLobbyQR renders a PNG QR code pointing at a live lobby's invite URL.
func serveLobbyQR(cfg *Config, srv *Server) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		id := ps.ByName("id")

		if _, ok := srv.lobbies.FindByID(id); !ok {
			http.Error(w, "lobby not found", http.StatusNotFound)
			return
		}

		png, err := qrcode.Encode(lobbyInviteURL(cfg, r, id), qrcode.Medium, qrSize)
		if err != nil {
			http.Error(w, "qr generation failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "no-store")
		securityHeaders(cfg, w)

		_, _ = w.Write(png)
	}
}
