/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import "testing"

type staticNames map[string]bool

func (s staticNames) nameTaken(name string) bool { return s[name] }

func TestIsPlayerNameValid(t *testing.T) {
	existing := staticNames{"Alice": true}

	tests := []struct {
		name string
		want bool
	}{
		{"Bob", true},
		{"Bo", false},
		{"", false},
		{"server", false},
		{"SERVER", false},
		{"You", false},
		{"yours", true},
		{"Alice", false},
		{"alice", true},
		{"Zoë", true},
	}

	for _, tt := range tests {
		if got := isPlayerNameValid(tt.name, existing); got != tt.want {
			t.Errorf("isPlayerNameValid(%q) = %t, want %t", tt.name, got, tt.want)
		}
	}
}

func TestIsLobbyNameValid(t *testing.T) {
	existing := staticNames{"Arena": true}

	tests := []struct {
		name any
		want bool
	}{
		{"Dungeon", true},
		{"Ab", false},
		{"Game night", false},
		{"GAMEs", false},
		{"gam", true},
		{"Arena", false},
		{"arena", true},
		{42.0, false},
		{nil, false},
	}

	for _, tt := range tests {
		if got := isLobbyNameValid(tt.name, existing); got != tt.want {
			t.Errorf("isLobbyNameValid(%v) = %t, want %t", tt.name, got, tt.want)
		}
	}
}

func TestFirstRunes(t *testing.T) {
	if got := firstRunes("Gämes", 4); got != "Gäme" {
		t.Fatalf("expected %q, got %q", "Gäme", got)
	}
	if got := firstRunes("ab", 4); got != "ab" {
		t.Fatalf("expected %q, got %q", "ab", got)
	}
}
