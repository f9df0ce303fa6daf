/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"strings"
	"unicode/utf8"
)

const (
	minNameLength       = 3
	reservedLobbyPrefix = "game"
)

var reservedPlayerNames = []string{"server", "you"}

// nameSet answers whether a name is held by a live entity.
type nameSet interface {
	nameTaken(name string) bool
}

// isPlayerNameValid reports whether name may be claimed by a player right now.
// Uniqueness is an exact, case-sensitive match; the reserved tokens are not.
func isPlayerNameValid(name string, existing nameSet) bool {
	if utf8.RuneCountInString(name) < minNameLength {
		return false
	}

	for _, reserved := range reservedPlayerNames {
		if strings.EqualFold(name, reserved) {
			return false
		}
	}

	return existing == nil || !existing.nameTaken(name)
}

// isLobbyNameValid reports whether name may be used for a new lobby.
// The raw value comes straight from a client payload, so anything other
// than a string is rejected.
func isLobbyNameValid(name any, existing nameSet) bool {
	s, ok := name.(string)
	if !ok || utf8.RuneCountInString(s) < minNameLength {
		return false
	}

	if strings.EqualFold(firstRunes(s, utf8.RuneCountInString(reservedLobbyPrefix)), reservedLobbyPrefix) {
		return false
	}

	return existing == nil || !existing.nameTaken(s)
}

func firstRunes(s string, n int) string {
	for i := range s {
		if n == 0 {
			return s[:i]
		}
		n--
	}
	return s
}
