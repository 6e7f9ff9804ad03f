// Package domain contains entity without logic, just meta-data
package domain

import (
	"strings"
	"unicode/utf8"
)

const (
	MaxUsernameLen  = 36
	MaxLobbyNameLen = 48
)

// User is the per-connection identity. There is no authentication, the
// display name is whatever the connection last asked for.
type User struct {
	ID       ConnID `json:"connectionId"`
	Username string `json:"displayName"`
}

// NormalizeName trims surrounding whitespace and truncates to max runes.
// An empty result means "no name supplied".
func NormalizeName(raw string, max int) string {
	name := strings.TrimSpace(raw)
	if utf8.RuneCountInString(name) <= max {
		return name
	}
	runes := []rune(name)
	return strings.TrimSpace(string(runes[:max]))
}

// ResolveName picks the first non-empty candidate after normalization.
// Callers pass the fallback chain explicit > remembered > default.
func ResolveName(max int, candidates ...string) string {
	for _, c := range candidates {
		if n := NormalizeName(c, max); n != "" {
			return n
		}
	}
	return ""
}

func (u *User) SetUsername(username string) bool {
	name := NormalizeName(username, MaxUsernameLen)
	if name == "" {
		return false
	}
	u.Username = name
	return true
}
