package model

import "strings"

// PlayerID is the display name a connection claims
type PlayerID string

// MatchID names a match in the lobby
type MatchID string

// ValidPlayerID reports whether id is non-blank and contains no whitespace
func ValidPlayerID(id PlayerID) bool {
	return validName(string(id))
}

// ValidMatchID applies the same rules as ValidPlayerID
func ValidMatchID(id MatchID) bool {
	return validName(string(id))
}

func validName(s string) bool {
	return s != "" && !strings.ContainsAny(s, " \t\r\n")
}
