package models

import "fmt"

// Sport identifies one of the supported leagues
type Sport string

const (
	SportNFL Sport = "nfl"
	SportNBA Sport = "nba"
	SportNHL Sport = "nhl"
	SportCBB Sport = "cbb"
)

// AllSports lists every supported sport in canonical order
var AllSports = []Sport{SportNFL, SportNBA, SportNHL, SportCBB}

// ParseSport converts a string into a Sport
func ParseSport(s string) (Sport, error) {
	switch Sport(s) {
	case SportNFL, SportNBA, SportNHL, SportCBB:
		return Sport(s), nil
	default:
		return "", fmt.Errorf("%w: unknown sport %q", ErrInvalidSport, s)
	}
}

// String returns the lowercase league code
func (s Sport) String() string {
	return string(s)
}
