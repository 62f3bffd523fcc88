package domain

import (
	"strings"
	"time"
)

// HomeAway marks which side of the field the team played on.
type HomeAway string

const (
	Home    HomeAway = "home"
	Away    HomeAway = "away"
	Unknown HomeAway = ""
)

// String implements fmt.Stringer.
func (h HomeAway) String() string {
	if h == Unknown {
		return "unknown"
	}
	return string(h)
}

// Title returns a display label such as "Home".
func (h HomeAway) Title() string {
	s := h.String()
	return strings.ToUpper(s[:1]) + s[1:]
}

// GameResult is the final score of one game from the team's perspective.
type GameResult struct {
	RawDate     string    `json:"raw_date"`
	Date        time.Time `json:"date"`
	GameNumber  int       `json:"game_number,omitempty"`
	Opponent    string    `json:"opponent"`
	HomeAway    HomeAway  `json:"home_away"`
	RunsScored  int       `json:"runs_scored"`
	RunsAllowed int       `json:"runs_allowed"`
}

// Outcome returns "W", "L" or "T".
func (g GameResult) Outcome() string {
	switch {
	case g.RunsScored > g.RunsAllowed:
		return "W"
	case g.RunsScored < g.RunsAllowed:
		return "L"
	default:
		return "T"
	}
}

// HasDate reports whether the game date was successfully normalized.
func (g GameResult) HasDate() bool {
	return !g.Date.IsZero()
}
