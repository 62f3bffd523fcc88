package domain

import (
	"fmt"
	"time"
)

// BangEvent represents a single detected trash-can bang during a plate appearance.
// One row of the bang log maps to one BangEvent.
type BangEvent struct {
	RawDate        string    `json:"raw_date"`
	Date           time.Time `json:"date"`
	GameNumber     int       `json:"game_number,omitempty"`
	Opponent       string    `json:"opponent"`
	Batter         string    `json:"batter"`
	Inning         int       `json:"inning"`
	Balls          int       `json:"balls"`
	Strikes        int       `json:"strikes"`
	PitchCategory  string    `json:"pitch_category"`
	LineupPosition int       `json:"lineup_position"`
	AtBatID        string    `json:"at_bat_id"`
	Pitcher        string    `json:"pitcher"`
	HomeScore      int       `json:"home_score"`
	AwayScore      int       `json:"away_score"`
}

// Count returns the ball-strike count at the time of the bang, e.g. "1-2".
func (b BangEvent) Count() string {
	return fmt.Sprintf("%d-%d", b.Balls, b.Strikes)
}

// HasDate reports whether the event date was successfully normalized.
func (b BangEvent) HasDate() bool {
	return !b.Date.IsZero()
}
