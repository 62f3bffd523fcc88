package domain

import (
	"math"
	"time"
)

// BattingLine holds the counting stats needed for rate statistics.
// Rates are always derived from summed counts, never averaged.
type BattingLine struct {
	AB  int `json:"ab"`
	H   int `json:"h"`
	BB  int `json:"bb"`
	HBP int `json:"hbp"`
	SF  int `json:"sf"`
	TB  int `json:"tb"`
	HR  int `json:"hr"`
}

// Add accumulates another line into this one.
func (l *BattingLine) Add(other BattingLine) {
	l.AB += other.AB
	l.H += other.H
	l.BB += other.BB
	l.HBP += other.HBP
	l.SF += other.SF
	l.TB += other.TB
	l.HR += other.HR
}

// PA approximates plate appearances as AB+BB+HBP+SF.
// Sacrifice bunts and catcher interference are not tracked in the game logs.
func (l BattingLine) PA() int {
	return l.AB + l.BB + l.HBP + l.SF
}

// AVG returns batting average, NaN when there are no at-bats.
func (l BattingLine) AVG() float64 {
	return ratio(l.H, l.AB)
}

// OBP returns on-base percentage, NaN when the denominator is zero.
func (l BattingLine) OBP() float64 {
	return ratio(l.H+l.BB+l.HBP, l.AB+l.BB+l.HBP+l.SF)
}

// SLG returns slugging percentage, NaN when there are no at-bats.
func (l BattingLine) SLG() float64 {
	return ratio(l.TB, l.AB)
}

// OPS returns on-base plus slugging. Missing components make OPS missing.
func (l BattingLine) OPS() float64 {
	return l.OBP() + l.SLG()
}

func ratio(n, d int) float64 {
	if d == 0 {
		return math.NaN()
	}
	return float64(n) / float64(d)
}

// PlayerGame is one player's batting line for one game, taken from the
// per-player game logs and enriched with bang counts by the joiner.
type PlayerGame struct {
	RawDate    string    `json:"raw_date"`
	Date       time.Time `json:"date"`
	GameNumber int       `json:"game_number,omitempty"`
	Player     string    `json:"player"`
	Opponent   string    `json:"opponent"`
	HomeAway   HomeAway  `json:"home_away"`
	BattingLine

	BangCount int  `json:"bang_count"`
	HadBang   bool `json:"had_bang"`
}

// HasDate reports whether the game date was successfully normalized.
func (g PlayerGame) HasDate() bool {
	return !g.Date.IsZero()
}

// SeasonBatting is a player's full-season batting line.
type SeasonBatting struct {
	Player  string `json:"player"`
	G       int    `json:"g"`
	PA      int    `json:"pa"`
	Doubles int    `json:"doubles"`
	Triples int    `json:"triples"`
	SO      int    `json:"so"`
	BattingLine
}

// TotalBases derives total bases from hit types when the source had no TB column.
func TotalBases(hits, doubles, triples, homeRuns int) int {
	return hits + doubles + 2*triples + 3*homeRuns
}
