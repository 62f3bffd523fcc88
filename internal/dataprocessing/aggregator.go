package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"bangreport/pkg/contracts/domain"
)

// MonthlyRow summarizes one calendar month
type MonthlyRow struct {
	Month               string      `json:"month"`
	Games               int         `json:"games"`
	Bangs               int         `json:"bangs"`
	BangsPerGame        domain.Rate `json:"bangs_per_game"`
	PlayerGamesWithBang int         `json:"player_games_with_bang"`
}

// GameRow is one game of the season. Doubleheader dates carry the game
// number, as in "2017-07-01 (2)". Runs are nil when the game had no
// matching result.
type GameRow struct {
	Date        string `json:"date"`
	Opponent    string `json:"opponent"`
	HomeAway    string `json:"home_away"`
	Bangs       int    `json:"bangs"`
	RunsScored  *int   `json:"runs_scored"`
	RunsAllowed *int   `json:"runs_allowed"`
	Result      string `json:"result"`
}

// PlayerRow is one player's season as seen through the game logs
type PlayerRow struct {
	Player        string `json:"player"`
	Games         int    `json:"games"`
	GamesWithBang int    `json:"games_with_bang"`
	Bangs         int    `json:"bangs"`
	PA            int    `json:"pa"`
	domain.BattingLine
	AVG            domain.Rate `json:"avg"`
	OBP            domain.Rate `json:"obp"`
	SLG            domain.Rate `json:"slg"`
	OPS            domain.Rate `json:"ops"`
	OPSWithBang    domain.Rate `json:"ops_with_bang"`
	OPSWithoutBang domain.Rate `json:"ops_without_bang"`
	SeasonOPS      domain.Rate `json:"season_ops"`
	BangsPerPA     domain.Rate `json:"bangs_per_pa"`
}

// BreakdownRow counts bangs for one value of a dimension
type BreakdownRow struct {
	Key   string      `json:"key"`
	Bangs int         `json:"bangs"`
	Share domain.Rate `json:"share"`
}

// SplitRow is a batting line for one side of a split. Games counts team
// games for the home/away split and player-games for the bang split.
type SplitRow struct {
	Split string `json:"split"`
	Games int    `json:"games"`
	domain.BattingLine
	AVG domain.Rate `json:"avg"`
	OBP domain.Rate `json:"obp"`
	SLG domain.Rate `json:"slg"`
	OPS domain.Rate `json:"ops"`
}

// Summaries holds every descriptive table of the report
type Summaries struct {
	TotalBangs      int            `json:"total_bangs"`
	Monthly         []MonthlyRow   `json:"monthly"`
	Games           []GameRow      `json:"games"`
	Players         []PlayerRow    `json:"players"`
	Innings         []BreakdownRow `json:"innings"`
	Counts          []BreakdownRow `json:"counts"`
	Pitchers        []BreakdownRow `json:"pitchers"`
	PitchCategories []BreakdownRow `json:"pitch_categories"`
	LineupSlots     []BreakdownRow `json:"lineup_slots"`
	HomeAway        []SplitRow     `json:"home_away"`
	BangSplit       []SplitRow     `json:"bang_split"`
}

const unknownKey = "unknown"

// Aggregator builds the summary tables
type Aggregator struct {
	logger *slog.Logger
}

// NewAggregator creates an aggregator
func NewAggregator(logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{logger: logger.With("component", "aggregator")}
}

// Aggregate computes every summary table. Rates come from summed counting
// stats; missing values are skipped.
func (a *Aggregator) Aggregate(ctx context.Context, jd *JoinedData) *Summaries {
	s := &Summaries{
		TotalBangs: len(jd.Bangs),
		Monthly:    monthly(jd),
		Games:      games(jd),
		Players:    players(jd),
		HomeAway:   homeAwaySplit(jd),
		BangSplit:  bangSplit(jd),
	}

	s.Innings = breakdown(jd.Bangs, func(ev domain.BangEvent) (string, int) {
		return positiveKey(ev.Inning), ev.Inning
	}, byOrder)
	s.Counts = breakdown(jd.Bangs, func(ev domain.BangEvent) (string, int) {
		return ev.Count(), ev.Balls*10 + ev.Strikes
	}, byOrder)
	s.LineupSlots = breakdown(jd.Bangs, func(ev domain.BangEvent) (string, int) {
		return positiveKey(ev.LineupPosition), ev.LineupPosition
	}, byOrder)
	s.Pitchers = breakdown(jd.Bangs, func(ev domain.BangEvent) (string, int) {
		return textKey(ev.Pitcher), 0
	}, byBangs)
	s.PitchCategories = breakdown(jd.Bangs, func(ev domain.BangEvent) (string, int) {
		return strings.ToLower(textKey(ev.PitchCategory)), 0
	}, byBangs)

	a.logger.InfoContext(ctx, "Aggregated summaries",
		slog.Int("months", len(s.Monthly)),
		slog.Int("games", len(s.Games)),
		slog.Int("players", len(s.Players)),
		slog.Int("total_bangs", s.TotalBangs))
	return s
}

func monthly(jd *JoinedData) []MonthlyRow {
	byMonth := map[string]*MonthlyRow{}
	for _, g := range jd.Games {
		m := g.Date.Format("2006-01")
		row, ok := byMonth[m]
		if !ok {
			row = &MonthlyRow{Month: m}
			byMonth[m] = row
		}
		row.Games++
		row.Bangs += g.Bangs
		row.PlayerGamesWithBang += g.PlayerGamesWithBang
	}

	rows := make([]MonthlyRow, 0, len(byMonth))
	for _, row := range byMonth {
		row.BangsPerGame = domain.RateOf(row.Bangs, row.Games)
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Month < rows[j].Month })
	return rows
}

func games(jd *JoinedData) []GameRow {
	rows := make([]GameRow, 0, len(jd.Games))
	for _, g := range jd.Games {
		date := DateKey(g.Date)
		if g.GameNumber > 0 {
			date = fmt.Sprintf("%s (%d)", date, g.GameNumber)
		}
		row := GameRow{
			Date:     date,
			Opponent: g.Opponent,
			HomeAway: g.HomeAway.String(),
			Bangs:    g.Bangs,
		}
		if g.Result != nil {
			rs, ra := g.Result.RunsScored, g.Result.RunsAllowed
			row.RunsScored = &rs
			row.RunsAllowed = &ra
			row.Result = g.Result.Outcome()
		}
		rows = append(rows, row)
	}
	return rows
}

func players(jd *JoinedData) []PlayerRow {
	type acc struct {
		row      PlayerRow
		with, wo domain.BattingLine
	}
	byPlayer := map[string]*acc{}
	var order []string

	for _, pg := range jd.PlayerGames {
		key := NormalizeName(pg.Player)
		a, ok := byPlayer[key]
		if !ok {
			a = &acc{row: PlayerRow{Player: pg.Player}}
			byPlayer[key] = a
			order = append(order, key)
		}
		a.row.Games++
		a.row.Bangs += pg.BangCount
		a.row.BattingLine.Add(pg.BattingLine)
		if pg.HadBang {
			a.row.GamesWithBang++
			a.with.Add(pg.BattingLine)
		} else {
			a.wo.Add(pg.BattingLine)
		}
	}

	rows := make([]PlayerRow, 0, len(order))
	for _, key := range order {
		a := byPlayer[key]
		r := a.row
		r.PA = r.BattingLine.PA()
		r.AVG = domain.Rate(r.BattingLine.AVG())
		r.OBP = domain.Rate(r.BattingLine.OBP())
		r.SLG = domain.Rate(r.BattingLine.SLG())
		r.OPS = domain.Rate(r.BattingLine.OPS())
		r.OPSWithBang = domain.Rate(a.with.OPS())
		r.OPSWithoutBang = domain.Rate(a.wo.OPS())
		r.BangsPerPA = domain.RateOf(r.Bangs, r.PA)
		r.SeasonOPS = domain.MissingRate()
		if sb, ok := jd.SeasonLine(r.Player); ok {
			r.SeasonOPS = domain.Rate(sb.OPS())
		}
		rows = append(rows, r)
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].Player < rows[j].Player })
	return rows
}

func splitRow(label string, games int, line domain.BattingLine) SplitRow {
	return SplitRow{
		Split:       label,
		Games:       games,
		BattingLine: line,
		AVG:         domain.Rate(line.AVG()),
		OBP:         domain.Rate(line.OBP()),
		SLG:         domain.Rate(line.SLG()),
		OPS:         domain.Rate(line.OPS()),
	}
}

// homeAwaySplit sums player-game lines by venue. Player-games with an
// unknown venue take the venue of their team game when known.
func homeAwaySplit(jd *JoinedData) []SplitRow {
	venueByDate := map[string]domain.HomeAway{}
	for _, g := range jd.Games {
		venueByDate[DateKey(g.Date)] = g.HomeAway
	}

	lines := map[domain.HomeAway]*domain.BattingLine{}
	dates := map[domain.HomeAway]map[string]bool{}
	for _, pg := range jd.PlayerGames {
		venue := pg.HomeAway
		if venue == domain.Unknown && pg.HasDate() {
			venue = venueByDate[DateKey(pg.Date)]
		}
		if venue == domain.Unknown {
			continue
		}
		if lines[venue] == nil {
			lines[venue] = &domain.BattingLine{}
			dates[venue] = map[string]bool{}
		}
		lines[venue].Add(pg.BattingLine)
		if pg.HasDate() {
			dates[venue][DateKey(pg.Date)] = true
		}
	}

	var rows []SplitRow
	for _, venue := range []domain.HomeAway{domain.Home, domain.Away} {
		if line, ok := lines[venue]; ok {
			rows = append(rows, splitRow(venue.Title(), len(dates[venue]), *line))
		}
	}
	return rows
}

func bangSplit(jd *JoinedData) []SplitRow {
	var with, without domain.BattingLine
	var nWith, nWithout int
	for _, pg := range jd.PlayerGames {
		if pg.HadBang {
			with.Add(pg.BattingLine)
			nWith++
		} else {
			without.Add(pg.BattingLine)
			nWithout++
		}
	}

	var rows []SplitRow
	if nWith > 0 {
		rows = append(rows, splitRow("With bang", nWith, with))
	}
	if nWithout > 0 {
		rows = append(rows, splitRow("Without bang", nWithout, without))
	}
	return rows
}

type breakdownOrder int

const (
	byOrder breakdownOrder = iota // numeric order, unknown last
	byBangs                       // most bangs first, then key
)

func breakdown(events []domain.BangEvent, keyFn func(domain.BangEvent) (string, int), order breakdownOrder) []BreakdownRow {
	counts := map[string]int{}
	sortKeys := map[string]int{}
	for _, ev := range events {
		k, sk := keyFn(ev)
		counts[k]++
		sortKeys[k] = sk
	}

	rows := make([]BreakdownRow, 0, len(counts))
	for k, n := range counts {
		rows = append(rows, BreakdownRow{Key: k, Bangs: n, Share: domain.RateOf(n, len(events))})
	}

	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if order == byBangs {
			if a.Bangs != b.Bangs {
				return a.Bangs > b.Bangs
			}
			return a.Key < b.Key
		}
		if (a.Key == unknownKey) != (b.Key == unknownKey) {
			return b.Key == unknownKey
		}
		return sortKeys[a.Key] < sortKeys[b.Key]
	})
	return rows
}

func positiveKey(n int) string {
	if n <= 0 {
		return unknownKey
	}
	return strconv.Itoa(n)
}

func textKey(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return unknownKey
	}
	return s
}
