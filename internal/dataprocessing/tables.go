package dataprocessing

import (
	"strconv"

	"bangreport/pkg/contracts/domain"
)

// Table names, also used as CSV file stems and API path segments.
const (
	TableMonthly         = "monthly"
	TableGames           = "games"
	TablePlayers         = "players"
	TableInnings         = "innings"
	TableCounts          = "counts"
	TablePitchers        = "pitchers"
	TablePitchCategories = "pitch_categories"
	TableLineupSlots     = "lineup_slots"
	TableHomeAway        = "home_away"
	TableBangSplit       = "bang_split"
)

// Table is a rendered summary table. Missing values are empty strings.
type Table struct {
	Name    string     `json:"name"`
	Title   string     `json:"title"`
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// Tables renders every summary in report order
func (s *Summaries) Tables() []Table {
	return []Table{
		s.monthlyTable(),
		s.gamesTable(),
		s.playersTable(),
		breakdownTable(TableInnings, "Bangs by inning", "Inning", s.Innings),
		breakdownTable(TableCounts, "Bangs by count", "Count", s.Counts),
		breakdownTable(TablePitchers, "Bangs by opposing pitcher", "Pitcher", s.Pitchers),
		breakdownTable(TablePitchCategories, "Bangs by pitch category", "Pitch category", s.PitchCategories),
		breakdownTable(TableLineupSlots, "Bangs by lineup slot", "Lineup slot", s.LineupSlots),
		splitTable(TableHomeAway, "Home and away batting", s.HomeAway),
		splitTable(TableBangSplit, "Batting with and without bangs", s.BangSplit),
	}
}

// Table returns the named table
func (s *Summaries) Table(name string) (Table, bool) {
	for _, t := range s.Tables() {
		if t.Name == name {
			return t, true
		}
	}
	return Table{}, false
}

func itoa(n int) string { return strconv.Itoa(n) }

func optInt(p *int) string {
	if p == nil {
		return ""
	}
	return strconv.Itoa(*p)
}

func lineCells(l domain.BattingLine) []string {
	return []string{itoa(l.PA()), itoa(l.AB), itoa(l.H), itoa(l.BB), itoa(l.HBP), itoa(l.SF), itoa(l.TB), itoa(l.HR)}
}

var lineHeaders = []string{"PA", "AB", "H", "BB", "HBP", "SF", "TB", "HR"}

func (s *Summaries) monthlyTable() Table {
	t := Table{
		Name:    TableMonthly,
		Title:   "Bangs by month",
		Headers: []string{"Month", "Games", "Bangs", "Bangs per game", "Player-games with bang"},
	}
	for _, r := range s.Monthly {
		t.Rows = append(t.Rows, []string{
			r.Month, itoa(r.Games), itoa(r.Bangs), r.BangsPerGame.Format(2), itoa(r.PlayerGamesWithBang),
		})
	}
	return t
}

func (s *Summaries) gamesTable() Table {
	t := Table{
		Name:    TableGames,
		Title:   "Games",
		Headers: []string{"Date", "Opponent", "Venue", "Bangs", "Runs scored", "Runs allowed", "Result"},
	}
	for _, r := range s.Games {
		t.Rows = append(t.Rows, []string{
			r.Date, r.Opponent, r.HomeAway, itoa(r.Bangs), optInt(r.RunsScored), optInt(r.RunsAllowed), r.Result,
		})
	}
	return t
}

func (s *Summaries) playersTable() Table {
	t := Table{
		Name:  TablePlayers,
		Title: "Players",
		Headers: []string{
			"Player", "Games", "Games with bang", "Bangs", "PA", "AVG", "OBP", "SLG", "OPS",
			"OPS with bang", "OPS without bang", "Season OPS", "Bangs per PA",
		},
	}
	for _, r := range s.Players {
		t.Rows = append(t.Rows, []string{
			r.Player, itoa(r.Games), itoa(r.GamesWithBang), itoa(r.Bangs), itoa(r.PA),
			r.AVG.String(), r.OBP.String(), r.SLG.String(), r.OPS.String(),
			r.OPSWithBang.String(), r.OPSWithoutBang.String(), r.SeasonOPS.String(), r.BangsPerPA.Format(4),
		})
	}
	return t
}

func breakdownTable(name, title, keyHeader string, rows []BreakdownRow) Table {
	t := Table{Name: name, Title: title, Headers: []string{keyHeader, "Bangs", "Share"}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{r.Key, itoa(r.Bangs), r.Share.Format(3)})
	}
	return t
}

func splitTable(name, title string, rows []SplitRow) Table {
	headers := append([]string{"Split", "Games"}, lineHeaders...)
	t := Table{Name: name, Title: title, Headers: append(headers, "AVG", "OBP", "SLG", "OPS")}
	for _, r := range rows {
		cells := append([]string{r.Split, itoa(r.Games)}, lineCells(r.BattingLine)...)
		t.Rows = append(t.Rows, append(cells, r.AVG.String(), r.OBP.String(), r.SLG.String(), r.OPS.String()))
	}
	return t
}
