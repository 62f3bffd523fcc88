package dataprocessing

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"bangreport/pkg/contracts/domain"
)

// JoinedGame is one team game with its bang total and, when the results
// table had the date, the final score. GameNumber is set for doubleheaders.
type JoinedGame struct {
	Date                time.Time          `json:"date"`
	GameNumber          int                `json:"game_number,omitempty"`
	Opponent            string             `json:"opponent"`
	HomeAway            domain.HomeAway    `json:"home_away"`
	Bangs               int                `json:"bangs"`
	PlayerGamesWithBang int                `json:"player_games_with_bang"`
	Result              *domain.GameResult `json:"result,omitempty"`
}

// JoinedData is the analysis-ready view of a season
type JoinedData struct {
	Year int
	// Bangs holds every event, matched or not, with dates normalized.
	Bangs       []domain.BangEvent
	PlayerGames []domain.PlayerGame
	Games       []JoinedGame
	Batting     []domain.SeasonBatting

	seasonByKey map[string]domain.SeasonBatting
}

// SeasonLine returns the season batting line for a player-game player
func (j *JoinedData) SeasonLine(player string) (domain.SeasonBatting, bool) {
	sb, ok := j.seasonByKey[NormalizeName(player)]
	return sb, ok
}

// JoinReport counts the rows that could not be cleaned or matched. None of
// them abort a run; they become missing values downstream.
type JoinReport struct {
	MalformedDates           map[string]int `json:"malformed_dates"`
	UnmatchedBangs           int            `json:"unmatched_bangs"`
	UnmatchedBatters         []string       `json:"unmatched_batters"`
	PlayerGamesWithoutResult int            `json:"player_games_without_result"`
	UnmatchedSeasonLines     int            `json:"unmatched_season_lines"`
	FuzzyMatches             int            `json:"fuzzy_matches"`
	AliasMatches             int            `json:"alias_matches"`
	// Results sharing a date and game number; only the first is kept.
	DuplicateResults int `json:"duplicate_results"`
	// Dated bangs without a game number on a doubleheader day. They go to
	// the player's first game that day.
	AmbiguousBangAttributions int `json:"ambiguous_bang_attributions"`
}

// MalformedTotal sums malformed dates across sources
func (r JoinReport) MalformedTotal() int {
	total := 0
	for _, n := range r.MalformedDates {
		total += n
	}
	return total
}

// Clean reports whether every row was cleaned and matched exactly
func (r JoinReport) Clean() bool {
	return r.MalformedTotal() == 0 && r.UnmatchedBangs == 0 &&
		r.PlayerGamesWithoutResult == 0 && r.UnmatchedSeasonLines == 0 &&
		r.FuzzyMatches == 0 && r.DuplicateResults == 0 &&
		r.AmbiguousBangAttributions == 0
}

// LogValue implements slog.LogValuer
func (r JoinReport) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Any("malformed_dates", r.MalformedDates),
		slog.Int("unmatched_bangs", r.UnmatchedBangs),
		slog.Any("unmatched_batters", r.UnmatchedBatters),
		slog.Int("player_games_without_result", r.PlayerGamesWithoutResult),
		slog.Int("unmatched_season_lines", r.UnmatchedSeasonLines),
		slog.Int("fuzzy_matches", r.FuzzyMatches),
		slog.Int("alias_matches", r.AliasMatches),
		slog.Int("duplicate_results", r.DuplicateResults),
		slog.Int("ambiguous_bang_attributions", r.AmbiguousBangAttributions),
	)
}

// Joiner reconciles the loaded sources
type Joiner struct {
	logger  *slog.Logger
	year    int
	aliases map[string]string
}

// NewJoiner creates a joiner for a season. aliases map raw names to roster
// names and may be nil.
func NewJoiner(logger *slog.Logger, year int, aliases map[string]string) *Joiner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Joiner{
		logger:  logger.With("component", "joiner"),
		year:    year,
		aliases: aliases,
	}
}

// slot identifies one game: a date plus the doubleheader number (0 when
// the source did not say).
type slot struct {
	date string
	game int
}

type dateName struct {
	date string
	name string
}

// resultIndex finds the game result for a slot
type resultIndex struct {
	bySlot map[slot]*domain.GameResult
	// numbered results per date, ascending
	byDate map[string][]int
	// lowest game number any source gave the date
	firstGame map[string]int
}

// resolve maps a slot to the game it belongs to and reports whether that
// game has a result. A numbered game falls back to the date's unnumbered
// result, and an unnumbered one to the lowest numbered game of the date.
func (ri resultIndex) resolve(sl slot) (slot, bool) {
	if _, ok := ri.bySlot[sl]; ok {
		return sl, true
	}
	if sl.game > 0 {
		fallback := slot{date: sl.date}
		if _, ok := ri.bySlot[fallback]; ok {
			return fallback, true
		}
		return sl, false
	}
	if nums := ri.byDate[sl.date]; len(nums) > 0 {
		return slot{date: sl.date, game: nums[0]}, true
	}
	if n, ok := ri.firstGame[sl.date]; ok {
		return slot{date: sl.date, game: n}, false
	}
	return sl, false
}

// Join cleans dates, attributes bang events to player-games by date, game
// number and normalized name, and attaches game results by date and game
// number. Doubleheader rows that cannot be told apart are counted in the
// JoinReport.
func (j *Joiner) Join(ctx context.Context, ds *Dataset) (*JoinedData, JoinReport) {
	report := JoinReport{MalformedDates: map[string]int{}}

	out := &JoinedData{
		Year:        j.year,
		Bangs:       append([]domain.BangEvent(nil), ds.Bangs...),
		PlayerGames: append([]domain.PlayerGame(nil), ds.PlayerGames...),
		Batting:     append([]domain.SeasonBatting(nil), ds.Batting...),
		seasonByKey: make(map[string]domain.SeasonBatting),
	}
	results := append([]domain.GameResult(nil), ds.Games...)

	for i := range out.Bangs {
		if d, ok := NormalizeDate(out.Bangs[i].RawDate, j.year); ok {
			out.Bangs[i].Date = d
			out.Bangs[i].GameNumber = GameNumber(out.Bangs[i].RawDate)
		} else {
			report.MalformedDates["bangs"]++
		}
	}
	for i := range out.PlayerGames {
		if d, ok := NormalizeDate(out.PlayerGames[i].RawDate, j.year); ok {
			out.PlayerGames[i].Date = d
			out.PlayerGames[i].GameNumber = GameNumber(out.PlayerGames[i].RawDate)
		} else {
			report.MalformedDates["player_games"]++
		}
	}
	for i := range results {
		if d, ok := NormalizeDate(results[i].RawDate, j.year); ok {
			results[i].Date = d
			results[i].GameNumber = GameNumber(results[i].RawDate)
		} else {
			report.MalformedDates["games"]++
		}
	}

	// Dates with more than one distinct game in any source
	gamesOnDate := map[string]map[int]bool{}
	mark := func(d time.Time, n int) {
		k := DateKey(d)
		if gamesOnDate[k] == nil {
			gamesOnDate[k] = map[int]bool{}
		}
		gamesOnDate[k][n] = true
	}

	roster := make([]string, 0, len(out.PlayerGames))
	candidates := make(map[dateName][]int, len(out.PlayerGames))
	for i, pg := range out.PlayerGames {
		roster = append(roster, pg.Player)
		if !pg.HasDate() {
			continue
		}
		k := dateName{date: DateKey(pg.Date), name: NormalizeName(pg.Player)}
		candidates[k] = append(candidates[k], i)
		if pg.GameNumber > 0 {
			mark(pg.Date, pg.GameNumber)
		}
	}
	for k, idx := range candidates {
		sort.SliceStable(idx, func(a, b int) bool {
			return out.PlayerGames[idx[a]].GameNumber < out.PlayerGames[idx[b]].GameNumber
		})
		candidates[k] = idx
	}
	matcher := NewNameMatcher(roster, j.aliases)

	ri := resultIndex{
		bySlot:    map[slot]*domain.GameResult{},
		byDate:    map[string][]int{},
		firstGame: map[string]int{},
	}
	for i := range results {
		if !results[i].HasDate() {
			continue
		}
		sl := slot{date: DateKey(results[i].Date), game: results[i].GameNumber}
		if _, dup := ri.bySlot[sl]; dup {
			report.DuplicateResults++
			j.logger.DebugContext(ctx, "Duplicate game result",
				slog.String("date", sl.date),
				slog.Int("game", sl.game))
			continue
		}
		ri.bySlot[sl] = &results[i]
		if sl.game > 0 {
			ri.byDate[sl.date] = append(ri.byDate[sl.date], sl.game)
			mark(results[i].Date, sl.game)
		}
	}
	for _, nums := range ri.byDate {
		sort.Ints(nums)
	}
	for date, nums := range gamesOnDate {
		for n := range nums {
			if first, ok := ri.firstGame[date]; !ok || n < first {
				ri.firstGame[date] = n
			}
		}
	}

	doubleheader := func(date string) bool { return len(gamesOnDate[date]) > 1 }

	unmatched := map[string]bool{}
	for i := range out.Bangs {
		ev := out.Bangs[i]
		if !ev.HasDate() {
			continue
		}
		date := DateKey(ev.Date)
		key, kind := matcher.Match(ev.Batter)
		idx := candidates[dateName{date: date, name: key}]
		if ev.GameNumber == 0 && (doubleheader(date) || len(idx) > 1) {
			report.AmbiguousBangAttributions++
		}
		if kind == MatchNone || len(idx) == 0 {
			report.UnmatchedBangs++
			unmatched[ev.Batter] = true
			j.logger.DebugContext(ctx, "Unmatched bang event",
				slog.String("batter", ev.Batter),
				slog.String("date", date))
			continue
		}
		switch kind {
		case MatchFuzzy:
			report.FuzzyMatches++
		case MatchAlias:
			report.AliasMatches++
		}

		target := idx[0]
		for _, c := range idx {
			if ev.GameNumber > 0 && out.PlayerGames[c].GameNumber == ev.GameNumber {
				target = c
				break
			}
		}
		out.PlayerGames[target].BangCount++
		out.PlayerGames[target].HadBang = true
		if ev.GameNumber == 0 {
			// the bang now belongs to the game it was attributed to
			out.Bangs[i].GameNumber = out.PlayerGames[target].GameNumber
		}
	}
	for name := range unmatched {
		report.UnmatchedBatters = append(report.UnmatchedBatters, name)
	}
	sort.Strings(report.UnmatchedBatters)

	for _, pg := range out.PlayerGames {
		if !pg.HasDate() {
			continue
		}
		if _, ok := ri.resolve(slot{date: DateKey(pg.Date), game: pg.GameNumber}); !ok {
			report.PlayerGamesWithoutResult++
		}
	}

	for _, sb := range out.Batting {
		key, kind := matcher.Match(sb.Player)
		if kind == MatchNone {
			report.UnmatchedSeasonLines++
			continue
		}
		if _, dup := out.seasonByKey[key]; !dup {
			out.seasonByKey[key] = sb
		}
	}

	out.Games = buildGames(out, ri)

	j.logger.InfoContext(ctx, "Joined season data",
		slog.Int("bangs", len(out.Bangs)),
		slog.Int("player_games", len(out.PlayerGames)),
		slog.Int("games", len(out.Games)))
	if !report.Clean() {
		j.logger.WarnContext(ctx, "Join left unmatched or malformed rows", slog.Any("join_report", report))
	}

	return out, report
}

// buildGames produces one row per game seen in any source, sorted by date
// and game number. Player-games and bangs join the result slot they
// resolve to.
func buildGames(jd *JoinedData, ri resultIndex) []JoinedGame {
	bySlot := map[slot]*JoinedGame{}
	venues := map[slot]map[domain.HomeAway]int{}

	get := func(d time.Time, n int) (*JoinedGame, slot) {
		sl, _ := ri.resolve(slot{date: DateKey(d), game: n})
		g, ok := bySlot[sl]
		if !ok {
			g = &JoinedGame{Date: d, GameNumber: sl.game}
			bySlot[sl] = g
			venues[sl] = map[domain.HomeAway]int{}
		}
		return g, sl
	}

	for _, r := range ri.bySlot {
		g, _ := get(r.Date, r.GameNumber)
		g.Result = r
		g.Opponent = r.Opponent
		g.HomeAway = r.HomeAway
	}
	for _, pg := range jd.PlayerGames {
		if !pg.HasDate() {
			continue
		}
		g, sl := get(pg.Date, pg.GameNumber)
		if g.Opponent == "" {
			g.Opponent = pg.Opponent
		}
		if pg.HomeAway != domain.Unknown {
			venues[sl][pg.HomeAway]++
		}
		if pg.HadBang {
			g.PlayerGamesWithBang++
		}
	}
	for _, ev := range jd.Bangs {
		if !ev.HasDate() {
			continue
		}
		g, _ := get(ev.Date, ev.GameNumber)
		g.Bangs++
		if g.Opponent == "" {
			g.Opponent = ev.Opponent
		}
	}

	games := make([]JoinedGame, 0, len(bySlot))
	for sl, g := range bySlot {
		if g.HomeAway == domain.Unknown {
			v := venues[sl]
			switch {
			case v[domain.Home] > v[domain.Away]:
				g.HomeAway = domain.Home
			case v[domain.Away] > v[domain.Home]:
				g.HomeAway = domain.Away
			}
		}
		games = append(games, *g)
	}
	sort.Slice(games, func(a, b int) bool {
		if !games[a].Date.Equal(games[b].Date) {
			return games[a].Date.Before(games[b].Date)
		}
		return games[a].GameNumber < games[b].GameNumber
	})
	return games
}
