package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"bangreport/internal/config"
	"bangreport/internal/files"
	"bangreport/pkg/contracts/domain"
)

var bangColumns = []column{
	{name: "date", aliases: []string{"game_date", "date"}, required: true},
	{name: "opponent", aliases: []string{"opponent", "opp"}},
	{name: "batter", aliases: []string{"batter", "player", "hitter"}, required: true},
	{name: "inning", aliases: []string{"inning", "inn"}},
	{name: "balls", aliases: []string{"balls"}},
	{name: "strikes", aliases: []string{"strikes"}},
	{name: "pitch_category", aliases: []string{"pitch_category", "call", "pitch_type"}},
	{name: "lineup", aliases: []string{"lineup_position", "lineup", "batting_order"}},
	{name: "at_bat_id", aliases: []string{"at_bat_id", "ab_id", "youtube_id"}},
	{name: "pitcher", aliases: []string{"pitcher"}},
	{name: "home_score", aliases: []string{"home_score"}},
	{name: "away_score", aliases: []string{"away_score"}},
}

var battingColumns = []column{
	{name: "name", aliases: []string{"name", "player"}, required: true},
	{name: "g", aliases: []string{"g", "games"}},
	{name: "pa", aliases: []string{"pa"}},
	{name: "ab", aliases: []string{"ab"}, required: true},
	{name: "h", aliases: []string{"h", "hits"}, required: true},
	{name: "2b", aliases: []string{"2b", "doubles"}},
	{name: "3b", aliases: []string{"3b", "triples"}},
	{name: "hr", aliases: []string{"hr", "home_runs"}},
	{name: "bb", aliases: []string{"bb", "walks"}},
	{name: "hbp", aliases: []string{"hbp"}},
	{name: "sf", aliases: []string{"sf"}},
	{name: "so", aliases: []string{"so", "k"}},
	{name: "tb", aliases: []string{"tb"}},
}

var gameColumns = []column{
	{name: "date", aliases: []string{"date", "game_date"}, required: true},
	{name: "opponent", aliases: []string{"opp", "opponent"}},
	{name: "venue", aliases: []string{"@", "home_away", "h/a", "venue"}},
	{name: "runs_scored", aliases: []string{"r", "rs", "runs_scored", "runs"}, required: true},
	{name: "runs_allowed", aliases: []string{"ra", "runs_allowed"}, required: true},
}

var playerLogColumns = []column{
	{name: "player", aliases: []string{"player", "name", "batter"}},
	{name: "date", aliases: []string{"date", "game_date"}, required: true},
	{name: "opponent", aliases: []string{"opp", "opponent"}},
	{name: "venue", aliases: []string{"@", "home_away", "h/a", "venue"}},
	{name: "ab", aliases: []string{"ab"}, required: true},
	{name: "h", aliases: []string{"h"}, required: true},
	{name: "2b", aliases: []string{"2b"}},
	{name: "3b", aliases: []string{"3b"}},
	{name: "bb", aliases: []string{"bb"}},
	{name: "hbp", aliases: []string{"hbp"}},
	{name: "sf", aliases: []string{"sf"}},
	{name: "tb", aliases: []string{"tb"}},
	{name: "hr", aliases: []string{"hr"}},
}

// Dataset is the raw content of every input, dates still unparsed
type Dataset struct {
	Bangs       []domain.BangEvent
	Batting     []domain.SeasonBatting
	Games       []domain.GameResult
	PlayerGames []domain.PlayerGame
}

// RowCounts reports the number of rows read per source
func (d *Dataset) RowCounts() map[string]int {
	return map[string]int{
		"bangs":        len(d.Bangs),
		"batting":      len(d.Batting),
		"games":        len(d.Games),
		"player_games": len(d.PlayerGames),
	}
}

// Loader reads the input CSVs into domain records
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a loader
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger.With("component", "loader")}
}

// LoadBangEvents reads the bang log
func (l *Loader) LoadBangEvents(ctx context.Context, path string) ([]domain.BangEvent, error) {
	t, err := readCSV(path, bangColumns)
	if err != nil {
		return nil, err
	}

	events := make([]domain.BangEvent, 0, len(t.rows))
	for _, row := range t.rows {
		events = append(events, domain.BangEvent{
			RawDate:        t.cell(row, "date"),
			Opponent:       t.cell(row, "opponent"),
			Batter:         CleanDisplayName(t.cell(row, "batter")),
			Inning:         t.count(row, "inning"),
			Balls:          t.count(row, "balls"),
			Strikes:        t.count(row, "strikes"),
			PitchCategory:  t.cell(row, "pitch_category"),
			LineupPosition: t.count(row, "lineup"),
			AtBatID:        t.cell(row, "at_bat_id"),
			Pitcher:        t.cell(row, "pitcher"),
			HomeScore:      t.count(row, "home_score"),
			AwayScore:      t.count(row, "away_score"),
		})
	}

	l.logger.InfoContext(ctx, "Loaded bang events",
		slog.String("path", path),
		slog.Int("rows", len(events)))
	return events, nil
}

// LoadSeasonBatting reads the season batting table
func (l *Loader) LoadSeasonBatting(ctx context.Context, path string) ([]domain.SeasonBatting, error) {
	t, err := readCSV(path, battingColumns)
	if err != nil {
		return nil, err
	}

	lines := make([]domain.SeasonBatting, 0, len(t.rows))
	for _, row := range t.rows {
		name := CleanDisplayName(t.cell(row, "name"))
		if name == "" {
			continue
		}

		sb := domain.SeasonBatting{
			Player:  name,
			G:       t.count(row, "g"),
			Doubles: t.count(row, "2b"),
			Triples: t.count(row, "3b"),
			SO:      t.count(row, "so"),
			BattingLine: domain.BattingLine{
				AB:  t.count(row, "ab"),
				H:   t.count(row, "h"),
				BB:  t.count(row, "bb"),
				HBP: t.count(row, "hbp"),
				SF:  t.count(row, "sf"),
				HR:  t.count(row, "hr"),
			},
		}
		if t.has("tb") {
			sb.TB = t.count(row, "tb")
		} else {
			sb.TB = domain.TotalBases(sb.H, sb.Doubles, sb.Triples, sb.HR)
		}
		if t.has("pa") {
			sb.PA = t.count(row, "pa")
		} else {
			sb.PA = sb.BattingLine.PA()
		}
		lines = append(lines, sb)
	}

	l.logger.InfoContext(ctx, "Loaded season batting",
		slog.String("path", path),
		slog.Int("rows", len(lines)))
	return lines, nil
}

// LoadGameResults reads the game results table. A missing venue column
// leaves HomeAway unknown for the joiner to infer.
func (l *Loader) LoadGameResults(ctx context.Context, path string) ([]domain.GameResult, error) {
	t, err := readCSV(path, gameColumns)
	if err != nil {
		return nil, err
	}

	games := make([]domain.GameResult, 0, len(t.rows))
	for _, row := range t.rows {
		g := domain.GameResult{
			RawDate:     t.cell(row, "date"),
			Opponent:    t.cell(row, "opponent"),
			RunsScored:  t.count(row, "runs_scored"),
			RunsAllowed: t.count(row, "runs_allowed"),
		}
		if t.has("venue") {
			g.HomeAway = ParseHomeAway(t.cell(row, "venue"))
		}
		games = append(games, g)
	}

	l.logger.InfoContext(ctx, "Loaded game results",
		slog.String("path", path),
		slog.Int("rows", len(games)))
	return games, nil
}

// LoadPlayerLog reads one player's game log. fallbackName is used when the
// file has no player column or the cell is blank.
func (l *Loader) LoadPlayerLog(ctx context.Context, path, fallbackName string) ([]domain.PlayerGame, error) {
	t, err := readCSV(path, playerLogColumns)
	if err != nil {
		return nil, err
	}

	games := make([]domain.PlayerGame, 0, len(t.rows))
	for _, row := range t.rows {
		player := CleanDisplayName(t.cell(row, "player"))
		if player == "" {
			player = fallbackName
		}

		pg := domain.PlayerGame{
			RawDate:  t.cell(row, "date"),
			Player:   player,
			Opponent: t.cell(row, "opponent"),
			BattingLine: domain.BattingLine{
				AB:  t.count(row, "ab"),
				H:   t.count(row, "h"),
				BB:  t.count(row, "bb"),
				HBP: t.count(row, "hbp"),
				SF:  t.count(row, "sf"),
				HR:  t.count(row, "hr"),
			},
		}
		if t.has("venue") {
			pg.HomeAway = ParseHomeAway(t.cell(row, "venue"))
		}
		if t.has("tb") {
			pg.TB = t.count(row, "tb")
		} else {
			pg.TB = domain.TotalBases(pg.H, t.count(row, "2b"), t.count(row, "3b"), pg.HR)
		}
		games = append(games, pg)
	}

	return games, nil
}

// LoadPlayerLogs reads every CSV in dir, in file name order
func (l *Loader) LoadPlayerLogs(ctx context.Context, dir string) ([]domain.PlayerGame, error) {
	logs, err := files.NewDiscovery("").FindCSVFiles(dir)
	if err != nil {
		return nil, err
	}

	var all []domain.PlayerGame
	for _, f := range logs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		games, err := l.LoadPlayerLog(ctx, f.Path, DisplayName(f.Stem()))
		if err != nil {
			return nil, err
		}
		all = append(all, games...)
	}

	l.logger.InfoContext(ctx, "Loaded player game logs",
		slog.String("dir", dir),
		slog.Int("files", len(logs)),
		slog.Int("rows", len(all)))
	return all, nil
}

// LoadAll reads the four sources concurrently. The first failure cancels
// the remaining reads.
func (l *Loader) LoadAll(ctx context.Context, paths *config.Paths) (*Dataset, error) {
	ds := &Dataset{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		events, err := l.LoadBangEvents(gctx, paths.BangsCSV)
		if err != nil {
			return fmt.Errorf("load bang events: %w", err)
		}
		ds.Bangs = events
		return nil
	})
	g.Go(func() error {
		lines, err := l.LoadSeasonBatting(gctx, paths.BattingCSV)
		if err != nil {
			return fmt.Errorf("load season batting: %w", err)
		}
		ds.Batting = lines
		return nil
	})
	g.Go(func() error {
		games, err := l.LoadGameResults(gctx, paths.GamesCSV)
		if err != nil {
			return fmt.Errorf("load game results: %w", err)
		}
		ds.Games = games
		return nil
	})
	g.Go(func() error {
		logs, err := l.LoadPlayerLogs(gctx, paths.PlayersDir)
		if err != nil {
			return fmt.Errorf("load player logs: %w", err)
		}
		ds.PlayerGames = logs
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return ds, nil
}
