package dataprocessing

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bangreport/internal/config"
	apperrors "bangreport/internal/errors"
	"bangreport/internal/shared/testutil"
	"bangreport/pkg/contracts/domain"
)

// fixturePaths writes the fixture season under a temp base directory.
func fixturePaths(t *testing.T) *config.Paths {
	t.Helper()
	pc := config.Default().Paths
	pc.BaseDir = t.TempDir()

	paths, err := config.NewPaths(pc)
	require.NoError(t, err)
	testutil.WriteSeasonFixture(t, paths.DataDir)
	return paths
}

func TestLoadAll(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	paths := fixturePaths(t)

	ds, err := NewLoader(logger).LoadAll(context.Background(), paths)
	require.NoError(t, err)

	assert.Equal(t, map[string]int{
		"bangs":        6,
		"batting":      3,
		"games":        4,
		"player_games": 8,
	}, ds.RowCounts())
	assert.True(t, handler.ContainsMessage("Loaded player game logs"))
	testutil.AssertNoErrors(t, handler)
}

func TestLoadBangEvents(t *testing.T) {
	paths := fixturePaths(t)

	events, err := NewLoader(nil).LoadBangEvents(context.Background(), paths.BangsCSV)
	require.NoError(t, err)
	require.Len(t, events, 6)

	second := events[1]
	assert.Equal(t, "4/3/17", second.RawDate)
	assert.Equal(t, "Jose Altuve", second.Batter)
	assert.Equal(t, 3, second.Inning)
	assert.Equal(t, "1-1", second.Count())
	assert.Equal(t, "slider", second.PitchCategory)
	assert.Equal(t, 2, second.LineupPosition)
	assert.Equal(t, "a2", second.AtBatID)
	assert.Equal(t, "Felix Hernandez", second.Pitcher)
	assert.Equal(t, 1, second.HomeScore)
	assert.False(t, second.HasDate())
}

func TestLoadSeasonBattingDerivesTotalBases(t *testing.T) {
	paths := fixturePaths(t)

	lines, err := NewLoader(nil).LoadSeasonBatting(context.Background(), paths.BattingCSV)
	require.NoError(t, err)
	require.Len(t, lines, 3)

	altuve := lines[0]
	assert.Equal(t, "José Altuve", altuve.Player)
	assert.Equal(t, 18, altuve.PA)
	assert.Equal(t, 9, altuve.TB)
	assert.Equal(t, 1, altuve.Doubles)
}

func TestLoadSeasonBattingComputesPA(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "batting.csv", "Name,AB,H,BB,HBP,SF,TB\nA Player,10,3,2,1,1,5\n")

	lines, err := NewLoader(nil).LoadSeasonBatting(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 14, lines[0].PA)
	assert.Equal(t, 5, lines[0].TB)
}

func TestLoadGameResults(t *testing.T) {
	paths := fixturePaths(t)

	games, err := NewLoader(nil).LoadGameResults(context.Background(), paths.GamesCSV)
	require.NoError(t, err)
	require.Len(t, games, 4)

	assert.Equal(t, domain.Home, games[0].HomeAway)
	assert.Equal(t, domain.Away, games[2].HomeAway)
	assert.Equal(t, 7, games[2].RunsScored)
	assert.Equal(t, 3, games[2].RunsAllowed)
}

func TestLoadGameResultsWithoutVenue(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "games.csv", "Date,Opp,R,RA\n4/3/2017,SEA,3,0\n")

	games, err := NewLoader(nil).LoadGameResults(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, domain.Unknown, games[0].HomeAway)
}

func TestLoadPlayerLogs(t *testing.T) {
	paths := fixturePaths(t)

	games, err := NewLoader(nil).LoadPlayerLogs(context.Background(), paths.PlayersDir)
	require.NoError(t, err)
	require.Len(t, games, 8)

	// carlos_correa.csv sorts first and carries its own player column
	assert.Equal(t, "Carlos Correa", games[0].Player)
	assert.Equal(t, "Jose Altuve", games[4].Player)
	assert.Equal(t, domain.Away, games[6].HomeAway)
	assert.Equal(t, 4, games[6].TB)
}

func TestLoadAllMissingInput(t *testing.T) {
	pc := config.Default().Paths
	pc.BaseDir = t.TempDir()
	paths, err := config.NewPaths(pc)
	require.NoError(t, err)
	testutil.WriteFile(t, paths.DataDir, filepath.Join("players", "a.csv"), testutil.FixtureAltuveCSV)

	_, err = NewLoader(nil).LoadAll(context.Background(), paths)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeStorage))
}

func TestLoadPlayerLogRejectsMissingColumns(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "x.csv", "Date,Opp\n4/3/2017,SEA\n")

	_, err := NewLoader(nil).LoadPlayerLog(context.Background(), path, "X")
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeParsing))
}
