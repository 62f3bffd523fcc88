package exporter

import (
	"bytes"
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bangreport/internal/analysis"
	"bangreport/internal/dataprocessing"
	apperrors "bangreport/internal/errors"
	"bangreport/internal/files"
	"bangreport/pkg/contracts"
	"bangreport/pkg/contracts/domain"
)

func TestWriteAndReadJSON(t *testing.T) {
	s := &dataprocessing.Summaries{
		TotalBangs: 2,
		Players: []dataprocessing.PlayerRow{
			{Player: "Jose Altuve", OPS: domain.Rate(0.95), SeasonOPS: domain.MissingRate()},
		},
	}
	res := &analysis.Results{Alpha: 0.05, TTest: analysis.TTestResult{Err: "insufficient data"}}
	jr := dataprocessing.JoinReport{MalformedDates: map[string]int{"bangs": 1}, UnmatchedBangs: 1}

	b := NewBundle("HOU", 2017, map[string]int{"bangs": 2}, jr, s, res)
	path := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, WriteJSON(context.Background(), files.NewManager(nil), path, b))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"season_ops": null`)
	assert.Contains(t, string(raw), `"format": "`+contracts.DataFormatVersion+`"`)

	got, err := ReadJSON(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, "HOU", got.Metadata.Team)
	assert.Equal(t, 2017, got.Metadata.Year)
	assert.Equal(t, 1, got.JoinReport.UnmatchedBangs)
	require.Len(t, got.Summaries.Players, 1)
	assert.True(t, math.IsNaN(got.Summaries.Players[0].SeasonOPS.Float()))
	assert.Equal(t, "insufficient data", got.Analysis.TTest.Err)

	table, ok := got.Table(dataprocessing.TablePlayers)
	require.True(t, ok)
	assert.Equal(t, "Jose Altuve", table.Rows[0][0])
	_, ok = got.Table("missing")
	assert.False(t, ok)
}

func TestReadJSONInvalid(t *testing.T) {
	_, err := ReadJSON(strings.NewReader("{not json"))
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeParsing))
}
