package exporter

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bangreport/internal/config"
	"bangreport/internal/dataprocessing"
)

func testPaths(t *testing.T) *config.Paths {
	t.Helper()
	pc := config.Default().Paths
	pc.BaseDir = t.TempDir()
	paths, err := config.NewPaths(pc)
	require.NoError(t, err)
	return paths
}

var sampleTables = []dataprocessing.Table{
	{
		Name:    dataprocessing.TableCounts,
		Title:   "Bangs by count",
		Headers: []string{"Count", "Bangs", "Share"},
		Rows:    [][]string{{"0-1", "2", "0.333"}, {"1-1", "1", "0.167"}},
	},
	{
		Name:    dataprocessing.TablePlayers,
		Title:   "Players",
		Headers: []string{"Player", "OPS"},
		Rows:    [][]string{{"José Altuve", "0.951"}, {"Nobody, Jr.", ""}},
	},
}

func readCSVFile(t *testing.T, path string) ([]byte, [][]string) {
	t.Helper()
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	records, err := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(raw, utf8BOM))).ReadAll()
	require.NoError(t, err)
	return raw, records
}

func TestWriteTables(t *testing.T) {
	paths := testPaths(t)
	w := NewCSVWriter(paths, nil)

	written, err := w.WriteTables(context.Background(), sampleTables, true)
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(paths.TablesDir, "counts.csv"),
		filepath.Join(paths.TablesDir, "players.csv"),
	}, written)

	raw, records := readCSVFile(t, written[1])
	assert.True(t, bytes.HasPrefix(raw, utf8BOM))
	assert.Equal(t, [][]string{
		{"Player", "OPS"},
		{"José Altuve", "0.951"},
		{"Nobody, Jr.", ""},
	}, records)
}

func TestWriteTableWithoutBOM(t *testing.T) {
	paths := testPaths(t)

	path, err := NewCSVWriter(paths, nil).WriteTable(sampleTables[0], false)
	require.NoError(t, err)

	raw, records := readCSVFile(t, path)
	assert.False(t, bytes.HasPrefix(raw, utf8BOM))
	assert.Equal(t, []string{"Count", "Bangs", "Share"}, records[0])
	assert.Len(t, records, 3)
}

func TestWriteCSVRelativePath(t *testing.T) {
	paths := testPaths(t)
	w := NewCSVWriter(paths, nil)

	require.NoError(t, w.WriteCSV("extra/custom.csv", WriteOptions{
		Headers: []string{"a"},
		Records: [][]string{{"1"}},
	}))
	assert.FileExists(t, filepath.Join(paths.TablesDir, "extra", "custom.csv"))
}

func TestWriteTablesCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	written, err := NewCSVWriter(testPaths(t), nil).WriteTables(ctx, sampleTables, true)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, written)
}
