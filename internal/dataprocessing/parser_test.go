package dataprocessing

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "bangreport/internal/errors"
)

var testColumns = []column{
	{name: "date", aliases: []string{"date", "game_date"}, required: true},
	{name: "batter", aliases: []string{"batter", "player"}, required: true},
	{name: "inning", aliases: []string{"inning"}},
}

func TestParseCSVAliasesAndBOM(t *testing.T) {
	input := "\ufeffGame Date, Player ,Inning\n4/3/17,Jose Altuve,1\n\n4/4/17,Carlos Correa,\n"

	table, err := parseCSV(strings.NewReader(input), "bangs.csv", testColumns)
	require.NoError(t, err)
	require.Len(t, table.rows, 2)

	assert.True(t, table.has("inning"))
	assert.Equal(t, "4/3/17", table.cell(table.rows[0], "date"))
	assert.Equal(t, "Jose Altuve", table.cell(table.rows[0], "batter"))
	assert.Equal(t, 1, table.count(table.rows[0], "inning"))
	assert.Equal(t, 0, table.count(table.rows[1], "inning"))
}

func TestParseCSVSkipsRepeatedHeaders(t *testing.T) {
	input := "Date,Batter\n4/3/17,A\nDate,Batter\n4/4/17,B\n"

	table, err := parseCSV(strings.NewReader(input), "log.csv", testColumns)
	require.NoError(t, err)
	assert.Len(t, table.rows, 2)
	assert.False(t, table.has("inning"))
	assert.Equal(t, "", table.cell(table.rows[0], "inning"))
}

func TestParseCSVMissingColumn(t *testing.T) {
	_, err := parseCSV(strings.NewReader("Date,Inning\n4/3/17,1\n"), "bangs.csv", testColumns)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeParsing))
	assert.Contains(t, err.Error(), "missing required column(s) batter")
}

func TestParseCSVEmpty(t *testing.T) {
	_, err := parseCSV(strings.NewReader(""), "empty.csv", testColumns)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeParsing))
}

func TestCount(t *testing.T) {
	table := &csvTable{columns: map[string]int{"n": 0}}

	tests := []struct {
		cell string
		want int
	}{
		{"12", 12},
		{" 7 ", 7},
		{"1,204", 1204},
		{"3.0", 3},
		{"", 0},
		{"n/a", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, table.count([]string{tt.cell}, "n"), tt.cell)
	}
}

func TestReadCSVMissingFile(t *testing.T) {
	_, err := readCSV("/does/not/exist.csv", testColumns)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeStorage))
}
