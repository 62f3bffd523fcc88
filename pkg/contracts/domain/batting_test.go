package domain

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBattingLine_Rates(t *testing.T) {
	tests := []struct {
		name    string
		line    BattingLine
		wantAVG float64
		wantOBP float64
		wantSLG float64
	}{
		{
			name:    "typical game",
			line:    BattingLine{AB: 4, H: 2, BB: 1, TB: 5},
			wantAVG: 0.5,
			wantOBP: 0.6,
			wantSLG: 1.25,
		},
		{
			name:    "walks and sac fly only",
			line:    BattingLine{BB: 1, HBP: 1, SF: 2},
			wantAVG: math.NaN(),
			wantOBP: 0.5,
			wantSLG: math.NaN(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertFloat(t, tt.wantAVG, tt.line.AVG())
			assertFloat(t, tt.wantOBP, tt.line.OBP())
			assertFloat(t, tt.wantSLG, tt.line.SLG())
		})
	}
}

func TestBattingLine_OPSMissingWithoutAtBats(t *testing.T) {
	line := BattingLine{BB: 2}
	assert.True(t, math.IsNaN(line.OPS()))
	assert.Equal(t, 2, line.PA())
}

func TestBattingLine_Add(t *testing.T) {
	line := BattingLine{AB: 3, H: 1, TB: 1}
	line.Add(BattingLine{AB: 4, H: 2, BB: 1, TB: 5, HR: 1})

	assert.Equal(t, BattingLine{AB: 7, H: 3, BB: 1, TB: 6, HR: 1}, line)
}

func TestTotalBases(t *testing.T) {
	// single, double, triple, homer
	assert.Equal(t, 10, TotalBases(4, 1, 1, 1))
}

func TestGameResult_Outcome(t *testing.T) {
	assert.Equal(t, "W", GameResult{RunsScored: 5, RunsAllowed: 3}.Outcome())
	assert.Equal(t, "L", GameResult{RunsScored: 1, RunsAllowed: 3}.Outcome())
	assert.Equal(t, "T", GameResult{RunsScored: 2, RunsAllowed: 2}.Outcome())
}

func TestHomeAway_Title(t *testing.T) {
	assert.Equal(t, "Home", Home.Title())
	assert.Equal(t, "Away", Away.Title())
	assert.Equal(t, "Unknown", Unknown.Title())
}

func TestBangEvent_Count(t *testing.T) {
	assert.Equal(t, "1-2", BangEvent{Balls: 1, Strikes: 2}.Count())
}

func assertFloat(t *testing.T, want, got float64) {
	t.Helper()
	if math.IsNaN(want) {
		assert.True(t, math.IsNaN(got), "expected NaN, got %v", got)
		return
	}
	assert.InDelta(t, want, got, 1e-9)
}

func TestRate(t *testing.T) {
	assert.True(t, RateOf(1, 0).Missing())
	assert.Equal(t, "", RateOf(1, 0).String())
	assert.Equal(t, "0.333", RateOf(1, 3).String())
	assert.Equal(t, "33.3", Rate(33.333).Format(1))

	type row struct {
		OPS Rate `json:"ops"`
		AVG Rate `json:"avg"`
	}
	data, err := json.Marshal(row{OPS: MissingRate(), AVG: 0.25})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ops":null,"avg":0.25}`, string(data))

	var back row
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, back.OPS.Missing())
	assert.Equal(t, Rate(0.25), back.AVG)
}
