package exporter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCellValue(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{"", nil},
		{"12", 12},
		{"0.924", 0.924},
		{"-7.5", -7.5},
		{".5", 0.5},
		{"0-1", "0-1"},
		{"2017-04", "2017-04"},
		{"2017-04-03", "2017-04-03"},
		{"Carlos Correa", "Carlos Correa"},
		{"NaN", "NaN"},
		{"unknown", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, cellValue(tt.in))
		})
	}
}

func TestSheetName(t *testing.T) {
	assert.Equal(t, "players", sheetName("players"))
	assert.Len(t, sheetName(strings.Repeat("x", 40)), 31)
}
