package validation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bangreport/internal/config"
	apperrors "bangreport/internal/errors"
)

func newPaths(t *testing.T) *config.Paths {
	t.Helper()
	pc := config.Default().Paths
	pc.BaseDir = t.TempDir()
	paths, err := config.NewPaths(pc)
	require.NoError(t, err)
	return paths
}

func writeInputs(t *testing.T, p *config.Paths, withLog bool) {
	t.Helper()
	require.NoError(t, os.MkdirAll(p.PlayersDir, 0755))
	for _, f := range []string{p.BangsCSV, p.BattingCSV, p.GamesCSV} {
		require.NoError(t, os.WriteFile(f, []byte("date\n"), 0644))
	}
	if withLog {
		require.NoError(t, os.WriteFile(filepath.Join(p.PlayersDir, "jose_altuve.csv"), []byte("Date\n"), 0644))
	}
}

func TestFileValidator_ValidateInputLayout(t *testing.T) {
	tests := []struct {
		name          string
		setup         func(t *testing.T, p *config.Paths)
		wantErr       bool
		errorContains string
	}{
		{
			name:  "complete layout",
			setup: func(t *testing.T, p *config.Paths) { writeInputs(t, p, true) },
		},
		{
			name:    "nothing present",
			setup:   func(t *testing.T, p *config.Paths) {},
			wantErr: true,
		},
		{
			name:    "empty players dir",
			setup:   func(t *testing.T, p *config.Paths) { writeInputs(t, p, false) },
			wantErr: true,
		},
		{
			name: "games missing",
			setup: func(t *testing.T, p *config.Paths) {
				writeInputs(t, p, true)
				require.NoError(t, os.Remove(p.GamesCSV))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newPaths(t)
			tt.setup(t, p)

			err := NewFileValidator(nil).ValidateInputLayout(p)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNotFound))
		})
	}
}

func TestFileValidator_ProblemsListed(t *testing.T) {
	p := newPaths(t)
	writeInputs(t, p, false)
	require.NoError(t, os.Remove(p.BangsCSV))

	err := NewFileValidator(nil).ValidateInputLayout(p)
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	problems, ok := appErr.Context["problems"].([]string)
	require.True(t, ok)
	assert.Len(t, problems, 2)
	assert.Contains(t, problems[0], "bangs.csv")
	assert.Contains(t, problems[1], "no player game logs")
}

func TestFileValidator_ValidateOutputDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "output", "tables")
	require.NoError(t, NewFileValidator(nil).ValidateOutputDirectory(dir))
	assert.DirExists(t, dir)
	assert.NoFileExists(t, filepath.Join(dir, ".write_test"))
}

func TestFileValidator_ValidateCSVFile(t *testing.T) {
	dir := t.TempDir()
	txt := filepath.Join(dir, "games.txt")
	require.NoError(t, os.WriteFile(txt, []byte("x"), 0644))

	v := NewFileValidator(nil)
	err := v.ValidateCSVFile(txt)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a CSV file")

	err = v.ValidateCSVFile(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is a directory")

	err = v.ValidateCSVFile(filepath.Join(dir, "missing.csv"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}
