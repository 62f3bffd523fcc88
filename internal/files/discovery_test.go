package files

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("Date,AB\n"), 0644))
	}
}

func TestFindCSVFiles(t *testing.T) {
	base := t.TempDir()
	players := filepath.Join(base, "players")
	require.NoError(t, os.MkdirAll(filepath.Join(players, "nested"), 0755))
	writeFiles(t, players,
		"jose_altuve.csv",
		"carlos_correa.CSV",
		"notes.txt",
		".hidden.csv",
		"~$george_springer.csv",
	)

	tests := []struct {
		name string
		dir  string
	}{
		{"relative to base", "players"},
		{"absolute", players},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found, err := NewDiscovery(base).FindCSVFiles(tt.dir)
			require.NoError(t, err)
			require.Len(t, found, 2)

			assert.Equal(t, "carlos_correa.CSV", found[0].Name)
			assert.Equal(t, "jose_altuve.csv", found[1].Name)
			assert.Equal(t, "jose_altuve", found[1].Stem())
			assert.Equal(t, filepath.Join(players, "jose_altuve.csv"), found[1].Path)
			assert.Positive(t, found[1].Size)
		})
	}
}

func TestFindCSVFilesMissingDir(t *testing.T) {
	_, err := NewDiscovery(t.TempDir()).FindCSVFiles("nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read directory")
}

func TestFindCSVFilesEmpty(t *testing.T) {
	found, err := NewDiscovery("").FindCSVFiles(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, found)
}
