package exporter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"bangreport/internal/analysis"
	"bangreport/internal/dataprocessing"
	apperrors "bangreport/internal/errors"
	"bangreport/internal/files"
	"bangreport/pkg/contracts"
)

// Metadata describes the run that produced a bundle
type Metadata struct {
	Format      string         `json:"format"`
	Version     string         `json:"version"`
	GeneratedAt time.Time      `json:"generated_at"`
	Team        string         `json:"team"`
	Year        int            `json:"year"`
	RowCounts   map[string]int `json:"row_counts"`
}

// Bundle is the machine-readable report. The HTTP server reads it back.
type Bundle struct {
	Metadata   Metadata                  `json:"metadata"`
	JoinReport dataprocessing.JoinReport `json:"join_report"`
	Summaries  *dataprocessing.Summaries `json:"summaries"`
	Tables     []dataprocessing.Table    `json:"tables"`
	Analysis   *analysis.Results         `json:"analysis"`
}

// NewBundle assembles a bundle stamped with the current version
func NewBundle(team string, year int, rowCounts map[string]int, jr dataprocessing.JoinReport,
	s *dataprocessing.Summaries, res *analysis.Results) *Bundle {
	b := &Bundle{
		Metadata: Metadata{
			Format:      contracts.DataFormatVersion,
			Version:     contracts.Version,
			GeneratedAt: time.Now().UTC(),
			Team:        team,
			Year:        year,
			RowCounts:   rowCounts,
		},
		JoinReport: jr,
		Summaries:  s,
		Analysis:   res,
	}
	if s != nil {
		b.Tables = s.Tables()
	}
	return b
}

// Table returns the named table from the bundle
func (b *Bundle) Table(name string) (dataprocessing.Table, bool) {
	for _, t := range b.Tables {
		if t.Name == name {
			return t, true
		}
	}
	return dataprocessing.Table{}, false
}

// WriteJSON writes the bundle to path, indented
func WriteJSON(ctx context.Context, m *files.Manager, path string, b *Bundle) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := m.WriteWith(path, func(out io.Writer) error {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(b)
	})
	if err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("write %s", path), err)
	}
	return nil
}

// ReadJSON loads a bundle written by WriteJSON
func ReadJSON(r io.Reader) (*Bundle, error) {
	var b Bundle
	if err := json.NewDecoder(r).Decode(&b); err != nil {
		return nil, apperrors.NewParsingError("decode report bundle", err)
	}
	return &b, nil
}
