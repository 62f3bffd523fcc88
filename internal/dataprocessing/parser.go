package dataprocessing

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	apperrors "bangreport/internal/errors"
)

// column identifies a logical field; aliases lists the accepted header
// spellings after normalization (lowercase, spaces to underscores).
type column struct {
	name     string
	aliases  []string
	required bool
}

// csvTable is a parsed CSV file with its resolved column positions
type csvTable struct {
	path    string
	header  []string
	rows    [][]string
	columns map[string]int
}

// normalizeHeader lowercases a header cell and joins words with underscores
func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.Join(strings.Fields(h), "_")
}

// readCSV reads path and maps the wanted columns by alias. A missing
// required column is a PARSING error.
func readCSV(path string, wanted []column) (*csvTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewStorageError(fmt.Sprintf("open %s", path), err)
	}
	defer f.Close()

	return parseCSV(f, path, wanted)
}

func parseCSV(r io.Reader, path string, wanted []column) (*csvTable, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, apperrors.NewParsingError(fmt.Sprintf("%s is empty", path), nil)
	}
	if err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("read header of %s", path), err)
	}

	positions := make(map[string]int, len(header))
	for i, h := range header {
		key := normalizeHeader(h)
		if _, seen := positions[key]; !seen && key != "" {
			positions[key] = i
		}
	}

	table := &csvTable{
		path:    path,
		header:  header,
		columns: make(map[string]int, len(wanted)),
	}

	var missing []string
	for _, col := range wanted {
		found := false
		for _, alias := range col.aliases {
			if idx, ok := positions[alias]; ok {
				table.columns[col.name] = idx
				found = true
				break
			}
		}
		if !found && col.required {
			missing = append(missing, col.name)
		}
	}
	if len(missing) > 0 {
		return nil, apperrors.NewParsingError(
			fmt.Sprintf("%s: missing required column(s) %s", path, strings.Join(missing, ", ")), nil).
			WithContext("header", header)
	}

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, apperrors.NewParsingError(fmt.Sprintf("read %s", path), err)
		}
		if isBlank(record) || isRepeatedHeader(record, header) {
			continue
		}
		table.rows = append(table.rows, record)
	}

	return table, nil
}

func isBlank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// isRepeatedHeader catches the header lines that exported game logs repeat
// every few rows.
func isRepeatedHeader(record, header []string) bool {
	if len(record) != len(header) {
		return false
	}
	for i := range record {
		if !strings.EqualFold(strings.TrimSpace(record[i]), strings.TrimSpace(header[i])) {
			return false
		}
	}
	return true
}

// has reports whether the logical column was found in the header
func (t *csvTable) has(name string) bool {
	_, ok := t.columns[name]
	return ok
}

// cell returns the trimmed cell for a logical column, "" when absent
func (t *csvTable) cell(row []string, name string) string {
	idx, ok := t.columns[name]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// count parses a counting cell. Blank or unparseable cells are zero.
func (t *csvTable) count(row []string, name string) int {
	s := strings.ReplaceAll(t.cell(row, name), ",", "")
	if s == "" {
		return 0
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f)
	}
	return 0
}
