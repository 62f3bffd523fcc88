package exporter

import (
	"strconv"
	"strings"
)

// cellValue converts a rendered table cell for a spreadsheet. Integers and
// decimals become numbers; dates, labels and empty (missing) cells stay text.
func cellValue(s string) any {
	if s == "" {
		return nil
	}
	if !strings.ContainsAny(s[:1], "0123456789-.") || strings.ContainsAny(s[1:], "-/:") {
		return s
	}
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

// sheetName fits a table name to the 31 character sheet name limit
func sheetName(name string) string {
	if len(name) > 31 {
		return name[:31]
	}
	return name
}
