// Package report renders the season analysis as a single HTML page.
//
// Charts are drawn with gonum.org/v1/plot and inlined as SVG. The page
// template is embedded in the binary and executed with html/template.
package report
