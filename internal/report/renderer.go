package report

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"bangreport/internal/analysis"
	"bangreport/internal/dataprocessing"
	apperrors "bangreport/internal/errors"
	"bangreport/pkg/contracts"
	"bangreport/pkg/contracts/domain"
)

//go:embed templates/report.html.tmpl
var templateFS embed.FS

// Document is everything the report page shows
type Document struct {
	Title       string
	Team        string
	Year        int
	Version     string
	GeneratedAt time.Time
	RowCounts   map[string]int
	JoinReport  dataprocessing.JoinReport
	Summaries   *dataprocessing.Summaries
	Tables      []dataprocessing.Table
	Results     *analysis.Results
	Charts      []Chart
	Narrative   []string
}

// NewDocument assembles a document and writes its narrative
func NewDocument(team string, year int, rowCounts map[string]int, jr dataprocessing.JoinReport,
	s *dataprocessing.Summaries, res *analysis.Results, charts []Chart) *Document {
	doc := &Document{
		Title:       fmt.Sprintf("Trash-can bangs and %s batting, %d", team, year),
		Team:        team,
		Year:        year,
		Version:     contracts.Version,
		GeneratedAt: time.Now().UTC(),
		RowCounts:   rowCounts,
		JoinReport:  jr,
		Summaries:   s,
		Results:     res,
		Charts:      charts,
	}
	if s != nil {
		doc.Tables = s.Tables()
	}
	doc.Narrative = Narrative(s, res)
	return doc
}

var funcs = template.FuncMap{
	"rate": rateText,
	"fixed": func(f float64, decimals int) string {
		return strconv.FormatFloat(f, 'f', decimals, 64)
	},
	"join": strings.Join,
}

// Renderer executes the report template
type Renderer struct {
	tmpl   *template.Template
	logger *slog.Logger
}

// NewRenderer parses the embedded template
func NewRenderer(logger *slog.Logger) (*Renderer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	tmpl, err := template.New("report.html.tmpl").Funcs(funcs).ParseFS(templateFS, "templates/report.html.tmpl")
	if err != nil {
		return nil, apperrors.NewRenderError("parse report template", err)
	}
	return &Renderer{tmpl: tmpl, logger: logger.With("component", "renderer")}, nil
}

// Render writes the HTML report for doc to w
func (r *Renderer) Render(ctx context.Context, w io.Writer, doc *Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := r.tmpl.Execute(w, doc); err != nil {
		return apperrors.NewRenderError("execute report template", err)
	}

	r.logger.InfoContext(ctx, "Rendered report",
		slog.Int("tables", len(doc.Tables)),
		slog.Int("charts", len(doc.Charts)))
	return nil
}

// Narrative writes the summary paragraphs from the numbers
func Narrative(s *dataprocessing.Summaries, res *analysis.Results) []string {
	var out []string
	if s == nil {
		return out
	}

	games := len(s.Games)
	gamesWithBangs := 0
	for _, g := range s.Games {
		if g.Bangs > 0 {
			gamesWithBangs++
		}
	}
	out = append(out, fmt.Sprintf(
		"The bang log records %d bangs across %d of %d games.",
		s.TotalBangs, gamesWithBangs, games))

	if len(s.Monthly) > 0 {
		busiest := s.Monthly[0]
		for _, m := range s.Monthly[1:] {
			if m.Bangs > busiest.Bangs {
				busiest = m
			}
		}
		out = append(out, fmt.Sprintf(
			"The busiest month was %s with %d bangs (%s per game).",
			busiest.Month, busiest.Bangs, rateText(busiest.BangsPerGame, 2)))
	}

	if len(s.PitchCategories) > 0 && len(s.Counts) > 0 {
		top, count := s.PitchCategories[0], topBreakdown(s.Counts)
		out = append(out, fmt.Sprintf(
			"The most common pitch category during a bang was %s (%s of bangs); the most common count was %s.",
			top.Key, percent(top.Share), count.Key))
	}

	if len(s.BangSplit) == 2 {
		with, without := s.BangSplit[0], s.BangSplit[1]
		out = append(out, fmt.Sprintf(
			"In %d player-games with at least one bang, hitters posted a %s OPS, against %s in %d player-games without one.",
			with.Games, rateText(with.OPS, 3), rateText(without.OPS, 3), without.Games))
	}

	if res == nil {
		return out
	}

	tt := res.TTest
	if tt.Err == "" {
		verdict := "is not statistically significant"
		if tt.Significant {
			verdict = "is statistically significant"
		}
		out = append(out, fmt.Sprintf(
			"The difference in mean per-game %s (%.3f vs %.3f) %s at the %.2f level (t = %s, p = %s).",
			strings.ToUpper(tt.Metric), tt.MeanA, tt.MeanB, verdict, res.Alpha, rateText(tt.T, 2), rateText(tt.PValue, 3)))
	}

	if reg := res.Regression; reg.Err == "" {
		if c, ok := reg.Coefficient("bangs"); ok {
			out = append(out, fmt.Sprintf(
				"Across %d games, each additional bang is associated with %+.2f runs scored (p = %s, R² = %s).",
				reg.N, c.Estimate, rateText(c.PValue, 3), rateText(reg.RSquared, 2)))
		}
	}
	return out
}

// topBreakdown returns the row with the most bangs
func topBreakdown(rows []dataprocessing.BreakdownRow) dataprocessing.BreakdownRow {
	top := rows[0]
	for _, r := range rows[1:] {
		if r.Bangs > top.Bangs {
			top = r
		}
	}
	return top
}

func rateText(r domain.Rate, decimals int) string {
	if r.Missing() {
		return "n/a"
	}
	return r.Format(decimals)
}

func percent(r domain.Rate) string {
	if r.Missing() {
		return "n/a"
	}
	return strconv.FormatFloat(r.Float()*100, 'f', 0, 64) + "%"
}
