package report

import (
	"bytes"
	"fmt"
	"html/template"
	"image/color"
	"sort"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"bangreport/internal/analysis"
	"bangreport/internal/dataprocessing"
	"bangreport/pkg/contracts/domain"
)

// Chart names, also used as SVG file stems
const (
	ChartMonthly       = "bangs_by_month"
	ChartInnings       = "bangs_by_inning"
	ChartCounts        = "bangs_by_count"
	ChartPitchCategory = "bangs_by_pitch_category"
	ChartPlayerOPS     = "ops_by_player"
	ChartRunsVsBangs   = "runs_vs_bangs"
)

const (
	chartWidth  = 6 * vg.Inch
	chartHeight = 3.5 * vg.Inch
)

var barColor = color.RGBA{R: 0xeb, G: 0x6e, B: 0x1f, A: 0xff}

// Chart is a rendered SVG figure
type Chart struct {
	Name  string
	Title string
	SVG   []byte
}

// HTML returns the SVG for inline embedding
func (c Chart) HTML() template.HTML {
	return template.HTML(c.SVG) //nolint:gosec // generated by gonum/plot
}

// Charts draws every figure that has data. Tables with no rows produce no
// chart.
func Charts(s *dataprocessing.Summaries, res *analysis.Results) ([]Chart, error) {
	var charts []Chart
	add := func(c *Chart, err error) error {
		if err != nil {
			return err
		}
		if c != nil {
			charts = append(charts, *c)
		}
		return nil
	}

	var months []string
	var monthBangs []float64
	for _, m := range s.Monthly {
		months = append(months, m.Month)
		monthBangs = append(monthBangs, float64(m.Bangs))
	}
	if err := add(barChart(ChartMonthly, "Bangs per month", "Bangs", months, monthBangs)); err != nil {
		return nil, err
	}

	for _, b := range []struct {
		name, title string
		rows        []dataprocessing.BreakdownRow
	}{
		{ChartInnings, "Bangs per inning", s.Innings},
		{ChartCounts, "Bangs per count", s.Counts},
		{ChartPitchCategory, "Bangs per pitch category", s.PitchCategories},
	} {
		labels, values := breakdownSeries(b.rows)
		if err := add(barChart(b.name, b.title, "Bangs", labels, values)); err != nil {
			return nil, err
		}
	}

	if err := add(playerOPSChart(s.Players)); err != nil {
		return nil, err
	}
	if err := add(runsScatter(s.Games, res)); err != nil {
		return nil, err
	}
	return charts, nil
}

func breakdownSeries(rows []dataprocessing.BreakdownRow) ([]string, []float64) {
	labels := make([]string, len(rows))
	values := make([]float64, len(rows))
	for i, r := range rows {
		labels[i] = r.Key
		values[i] = float64(r.Bangs)
	}
	return labels, values
}

func barChart(name, title, yLabel string, labels []string, values []float64) (*Chart, error) {
	if len(values) == 0 {
		return nil, nil
	}

	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = yLabel
	p.Y.Min = 0

	bars, err := plotter.NewBarChart(plotter.Values(values), vg.Points(18))
	if err != nil {
		return nil, fmt.Errorf("chart %s: %w", name, err)
	}
	bars.Color = barColor
	bars.LineStyle.Width = 0
	p.Add(bars)
	p.NominalX(labels...)

	return render(name, title, p)
}

// playerOPSChart draws grouped bars of OPS with and without bangs. A
// missing OPS is drawn as an empty bar.
func playerOPSChart(players []dataprocessing.PlayerRow) (*Chart, error) {
	if len(players) == 0 {
		return nil, nil
	}

	names := make([]string, len(players))
	with := make(plotter.Values, len(players))
	without := make(plotter.Values, len(players))
	for i, pr := range players {
		names[i] = pr.Player
		with[i] = orZero(pr.OPSWithBang)
		without[i] = orZero(pr.OPSWithoutBang)
	}

	p := plot.New()
	p.Title.Text = "OPS with and without bangs"
	p.Y.Label.Text = "OPS"
	p.Y.Min = 0

	w := vg.Points(14)
	withBars, err := plotter.NewBarChart(with, w)
	if err != nil {
		return nil, fmt.Errorf("chart %s: %w", ChartPlayerOPS, err)
	}
	withBars.Color = barColor
	withBars.LineStyle.Width = 0
	withBars.Offset = -w / 2

	withoutBars, err := plotter.NewBarChart(without, w)
	if err != nil {
		return nil, fmt.Errorf("chart %s: %w", ChartPlayerOPS, err)
	}
	withoutBars.Color = plotutil.Color(2)
	withoutBars.LineStyle.Width = 0
	withoutBars.Offset = w / 2

	p.Add(withBars, withoutBars)
	p.Legend.Add("with bang", withBars)
	p.Legend.Add("without bang", withoutBars)
	p.Legend.Top = true
	p.NominalX(names...)

	return render(ChartPlayerOPS, p.Title.Text, p)
}

// runsScatter plots runs scored against bangs per game with the fitted
// regression line, one line per venue when the fit has a home term.
func runsScatter(games []dataprocessing.GameRow, res *analysis.Results) (*Chart, error) {
	var pts plotter.XYs
	maxBangs := 0.0
	for _, g := range games {
		if g.RunsScored == nil {
			continue
		}
		x := float64(g.Bangs)
		pts = append(pts, plotter.XY{X: x, Y: float64(*g.RunsScored)})
		if x > maxBangs {
			maxBangs = x
		}
	}
	if len(pts) == 0 {
		return nil, nil
	}

	p := plot.New()
	p.Title.Text = "Runs scored vs bangs"
	p.X.Label.Text = "Bangs"
	p.Y.Label.Text = "Runs scored"

	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, fmt.Errorf("chart %s: %w", ChartRunsVsBangs, err)
	}
	scatter.GlyphStyle.Shape = draw.CircleGlyph{}
	scatter.GlyphStyle.Color = barColor
	p.Add(scatter)

	if res != nil && res.Regression.Err == "" {
		reg := res.Regression
		intercept, _ := reg.Coefficient(analysis.InterceptName)
		slope, ok := reg.Coefficient("bangs")
		if ok {
			fits := map[string]float64{"fit": intercept.Estimate}
			if home, ok := reg.Coefficient("home"); ok {
				fits = map[string]float64{
					"fit (away)": intercept.Estimate,
					"fit (home)": intercept.Estimate + home.Estimate,
				}
			}
			i := 0
			for _, label := range sortedKeys(fits) {
				line, err := plotter.NewLine(plotter.XYs{
					{X: 0, Y: fits[label]},
					{X: maxBangs, Y: fits[label] + slope.Estimate*maxBangs},
				})
				if err != nil {
					return nil, fmt.Errorf("chart %s: %w", ChartRunsVsBangs, err)
				}
				line.Color = plotutil.Color(i)
				line.Dashes = plotutil.Dashes(i)
				p.Add(line)
				p.Legend.Add(label, line)
				i++
			}
		}
	}

	return render(ChartRunsVsBangs, p.Title.Text, p)
}

func render(name, title string, p *plot.Plot) (*Chart, error) {
	wt, err := p.WriterTo(chartWidth, chartHeight, "svg")
	if err != nil {
		return nil, fmt.Errorf("chart %s: %w", name, err)
	}

	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("chart %s: %w", name, err)
	}

	// drop the XML prolog so the SVG can be inlined
	svg := buf.String()
	if i := strings.Index(svg, "<svg"); i > 0 {
		svg = svg[i:]
	}
	return &Chart{Name: name, Title: title, SVG: []byte(svg)}, nil
}

func orZero(r domain.Rate) float64 {
	if r.Missing() {
		return 0
	}
	return r.Float()
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
