package analysis

import (
	"context"
	"log/slog"

	"bangreport/internal/config"
	"bangreport/internal/dataprocessing"
	"bangreport/pkg/contracts/domain"
)

// Correlation names
const (
	CorrBangsRuns       = "bangs_vs_runs"
	CorrSeasonOPSBangPA = "season_ops_vs_bangs_per_pa"
)

// Analyzer runs the configured tests over joined season data
type Analyzer struct {
	cfg    config.AnalysisConfig
	logger *slog.Logger
}

// NewAnalyzer creates an analyzer
func NewAnalyzer(cfg config.AnalysisConfig, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{cfg: cfg, logger: logger.With("component", "analyzer")}
}

// Run computes every test. Only cancellation is returned as an error;
// a test that cannot be computed keeps its error on the result.
func (a *Analyzer) Run(ctx context.Context, jd *dataprocessing.JoinedData, s *dataprocessing.Summaries) (*Results, error) {
	res := &Results{Alpha: a.cfg.Alpha}

	res.TTest = a.ttest(jd)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	res.Regression = a.regression(jd)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	res.Correlations = []CorrelationResult{a.bangsRuns(jd), a.seasonOPS(s)}

	for _, name := range res.Failed() {
		a.logger.WarnContext(ctx, "Statistical test could not be computed", slog.String("test", name))
	}
	a.logger.InfoContext(ctx, "Analysis complete",
		slog.String("metric", res.TTest.Metric),
		slog.Any("t", res.TTest.T),
		slog.Any("p_value", res.TTest.PValue),
		slog.Int("regression_n", res.Regression.N))
	return res, nil
}

// Metric returns the configured per-player-game statistic
func Metric(name string, l domain.BattingLine) float64 {
	switch name {
	case "avg":
		return l.AVG()
	case "obp":
		return l.OBP()
	case "slg":
		return l.SLG()
	default:
		return l.OPS()
	}
}

func (a *Analyzer) ttest(jd *dataprocessing.JoinedData) TTestResult {
	metric := a.cfg.TTestMetric
	if metric == "" {
		metric = "ops"
	}

	var with, without []float64
	for _, pg := range jd.PlayerGames {
		if pg.PA() < a.cfg.MinPlateAppearances {
			continue
		}
		v := Metric(metric, pg.BattingLine)
		if pg.HadBang {
			with = append(with, v)
		} else {
			without = append(without, v)
		}
	}

	res, err := TTest(with, without, a.cfg.EqualVariance)
	res.Metric = metric
	res.GroupA = "games with bang"
	res.GroupB = "games without bang"
	if err != nil {
		res.Err = err.Error()
		return res
	}
	res.Significant = float64(res.PValue) < a.cfg.Alpha
	return res
}

// regression fits runs scored on bangs per game. The home dummy is added
// only when both venues appear among the games with a result.
func (a *Analyzer) regression(jd *dataprocessing.JoinedData) RegressionResult {
	var games []dataprocessing.JoinedGame
	venues := map[domain.HomeAway]bool{}
	for _, g := range jd.Games {
		if g.Result == nil {
			continue
		}
		games = append(games, g)
		venues[g.HomeAway] = true
	}

	withHome := venues[domain.Home] && venues[domain.Away]
	predictors := []string{"bangs"}
	if withHome {
		predictors = append(predictors, "home")
	}

	y := make([]float64, 0, len(games))
	x := make([][]float64, 0, len(games))
	for _, g := range games {
		row := []float64{float64(g.Bangs)}
		if withHome {
			row = append(row, homeDummy(g.HomeAway))
		}
		y = append(y, float64(g.Result.RunsScored))
		x = append(x, row)
	}

	res, err := OLS("runs_scored", y, predictors, x)
	if err != nil {
		res.Err = err.Error()
	}
	return res
}

func homeDummy(h domain.HomeAway) float64 {
	switch h {
	case domain.Home:
		return 1
	case domain.Away:
		return 0
	default:
		return domain.MissingRate().Float()
	}
}

func (a *Analyzer) bangsRuns(jd *dataprocessing.JoinedData) CorrelationResult {
	var x, y []float64
	for _, g := range jd.Games {
		if g.Result == nil {
			continue
		}
		x = append(x, float64(g.Bangs))
		y = append(y, float64(g.Result.RunsScored))
	}
	return a.correlate(CorrBangsRuns, "bangs", "runs_scored", x, y)
}

func (a *Analyzer) seasonOPS(s *dataprocessing.Summaries) CorrelationResult {
	var x, y []float64
	for _, p := range s.Players {
		x = append(x, p.BangsPerPA.Float())
		y = append(y, p.SeasonOPS.Float())
	}
	return a.correlate(CorrSeasonOPSBangPA, "bangs_per_pa", "season_ops", x, y)
}

func (a *Analyzer) correlate(name, xName, yName string, x, y []float64) CorrelationResult {
	res, err := Pearson(x, y)
	res.Name, res.X, res.Y = name, xName, yName
	if err != nil {
		res.Err = err.Error()
		return res
	}
	res.Significant = float64(res.PValue) < a.cfg.Alpha
	return res
}
