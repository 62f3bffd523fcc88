package operations

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"bangreport/internal/analysis"
	"bangreport/internal/config"
	"bangreport/internal/dataprocessing"
	"bangreport/internal/exporter"
	"bangreport/internal/files"
	"bangreport/internal/infrastructure"
	"bangreport/internal/report"
)

// Step names
const (
	StepNameLoad      = "Load inputs"
	StepNameJoin      = "Join sources"
	StepNameAggregate = "Aggregate summaries"
	StepNameAnalyze   = "Statistical tests"
	StepNameRender    = "Render report"
	StepNameExport    = "Export tables"
)

// PDFPrinter prints a rendered HTML file to PDF
type PDFPrinter interface {
	Print(ctx context.Context, htmlPath, pdfPath string) error
}

// StageOptions carries what the report steps share
type StageOptions struct {
	Config  *config.Config
	Paths   *config.Paths
	Metrics *infrastructure.PipelineMetrics
	// PDF replaces the headless Chrome printer when set
	PDF PDFPrinter
}

// NewReportRegistry registers the six report steps in pipeline order
func NewReportRegistry(opts StageOptions, logger *slog.Logger) (*Registry, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.PDF == nil {
		opts.PDF = exporter.NewPDFPrinter(opts.Config.Export.PDFTimeout, logger)
	}

	r := NewRegistry()
	for _, step := range []Step{
		NewLoadStage(opts, logger),
		NewJoinStage(opts, logger),
		NewAggregateStage(logger),
		NewAnalyzeStage(opts, logger),
		NewRenderStage(opts, logger),
		NewExportStage(opts, logger),
	} {
		if err := r.Register(step); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// LoadStage reads every input CSV
type LoadStage struct {
	BaseStage
	opts   StageOptions
	logger *slog.Logger
}

// NewLoadStage creates the load step
func NewLoadStage(opts StageOptions, logger *slog.Logger) *LoadStage {
	return &LoadStage{
		BaseStage: NewBaseStage(StepIDLoad, StepNameLoad),
		opts:      opts,
		logger:    logger.With(slog.String("step", StepIDLoad)),
	}
}

// Validate checks that the input files exist
func (s *LoadStage) Validate(state *OperationState) error {
	return s.opts.Paths.ValidateRequiredFiles()
}

// Execute loads the dataset and records row counts per source
func (s *LoadStage) Execute(ctx context.Context, state *OperationState) error {
	ds, err := dataprocessing.NewLoader(s.logger).LoadAll(ctx, s.opts.Paths)
	if err != nil {
		return err
	}

	counts := ds.RowCounts()
	for source, rows := range counts {
		infrastructure.RecordRowsProcessed(ctx, s.opts.Metrics, source, rows)
	}
	state.SetContext(KeyDataset, ds)
	state.SetContext(KeyRowCounts, counts)
	return nil
}

// JoinStage attributes bangs to player-games and attaches results
type JoinStage struct {
	BaseStage
	opts   StageOptions
	logger *slog.Logger
}

// NewJoinStage creates the join step
func NewJoinStage(opts StageOptions, logger *slog.Logger) *JoinStage {
	return &JoinStage{
		BaseStage: NewBaseStage(StepIDJoin, StepNameJoin),
		opts:      opts,
		logger:    logger.With(slog.String("step", StepIDJoin)),
	}
}

// Validate requires the loaded dataset
func (s *JoinStage) Validate(state *OperationState) error {
	_, err := Require[*dataprocessing.Dataset](state, KeyDataset)
	return err
}

// Execute joins the dataset
func (s *JoinStage) Execute(ctx context.Context, state *OperationState) error {
	ds, err := Require[*dataprocessing.Dataset](state, KeyDataset)
	if err != nil {
		return err
	}

	season := s.opts.Config.Season
	jd, jr := dataprocessing.NewJoiner(s.logger, season.Year, season.NameAliases).Join(ctx, ds)
	state.SetContext(KeyJoined, jd)
	state.SetContext(KeyJoinReport, jr)
	return nil
}

// AggregateStage builds the summary tables
type AggregateStage struct {
	BaseStage
	logger *slog.Logger
}

// NewAggregateStage creates the aggregate step
func NewAggregateStage(logger *slog.Logger) *AggregateStage {
	return &AggregateStage{
		BaseStage: NewBaseStage(StepIDAggregate, StepNameAggregate),
		logger:    logger.With(slog.String("step", StepIDAggregate)),
	}
}

// Validate requires the joined data
func (s *AggregateStage) Validate(state *OperationState) error {
	_, err := Require[*dataprocessing.JoinedData](state, KeyJoined)
	return err
}

// Execute aggregates the joined data
func (s *AggregateStage) Execute(ctx context.Context, state *OperationState) error {
	jd, err := Require[*dataprocessing.JoinedData](state, KeyJoined)
	if err != nil {
		return err
	}
	state.SetContext(KeySummaries, dataprocessing.NewAggregator(s.logger).Aggregate(ctx, jd))
	return ctx.Err()
}

// AnalyzeStage runs the t-test, regression and correlations
type AnalyzeStage struct {
	BaseStage
	opts   StageOptions
	logger *slog.Logger
}

// NewAnalyzeStage creates the analyze step
func NewAnalyzeStage(opts StageOptions, logger *slog.Logger) *AnalyzeStage {
	return &AnalyzeStage{
		BaseStage: NewBaseStage(StepIDAnalyze, StepNameAnalyze),
		opts:      opts,
		logger:    logger.With(slog.String("step", StepIDAnalyze)),
	}
}

// Validate requires the joined data and the summaries
func (s *AnalyzeStage) Validate(state *OperationState) error {
	if _, err := Require[*dataprocessing.JoinedData](state, KeyJoined); err != nil {
		return err
	}
	_, err := Require[*dataprocessing.Summaries](state, KeySummaries)
	return err
}

// Execute runs the statistical tests. Tests that cannot be computed are
// recorded in the results, not returned as errors.
func (s *AnalyzeStage) Execute(ctx context.Context, state *OperationState) error {
	jd, err := Require[*dataprocessing.JoinedData](state, KeyJoined)
	if err != nil {
		return err
	}
	sums, err := Require[*dataprocessing.Summaries](state, KeySummaries)
	if err != nil {
		return err
	}

	res, err := analysis.NewAnalyzer(s.opts.Config.Analysis, s.logger).Run(ctx, jd, sums)
	if err != nil {
		return err
	}
	state.SetContext(KeyResults, res)
	return nil
}

// reportInputs are what render and export both need
type reportInputs struct {
	rowCounts map[string]int
	jr        dataprocessing.JoinReport
	sums      *dataprocessing.Summaries
	res       *analysis.Results
}

func requireReportInputs(state *OperationState) (reportInputs, error) {
	var in reportInputs
	var err error
	if in.rowCounts, err = Require[map[string]int](state, KeyRowCounts); err != nil {
		return in, err
	}
	if in.jr, err = Require[dataprocessing.JoinReport](state, KeyJoinReport); err != nil {
		return in, err
	}
	if in.sums, err = Require[*dataprocessing.Summaries](state, KeySummaries); err != nil {
		return in, err
	}
	if in.res, err = Require[*analysis.Results](state, KeyResults); err != nil {
		return in, err
	}
	return in, nil
}

// RenderStage draws the charts and writes report.html
type RenderStage struct {
	BaseStage
	opts   StageOptions
	files  *files.Manager
	logger *slog.Logger
}

// NewRenderStage creates the render step
func NewRenderStage(opts StageOptions, logger *slog.Logger) *RenderStage {
	logger = logger.With(slog.String("step", StepIDRender))
	return &RenderStage{
		BaseStage: NewBaseStage(StepIDRender, StepNameRender),
		opts:      opts,
		files:     files.NewManager(logger),
		logger:    logger,
	}
}

// Validate requires every value the report shows
func (s *RenderStage) Validate(state *OperationState) error {
	_, err := requireReportInputs(state)
	return err
}

// Execute renders the charts to SVG files and the HTML report
func (s *RenderStage) Execute(ctx context.Context, state *OperationState) error {
	in, err := requireReportInputs(state)
	if err != nil {
		return err
	}
	if err := s.opts.Paths.EnsureDirectories(); err != nil {
		return err
	}

	charts, err := report.Charts(in.sums, in.res)
	if err != nil {
		return err
	}
	for _, c := range charts {
		path := s.opts.Paths.GetChartPath(c.Name)
		if err := s.files.WriteFile(path, c.SVG); err != nil {
			return fmt.Errorf("write chart %s: %w", c.Name, err)
		}
		state.AddOutput(path)
	}
	state.SetContext(KeyCharts, charts)

	renderer, err := report.NewRenderer(s.logger)
	if err != nil {
		return err
	}
	season := s.opts.Config.Season
	doc := report.NewDocument(season.Team, season.Year, in.rowCounts, in.jr, in.sums, in.res, charts)
	err = s.files.WriteWith(s.opts.Paths.ReportHTML, func(w io.Writer) error {
		return renderer.Render(ctx, w, doc)
	})
	if err != nil {
		return err
	}
	state.AddOutput(s.opts.Paths.ReportHTML)

	s.logger.InfoContext(ctx, "Report rendered",
		slog.String("path", s.opts.Paths.ReportHTML),
		slog.Int("charts", len(charts)))
	return nil
}

// ExportStage writes the CSV tables, workbook, JSON bundle and PDF
type ExportStage struct {
	BaseStage
	opts   StageOptions
	files  *files.Manager
	logger *slog.Logger
}

// NewExportStage creates the export step
func NewExportStage(opts StageOptions, logger *slog.Logger) *ExportStage {
	logger = logger.With(slog.String("step", StepIDExport))
	return &ExportStage{
		BaseStage: NewBaseStage(StepIDExport, StepNameExport),
		opts:      opts,
		files:     files.NewManager(logger),
		logger:    logger,
	}
}

// Validate requires the summaries and results
func (s *ExportStage) Validate(state *OperationState) error {
	_, err := requireReportInputs(state)
	return err
}

// Execute writes every enabled format. A PDF failure is logged and skipped.
func (s *ExportStage) Execute(ctx context.Context, state *OperationState) error {
	in, err := requireReportInputs(state)
	if err != nil {
		return err
	}
	if err := s.opts.Paths.EnsureDirectories(); err != nil {
		return err
	}

	export := s.opts.Config.Export
	season := s.opts.Config.Season
	paths := s.opts.Paths
	tables := in.sums.Tables()

	if export.CSV {
		written, err := exporter.NewCSVWriter(paths, s.logger).WriteTables(ctx, tables, export.BOM)
		state.AddOutput(written...)
		if err != nil {
			return err
		}
	}

	if export.Workbook {
		if err := exporter.NewWorkbookWriter(s.logger).Write(ctx, paths.ReportXLSX, tables); err != nil {
			return err
		}
		state.AddOutput(paths.ReportXLSX)
	}

	if export.JSON {
		bundle := exporter.NewBundle(season.Team, season.Year, in.rowCounts, in.jr, in.sums, in.res)
		if err := exporter.WriteJSON(ctx, s.files, paths.ReportJSON, bundle); err != nil {
			return err
		}
		state.AddOutput(paths.ReportJSON)
	}

	if export.PDF {
		switch {
		case !config.FileExists(paths.ReportHTML):
			s.logger.WarnContext(ctx, "PDF skipped, report not rendered",
				slog.String("html", paths.ReportHTML))
		default:
			if err := s.opts.PDF.Print(ctx, paths.ReportHTML, paths.ReportPDF); err != nil {
				s.logger.WarnContext(ctx, "PDF export failed, continuing without it",
					slog.String("error", err.Error()))
			} else {
				state.AddOutput(paths.ReportPDF)
			}
		}
	}

	return nil
}
