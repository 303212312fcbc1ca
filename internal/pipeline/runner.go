// Package pipeline runs the sensor list and report steps for one exported
// log and reports the outcome as a single Result.
package pipeline

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/user/bimmer_log_analyzer_go/internal/analysis"
	"github.com/user/bimmer_log_analyzer_go/internal/apperr"
	"github.com/user/bimmer_log_analyzer_go/internal/config"
	"github.com/user/bimmer_log_analyzer_go/internal/parser"
	"github.com/user/bimmer_log_analyzer_go/internal/report"
	"github.com/user/bimmer_log_analyzer_go/internal/sensorlist"
)

// StatusFunc receives progress lines while a run is in progress.
type StatusFunc func(msg string)

// Result is the outcome of one run. Err is nil on success.
type Result struct {
	Paths    Paths
	Columns  []string // Trimmed header names written to the sensor list
	Pages    []report.PageInfo
	Skipped  []string
	Warnings []string
	Elapsed  time.Duration
	Err      error
}

// OK reports whether the run succeeded.
func (r Result) OK() bool { return r.Err == nil }

// Message is the text shown to the user for this result.
func (r Result) Message() string {
	if r.Err != nil {
		return fmt.Sprintf("An error occurred during processing:\n%v", r.Err)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Sensor/column list written to TXT file:\n%s\n\n", r.Paths.SensorList)
	fmt.Fprintf(&b, "Graphical report generated as PDF:\n%s", r.Paths.Report)
	if r.Paths.Workbook != "" {
		fmt.Fprintf(&b, "\n\nSignal statistics written to workbook:\n%s", r.Paths.Workbook)
	}
	return b.String()
}

// Runner executes runs with a fixed configuration.
type Runner struct {
	cfg    *config.Config
	log    *zap.Logger
	status StatusFunc
}

// NewRunner creates a Runner. A nil logger disables logging.
func NewRunner(cfg *config.Config, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{cfg: cfg, log: log}
}

// OnStatus registers fn to receive progress lines.
func (r *Runner) OnStatus(fn StatusFunc) {
	r.status = fn
}

func (r *Runner) sendStatus(msg string, fields ...zap.Field) {
	r.log.Info(msg, fields...)
	if r.status != nil {
		r.status(msg)
	}
}

// DerivePaths derives output paths for source using the runner's configuration.
func (r *Runner) DerivePaths(source string) (Paths, error) {
	return DerivePaths(source, r.cfg.Output)
}

// Run writes the sensor list and then the report for paths.Source. The first
// failure ends the run; it is returned in Result.Err, never panicked.
func (r *Runner) Run(paths Paths) (res Result) {
	start := time.Now()
	res.Paths = paths
	defer func() {
		if rec := recover(); rec != nil {
			res.Err = fmt.Errorf("%w: %v", apperr.ErrUnexpected, rec)
		}
		res.Elapsed = time.Since(start)
		if res.Err != nil {
			r.log.Error("run failed", zap.String("source", paths.Source), zap.Error(res.Err))
		} else {
			r.log.Info("run finished", zap.String("source", paths.Source), zap.Int("pages", len(res.Pages)), zap.Duration("elapsed", res.Elapsed))
		}
	}()

	r.sendStatus(fmt.Sprintf("Writing sensor list: %s", paths.SensorList))
	columns, err := sensorlist.Write(paths.Source, paths.SensorList)
	if err != nil {
		res.Err = err
		return res
	}
	res.Columns = columns
	r.sendStatus(fmt.Sprintf("Listed %d columns.", len(columns)))

	r.sendStatus(fmt.Sprintf("Parsing: %s", paths.Source))
	table, err := parser.ParseLogTable(paths.Source)
	if err != nil {
		res.Err = err
		return res
	}
	res.Warnings = append(res.Warnings, table.ParseErrors...)
	r.sendStatus(fmt.Sprintf("Parsed %d rows.", table.Rows))

	results, err := analysis.AnalyzeSignals(table, analysis.Options{
		TimeColumn:      r.cfg.Columns.Time,
		ReferenceColumn: r.cfg.Columns.Reference,
	})
	if err != nil {
		res.Err = err
		return res
	}
	res.Skipped = results.Skipped
	res.Warnings = append(res.Warnings, results.AnalysisErrors...)
	for _, w := range res.Warnings {
		r.log.Warn(w)
	}
	r.sendStatus(fmt.Sprintf("Analysis complete. %d signals to chart, %d skipped.", len(results.Signals), len(results.Skipped)))

	r.sendStatus(fmt.Sprintf("Generating PDF: %s...", paths.Report))
	summary, err := report.BuildPDFReport(paths.Report, results, report.ReportOptions{
		SourceName: filepath.Base(paths.Source),
		Plot: report.PlotOptions{
			ReferenceLabel: referenceLabel(r.cfg.Columns),
			MaxPoints:      r.cfg.Report.MaxPlotPoints,
		},
	})
	if err != nil {
		res.Err = err
		return res
	}
	res.Pages = summary.Pages

	if paths.Workbook != "" {
		r.sendStatus(fmt.Sprintf("Writing workbook: %s", paths.Workbook))
		if err := report.WriteSummaryWorkbook(paths.Workbook, results); err != nil {
			res.Err = err
			return res
		}
	}
	r.sendStatus("Done.")
	return res
}

func referenceLabel(cols config.ColumnsConfig) string {
	if cols.ReferenceUnit == "" {
		return cols.Reference
	}
	return fmt.Sprintf("%s (%s)", cols.Reference, cols.ReferenceUnit)
}
