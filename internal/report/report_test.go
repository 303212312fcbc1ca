package report

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/user/bimmer_log_analyzer_go/internal/analysis"
	"github.com/user/bimmer_log_analyzer_go/internal/apperr"
	"github.com/user/bimmer_log_analyzer_go/internal/parser"
)

func analyze(t *testing.T, csv string) *analysis.AnalysisResults {
	t.Helper()
	table, err := parser.ReadTable(strings.NewReader(csv))
	require.NoError(t, err)
	results, err := analysis.AnalyzeSignals(table, analysis.DefaultOptions())
	require.NoError(t, err)
	return results
}

func longLog(rows int) string {
	var b strings.Builder
	b.WriteString("Time,Engine speed,Boost,Coolant,Gear\n")
	for i := 0; i < rows; i++ {
		fmt.Fprintf(&b, "%.1f,%d,%.2f,90,3\n", float64(i)/10, 800+i%3000, math.Sin(float64(i)/50))
	}
	return b.String()
}

func TestCreateSignalPlot(t *testing.T) {
	results := analyze(t, "Time,Engine speed,Throttle\n0,800,10\n1,900,10\n2,1000,20\n")

	img, err := CreateSignalPlot(results, results.Signals[0], PlotOptions{ReferenceLabel: "Engine speed (rpm)"})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(img, []byte("\x89PNG")))
}

func TestCreateSignalPlotCategoricalTimeAndGaps(t *testing.T) {
	results := analyze(t, "Time,Engine speed,Throttle\n12:00:00,800,10\n12:00:01,,x\n12:00:02,1000,20\n12:00:03,1100,25\n")

	img, err := CreateSignalPlot(results, results.Signals[0], PlotOptions{})
	require.NoError(t, err)
	assert.NotEmpty(t, img)
}

func TestBuildPDFReportOnePagePerSignal(t *testing.T) {
	results := analyze(t, longLog(2500))
	path := filepath.Join(t.TempDir(), "log_bimmerlink_report.pdf")

	summary, err := BuildPDFReport(path, results, ReportOptions{SourceName: "log.csv"})
	require.NoError(t, err)

	require.Len(t, summary.Pages, 1, "Coolant and Gear are constant")
	assert.Equal(t, "Boost", summary.Pages[0].Signal)
	assert.Equal(t, 1, summary.DocumentPages)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestBuildPDFReportPageOrder(t *testing.T) {
	results := analyze(t, "Oil,Time,Engine speed,Boost,Speed\n90,0,800,0.1,0\n91,1,900,0.2,5\n92,2,950,0.3,5\n")
	path := filepath.Join(t.TempDir(), "report.pdf")

	summary, err := BuildPDFReport(path, results, ReportOptions{})
	require.NoError(t, err)

	var signals []string
	for _, p := range summary.Pages {
		signals = append(signals, p.Signal)
	}
	assert.Equal(t, []string{"Oil", "Boost", "Speed"}, signals)
	assert.Equal(t, 3, summary.DocumentPages)
	assert.Equal(t, "Min: 90.00    Max: 92.00    Average: 91.00", summary.Pages[0].Caption)
}

func TestBuildPDFReportNoQualifyingSignals(t *testing.T) {
	results := analyze(t, "Time,Engine speed,Throttle\n0,800,5\n1,900,5\n2,1000,5\n")
	path := filepath.Join(t.TempDir(), "report.pdf")

	summary, err := BuildPDFReport(path, results, ReportOptions{})
	require.NoError(t, err)

	assert.Empty(t, summary.Pages)
	assert.Equal(t, 1, summary.DocumentPages, "notice page")
}

func TestBuildPDFReportUnwritableDestination(t *testing.T) {
	results := analyze(t, "Time,Engine speed,Throttle\n0,800,10\n1,900,20\n")
	path := filepath.Join(t.TempDir(), "missing-dir", "report.pdf")

	_, err := BuildPDFReport(path, results, ReportOptions{})
	assert.ErrorIs(t, err, apperr.ErrRender)
}

func TestWriteSummaryWorkbook(t *testing.T) {
	results := analyze(t, "Time,Engine speed,Throttle,Gear\n0,800,10,3\n1,900,10,3\n2,1000,20,3\n")
	path := filepath.Join(t.TempDir(), "summary.xlsx")

	require.NoError(t, WriteSummaryWorkbook(path, results))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(signalsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Signal", rows[0][0])
	assert.Equal(t, []string{"Throttle", "3", "3", "2", "10", "20"}, rows[1][:6])

	skipped, err := f.GetRows(skippedSheet)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Signal"}, {"Gear"}}, skipped)
}

func TestSegmentsBreakOnMissing(t *testing.T) {
	nan := math.NaN()
	segs := segments([]float64{0, 1, 2, 3, 4}, []float64{1, nan, 2, 3, nan})

	require.Len(t, segs, 2)
	assert.Len(t, segs[0], 1)
	assert.Len(t, segs[1], 2)
}

func TestSecondaryAxisMapping(t *testing.T) {
	a := secondaryAxis{lo: 0, hi: 8000, primLo: 10, primHi: 20}

	assert.Equal(t, 10.0, a.toPrimary(0))
	assert.Equal(t, 15.0, a.toPrimary(4000))
	assert.Equal(t, 20.0, a.toPrimary(8000))
}

func TestPadRange(t *testing.T) {
	lo, hi := padRange(10, 20)
	assert.InDelta(t, 9.5, lo, 1e-9)
	assert.InDelta(t, 20.5, hi, 1e-9)

	lo, hi = padRange(5, 5)
	assert.Less(t, lo, 5.0)
	assert.Greater(t, hi, 5.0)
}

func TestLabelTicks(t *testing.T) {
	labels := make([]string, 40)
	rows := make([]int, 40)
	for i := range labels {
		labels[i] = fmt.Sprintf("t%d", i)
		rows[i] = i
	}

	ticks := labelTicks(rows, labels)
	require.Len(t, ticks, 8)
	assert.Equal(t, "t0", ticks[0].Label)
	assert.Equal(t, "t5", ticks[1].Label)
}

// outlierLog has X=1 on every row except row 3, which a stride of 5 never plots.
func outlierLog(rows int) string {
	var b strings.Builder
	b.WriteString("Time,Engine speed,X\n")
	for i := 0; i < rows; i++ {
		x := 1
		if i == 3 {
			x = 999
		}
		fmt.Fprintf(&b, "%d,%d,%d\n", i, 1000+i, x)
	}
	return b.String()
}

func TestBuildPDFReportStatisticsUseFullSeries(t *testing.T) {
	results := analyze(t, outlierLog(5000))
	path := filepath.Join(t.TempDir(), "report.pdf")

	summary, err := BuildPDFReport(path, results, ReportOptions{Plot: PlotOptions{MaxPoints: 1000}})
	require.NoError(t, err)

	require.Len(t, summary.Pages, 1)
	assert.Equal(t, "Min: 1.00    Max: 999.00    Average: 1.20", summary.Pages[0].Caption)
}

func TestDownsampleKeepsSeriesAligned(t *testing.T) {
	results := analyze(t, outlierLog(5000))

	rows, xs, ys, refs := downsample(results, results.Signals[0], 1000)

	require.Len(t, rows, 1000)
	require.Len(t, xs, 1000)
	require.Len(t, ys, 1000)
	require.Len(t, refs, 1000)
	for i, row := range rows {
		require.Equal(t, i*5, row)
		assert.Equal(t, float64(row), xs[i], "time at row %d", row)
		assert.Equal(t, 1.0, ys[i], "signal at row %d", row)
		assert.Equal(t, float64(1000+row), refs[i], "reference at row %d", row)
	}
}

func TestDownsampleNoThinningForShortLogs(t *testing.T) {
	results := analyze(t, outlierLog(500))

	rows, _, ys, _ := downsample(results, results.Signals[0], 1000)

	assert.Len(t, rows, 500)
	assert.Equal(t, 999.0, ys[3])
}

func TestCreateSignalPlotWithInfiniteCells(t *testing.T) {
	results := analyze(t, "Time,Engine speed,AFR\n0,800,14.7\n1,850,inf\n2,900,13.1\n3,950,12.9\n")

	img, err := CreateSignalPlot(results, results.Signals[0], PlotOptions{})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(img, []byte("\x89PNG")))
}

func TestPageHeaderDropsUnprintableSource(t *testing.T) {
	assert.Equal(t, "drive.csv  |  signal 2 of 5", pageHeader("drive.csv", 2, 5))
	assert.Equal(t, "Fahrt_Öl.csv  |  signal 1 of 1", pageHeader("Fahrt_Öl.csv", 1, 1))
	assert.Equal(t, "signal 1 of 3", pageHeader("ログ.csv", 1, 3))
}

func TestNoSignalsNoticeFallsBack(t *testing.T) {
	assert.Contains(t, noSignalsNotice("Time", "Engine speed"), "'Engine speed'")
	assert.NotContains(t, noSignalsNotice("Time", "回転数"), "回転数")
}

func TestBuildPDFReportNonLatinSource(t *testing.T) {
	results := analyze(t, "Time,Engine speed,Throttle\n0,800,10\n1,900,20\n")
	path := filepath.Join(t.TempDir(), "report.pdf")

	summary, err := BuildPDFReport(path, results, ReportOptions{SourceName: "ログ.csv"})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.DocumentPages)
}

func TestWriteSummaryWorkbookInfiniteStatistics(t *testing.T) {
	results := analyze(t, "Time,Engine speed,AFR\n0,800,14.7\n1,850,inf\n2,900,13.1\n")
	path := filepath.Join(t.TempDir(), "summary.xlsx")

	require.NoError(t, WriteSummaryWorkbook(path, results))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(signalsSheet)
	require.NoError(t, err)
	assert.Equal(t, []string{"13.1", "inf", "inf"}, rows[1][4:7])
}
