package analysis

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/montanaflynn/stats"

	"github.com/user/bimmer_log_analyzer_go/internal/apperr"
	"github.com/user/bimmer_log_analyzer_go/internal/parser"
)

// minDistinct is the number of distinct values a signal needs to be charted.
const minDistinct = 2

// ParseNumeric converts a cell to a float. Surrounding whitespace is ignored.
// "inf" and "-inf" are values; "nan" is missing like any unparseable cell.
func ParseNumeric(cell string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil || math.IsNaN(v) {
		return math.NaN(), false
	}
	return v, true
}

// CoerceNumeric converts cells to floats; anything that does not parse becomes NaN.
func CoerceNumeric(cells []string) []float64 {
	out := make([]float64, len(cells))
	for i, cell := range cells {
		out[i], _ = ParseNumeric(cell)
	}
	return out
}

// validValues returns the non-NaN entries of series.
func validValues(series []float64) []float64 {
	valid := make([]float64, 0, len(series))
	for _, v := range series {
		if !math.IsNaN(v) {
			valid = append(valid, v)
		}
	}
	return valid
}

func countDistinct(values []float64) int {
	seen := make(map[float64]struct{}, len(values))
	for _, v := range values {
		seen[v] = struct{}{}
	}
	return len(seen)
}

// Stride returns the row interval used to thin a series of rows rows down
// to about maxPoints for plotting.
func Stride(rows, maxPoints int) int {
	if maxPoints < 1 {
		maxPoints = 1
	}
	return max(rows/maxPoints, 1)
}

// DownsampleIndices returns the rows 0, stride, 2*stride, ... below rows.
func DownsampleIndices(rows, stride int) []int {
	if stride < 1 {
		stride = 1
	}
	idx := make([]int, 0, (rows+stride-1)/stride)
	for i := 0; i < rows; i += stride {
		idx = append(idx, i)
	}
	return idx
}

func buildTimeAxis(cells []string) TimeAxis {
	axis := TimeAxis{
		Values:  make([]float64, len(cells)),
		Labels:  cells,
		Numeric: true,
	}
	anyValue := false
	for i, cell := range cells {
		if strings.TrimSpace(cell) == "" {
			axis.Values[i] = math.NaN()
			continue
		}
		v, ok := ParseNumeric(cell)
		if !ok {
			axis.Numeric = false
			break
		}
		axis.Values[i] = v
		anyValue = true
	}
	if !axis.Numeric || !anyValue {
		axis.Numeric = false
		for i := range axis.Values {
			axis.Values[i] = float64(i)
		}
	}
	return axis
}

// SummarizeSignal computes the statistics of a coerced series. ok is false
// when the series has fewer than two distinct values.
func SummarizeSignal(name string, column int, series []float64) (SignalResult, bool, error) {
	res := SignalResult{
		Name:        name,
		ColumnIndex: column,
		Values:      series,
		Min:         math.NaN(),
		Max:         math.NaN(),
		Mean:        math.NaN(),
	}
	valid := validValues(series)
	res.NumValid = len(valid)
	res.NumDistinct = countDistinct(valid)
	if res.NumDistinct < minDistinct {
		return res, false, nil
	}

	var err error
	if res.Min, err = stats.Min(valid); err != nil {
		return res, false, fmt.Errorf("min of %q: %w", name, err)
	}
	if res.Max, err = stats.Max(valid); err != nil {
		return res, false, fmt.Errorf("max of %q: %w", name, err)
	}
	if res.Mean, err = stats.Mean(valid); err != nil {
		return res, false, fmt.Errorf("mean of %q: %w", name, err)
	}
	return res, true, nil
}

// AnalyzeSignals checks that the time and reference columns exist, then
// summarizes every other column of table. Columns without at least two
// distinct numeric values are listed in Skipped instead of Signals.
func AnalyzeSignals(table *parser.Table, opts Options) (*AnalysisResults, error) {
	if table == nil {
		return nil, fmt.Errorf("%w: no table loaded", apperr.ErrUnexpected)
	}

	var missing []string
	for _, name := range []string{opts.TimeColumn, opts.ReferenceColumn} {
		if !table.Has(name) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &apperr.SchemaError{Missing: missing}
	}

	timeCells, _ := table.Column(opts.TimeColumn)
	refCells, _ := table.Column(opts.ReferenceColumn)

	results := &AnalysisResults{
		TimeColumn:      opts.TimeColumn,
		ReferenceColumn: opts.ReferenceColumn,
		RowCount:        table.Rows,
		Time:            buildTimeAxis(timeCells),
		Reference:       CoerceNumeric(refCells),
		Signals:         make([]SignalResult, 0, len(table.Columns)),
		Skipped:         make([]string, 0),
		AnalysisErrors:  make([]string, 0),
	}
	if len(validValues(results.Reference)) == 0 && table.Rows > 0 {
		results.AnalysisErrors = append(results.AnalysisErrors, fmt.Sprintf("Warning: column '%s' has no numeric values.", opts.ReferenceColumn))
	}

	for i, name := range table.Columns {
		if name == opts.TimeColumn || name == opts.ReferenceColumn {
			continue
		}
		res, ok, err := SummarizeSignal(name, i, CoerceNumeric(table.ColumnAt(i)))
		if err != nil {
			return nil, err
		}
		if !ok {
			results.Skipped = append(results.Skipped, name)
			continue
		}
		results.Signals = append(results.Signals, res)
	}
	return results, nil
}
