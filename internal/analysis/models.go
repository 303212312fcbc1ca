package analysis

import (
	"fmt"
	"math"
)

// Options names the columns every log must carry.
type Options struct {
	TimeColumn      string
	ReferenceColumn string
}

// DefaultOptions matches BimmerLink CSV exports.
func DefaultOptions() Options {
	return Options{TimeColumn: "Time", ReferenceColumn: "Engine speed"}
}

// TimeAxis holds the horizontal axis of every chart.
type TimeAxis struct {
	Values  []float64 // Plot positions; the row index when Numeric is false. NaN for empty cells.
	Labels  []string  // Cell text as exported
	Numeric bool
}

// SignalResult holds the statistics for one qualifying signal column.
type SignalResult struct {
	Name        string
	ColumnIndex int       // Position in the source header
	Values      []float64 // Full coerced series, NaN where a cell was not numeric
	NumValid    int
	NumDistinct int
	Min         float64
	Max         float64
	Mean        float64
}

// Caption renders the statistics line printed under the chart.
func (s SignalResult) Caption() string {
	return fmt.Sprintf("Min: %s    Max: %s    Average: %s", FormatStat(s.Min), FormatStat(s.Max), FormatStat(s.Mean))
}

// FormatStat prints v with two decimals, spelling non-finite values as inf, -inf and nan.
func FormatStat(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	return fmt.Sprintf("%.2f", v)
}

// AnalysisResults holds everything the report needs from one log.
type AnalysisResults struct {
	TimeColumn      string
	ReferenceColumn string
	RowCount        int
	Time            TimeAxis
	Reference       []float64
	Signals         []SignalResult // Qualifying signals in source column order
	Skipped         []string       // Signals with fewer than two distinct values
	AnalysisErrors  []string
}
