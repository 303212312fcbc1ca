package report

import (
	"bytes"
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/user/bimmer_log_analyzer_go/internal/analysis"
)

const (
	defaultPlotWidth  = 10 * vg.Inch
	defaultPlotHeight = 4 * vg.Inch
	plotDPI           = 150
	secondaryAxisGap  = 0.9 * vg.Inch // room right of the data area for the reference axis
	rangePadding      = 0.05
	categoricalTicks  = 8
)

var (
	signalColor    = color.RGBA{R: 255, G: 165, A: 255} // Orange
	referenceColor = color.RGBA{B: 255, A: 255}          // Blue
)

// PlotOptions controls chart rendering.
type PlotOptions struct {
	ReferenceLabel string // Legend and right axis label; defaults to the reference column name
	MaxPoints      int    // Upper bound on plotted points per trace
	Width          vg.Length
	Height         vg.Length
}

func (o PlotOptions) withDefaults(results *analysis.AnalysisResults) PlotOptions {
	if o.ReferenceLabel == "" {
		o.ReferenceLabel = results.ReferenceColumn
	}
	if o.MaxPoints < 1 {
		o.MaxPoints = 1000
	}
	if o.Width == 0 {
		o.Width = defaultPlotWidth
	}
	if o.Height == 0 {
		o.Height = defaultPlotHeight
	}
	return o
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// seriesRange returns the padded [min, max] of the finite values, or ok=false if there are none.
func seriesRange(values []float64) (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if !finite(v) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
		ok = true
	}
	if !ok {
		return 0, 1, false
	}
	lo, hi = padRange(lo, hi)
	return lo, hi, true
}

func padRange(lo, hi float64) (float64, float64) {
	if lo == hi {
		delta := math.Max(math.Abs(lo)*rangePadding, 1)
		return lo - delta, hi + delta
	}
	pad := (hi - lo) * rangePadding
	return lo - pad, hi + pad
}

// segments splits the points into runs of finite values so that gaps
// in the log show up as gaps in the line.
func segments(xs, ys []float64) []plotter.XYs {
	var out []plotter.XYs
	var cur plotter.XYs
	for i := range xs {
		if !finite(xs[i]) || !finite(ys[i]) {
			if len(cur) > 0 {
				out = append(out, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, plotter.XY{X: xs[i], Y: ys[i]})
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}

// addTrace adds one line per segment and a single legend entry.
func addTrace(p *plot.Plot, xs, ys []float64, c color.Color, label string) error {
	for i, pts := range segments(xs, ys) {
		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("failed to create line for %s: %w", label, err)
		}
		line.Color = c
		line.LineStyle.Width = vg.Points(1.2)
		p.Add(line)
		if i == 0 {
			p.Legend.Add(label, line)
		}
	}
	return nil
}

// labelTicks places about categoricalTicks labels along a non-numeric time axis.
func labelTicks(rows []int, labels []string) []plot.Tick {
	if len(rows) == 0 {
		return nil
	}
	step := max(len(rows)/categoricalTicks, 1)
	ticks := make([]plot.Tick, 0, categoricalTicks+1)
	for i := 0; i < len(rows); i += step {
		row := rows[i]
		ticks = append(ticks, plot.Tick{Value: float64(row), Label: labels[row]})
	}
	return ticks
}

// secondaryAxis maps the reference series onto the primary data range and
// draws its own ticks along the right edge of the data area.
type secondaryAxis struct {
	label          string
	lo, hi         float64 // reference scale
	primLo, primHi float64 // primary scale it is drawn against
}

func (a secondaryAxis) toPrimary(v float64) float64 {
	return a.primLo + (v-a.lo)/(a.hi-a.lo)*(a.primHi-a.primLo)
}

func (a secondaryAxis) draw(p *plot.Plot, c draw.Canvas) {
	dataC := p.DataCanvas(c)
	_, yTrans := p.Transforms(&dataC)
	axisX := dataC.Max.X

	c.StrokeLine2(p.Y.LineStyle, axisX, dataC.Min.Y, axisX, dataC.Max.Y)

	tickSty := p.Y.Tick.Label
	tickSty.XAlign = draw.XLeft
	tickSty.YAlign = draw.YCenter
	labelX := axisX + p.Y.Tick.Length + vg.Points(2)

	widest := vg.Length(0)
	for _, t := range (plot.DefaultTicks{}).Ticks(a.lo, a.hi) {
		if t.Value < a.lo || t.Value > a.hi {
			continue
		}
		y := yTrans(a.toPrimary(t.Value))
		length := p.Y.Tick.Length
		if t.IsMinor() {
			length /= 2
		}
		c.StrokeLine2(p.Y.Tick.LineStyle, axisX, y, axisX+length, y)
		if t.IsMinor() {
			continue
		}
		c.FillText(tickSty, vg.Point{X: labelX, Y: y}, t.Label)
		widest = vg.Length(math.Max(float64(widest), float64(tickSty.Width(t.Label))))
	}

	if a.label != "" {
		sty := p.Y.Label.TextStyle
		sty.Rotation = math.Pi / 2
		sty.XAlign = draw.XCenter
		sty.YAlign = draw.YTop
		c.FillText(sty, vg.Point{X: labelX + widest + vg.Points(4), Y: (dataC.Min.Y + dataC.Max.Y) / 2}, a.label)
	}
}

// downsample thins the time axis, sig and the reference with one set of row
// indices so the traces stay aligned.
func downsample(results *analysis.AnalysisResults, sig analysis.SignalResult, maxPoints int) (rows []int, xs, ys, refs []float64) {
	rows = analysis.DownsampleIndices(results.RowCount, analysis.Stride(results.RowCount, maxPoints))
	xs = make([]float64, len(rows))
	ys = make([]float64, len(rows))
	refs = make([]float64, len(rows))
	for i, row := range rows {
		xs[i] = results.Time.Values[row]
		ys[i] = sig.Values[row]
		refs[i] = results.Reference[row]
	}
	return rows, xs, ys, refs
}

// CreateSignalPlot renders sig and the reference signal against time as a
// PNG. The signal uses the left axis and the reference an independent right
// axis. Both traces and the time axis are thinned with the same row indices.
func CreateSignalPlot(results *analysis.AnalysisResults, sig analysis.SignalResult, opts PlotOptions) ([]byte, error) {
	if results == nil {
		return nil, fmt.Errorf("no analysis results to plot")
	}
	opts = opts.withDefaults(results)

	rows, xs, ys, refs := downsample(results, sig, opts.MaxPoints)

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s vs %s", sig.Name, results.ReferenceColumn)
	p.X.Label.Text = results.TimeColumn
	p.Y.Label.Text = sig.Name
	p.Add(plotter.NewGrid())

	// Infinite cells count in the statistics but cannot be drawn.
	primLo, primHi, _ := seriesRange(sig.Values)
	refLo, refHi, _ := seriesRange(refs)
	axis := secondaryAxis{label: opts.ReferenceLabel, lo: refLo, hi: refHi, primLo: primLo, primHi: primHi}

	if err := addTrace(p, xs, ys, signalColor, sig.Name); err != nil {
		return nil, err
	}
	mapped := make([]float64, len(refs))
	for i, v := range refs {
		mapped[i] = axis.toPrimary(v)
	}
	if err := addTrace(p, xs, mapped, referenceColor, opts.ReferenceLabel); err != nil {
		return nil, err
	}

	if !results.Time.Numeric {
		p.X.Tick.Marker = plot.ConstantTicks(labelTicks(rows, results.Time.Labels))
	}
	p.Y.Min, p.Y.Max = primLo, primHi
	p.Legend.Top = true

	img := vgimg.NewWith(vgimg.UseWH(opts.Width, opts.Height), vgimg.UseDPI(plotDPI))
	dc := draw.New(img)
	chart := draw.Crop(dc, 0, -secondaryAxisGap, 0, 0)
	p.Draw(chart)
	axis.draw(p, chart)

	buf := new(bytes.Buffer)
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(buf); err != nil {
		return nil, fmt.Errorf("failed to write plot to buffer: %w", err)
	}
	return buf.Bytes(), nil
}
