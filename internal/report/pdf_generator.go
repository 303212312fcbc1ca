package report

import (
	"bytes"
	"fmt"
	"os"

	"github.com/jung-kurt/gofpdf"
	"golang.org/x/text/encoding/charmap"

	"github.com/user/bimmer_log_analyzer_go/internal/analysis"
	"github.com/user/bimmer_log_analyzer_go/internal/apperr"
)

const (
	inchToMm               = 25.4
	pdfPageWidthLandscape  = 11 * inchToMm // Letter landscape
	pdfPageHeightLandscape = 8.5 * inchToMm
	pdfMargin              = 0.5 * inchToMm
	pdfContentWidth        = pdfPageWidthLandscape - (2 * pdfMargin)
)

// ReportOptions controls the PDF report.
type ReportOptions struct {
	SourceName string // Shown in the page header
	Plot       PlotOptions
}

// PageInfo describes one signal page of the report.
type PageInfo struct {
	Signal  string
	Caption string
}

// ReportSummary describes a written report.
type ReportSummary struct {
	Path          string
	Pages         []PageInfo // One per charted signal, in document order
	DocumentPages int        // Pages in the PDF file, including a notice page when no signal qualified
}

// pdfStyler holds reusable styling and state for PDF generation
type pdfStyler struct {
	pdf        *gofpdf.Fpdf
	tr         func(string) string
	styles     map[string]func()
	lineHeight float64
	currentY   float64
}

func newPDFStyler(pdf *gofpdf.Fpdf) *pdfStyler {
	s := &pdfStyler{
		pdf:        pdf,
		tr:         pdf.UnicodeTranslatorFromDescriptor(""),
		styles:     make(map[string]func()),
		lineHeight: 6,
		currentY:   pdfMargin,
	}
	s.defineStyles()
	return s
}

func (s *pdfStyler) defineStyles() {
	s.styles["h1"] = func() {
		s.pdf.SetFont("Arial", "B", 16)
		s.pdf.SetTextColor(0, 0, 0)
	}
	s.styles["header"] = func() {
		s.pdf.SetFont("Arial", "", 8)
		s.pdf.SetTextColor(110, 110, 110)
	}
	s.styles["normal"] = func() {
		s.pdf.SetFont("Arial", "", 10)
		s.pdf.SetTextColor(0, 0, 0)
	}
	s.styles["caption"] = func() {
		s.pdf.SetFont("Arial", "", 9)
		s.pdf.SetTextColor(0, 0, 0)
	}
}

func (s *pdfStyler) applyStyle(styleName string) {
	if fn, ok := s.styles[styleName]; ok {
		fn()
	} else {
		s.styles["normal"]()
	}
}

func (s *pdfStyler) newPage() {
	s.pdf.AddPage()
	s.currentY = pdfMargin
}

func (s *pdfStyler) writeParagraph(text string, styleName string, align string) {
	s.applyStyle(styleName)
	s.pdf.SetXY(pdfMargin, s.currentY)
	s.pdf.MultiCell(pdfContentWidth, s.lineHeight, s.tr(text), "", align, false)
	s.currentY = s.pdf.GetY() + 1
}

func (s *pdfStyler) addSpacer(height float64) {
	s.currentY += height
}

func (s *pdfStyler) addImage(imageBytes []byte, imageName string, width, height float64, caption string) {
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	s.pdf.RegisterImageOptionsReader(imageName, opts, bytes.NewReader(imageBytes))
	x := pdfMargin + (pdfContentWidth-width)/2
	s.pdf.ImageOptions(imageName, x, s.currentY, width, height, false, opts, 0, "")
	s.currentY += height

	if caption != "" {
		s.addSpacer(2)
		s.writeParagraph(caption, "caption", "C")
	}
}

// printable reports whether txt survives the core fonts' cp1252 encoding.
func printable(txt string) bool {
	_, err := charmap.Windows1252.NewEncoder().String(txt)
	return err == nil
}

// pageHeader leaves out a source name the core fonts cannot print.
func pageHeader(source string, page, pages int) string {
	if printable(source) {
		return fmt.Sprintf("%s  |  signal %d of %d", source, page, pages)
	}
	return fmt.Sprintf("signal %d of %d", page, pages)
}

func noSignalsNotice(timeCol, refCol string) string {
	if printable(timeCol) && printable(refCol) {
		return fmt.Sprintf("None of the columns besides '%s' and '%s' has at least two distinct numeric values.", timeCol, refCol)
	}
	return "None of the signal columns has at least two distinct numeric values."
}

// BuildPDFReport writes one page per signal in results to path: the chart
// from CreateSignalPlot and its statistics caption. The file is removed
// again if any page fails.
func BuildPDFReport(path string, results *analysis.AnalysisResults, opts ReportOptions) (summary *ReportSummary, err error) {
	if results == nil {
		return nil, fmt.Errorf("%w: no analysis results", apperr.ErrUnexpected)
	}

	out, err := os.Create(path)
	if err != nil {
		return nil, apperr.Render("cannot open "+path+" for writing", err)
	}
	defer func() {
		if err != nil {
			out.Close()
			os.Remove(path)
		}
	}()

	pdf := gofpdf.New("L", "mm", "Letter", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(false, pdfMargin)
	pdf.SetTitle(fmt.Sprintf("%s report", opts.SourceName), true)
	pdf.SetCreator("BimmerLink Log Analyzer", true)

	styler := newPDFStyler(pdf)
	summary = &ReportSummary{Path: path, Pages: make([]PageInfo, 0, len(results.Signals))}

	imgWidth := pdfContentWidth
	imgHeight := imgWidth * (4.0 / 10.0)

	for i, sig := range results.Signals {
		img, err := CreateSignalPlot(results, sig, opts.Plot)
		if err != nil {
			return nil, apperr.Render(fmt.Sprintf("plot for %q", sig.Name), err)
		}

		styler.newPage()
		if opts.SourceName != "" {
			styler.writeParagraph(pageHeader(opts.SourceName, i+1, len(results.Signals)), "header", "R")
			styler.addSpacer(4)
		}
		styler.addImage(img, fmt.Sprintf("signal_%d", i), imgWidth, imgHeight, sig.Caption())
		if pdf.Err() {
			return nil, apperr.Render(fmt.Sprintf("page for %q", sig.Name), pdf.Error())
		}
		summary.Pages = append(summary.Pages, PageInfo{Signal: sig.Name, Caption: sig.Caption()})
	}

	if len(results.Signals) == 0 {
		styler.newPage()
		styler.writeParagraph("No signals to chart", "h1", "C")
		styler.addSpacer(5)
		styler.writeParagraph(noSignalsNotice(results.TimeColumn, results.ReferenceColumn), "normal", "C")
	}

	summary.DocumentPages = pdf.PageCount()
	if err := pdf.Output(out); err != nil {
		return nil, apperr.Render("write "+path, err)
	}
	if err := out.Close(); err != nil {
		return nil, apperr.IO("close", path, err)
	}
	return summary, nil
}
