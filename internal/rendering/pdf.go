package rendering

import (
	"bytes"
	"log/slog"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/jonathan/resume-tailor/internal/layout"
)

const bulletGlyph = "•"

// documentDate is stamped into document metadata so output does not depend on the clock
var documentDate = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// PDFEmitter draws blocks onto fixed-size pages with manual pagination
type PDFEmitter struct {
	Geometry Geometry
	Title    string
	Logger   *slog.Logger
}

// NewPDFEmitter creates a PDF emitter for the given page geometry
func NewPDFEmitter(g Geometry, logger *slog.Logger) *PDFEmitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &PDFEmitter{Geometry: g, Logger: logger}
}

// fpdfMeasurer wraps text with the metrics of the embedded UTF-8 fonts
type fpdfMeasurer struct {
	pdf *fpdf.Fpdf
}

func (m fpdfMeasurer) Wrap(text string, style TextStyle, width float64) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	m.pdf.SetFont(style.Family, style.Style, style.Size)
	lines := m.pdf.SplitText(pdfText(text), width)
	out := lines[:0]
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return out
}

func (e *PDFEmitter) newDocument() *fpdf.Fpdf {
	g := e.Geometry
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: g.PageWidth, Ht: g.PageHeight},
	})
	pdf.SetMargins(g.MarginLeft, g.MarginTop, g.MarginRight)
	pdf.SetAutoPageBreak(false, g.MarginBottom)
	registerFonts(pdf)
	pdf.SetCreationDate(documentDate)
	pdf.SetCreator("resume-tailor", true)
	if e.Title != "" {
		pdf.SetTitle(e.Title, true)
	}
	return pdf
}

// Plan computes the pagination of blocks using real font metrics
func (e *PDFEmitter) Plan(blocks []layout.Block) (Plan, error) {
	if !e.Geometry.valid() {
		return Plan{}, &EmissionError{Format: FormatPDF, Cause: ErrNoPrintableArea}
	}
	pdf := e.newDocument()
	plan := Paginate(blocks, fpdfMeasurer{pdf: pdf}, e.Geometry)
	if err := pdf.Error(); err != nil {
		return Plan{}, &EmissionError{Format: FormatPDF, Message: "failed to measure document", Cause: err}
	}
	return plan, nil
}

// Emit renders blocks as a PDF document
func (e *PDFEmitter) Emit(blocks []layout.Block) ([]byte, error) {
	if !e.Geometry.valid() {
		return nil, &EmissionError{Format: FormatPDF, Cause: ErrNoPrintableArea}
	}
	g := e.Geometry
	pdf := e.newDocument()
	plan := Paginate(blocks, fpdfMeasurer{pdf: pdf}, g)

	for _, pl := range plan.Overflowing() {
		e.logger().Warn("block taller than a printable page overflows the bottom margin",
			"kind", pl.Block.Kind(),
			"page", pl.Page,
			"height_mm", pl.Height,
			"printable_mm", g.PrintableHeight(),
		)
	}

	pdf.AddPage()
	page := 1
	for _, pl := range plan.Placements {
		for page < pl.Page {
			pdf.AddPage()
			page++
		}
		e.drawPlacement(pdf, pl)
	}

	if err := pdf.Error(); err != nil {
		return nil, &EmissionError{Format: FormatPDF, Message: "failed to draw document", Cause: err}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, &EmissionError{Format: FormatPDF, Message: "failed to write document", Cause: err}
	}
	return buf.Bytes(), nil
}

func (e *PDFEmitter) drawPlacement(pdf *fpdf.Fpdf, pl Placement) {
	g := e.Geometry
	x := g.MarginLeft + pl.Indent
	width := g.ContentWidth() - pl.Indent
	y := pl.Y

	if pl.Block.Kind() == layout.KindBullet && len(pl.Segments) > 0 {
		style := pl.Segments[0].Style
		pdf.SetFont(style.Family, style.Style, style.Size)
		pdf.SetXY(g.MarginLeft+g.BulletIndent, y)
		pdf.CellFormat(g.BulletTextIndent-g.BulletIndent, style.LineHeight, bulletGlyph, "", 0, AlignLeft, false, 0, "")
	}

	for _, seg := range pl.Segments {
		pdf.SetFont(seg.Style.Family, seg.Style.Style, seg.Style.Size)
		for _, line := range seg.Lines {
			pdf.SetXY(x, y)
			pdf.CellFormat(width, seg.Style.LineHeight, line, "", 0, seg.Align, false, 0, "")
			y += seg.Style.LineHeight
		}
	}

	if pl.Block.Kind() == layout.KindSectionTitle {
		pdf.SetLineWidth(0.3)
		pdf.Line(g.MarginLeft, y-0.8, g.PageWidth-g.MarginRight, y-0.8)
	}
}

func (e *PDFEmitter) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.Default()
	}
	return e.Logger
}
