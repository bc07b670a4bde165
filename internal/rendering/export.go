package rendering

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/jonathan/resume-tailor/internal/layout"
	"github.com/jonathan/resume-tailor/internal/types"
)

// Format is an export file format
type Format string

// Supported export formats
const (
	FormatDOCX Format = "docx"
	FormatPDF  Format = "pdf"
	FormatText Format = "txt"
	FormatTeX  Format = "tex"
)

// BaseFilename is the file name every export is offered under, before its extension
const BaseFilename = "tailored-resume"

var contentTypes = map[Format]string{
	FormatDOCX: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	FormatPDF:  "application/pdf",
	FormatText: "text/plain; charset=utf-8",
	FormatTeX:  "application/x-tex",
}

// Formats returns the supported formats in a stable order
func Formats() []Format {
	return []Format{FormatDOCX, FormatPDF, FormatText, FormatTeX}
}

// ParseFormat accepts a format name or file extension, case-insensitively
func ParseFormat(s string) (Format, error) {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), ".") {
	case "docx", "word":
		return FormatDOCX, nil
	case "pdf":
		return FormatPDF, nil
	case "txt", "text", "plain":
		return FormatText, nil
	case "tex", "latex":
		return FormatTeX, nil
	default:
		return "", fmt.Errorf("unsupported export format %q (supported: docx, pdf, txt, tex)", s)
	}
}

// Filename returns tailored-resume.<ext>
func (f Format) Filename() string {
	return BaseFilename + "." + string(f)
}

// ContentType returns the MIME type served for the format
func (f Format) ContentType() string {
	return contentTypes[f]
}

// Emitter turns a block sequence into a document byte stream
type Emitter interface {
	Emit(blocks []layout.Block) ([]byte, error)
}

// Document is an exported file ready to be written or downloaded
type Document struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportOptions configures Export. The zero value uses the default page geometry and layout.
type ExportOptions struct {
	Geometry Geometry
	Layout   layout.Options
	Logger   *slog.Logger
}

func (o ExportOptions) geometry() Geometry {
	if o.Geometry == (Geometry{}) {
		return DefaultGeometry()
	}
	return o.Geometry
}

// NewEmitter returns the emitter for a block-based format
func NewEmitter(format Format, opts ExportOptions) (Emitter, error) {
	g := opts.geometry()
	switch format {
	case FormatDOCX:
		return NewDOCXEmitter(g), nil
	case FormatPDF:
		return NewPDFEmitter(g, opts.Logger), nil
	case FormatTeX:
		return NewLaTeXEmitter(g), nil
	case FormatText:
		return TextEmitter{}, nil
	default:
		return nil, &EmissionError{Format: format, Message: "no emitter for format"}
	}
}

// Export derives a fresh layout from r and emits it in the requested format
func Export(r *types.Resume, format Format, opts ExportOptions) (*Document, error) {
	if r == nil {
		return nil, &EmissionError{Format: format, Message: "resume is required"}
	}
	if _, ok := contentTypes[format]; !ok {
		return nil, &EmissionError{Format: format, Message: "unsupported format"}
	}

	blocks := layout.LayoutWithOptions(r, opts.Layout)

	var data []byte
	if format == FormatText {
		data = TextExport(r, blocks)
	} else {
		emitter, err := NewEmitter(format, opts)
		if err != nil {
			return nil, err
		}
		title := strings.TrimSpace(r.Name)
		switch em := emitter.(type) {
		case *PDFEmitter:
			em.Title = title
		case *DOCXEmitter:
			em.Title = title
		}
		if data, err = emitter.Emit(blocks); err != nil {
			return nil, err
		}
	}

	return &Document{
		Filename:    format.Filename(),
		ContentType: format.ContentType(),
		Data:        data,
	}, nil
}
