package rendering

import (
	"bytes"
	_ "embed"
	"math"
	"strings"
	"text/template"

	"github.com/gomutex/godocx/packager"
	"github.com/gomutex/godocx/wml/ctypes"

	"github.com/jonathan/resume-tailor/internal/layout"
)

// baseDocx holds the styles and numbering every generated document starts from
//
//go:embed templates/docx/base.docx
var baseDocx []byte

//go:embed templates/docx/core.xml.tmpl
var coreTemplate string

// Paragraph styles defined in the base package's styles.xml
const (
	StyleTitle        = "Title"
	StyleSubtitle     = "Subtitle"
	StyleContactLine  = "ContactLine"
	StyleHeading1     = "Heading1"
	StyleEntryHeading = "EntryHeading"
	StyleEntryMeta    = "EntryMeta"
	StyleListBullet   = "ListBullet"
	StyleNormal       = "Normal"
)

const (
	twipsPerMM   = 1440 / 25.4
	corePartPath = "docProps/core.xml"
)

var coreProps = template.Must(template.New("core.xml").Funcs(template.FuncMap{
	"xml": EscapeXML,
}).Parse(coreTemplate))

// DocxParagraph is one styled paragraph of the document body
type DocxParagraph struct {
	Style string
	Text  string
}

// DOCXEmitter writes blocks as a WordprocessingML package. Pagination is left to the viewer.
type DOCXEmitter struct {
	Geometry Geometry
	Title    string
}

// NewDOCXEmitter creates a DOCX emitter whose section uses the given page geometry
func NewDOCXEmitter(g Geometry) *DOCXEmitter {
	return &DOCXEmitter{Geometry: g}
}

// DocxParagraphs maps blocks to styled paragraphs in order
func DocxParagraphs(blocks []layout.Block) []DocxParagraph {
	paragraphs := make([]DocxParagraph, 0, len(blocks)+len(blocks)/2)
	add := func(style, text string) {
		if strings.TrimSpace(text) != "" {
			paragraphs = append(paragraphs, DocxParagraph{Style: style, Text: text})
		}
	}

	for _, b := range blocks {
		switch v := b.(type) {
		case layout.HeaderBlock:
			add(StyleTitle, v.Name)
			add(StyleSubtitle, v.CandidateTitle)
			add(StyleContactLine, v.ContactLine)
		case layout.SectionTitleBlock:
			add(StyleHeading1, v.Title)
		case layout.ParagraphBlock:
			add(StyleNormal, v.Text)
		case layout.EntryHeadingBlock:
			add(StyleEntryHeading, v.Primary)
			add(StyleEntryMeta, v.Secondary)
		case layout.BulletBlock:
			add(StyleListBullet, v.Text)
		}
	}
	return paragraphs
}

// Emit renders blocks as a DOCX document. Lines of a multi-line paragraph are
// separated by line breaks inside the same paragraph.
func (e *DOCXEmitter) Emit(blocks []layout.Block) ([]byte, error) {
	g := e.Geometry
	if !g.valid() {
		return nil, &EmissionError{Format: FormatDOCX, Cause: ErrNoPrintableArea}
	}

	base := baseDocx
	doc, err := packager.Unpack(&base)
	if err != nil {
		return nil, &EmissionError{Format: FormatDOCX, Message: "failed to open base package", Cause: err}
	}

	for _, para := range DocxParagraphs(blocks) {
		p := doc.AddEmptyParagraph()
		p.Style(para.Style)
		for i, line := range strings.Split(para.Text, "\n") {
			if i > 0 {
				p.AddRun().AddBreak(nil)
			}
			p.AddText(line)
		}
	}
	doc.Document.Body.SectPr = sectionProps(g)

	var core bytes.Buffer
	err = coreProps.Execute(&core, struct{ Title, Creator, Created string }{
		Title:   e.Title,
		Creator: "resume-tailor",
		Created: documentDate.Format("2006-01-02T15:04:05Z"),
	})
	if err != nil {
		return nil, &EmissionError{Format: FormatDOCX, Part: corePartPath, Message: "failed to execute template", Cause: err}
	}
	doc.FileMap.Store(corePartPath, core.Bytes())

	var buf bytes.Buffer
	if err := doc.Write(&buf); err != nil {
		return nil, &EmissionError{Format: FormatDOCX, Message: "failed to write package", Cause: err}
	}
	return buf.Bytes(), nil
}

// sectionProps sizes the single section to the page geometry in twips
func sectionProps(g Geometry) *ctypes.SectionProp {
	width, height := uint64(twips(g.PageWidth)), uint64(twips(g.PageHeight))
	top, bottom := twips(g.MarginTop), twips(g.MarginBottom)
	left, right := twips(g.MarginLeft), twips(g.MarginRight)
	zero := 0
	return &ctypes.SectionProp{
		PageSize: &ctypes.PageSize{Width: &width, Height: &height},
		PageMargin: &ctypes.PageMargin{
			Top:    &top,
			Bottom: &bottom,
			Left:   &left,
			Right:  &right,
			Header: &zero,
			Footer: &zero,
			Gutter: &zero,
		},
	}
}

func twips(mm float64) int {
	return int(math.Round(mm * twipsPerMM))
}
