package rendering

import (
	"bytes"
	_ "embed"
	"strconv"
	"text/template"

	"github.com/jonathan/resume-tailor/internal/layout"
)

//go:embed templates/resume.tex.tmpl
var latexTemplate string

// LaTeXHeader holds the escaped header fields
type LaTeXHeader struct {
	Name           string
	CandidateTitle string
	ContactLine    string
}

// LaTeXItem is one body element. Consecutive bullets are grouped into a single item
// so they share one itemize environment.
type LaTeXItem struct {
	Kind      string // section, paragraph, entry or bullets
	Text      string
	Secondary string
	Bullets   []string
}

// LaTeXData is the data passed to the LaTeX template. All text is already escaped.
type LaTeXData struct {
	Margin string
	Header *LaTeXHeader
	Items  []LaTeXItem
}

// LaTeXEmitter renders blocks as LaTeX source
type LaTeXEmitter struct {
	Geometry Geometry
}

// NewLaTeXEmitter creates a LaTeX emitter; the left margin of g is used for all sides
func NewLaTeXEmitter(g Geometry) *LaTeXEmitter {
	return &LaTeXEmitter{Geometry: g}
}

// Emit renders blocks as a .tex document
func (e *LaTeXEmitter) Emit(blocks []layout.Block) ([]byte, error) {
	tmpl, err := template.New("resume.tex").Parse(latexTemplate)
	if err != nil {
		return nil, &EmissionError{Format: FormatTeX, Part: "resume.tex", Message: "failed to parse template", Cause: err}
	}

	var out bytes.Buffer
	if err := tmpl.Execute(&out, BuildLaTeXData(blocks, e.Geometry)); err != nil {
		return nil, &EmissionError{Format: FormatTeX, Part: "resume.tex", Message: "failed to execute template", Cause: err}
	}
	return out.Bytes(), nil
}

// BuildLaTeXData escapes block text and groups consecutive bullets
func BuildLaTeXData(blocks []layout.Block, g Geometry) *LaTeXData {
	data := &LaTeXData{Margin: strconv.FormatFloat(g.MarginLeft, 'f', -1, 64)}

	for _, b := range blocks {
		switch v := b.(type) {
		case layout.HeaderBlock:
			data.Header = &LaTeXHeader{
				Name:           EscapeLaTeX(v.Name),
				CandidateTitle: EscapeLaTeX(v.CandidateTitle),
				ContactLine:    EscapeLaTeX(v.ContactLine),
			}
		case layout.SectionTitleBlock:
			data.Items = append(data.Items, LaTeXItem{Kind: "section", Text: EscapeLaTeX(v.Title)})
		case layout.ParagraphBlock:
			data.Items = append(data.Items, LaTeXItem{Kind: "paragraph", Text: EscapeLaTeX(v.Text)})
		case layout.EntryHeadingBlock:
			data.Items = append(data.Items, LaTeXItem{
				Kind:      "entry",
				Text:      EscapeLaTeX(v.Primary),
				Secondary: EscapeLaTeX(v.Secondary),
			})
		case layout.BulletBlock:
			text := EscapeLaTeX(v.Text)
			if n := len(data.Items); n > 0 && data.Items[n-1].Kind == "bullets" {
				data.Items[n-1].Bullets = append(data.Items[n-1].Bullets, text)
				continue
			}
			data.Items = append(data.Items, LaTeXItem{Kind: "bullets", Bullets: []string{text}})
		}
	}
	return data
}
