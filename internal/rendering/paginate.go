package rendering

import (
	"github.com/jonathan/resume-tailor/internal/layout"
)

// Geometry describes the page and the horizontal offsets of bullets, in millimetres
type Geometry struct {
	PageWidth    float64 `json:"page_width" yaml:"page_width"`
	PageHeight   float64 `json:"page_height" yaml:"page_height"`
	MarginTop    float64 `json:"margin_top" yaml:"margin_top"`
	MarginBottom float64 `json:"margin_bottom" yaml:"margin_bottom"`
	MarginLeft   float64 `json:"margin_left" yaml:"margin_left"`
	MarginRight  float64 `json:"margin_right" yaml:"margin_right"`

	// BulletIndent is where the bullet glyph is drawn, relative to the left margin
	BulletIndent float64 `json:"bullet_indent" yaml:"bullet_indent"`
	// BulletTextIndent is where bullet text starts; the wrap width shrinks by the same amount
	BulletTextIndent float64 `json:"bullet_text_indent" yaml:"bullet_text_indent"`
}

// DefaultGeometry returns an A4 portrait page with 15mm margins
func DefaultGeometry() Geometry {
	return Geometry{
		PageWidth:        210,
		PageHeight:       297,
		MarginTop:        15,
		MarginBottom:     15,
		MarginLeft:       15,
		MarginRight:      15,
		BulletIndent:     2,
		BulletTextIndent: 6,
	}
}

// ContentWidth is the page width between the side margins
func (g Geometry) ContentWidth() float64 {
	return g.PageWidth - g.MarginLeft - g.MarginRight
}

// Bottom is the lowest y coordinate a block may reach
func (g Geometry) Bottom() float64 {
	return g.PageHeight - g.MarginBottom
}

// PrintableHeight is the vertical space available on one page
func (g Geometry) PrintableHeight() float64 {
	return g.Bottom() - g.MarginTop
}

func (g Geometry) valid() bool {
	return g.PageWidth > 0 && g.PageHeight > 0 &&
		g.MarginTop >= 0 && g.MarginBottom >= 0 && g.MarginLeft >= 0 && g.MarginRight >= 0 &&
		g.PrintableHeight() > 0 && g.ContentWidth()-g.BulletTextIndent > 0
}

// Measurer wraps text into lines that fit width when drawn in style
type Measurer interface {
	Wrap(text string, style TextStyle, width float64) []string
}

// Segment is one wrapped run of a block, such as the name line of a header
type Segment struct {
	Style TextStyle
	Align string
	Lines []string
}

// Placement records where a block lands
type Placement struct {
	Block       layout.Block
	Page        int
	Y           float64 // top of the first line, after SpaceBefore
	SpaceBefore float64
	Height      float64 // wrapped text height, excluding SpaceBefore
	Indent      float64
	Segments    []Segment
	// Overflow is set when the block is taller than a printable page and runs past the bottom margin
	Overflow bool
}

// Plan is the result of pagination
type Plan struct {
	Geometry   Geometry
	Pages      int
	Placements []Placement
}

// Overflowing returns the placements that run past the bottom margin
func (p Plan) Overflowing() []Placement {
	var out []Placement
	for _, pl := range p.Placements {
		if pl.Overflow {
			out = append(out, pl)
		}
	}
	return out
}

// Paginate assigns every block a page and a vertical offset. Each block is measured whole:
// if the cursor plus its height would pass the bottom margin, a new page is started and the
// cursor reset to the top margin. A block is never split. A block taller than a printable
// page starts a fresh page and overflows it.
func Paginate(blocks []layout.Block, m Measurer, g Geometry) Plan {
	plan := Plan{Geometry: g, Placements: make([]Placement, 0, len(blocks))}
	if len(blocks) == 0 {
		return plan
	}

	page := 1
	cursor := g.MarginTop
	firstOnPage := true

	for _, b := range blocks {
		indent := indentFor(b, g)
		width := g.ContentWidth() - indent

		segments := make([]Segment, 0, 3)
		height := 0.0
		for _, run := range runsFor(b) {
			lines := m.Wrap(run.text, run.style, width)
			if len(lines) == 0 {
				continue
			}
			segments = append(segments, Segment{Style: run.style, Align: run.align, Lines: lines})
			height += float64(len(lines)) * run.style.LineHeight
		}

		space := spaceBefore(b.Kind())
		if firstOnPage {
			space = 0
		}

		if !firstOnPage && cursor+space+height > g.Bottom() {
			page++
			cursor = g.MarginTop
			space = 0
		}

		y := cursor + space
		plan.Placements = append(plan.Placements, Placement{
			Block:       b,
			Page:        page,
			Y:           y,
			SpaceBefore: space,
			Height:      height,
			Indent:      indent,
			Segments:    segments,
			Overflow:    y+height > g.Bottom(),
		})
		cursor = y + height
		firstOnPage = false
	}

	plan.Pages = page
	return plan
}

func indentFor(b layout.Block, g Geometry) float64 {
	if b.Kind() == layout.KindBullet {
		return g.BulletTextIndent
	}
	return 0
}
