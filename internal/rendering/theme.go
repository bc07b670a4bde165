package rendering

import "github.com/jonathan/resume-tailor/internal/layout"

// TextStyle is a font selection together with its line height in millimetres
type TextStyle struct {
	Family     string
	Style      string // "", "B", "I" or "BI"
	Size       float64
	LineHeight float64
}

// Alignment values understood by the PDF emitter
const (
	AlignLeft   = "L"
	AlignCenter = "C"
)

var (
	nameStyle      = TextStyle{Family: FontFamily, Style: "B", Size: 20, LineHeight: 9}
	titleStyle     = TextStyle{Family: FontFamily, Style: "I", Size: 12, LineHeight: 6}
	contactStyle   = TextStyle{Family: FontFamily, Size: 9.5, LineHeight: 5}
	sectionStyle   = TextStyle{Family: FontFamily, Style: "B", Size: 12.5, LineHeight: 7}
	paragraphStyle = TextStyle{Family: FontFamily, Size: 10, LineHeight: 5}
	entryStyle     = TextStyle{Family: FontFamily, Style: "B", Size: 10.5, LineHeight: 5.5}
	entryMetaStyle = TextStyle{Family: FontFamily, Style: "I", Size: 9.5, LineHeight: 5}
	bulletStyle    = TextStyle{Family: FontFamily, Size: 10, LineHeight: 5}
)

// spacing in millimetres above each kind of block when it is not first on its page
var blockSpacing = map[layout.Kind]float64{
	layout.KindHeader:       0,
	layout.KindSectionTitle: 5,
	layout.KindParagraph:    1.5,
	layout.KindEntryHeading: 3,
	layout.KindBullet:       0.8,
}

func spaceBefore(kind layout.Kind) float64 {
	return blockSpacing[kind]
}

type run struct {
	text  string
	style TextStyle
	align string
}

// runsFor splits a block into the styled runs it is drawn with
func runsFor(b layout.Block) []run {
	switch v := b.(type) {
	case layout.HeaderBlock:
		runs := []run{{text: v.Name, style: nameStyle, align: AlignCenter}}
		if v.CandidateTitle != "" {
			runs = append(runs, run{text: v.CandidateTitle, style: titleStyle, align: AlignCenter})
		}
		if v.ContactLine != "" {
			runs = append(runs, run{text: v.ContactLine, style: contactStyle, align: AlignCenter})
		}
		return runs
	case layout.SectionTitleBlock:
		return []run{{text: v.Title, style: sectionStyle, align: AlignLeft}}
	case layout.ParagraphBlock:
		return []run{{text: v.Text, style: paragraphStyle, align: AlignLeft}}
	case layout.EntryHeadingBlock:
		runs := []run{{text: v.Primary, style: entryStyle, align: AlignLeft}}
		if v.Secondary != "" {
			runs = append(runs, run{text: v.Secondary, style: entryMetaStyle, align: AlignLeft})
		}
		return runs
	case layout.BulletBlock:
		return []run{{text: v.Text, style: bulletStyle, align: AlignLeft}}
	default:
		return nil
	}
}
