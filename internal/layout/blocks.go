// Package layout turns a validated resume into an ordered, format-independent sequence of blocks.
package layout

// Kind identifies the concrete type of a Block
type Kind string

// Block kinds, in the order they can appear within a resume
const (
	KindHeader       Kind = "header"
	KindSectionTitle Kind = "section_title"
	KindParagraph    Kind = "paragraph"
	KindEntryHeading Kind = "entry_heading"
	KindBullet       Kind = "bullet"
)

// Block is a renderable unit. The set of implementations is closed to this package.
type Block interface {
	Kind() Kind
	block()
}

// HeaderBlock carries the candidate's name, optional title and contact line
type HeaderBlock struct {
	Name           string `json:"name"`
	CandidateTitle string `json:"candidateTitle,omitempty"`
	ContactLine    string `json:"contactLine"`
}

// SectionTitleBlock opens a section such as "Work Experience"
type SectionTitleBlock struct {
	Title string `json:"title"`
}

// ParagraphBlock is a run of plain text
type ParagraphBlock struct {
	Text string `json:"text"`
}

// EntryHeadingBlock introduces a work or education entry
type EntryHeadingBlock struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary,omitempty"`
}

// BulletBlock is a single bullet point with its marker already removed
type BulletBlock struct {
	Text string `json:"text"`
}

func (HeaderBlock) Kind() Kind       { return KindHeader }
func (SectionTitleBlock) Kind() Kind { return KindSectionTitle }
func (ParagraphBlock) Kind() Kind    { return KindParagraph }
func (EntryHeadingBlock) Kind() Kind { return KindEntryHeading }
func (BulletBlock) Kind() Kind       { return KindBullet }

func (HeaderBlock) block()       {}
func (SectionTitleBlock) block() {}
func (ParagraphBlock) block()    {}
func (EntryHeadingBlock) block() {}
func (BulletBlock) block()       {}

// Text returns the visible text of a block. Header and entry heading parts are joined
// by newlines so emitters and tests can compare content regardless of styling.
func Text(b Block) string {
	switch v := b.(type) {
	case HeaderBlock:
		return joinNonEmpty("\n", v.Name, v.CandidateTitle, v.ContactLine)
	case SectionTitleBlock:
		return v.Title
	case ParagraphBlock:
		return v.Text
	case EntryHeadingBlock:
		return joinNonEmpty("\n", v.Primary, v.Secondary)
	case BulletBlock:
		return v.Text
	default:
		return ""
	}
}
