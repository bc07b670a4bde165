package layout

import (
	"strings"

	"github.com/jonathan/resume-tailor/internal/types"
)

// Fixed section titles
const (
	WorkExperienceTitle = "Work Experience"
	EducationTitle      = "Education"
)

// partSeparator joins contact fields and entry heading parts
const partSeparator = " / "

// Options adjusts the soft choices of the layout pass
type Options struct {
	// SuppressEmptySections drops the title of an otherSections entry whose body yields no blocks
	SuppressEmptySections bool
}

// Layout derives the block sequence for a resume using default options.
// The result depends only on r; r is never modified.
func Layout(r *types.Resume) []Block {
	return LayoutWithOptions(r, Options{})
}

// LayoutWithOptions derives the block sequence for a resume in a single pass
func LayoutWithOptions(r *types.Resume, opts Options) []Block {
	if r == nil {
		return nil
	}

	blocks := []Block{HeaderBlock{
		Name:           strings.TrimSpace(r.Name),
		CandidateTitle: strings.TrimSpace(r.CandidateTitle),
		ContactLine:    ContactLine(r),
	}}

	if body := strings.TrimSpace(r.Summary.Body); body != "" {
		blocks = append(blocks,
			SectionTitleBlock{Title: strings.TrimSpace(r.Summary.Title)},
			ParagraphBlock{Text: body},
		)
	}

	if len(r.WorkExperience) > 0 {
		blocks = append(blocks, SectionTitleBlock{Title: WorkExperienceTitle})
		for _, item := range r.WorkExperience {
			blocks = append(blocks, EntryHeadingBlock{
				Primary:   joinNonEmpty(partSeparator, item.JobTitle, item.Company),
				Secondary: joinNonEmpty(partSeparator, item.Dates, item.Location),
			})
			blocks = appendBullets(blocks, item.Description)
		}
	}

	if len(r.Education) > 0 {
		blocks = append(blocks, SectionTitleBlock{Title: EducationTitle})
		for _, item := range r.Education {
			blocks = append(blocks, EntryHeadingBlock{
				Primary:   strings.TrimSpace(item.Degree),
				Secondary: joinNonEmpty(partSeparator, item.Dates, item.School, item.Location),
			})
			blocks = appendBullets(blocks, item.Details)
		}
	}

	for _, section := range r.OtherSections {
		body := ParseBody(section.Body)
		if len(body) == 0 && opts.SuppressEmptySections {
			continue
		}
		blocks = append(blocks, SectionTitleBlock{Title: strings.TrimSpace(section.Title)})
		blocks = append(blocks, body...)
	}

	return blocks
}

// ContactLine joins the non-empty contact fields in the fixed order phone, email, linkedin, address
func ContactLine(r *types.Resume) string {
	if r == nil {
		return ""
	}
	return joinNonEmpty(partSeparator, r.Phone, r.Email, r.LinkedIn, r.Address)
}

// appendBullets adds one bullet per non-blank entry. Entries are rendered as written;
// a leading marker typed by the model is stripped like in section bodies.
func appendBullets(blocks []Block, entries []string) []Block {
	for _, entry := range entries {
		text, _ := StripBullet(entry)
		if text == "" {
			continue
		}
		blocks = append(blocks, BulletBlock{Text: text})
	}
	return blocks
}
