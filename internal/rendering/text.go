package rendering

import (
	"strings"

	"github.com/jonathan/resume-tailor/internal/layout"
	"github.com/jonathan/resume-tailor/internal/types"
)

// TextExport returns fullResumeText verbatim. A resume whose fullResumeText is blank is
// rendered from its blocks instead, so the download is never empty.
func TextExport(r *types.Resume, blocks []layout.Block) []byte {
	if r != nil && strings.TrimSpace(r.FullResumeText) != "" {
		return []byte(r.FullResumeText)
	}
	out, _ := TextEmitter{}.Emit(blocks)
	return out
}

// TextEmitter renders blocks as plain text with "- " bullets and blank lines between sections
type TextEmitter struct{}

// Emit renders blocks as plain text. It never fails.
func (TextEmitter) Emit(blocks []layout.Block) ([]byte, error) {
	var sb strings.Builder
	for i, b := range blocks {
		switch v := b.(type) {
		case layout.HeaderBlock:
			writeLines(&sb, v.Name, v.CandidateTitle, v.ContactLine)
		case layout.SectionTitleBlock:
			if i > 0 {
				sb.WriteString("\n")
			}
			writeLines(&sb, strings.ToUpper(v.Title))
		case layout.ParagraphBlock:
			writeLines(&sb, v.Text)
		case layout.EntryHeadingBlock:
			writeLines(&sb, v.Primary, v.Secondary)
		case layout.BulletBlock:
			writeLines(&sb, "- "+v.Text)
		}
	}
	return []byte(sb.String()), nil
}

func writeLines(sb *strings.Builder, lines ...string) {
	for _, line := range lines {
		if line == "" {
			continue
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}
}
