package ingestion

import (
	"strings"
	"unicode"
)

// bulletGlyphs are list markers produced by word processors and PDF text extraction.
// U+F0B7 is the Symbol-font bullet many PDF exporters leave in the text layer.
var bulletGlyphs = []string{"• ", "· ", "▪ ", "◦ ", "– ", "● ", "○ ", "■ ", "‣ ", "\uf0b7 "}

// invisible maps characters that survive text extraction but carry no content. Unicode
// spaces become plain spaces, zero-width characters and controls are dropped.
func invisible(r rune) rune {
	switch {
	case r == '\n' || r == '\t':
		return r
	case r == '\u200b' || r == '\u200c' || r == '\u200d' || r == '\u2060' || r == '\ufeff' || r == '\u00ad':
		return -1
	case unicode.IsSpace(r):
		return ' '
	case unicode.IsControl(r):
		return -1
	default:
		return r
	}
}

// CleanText normalizes extracted text while preserving its structure. Line endings become
// LF, runs of spaces collapse, at most one blank line separates paragraphs and bullet
// glyphs such as "•" become "- " so bullets survive into generation prompts. Headings,
// "- " and "* " bullets and leading indentation are kept.
func CleanText(content string) string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	content = strings.Map(invisible, content)

	var out []string
	blank := false
	for _, line := range strings.Split(content, "\n") {
		line = cleanLine(line)
		if line == "" {
			blank = len(out) > 0
			continue
		}
		if blank {
			out = append(out, "")
			blank = false
		}
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

// cleanLine trims the end of a line, collapses inner whitespace and rewrites bullet glyphs.
// Leading indentation is kept except on headings.
func cleanLine(line string) string {
	trimmed := strings.TrimLeft(line, " \t")
	if strings.TrimSpace(trimmed) == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, "#") {
		return strings.TrimRight(trimmed, " \t")
	}

	indent := line[:len(line)-len(trimmed)]
	if isBulletLine(trimmed) {
		bullet := normalizeBullet(trimmed)
		return indent + bullet[:2] + strings.Join(strings.Fields(bullet[2:]), " ")
	}
	return indent + strings.Join(strings.Fields(trimmed), " ")
}

// isBulletLine checks if a line is a bullet list item
func isBulletLine(line string) bool {
	trimmed := strings.TrimLeft(line, " \t")
	if strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* ") {
		return true
	}
	for _, glyph := range bulletGlyphs {
		if strings.HasPrefix(trimmed, glyph) {
			return true
		}
	}
	return false
}

// normalizeBullet rewrites a leading bullet glyph as "- "
func normalizeBullet(trimmed string) string {
	for _, glyph := range bulletGlyphs {
		if strings.HasPrefix(trimmed, glyph) {
			return "- " + trimmed[len(glyph):]
		}
	}
	return trimmed
}
