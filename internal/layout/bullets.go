package layout

import (
	"strings"
	"unicode"
)

// bulletMarkers are the line prefixes that turn a section line into a bullet
var bulletMarkers = []string{"- ", "* "}

// StripBullet trims a line and removes its bullet marker. The bool reports whether the
// line was a bullet.
func StripBullet(line string) (string, bool) {
	trimmed := strings.TrimLeftFunc(line, unicode.IsSpace)
	for _, marker := range bulletMarkers {
		if strings.HasPrefix(trimmed, marker) {
			return strings.TrimSpace(trimmed[len(marker):]), true
		}
	}
	return strings.TrimSpace(trimmed), false
}

// ParseBody splits a section body into paragraph and bullet blocks. Blank lines produce
// nothing, and a marker with no text after it is dropped.
func ParseBody(body string) []Block {
	var blocks []Block
	for _, line := range splitLines(body) {
		text, isBullet := StripBullet(line)
		if text == "" {
			continue
		}
		if isBullet {
			blocks = append(blocks, BulletBlock{Text: text})
		} else {
			blocks = append(blocks, ParagraphBlock{Text: text})
		}
	}
	return blocks
}

func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.Split(s, "\n")
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
