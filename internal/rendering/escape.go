package rendering

import (
	"encoding/xml"
	"strings"
)

// latexReplacer escapes the characters LaTeX treats specially in text mode. < and > need
// commands because the default font encoding prints them as inverted punctuation.
var latexReplacer = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	`{`, `\{`,
	`}`, `\}`,
	`$`, `\$`,
	`&`, `\&`,
	`%`, `\%`,
	`#`, `\#`,
	`_`, `\_`,
	`^`, `\textasciicircum{}`,
	`~`, `\textasciitilde{}`,
	`<`, `\textless{}`,
	`>`, `\textgreater{}`,
)

// EscapeLaTeX escapes text for a LaTeX document body
func EscapeLaTeX(text string) string {
	return latexReplacer.Replace(text)
}

// EscapeXML escapes text for use as XML character data. Characters that are not legal
// in XML are replaced with U+FFFD.
func EscapeXML(text string) string {
	if text == "" {
		return ""
	}
	var sb strings.Builder
	sb.Grow(len(text) + len(text)/4)
	// EscapeText only fails when the writer does, and strings.Builder never does.
	_ = xml.EscapeText(&sb, []byte(text))
	return sb.String()
}
