package rendering

import (
	"strings"
	"testing"

	"github.com/jonathan/resume-tailor/internal/layout"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// collapse joins fields with single spaces so wrapped PDF lines and DOCX
// line breaks compare equal to the block text
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// assertInOrder checks that every block's text occurs in doc after the
// previous block's text
func assertInOrder(t *testing.T, format Format, doc string, blocks []layout.Block) {
	t.Helper()
	rest := doc
	for i, b := range blocks {
		want := collapse(layout.Text(b))
		idx := strings.Index(rest, want)
		if !assert.GreaterOrEqual(t, idx, 0, "%s: block %d (%s) %q missing or out of order", format, i, b.Kind(), want) {
			return
		}
		rest = rest[idx+len(want):]
	}
}

func TestEmitters_AgreeOnContentAndOrder(t *testing.T) {
	blocks := layout.Layout(unicodeResume())

	kinds := map[layout.Kind]int{}
	for _, b := range blocks {
		kinds[b.Kind()]++
	}
	require.Contains(t, layout.Text(blocks[2]), "\n", "summary must span lines")
	require.GreaterOrEqual(t, kinds[layout.KindBullet], 4)

	pdfData, err := NewPDFEmitter(DefaultGeometry(), nil).Emit(blocks)
	require.NoError(t, err)
	pdfText := collapse(strings.Join(pdfLines(t, pdfData), "\n"))

	docxData := emitDocx(t, blocks)
	var paragraphs []string
	for _, p := range paragraphTexts(t, documentXML(t, docxData)) {
		paragraphs = append(paragraphs, p.Text)
	}
	docxText := collapse(strings.Join(paragraphs, "\n"))

	assertInOrder(t, FormatPDF, pdfText, blocks)
	assertInOrder(t, FormatDOCX, docxText, blocks)

	for _, name := range []string{"José García", "Łukasz Dvořák’s", "Jane O’Neil", "Polski (Łódź dialect)"} {
		assert.Contains(t, pdfText, name)
		assert.Contains(t, docxText, name)
	}
}
