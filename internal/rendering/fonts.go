package rendering

import (
	"embed"
	"strings"
	"unicode/utf8"

	"github.com/go-pdf/fpdf"
)

// FontFamily is the UTF-8 family every PDF style is drawn with
const FontFamily = "DejaVu"

//go:embed fonts/*.ttf
var fontFiles embed.FS

// fontFaces lists style and file pairs in registration order
var fontFaces = [][2]string{
	{"", "fonts/DejaVuSansCondensed.ttf"},
	{"B", "fonts/DejaVuSansCondensed-Bold.ttf"},
	{"I", "fonts/DejaVuSansCondensed-Oblique.ttf"},
	{"BI", "fonts/DejaVuSansCondensed-BoldOblique.ttf"},
}

// registerFonts adds the embedded faces to pdf. Errors surface through pdf.Error.
func registerFonts(pdf *fpdf.Fpdf) {
	for _, face := range fontFaces {
		data, err := fontFiles.ReadFile(face[1])
		if err != nil {
			pdf.SetError(err)
			return
		}
		pdf.AddUTF8FontFromBytes(FontFamily, face[0], data)
	}
}

// pdfText replaces runes outside the Basic Multilingual Plane with U+FFFD.
// The font width tables only index the BMP.
func pdfText(s string) string {
	return strings.Map(func(r rune) rune {
		if r > 0xFFFF {
			return utf8.RuneError
		}
		return r
	}, s)
}
