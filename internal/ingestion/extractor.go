package ingestion

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

// Media types the extractor understands
const (
	MediaTypePDF  = "application/pdf"
	MediaTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MediaTypeText = "text/plain"
)

// ExtractorConfig is fixed when the extractor is built and never changes afterwards
type ExtractorConfig struct {
	// MaxBytes rejects larger uploads; zero means no limit
	MaxBytes int64 `json:"max_bytes" yaml:"max_bytes"`
	// AllowedTypes lists accepted media types; empty accepts every supported type
	AllowedTypes []string `json:"allowed_types" yaml:"allowed_types"`
	// MinTextLength is the fewest non-space characters a file must yield
	MinTextLength int `json:"min_text_length" yaml:"min_text_length"`
}

// DefaultExtractorConfig accepts PDF, DOCX and plain text up to 10 MiB
func DefaultExtractorConfig() ExtractorConfig {
	return ExtractorConfig{
		MaxBytes:      10 << 20,
		AllowedTypes:  []string{MediaTypePDF, MediaTypeDOCX, MediaTypeText},
		MinTextLength: 20,
	}
}

// Document is the text extracted from one file
type Document struct {
	Filename  string    `json:"filename"`
	MediaType string    `json:"media_type"`
	Pages     int       `json:"pages,omitempty"`
	Text      string    `json:"text"`
	Metadata  *Metadata `json:"metadata"`
}

// Extractor converts uploaded bytes into cleaned plain text
type Extractor struct {
	config ExtractorConfig
}

// NewExtractor creates an extractor with the given configuration
func NewExtractor(config ExtractorConfig) *Extractor {
	config.AllowedTypes = slices.Clone(config.AllowedTypes)
	return &Extractor{config: config}
}

// Config returns a copy of the extractor's configuration
func (e *Extractor) Config() ExtractorConfig {
	c := e.config
	c.AllowedTypes = slices.Clone(c.AllowedTypes)
	return c
}

// ExtractFile reads a file from disk and extracts its text
func (e *Extractor) ExtractFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("file not found: %w", err)
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return e.Extract(filepath.Base(path), data)
}

// Extract detects the type of data and returns its cleaned text. All failures are
// *ExtractionError values.
func (e *Extractor) Extract(filename string, data []byte) (*Document, error) {
	if e.config.MaxBytes > 0 && int64(len(data)) > e.config.MaxBytes {
		return nil, &ExtractionError{
			Filename: filename,
			Reason:   ReasonTooLarge,
			Cause:    fmt.Errorf("%d bytes exceeds the %d byte limit", len(data), e.config.MaxBytes),
		}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &ExtractionError{Filename: filename, Reason: ReasonEmpty, Cause: errors.New("file is empty")}
	}

	mediaType := DetectMediaType(filename, data)
	if !e.allowed(mediaType) {
		return nil, &ExtractionError{
			Filename: filename,
			Reason:   ReasonUnsupportedType,
			Cause:    fmt.Errorf("detected %s", mediaType),
		}
	}

	var (
		raw   string
		pages int
		err   error
	)
	switch mediaType {
	case MediaTypePDF:
		raw, pages, err = extractPDF(data)
	case MediaTypeDOCX:
		raw, err = extractDOCX(data)
	case MediaTypeText:
		raw, err = decodeText(data)
	}
	if err != nil {
		return nil, &ExtractionError{Filename: filename, Reason: ReasonCorrupt, Cause: err}
	}

	text := CleanText(raw)
	if text == "" || countNonSpace(text) < e.config.MinTextLength {
		return nil, &ExtractionError{
			Filename: filename,
			Reason:   ReasonEmpty,
			Cause:    errors.New("the file may be a scanned image or contain only graphics"),
		}
	}

	return &Document{
		Filename:  filename,
		MediaType: mediaType,
		Pages:     pages,
		Text:      text,
		Metadata:  NewMetadata(text, Source{Filename: filename, MediaType: mediaType}),
	}, nil
}

func (e *Extractor) allowed(mediaType string) bool {
	switch mediaType {
	case MediaTypePDF, MediaTypeDOCX, MediaTypeText:
	default:
		return false
	}
	return len(e.config.AllowedTypes) == 0 || slices.Contains(e.config.AllowedTypes, mediaType)
}

// DetectMediaType sniffs the content and falls back to the file extension for containers
// the sniffer reports generically, such as a DOCX seen as a plain ZIP archive.
func DetectMediaType(filename string, data []byte) string {
	mt := mimetype.Detect(data)
	switch {
	case mt.Is(MediaTypePDF):
		return MediaTypePDF
	case mt.Is(MediaTypeDOCX):
		return MediaTypeDOCX
	case mt.Is(MediaTypeText):
		return MediaTypeText
	}

	ext := strings.ToLower(filepath.Ext(filename))
	switch {
	case mt.Is("application/zip") && ext == ".docx":
		return MediaTypeDOCX
	case ext == ".txt" || ext == ".md":
		if utf8.Valid(data) {
			return MediaTypeText
		}
	}

	media := mt.String()
	if i := strings.Index(media, ";"); i >= 0 {
		media = media[:i]
	}
	return media
}

// extractPDF concatenates the plain text of every page. The PDF reader panics on some
// malformed input, so panics are converted into errors.
func extractPDF(data []byte) (text string, pages int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed PDF: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", 0, fmt.Errorf("failed to open PDF: %w", err)
	}

	var sb strings.Builder
	pages = reader.NumPage()
	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(pageText)
	}
	return sb.String(), pages, nil
}

// extractDOCX reads word/document.xml and flattens its runs into lines, one per paragraph
func extractDOCX(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open DOCX: %w", err)
	}
	defer func() { _ = doc.Close() }()

	return documentXMLText(doc.Editable().GetContent())
}

// documentXMLText walks WordprocessingML and keeps text runs, tabs, breaks and paragraph ends.
// List paragraphs are prefixed with "- " so bullets survive extraction.
func documentXMLText(content string) (string, error) {
	var (
		sb       strings.Builder
		inText   bool
		listItem bool
	)
	dec := xml.NewDecoder(strings.NewReader(content))
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("invalid document.xml: %w", err)
		}

		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "p":
				listItem = false
			case "numPr":
				listItem = markListItem(&sb, listItem)
			case "pStyle":
				for _, attr := range el.Attr {
					if attr.Name.Local == "val" && strings.HasPrefix(attr.Value, "List") {
						listItem = markListItem(&sb, listItem)
					}
				}
			case "t":
				inText = true
			case "tab":
				sb.WriteString("\t")
			case "br", "cr":
				sb.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				sb.Write(el)
			}
		case xml.EndElement:
			switch el.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteString("\n")
			}
		}
	}
	return sb.String(), nil
}

func markListItem(sb *strings.Builder, already bool) bool {
	if !already {
		sb.WriteString("- ")
	}
	return true
}

func decodeText(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if !utf8.Valid(data) {
		return "", errors.New("text is not valid UTF-8")
	}
	return string(data), nil
}

func countNonSpace(s string) int {
	n := 0
	for _, r := range s {
		if r != ' ' && r != '\n' && r != '\t' {
			n++
		}
	}
	return n
}
