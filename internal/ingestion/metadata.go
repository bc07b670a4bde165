package ingestion

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Source names where a piece of text was ingested from
type Source struct {
	Filename  string
	MediaType string
	URL       string
	Platform  string
}

// Metadata describes where ingested text came from
type Metadata struct {
	Filename   string `json:"filename,omitempty"`
	MediaType  string `json:"media_type,omitempty"`
	URL        string `json:"url,omitempty"`
	Platform   string `json:"platform,omitempty"` // detected job board platform
	Timestamp  string `json:"timestamp"`          // RFC3339
	Hash       string `json:"hash"`               // SHA-256 of the cleaned text
	Characters int    `json:"characters"`
}

// now is replaced in tests
var now = time.Now

// NewMetadata describes cleaned text from src
func NewMetadata(content string, src Source) *Metadata {
	return &Metadata{
		Filename:   src.Filename,
		MediaType:  src.MediaType,
		URL:        src.URL,
		Platform:   src.Platform,
		Timestamp:  now().UTC().Format(time.RFC3339),
		Hash:       computeHash(content),
		Characters: len([]rune(content)),
	}
}

func computeHash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
