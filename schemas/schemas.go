// Package schemas holds the JSON Schema documents for the artifacts exchanged with the
// generation model. The files are embedded so validation does not depend on the working directory.
package schemas

import (
	"embed"
	"fmt"
)

//go:embed *.schema.json
var files embed.FS

// Schema file names
const (
	ResumeSchema    = "resume.schema.json"
	ChatTurnsSchema = "chat_turn.schema.json"
)

// Load returns the raw contents of an embedded schema file
func Load(name string) (string, error) {
	data, err := files.ReadFile(name)
	if err != nil {
		return "", fmt.Errorf("schema %s not found: %w", name, err)
	}
	return string(data), nil
}

// Names lists every embedded schema file
func Names() []string {
	entries, err := files.ReadDir(".")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}
