// Package prompts loads the prompt contracts sent to the model. Each JSON file maps a
// prompt key to a template; files are embedded at compile time.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strings"
	"sync"
)

//go:embed *.json
var promptFiles embed.FS

var placeholderPattern = regexp.MustCompile(`\{\{\.([A-Za-z][A-Za-z0-9]*)\}\}`)

// catalog is every embedded prompt file, keyed by filename then prompt key
type catalog map[string]map[string]string

// load parses all embedded files once. A malformed file fails every lookup.
var load = sync.OnceValues(func() (catalog, error) {
	names, err := fs.Glob(promptFiles, "*.json")
	if err != nil {
		return nil, err
	}
	c := make(catalog, len(names))
	for _, name := range names {
		data, err := promptFiles.ReadFile(name)
		if err != nil {
			return nil, &Error{File: name, Message: "failed to read prompt file", Cause: err}
		}
		var file map[string]string
		if err := json.Unmarshal(data, &file); err != nil {
			return nil, &Error{File: name, Message: "failed to parse prompt file", Cause: err}
		}
		c[name] = file
	}
	return c, nil
})

func lookupFile(filename string) (map[string]string, error) {
	c, err := load()
	if err != nil {
		return nil, err
	}
	file, ok := c[filename]
	if !ok {
		return nil, &Error{File: filename, Message: "no such prompt file"}
	}
	return file, nil
}

// Get retrieves a prompt by filename and key, e.g. Get("generation.json", "suggest-edits").
func Get(filename, key string) (string, error) {
	file, err := lookupFile(filename)
	if err != nil {
		return "", err
	}
	prompt, ok := file[key]
	if !ok {
		return "", &Error{File: filename, Key: key, Message: "prompt key not found"}
	}
	return prompt, nil
}

// MustGet is Get for prompts the program cannot run without
func MustGet(filename, key string) string {
	prompt, err := Get(filename, key)
	if err != nil {
		panic(fmt.Sprintf("failed to load prompt: %v", err))
	}
	return prompt
}

// Format replaces {{.Key}} placeholders with values from data. Unknown placeholders are
// left in place; values are inserted verbatim and never re-expanded.
func Format(template string, data map[string]string) string {
	return placeholderPattern.ReplaceAllStringFunc(template, func(m string) string {
		if v, ok := data[placeholderPattern.FindStringSubmatch(m)[1]]; ok {
			return v
		}
		return m
	})
}

// Placeholders returns the distinct placeholder names of a template in order of appearance
func Placeholders(template string) []string {
	var names []string
	seen := make(map[string]bool)
	for _, m := range placeholderPattern.FindAllStringSubmatch(template, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}

// Render looks a prompt up and fills it. Every placeholder must have a value.
func Render(filename, key string, data map[string]string) (string, error) {
	template, err := Get(filename, key)
	if err != nil {
		return "", err
	}
	var missing []string
	for _, name := range Placeholders(template) {
		if _, ok := data[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return "", &Error{File: filename, Key: key, Message: "missing values for " + strings.Join(missing, ", ")}
	}
	return Format(template, data), nil
}

// Keys returns the prompt keys of a file in sorted order
func Keys(filename string) ([]string, error) {
	file, err := lookupFile(filename)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(file))
	for key := range file {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}
