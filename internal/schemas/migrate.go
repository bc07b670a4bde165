package schemas

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Legacy generation outputs that predate the structured resume shape.
const (
	ShapeCanonical      = "canonical"
	ShapeLegacyText     = "legacy-text"     // {"tailoredResume": "..."}
	ShapeLegacySections = "legacy-sections" // {"sections": [{"title", "body"}]}
	ShapeUnknown        = "unknown"
)

// contactHeaderLines bounds how far into flat text contact details are searched
const contactHeaderLines = 4

var (
	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	phonePattern = regexp.MustCompile(`(\+\d{1,3}[\s.\-]?)?\(?\d{3}\)?[\s.\-]?\d{3}[\s.\-]\d{4}|\b\d{3}-\d{4}\b`)
)

// DetectShape classifies a decoded generation output
func DetectShape(raw map[string]any) string {
	if raw == nil {
		return ShapeUnknown
	}
	if _, ok := raw["workExperience"]; ok {
		return ShapeCanonical
	}
	if _, ok := raw["sections"].([]any); ok {
		return ShapeLegacySections
	}
	if _, ok := raw["tailoredResume"].(string); ok {
		return ShapeLegacyText
	}
	if _, ok := raw["name"]; ok {
		return ShapeCanonical
	}
	return ShapeUnknown
}

// Migrate rewrites a legacy-shaped object into the canonical resume shape. The returned
// bool is true when a migration was applied. Canonical and unknown shapes are returned
// unchanged so the validator reports their problems.
//
// Only the flat-text shape, which has no structured contact fields of its own,
// gets a missing email or phone filled in. They are copied verbatim from the
// first contactHeaderLines non-blank lines of the text and nothing else is
// inferred. A sections-shaped object keeps whatever contact fields it carries.
func Migrate(raw map[string]any) (map[string]any, bool) {
	switch DetectShape(raw) {
	case ShapeLegacyText:
		return migrateText(raw), true
	case ShapeLegacySections:
		return migrateSections(raw), true
	default:
		return raw, false
	}
}

// MigrateJSON applies Migrate to JSON bytes. Input that is not a JSON object is returned as-is.
func MigrateJSON(data []byte) ([]byte, bool) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return data, false
	}
	migrated, ok := Migrate(raw)
	if !ok {
		return data, false
	}
	out, err := json.Marshal(migrated)
	if err != nil {
		return data, false
	}
	return out, true
}

func migrateText(raw map[string]any) map[string]any {
	text, _ := raw["tailoredResume"].(string)
	out := baseFromLegacy(raw, text)

	lines := nonBlankLines(text)
	fillContact(out, lines[:min(len(lines), contactHeaderLines)])
	if len(lines) > 1 {
		out["otherSections"] = []any{
			map[string]any{"title": "Resume", "body": strings.Join(lines[1:], "\n")},
		}
	}
	return out
}

func migrateSections(raw map[string]any) map[string]any {
	sections, _ := raw["sections"].([]any)

	var full strings.Builder
	other := make([]any, 0, len(sections))
	summary := map[string]any{"title": "Summary", "body": ""}
	summaryTaken := false

	for _, s := range sections {
		section, ok := s.(map[string]any)
		if !ok {
			continue
		}
		title, _ := section["title"].(string)
		body, _ := section["body"].(string)

		if full.Len() > 0 {
			full.WriteString("\n\n")
		}
		full.WriteString(title)
		full.WriteString("\n")
		full.WriteString(body)

		if !summaryTaken && isSummaryTitle(title) {
			summary = map[string]any{"title": title, "body": strings.TrimSpace(body)}
			summaryTaken = true
			continue
		}
		other = append(other, map[string]any{"title": title, "body": body})
	}

	text, ok := raw["fullResumeText"].(string)
	if !ok {
		text, ok = raw["tailoredResume"].(string)
	}
	if !ok {
		text = full.String()
	}

	out := baseFromLegacy(raw, text)
	out["summary"] = summary
	if len(other) > 0 {
		out["otherSections"] = other
	}
	return out
}

// baseFromLegacy builds the canonical skeleton shared by both legacy migrations
func baseFromLegacy(raw map[string]any, text string) map[string]any {
	out := map[string]any{
		"summary":        map[string]any{"title": "Summary", "body": ""},
		"workExperience": []any{},
		"education":      []any{},
		"fullResumeText": text,
	}

	for _, key := range []string{"name", "candidateTitle", "email", "phone", "linkedin", "address"} {
		if v, ok := raw[key].(string); ok {
			out[key] = v
		}
	}

	if _, ok := out["name"]; !ok {
		if lines := nonBlankLines(text); len(lines) > 0 {
			out["name"] = lines[0]
		}
	}
	return out
}

// fillContact copies an email and phone found in header lines into out when absent
func fillContact(out map[string]any, header []string) {
	text := strings.Join(header, "\n")
	if _, ok := out["email"]; !ok {
		if m := emailPattern.FindString(text); m != "" {
			out["email"] = m
		}
	}
	if _, ok := out["phone"]; !ok {
		if m := phonePattern.FindString(text); m != "" {
			out["phone"] = strings.TrimSpace(m)
		}
	}
}

func isSummaryTitle(title string) bool {
	t := strings.ToLower(strings.TrimSpace(title))
	return t == "summary" || t == "professional summary" || t == "profile"
}

func nonBlankLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return lines
}
