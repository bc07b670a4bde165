// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/resume-tailor/internal/layout"
	"github.com/jonathan/resume-tailor/internal/pipeline"
	"github.com/jonathan/resume-tailor/internal/pipeline/steps"
	"github.com/jonathan/resume-tailor/internal/rendering"
	"github.com/jonathan/resume-tailor/internal/schemas"
	"github.com/jonathan/resume-tailor/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
	// maxLinesToShow bounds free-text sections such as keyword analyses
	maxLinesToShow = 12
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// truncate shortens s to at most width runes, marking the cut with "..."
func truncate(s string, width int) string {
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	runes := []rune(s)
	return string(runes[:width-3]) + "..."
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	inner := boxWidth - 4
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", pad(truncate(title, inner), inner))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %s │\n", pad(truncate(line, inner), inner))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// pad right-pads s with spaces to width runes. fmt's %-*s pads by bytes, which
// misaligns the box border for non-ASCII text.
func pad(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

// firstLines returns up to n non-blank lines of text and how many were left out
func firstLines(text string, n int) ([]string, int) {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, strings.TrimRight(line, " \t\r"))
		}
	}
	if len(lines) <= n {
		return lines, 0
	}
	return lines[:n], len(lines) - n
}

func (p *Printer) printText(title, text string) {
	lines, more := firstLines(text, maxLinesToShow)
	if len(lines) == 0 {
		lines = []string{"(empty)"}
	}
	if more > 0 {
		lines = append(lines, fmt.Sprintf("... and %d more lines", more))
	}
	p.printBox(title, strings.Join(lines, "\n"))
}

// PrintKeywords outputs the keyword analysis
func (p *Printer) PrintKeywords(analysis *types.KeywordAnalysis) {
	if analysis == nil {
		return
	}
	p.printText("KEYWORD ANALYSIS", analysis.Keywords)
}

// PrintSuggestions outputs the suggested edits
func (p *Printer) PrintSuggestions(suggestions *types.EditSuggestions) {
	if suggestions == nil {
		return
	}
	p.printText("SUGGESTED EDITS", suggestions.SuggestedEdits)
}

// PrintResume outputs a human-readable summary of a structured resume.
func (p *Printer) PrintResume(r *types.Resume) {
	if r == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Name:     %s\n", r.Name))
	if r.CandidateTitle != "" {
		sb.WriteString(fmt.Sprintf("Title:    %s\n", r.CandidateTitle))
	}
	sb.WriteString(fmt.Sprintf("Contact:  %s\n", layout.ContactLine(r)))
	sb.WriteString("\n")

	if len(r.WorkExperience) > 0 {
		sb.WriteString("Work Experience:\n")
		count := min(len(r.WorkExperience), maxItemsToShow)
		for i := 0; i < count; i++ {
			item := r.WorkExperience[i]
			sb.WriteString(fmt.Sprintf("  • %s, %s (%d bullets)\n", item.JobTitle, item.Company, len(item.Description)))
		}
		if len(r.WorkExperience) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(r.WorkExperience)-maxItemsToShow))
		}
		sb.WriteString("\n")
	}

	if len(r.Education) > 0 {
		sb.WriteString("Education:\n")
		count := min(len(r.Education), 3)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s, %s\n", r.Education[i].Degree, r.Education[i].School))
		}
		if len(r.Education) > 3 {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(r.Education)-3))
		}
		sb.WriteString("\n")
	}

	if len(r.OtherSections) > 0 {
		titles := make([]string, 0, len(r.OtherSections))
		for _, s := range r.OtherSections {
			titles = append(titles, s.Title)
		}
		sb.WriteString(fmt.Sprintf("Other sections: %s\n", strings.Join(titles, ", ")))
	}

	p.printBox("TAILORED RESUME", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintBlocks outputs the layout block sequence, one block per line
func (p *Printer) PrintBlocks(blocks []layout.Block) {
	if len(blocks) == 0 {
		p.printBox("LAYOUT", "No blocks")
		return
	}

	counts := make(map[layout.Kind]int)
	var sb strings.Builder
	for _, b := range blocks {
		counts[b.Kind()]++
		sb.WriteString(fmt.Sprintf("%-14s %s\n", b.Kind(), layout.Text(b)))
	}

	kinds := make([]string, 0, len(counts))
	for k, n := range counts {
		kinds = append(kinds, fmt.Sprintf("%s=%d", k, n))
	}
	sort.Strings(kinds)
	sb.WriteString(fmt.Sprintf("\n%d blocks: %s", len(blocks), strings.Join(kinds, " ")))

	p.printBox("LAYOUT", sb.String())
}

// PrintPlan outputs where pagination placed each block and flags overflowing blocks
func (p *Printer) PrintPlan(plan rendering.Plan) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Pages: %d  (%.0fx%.0fmm)\n\n", plan.Pages, plan.Geometry.PageWidth, plan.Geometry.PageHeight))

	page := 0
	for _, pl := range plan.Placements {
		if pl.Page != page {
			page = pl.Page
			sb.WriteString(fmt.Sprintf("Page %d\n", page))
		}
		marker := " "
		if pl.Overflow {
			marker = "!"
		}
		sb.WriteString(fmt.Sprintf("%s y=%6.1f h=%5.1f %s\n", marker, pl.Y, pl.Height, truncate(layout.Text(pl.Block), 30)))
	}

	if over := plan.Overflowing(); len(over) > 0 {
		sb.WriteString(fmt.Sprintf("\n%d block(s) overflow the bottom margin", len(over)))
	}

	p.printBox("PAGINATION", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintSchemaError outputs every violated field of a resume
func (p *Printer) PrintSchemaError(err *schemas.SchemaError) {
	if err == nil || len(err.Errors) == 0 {
		p.printBox("SCHEMA VALIDATION", "✓ Resume matches the schema")
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d violation(s):\n\n", len(err.Errors)))
	for i, fe := range err.Errors {
		sb.WriteString(fmt.Sprintf("%d. %s: %s\n", i+1, fe.Field, fe.Message))
	}
	p.printBox("SCHEMA VIOLATIONS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintProgress outputs one pipeline progress event as a single line
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintProgress(event pipeline.ProgressEvent) {
	icon := "…"
	switch event.Status {
	case steps.StatusCompleted:
		icon = "✓"
	case steps.StatusFailed:
		icon = "✗"
	}
	fmt.Fprintf(p.out, "%s [%s] %s\n", icon, event.Step, event.Message)
}

// PrintRunResult outputs every contract outcome of a run
func (p *Printer) PrintRunResult(result *pipeline.Result) {
	if result == nil {
		return
	}
	p.PrintKeywords(result.Keywords)
	p.PrintSuggestions(result.Suggestions)
	p.PrintResume(result.Resume)

	if len(result.Errors) == 0 {
		return
	}
	messages := result.ErrorMessages()
	names := make([]string, 0, len(messages))
	for name := range messages {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	for _, name := range names {
		sb.WriteString(fmt.Sprintf("✗ %s: %s\n", name, messages[name]))
	}
	p.printBox("FAILED CONTRACTS", strings.TrimSuffix(sb.String(), "\n"))
}
