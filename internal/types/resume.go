// Package types provides type definitions for structured data used throughout the resume-tailor system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// Resume is the canonical structured resume produced by generation and consumed by layout.
// A Resume is treated as immutable once it has passed schema validation.
type Resume struct {
	Name           string          `json:"name" yaml:"name"`
	CandidateTitle string          `json:"candidateTitle,omitempty" yaml:"candidateTitle,omitempty"`
	Email          string          `json:"email" yaml:"email"`
	Phone          string          `json:"phone" yaml:"phone"`
	LinkedIn       string          `json:"linkedin,omitempty" yaml:"linkedin,omitempty"`
	Address        string          `json:"address,omitempty" yaml:"address,omitempty"`
	Summary        Summary         `json:"summary" yaml:"summary"`
	WorkExperience []WorkItem      `json:"workExperience" yaml:"workExperience"`
	Education      []EducationItem `json:"education" yaml:"education"`
	OtherSections  []Section       `json:"otherSections,omitempty" yaml:"otherSections,omitempty"`
	FullResumeText string          `json:"fullResumeText" yaml:"fullResumeText"`
}

// Summary is the professional summary block of a resume
type Summary struct {
	Title string `json:"title" yaml:"title"`
	Body  string `json:"body" yaml:"body"`
}

// WorkItem is a single position. Description entries are rendered one bullet each.
type WorkItem struct {
	JobTitle    string   `json:"jobTitle" yaml:"jobTitle"`
	Company     string   `json:"company" yaml:"company"`
	Location    string   `json:"location" yaml:"location"`
	Dates       string   `json:"dates" yaml:"dates"`
	Description []string `json:"description" yaml:"description"`
}

// EducationItem is a single degree or program
type EducationItem struct {
	Degree   string   `json:"degree" yaml:"degree"`
	School   string   `json:"school" yaml:"school"`
	Location string   `json:"location,omitempty" yaml:"location,omitempty"`
	Dates    string   `json:"dates,omitempty" yaml:"dates,omitempty"`
	Details  []string `json:"details,omitempty" yaml:"details,omitempty"`
}

// Section is a free-form named block such as "Skills" or "Certifications".
// Body lines starting with "- " or "* " are bullets; other non-blank lines are paragraphs.
type Section struct {
	Title string `json:"title" yaml:"title"`
	Body  string `json:"body" yaml:"body"`
}
