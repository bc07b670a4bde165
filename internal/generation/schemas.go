package generation

import "github.com/jonathan/resume-tailor/internal/llm"

// KeywordsSchema is the response shape of the keyword contract
func KeywordsSchema() *llm.Schema {
	return llm.Object(map[string]*llm.Schema{
		"keywords": llm.String("Markdown report of matched and missing keywords"),
	}, "keywords")
}

// SuggestionsSchema is the response shape of the suggestion contract
func SuggestionsSchema() *llm.Schema {
	return llm.Object(map[string]*llm.Schema{
		"suggestedEdits": llm.String("Markdown list of suggested edits grouped by section"),
	}, "suggestedEdits")
}

// ResumeSchema is the response shape of the resume contract and of chat resumeData.
// It mirrors schemas/resume.schema.json, which remains the authority on validity.
func ResumeSchema() *llm.Schema {
	optional := func(description string) *llm.Schema {
		s := llm.String(description)
		s.Nullable = true
		return s
	}

	workItem := llm.Object(map[string]*llm.Schema{
		"jobTitle":    llm.String(""),
		"company":     llm.String(""),
		"location":    llm.String(""),
		"dates":       llm.String("e.g. Jan 2020 - Present"),
		"description": llm.ArrayOf(llm.String("achievement without a bullet marker"), ""),
	}, "jobTitle", "company", "location", "dates", "description")

	educationItem := llm.Object(map[string]*llm.Schema{
		"degree":   llm.String(""),
		"school":   llm.String(""),
		"location": optional(""),
		"dates":    optional(""),
		"details":  llm.ArrayOf(llm.String(""), ""),
	}, "degree", "school")

	section := llm.Object(map[string]*llm.Schema{
		"title": llm.String(""),
		"body":  llm.String("lines starting with \"- \" are bullets"),
	}, "title", "body")

	summary := llm.Object(map[string]*llm.Schema{
		"title": llm.String(""),
		"body":  llm.String(""),
	}, "title", "body")

	return llm.Object(map[string]*llm.Schema{
		"name":           llm.String("candidate full name"),
		"candidateTitle": optional("target job title"),
		"email":          llm.String("empty string when unknown"),
		"phone":          llm.String("empty string when unknown"),
		"linkedin":       optional(""),
		"address":        optional("city and country"),
		"summary":        summary,
		"workExperience": llm.ArrayOf(workItem, "most recent first"),
		"education":      llm.ArrayOf(educationItem, ""),
		"otherSections":  llm.ArrayOf(section, "skills, projects, certifications"),
		"fullResumeText": llm.String("the complete tailored resume as plain text"),
	}, "name", "email", "phone", "summary", "workExperience", "education", "fullResumeText")
}
