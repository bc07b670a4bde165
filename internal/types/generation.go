package types

// TailorInput is the shared input of the keyword, suggestion and generation prompt contracts
type TailorInput struct {
	ResumeText     string `json:"resume_text" validate:"required"`
	JobDescription string `json:"job_description" validate:"required"`
}

// KeywordAnalysis is the output of the keyword-analysis contract
type KeywordAnalysis struct {
	Keywords string `json:"keywords"`
}

// EditSuggestions is the output of the edit-suggestions contract
type EditSuggestions struct {
	SuggestedEdits string `json:"suggestedEdits"`
}
