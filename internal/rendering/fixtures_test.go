package rendering

import (
	"fmt"

	"github.com/jonathan/resume-tailor/internal/types"
)

func sampleResume() *types.Resume {
	return &types.Resume{
		Name:           "Jane Doe",
		CandidateTitle: "Platform Engineer",
		Email:          "jane@example.com",
		Phone:          "555-1234",
		Address:        "NYC",
		Summary:        types.Summary{Title: "Summary", Body: "Engineer focused on R&D tooling."},
		WorkExperience: []types.WorkItem{
			{
				JobTitle: "Senior Engineer", Company: "Acme", Location: "Remote", Dates: "2021 - Present",
				Description: []string{"Led a team of 5", "Reduced build time by 40%"},
			},
		},
		Education: []types.EducationItem{
			{Degree: "B.S. Computer Science", School: "State University", Dates: "2017"},
		},
		OtherSections: []types.Section{
			{Title: "Skills", Body: "- Go\n- Kubernetes"},
		},
		FullResumeText: "Jane Doe\nPlatform Engineer\n...",
	}
}

// longResume has enough entries to need several PDF pages
func longResume() *types.Resume {
	r := sampleResume()
	r.WorkExperience = nil
	description := []string{
		"Designed and shipped a service handling millions of requests per day with careful attention to latency budgets",
		"Mentored engineers and ran the on-call rotation",
	}
	for i := 0; i < 30; i++ {
		r.WorkExperience = append(r.WorkExperience, types.WorkItem{
			JobTitle:    fmt.Sprintf("Engineer %d", i),
			Company:     "Company",
			Location:    "Remote",
			Dates:       "2020",
			Description: description,
		})
	}
	return r
}

// unicodeResume carries names outside Latin-1, a multi-line summary and a
// section body with bullets
func unicodeResume() *types.Resume {
	return &types.Resume{
		Name:           "José García",
		CandidateTitle: "Ingénieure logicielle",
		Email:          "jose@example.com",
		Address:        "Kraków",
		Summary: types.Summary{
			Title: "Summary",
			Body:  "Worked with Jane O’Neil on payments.\nLater joined Łukasz Dvořák’s platform team.",
		},
		WorkExperience: []types.WorkItem{
			{
				JobTitle: "Staff Engineer", Company: "Zürich Labs", Dates: "2020 - 2024",
				Description: []string{"Shipped a résumé parser", "Cut p99 latency by 30%"},
			},
		},
		OtherSections: []types.Section{
			{Title: "Languages", Body: "Fluent in three languages\n- Español\n- Polski (Łódź dialect)"},
		},
	}
}
