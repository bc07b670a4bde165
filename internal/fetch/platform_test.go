package fetch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectPlatform(t *testing.T) {
	tests := []struct {
		url      string
		expected Platform
	}{
		{"https://job-boards.greenhouse.io/doordashusa/jobs/7063751", PlatformGreenhouse},
		{"https://boards.greenhouse.io/company/jobs/123", PlatformGreenhouse},
		{"https://greenhouse.io/jobs/456", PlatformGreenhouse},
		{"https://jobs.lever.co/company/job-id", PlatformLever},
		{"https://acme.wd5.myworkdayjobs.com/en-US/careers/job/123", PlatformWorkday},
		{"https://JOBS.ASHBYHQ.COM/acme/1234", PlatformAshby},
		{"https://jobs.smartrecruiters.com/Acme/743999", PlatformSmartRecruiters},
		{"https://careers.example.com/jobs/1", PlatformUnknown},
		{"https://notgreenhouse.io/jobs/1", PlatformUnknown},
		{"https://greenhouse.io.evil.example/jobs/1", PlatformUnknown},
		{"://bad", PlatformUnknown},
		{"", PlatformUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.expected, DetectPlatform(tt.url))
		})
	}
}

func TestPlatform_ClientRendered(t *testing.T) {
	assert.True(t, PlatformWorkday.ClientRendered())
	assert.True(t, PlatformAshby.ClientRendered())
	assert.False(t, PlatformGreenhouse.ClientRendered())
	assert.False(t, PlatformUnknown.ClientRendered())
}

func TestPlatformContentSelectors(t *testing.T) {
	assert.Equal(t, ".job__description.body", PlatformContentSelectors(PlatformGreenhouse)[0])
	assert.Contains(t, PlatformContentSelectors(PlatformAshby), "[class*='descriptionText']")

	unknown := PlatformContentSelectors(PlatformUnknown)
	assert.Equal(t, JobPostingSelectors(), unknown)
}

func TestPlatformContentSelectors_ReturnsCopy(t *testing.T) {
	selectors := PlatformContentSelectors(PlatformLever)
	selectors[0] = "mutated"

	assert.NotEqual(t, "mutated", PlatformContentSelectors(PlatformLever)[0])
}

func TestPlatformNoiseSelectors(t *testing.T) {
	greenhouse := PlatformNoiseSelectors(PlatformGreenhouse)
	assert.Contains(t, greenhouse, "form")
	assert.Contains(t, greenhouse, "#application-form")
	assert.Contains(t, greenhouse, ".voluntary-self-id")

	unknown := PlatformNoiseSelectors(PlatformUnknown)
	assert.Contains(t, unknown, ".cookie-banner")
	assert.NotContains(t, unknown, ".voluntary-self-id")
	assert.Len(t, unknown, len(commonNoise))
}
