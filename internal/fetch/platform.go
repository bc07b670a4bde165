package fetch

import (
	"net/url"
	"strings"
)

// Platform is a job board or applicant tracking system with known page structure
type Platform string

// Known platforms
const (
	PlatformGreenhouse      Platform = "greenhouse"
	PlatformLever           Platform = "lever"
	PlatformWorkday         Platform = "workday"
	PlatformAshby           Platform = "ashby"
	PlatformSmartRecruiters Platform = "smartrecruiters"
	PlatformUnknown         Platform = "unknown"
)

// platformRules describes where a platform puts the description and what to strip
type platformRules struct {
	domains []string // matched against the host and its parent domains
	content []string
	noise   []string
	// clientRendered boards ship an empty shell and fill the description in with JavaScript
	clientRendered bool
}

var platforms = map[Platform]platformRules{
	PlatformGreenhouse: {
		domains: []string{"greenhouse.io"},
		content: []string{".job__description.body", ".job__description", ".job-description__content", "#content", ".job-post-container"},
		noise:   []string{".application--wrapper", ".voluntary-self-id", ".voluntary-self-id-wrapper", "#usa_self_id_section", ".post-apply"},
	},
	PlatformLever: {
		domains: []string{"lever.co"},
		content: []string{".posting-page", ".section-wrapper.page-full-width", ".posting-description", ".content"},
		noise:   []string{".apply-section", ".lever-application-form", ".posting-apply"},
	},
	PlatformWorkday: {
		domains:        []string{"workday.com", "myworkdayjobs.com"},
		content:        []string{"[data-automation-id='jobPostingDescription']", "[data-automation-id='jobDescription']", ".job-description"},
		noise:          []string{"[data-automation-id='applyButton']", "[data-automation-id='similarJobs']", ".application-section"},
		clientRendered: true,
	},
	PlatformAshby: {
		domains:        []string{"ashbyhq.com"},
		content:        []string{"[class*='descriptionText']", "[class*='job-posting']", "main"},
		noise:          []string{"[class*='applicationForm']", "[class*='ApplicationForm']"},
		clientRendered: true,
	},
	PlatformSmartRecruiters: {
		domains: []string{"smartrecruiters.com"},
		content: []string{"[itemprop='description']", ".job-sections", "main"},
		noise:   []string{".job-apply", "[class*='apply-button']"},
	},
}

// commonNoise is removed from every page before the description is located
var commonNoise = []string{
	// application forms
	"form", "#application-form", ".application-form", ".apply-button-container", "[data-testid='application-form']",
	// EEO and legal
	".voluntary-disclosure", ".eeo-statement", ".eeo-section", "[data-testid='eeo']", ".legal-disclosure", ".self-identification",
	// sharing
	".social-share", ".share-buttons", ".social-links",
	// consent
	".cookie-banner", ".cookie-consent", ".gdpr-notice",
}

// DetectPlatform identifies the job board platform from a URL
func DetectPlatform(urlStr string) Platform {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return PlatformUnknown
	}
	host := strings.ToLower(parsed.Hostname())
	if host == "" {
		return PlatformUnknown
	}

	for platform, rules := range platforms {
		for _, domain := range rules.domains {
			if host == domain || strings.HasSuffix(host, "."+domain) {
				return platform
			}
		}
	}
	return PlatformUnknown
}

// ClientRendered reports whether the platform fills its description in with JavaScript,
// so a plain HTTP fetch is unlikely to contain it
func (p Platform) ClientRendered() bool {
	return platforms[p].clientRendered
}

// PlatformContentSelectors returns the description selectors for a platform, most
// specific first. Unknown platforms use the generic job posting selectors.
func PlatformContentSelectors(platform Platform) []string {
	rules, ok := platforms[platform]
	if !ok {
		return JobPostingSelectors()
	}
	return append([]string(nil), rules.content...)
}

// PlatformNoiseSelectors returns the elements to strip for a platform
func PlatformNoiseSelectors(platform Platform) []string {
	noise := append([]string(nil), commonNoise...)
	return append(noise, platforms[platform].noise...)
}
