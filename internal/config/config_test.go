package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonathan/resume-tailor/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func envMap(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func TestLoadConfig_ValidJSON(t *testing.T) {
	content := `{
		"job_url": "https://example.com/job",
		"provider": "genai",
		"models": {"advanced": "gemini-2.5-pro"},
		"browser_timeout": "45s",
		"rate_limit": {"default_limit": 50, "default_window": 30},
		"verbose": true
	}`

	cfg, err := LoadConfig(writeFile(t, "config.json", content))
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "https://example.com/job", cfg.JobURL)
	assert.Equal(t, "genai", cfg.Provider)
	assert.Equal(t, "gemini-2.5-pro", cfg.Models["advanced"])
	assert.Equal(t, 45*time.Second, cfg.BrowserTimeout.Std())
	assert.Equal(t, 50, cfg.RateLimit.DefaultLimit)
	assert.Equal(t, 30*time.Second, cfg.RateLimit.DefaultWindow.Std())
	assert.True(t, cfg.Verbose)
}

func TestLoadConfig_ValidYAML(t *testing.T) {
	content := `
job: job.txt
page_size: letter
margin_mm: 20
log_format: json
rate_limit:
  default_window: 2m
  whitelist: [127.0.0.1]
`
	cfg, err := LoadConfig(writeFile(t, "config.yaml", content))
	require.NoError(t, err)

	assert.Equal(t, "job.txt", cfg.Job)
	assert.Equal(t, "letter", cfg.PageSize)
	assert.Equal(t, 20.0, cfg.MarginMM)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 2*time.Minute, cfg.RateLimit.DefaultWindow.Std())
	assert.Equal(t, []string{"127.0.0.1"}, cfg.RateLimit.Whitelist)
}

func TestLoadConfig_UnknownExtensionFallsBackToYAML(t *testing.T) {
	cfg, err := LoadConfig(writeFile(t, "tailor.conf", "port: 9000\n"))
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Port)
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	cfg, err := LoadConfig(writeFile(t, "config.json", `{ invalid json }`))
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config JSON")
}

func TestLoadConfig_InvalidDuration(t *testing.T) {
	_, err := LoadConfig(writeFile(t, "config.json", `{"browser_timeout": "soon"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid duration")
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.json")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "config path is empty")
}

func TestValidate(t *testing.T) {
	existing := writeFile(t, "job.txt", "Senior Go Engineer")

	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "empty config", cfg: Config{}},
		{name: "existing job file", cfg: Config{Job: existing}},
		{name: "job and job_url", cfg: Config{Job: existing, JobURL: "https://x"}, wantErr: "mutually exclusive"},
		{name: "missing job file", cfg: Config{Job: "/nonexistent/job.txt"}, wantErr: "job file not found"},
		{name: "missing resume file", cfg: Config{Resume: "/nonexistent/cv.pdf"}, wantErr: "resume file not found"},
		{name: "bad port", cfg: Config{Port: 70000}, wantErr: "'port'"},
		{name: "bad page size", cfg: Config{PageSize: "tabloid"}, wantErr: "unknown page_size"},
		{name: "bad log level", cfg: Config{LogLevel: "loud"}, wantErr: "unknown log level"},
		{name: "bad log format", cfg: Config{LogFormat: "xml"}, wantErr: "unknown log_format"},
		{name: "negative margin", cfg: Config{MarginMM: -1}, wantErr: "'margin_mm'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMergeWithDefaults(t *testing.T) {
	cfg := Config{
		Provider: "genai",
		Port:     9090,
		Verbose:  false,
	}

	merged := cfg.MergeWithDefaults(Default())

	assert.Equal(t, "genai", merged.Provider)
	assert.Equal(t, 9090, merged.Port)
	assert.Equal(t, "gemini-api", merged.Backend)
	assert.Equal(t, DefaultPageSize, merged.PageSize)
	assert.Equal(t, DefaultLogLevel, merged.LogLevel)
	assert.Equal(t, 1000, merged.RateLimit.DefaultLimit)
	assert.Equal(t, time.Minute, merged.RateLimit.DefaultWindow.Std())
	// bools are not merged
	assert.False(t, merged.RetryOnSchemaError)
	// the receiver is not modified
	assert.Empty(t, cfg.Backend)
}

func TestMergeWithDefaults_CopiesModels(t *testing.T) {
	defaults := Config{Models: map[string]string{"lite": "a"}}
	merged := (&Config{}).MergeWithDefaults(defaults)
	merged.Models["lite"] = "b"
	assert.Equal(t, "a", defaults.Models["lite"])
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	cfg.ApplyEnv(envMap(map[string]string{
		EnvAPIKey:        "key-1",
		EnvProvider:      "genai",
		EnvBackend:       "vertex",
		EnvProject:       "proj",
		EnvPort:          "3000",
		EnvLogLevel:      "debug",
		EnvUseBrowser:    "true",
		EnvRateLimit:     "5",
		EnvRateWindow:    "10s",
		EnvRateWhitelist: "10.0.0.1, 10.0.0.2,",
	}))

	assert.Equal(t, "key-1", cfg.APIKey)
	assert.Equal(t, "genai", cfg.Provider)
	assert.Equal(t, "vertex", cfg.Backend)
	assert.Equal(t, "proj", cfg.Project)
	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.UseBrowser)
	assert.Equal(t, 5, cfg.RateLimit.DefaultLimit)
	assert.Equal(t, 10*time.Second, cfg.RateLimit.DefaultWindow.Std())
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, cfg.RateLimit.Whitelist)
}

func TestApplyEnv_IgnoresMalformedValues(t *testing.T) {
	cfg := Default()
	cfg.ApplyEnv(envMap(map[string]string{
		EnvPort:        "eighty",
		EnvRateEnabled: "maybe",
		EnvRateWindow:  "forever",
	}))

	assert.Equal(t, DefaultPort, cfg.Port)
	assert.False(t, cfg.RateLimit.Disabled)
	assert.Equal(t, time.Minute, cfg.RateLimit.DefaultWindow.Std())
}

func TestApplyEnv_GoogleAPIKeyFallback(t *testing.T) {
	cfg := Config{}
	cfg.ApplyEnv(envMap(map[string]string{EnvGoogleAPIKey: "google-key"}))
	assert.Equal(t, "google-key", cfg.APIKey)

	cfg = Config{APIKey: "from-file"}
	cfg.ApplyEnv(envMap(map[string]string{EnvGoogleAPIKey: "google-key"}))
	assert.Equal(t, "from-file", cfg.APIKey)
}

func TestApplyEnv_DisablesRateLimit(t *testing.T) {
	cfg := Default()
	cfg.ApplyEnv(envMap(map[string]string{EnvRateEnabled: "false"}))
	assert.True(t, cfg.RateLimit.Disabled)
	assert.False(t, cfg.RateLimiterConfig().Enabled)
}

func TestLoadDotEnv(t *testing.T) {
	path := writeFile(t, ".env", "RESUME_TAILOR_TEST_VAR=from-dotenv\n")
	t.Setenv("RESUME_TAILOR_TEST_VAR", "")
	require.NoError(t, os.Unsetenv("RESUME_TAILOR_TEST_VAR"))

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "from-dotenv", os.Getenv("RESUME_TAILOR_TEST_VAR"))

	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")))
}

func TestLLMConfig(t *testing.T) {
	cfg := Default()
	cfg.Provider = "genai"
	cfg.Backend = "vertex-ai"
	cfg.Project = "proj"
	cfg.Location = "us-central1"
	cfg.Models = map[string]string{"lite": "custom-lite", "advanced": ""}

	llmCfg, err := cfg.LLMConfig()
	require.NoError(t, err)
	assert.Equal(t, llm.ProviderGenAI, llmCfg.Provider)
	assert.Equal(t, llm.BackendVertexAI, llmCfg.Backend)
	assert.Equal(t, "proj", llmCfg.Project)
	assert.Equal(t, "custom-lite", llmCfg.GetModel(llm.TierLite))
	assert.Equal(t, llm.DefaultConfig().GetModel(llm.TierAdvanced), llmCfg.GetModel(llm.TierAdvanced))

	cfg.Provider = "openai"
	_, err = cfg.LLMConfig()
	assert.Error(t, err)
}

func TestGeometry(t *testing.T) {
	cfg := Config{PageSize: "letter", MarginMM: 20}
	g := cfg.Geometry()
	assert.Equal(t, 215.9, g.PageWidth)
	assert.Equal(t, 279.4, g.PageHeight)
	assert.Equal(t, 20.0, g.MarginTop)
	assert.Equal(t, 20.0, g.MarginRight)

	g = (&Config{}).Geometry()
	assert.Equal(t, 210.0, g.PageWidth)
}

func TestExtractorConfig(t *testing.T) {
	cfg := Config{MaxUploadBytes: 1024}
	ec := cfg.ExtractorConfig()
	assert.Equal(t, int64(1024), ec.MaxBytes)
	assert.Equal(t, 20, ec.MinTextLength)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := Config{LogFormat: "json", LogLevel: "warn"}
	logger, err := cfg.NewLogger(&buf)
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown", "step", "keywords")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
	assert.Contains(t, buf.String(), `"step":"keywords"`)

	buf.Reset()
	cfg = Config{LogLevel: "error", Verbose: true}
	logger, err = cfg.NewLogger(&buf)
	require.NoError(t, err)
	logger.Debug("debugging")
	assert.Contains(t, buf.String(), "msg=debugging")

	_, err = (&Config{LogFormat: "xml"}).NewLogger(&buf)
	assert.Error(t, err)
}

func TestResolve(t *testing.T) {
	t.Setenv(EnvPort, "7070")
	t.Setenv(EnvAPIKey, "")
	t.Setenv(EnvProvider, "")
	t.Setenv(EnvLogLevel, "")
	t.Setenv(EnvLogFormat, "")
	path := writeFile(t, "config.yaml", "provider: genai\n")

	cfg, err := Resolve(path)
	require.NoError(t, err)
	assert.Equal(t, "genai", cfg.Provider)
	assert.Equal(t, 7070, cfg.Port)
	assert.Equal(t, DefaultLogFormat, cfg.LogFormat)

	cfg, err = Resolve("")
	require.NoError(t, err)
	assert.Equal(t, "gemini", cfg.Provider)
}
