package ingestion

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jonathan/resume-tailor/internal/fetch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchJobDescription_InvalidURL(t *testing.T) {
	tests := []struct {
		name   string
		urlStr string
	}{
		{"empty URL", ""},
		{"malformed URL", "not-a-url"},
		{"no scheme", "example.com"},
		{"no host", "http://"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FetchJobDescription(context.Background(), tt.urlStr, JobFetchOptions{})
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrHTTPRequestFailed)

			var fetchErr *fetch.Error
			assert.ErrorAs(t, err, &fetchErr)
		})
	}
}

func TestFetchJobDescription_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		html := `<!DOCTYPE html>
<html>
<body>
<nav>Nav</nav>
<main>
<h1>Senior Software Engineer</h1>
<p>We   build   payments   infrastructure.</p>
<ul><li>Go experience</li><li>Distributed systems</li></ul>
</main>
<footer>Footer</footer>
</body>
</html>`
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(html))
	}))
	defer server.Close()

	job, err := FetchJobDescription(context.Background(), server.URL, JobFetchOptions{})
	require.NoError(t, err)

	assert.Equal(t, "Senior Software Engineer\nWe build payments infrastructure.\n- Go experience\n- Distributed systems", job.Text)
	assert.NotContains(t, job.Text, "Nav")
	assert.NotContains(t, job.Text, "Footer")
	assert.Equal(t, server.URL, job.Metadata.URL)
	assert.Equal(t, string(fetch.PlatformUnknown), job.Metadata.Platform)
	assert.Equal(t, computeHash(job.Text), job.Metadata.Hash)
}

func TestFetchJobDescription_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := FetchJobDescription(context.Background(), server.URL, JobFetchOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrHTTPRequestFailed)
	assert.Contains(t, err.Error(), "500")
}

func TestFetchJobDescription_EmptyPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body><script>render()</script></body></html>`))
	}))
	defer server.Close()

	_, err := FetchJobDescription(context.Background(), server.URL, JobFetchOptions{
		UseBrowser: true,
		Renderer: func(context.Context, string) (string, error) {
			return "", errors.New("no browser")
		},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoJobText)
}

func TestFetchJobDescription_GreenhouseLike(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body>
<div class="job__description body"><p>Own the billing platform.</p></div>
<div class="application--wrapper"><form>Resume upload</form></div>
</body></html>`))
	}))
	defer server.Close()

	job, err := FetchJobDescription(context.Background(), server.URL, JobFetchOptions{})
	require.NoError(t, err)
	assert.Contains(t, job.Text, "Own the billing platform.")
	assert.NotContains(t, job.Text, "Resume upload")
}
