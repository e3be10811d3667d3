package scrape

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalScraper_CleanHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(200)
		_, _ = w.Write([]byte(`<html><head><title>Acme Corp</title><style>body{color:red}</style></head>
<body><nav>Menu</nav><script>alert('hi')</script>
<h1>Welcome</h1><p>We build   great
products &amp; warehouses.</p>
<ul><li>Distribution</li><li><p>Cold storage</p></li></ul>
<footer>Copyright 2024</footer></body></html>`))
	}))
	defer srv.Close()

	s := NewLocalScraper(5 * time.Second)
	result, err := s.Scrape(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "local_http", result.Source)
	assert.Equal(t, "Acme Corp", result.Page.Title)
	assert.Equal(t, 200, result.Page.StatusCode)
	assert.Equal(t, "Welcome\nWe build great products & warehouses.\nDistribution\nCold storage", result.Page.Markdown)
	assert.NotContains(t, result.Page.Markdown, "Menu")
	assert.NotContains(t, result.Page.Markdown, "alert")
	assert.NotContains(t, result.Page.Markdown, "Copyright 2024")
}

func TestLocalScraper_Cloudflare(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cf-Ray", "abc123")
		w.WriteHeader(403)
		_, _ = w.Write([]byte(`<html><body>Access denied</body></html>`))
	}))
	defer srv.Close()

	_, err := NewLocalScraper(5*time.Second).Scrape(context.Background(), srv.URL)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "blocked")
}

func TestLocalScraper_Captcha(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
		_, _ = w.Write([]byte(`<html><body><div class="g-recaptcha"></div>` + strings.Repeat("x", 200) + `</body></html>`))
	}))
	defer srv.Close()

	_, err := NewLocalScraper(5*time.Second).Scrape(context.Background(), srv.URL)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "captcha")
}

func TestLocalScraper_EmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
		_, _ = w.Write([]byte(`<html></html>`))
	}))
	defer srv.Close()

	_, err := NewLocalScraper(5*time.Second).Scrape(context.Background(), srv.URL)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}

func TestLocalScraper_HTTP404(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(404)
		_, _ = w.Write([]byte(`<html><body>Not found page with lots of content here to exceed threshold</body></html>`))
	}))
	defer srv.Close()

	_, err := NewLocalScraper(5*time.Second).Scrape(context.Background(), srv.URL)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestLocalScraper_NameSupports(t *testing.T) {
	s := NewLocalScraper(0)
	assert.Equal(t, "local_http", s.Name())
	assert.True(t, s.Supports("https://example.com"))
}

func TestExtractText_FallsBackToBodyText(t *testing.T) {
	title, text, err := extractText([]byte(`<html><head><title> Plain </title></head><body><div>Only
	a div   here</div></body></html>`))
	require.NoError(t, err)
	assert.Equal(t, "Plain", title)
	assert.Equal(t, "Only a div here", text)
}

func TestExtractText_NoTitle(t *testing.T) {
	title, _, err := extractText([]byte(`<html><body><p>no title here</p></body></html>`))
	require.NoError(t, err)
	assert.Empty(t, title)
}
