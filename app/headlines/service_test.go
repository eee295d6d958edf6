package headlines

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/proveit-app/proveit/app/analytics"
	"github.com/proveit-app/proveit/app/sources"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Top Stories</title>
    <item>
      <title>Court weighs challenge to election law</title>
      <link>https://example.com/a</link>
      <author>reuters</author>
      <pubDate>Mon, 24 Aug 2026 10:00:00 GMT</pubDate>
    </item>
    <item>
      <title>New poll shows tight race in key districts</title>
      <link>https://example.com/b</link>
      <author>some blog</author>
    </item>
  </channel>
</rss>`

func testRegistry(t *testing.T) *sources.Registry {
	t.Helper()

	path := filepath.Join(t.TempDir(), "sources.yml")
	content := `sources:
  - name: Reuters
    bias: center
    factuality: very-high
    trusted: true
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write sources file: %v", err)
	}

	registry := sources.NewRegistry(path)
	if err := registry.Run(); err != nil {
		t.Fatalf("failed to load registry: %v", err)
	}

	return registry
}

func TestService_FetchTagsArticles(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(sampleFeed))
	}))
	defer server.Close()

	service := NewService(server.Client(), testRegistry(t), "test-agent")
	categoryFeedsOverride(t, server.URL)

	articles := service.Fetch(context.Background(), "politics")
	if len(articles) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(articles))
	}

	first := articles[0]
	if first.Title != "Court weighs challenge to election law" {
		t.Errorf("unexpected title: %q", first.Title)
	}
	if first.Source != "Reuters" {
		t.Errorf("expected registry-canonical source name, got %q", first.Source)
	}
	if first.Bias != analytics.BiasCenter {
		t.Errorf("expected center bias from registry, got %q", first.Bias)
	}
	if first.Factuality != "very-high" {
		t.Errorf("expected factuality very-high, got %q", first.Factuality)
	}
	if first.PublishedAt == nil {
		t.Error("expected published date to be parsed")
	}

	second := articles[1]
	if second.Source != "Some Blog" {
		t.Errorf("expected normalized display name, got %q", second.Source)
	}
	if second.Bias != analytics.BiasCenter {
		t.Errorf("unknown source should default to center, got %q", second.Bias)
	}
	if second.Factuality != "" {
		t.Errorf("unknown source should have no factuality, got %q", second.Factuality)
	}
}

func TestService_FetchFallsBackOnHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	service := NewService(server.Client(), testRegistry(t), "test-agent")
	categoryFeedsOverride(t, server.URL)

	articles := service.Fetch(context.Background(), "politics")
	if len(articles) != len(demoArticles()) {
		t.Fatalf("expected demo articles on HTTP error, got %d articles", len(articles))
	}
	if articles[0].Source != "Associated Press" {
		t.Errorf("unexpected demo article order: %q", articles[0].Source)
	}
}

func TestService_FetchFallsBackOnBadXML(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("this is not a feed"))
	}))
	defer server.Close()

	service := NewService(server.Client(), testRegistry(t), "test-agent")
	categoryFeedsOverride(t, server.URL)

	articles := service.Fetch(context.Background(), "politics")
	if len(articles) != len(demoArticles()) {
		t.Fatalf("expected demo articles on parse failure, got %d articles", len(articles))
	}
}

func TestService_FetchUnknownCategoryUsesDefault(t *testing.T) {
	var requested string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested = r.URL.Path
		w.Write([]byte(sampleFeed))
	}))
	defer server.Close()

	service := NewService(server.Client(), testRegistry(t), "test-agent")
	categoryFeedsOverride(t, server.URL)
	categoryFeeds["politics"] = server.URL + "/politics"

	articles := service.Fetch(context.Background(), "nonsense")
	if len(articles) == 0 {
		t.Fatal("expected articles for unknown category via default feed")
	}
	if requested != "/politics" {
		t.Errorf("expected fallback to default category feed, requested %q", requested)
	}
}

func TestService_FetchSendsUserAgent(t *testing.T) {
	var agent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agent = r.Header.Get("User-Agent")
		w.Write([]byte(sampleFeed))
	}))
	defer server.Close()

	service := NewService(server.Client(), testRegistry(t), "ProveIt/1.0")
	categoryFeedsOverride(t, server.URL)

	service.Fetch(context.Background(), "politics")
	if agent != "ProveIt/1.0" {
		t.Errorf("expected User-Agent header, got %q", agent)
	}
}

func TestDemoArticles(t *testing.T) {
	articles := demoArticles()
	if len(articles) == 0 {
		t.Fatal("demo set must not be empty")
	}
	for _, a := range articles {
		if a.Title == "" || a.Source == "" || a.URL == "" {
			t.Errorf("demo article missing fields: %+v", a)
		}
	}
}

// categoryFeedsOverride points every category at the test server for the
// duration of the test.
func categoryFeedsOverride(t *testing.T, url string) {
	t.Helper()

	original := make(map[string]string, len(categoryFeeds))
	for k, v := range categoryFeeds {
		original[k] = v
		categoryFeeds[k] = url
	}
	t.Cleanup(func() {
		for k, v := range original {
			categoryFeeds[k] = v
		}
	})
}
