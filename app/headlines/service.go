package headlines

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/proveit-app/proveit/app/analytics"
	"github.com/proveit-app/proveit/app/sources"
)

// Article is a headline tagged with the source registry's reference data.
type Article struct {
	Title       string               `json:"title"`
	Source      string               `json:"source"`
	URL         string               `json:"url"`
	PublishedAt *time.Time           `json:"publishedAt,omitempty"`
	Bias        analytics.BiasRating `json:"biasRating"`
	Factuality  string               `json:"factuality,omitempty"`
}

var categoryFeeds = map[string]string{
	"politics":   "https://news.google.com/rss/headlines/section/topic/POLITICS",
	"world":      "https://news.google.com/rss/headlines/section/topic/WORLD",
	"business":   "https://news.google.com/rss/headlines/section/topic/BUSINESS",
	"technology": "https://news.google.com/rss/headlines/section/topic/TECHNOLOGY",
	"science":    "https://news.google.com/rss/headlines/section/topic/SCIENCE",
	"health":     "https://news.google.com/rss/headlines/section/topic/HEALTH",
}

const defaultCategory = "politics"
const maxHeadlines = 20

// Service pulls category headlines from the collaborator feed and tags
// them with bias/factuality data from the source registry.
type Service struct {
	httpClient *http.Client
	parser     *gofeed.Parser
	registry   *sources.Registry
	userAgent  string
}

func NewService(httpClient *http.Client, registry *sources.Registry, userAgent string) *Service {
	return &Service{
		httpClient: httpClient,
		parser:     gofeed.NewParser(),
		registry:   registry,
		userAgent:  userAgent,
	}
}

// Categories lists the supported headline categories.
func Categories() []string {
	return []string{"politics", "world", "business", "technology", "science", "health"}
}

// Fetch returns headlines for the category. The collaborator is best
// effort: any failure falls back to the fixed demo articles so the caller
// always has something to show.
func (s *Service) Fetch(ctx context.Context, category string) []Article {
	feedURL, ok := categoryFeeds[category]
	if !ok {
		feedURL = categoryFeeds[defaultCategory]
		category = defaultCategory
	}

	data, err := s.fetchFeed(ctx, feedURL)
	if err != nil {
		slog.Warn("Headlines fetch failed, serving demo articles", "category", category, "error", err)
		return demoArticles()
	}

	feed, err := s.parser.Parse(bytes.NewReader(data))
	if err != nil {
		slog.Warn("Headlines parse failed, serving demo articles", "category", category, "error", err)
		return demoArticles()
	}

	articles := make([]Article, 0, len(feed.Items))
	for _, item := range feed.Items {
		if len(articles) >= maxHeadlines {
			break
		}
		articles = append(articles, s.tag(item))
	}

	if len(articles) == 0 {
		slog.Warn("Headlines feed was empty, serving demo articles", "category", category)
		return demoArticles()
	}

	return articles
}

func (s *Service) tag(item *gofeed.Item) Article {
	source := "Unknown"
	if len(item.Authors) > 0 && item.Authors[0] != nil && item.Authors[0].Name != "" {
		source = sources.DisplayName(item.Authors[0].Name)
	}

	article := Article{
		Title:       item.Title,
		Source:      source,
		URL:         item.Link,
		PublishedAt: item.PublishedParsed,
		Bias:        analytics.BiasCenter,
	}

	if entry, ok := s.registry.Lookup(source); ok {
		article.Source = entry.Name
		article.Bias = analytics.ParseBiasRating(entry.Bias)
		article.Factuality = entry.Factuality
	}

	return article
}

func (s *Service) fetchFeed(ctx context.Context, url string) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}

// demoArticles is the fixed fallback set served when the collaborator is
// unavailable.
func demoArticles() []Article {
	return []Article{
		{
			Title:      "Senate passes bipartisan infrastructure package after marathon session",
			Source:     "Associated Press",
			URL:        "https://apnews.com",
			Bias:       analytics.BiasCenter,
			Factuality: "very-high",
		},
		{
			Title:      "Federal Reserve signals patience on rate cuts as inflation cools",
			Source:     "Reuters",
			URL:        "https://www.reuters.com",
			Bias:       analytics.BiasCenter,
			Factuality: "very-high",
		},
		{
			Title:      "Analysis: What the latest budget fight means for working families",
			Source:     "NPR",
			URL:        "https://www.npr.org",
			Bias:       analytics.BiasLeanLeft,
			Factuality: "high",
		},
		{
			Title:      "Opinion: The regulatory state is strangling small business",
			Source:     "National Review",
			URL:        "https://www.nationalreview.com",
			Bias:       analytics.BiasRight,
			Factuality: "mixed",
		},
		{
			Title:      "Markets rally as earnings season beats expectations",
			Source:     "The Wall Street Journal",
			URL:        "https://www.wsj.com",
			Bias:       analytics.BiasLeanRight,
			Factuality: "high",
		},
	}
}
