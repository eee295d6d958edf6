package verdict

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "codeberg.org/readeck/go-readability"
)

// Verdict is the parsed fact-check result for a submitted claim or URL.
type Verdict struct {
	Verdict    string   `json:"verdict"`
	Confidence int      `json:"confidence"`
	Summary    string   `json:"summary"`
	KeyPoints  []string `json:"keyPoints"`
}

// Client wraps the generative-language collaborator. The endpoint is an
// opaque prompt-in, text-out service; everything here is request plumbing
// and defensive parsing of whatever text comes back.
type Client struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
	userAgent  string
}

func NewClient(httpClient *http.Client, endpoint, apiKey, userAgent string) *Client {
	return &Client{
		httpClient: httpClient,
		endpoint:   endpoint,
		apiKey:     apiKey,
		userAgent:  userAgent,
	}
}

// Enabled reports whether the collaborator is configured.
func (c *Client) Enabled() bool {
	return c.apiKey != "" && c.endpoint != ""
}

// Check submits a claim for a verdict. URL claims get their readable
// article text extracted first so the prompt is grounded in the page. A
// network or auth failure is returned as an error and leaves no state
// behind; a malformed response text degrades to the synthetic mixed
// verdict instead.
func (c *Client) Check(ctx context.Context, claim string) (*Verdict, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("verdict service is not configured")
	}

	claim = strings.TrimSpace(claim)
	if claim == "" {
		return nil, fmt.Errorf("claim is empty")
	}

	subject := claim
	if isURL(claim) {
		if text, err := c.fetchReadable(ctx, claim); err != nil {
			slog.Warn("Failed to extract article text, checking the bare URL", "url", claim, "error", err)
		} else {
			subject = fmt.Sprintf("the following article (from %s):\n\n%s", claim, text)
		}
	}

	responseText, err := c.generate(ctx, buildPrompt(subject))
	if err != nil {
		return nil, err
	}

	return ParseVerdict(responseText), nil
}

func buildPrompt(subject string) string {
	return fmt.Sprintf(`You are a careful fact-checker. Evaluate %s

Respond with ONLY a JSON object, no other text:
{"verdict": "true|mostly-true|mixed|mostly-false|false|unverifiable", "confidence": 0-100, "summary": "two sentences at most", "keyPoints": ["up to four short points"]}`, subject)
}

// ParseVerdict recovers a verdict from whatever text the collaborator
// returned: code fences are stripped, surrounding prose is ignored, and
// anything unparseable falls back to the synthetic mixed verdict.
func ParseVerdict(text string) *Verdict {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start == -1 || end == -1 || end < start {
		slog.Debug("Verdict response carried no JSON object, using fallback")
		return FallbackVerdict()
	}

	var v Verdict
	if err := json.Unmarshal([]byte(cleaned[start:end+1]), &v); err != nil {
		slog.Debug("Failed to parse verdict JSON, using fallback", "error", err)
		return FallbackVerdict()
	}

	if v.Verdict == "" {
		return FallbackVerdict()
	}
	if v.Confidence < 0 {
		v.Confidence = 0
	}
	if v.Confidence > 100 {
		v.Confidence = 100
	}
	if v.KeyPoints == nil {
		v.KeyPoints = []string{}
	}

	return &v
}

// FallbackVerdict is returned when the collaborator's response cannot be
// parsed as a verdict.
func FallbackVerdict() *Verdict {
	return &Verdict{
		Verdict:    "mixed",
		Confidence: 50,
		Summary:    "The claim could not be conclusively verified. Consider checking multiple trusted sources.",
		KeyPoints:  []string{},
	}
}

type genaiRequest struct {
	Contents []genaiContent `json:"contents"`
}

type genaiContent struct {
	Parts []genaiPart `json:"parts"`
}

type genaiPart struct {
	Text string `json:"text"`
}

type genaiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []genaiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	body, err := json.Marshal(genaiRequest{
		Contents: []genaiContent{{Parts: []genaiPart{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(timeoutCtx, "POST", c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call verdict service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	var parsed genaiResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse response envelope: %w", err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("response carried no candidates")
	}

	return parsed.Candidates[0].Content.Parts[0].Text, nil
}

func (c *Client) fetchReadable(ctx context.Context, pageURL string) (string, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read page body: %w", err)
	}

	article, err := readability.FromReader(strings.NewReader(string(data)), nil)
	if err != nil {
		return "", fmt.Errorf("failed to extract content: %w", err)
	}

	text := strings.TrimSpace(article.TextContent)
	if text == "" {
		return "", fmt.Errorf("no readable content extracted")
	}

	// Keep prompts bounded
	const maxChars = 8000
	if len(text) > maxChars {
		text = text[:maxChars]
	}

	return text, nil
}

func isURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
