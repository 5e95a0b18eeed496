package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/gily0tina/smart-planner/internal/planner"
)

// RawArticle is one search hit as returned by the provider, before it is
// turned into a planner source.
type RawArticle struct {
	Title string
	URL   string
}

type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// DefaultConfig returns the Polza AI defaults.
func DefaultConfig(apiKey string) Config {
	return Config{
		APIKey:  apiKey,
		BaseURL: "https://api.polza.ai/api/v1",
		Model:   "perplexity/sonar",
		Timeout: 30 * time.Second,
	}
}

// Client talks to an OpenAI-compatible chat/completions endpoint for article
// search and justification. Every call has a hard timeout and returns typed
// errors so the retriever can decide between retry and fallback.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	log        *zap.Logger
}

func NewClient(cfg Config, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultConfig("").BaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultConfig("").Model
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig("").Timeout
	}
	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		model:   cfg.Model,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		log: log,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// SearchArticles asks the model for up to limit sources on the query topic.
func (c *Client) SearchArticles(ctx context.Context, query string, limit int) ([]RawArticle, error) {
	if c.apiKey == "" {
		return nil, newError(ErrAuthMissing, "API key not configured")
	}

	content, err := c.complete(ctx, chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: searchSystemPrompt(limit)},
			{Role: "user", Content: "Find relevant articles and sources on the topic: " + query},
		},
		Temperature: 0.7,
		MaxTokens:   2000,
	})
	if err != nil {
		return nil, err
	}

	raw := extractJSON(content)
	if raw == nil {
		return nil, newError(ErrMalformedResponse, "no JSON object in model output")
	}

	var payload struct {
		Sources []map[string]any `json:"sources"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, newError(ErrMalformedResponse, "sources payload: "+err.Error())
	}

	// Field-by-field with aliases; nested structure from the model is never
	// trusted to be complete.
	articles := make([]RawArticle, 0, limit)
	for _, item := range payload.Sources {
		url := stringField(item, "url", "link", "href")
		if url == "" {
			continue
		}
		title := stringField(item, "title", "name")
		if title == "" {
			title = "Article on: " + query
		}
		articles = append(articles, RawArticle{Title: title, URL: url})
		if len(articles) == limit {
			break
		}
	}
	return articles, nil
}

// Explain asks the model for a short justification for the task; the caller
// keeps its own source citations regardless of what the text claims.
func (c *Client) Explain(ctx context.Context, task planner.Task, sourceTitles []string) (string, error) {
	if c.apiKey == "" {
		return "", newError(ErrAuthMissing, "API key not configured")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "task: %s\ncategory: %s\nmood: %s\n", task.Title, task.Category, task.Mood)
	if len(sourceTitles) > 0 {
		fmt.Fprintf(&b, "sources: %s\n", strings.Join(sourceTitles, "; "))
	}

	content, err := c.complete(ctx, chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: explainSystemPrompt},
			{Role: "user", Content: b.String()},
		},
		Temperature: 0.7,
		MaxTokens:   300,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(content), nil
}

func (c *Client) complete(ctx context.Context, reqBody chatRequest) (string, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.httpClient.Timeout)
		defer cancel()
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", newError(ErrUnavailable, "marshal request: "+err.Error())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", newError(ErrUnavailable, "build request: "+err.Error())
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return "", newError(ErrTimeout, err.Error())
		}
		return "", newError(ErrUnavailable, err.Error())
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", newError(ErrUnavailable, "read response: "+err.Error())
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", newError(ErrAuthMissing, fmt.Sprintf("status %d", resp.StatusCode))
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return "", newError(ErrUnavailable, fmt.Sprintf("status %d: %s", resp.StatusCode, truncate(string(data), 200)))
	}

	var parsed chatResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", newError(ErrMalformedResponse, "decode response: "+err.Error())
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return "", newError(ErrMalformedResponse, "empty completion")
	}
	return parsed.Choices[0].Message.Content, nil
}

func stringField(item map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := item[k].(string); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
