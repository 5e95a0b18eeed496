package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gily0tina/smart-planner/internal/planner"
)

func newTestClient(url string) *Client {
	return NewClient(Config{
		APIKey:  "test-key",
		BaseURL: url,
		Model:   "perplexity/sonar",
		Timeout: 2 * time.Second,
	}, nil)
}

func completionBody(t *testing.T, content string) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"role": "assistant", "content": content}},
		},
	})
	require.NoError(t, err)
	return body
}

func TestSearchArticlesParsesFencedJSON(t *testing.T) {
	content := "Here you go:\n```json\n" +
		`{"sources":[{"title":"Deep Work","url":"https://example.com/deep-work"},{"title":"Peak Hours","link":"https://example.com/peak"},{"name":"No URL"}]}` +
		"\n```"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Write(completionBody(t, content))
	}))
	defer srv.Close()

	articles, err := newTestClient(srv.URL).SearchArticles(context.Background(), "write report", 3)
	require.NoError(t, err)
	require.Len(t, articles, 2, "entries without a URL are skipped")
	assert.Equal(t, RawArticle{Title: "Deep Work", URL: "https://example.com/deep-work"}, articles[0])
	assert.Equal(t, RawArticle{Title: "Peak Hours", URL: "https://example.com/peak"}, articles[1])
}

func TestSearchArticlesParsesBareJSON(t *testing.T) {
	content := `Some preamble {"sources":[{"title":"A","url":"https://a"}]} trailing text`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write(completionBody(t, content))
	}))
	defer srv.Close()

	articles, err := newTestClient(srv.URL).SearchArticles(context.Background(), "q", 3)
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, "https://a", articles[0].URL)
}

func TestSearchArticlesRespectsLimit(t *testing.T) {
	content := `{"sources":[{"title":"1","url":"https://1"},{"title":"2","url":"https://2"},{"title":"3","url":"https://3"},{"title":"4","url":"https://4"}]}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write(completionBody(t, content))
	}))
	defer srv.Close()

	articles, err := newTestClient(srv.URL).SearchArticles(context.Background(), "q", 3)
	require.NoError(t, err)
	assert.Len(t, articles, 3)
}

func TestSearchArticlesMissingKey(t *testing.T) {
	c := NewClient(Config{}, nil)
	_, err := c.SearchArticles(context.Background(), "q", 3)
	require.Error(t, err)
	assert.True(t, IsKind(err, ErrAuthMissing))
}

func TestSearchArticlesServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).SearchArticles(context.Background(), "q", 3)
	require.Error(t, err)
	assert.True(t, IsKind(err, ErrUnavailable))
}

func TestSearchArticlesUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).SearchArticles(context.Background(), "q", 3)
	require.Error(t, err)
	assert.True(t, IsKind(err, ErrAuthMissing))
}

func TestSearchArticlesMalformedContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write(completionBody(t, "sorry, I could not find anything"))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).SearchArticles(context.Background(), "q", 3)
	require.Error(t, err)
	assert.True(t, IsKind(err, ErrMalformedResponse))
}

func TestSearchArticlesTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.Write(completionBody(t, `{"sources":[]}`))
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "k", BaseURL: srv.URL, Timeout: 50 * time.Millisecond}, nil)
	_, err := c.SearchArticles(context.Background(), "q", 3)
	require.Error(t, err)
	assert.True(t, IsKind(err, ErrTimeout), "got: %v", err)
}

func TestExplainReturnsTrimmedText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write(completionBody(t, "  Mornings suit focused work.\n"))
	}))
	defer srv.Close()

	task := planner.Task{ID: "t1", Title: "Write report", Category: planner.CategoryWork, Mood: planner.MoodStressful}
	text, err := newTestClient(srv.URL).Explain(context.Background(), task, []string{"Deep Work"})
	require.NoError(t, err)
	assert.Equal(t, "Mornings suit focused work.", text)
}

func TestExtractJSON(t *testing.T) {
	t.Run("fenced", func(t *testing.T) {
		raw := extractJSON("```json\n{\"a\":1}\n```")
		assert.JSONEq(t, `{"a":1}`, string(raw))
	})
	t.Run("embedded braces", func(t *testing.T) {
		raw := extractJSON(`text {"a":{"b":2}} more`)
		assert.JSONEq(t, `{"a":{"b":2}}`, string(raw))
	})
	t.Run("whole body", func(t *testing.T) {
		raw := extractJSON(`{"a":3}`)
		assert.JSONEq(t, `{"a":3}`, string(raw))
	})
	t.Run("nothing", func(t *testing.T) {
		assert.Nil(t, extractJSON("no json here"))
	})
}
