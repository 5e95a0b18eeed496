package provider

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"unicode"

	"go.uber.org/zap"

	"github.com/gily0tina/smart-planner/internal/planner"
)

// maxArticlesPerTask bounds how many sources one task retrieves.
const maxArticlesPerTask = 3

// Searcher is the search collaborator the retriever wraps.
type Searcher interface {
	SearchArticles(ctx context.Context, query string, limit int) ([]RawArticle, error)
}

// Retriever turns a task into planner sources. Results are cached per
// normalized task title, provider failures fall back to a fixed demo set,
// and a transient timeout is retried once. It never reports an error:
// provider trouble only affects justification richness.
type Retriever struct {
	search Searcher
	log    *zap.Logger

	mu    sync.Mutex
	cache map[string][]planner.Source
}

func NewRetriever(search Searcher, log *zap.Logger) *Retriever {
	if log == nil {
		log = zap.NewNop()
	}
	return &Retriever{
		search: search,
		log:    log,
		cache:  make(map[string][]planner.Source),
	}
}

// Fetch returns the sources for a task, from cache when the same title was
// already looked up. Source ids are derived from the normalized title plus
// an ordinal, so repeated generations for the same title reuse ids — and
// with them any trust decisions. Tasks sharing a title share sources and
// trust on purpose.
func (r *Retriever) Fetch(ctx context.Context, task planner.Task) []planner.Source {
	key := normalizeTitle(task.Title)

	r.mu.Lock()
	if cached, ok := r.cache[key]; ok {
		r.mu.Unlock()
		return append([]planner.Source(nil), cached...)
	}
	r.mu.Unlock()

	articles, err := r.search.SearchArticles(ctx, task.Title, maxArticlesPerTask)
	if IsKind(err, ErrTimeout) {
		r.log.Warn("article search timed out, retrying once", zap.String("task", task.Title))
		articles, err = r.search.SearchArticles(ctx, task.Title, maxArticlesPerTask)
	}

	var sources []planner.Source
	if err != nil || len(articles) == 0 {
		if err != nil {
			r.log.Warn("article search failed, using demo sources",
				zap.String("task", task.Title), zap.Error(err))
		}
		sources = demoSources(key)
	} else {
		sources = make([]planner.Source, 0, len(articles))
		for i, a := range articles {
			sources = append(sources, planner.Source{
				ID:    fmt.Sprintf("polza_%s_%d", key, i),
				Title: a.Title,
				Link:  a.URL,
				Trust: true,
			})
		}
	}

	r.mu.Lock()
	r.cache[key] = sources
	r.mu.Unlock()
	return append([]planner.Source(nil), sources...)
}

// demoSources is the deterministic fallback set so downstream logic never
// has to special-case "no sources".
func demoSources(key string) []planner.Source {
	return []planner.Source{
		{
			ID:    fmt.Sprintf("demo_%s_0", key),
			Title: "Biorhythms and productivity",
			Link:  "https://example.com/biorhythms",
			Trust: true,
		},
		{
			ID:    fmt.Sprintf("demo_%s_1", key),
			Title: "Chronotypes and day planning",
			Link:  "https://example.com/chronotypes",
			Trust: true,
		},
	}
}

// normalizeTitle lowercases and squashes runs of non-alphanumerics to a
// single underscore, giving stable cache and source-id keys.
func normalizeTitle(title string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastUnderscore = false
		} else if !lastUnderscore && b.Len() > 0 {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	return strings.TrimRight(b.String(), "_")
}
