package application

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/ahrav/go-persona/internal/ports"
)

// DefaultQuestionCacheSize bounds the number of themes kept resolved.
const DefaultQuestionCacheSize = 128

// QuestionCache loads and resolves question sets per theme. Resolved sets
// are kept in an LRU and concurrent loads of the same theme are collapsed
// into one read of the source.
type QuestionCache struct {
	// source provides themes and questions.
	source ports.QuestionSource
	// cache stores resolved sets by theme id.
	cache *lru.Cache[string, *QuestionSet]
	// sf prevents duplicate loads when several goroutines miss on the same
	// theme simultaneously.
	sf singleflight.Group
}

// NewQuestionCache creates a cache over source holding at most size themes.
// A size of zero or less selects DefaultQuestionCacheSize.
func NewQuestionCache(source ports.QuestionSource, size int) (*QuestionCache, error) {
	if size <= 0 {
		size = DefaultQuestionCacheSize
	}
	c, err := lru.New[string, *QuestionSet](size)
	if err != nil {
		return nil, fmt.Errorf("create question cache: %w", err)
	}
	return &QuestionCache{source: source, cache: c}, nil
}

// Load returns the resolved question set of the theme. The theme must exist;
// otherwise the error wraps domain.ErrThemeNotFound. A caller whose ctx ends
// while a shared load is in flight gets ctx.Err(); the load itself keeps
// going for the remaining callers.
func (qc *QuestionCache) Load(ctx context.Context, themeID string) (*QuestionSet, error) {
	if qs, ok := qc.cache.Get(themeID); ok {
		return qs, nil
	}

	// The flight outlives any single caller, so it only keeps ctx values.
	flightCtx := context.WithoutCancel(ctx)
	ch := qc.sf.DoChan(themeID, func() (any, error) {
		// Re-check inside the flight to cover a load that finished between
		// the miss above and joining the group.
		if qs, ok := qc.cache.Get(themeID); ok {
			return qs, nil
		}

		if _, err := qc.source.Theme(flightCtx, themeID); err != nil {
			return nil, fmt.Errorf("load theme %q: %w", themeID, err)
		}
		questions, err := qc.source.Questions(flightCtx, themeID)
		if err != nil {
			return nil, fmt.Errorf("load questions for theme %q: %w", themeID, err)
		}

		qs := NewQuestionSet(themeID, questions)
		qc.cache.Add(themeID, qs)
		return qs, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*QuestionSet), nil
	}
}

// Invalidate drops the cached set of a theme, e.g. after its questions were
// upserted.
func (qc *QuestionCache) Invalidate(themeID string) { qc.cache.Remove(themeID) }

// Purge drops every cached set.
func (qc *QuestionCache) Purge() { qc.cache.Purge() }

// Len returns the number of cached themes.
func (qc *QuestionCache) Len() int { return qc.cache.Len() }
