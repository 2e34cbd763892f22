package app

import (
	"errors"
	"strings"

	"github.com/justyntemme/dirindex/internal/debug"
	"github.com/justyntemme/dirindex/internal/search"
)

// ErrNoIndex is returned when no index has been published for the query.
var ErrNoIndex = errors.New("no index available")

// ErrIncompleteQuery is returned for a query that ends in a directive
// prefix with no value yet.
var ErrIncompleteQuery = errors.New("incomplete query")

// Search directive prefixes for advanced query syntax
var searchDirectives = []string{
	"contents:",
	"ext:",
	"size:",
	"modified:",
	"filename:",
}

// SearchController answers queries from the index the trigger published.
type SearchController struct {
	trigger *IndexingTrigger
	Limit   int // max hits per query, 0 = unlimited
}

// NewSearchController creates a search controller reading from trigger.
func NewSearchController(trigger *IndexingTrigger) *SearchController {
	return &SearchController{trigger: trigger, Limit: 50}
}

// Search runs query against the published index. A failed or still
// pending job leaves nothing to search, which is reported as ErrNoIndex.
func (s *SearchController) Search(query string) ([]search.Hit, error) {
	debug.Log(debug.SEARCH, "Search: query=%q", query)

	if isIncompleteDirective(query) {
		return nil, ErrIncompleteQuery
	}
	ix := s.trigger.Index()
	if ix == nil {
		return nil, ErrNoIndex
	}

	q := search.Parse(query)
	hits := ix.Search(q, s.Limit)
	debug.Log(debug.SEARCH, "Search: root=%q terms=%v hits=%d", ix.Root, q.Terms(), len(hits))
	return hits, nil
}

// SearchIn is Search restricted to an index built for root.
func (s *SearchController) SearchIn(root, query string) ([]search.Hit, error) {
	if s.trigger.IndexFor(root) == nil {
		return nil, ErrNoIndex
	}
	return s.Search(query)
}

// isIncompleteDirective checks if query has a directive prefix but no value.
func isIncompleteDirective(query string) bool {
	lowerQuery := strings.ToLower(strings.TrimSpace(query))

	for _, prefix := range searchDirectives {
		if strings.HasSuffix(lowerQuery, prefix) {
			return true
		}
		if idx := strings.Index(lowerQuery, prefix); idx >= 0 {
			afterPrefix := strings.TrimSpace(lowerQuery[idx+len(prefix):])
			if afterPrefix == "" {
				return true
			}
		}
	}
	return false
}
