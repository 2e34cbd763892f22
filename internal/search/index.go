package search

import (
	"path/filepath"
	"sort"
	"time"
)

// Document is one indexed file.
type Document struct {
	ID      int
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
	Terms   int // total tokens counted for the file
}

// Posting records how often a term occurs in a document.
type Posting struct {
	Doc  int
	Freq int
}

// Hit is one search result.
type Hit struct {
	Doc   *Document
	Score int
}

// Index is an immutable inverted index over the files below Root. Once
// returned from NewIndex it is never modified, so it may be shared freely
// between goroutines.
type Index struct {
	Root     string
	BuiltAt  time.Time
	docs     []Document
	postings map[string][]Posting
}

// NewIndex assembles an index. Document IDs must equal their position in
// docs; postings are sorted by document ID.
func NewIndex(root string, builtAt time.Time, docs []Document, postings map[string][]Posting) *Index {
	if postings == nil {
		postings = make(map[string][]Posting)
	}
	for _, list := range postings {
		sort.Slice(list, func(i, j int) bool { return list[i].Doc < list[j].Doc })
	}
	return &Index{
		Root:     filepath.Clean(root),
		BuiltAt:  builtAt,
		docs:     docs,
		postings: postings,
	}
}

// DocCount returns the number of indexed files.
func (ix *Index) DocCount() int {
	if ix == nil {
		return 0
	}
	return len(ix.docs)
}

// TermCount returns the number of distinct terms.
func (ix *Index) TermCount() int {
	if ix == nil {
		return 0
	}
	return len(ix.postings)
}

// Docs returns the documents in ID order. The slice must not be modified.
func (ix *Index) Docs() []Document {
	if ix == nil {
		return nil
	}
	return ix.docs
}

// Postings returns the postings for an already folded term.
func (ix *Index) Postings(term string) []Posting {
	if ix == nil {
		return nil
	}
	return ix.postings[term]
}

// EachTerm calls fn for every term and its postings, in term order.
func (ix *Index) EachTerm(fn func(term string, list []Posting) error) error {
	if ix == nil {
		return nil
	}
	terms := make([]string, 0, len(ix.postings))
	for t := range ix.postings {
		terms = append(terms, t)
	}
	sort.Strings(terms)
	for _, t := range terms {
		if err := fn(t, ix.postings[t]); err != nil {
			return err
		}
	}
	return nil
}

// Search returns documents containing every term of q that also pass its
// metadata filters, highest summed frequency first, ties by path. A query
// with no terms filters the whole document set. limit <= 0 means no limit.
func (ix *Index) Search(q *Query, limit int) []Hit {
	if ix == nil || q == nil || q.IsEmpty() {
		return nil
	}

	scores := make(map[int]int)
	terms := q.Terms()
	if len(terms) == 0 {
		for i := range ix.docs {
			scores[i] = 0
		}
	}
	for i, term := range terms {
		list := ix.postings[term]
		if len(list) == 0 {
			return nil
		}
		if i == 0 {
			for _, p := range list {
				scores[p.Doc] = p.Freq
			}
			continue
		}
		next := make(map[int]int, len(scores))
		for _, p := range list {
			if s, ok := scores[p.Doc]; ok {
				next[p.Doc] = s + p.Freq
			}
		}
		scores = next
		if len(scores) == 0 {
			return nil
		}
	}

	hits := make([]Hit, 0, len(scores))
	for id, score := range scores {
		doc := &ix.docs[id]
		if !q.Matches(doc) {
			continue
		}
		hits = append(hits, Hit{Doc: doc, Score: score})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Doc.Path < hits[j].Doc.Path
	})

	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits
}
