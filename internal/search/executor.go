package search

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/blevesearch/bleve/v2"

	"github.com/pders01/forumsearch/internal/debuglog"
)

type executor struct {
	idx   bleve.Index
	limit int
	log   *debuglog.FieldLogger
}

func newExecutor(idx bleve.Index) *executor {
	return &executor{
		idx:   idx,
		limit: MaxResults,
		log:   debuglog.WithFields(map[string]any{"component": "search.executor"}),
	}
}

// Search parses text with the engine's query-string syntax, takes the top
// results by relevance and returns them newest first. Unqualified terms are
// matched against the composite field, which holds only title and content.
func (e *executor) Search(ctx context.Context, text string) ([]Hit, error) {
	if strings.TrimSpace(text) == "" {
		return []Hit{}, nil
	}

	q, err := bleve.NewQueryStringQuery(text).Parse()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedQuery, err)
	}

	req := bleve.NewSearchRequestOptions(q, e.limit, 0, false)
	req.Fields = storedFields

	res, err := e.idx.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("searching %q: %w", text, err)
	}

	hits := make([]Hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		hit, err := decodeHit(h.Fields)
		if err != nil {
			e.log.With("doc_id", h.ID).Warnf("skipping undecodable hit: %v", err)
			continue
		}
		hits = append(hits, hit)
	}

	// Recency re-rank within the relevance window; equal times keep score order.
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].CreatedTime.After(hits[j].CreatedTime)
	})

	return hits, nil
}

// DocCount reports the number of documents in the index.
func (e *executor) DocCount() (uint64, error) {
	return e.idx.DocCount()
}
