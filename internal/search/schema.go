package search

import (
	"fmt"
	"strconv"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/lang/cjk"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/unicode"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/google/uuid"
)

// Field names of the index layout.
const (
	FieldID          = "id"
	FieldCreatedTime = "created_time"
	FieldTitle       = "title"
	FieldContent     = "content"
)

// TextAnalyzerName is the analyzer shared by title and content. It segments
// on Unicode word boundaries and turns runs of CJK ideographs into single
// characters plus bigrams, so one-character queries still match.
const TextAnalyzerName = "forum_text"

const cjkFilterName = "forum_cjk_bigram"

// storedFields are the fields a search request loads back for decoding.
var storedFields = []string{FieldID, FieldTitle, FieldCreatedTime}

func buildIndexMapping() (mapping.IndexMapping, error) {
	im := bleve.NewIndexMapping()

	err := im.AddCustomTokenFilter(cjkFilterName, map[string]any{
		"type":           cjk.BigramName,
		"output_unigram": true,
	})
	if err != nil {
		return nil, fmt.Errorf("registering %s filter: %w", cjkFilterName, err)
	}

	err = im.AddCustomAnalyzer(TextAnalyzerName, map[string]any{
		"type":      custom.Name,
		"tokenizer": unicode.Name,
		"token_filters": []string{
			cjk.WidthName,
			lowercase.Name,
			cjkFilterName,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("registering %s analyzer: %w", TextAnalyzerName, err)
	}
	im.DefaultAnalyzer = TextAnalyzerName

	dm := bleve.NewDocumentMapping()
	dm.Dynamic = false

	id := bleve.NewTextFieldMapping()
	id.Analyzer = keyword.Name
	id.Store = true
	id.IncludeInAll = false
	id.IncludeTermVectors = false

	created := bleve.NewTextFieldMapping()
	created.Analyzer = keyword.Name
	created.Store = true
	created.IncludeInAll = false
	created.IncludeTermVectors = false

	title := bleve.NewTextFieldMapping()
	title.Analyzer = TextAnalyzerName
	title.Store = true
	title.IncludeTermVectors = true

	content := bleve.NewTextFieldMapping()
	content.Analyzer = TextAnalyzerName
	content.Store = false
	content.IncludeTermVectors = false

	dm.AddFieldMappingsAt(FieldID, id)
	dm.AddFieldMappingsAt(FieldCreatedTime, created)
	dm.AddFieldMappingsAt(FieldTitle, title)
	dm.AddFieldMappingsAt(FieldContent, content)

	im.DefaultMapping = dm
	return im, nil
}

// docID is the bleve document id; it is also the exact-match key for
// update and delete.
func docID(id uuid.UUID) string { return id.String() }

func encodeDocument(doc Document) map[string]any {
	return map[string]any{
		FieldID:          docID(doc.ID),
		FieldCreatedTime: strconv.FormatInt(doc.CreatedTime.Unix(), 10),
		FieldTitle:       doc.Title,
		FieldContent:     doc.Content,
	}
}

// decodeHit rebuilds a Hit from the stored fields of a search hit.
func decodeHit(fields map[string]any) (Hit, error) {
	rawID, ok := fields[FieldID].(string)
	if !ok {
		return Hit{}, fmt.Errorf("stored field %q missing", FieldID)
	}
	id, err := uuid.Parse(rawID)
	if err != nil {
		return Hit{}, fmt.Errorf("stored field %q: %w", FieldID, err)
	}

	rawTime, ok := fields[FieldCreatedTime].(string)
	if !ok {
		return Hit{}, fmt.Errorf("stored field %q missing", FieldCreatedTime)
	}
	secs, err := strconv.ParseInt(rawTime, 10, 64)
	if err != nil {
		return Hit{}, fmt.Errorf("stored field %q: %w", FieldCreatedTime, err)
	}

	title, _ := fields[FieldTitle].(string)

	return Hit{
		ID:          id,
		Title:       title,
		CreatedTime: time.Unix(secs, 0).UTC(),
	}, nil
}
