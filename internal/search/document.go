package search

import (
	"time"

	"github.com/google/uuid"
)

// MaxResults caps every result set. It bounds the relevance window that is
// re-sorted by recency, not the number of matching documents.
const MaxResults = 50

// Document is what the application hands to the index when an article is
// created, edited or reindexed.
type Document struct {
	ID          uuid.UUID
	CreatedTime time.Time
	Title       string
	Content     string
}

// Hit is one decoded search result.
type Hit struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	CreatedTime time.Time `json:"created_time"`
}
