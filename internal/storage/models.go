package storage

import (
	"time"

	"github.com/google/uuid"
)

type Article struct {
	ID          uuid.UUID `json:"id"`
	SectionID   string    `json:"section_id"`
	AuthorID    string    `json:"author_id"`
	Title       string    `json:"title"`
	Tags        []string  `json:"tags"`
	RawContent  string    `json:"raw_content"`
	CreatedTime time.Time `json:"created_time"`
	UpdatedTime time.Time `json:"updated_time"`
}
