package tui

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/pders01/forumsearch/internal/search"
)

type View int

const (
	ViewSearch View = iota
	ViewReader
)

type hitItem struct {
	hit search.Hit
}

func (i hitItem) FilterValue() string { return i.hit.Title }
func (i hitItem) Title() string       { return i.hit.Title }
func (i hitItem) Description() string {
	return fmt.Sprintf("%s · %s",
		i.hit.CreatedTime.Local().Format("Jan 2, 2006 15:04"),
		i.hit.ID.String()[:8])
}

type searchResultsMsg struct {
	seq   int
	query string
	hits  []search.Hit
	err   error
}

type articleRenderedMsg struct {
	id      uuid.UUID
	title   string
	content string
	err     error
}

type errorMsg struct {
	err error
}
