package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/forumsearch/internal/search"
	"github.com/pders01/forumsearch/internal/storage"
)

const defaultQueryTimeout = 5 * time.Second

// performSearch issues a query and tags the result with a sequence number so
// replies to superseded queries can be dropped.
func (a *App) performSearch(query string) tea.Cmd {
	a.searchSeq++
	seq := a.searchSeq
	a.setStatus(StatusInfo, MsgSearching)

	searcher := a.searcher
	timeout := a.config.Server.QueryTimeout
	if timeout <= 0 {
		timeout = defaultQueryTimeout
	}

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		hits, err := searcher.Query(ctx, query)
		if err != nil {
			return searchResultsMsg{seq: seq, query: query, err: wrapErr("search", err)}
		}
		return searchResultsMsg{seq: seq, query: query, hits: hits}
	}
}

// openHit loads the article behind hit and renders it for the reader view.
func (a *App) openHit(hit search.Hit) tea.Cmd {
	a.view = ViewReader
	a.loadingArticle = true
	a.currentTitle = hit.Title

	r, rendererErr := a.getRenderer()
	articles := a.articles

	return func() tea.Msg {
		if rendererErr != nil {
			return articleRenderedMsg{id: hit.ID, err: wrapErr("renderer", rendererErr)}
		}

		art, err := articles.Get(hit.ID)
		if err != nil {
			return articleRenderedMsg{id: hit.ID, err: wrapErr("load article", err)}
		}

		rendered, err := r.Render(articleMarkdown(art))
		if err != nil {
			return articleRenderedMsg{
				id:      hit.ID,
				title:   art.Title,
				content: fmt.Sprintf("Failed to render article: %s\n\nPress Escape to go back.", err),
			}
		}
		return articleRenderedMsg{id: hit.ID, title: art.Title, content: rendered}
	}
}

func articleMarkdown(art *storage.Article) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", art.Title)
	fmt.Fprintf(&b, "*Posted: %s*", art.CreatedTime.Local().Format(time.RFC1123))
	if art.AuthorID != "" {
		fmt.Fprintf(&b, " · *%s*", art.AuthorID)
	}
	b.WriteString("\n\n")

	if len(art.Tags) > 0 {
		tags := make([]string, len(art.Tags))
		for i, t := range art.Tags {
			tags[i] = "`" + t + "`"
		}
		b.WriteString(strings.Join(tags, " "))
		b.WriteString("\n\n")
	}

	b.WriteString("---\n\n")
	b.WriteString(art.RawContent)
	return b.String()
}
