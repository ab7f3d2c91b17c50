package tui

import (
	"errors"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/pders01/forumsearch/internal/config"
	"github.com/pders01/forumsearch/internal/search"
	"github.com/pders01/forumsearch/internal/storage"
)

// ArticleSource loads the full article behind a search hit.
type ArticleSource interface {
	Get(id uuid.UUID) (*storage.Article, error)
}

type App struct {
	config          *config.Config
	searcher        search.Searcher
	articles        ArticleSource
	keyHandler      *KeyHandler
	searchInput     textinput.Model
	resultList      list.Model
	viewport        viewport.Model
	view            View
	hits            []search.Hit
	lastQuery       string
	searchSeq       int
	currentTitle    string
	status          string
	statusKind      StatusKind
	width           int
	height          int
	err             error
	glamourRenderer *glamour.TermRenderer
	rendererWidth   int
	loadingArticle  bool
}

func NewApp(searcher search.Searcher, articles ArticleSource, cfg *config.Config) *App {
	resultList := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	resultList.Title = "› results"
	resultList.SetShowStatusBar(false)
	resultList.SetShowHelp(false)
	resultList.SetFilteringEnabled(false)

	si := textinput.New()
	si.Placeholder = "Search titles and posts..."
	si.Prompt = "› "
	si.Focus()

	app := &App{
		config:      cfg,
		searcher:    searcher,
		articles:    articles,
		searchInput: si,
		resultList:  resultList,
		viewport:    viewport.New(0, 0),
		view:        ViewSearch,
		status:      MsgTypeToSearch,
	}
	app.keyHandler = NewKeyHandler(app)

	return app
}

func (a *App) wordWrapWidth() int {
	maxWidth := a.config.UI.Article.WordWrapMaxWidth
	minWidth := a.config.UI.Article.WordWrapMinWidth

	width := (a.width * 9) / 10
	if maxWidth > 0 && width > maxWidth {
		width = maxWidth
	}
	if width < minWidth {
		width = minWidth
	}
	if a.width > 0 && a.width < 50 {
		width = max(a.width-4, 20)
	}
	return width
}

func (a *App) getRenderer() (*glamour.TermRenderer, error) {
	width := a.wordWrapWidth()
	if a.glamourRenderer == nil || abs(a.rendererWidth-width) > 10 {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return nil, err
		}
		a.glamourRenderer = r
		a.rendererWidth = width
	}
	return a.glamourRenderer, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func (a *App) setStatus(kind StatusKind, msg string) {
	a.statusKind = kind
	a.status = msg
}

func (a *App) setHits(hits []search.Hit) {
	a.hits = hits
	items := make([]list.Item, len(hits))
	for i, h := range hits {
		items[i] = hitItem{hit: h}
	}
	a.resultList.SetItems(items)
	a.resultList.Select(0)
}

func (a *App) clearResults() {
	// Invalidate anything still in flight.
	a.searchSeq++
	a.lastQuery = ""
	a.setHits(nil)
	a.setStatus(StatusInfo, MsgTypeToSearch)
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, tea.EnterAltScreen)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// Header, input frame, status and help lines.
		a.resultList.SetSize(msg.Width, max(msg.Height-9, 5))
		a.viewport.Width = msg.Width
		a.viewport.Height = max(msg.Height-4, 1)
		a.searchInput.Width = max(msg.Width-8, 10)
		return a, nil

	case tea.KeyMsg:
		return a.keyHandler.HandleKey(msg)

	case searchResultsMsg:
		if msg.seq != a.searchSeq {
			return a, nil
		}
		a.lastQuery = msg.query
		switch {
		case errors.Is(msg.err, search.ErrMalformedQuery):
			a.setHits(nil)
			a.setStatus(StatusWarn, MsgMalformedQuery)
		case msg.err != nil:
			a.err = msg.err
			a.setStatus(StatusError, msg.err.Error())
		case len(msg.hits) == 0:
			a.setHits(nil)
			a.setStatus(StatusInfo, MsgNoResults)
		default:
			a.setHits(msg.hits)
			a.setStatus(StatusSuccess, MsgResultsCapped(len(msg.hits), search.MaxResults))
		}
		return a, nil

	case articleRenderedMsg:
		a.loadingArticle = false
		if a.view != ViewReader {
			return a, nil
		}
		if msg.err != nil {
			a.err = msg.err
			a.view = ViewSearch
			a.setStatus(StatusError, msg.err.Error())
			return a, nil
		}
		a.currentTitle = msg.title
		a.viewport.SetContent(msg.content)
		a.viewport.GotoTop()
		return a, nil

	case errorMsg:
		a.err = msg.err
		a.setStatus(StatusError, msg.err.Error())
		return a, nil
	}

	var cmd tea.Cmd
	switch a.view {
	case ViewSearch:
		if a.searchInput.Focused() {
			a.searchInput, cmd = a.searchInput.Update(msg)
		} else {
			a.resultList, cmd = a.resultList.Update(msg)
		}
	case ViewReader:
		if _, ok := msg.(tea.MouseMsg); ok {
			a.viewport, cmd = a.viewport.Update(msg)
		}
	}
	return a, cmd
}

func (a *App) View() string {
	var content string

	switch a.view {
	case ViewSearch:
		content = a.searchView()
	case ViewReader:
		content = a.readerView()
	}

	return lipgloss.JoinVertical(lipgloss.Left, content, a.statusLine(), a.helpLine())
}

func (a *App) searchView() string {
	input := renderInputFrame(a.searchInput.View(), a.searchInput.Focused(), max(a.width-8, 10))

	var body string
	if len(a.hits) == 0 {
		message := "Search the forum by title or post body"
		if a.lastQuery != "" {
			message = MsgNoResults
		}
		body = renderCentered(a.width, max(a.height-9, 5), GetCompactBanner(message))
	} else {
		body = a.resultList.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		renderHeader(CompactLogo, "", a.width),
		input,
		body,
	)
}

func (a *App) readerView() string {
	header := renderHeader(a.currentTitle, "", a.width)
	if a.loadingArticle {
		return lipgloss.JoinVertical(lipgloss.Left,
			header,
			renderCentered(a.width, max(a.height-4, 1), renderMuted(MsgLoadingArticle)),
		)
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, a.viewport.View())
}

func (a *App) statusLine() string {
	if a.status == "" {
		return ""
	}
	return statusStyle(a.statusKind).Render(truncateEnd(a.status, max(a.width, 20)))
}

func (a *App) helpLine() string {
	help := ""
	for i, h := range a.keyHandler.GetHelpForCurrentView() {
		if i > 0 {
			help += SeparatorStyle.Render(" · ")
		}
		help += HelpStyle.Render(h)
	}
	return help
}
