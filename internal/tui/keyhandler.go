package tui

import (
	"strings"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
)

// minLiveQuery is the rune count at which typing starts searching.
const minLiveQuery = 2

type KeyHandler struct {
	app *App
}

func NewKeyHandler(app *App) *KeyHandler {
	return &KeyHandler{app: app}
}

func (kh *KeyHandler) HandleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return kh.app, tea.Quit
	}

	switch kh.app.view {
	case ViewReader:
		return kh.handleReaderKeys(msg)
	default:
		if kh.app.searchInput.Focused() {
			return kh.handleTextInputMode(msg)
		}
		return kh.handleResultKeys(msg)
	}
}

func (kh *KeyHandler) handleTextInputMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a := kh.app

	switch msg.String() {
	case "esc":
		if a.searchInput.Value() == "" {
			return a, tea.Quit
		}
		a.searchInput.Reset()
		a.clearResults()
		return a, nil
	case "enter":
		query := strings.TrimSpace(a.searchInput.Value())
		if query == "" {
			a.setStatus(StatusInfo, MsgTypeToSearch)
			return a, nil
		}
		return a, a.performSearch(query)
	case "tab", "down":
		if len(a.resultList.Items()) > 0 {
			kh.focusResults()
		}
		return a, nil
	}

	return kh.delegateToTextInput(msg)
}

func (kh *KeyHandler) delegateToTextInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a := kh.app
	before := a.searchInput.Value()

	var cmd tea.Cmd
	a.searchInput, cmd = a.searchInput.Update(msg)

	after := strings.TrimSpace(a.searchInput.Value())
	if a.searchInput.Value() == before {
		return a, cmd
	}

	switch {
	case after == "":
		a.clearResults()
	case utf8.RuneCountInString(after) >= minLiveQuery:
		return a, tea.Batch(cmd, a.performSearch(after))
	}
	return a, cmd
}

func (kh *KeyHandler) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a := kh.app

	switch msg.String() {
	case "enter":
		if item, ok := a.resultList.SelectedItem().(hitItem); ok {
			return a, a.openHit(item.hit)
		}
		return a, nil
	case "tab", "esc", "/":
		return a, kh.focusInput()
	case "up", "k":
		if a.resultList.Index() == 0 {
			return a, kh.focusInput()
		}
	case "q":
		return a, tea.Quit
	}

	var cmd tea.Cmd
	a.resultList, cmd = a.resultList.Update(msg)
	return a, cmd
}

func (kh *KeyHandler) handleReaderKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a := kh.app

	switch msg.String() {
	case "esc", "q", "backspace":
		return kh.navigateBack()
	}

	var cmd tea.Cmd
	a.viewport, cmd = a.viewport.Update(msg)
	return a, cmd
}

func (kh *KeyHandler) navigateBack() (tea.Model, tea.Cmd) {
	a := kh.app
	a.view = ViewSearch
	a.loadingArticle = false
	a.currentTitle = ""
	if len(a.hits) == 0 {
		return a, kh.focusInput()
	}
	return a, nil
}

func (kh *KeyHandler) focusInput() tea.Cmd {
	return kh.app.searchInput.Focus()
}

func (kh *KeyHandler) focusResults() {
	kh.app.searchInput.Blur()
	kh.app.resultList.Select(0)
}

// GetHelpForCurrentView lists the keys that are active in the current view.
func (kh *KeyHandler) GetHelpForCurrentView() []string {
	switch kh.app.view {
	case ViewReader:
		return []string{"↑/↓ scroll", "esc back", "ctrl+c quit"}
	default:
		if kh.app.searchInput.Focused() {
			return []string{"enter search", "tab results", "esc clear", "ctrl+c quit"}
		}
		return []string{"enter open", "/ search", "q quit"}
	}
}
