package tui

import "fmt"

// Canonical short status messages used across the app.
const (
	MsgSearching      = "Searching…"
	MsgLoadingArticle = "Loading article…"
	MsgNoResults      = "No results"
	MsgMalformedQuery = "Query syntax error"
	MsgTypeToSearch   = "Type at least two characters to search"
)

func MsgResultsCount(n int) string {
	if n == 1 {
		return "1 result"
	}
	return fmt.Sprintf("%d results", n)
}

func MsgResultsCapped(n, limit int) string {
	if n >= limit {
		return fmt.Sprintf("%s (showing the newest of the top %d)", MsgResultsCount(n), limit)
	}
	return MsgResultsCount(n)
}
