package web

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/pders01/forumsearch/internal/article"
	"github.com/pders01/forumsearch/internal/search"
	"github.com/pders01/forumsearch/internal/storage"
)

const maxBodyBytes = 1 << 20

type searchResponse struct {
	Query string       `json:"query"`
	Hits  []search.Hit `json:"hits"`
}

func respond(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respond(w, status, map[string]any{"error": message})
}

// statusForError maps service errors onto HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, search.ErrMalformedQuery), errors.Is(err, article.ErrInvalid):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, search.ErrClosed):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) queryContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.QueryTimeout > 0 {
		return context.WithTimeout(ctx, s.cfg.QueryTimeout)
	}
	return context.WithCancel(ctx)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")

	ctx, cancel := s.queryContext(r.Context())
	defer cancel()

	hits, err := s.index.Query(ctx, q)
	if err != nil {
		status := statusForError(err)
		if status >= http.StatusInternalServerError {
			s.log.With("query", q).Errorf("search failed: %v", err)
		}
		respondError(w, status, err.Error())
		return
	}
	if hits == nil {
		hits = []search.Hit{}
	}
	respond(w, http.StatusOK, searchResponse{Query: q, Hits: hits})
}

// handleSearchForm accepts a posted search box and redirects to the
// results URL so the query is bookmarkable.
func (s *Server) handleSearchForm(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		respondError(w, http.StatusBadRequest, "invalid form")
		return
	}
	target := "/search?q=" + url.QueryEscape(r.PostForm.Get("q"))
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func decodeDraft(w http.ResponseWriter, r *http.Request) (article.Draft, bool) {
	var d article.Draft
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		respondError(w, http.StatusBadRequest, "invalid json payload")
		return d, false
	}
	return d, true
}

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid article id")
		return uuid.Nil, false
	}
	return id, true
}

func (s *Server) handleCreateArticle(w http.ResponseWriter, r *http.Request) {
	d, ok := decodeDraft(w, r)
	if !ok {
		return
	}
	a, err := s.articles.Create(d)
	if err != nil {
		respondError(w, statusForError(err), err.Error())
		return
	}
	w.Header().Set("Location", "/articles/"+a.ID.String())
	respond(w, http.StatusCreated, a)
}

func (s *Server) handleGetArticle(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	a, err := s.articles.Get(id)
	if err != nil {
		respondError(w, statusForError(err), err.Error())
		return
	}
	respond(w, http.StatusOK, a)
}

func (s *Server) handleEditArticle(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	d, ok := decodeDraft(w, r)
	if !ok {
		return
	}
	a, err := s.articles.Edit(id, d)
	if err != nil {
		respondError(w, statusForError(err), err.Error())
		return
	}
	respond(w, http.StatusOK, a)
}

func (s *Server) handleDeleteArticle(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.articles.Delete(id); err != nil {
		respondError(w, statusForError(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// requireAdmin guards next with the configured admin token. With no token
// configured the endpoint does not exist.
func (s *Server) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.AdminToken == "" {
			http.NotFound(w, r)
			return
		}
		got := r.Header.Get("X-Admin-Token")
		if subtle.ConstantTimeCompare([]byte(got), []byte(s.cfg.AdminToken)) != 1 {
			respondError(w, http.StatusUnauthorized, "invalid admin token")
			return
		}
		next(w, r)
	}
}

func (s *Server) handleReindex(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	n, err := s.articles.Reindex(r.Context())
	if err != nil {
		s.log.Errorf("reindex failed: %v", err)
		respond(w, statusForError(err), map[string]any{"error": err.Error(), "queued": n})
		return
	}
	respond(w, http.StatusAccepted, map[string]any{
		"queued":   n,
		"timingMs": time.Since(start).Milliseconds(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.queryContext(r.Context())
	defer cancel()

	n, err := s.index.DocCount(ctx)
	if err != nil {
		respond(w, http.StatusServiceUnavailable, map[string]any{"status": "unavailable", "error": err.Error()})
		return
	}
	respond(w, http.StatusOK, map[string]any{"status": "ok", "documents": n})
}
