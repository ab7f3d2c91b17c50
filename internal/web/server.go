package web

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/pders01/forumsearch/internal/article"
	"github.com/pders01/forumsearch/internal/config"
	"github.com/pders01/forumsearch/internal/debuglog"
	"github.com/pders01/forumsearch/internal/search"
	"github.com/pders01/forumsearch/internal/storage"
)

// Articles is the article flow the handlers drive.
type Articles interface {
	Create(d article.Draft) (*storage.Article, error)
	Get(id uuid.UUID) (*storage.Article, error)
	Edit(id uuid.UUID, d article.Draft) (*storage.Article, error)
	Delete(id uuid.UUID) error
	Reindex(ctx context.Context) (int, error)
}

// Index is the read side of the search index.
type Index interface {
	search.Searcher
	search.DebugStatser
}

type Server struct {
	cfg      config.ServerConfig
	articles Articles
	index    Index
	mux      *http.ServeMux
	log      *debuglog.FieldLogger
}

func NewServer(cfg config.ServerConfig, articles Articles, index Index) *Server {
	s := &Server{
		cfg:      cfg,
		articles: articles,
		index:    index,
		mux:      http.NewServeMux(),
		log:      debuglog.WithFields(map[string]any{"component": "web"}),
	}

	s.mux.HandleFunc("GET /search", s.handleSearch)
	s.mux.HandleFunc("POST /search", s.handleSearchForm)
	s.mux.HandleFunc("POST /articles", s.handleCreateArticle)
	s.mux.HandleFunc("GET /articles/{id}", s.handleGetArticle)
	s.mux.HandleFunc("PUT /articles/{id}", s.handleEditArticle)
	s.mux.HandleFunc("DELETE /articles/{id}", s.handleDeleteArticle)
	s.mux.HandleFunc("POST /admin/reindex", s.requireAdmin(s.handleReindex))
	s.mux.HandleFunc("GET /healthz", s.handleHealth)

	return s
}

// Handler returns the routed handler with request logging.
func (s *Server) Handler() http.Handler {
	return s.withLogging(s.mux)
}

// HTTPServer builds an http.Server for addr using the configured timeouts.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadTimeout:       s.cfg.ReadTimeout,
		ReadHeaderTimeout: s.cfg.ReadTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Debugf("%s %s %d %s", r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}
