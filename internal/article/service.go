package article

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pders01/forumsearch/internal/debuglog"
	"github.com/pders01/forumsearch/internal/search"
	"github.com/pders01/forumsearch/internal/storage"
)

// ErrInvalid marks a draft that cannot be stored.
var ErrInvalid = errors.New("invalid article")

// Repository is the part of the article store the service needs.
type Repository interface {
	SaveArticle(a *storage.Article) error
	GetArticle(id uuid.UUID) (*storage.Article, error)
	DeleteArticle(id uuid.UUID) error
	ForEachArticle(fn func(*storage.Article) error) error
}

// Draft is the user-editable part of an article.
type Draft struct {
	SectionID  string   `json:"section_id"`
	AuthorID   string   `json:"author_id"`
	Title      string   `json:"title"`
	Tags       []string `json:"tags"`
	RawContent string   `json:"raw_content"`
}

func (d Draft) validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalid)
	}
	return nil
}

// Service keeps the article store and the search index in step. The store
// is the source of truth; index commands are queued after a successful write.
type Service struct {
	repo           Repository
	index          search.Indexer
	propagateEdits bool
	now            func() time.Time
	log            *debuglog.FieldLogger
}

// NewService wires repo and index. With propagateEdits false, Edit and
// Delete leave the index untouched and log that it is stale.
func NewService(repo Repository, index search.Indexer, propagateEdits bool) *Service {
	return &Service{
		repo:           repo,
		index:          index,
		propagateEdits: propagateEdits,
		now:            time.Now,
		log:            debuglog.WithFields(map[string]any{"component": "article"}),
	}
}

// ToDocument maps a stored article to its indexable form.
func ToDocument(a *storage.Article) search.Document {
	return search.Document{
		ID:          a.ID,
		CreatedTime: a.CreatedTime,
		Title:       a.Title,
		Content:     a.RawContent,
	}
}

func (s *Service) Get(id uuid.UUID) (*storage.Article, error) {
	return s.repo.GetArticle(id)
}

// Create stores a new article and queues it for indexing.
func (s *Service) Create(d Draft) (*storage.Article, error) {
	if err := d.validate(); err != nil {
		return nil, err
	}
	now := s.now().UTC().Truncate(time.Second)
	a := &storage.Article{
		ID:          uuid.New(),
		SectionID:   d.SectionID,
		AuthorID:    d.AuthorID,
		Title:       d.Title,
		Tags:        d.Tags,
		RawContent:  d.RawContent,
		CreatedTime: now,
		UpdatedTime: now,
	}
	if err := s.Put(a); err != nil {
		return nil, err
	}
	return a, nil
}

// Put stores a fully formed article, keeping its id and timestamps, and
// queues it for indexing. Storing an existing id replaces it in both places.
func (s *Service) Put(a *storage.Article) error {
	if err := s.repo.SaveArticle(a); err != nil {
		return fmt.Errorf("saving article: %w", err)
	}
	if err := s.index.Add(ToDocument(a)); err != nil {
		s.log.With("article_id", a.ID.String()).Errorf("article saved but not queued for indexing: %v", err)
	}
	return nil
}

// Edit replaces the editable fields of an existing article.
func (s *Service) Edit(id uuid.UUID, d Draft) (*storage.Article, error) {
	if err := d.validate(); err != nil {
		return nil, err
	}
	a, err := s.repo.GetArticle(id)
	if err != nil {
		return nil, err
	}
	a.SectionID = d.SectionID
	a.AuthorID = d.AuthorID
	a.Title = d.Title
	a.Tags = d.Tags
	a.RawContent = d.RawContent
	a.UpdatedTime = s.now().UTC().Truncate(time.Second)

	if err := s.repo.SaveArticle(a); err != nil {
		return nil, fmt.Errorf("saving article: %w", err)
	}

	log := s.log.With("article_id", id.String())
	if !s.propagateEdits {
		log.Warnf("article edited; search index keeps the old version until reindex")
		return a, nil
	}
	if err := s.index.Update(ToDocument(a)); err != nil {
		log.Errorf("article edited but index update not queued: %v", err)
	}
	return a, nil
}

// Delete removes an article from the store.
func (s *Service) Delete(id uuid.UUID) error {
	if err := s.repo.DeleteArticle(id); err != nil {
		return err
	}

	log := s.log.With("article_id", id.String())
	if !s.propagateEdits {
		log.Warnf("article deleted; search index still returns it until reindex")
		return nil
	}
	if err := s.index.Delete(id); err != nil {
		log.Errorf("article deleted but index delete not queued: %v", err)
	}
	return nil
}

// Reindex queues an Add for every stored article and returns how many were
// queued. It stops early if ctx is cancelled or the index stops accepting
// commands.
func (s *Service) Reindex(ctx context.Context) (int, error) {
	n := 0
	err := s.repo.ForEachArticle(func(a *storage.Article) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.index.Add(ToDocument(a)); err != nil {
			return fmt.Errorf("queueing %s: %w", a.ID, err)
		}
		n++
		return nil
	})
	if err != nil {
		return n, fmt.Errorf("reindex stopped after %d articles: %w", n, err)
	}
	s.log.With("count", n).Infof("reindex queued")
	return n, nil
}
