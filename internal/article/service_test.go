package article

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/forumsearch/internal/search"
	"github.com/pders01/forumsearch/internal/storage"
)

type call struct {
	op  string
	doc search.Document
	id  uuid.UUID
}

type fakeIndex struct {
	mu    sync.Mutex
	calls []call
	err   error
}

func (f *fakeIndex) record(c call) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.calls = append(f.calls, c)
	return nil
}

func (f *fakeIndex) Add(doc search.Document) error    { return f.record(call{op: "add", doc: doc}) }
func (f *fakeIndex) Update(doc search.Document) error { return f.record(call{op: "update", doc: doc}) }
func (f *fakeIndex) Delete(id uuid.UUID) error        { return f.record(call{op: "delete", id: id}) }

func (f *fakeIndex) ops() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	for i, c := range f.calls {
		out[i] = c.op
	}
	return out
}

func newStore(t *testing.T) *storage.Store {
	t.Helper()
	store, err := storage.NewStore(filepath.Join(t.TempDir(), "forum.db"), time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func fixedClock(s *Service, at time.Time) {
	s.now = func() time.Time { return at }
}

func TestCreateStoresAndIndexes(t *testing.T) {
	store := newStore(t)
	idx := &fakeIndex{}
	svc := NewService(store, idx, false)
	created := time.Date(2025, 5, 6, 7, 8, 9, 500, time.UTC)
	fixedClock(svc, created)

	a, err := svc.Create(Draft{SectionID: "rust", AuthorID: "bob", Title: "Lifetimes", RawContent: "borrowing rules"})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, a.ID)
	assert.Equal(t, created.Truncate(time.Second), a.CreatedTime)

	stored, err := store.GetArticle(a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lifetimes", stored.Title)

	require.Equal(t, []string{"add"}, idx.ops())
	assert.Equal(t, search.Document{
		ID:          a.ID,
		CreatedTime: a.CreatedTime,
		Title:       "Lifetimes",
		Content:     "borrowing rules",
	}, idx.calls[0].doc)
}

func TestCreateRejectsEmptyTitle(t *testing.T) {
	idx := &fakeIndex{}
	svc := NewService(newStore(t), idx, false)

	_, err := svc.Create(Draft{Title: "  ", RawContent: "body"})
	require.ErrorIs(t, err, ErrInvalid)
	assert.Empty(t, idx.ops())
}

func TestCreateSurvivesClosedIndex(t *testing.T) {
	store := newStore(t)
	svc := NewService(store, &fakeIndex{err: search.ErrClosed}, false)

	a, err := svc.Create(Draft{Title: "still saved"})
	require.NoError(t, err)

	_, err = store.GetArticle(a.ID)
	assert.NoError(t, err)
}

func TestEditWithoutPropagationLeavesIndexAlone(t *testing.T) {
	idx := &fakeIndex{}
	svc := NewService(newStore(t), idx, false)

	a, err := svc.Create(Draft{Title: "before"})
	require.NoError(t, err)

	edited, err := svc.Edit(a.ID, Draft{Title: "after"})
	require.NoError(t, err)
	assert.Equal(t, "after", edited.Title)
	assert.Equal(t, a.CreatedTime, edited.CreatedTime)

	require.NoError(t, svc.Delete(a.ID))
	assert.Equal(t, []string{"add"}, idx.ops())
}

func TestEditAndDeletePropagateWhenEnabled(t *testing.T) {
	idx := &fakeIndex{}
	svc := NewService(newStore(t), idx, true)

	a, err := svc.Create(Draft{Title: "before", RawContent: "old"})
	require.NoError(t, err)

	_, err = svc.Edit(a.ID, Draft{Title: "after", RawContent: "new"})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(a.ID))

	require.Equal(t, []string{"add", "update", "delete"}, idx.ops())
	assert.Equal(t, "new", idx.calls[1].doc.Content)
	assert.Equal(t, a.ID, idx.calls[2].id)
}

func TestEditAndDeleteMissingArticle(t *testing.T) {
	idx := &fakeIndex{}
	svc := NewService(newStore(t), idx, true)

	_, err := svc.Edit(uuid.New(), Draft{Title: "x"})
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(uuid.New()), storage.ErrNotFound)
	assert.Empty(t, idx.ops())
}

func TestReindexQueuesEveryArticle(t *testing.T) {
	store := newStore(t)
	for i := 0; i < 5; i++ {
		require.NoError(t, store.SaveArticle(&storage.Article{ID: uuid.New(), Title: "stored"}))
	}
	idx := &fakeIndex{}
	svc := NewService(store, idx, false)

	n, err := svc.Reindex(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Len(t, idx.ops(), 5)
}

func TestReindexStops(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.SaveArticle(&storage.Article{ID: uuid.New(), Title: "one"}))

	svc := NewService(store, &fakeIndex{err: search.ErrClosed}, false)
	_, err := svc.Reindex(context.Background())
	assert.ErrorIs(t, err, search.ErrClosed)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	svc = NewService(store, &fakeIndex{}, false)
	n, err := svc.Reindex(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Zero(t, n)
}

func TestCreateIsSearchable(t *testing.T) {
	owner, err := search.Open("")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = owner.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-owner.Done()
	})

	client := owner.Client()
	svc := NewService(newStore(t), client, true)

	a, err := svc.Create(Draft{Title: "Marmalade", RawContent: "seville oranges"})
	require.NoError(t, err)

	hits, err := client.Query(context.Background(), "oranges")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, a.ID, hits[0].ID)

	_, err = svc.Edit(a.ID, Draft{Title: "Marmalade", RawContent: "blood oranges only"})
	require.NoError(t, err)
	hits, err = client.Query(context.Background(), "seville")
	require.NoError(t, err)
	assert.Empty(t, hits)

	require.NoError(t, svc.Delete(a.ID))
	hits, err = client.Query(context.Background(), "oranges")
	require.NoError(t, err)
	assert.Empty(t, hits)
}
