package search

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(sec int64) time.Time { return time.Unix(sec, 0).UTC() }

func openOwner(t *testing.T, path string) *Owner {
	t.Helper()
	o, err := Open(path)
	require.NoError(t, err)
	return o
}

func runOwner(t *testing.T, o *Owner) *Client {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = o.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-o.Done()
	})
	return o.Client()
}

func startOwner(t *testing.T) *Client {
	t.Helper()
	return runOwner(t, openOwner(t, ""))
}

func ids(hits []Hit) []uuid.UUID {
	out := make([]uuid.UUID, len(hits))
	for i, h := range hits {
		out[i] = h.ID
	}
	return out
}

func query(t *testing.T, c *Client, text string) []Hit {
	t.Helper()
	hits, err := c.Query(context.Background(), text)
	require.NoError(t, err)
	return hits
}

func TestAddedDocumentIsFound(t *testing.T) {
	c := startOwner(t)

	doc := Document{ID: uuid.New(), CreatedTime: at(100), Title: "Gardening notes", Content: "tomatoes need sunlight"}
	require.NoError(t, c.Add(doc))

	assert.Contains(t, ids(query(t, c, "gardening")), doc.ID, "title term")
	assert.Contains(t, ids(query(t, c, "sunlight")), doc.ID, "content term")
}

func TestHitRoundTripsStoredFields(t *testing.T) {
	c := startOwner(t)

	doc := Document{ID: uuid.New(), CreatedTime: at(1_700_000_000), Title: "Round Trip", Content: "never returned"}
	require.NoError(t, c.Add(doc))

	hits := query(t, c, "trip")
	require.Len(t, hits, 1)
	assert.Equal(t, Hit{ID: doc.ID, Title: "Round Trip", CreatedTime: at(1_700_000_000)}, hits[0])
}

func TestDeleteRemovesDocument(t *testing.T) {
	c := startOwner(t)

	doc := Document{ID: uuid.New(), CreatedTime: at(100), Title: "kiwi", Content: "kiwi tart"}
	require.NoError(t, c.Add(doc))
	require.Equal(t, []uuid.UUID{doc.ID}, ids(query(t, c, "kiwi")))

	require.NoError(t, c.Delete(doc.ID))
	assert.Empty(t, query(t, c, "kiwi"))
}

func TestUpdateReplacesDocument(t *testing.T) {
	c := startOwner(t)

	id := uuid.New()
	require.NoError(t, c.Add(Document{ID: id, CreatedTime: at(100), Title: "safari", Content: "zebra sighting"}))
	require.NoError(t, c.Update(Document{ID: id, CreatedTime: at(100), Title: "safari", Content: "giraffe sighting"}))

	assert.Equal(t, []uuid.UUID{id}, ids(query(t, c, "giraffe")))
	assert.Empty(t, query(t, c, "zebra"))
	assert.Len(t, query(t, c, "safari"), 1, "one logical document per id")
}

func TestAddSameIDReplaces(t *testing.T) {
	c := startOwner(t)

	id := uuid.New()
	require.NoError(t, c.Add(Document{ID: id, CreatedTime: at(1), Title: "first draft"}))
	require.NoError(t, c.Add(Document{ID: id, CreatedTime: at(2), Title: "second draft"}))

	hits := query(t, c, "draft")
	require.Len(t, hits, 1)
	assert.Equal(t, "second draft", hits[0].Title)
}

func TestResultSetIsCapped(t *testing.T) {
	c := startOwner(t)

	for i := 0; i < MaxResults+10; i++ {
		require.NoError(t, c.Add(Document{
			ID:          uuid.New(),
			CreatedTime: at(int64(1000 + i)),
			Title:       fmt.Sprintf("post %d", i),
			Content:     "common words everywhere",
		}))
	}

	hits := query(t, c, "common")
	assert.Len(t, hits, MaxResults)
	for i := 1; i < len(hits); i++ {
		assert.False(t, hits[i].CreatedTime.After(hits[i-1].CreatedTime),
			"hit %d is newer than hit %d", i, i-1)
	}
}

func TestNoCrossContamination(t *testing.T) {
	c := startOwner(t)

	a := uuid.New()
	require.NoError(t, c.Add(Document{ID: a, CreatedTime: at(100), Title: "apple pie", Content: "apple pie recipe"}))
	assert.Contains(t, ids(query(t, c, "apple")), a)

	b := uuid.New()
	require.NoError(t, c.Add(Document{ID: b, CreatedTime: at(200), Title: "banana", Content: "banana bread"}))
	assert.Equal(t, []uuid.UUID{b}, ids(query(t, c, "banana")))
	assert.Equal(t, []uuid.UUID{a}, ids(query(t, c, "apple")))
}

func TestRecencyOrderWithinWindow(t *testing.T) {
	c := startOwner(t)

	a, b := uuid.New(), uuid.New()
	require.NoError(t, c.Add(Document{ID: a, CreatedTime: at(100), Title: "fruit", Content: "fruit basket"}))
	require.NoError(t, c.Add(Document{ID: b, CreatedTime: at(200), Title: "fruit", Content: "fruit basket"}))

	assert.Equal(t, []uuid.UUID{b, a}, ids(query(t, c, "fruit")))
}

func TestConcurrentQueriesGetTheirOwnReplies(t *testing.T) {
	c := startOwner(t)

	const n = 24
	docs := make([]uuid.UUID, n)
	for i := range docs {
		docs[i] = uuid.New()
		require.NoError(t, c.Add(Document{
			ID:          docs[i],
			CreatedTime: at(int64(i)),
			Title:       fmt.Sprintf("marker%d", i),
		}))
	}

	start := make(chan struct{})
	errs := make(chan error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			for round := 0; round < 5; round++ {
				hits, err := c.Query(context.Background(), fmt.Sprintf("marker%d", i))
				if err != nil {
					errs <- err
					return
				}
				if len(hits) != 1 || hits[0].ID != docs[i] {
					errs <- fmt.Errorf("query %d got %v, want [%s]", i, ids(hits), docs[i])
					return
				}
			}
		}(i)
	}
	close(start)
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}

func TestEmptyQueryReturnsNoHits(t *testing.T) {
	c := startOwner(t)
	require.NoError(t, c.Add(Document{ID: uuid.New(), CreatedTime: at(1), Title: "anything"}))

	for _, q := range []string{"", "   "} {
		hits, err := c.Query(context.Background(), q)
		require.NoError(t, err)
		assert.NotNil(t, hits)
		assert.Empty(t, hits)
	}
}

func TestMalformedQueryIsAnError(t *testing.T) {
	c := startOwner(t)
	require.NoError(t, c.Add(Document{ID: uuid.New(), CreatedTime: at(1), Title: "abc"}))

	_, err := c.Query(context.Background(), "title:>abc")
	require.ErrorIs(t, err, ErrMalformedQuery)

	hits, err := c.Query(context.Background(), "nomatch")
	require.NoError(t, err, "no matches is not an error")
	assert.Empty(t, hits)
}

func TestCJKTextIsSegmented(t *testing.T) {
	c := startOwner(t)

	doc := Document{ID: uuid.New(), CreatedTime: at(1), Title: "全文搜索引擎", Content: "分词器支持中文"}
	require.NoError(t, c.Add(doc))

	assert.Contains(t, ids(query(t, c, "搜索")), doc.ID)
	assert.Contains(t, ids(query(t, c, "中文")), doc.ID)
}

func TestUndecodableHitIsSkipped(t *testing.T) {
	o := openOwner(t, "")
	require.NoError(t, o.idx.Index("bogus", map[string]any{
		FieldID:          "not-a-uuid",
		FieldCreatedTime: "100",
		FieldTitle:       "fruit salad",
	}))
	require.NoError(t, o.idx.Index("bad-time", map[string]any{
		FieldID:          uuid.NewString(),
		FieldCreatedTime: "yesterday",
		FieldTitle:       "fruit cake",
	}))
	c := runOwner(t, o)

	good := uuid.New()
	require.NoError(t, c.Add(Document{ID: good, CreatedTime: at(5), Title: "fruit bowl"}))

	assert.Equal(t, []uuid.UUID{good}, ids(query(t, c, "fruit")))
}

func TestFieldsOutsideTitleAndContentAreNotSearched(t *testing.T) {
	c := startOwner(t)

	doc := Document{ID: uuid.New(), CreatedTime: at(424242), Title: "plain", Content: "text"}
	require.NoError(t, c.Add(doc))

	assert.Empty(t, query(t, c, `"`+doc.ID.String()+`"`))
	assert.Empty(t, query(t, c, "424242"))
}

func TestDocCount(t *testing.T) {
	c := startOwner(t)
	for i := 0; i < 3; i++ {
		require.NoError(t, c.Add(Document{ID: uuid.New(), CreatedTime: at(1), Title: "x"}))
	}

	n, err := c.DocCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(3), n)
}

func TestIndexPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "search_index")

	o := openOwner(t, path)
	c := runOwner(t, o)
	doc := Document{ID: uuid.New(), CreatedTime: at(77), Title: "durable", Content: "survives restart"}
	require.NoError(t, c.Add(doc))
	require.NoError(t, o.Close())

	_, err := c.Query(context.Background(), "durable")
	require.ErrorIs(t, err, ErrClosed)

	c2 := runOwner(t, openOwner(t, path))
	assert.Equal(t, []uuid.UUID{doc.ID}, ids(query(t, c2, "restart")))
}

func TestIndexDirectoryIsLocked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "search_index")

	o := openOwner(t, path)
	t.Cleanup(func() { _ = o.Close() })

	_, err := Open(path)
	require.ErrorIs(t, err, ErrIndexLocked)
}

func TestClosedOwnerRejectsCommands(t *testing.T) {
	o := openOwner(t, "")
	c := o.Client()
	require.NoError(t, o.Close())

	assert.ErrorIs(t, c.Add(Document{ID: uuid.New()}), ErrClosed)
	_, err := c.Query(context.Background(), "anything")
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, o.Run(context.Background()), ErrClosed)
}

func TestQueuedCommandsDrainOnShutdown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "search_index")

	o := openOwner(t, path)
	c := o.Client()
	doc := Document{ID: uuid.New(), CreatedTime: at(1), Title: "queued before start"}
	require.NoError(t, c.Add(doc))
	require.NoError(t, o.Close())

	c2 := runOwner(t, openOwner(t, path))
	assert.Equal(t, []uuid.UUID{doc.ID}, ids(query(t, c2, "queued")))
}

func TestQueryHonoursContext(t *testing.T) {
	o := openOwner(t, "")
	t.Cleanup(func() { _ = o.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := o.Client().Query(ctx, "anything")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestQueryCacheIsPurgedByMutations(t *testing.T) {
	o := openOwner(t, "")
	c := runOwner(t, o)

	require.NoError(t, c.Add(Document{ID: uuid.New(), CreatedTime: at(1), Title: "cached"}))
	hits := query(t, c, "cached")
	require.Len(t, hits, 1)
	assert.Equal(t, 1, o.cache.Len())

	hits[0].Title = "mutated by caller"
	assert.Equal(t, "cached", query(t, c, "cached")[0].Title, "callers get a copy")

	require.NoError(t, c.Add(Document{ID: uuid.New(), CreatedTime: at(2), Title: "cached again"}))
	assert.Len(t, query(t, c, "cached"), 2)
}

func TestSingleCJKCharacterMatches(t *testing.T) {
	c := startOwner(t)

	doc := Document{ID: uuid.New(), CreatedTime: at(1), Title: "苹果派", Content: "我喜欢读书"}
	require.NoError(t, c.Add(doc))

	for _, q := range []string{"苹", "书", "苹果", "读书", "喜欢"} {
		assert.Equal(t, []uuid.UUID{doc.ID}, ids(query(t, c, q)), "query %q", q)
	}
}

func TestQueriesQueuedBeforeCancelAreAnswered(t *testing.T) {
	for i := 0; i < 20; i++ {
		o := openOwner(t, "")
		c := o.Client()

		doc := Document{ID: uuid.New(), CreatedTime: at(1), Title: "drained query"}
		require.NoError(t, c.Add(doc))
		reply := make(chan Reply, 1)
		require.NoError(t, c.Send(QueryCommand{Ctx: context.Background(), Text: "drained", Reply: reply}))

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		require.NoError(t, o.Run(ctx))

		r := <-reply
		require.NoError(t, r.Err, "run %d", i)
		assert.Equal(t, []uuid.UUID{doc.ID}, ids(r.Hits), "run %d", i)
	}
}

func TestQueryRunsUnderCallerContext(t *testing.T) {
	o := openOwner(t, "")
	c := runOwner(t, o)
	require.NoError(t, c.Add(Document{ID: uuid.New(), CreatedTime: at(1), Title: "context bound"}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	reply := make(chan Reply, 1)
	require.NoError(t, c.Send(QueryCommand{Ctx: ctx, Text: "context", Reply: reply}))

	r := <-reply
	assert.ErrorIs(t, r.Err, context.Canceled)

	assert.Len(t, query(t, c, "context"), 1, "cancelled searches are not cached")
}
