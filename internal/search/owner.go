package search

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/index/scorch"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/gofrs/flock"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/pders01/forumsearch/internal/debuglog"
)

var (
	// ErrClosed is returned for commands submitted after the owner stopped.
	ErrClosed = errors.New("search index closed")

	// ErrMalformedQuery marks query text the parser rejected.
	ErrMalformedQuery = errors.New("malformed query")

	// ErrIndexLocked means another process holds the index directory.
	ErrIndexLocked = errors.New("search index locked by another process")
)

// queryCacheSize bounds the number of cached result sets. Every applied
// mutation empties the cache.
const queryCacheSize = 256

// Owner has exclusive use of the bleve index. Only the goroutine running Run
// reads or writes it; everything else talks to it through a Client.
type Owner struct {
	idx   bleve.Index
	exec  *executor
	lock  *flock.Flock
	path  string
	inbox *mailbox
	cache *lru.Cache[string, []Hit]

	started  atomic.Bool
	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
	closeErr error

	log *debuglog.FieldLogger
}

// Open opens the index at path, creating it when missing. An empty path
// gives an in-memory index. The directory is locked for the lifetime of the
// owner.
func Open(path string) (*Owner, error) {
	im, err := buildIndexMapping()
	if err != nil {
		return nil, err
	}

	var (
		idx  bleve.Index
		lock *flock.Flock
	)
	if path == "" {
		idx, err = bleve.NewMemOnly(im)
		if err != nil {
			return nil, fmt.Errorf("creating in-memory index: %w", err)
		}
	} else {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating index parent directory: %w", err)
		}

		lock = flock.New(path + ".lock")
		locked, err := lock.TryLock()
		if err != nil {
			return nil, fmt.Errorf("locking index %s: %w", path, err)
		}
		if !locked {
			return nil, fmt.Errorf("%w: %s", ErrIndexLocked, path)
		}

		idx, err = openOrCreate(path, im)
		if err != nil {
			_ = lock.Unlock()
			return nil, err
		}
	}

	cache, _ := lru.New[string, []Hit](queryCacheSize)

	o := &Owner{
		idx:   idx,
		exec:  newExecutor(idx),
		lock:  lock,
		path:  path,
		inbox: newMailbox(),
		cache: cache,
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
		log:   debuglog.WithFields(map[string]any{"component": "search.owner"}),
	}
	return o, nil
}

func openOrCreate(path string, im mapping.IndexMapping) (bleve.Index, error) {
	idx, err := bleve.Open(path)
	if errors.Is(err, bleve.ErrorIndexPathDoesNotExist) {
		idx, err = bleve.NewUsing(path, im, scorch.Name, scorch.Name, map[string]any{
			// Batch returns only once the segment is persisted, so every
			// applied command is a durable commit.
			"unsafe_batch": false,
		})
		if err != nil {
			return nil, fmt.Errorf("creating index %s: %w", path, err)
		}
		debuglog.Infof("created search index at %s", path)
		return idx, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening index %s: %w", path, err)
	}
	debuglog.Infof("opened search index at %s", path)
	return idx, nil
}

// Client returns a handle for submitting commands. Clients are safe for
// concurrent use and remain valid, returning ErrClosed, after shutdown.
func (o *Owner) Client() *Client {
	return &Client{inbox: o.inbox, done: o.done}
}

// Done is closed once the owner has released the index.
func (o *Owner) Done() <-chan struct{} {
	return o.done
}

// Run applies commands one at a time in arrival order until ctx is cancelled
// or Close is called. Commands still queued at that point are applied before
// the index is closed.
func (o *Owner) Run(ctx context.Context) error {
	if !o.started.CompareAndSwap(false, true) {
		return ErrClosed
	}
	defer close(o.done)

	o.log.Infof("index owner started")
	for {
		select {
		case <-ctx.Done():
			o.closeErr = o.shutdown()
			return o.closeErr
		case <-o.stop:
			o.closeErr = o.shutdown()
			return o.closeErr
		case <-o.inbox.ready:
			for _, cmd := range o.inbox.take() {
				o.handle(cmd)
			}
		}
	}
}

// Close stops the owner and waits for it to release the index.
func (o *Owner) Close() error {
	o.stopOnce.Do(func() { close(o.stop) })
	if o.started.CompareAndSwap(false, true) {
		o.closeErr = o.shutdown()
		close(o.done)
		return o.closeErr
	}
	<-o.done
	return o.closeErr
}

func (o *Owner) shutdown() error {
	pending := o.inbox.close()
	if len(pending) > 0 {
		o.log.Infof("draining %d queued commands", len(pending))
	}
	for _, cmd := range pending {
		o.handle(cmd)
	}

	err := o.idx.Close()
	if o.lock != nil {
		if unlockErr := o.lock.Unlock(); unlockErr != nil && err == nil {
			err = fmt.Errorf("unlocking index %s: %w", o.path, unlockErr)
		}
	}
	o.log.Infof("index owner stopped")
	return err
}

func (o *Owner) handle(cmd Command) {
	switch c := cmd.(type) {
	case AddCommand:
		o.commit("add", c.Doc)
	case UpdateCommand:
		// Indexing an existing id replaces the old document inside the same
		// batch, so there is no window where the id is missing.
		o.commit("update", c.Doc)
	case DeleteCommand:
		batch := o.idx.NewBatch()
		batch.Delete(docID(c.ID))
		if err := o.idx.Batch(batch); err != nil {
			o.log.With("doc_id", docID(c.ID)).Errorf("delete failed, dropped: %v", err)
			return
		}
		o.cache.Purge()
		o.log.With("doc_id", docID(c.ID)).Debugf("deleted from index")
	case QueryCommand:
		o.reply(c.Reply, o.query(c.Ctx, c.Text))
	case CountCommand:
		var r Reply
		r.Count, r.Err = o.exec.DocCount()
		o.reply(c.Reply, r)
	default:
		o.log.Errorf("unknown command %T dropped", cmd)
	}
}

func (o *Owner) commit(op string, doc Document) {
	id := docID(doc.ID)
	batch := o.idx.NewBatch()
	if err := batch.Index(id, encodeDocument(doc)); err != nil {
		o.log.With("doc_id", id).Errorf("%s failed to encode, dropped: %v", op, err)
		return
	}
	if err := o.idx.Batch(batch); err != nil {
		o.log.With("doc_id", id).Errorf("%s failed, dropped: %v", op, err)
		return
	}
	o.cache.Purge()
	o.log.With("doc_id", id).Infof("%s committed", op)
}

// query serves repeated text from the cache. Callers get their own copy of
// the hits. ctx is the caller's; a nil ctx runs without a deadline.
func (o *Owner) query(ctx context.Context, text string) Reply {
	if ctx == nil {
		ctx = context.Background()
	}
	if text == "" {
		return Reply{Hits: []Hit{}}
	}
	if hits, ok := o.cache.Get(text); ok {
		return Reply{Hits: slices.Clone(hits)}
	}

	hits, err := o.exec.Search(ctx, text)
	if err != nil {
		return Reply{Err: err}
	}
	o.cache.Add(text, hits)
	return Reply{Hits: slices.Clone(hits)}
}

func (o *Owner) reply(ch chan<- Reply, r Reply) {
	if ch == nil {
		return
	}
	select {
	case ch <- r:
	default:
		o.log.Warnf("reply channel full, result dropped")
	}
}
