package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/pders01/forumsearch/internal/debuglog"
	"github.com/pders01/forumsearch/internal/storage"
	"github.com/pders01/forumsearch/internal/validation"
)

// maxConcurrentImports bounds how many sources ImportAll reads at once.
const maxConcurrentImports = 5

// Sink receives parsed articles. article.Service satisfies it.
type Sink interface {
	Put(a *storage.Article) error
}

type Importer struct {
	sink      Sink
	fetcher   *Fetcher
	parser    *Parser
	sectionID string
	log       *debuglog.FieldLogger
}

func NewImporter(sink Sink, fetcher *Fetcher, sectionID string) *Importer {
	return &Importer{
		sink:      sink,
		fetcher:   fetcher,
		parser:    NewParser(),
		sectionID: sectionID,
		log:       debuglog.WithFields(map[string]any{"component": "feed.import"}),
	}
}

// Import reads one feed from a local file or an http(s) URL and stores each
// item as an article. It returns how many articles were stored.
func (im *Importer) Import(ctx context.Context, source string) (int, error) {
	body, err := im.open(ctx, source)
	if err != nil {
		return 0, err
	}
	defer body.Close()

	articles, err := im.parser.Parse(body, im.sectionID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", source, err)
	}

	n := 0
	for _, a := range articles {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		if err := im.sink.Put(a); err != nil {
			return n, fmt.Errorf("storing %q from %s: %w", a.Title, source, err)
		}
		n++
	}
	im.log.With("source", source).With("count", n).Infof("feed imported")
	return n, nil
}

// ImportAll imports sources concurrently. Every source is attempted; the
// returned error joins the failures.
func (im *Importer) ImportAll(ctx context.Context, sources []string) (int, error) {
	var (
		total atomic.Int64
		errs  = make([]error, len(sources))
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentImports)
	for i, source := range sources {
		g.Go(func() error {
			n, err := im.Import(ctx, source)
			total.Add(int64(n))
			if err != nil {
				im.log.With("source", source).Warnf("import failed: %v", err)
				errs[i] = err
			}
			return nil
		})
	}
	_ = g.Wait()

	return int(total.Load()), errors.Join(errs...)
}

func (im *Importer) open(ctx context.Context, source string) (io.ReadCloser, error) {
	if validation.IsFeedURL(source) {
		url, err := validation.FeedURL(source)
		if err != nil {
			return nil, fmt.Errorf("invalid feed URL: %w", err)
		}
		if im.fetcher == nil {
			return nil, fmt.Errorf("no fetcher configured for %s", url)
		}
		return im.fetcher.Fetch(ctx, url)
	}

	path, err := validation.CleanPath(source)
	if err != nil {
		return nil, fmt.Errorf("invalid feed path: %w", err)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening feed: %w", err)
	}
	return f, nil
}
