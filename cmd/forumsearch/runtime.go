package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/pders01/forumsearch/internal/article"
	"github.com/pders01/forumsearch/internal/config"
	"github.com/pders01/forumsearch/internal/debuglog"
	"github.com/pders01/forumsearch/internal/search"
	"github.com/pders01/forumsearch/internal/storage"
)

// backend holds the long-lived pieces every command except version and
// config shares.
type backend struct {
	cfg      *config.Config
	store    *storage.Store
	owner    *search.Owner
	index    *search.Client
	articles *article.Service
}

func openBackend(cfg *config.Config) (*backend, error) {
	store, err := storage.NewStore(cfg.Database.Path, cfg.Database.Timeout)
	if err != nil {
		return nil, fmt.Errorf("opening article store: %w", err)
	}

	owner, err := search.Open(cfg.Index.Path)
	if err != nil {
		_ = store.Close()
		if errors.Is(err, search.ErrIndexLocked) {
			return nil, fmt.Errorf("%w (is another forumsearch process running?)", err)
		}
		return nil, err
	}

	index := owner.Client()
	return &backend{
		cfg:      cfg,
		store:    store,
		owner:    owner,
		index:    index,
		articles: article.NewService(store, index, cfg.Index.PropagateEdits),
	}, nil
}

// start runs the index owner until ctx is cancelled or close is called.
func (b *backend) start(ctx context.Context) {
	go func() {
		if err := b.owner.Run(ctx); err != nil && !errors.Is(err, search.ErrClosed) {
			debuglog.Errorf("index owner: %v", err)
		}
	}()
}

// close drains the owner's queue, then closes the index and the store.
func (b *backend) close() error {
	return errors.Join(b.owner.Close(), b.store.Close())
}
