package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
)

var articlesBucket = []byte("articles")

// ErrNotFound is returned when no article exists for the requested id.
var ErrNotFound = errors.New("article not found")

type Store struct {
	db *bolt.DB
}

func NewStore(dbPath string, timeout time.Duration) (*Store, error) {
	if timeout <= 0 {
		timeout = 1 * time.Second
	}
	db, err := bolt.Open(dbPath, 0o600, &bolt.Options{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, createErr := tx.CreateBucketIfNotExists(articlesBucket)
		return createErr
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) SaveArticle(article *Article) error {
	if article.ID == uuid.Nil {
		return fmt.Errorf("saving article: empty id")
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(articlesBucket)
		data, err := json.Marshal(article)
		if err != nil {
			return err
		}
		return b.Put([]byte(article.ID.String()), data)
	})
}

func (s *Store) GetArticle(id uuid.UUID) (*Article, error) {
	var article Article
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(articlesBucket).Get([]byte(id.String()))
		if data == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return json.Unmarshal(data, &article)
	})
	if err != nil {
		return nil, err
	}
	return &article, nil
}

// GetAllArticles returns every article, newest first. A limit of zero or less
// means no limit.
func (s *Store) GetAllArticles(limit int) ([]*Article, error) {
	var articles []*Article
	err := s.ForEachArticle(func(a *Article) error {
		articles = append(articles, a)
		return nil
	})
	sort.Slice(articles, func(i, j int) bool {
		return articles[i].CreatedTime.After(articles[j].CreatedTime)
	})
	if limit > 0 && len(articles) > limit {
		articles = articles[:limit]
	}
	return articles, err
}

// ForEachArticle calls fn for each stored article in key order. Records that
// fail to decode are skipped. An error from fn stops the iteration.
func (s *Store) ForEachArticle(fn func(*Article) error) error {
	return s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(articlesBucket).ForEach(func(_ []byte, v []byte) error {
			var article Article
			if err := json.Unmarshal(v, &article); err != nil {
				return nil
			}
			return fn(&article)
		})
	})
}

func (s *Store) DeleteArticle(id uuid.UUID) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(articlesBucket)
		key := []byte(id.String())
		if b.Get(key) == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return b.Delete(key)
	})
}

func (s *Store) CountArticles() (int, error) {
	var n int
	err := s.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(articlesBucket).Stats().KeyN
		return nil
	})
	return n, err
}
