// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/pdiddy/papercrawl/pkg/types"
)

var paperBucket = []byte("papers")

// BoltStore keeps paper records as JSON values in a single bolt bucket.
type BoltStore struct {
	db *bolt.DB
}

// NewBoltStore opens or creates the bolt file at path.
func NewBoltStore(path string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening bolt file %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(paperBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating bucket: %w", err)
	}
	return &BoltStore{db: db}, nil
}

// Close closes the bolt file.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

// Exists reports whether id has a value in the bucket.
func (s *BoltStore) Exists(_ context.Context, id string) (bool, error) {
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		found = tx.Bucket(paperBucket).Get([]byte(id)) != nil
		return nil
	})
	return found, err
}

// Upsert writes p in a single update transaction.
func (s *BoltStore) Upsert(_ context.Context, p types.Paper) error {
	if err := validate(p); err != nil {
		return err
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(paperBucket)
		if data := bucket.Get([]byte(p.ID)); data != nil {
			var old types.Paper
			if err := json.Unmarshal(data, &old); err != nil {
				return fmt.Errorf("decoding paper %s: %w", p.ID, err)
			}
			mergeScores(&p, old)
		}
		data, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("marshaling paper %s: %w", p.ID, err)
		}
		return bucket.Put([]byte(p.ID), data)
	})
}

// Get returns the value for id.
func (s *BoltStore) Get(_ context.Context, id string) (types.Paper, error) {
	var p types.Paper
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(paperBucket).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return json.Unmarshal(data, &p)
	})
	return p, err
}

// List returns every value in key order, which is id order.
func (s *BoltStore) List(_ context.Context) ([]types.Paper, error) {
	var papers []types.Paper
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(paperBucket).ForEach(func(k, v []byte) error {
			var p types.Paper
			if err := json.Unmarshal(v, &p); err != nil {
				return fmt.Errorf("decoding paper %s: %w", k, err)
			}
			papers = append(papers, p)
			return nil
		})
	})
	return papers, err
}

// Recent lists the bucket and returns the n most recently saved values.
func (s *BoltStore) Recent(ctx context.Context, n int) ([]types.Paper, error) {
	if n <= 0 {
		return nil, nil
	}
	papers, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(papers, func(i, j int) bool {
		if !papers[i].DateSaved.Equal(papers[j].DateSaved) {
			return papers[i].DateSaved.After(papers[j].DateSaved)
		}
		return papers[i].ID > papers[j].ID
	})
	if len(papers) > n {
		papers = papers[:n]
	}
	return papers, nil
}

// SetScores rewrites the value for id with the given scores.
func (s *BoltStore) SetScores(_ context.Context, id string, relevance, excitement int) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(paperBucket)
		data := bucket.Get([]byte(id))
		if data == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		var p types.Paper
		if err := json.Unmarshal(data, &p); err != nil {
			return fmt.Errorf("decoding paper %s: %w", id, err)
		}
		p.RelevanceScore = intPtr(relevance)
		p.ExcitementScore = intPtr(excitement)
		out, err := json.Marshal(p)
		if err != nil {
			return err
		}
		return bucket.Put([]byte(id), out)
	})
}

// Reset deletes and recreates the bucket in one transaction.
func (s *BoltStore) Reset(_ context.Context) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(paperBucket); err != nil && err != bolt.ErrBucketNotFound {
			return fmt.Errorf("deleting bucket: %w", err)
		}
		_, err := tx.CreateBucket(paperBucket)
		return err
	})
}
