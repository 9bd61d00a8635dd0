// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists paper records keyed by their source identifier.
// Every backend (sqlite, bleve, bolt) honours the same contract: Exists is
// checked before enrichment, Upsert is a single atomic write per id, and
// Reset drops and recreates the store.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/pdiddy/papercrawl/pkg/types"
)

var (
	// ErrEmptyID is returned by Upsert for papers without an identifier.
	ErrEmptyID = errors.New("paper has no id")

	// ErrInvalid is returned by Upsert for papers missing a required field.
	ErrInvalid = errors.New("invalid paper record")

	// ErrNotFound is returned when no record exists for an id.
	ErrNotFound = errors.New("paper not found")

	// ErrUnsupported is returned when a backend lacks an optional capability.
	ErrUnsupported = errors.New("operation not supported by store backend")
)

// Store is the durable table of paper records.
type Store interface {
	// Exists reports whether a record with id was previously persisted.
	Exists(ctx context.Context, id string) (bool, error)

	// Upsert writes or overwrites the full record by id. Optional fields
	// may be empty. Score fields already stored are left untouched when the
	// paper carries none.
	Upsert(ctx context.Context, p types.Paper) error

	// Get returns the record for id, or ErrNotFound.
	Get(ctx context.Context, id string) (types.Paper, error)

	// List returns all records ordered by id.
	List(ctx context.Context) ([]types.Paper, error)

	// Recent returns up to n records, most recently saved first (ties
	// broken by id descending).
	Recent(ctx context.Context, n int) ([]types.Paper, error)

	// SetScores records the scoring stage's ratings for id without
	// touching any other field.
	SetScores(ctx context.Context, id string, relevance, excitement int) error

	// Reset destructively drops all records and recreates an empty store.
	Reset(ctx context.Context) error

	// Close releases the underlying handle.
	Close() error
}

// Hit is a full-text search match.
type Hit struct {
	Paper types.Paper `json:"paper" yaml:"paper"`
	Score float64     `json:"score" yaml:"score"`
}

// Searcher is implemented by backends that index paper text for
// similarity search.
type Searcher interface {
	Search(ctx context.Context, query string, n int) ([]Hit, error)
}

// Open returns the backend selected by cfg.
func Open(cfg types.StoreConfig) (Store, error) {
	switch cfg.Backend {
	case "", types.StoreSQLite:
		if cfg.Path == "" {
			return nil, fmt.Errorf("sqlite store requires a path")
		}
		return NewSQLiteStore(cfg.Path)
	case types.StoreBleve:
		return NewBleveStore(cfg.Path)
	case types.StoreBolt:
		if cfg.Path == "" {
			return nil, fmt.Errorf("bolt store requires a path")
		}
		return NewBoltStore(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

// Search runs a similarity query when s supports it.
func Search(ctx context.Context, s Store, query string, n int) ([]Hit, error) {
	searcher, ok := s.(Searcher)
	if !ok {
		return nil, ErrUnsupported
	}
	return searcher.Search(ctx, query, n)
}

// validate enforces the fields every persisted record must carry.
func validate(p types.Paper) error {
	if p.ID == "" {
		return ErrEmptyID
	}
	if p.Title == "" {
		return fmt.Errorf("%w: %s has no title", ErrInvalid, p.ID)
	}
	if p.DateSaved.IsZero() {
		return fmt.Errorf("%w: %s has no date_saved", ErrInvalid, p.ID)
	}
	return nil
}

// mergeScores keeps previously stored scores when p carries none.
func mergeScores(p *types.Paper, old types.Paper) {
	if p.RelevanceScore == nil {
		p.RelevanceScore = old.RelevanceScore
	}
	if p.ExcitementScore == nil {
		p.ExcitementScore = old.ExcitementScore
	}
}

func intPtr(v int) *int { return &v }
