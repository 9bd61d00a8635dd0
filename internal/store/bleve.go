// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/blevesearch/bleve"
	"github.com/blevesearch/bleve/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/analysis/lang/en"
	"github.com/blevesearch/bleve/mapping"
	"github.com/blevesearch/bleve/search/query"

	"github.com/pdiddy/papercrawl/pkg/types"
)

// rawField holds the full JSON record; it is stored but not indexed.
const rawField = "raw"

// BleveStore keeps paper records in a bleve index, which doubles as the
// similarity search index over title, abstract, and authors.
type BleveStore struct {
	mu    sync.Mutex
	path  string
	index bleve.Index
}

// NewBleveStore opens the index at path, creating it when missing. An
// empty path builds an in-memory index.
func NewBleveStore(path string) (*BleveStore, error) {
	index, err := openIndex(path)
	if err != nil {
		return nil, err
	}
	return &BleveStore{path: path, index: index}, nil
}

func openIndex(path string) (bleve.Index, error) {
	if path == "" {
		return bleve.NewMemOnly(paperMapping())
	}
	index, err := bleve.Open(path)
	if err == bleve.ErrorIndexPathDoesNotExist {
		index, err = bleve.New(path, paperMapping())
	}
	if err != nil {
		return nil, fmt.Errorf("opening index %s: %w", path, err)
	}
	return index, nil
}

func paperMapping() mapping.IndexMapping {
	keywordField := bleve.NewTextFieldMapping()
	keywordField.Analyzer = keyword.Name
	keywordField.IncludeInAll = false

	textField := bleve.NewTextFieldMapping()
	textField.Analyzer = en.AnalyzerName
	textField.Store = false

	raw := bleve.NewTextFieldMapping()
	raw.Index = false
	raw.IncludeInAll = false
	raw.DocValues = false

	dm := bleve.NewDocumentMapping()
	for _, f := range []string{"id", "date", "date_saved", "source"} {
		dm.AddFieldMappingsAt(f, keywordField)
	}
	for _, f := range []string{"title", "abstract", "authors"} {
		dm.AddFieldMappingsAt(f, textField)
	}
	dm.AddFieldMappingsAt(rawField, raw)

	m := bleve.NewIndexMapping()
	m.DefaultMapping = dm
	m.DefaultAnalyzer = en.AnalyzerName
	return m
}

func paperDocument(p types.Paper) (map[string]interface{}, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshaling paper %s: %w", p.ID, err)
	}
	return map[string]interface{}{
		"id":         p.ID,
		"title":      p.Title,
		"abstract":   p.Abstract,
		"authors":    p.AuthorList(),
		"date":       p.Date,
		"date_saved": p.DateSaved.Format(types.DateLayout),
		"source":     string(p.Source),
		rawField:     string(data),
	}, nil
}

// Close closes the index.
func (s *BleveStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Close()
}

// Exists reports whether id has a document.
func (s *BleveStore) Exists(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, found, err := s.get(ctx, id)
	return found, err
}

// Upsert indexes p, replacing any earlier document with the same id.
func (s *BleveStore) Upsert(ctx context.Context, p types.Paper) error {
	if err := validate(p); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	old, found, err := s.get(ctx, p.ID)
	if err != nil {
		return err
	}
	if found {
		mergeScores(&p, old)
	}
	return s.put(p)
}

// Get returns the document for id.
func (s *BleveStore) Get(ctx context.Context, id string) (types.Paper, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, found, err := s.get(ctx, id)
	if err != nil {
		return types.Paper{}, err
	}
	if !found {
		return types.Paper{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return p, nil
}

// List returns every document ordered by id.
func (s *BleveStore) List(ctx context.Context) ([]types.Paper, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count, err := s.index.DocCount()
	if err != nil {
		return nil, fmt.Errorf("counting documents: %w", err)
	}
	if count == 0 {
		return nil, nil
	}
	return s.search(ctx, query.NewMatchAllQuery(), int(count), "_id")
}

// Recent returns the n most recently saved documents.
func (s *BleveStore) Recent(ctx context.Context, n int) ([]types.Paper, error) {
	if n <= 0 {
		return nil, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.search(ctx, query.NewMatchAllQuery(), n, "-date_saved", "-_id")
}

// SetScores rewrites the document for id with the given scores.
func (s *BleveStore) SetScores(ctx context.Context, id string, relevance, excitement int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, found, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	p.RelevanceScore = intPtr(relevance)
	p.ExcitementScore = intPtr(excitement)
	return s.put(p)
}

// Reset closes the index, removes it from disk, and recreates it empty.
func (s *BleveStore) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.index.Close(); err != nil {
		return fmt.Errorf("closing index: %w", err)
	}
	if s.path != "" {
		if err := os.RemoveAll(s.path); err != nil {
			return fmt.Errorf("removing index %s: %w", s.path, err)
		}
	}
	index, err := openIndex(s.path)
	if err != nil {
		return err
	}
	s.index = index
	return nil
}

// Search runs a match query against title, abstract, and authors and
// returns hits by descending relevance.
func (s *BleveStore) Search(ctx context.Context, q string, n int) ([]Hit, error) {
	if n <= 0 {
		n = 10
	}

	var fields []query.Query
	for _, f := range []string{"title", "abstract", "authors"} {
		mq := query.NewMatchQuery(q)
		mq.SetField(f)
		fields = append(fields, mq)
	}

	req := bleve.NewSearchRequestOptions(query.NewDisjunctionQuery(fields), n, 0, false)
	req.Fields = []string{rawField}

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("searching %q: %w", q, err)
	}

	hits := make([]Hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		p, err := decodeRaw(h.Fields[rawField])
		if err != nil {
			return nil, fmt.Errorf("decoding %s: %w", h.ID, err)
		}
		hits = append(hits, Hit{Paper: p, Score: h.Score})
	}
	return hits, nil
}

func (s *BleveStore) put(p types.Paper) error {
	doc, err := paperDocument(p)
	if err != nil {
		return err
	}
	if err := s.index.Index(p.ID, doc); err != nil {
		return fmt.Errorf("indexing paper %s: %w", p.ID, err)
	}
	return nil
}

func (s *BleveStore) get(ctx context.Context, id string) (types.Paper, bool, error) {
	papers, err := s.search(ctx, query.NewDocIDQuery([]string{id}), 1)
	if err != nil {
		return types.Paper{}, false, err
	}
	if len(papers) == 0 {
		return types.Paper{}, false, nil
	}
	return papers[0], true, nil
}

func (s *BleveStore) search(ctx context.Context, q query.Query, size int, sortBy ...string) ([]types.Paper, error) {
	req := bleve.NewSearchRequestOptions(q, size, 0, false)
	req.Fields = []string{rawField}
	if len(sortBy) > 0 {
		req.SortBy(sortBy)
	}

	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("querying index: %w", err)
	}

	papers := make([]types.Paper, 0, len(res.Hits))
	for _, h := range res.Hits {
		p, err := decodeRaw(h.Fields[rawField])
		if err != nil {
			return nil, fmt.Errorf("decoding %s: %w", h.ID, err)
		}
		papers = append(papers, p)
	}
	return papers, nil
}

func decodeRaw(v interface{}) (types.Paper, error) {
	raw, ok := v.(string)
	if !ok {
		return types.Paper{}, fmt.Errorf("document has no stored record")
	}
	var p types.Paper
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return types.Paper{}, err
	}
	return p, nil
}
