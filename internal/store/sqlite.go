// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/papercrawl/pkg/types"
)

const createPapersTable = `CREATE TABLE IF NOT EXISTS papers (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	authors TEXT,
	abstract TEXT,
	date TEXT,
	date_saved DATE NOT NULL,
	pdf_path TEXT,
	pdf_url TEXT,
	source TEXT,
	source_url TEXT,
	relevance_score INTEGER,
	excitement_score INTEGER
)`

// optionalColumns are added to tables created by older versions that only
// carried id, title, authors, abstract, date_saved, pdf_path and pdf_url.
var optionalColumns = map[string]string{
	"date":             "TEXT",
	"source":           "TEXT",
	"source_url":       "TEXT",
	"relevance_score":  "INTEGER",
	"excitement_score": "INTEGER",
}

const paperColumns = `id, title, authors, abstract, date, date_saved, pdf_path, pdf_url,
	source, source_url, relevance_score, excitement_score`

// SQLiteStore keeps paper records in a single SQLite table.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database at path and ensures the
// papers table exists.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := newSQLiteStore(db)
	if err := s.createSchema(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

func newSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Close releases the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) createSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createPapersTable); err != nil {
		return fmt.Errorf("executing schema statement: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `PRAGMA table_info(papers)`)
	if err != nil {
		return fmt.Errorf("reading table info: %w", err)
	}
	existing := make(map[string]bool)
	for rows.Next() {
		var (
			cid     int
			name    string
			colType string
			notNull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dflt, &pk); err != nil {
			rows.Close()
			return fmt.Errorf("scanning table info: %w", err)
		}
		existing[name] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for name, colType := range optionalColumns {
		if existing[name] {
			continue
		}
		stmt := fmt.Sprintf(`ALTER TABLE papers ADD COLUMN %s %s`, name, colType)
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("adding column %s: %w", name, err)
		}
	}
	return nil
}

// Exists reports whether id has a row.
func (s *SQLiteStore) Exists(ctx context.Context, id string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM papers WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking paper %s: %w", id, err)
	}
	return true, nil
}

// Upsert writes p inside a transaction so a failed write leaves no partial row.
func (s *SQLiteStore) Upsert(ctx context.Context, p types.Paper) error {
	if err := validate(p); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	authorsJSON, err := json.Marshal(p.Authors)
	if err != nil {
		return fmt.Errorf("marshaling authors: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO papers (`+paperColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			title=excluded.title, authors=excluded.authors, abstract=excluded.abstract,
			date=excluded.date, date_saved=excluded.date_saved, pdf_path=excluded.pdf_path,
			pdf_url=excluded.pdf_url, source=excluded.source, source_url=excluded.source_url,
			relevance_score=COALESCE(excluded.relevance_score, papers.relevance_score),
			excitement_score=COALESCE(excluded.excitement_score, papers.excitement_score)`,
		p.ID, p.Title, string(authorsJSON), nullString(p.Abstract), nullString(p.Date),
		p.DateSaved.Format(types.DateLayout), nullString(p.PDFPath), nullString(p.PDFURL),
		nullString(string(p.Source)), nullString(p.SourceURL),
		nullInt(p.RelevanceScore), nullInt(p.ExcitementScore),
	)
	if err != nil {
		return fmt.Errorf("upserting paper %s: %w", p.ID, err)
	}

	return tx.Commit()
}

// Get returns the row for id.
func (s *SQLiteStore) Get(ctx context.Context, id string) (types.Paper, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+paperColumns+` FROM papers WHERE id = ?`, id)
	p, err := scanPaper(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Paper{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return types.Paper{}, fmt.Errorf("reading paper %s: %w", id, err)
	}
	return p, nil
}

// List returns every row ordered by id.
func (s *SQLiteStore) List(ctx context.Context) ([]types.Paper, error) {
	return s.query(ctx, `SELECT `+paperColumns+` FROM papers ORDER BY id`)
}

// Recent returns the n most recently saved rows.
func (s *SQLiteStore) Recent(ctx context.Context, n int) ([]types.Paper, error) {
	if n <= 0 {
		return nil, nil
	}
	return s.query(ctx,
		`SELECT `+paperColumns+` FROM papers ORDER BY date_saved DESC, id DESC LIMIT ?`, n)
}

// SetScores updates only the score columns of id.
func (s *SQLiteStore) SetScores(ctx context.Context, id string, relevance, excitement int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE papers SET relevance_score = ?, excitement_score = ? WHERE id = ?`,
		relevance, excitement, id)
	if err != nil {
		return fmt.Errorf("scoring paper %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("scoring paper %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// Reset drops and recreates the papers table in one transaction.
func (s *SQLiteStore) Reset(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS papers`); err != nil {
		return fmt.Errorf("dropping papers table: %w", err)
	}
	if _, err := tx.ExecContext(ctx, createPapersTable); err != nil {
		return fmt.Errorf("creating papers table: %w", err)
	}
	return tx.Commit()
}

func (s *SQLiteStore) query(ctx context.Context, q string, args ...any) ([]types.Paper, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying papers: %w", err)
	}
	defer rows.Close()

	var papers []types.Paper
	for rows.Next() {
		p, err := scanPaper(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning paper: %w", err)
		}
		papers = append(papers, p)
	}
	return papers, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPaper(row rowScanner) (types.Paper, error) {
	var (
		p          types.Paper
		title      sql.NullString
		authors    sql.NullString
		abstract   sql.NullString
		date       sql.NullString
		dateSaved  sql.NullString
		pdfPath    sql.NullString
		pdfURL     sql.NullString
		source     sql.NullString
		sourceURL  sql.NullString
		relevance  sql.NullInt64
		excitement sql.NullInt64
	)
	if err := row.Scan(&p.ID, &title, &authors, &abstract, &date, &dateSaved,
		&pdfPath, &pdfURL, &source, &sourceURL, &relevance, &excitement); err != nil {
		return types.Paper{}, err
	}

	p.Title = title.String
	p.Authors = decodeAuthors(authors.String)
	p.Abstract = abstract.String
	p.Date = date.String
	p.PDFPath = pdfPath.String
	p.PDFURL = pdfURL.String
	p.Source = types.Source(source.String)
	p.SourceURL = sourceURL.String
	p.DateSaved = parseDateSaved(dateSaved.String)
	if relevance.Valid {
		p.RelevanceScore = intPtr(int(relevance.Int64))
	}
	if excitement.Valid {
		p.ExcitementScore = intPtr(int(excitement.Int64))
	}
	return p, nil
}

// decodeAuthors reads the JSON list written by Upsert, falling back to the
// freeform "A, B" text stored by older versions.
func decodeAuthors(s string) []string {
	if strings.HasPrefix(s, "[") {
		var authors []string
		if err := json.Unmarshal([]byte(s), &authors); err == nil {
			return authors
		}
	}
	return types.SplitAuthors(s)
}

// parseDateSaved accepts the date layout and full timestamps, which the
// sqlite3 driver returns for DATE columns.
func parseDateSaved(s string) time.Time {
	for _, layout := range []string{types.DateLayout, time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}
