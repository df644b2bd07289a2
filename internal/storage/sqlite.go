package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"budgetbook/internal/core"

	_ "modernc.org/sqlite"
)

// sqliteDSNParams keeps concurrent writers from failing fast with SQLITE_BUSY.
const sqliteDSNParams = "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

// SQLiteStore keeps every record kind in a single table, one row per
// document, with the record itself stored as JSON.
type SQLiteStore struct {
	db *sql.DB
}

var _ DocumentStore = (*SQLiteStore)(nil)

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath == "" || dbPath == ":memory:" {
		return nil, errors.New("sqlite store needs a file path")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+sqliteDSNParams)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Insert writes the document in one statement, so it is either fully
// visible or absent.
func (s *SQLiteStore) Insert(ctx context.Context, doc Document) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO records (id, kind, owner_id, created_at, body) VALUES (?, ?, ?, ?, ?)`,
		doc.ID,
		string(doc.Kind),
		doc.OwnerID,
		doc.CreatedAt.UTC().Format(time.RFC3339Nano),
		string(doc.Body),
	)
	if err != nil {
		return fmt.Errorf("insert %s document: %w", doc.Kind, err)
	}
	return nil
}

func (s *SQLiteStore) FindByOwner(ctx context.Context, kind core.Kind, ownerID string) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, owner_id, created_at, body FROM records WHERE kind = ? AND owner_id = ?`,
		string(kind), ownerID)
	if err != nil {
		return nil, fmt.Errorf("query %s documents: %w", kind, err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var (
			d         Document
			k         string
			createdAt string
			body      string
		)
		if err := rows.Scan(&d.ID, &k, &d.OwnerID, &createdAt, &body); err != nil {
			return nil, fmt.Errorf("scan %s document: %w", kind, err)
		}
		d.Kind = core.Kind(k)
		d.Body = []byte(body)
		if d.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("parse created_at of %s: %w", d.ID, err)
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s documents: %w", kind, err)
	}
	return docs, nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
