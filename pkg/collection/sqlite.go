package collection

import (
	"context"
	"database/sql"
	"fmt"
	"iter"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/amaumene/gallery/pkg/errors"
)

// UndecodableField carries the stored text of a row that is not a JSON
// object, so such rows still surface as (invalid) documents.
const UndecodableField = "_undecodable"

// SqliteCollection stores one named collection in a SQLite database.
//
// Table:
//
//	documents(id, collection, data)  id INTEGER PRIMARY KEY AUTOINCREMENT
//
// Documents are JSON text; filters are evaluated in process while the rows
// stream, so a Find never holds more than one decoded row.
type SqliteCollection struct {
	db   *sql.DB
	name string
}

func OpenSqliteCollection(dbPath, name string) (*SqliteCollection, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, errors.NewStoreError("sqlite", "open", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, errors.NewStoreError("sqlite", "open", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS documents (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		collection TEXT NOT NULL,
		data TEXT NOT NULL
	)`); err != nil {
		db.Close()
		return nil, errors.NewStoreError("sqlite", "open", err)
	}
	if _, err := db.Exec("CREATE INDEX IF NOT EXISTS documents_collection ON documents (collection, id)"); err != nil {
		db.Close()
		return nil, errors.NewStoreError("sqlite", "open", err)
	}
	return &SqliteCollection{db: db, name: name}, nil
}

func (s *SqliteCollection) InsertOne(ctx context.Context, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	fields := make(Document, len(doc))
	for k, v := range doc {
		if k != IDField {
			fields[k] = v
		}
	}
	b, err := json.Marshal(fields)
	if err != nil {
		return errors.NewStoreError("sqlite", "insert", fmt.Errorf("encoding document: %w", err))
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO documents (collection, data) VALUES (?, ?)",
		s.name, string(b),
	)
	return errors.NewStoreError("sqlite", "insert", err)
}

func (s *SqliteCollection) DeleteMany(ctx context.Context, f Filter) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if len(f.Conditions) == 0 {
		_, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE collection = ?", s.name)
		return errors.NewStoreError("sqlite", "delete", err)
	}

	var ids []int64
	for doc, err := range s.Find(ctx, f) {
		if err != nil {
			return err
		}
		ids = append(ids, doc[IDField].(int64))
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewStoreError("sqlite", "delete", err)
	}
	defer tx.Rollback()

	for _, id := range ids {
		if _, err := tx.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id); err != nil {
			return errors.NewStoreError("sqlite", "delete", err)
		}
	}
	return errors.NewStoreError("sqlite", "delete", tx.Commit())
}

func (s *SqliteCollection) Find(ctx context.Context, f Filter) iter.Seq2[Document, error] {
	return func(yield func(Document, error) bool) {
		if err := ctx.Err(); err != nil {
			yield(nil, err)
			return
		}

		rows, err := s.db.QueryContext(ctx,
			"SELECT id, data FROM documents WHERE collection = ? ORDER BY id", s.name)
		if err != nil {
			yield(nil, errors.NewStoreError("sqlite", "find", err))
			return
		}
		defer rows.Close()

		match := f.Matcher()
		for rows.Next() {
			var id int64
			var raw string
			if err := rows.Scan(&id, &raw); err != nil {
				yield(nil, errors.NewStoreError("sqlite", "find", err))
				return
			}
			var doc Document
			if err := json.Unmarshal([]byte(raw), &doc); err != nil || doc == nil {
				doc = Document{UndecodableField: raw}
			}
			if !match(doc) {
				continue
			}
			doc[IDField] = id
			if !yield(doc, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(nil, errors.NewStoreError("sqlite", "find", err))
		}
	}
}

func (s *SqliteCollection) Close(ctx context.Context) error {
	return errors.NewStoreError("sqlite", "close", s.db.Close())
}
