package collection

import (
	"context"
	"fmt"
	"iter"

	"github.com/amaumene/gallery/pkg/errors"
)

// IDField is the key under which every backend exposes its native identifier.
const IDField = "_id"

// Document is a raw stored document.
type Document map[string]any

// Collection is a handle over one set of documents.
type Collection interface {
	// InsertOne stores doc under a new store-generated identifier.
	InsertOne(ctx context.Context, doc Document) error

	// DeleteMany removes every document matching f.
	DeleteMany(ctx context.Context, f Filter) error

	// Find lazily yields the documents matching f in the store's natural
	// order. A store failure is yielded once as the error and ends the
	// sequence.
	Find(ctx context.Context, f Filter) iter.Seq2[Document, error]

	Close(ctx context.Context) error
}

// Options selects and locates a backend.
type Options struct {
	Backend    string
	BoltPath   string
	SqlitePath string
	URL        string
	Database   string
	Collection string
}

// Open creates a Collection for the named backend.
//
// Supported backends:
//
//	"memory" - in-memory (ephemeral, for testing)
//	"bolt"   - bolthold database file at BoltPath (default)
//	"sqlite" - SQLite database file at SqlitePath
//	"mongo"  - MongoDB at URL
func Open(ctx context.Context, opts Options) (Collection, error) {
	switch opts.Backend {
	case "memory":
		return NewMemoryCollection(), nil
	case "bolt", "":
		if opts.BoltPath == "" {
			return nil, fmt.Errorf("bolt backend: database path not set")
		}
		return OpenBoltCollection(opts.BoltPath, opts.Collection)
	case "sqlite":
		if opts.SqlitePath == "" {
			return nil, fmt.Errorf("sqlite backend: database path not set")
		}
		return OpenSqliteCollection(opts.SqlitePath, opts.Collection)
	case "mongo":
		return ConnectMongoCollection(ctx, opts.URL, opts.Database, opts.Collection)
	default:
		return nil, fmt.Errorf("%w: %q (supported: memory, bolt, sqlite, mongo)", errors.ErrUnknownBackend, opts.Backend)
	}
}

// Collect drains a Find sequence.
func Collect(seq iter.Seq2[Document, error]) ([]Document, error) {
	var docs []Document
	for doc, err := range seq {
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
