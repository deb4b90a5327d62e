package collection

import (
	"cmp"
	"context"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/goccy/go-json"
	"github.com/timshannon/bolthold"
	bolt "go.etcd.io/bbolt"

	"github.com/amaumene/gallery/pkg/errors"
)

const (
	defaultDBFilePermissions = 0666
	// another process holding the file lock makes Open fail after this long
	defaultLockTimeout = time.Second
)

// boltDocument is the stored form. All collections share one bucket, so the
// record key is prefixed with the collection name; ID is kept in the value
// for ordering.
type boltDocument struct {
	ID         uint64
	Collection string
	Fields     Document
}

// BoltCollection stores documents of one named collection in a bolthold
// store. Documents get uint64 identifiers from a per-collection sequence.
type BoltCollection struct {
	store *bolthold.Store
	name  string
	owned bool
}

// OpenBoltCollection opens (or creates) the bolthold database at path.
func OpenBoltCollection(path, name string) (*BoltCollection, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	store, err := bolthold.Open(path, defaultDBFilePermissions, BoltOptions())
	if err != nil {
		return nil, errors.NewStoreError("bolt", "open", err)
	}
	c := NewBoltCollection(store, name)
	c.owned = true
	return c, nil
}

// BoltOptions are the store options documents must be written with.
func BoltOptions() *bolthold.Options {
	return &bolthold.Options{
		Encoder: json.Marshal,
		Decoder: json.Unmarshal,
		Options: &bolt.Options{Timeout: defaultLockTimeout},
	}
}

// NewBoltCollection uses an already open store, which must have been opened
// with BoltOptions. Close leaves the store open.
func NewBoltCollection(store *bolthold.Store, name string) *BoltCollection {
	return &BoltCollection{store: store, name: name}
}

func (c *BoltCollection) sequenceBucket() []byte {
	return []byte("gallery_seq_" + c.name)
}

func (c *BoltCollection) key(id uint64) string {
	return fmt.Sprintf("%s/%020d", c.name, id)
}

func (c *BoltCollection) InsertOne(ctx context.Context, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	fields := make(Document, len(doc))
	for k, v := range doc {
		if k != IDField {
			fields[k] = v
		}
	}

	err := c.store.Bolt().Update(func(tx *bolt.Tx) error {
		seq, err := tx.CreateBucketIfNotExists(c.sequenceBucket())
		if err != nil {
			return err
		}
		id, err := seq.NextSequence()
		if err != nil {
			return err
		}
		return c.store.TxInsert(tx, c.key(id), &boltDocument{
			ID:         id,
			Collection: c.name,
			Fields:     fields,
		})
	})
	if err != nil {
		return errors.NewStoreError("bolt", "insert", fmt.Errorf("inserting document: %w", err))
	}
	return nil
}

func (c *BoltCollection) query(f Filter) *bolthold.Query {
	query := bolthold.Where("Collection").Eq(c.name)
	if len(f.Conditions) == 0 {
		return query
	}

	match := f.Matcher()
	return query.And("Fields").MatchFunc(func(ra *bolthold.RecordAccess) (bool, error) {
		fields, ok := ra.Field().(Document)
		if !ok {
			return false, fmt.Errorf("database integrity error: invalid field type %T expected collection.Document", ra.Field())
		}
		return match(fields), nil
	})
}

func (c *BoltCollection) DeleteMany(ctx context.Context, f Filter) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := c.store.DeleteMatching(&boltDocument{}, c.query(f)); err != nil {
		return errors.NewStoreError("bolt", "delete", fmt.Errorf("deleting documents: %w", err))
	}
	return nil
}

func (c *BoltCollection) Find(ctx context.Context, f Filter) iter.Seq2[Document, error] {
	return func(yield func(Document, error) bool) {
		if err := ctx.Err(); err != nil {
			yield(nil, err)
			return
		}

		var records []boltDocument
		if err := c.store.Find(&records, c.query(f)); err != nil {
			yield(nil, errors.NewStoreError("bolt", "find", fmt.Errorf("finding documents: %w", err)))
			return
		}
		slices.SortFunc(records, func(a, b boltDocument) int {
			return cmp.Compare(a.ID, b.ID)
		})

		for _, r := range records {
			doc := make(Document, len(r.Fields)+1)
			for k, v := range r.Fields {
				doc[k] = v
			}
			doc[IDField] = r.ID
			if !yield(doc, nil) {
				return
			}
		}
	}
}

func (c *BoltCollection) Close(ctx context.Context) error {
	if !c.owned {
		return nil
	}
	if err := c.store.Close(); err != nil {
		return errors.NewStoreError("bolt", "close", fmt.Errorf("closing store: %w", err))
	}
	return nil
}
