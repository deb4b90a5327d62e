package collection

import (
	"context"
	"iter"
	"sync"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/amaumene/gallery/pkg/errors"
)

type memoryEntry struct {
	id  uuid.UUID
	doc Document
}

// MemoryCollection keeps documents in memory. Data is lost on restart.
// Safe for concurrent use.
type MemoryCollection struct {
	mu      sync.RWMutex
	entries []memoryEntry
}

func NewMemoryCollection() *MemoryCollection {
	return &MemoryCollection{}
}

// deepCopy returns a deep copy of a document by round-tripping through JSON.
// The identifier key is dropped.
func deepCopy(src Document) (Document, error) {
	b, err := json.Marshal(src)
	if err != nil {
		return nil, err
	}
	var dst Document
	if err := json.Unmarshal(b, &dst); err != nil {
		return nil, err
	}
	delete(dst, IDField)
	return dst, nil
}

func (m *MemoryCollection) InsertOne(ctx context.Context, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	cp, err := deepCopy(doc)
	if err != nil {
		return errors.NewStoreError("memory", "insert", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, memoryEntry{id: uuid.New(), doc: cp})
	return nil
}

func (m *MemoryCollection) DeleteMany(ctx context.Context, f Filter) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	match := f.Matcher()
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.entries[:0]
	for _, e := range m.entries {
		if !match(e.doc) {
			kept = append(kept, e)
		}
	}
	clear(m.entries[len(kept):])
	m.entries = kept
	return nil
}

// Find works on a snapshot taken when iteration starts.
func (m *MemoryCollection) Find(ctx context.Context, f Filter) iter.Seq2[Document, error] {
	return func(yield func(Document, error) bool) {
		if err := ctx.Err(); err != nil {
			yield(nil, err)
			return
		}

		match := f.Matcher()
		m.mu.RLock()
		var matched []memoryEntry
		for _, e := range m.entries {
			if match(e.doc) {
				matched = append(matched, e)
			}
		}
		m.mu.RUnlock()

		for _, e := range matched {
			doc, err := deepCopy(e.doc)
			if err != nil {
				yield(nil, errors.NewStoreError("memory", "find", err))
				return
			}
			doc[IDField] = e.id
			if !yield(doc, nil) {
				return
			}
		}
	}
}

// Len returns the number of stored documents, valid or not.
func (m *MemoryCollection) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func (m *MemoryCollection) Close(ctx context.Context) error {
	return nil
}
