package collection

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timshannon/bolthold"
	bolt "go.etcd.io/bbolt"

	galleryerrors "github.com/amaumene/gallery/pkg/errors"
)

func setupTestStore(t *testing.T) *bolthold.Store {
	t.Helper()
	tmpfile, err := os.CreateTemp("", "test_*.db")
	require.NoError(t, err, "creating temp file")
	tmpfile.Close()

	store, err := bolthold.Open(tmpfile.Name(), 0666, BoltOptions())
	require.NoError(t, err, "opening store")

	t.Cleanup(func() {
		store.Close()
		os.Remove(tmpfile.Name())
	})

	return store
}

func setupBoltCollection(t *testing.T, name string) *BoltCollection {
	t.Helper()
	return NewBoltCollection(setupTestStore(t), name)
}

func TestBoltCollection_SeparatesCollections(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	pieces := NewBoltCollection(store, "pieces")
	drafts := NewBoltCollection(store, "drafts")

	require.NoError(t, pieces.InsertOne(ctx, Document{"title": "in pieces"}))
	require.NoError(t, drafts.InsertOne(ctx, Document{"title": "in drafts"}))
	require.NoError(t, drafts.DeleteMany(ctx, All()))

	got, err := Collect(pieces.Find(ctx, All()))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "in pieces", got[0]["title"])

	// each collection numbers its own documents
	assert.Equal(t, uint64(1), got[0][IDField])
}

func TestBoltCollection_OrderBeyondTen(t *testing.T) {
	c := setupBoltCollection(t, "pieces")
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		require.NoError(t, c.InsertOne(ctx, Document{"n": float64(i)}))
	}

	got, err := Collect(c.Find(ctx, All()))
	require.NoError(t, err)
	require.Len(t, got, 12)
	for i, doc := range got {
		assert.Equal(t, float64(i), doc["n"], "document %d", i)
	}
}

func TestBoltCollection_CloseLeavesSharedStoreOpen(t *testing.T) {
	store := setupTestStore(t)
	c := NewBoltCollection(store, "pieces")
	require.NoError(t, c.Close(context.Background()))
	assert.NoError(t, c.InsertOne(context.Background(), Document{"title": "still open"}))
}

func TestOpenBoltCollection_LockedFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "gallery.db")

	first, err := OpenBoltCollection(path, "pieces")
	require.NoError(t, err)
	t.Cleanup(func() { first.Close(ctx) })

	start := time.Now()
	_, err = OpenBoltCollection(path, "pieces")
	require.Error(t, err)
	assert.True(t, galleryerrors.IsStoreFailure(err), "want a store failure, got %v", err)
	assert.ErrorIs(t, err, bolt.ErrTimeout)
	assert.Less(t, time.Since(start), 10*defaultLockTimeout)

	// the lock is released on close
	require.NoError(t, first.Close(ctx))
	second, err := OpenBoltCollection(path, "pieces")
	require.NoError(t, err)
	assert.NoError(t, second.Close(ctx))
}
