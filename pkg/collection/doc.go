// Package collection provides the document collection handles the gallery
// repository reads and writes through.
//
// A Collection exposes three operations: insert one document, delete the
// documents matching a Filter, and lazily iterate the documents matching a
// Filter. Backends:
//   - memory: ephemeral, uuid identifiers
//   - bolt: bolthold/bbolt file, uint64 sequence identifiers
//   - sqlite: SQLite file, rowid identifiers
//   - mongo: MongoDB server, ObjectID identifiers
//
// Every backend exposes its native identifier under the _id key; callers
// canonicalize it. Store failures are wrapped in errors.StoreError.
package collection
