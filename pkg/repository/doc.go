// Package repository provides the data access layer for the gallery.
//
// Repository is generic over a record type T and binds a collection handle
// to the schema of T. It exposes:
//   - Insert and DeleteAll, which pass store failures through unchanged
//   - FindByTitle: case-insensitive literal substring match on title
//   - FindByStyle: exact match on style against lower, capitalized and upper case variants
//
// Documents that fail validation stay in the store but are invisible to every
// query; DeleteAll still removes them. The repository holds no locks and does
// not retry; concurrency control is the store's.
package repository
