// Package errors defines the sentinel errors and the StoreError wrapper shared
// by the gallery packages.
//
// Backend failures are wrapped in StoreError so callers can tell which backend
// and operation failed while errors.Is still reaches the driver error.
package errors
