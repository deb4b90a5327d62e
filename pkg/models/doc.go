// Package models defines the record types stored in the gallery.
//
// Field tags carry both the document keys (json) and the constraints checked
// by the schema validator (validate). The _id field holds the store-assigned
// identifier in its canonical string form.
package models
