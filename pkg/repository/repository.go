package repository

import (
	"context"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	log "github.com/sirupsen/logrus"

	"github.com/amaumene/gallery/pkg/collection"
	"github.com/amaumene/gallery/pkg/logging"
	"github.com/amaumene/gallery/pkg/schema"
)

const (
	TitleField = "title"
	StyleField = "style"
)

// Repository binds one collection to the schema of T. Query operations
// return only the documents that pass validation; the rest are skipped.
type Repository[T any] struct {
	coll   collection.Collection
	schema *schema.Schema[T]
	log    log.FieldLogger
}

type Option func(*options)

type options struct {
	logger log.FieldLogger
}

// WithLogger reports skipped documents at debug level.
func WithLogger(logger log.FieldLogger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func New[T any](coll collection.Collection, s *schema.Schema[T], opts ...Option) *Repository[T] {
	o := options{logger: logging.Discard()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Repository[T]{
		coll:   coll,
		schema: s,
		log:    logging.Component(o.logger, "repository"),
	}
}

// Insert stores v as a new document. v is not re-validated; store failures
// are returned unchanged.
func (r *Repository[T]) Insert(ctx context.Context, v T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	doc, err := r.schema.Dump(v)
	if err != nil {
		return fmt.Errorf("serializing record: %w", err)
	}
	delete(doc, r.schema.IDField())
	return r.coll.InsertOne(ctx, doc)
}

// DeleteAll removes every document, including those that fail validation.
func (r *Repository[T]) DeleteAll(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.coll.DeleteMany(ctx, collection.All())
}

// FindByTitle returns the documents whose title contains title, ignoring
// case. title is literal text; the empty string matches every title.
func (r *Repository[T]) FindByTitle(ctx context.Context, title string) ([]T, error) {
	return r.find(ctx, collection.ContainsFold(TitleField, title))
}

// FindByStyle returns the documents whose style equals one of
// StyleVariants(style).
func (r *Repository[T]) FindByStyle(ctx context.Context, style string) ([]T, error) {
	return r.find(ctx, collection.In(StyleField, StyleVariants(style)...))
}

// FindAll returns every document that passes validation.
func (r *Repository[T]) FindAll(ctx context.Context) ([]T, error) {
	return r.find(ctx, collection.All())
}

func (r *Repository[T]) find(ctx context.Context, f collection.Filter) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	results := []T{}
	for doc, err := range r.coll.Find(ctx, f) {
		if err != nil {
			return nil, err
		}
		v, err := r.schema.Validate(doc)
		if err != nil {
			r.logSkipped(doc, err)
			continue
		}
		results = append(results, v)
	}
	return results, nil
}

func (r *Repository[T]) logSkipped(doc collection.Document, err error) {
	entry := r.log
	if id, ok := doc[r.schema.IDField()]; ok {
		entry = entry.WithField("id", schema.CanonicalID(id))
	}
	if issues, ok := schema.AsIssues(err); ok {
		entry = entry.WithField("issues", strings.Join(issues.Codes(), ","))
	}
	entry.Debug("Skipping document that fails validation")
}

// Inspection is one stored document with the outcome of validating it.
type Inspection struct {
	ID     string
	Raw    collection.Document
	Issues schema.Issues
}

func (i Inspection) Valid() bool {
	return len(i.Issues) == 0
}

// Inspect returns every stored document with its validation issues.
func (r *Repository[T]) Inspect(ctx context.Context) ([]Inspection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []Inspection
	for doc, err := range r.coll.Find(ctx, collection.All()) {
		if err != nil {
			return nil, err
		}
		ins := Inspection{Raw: doc}
		if id, ok := doc[r.schema.IDField()]; ok {
			ins.ID = schema.CanonicalID(id)
		}
		if _, err := r.schema.Validate(doc); err != nil {
			issues, ok := schema.AsIssues(err)
			if !ok {
				issues = schema.Issues{{Code: schema.CodeInvalidType, Message: err.Error()}}
			}
			ins.Issues = issues
		}
		out = append(out, ins)
	}
	return out, nil
}

// StyleVariants returns style in lower case, capitalized (first letter
// title case, rest lower) and upper case.
func StyleVariants(style string) []string {
	return []string{
		strings.ToLower(style),
		capitalize(style),
		strings.ToUpper(style),
	}
}

func capitalize(s string) string {
	first, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToTitle(first)) + strings.ToLower(s[size:])
}
