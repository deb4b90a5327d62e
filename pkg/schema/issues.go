package schema

import (
	stderrors "errors"
	"strings"

	"github.com/amaumene/gallery/pkg/errors"
)

// Issue codes.
const (
	CodeRequired    = "required"
	CodeInvalidType = "invalid_type"
	CodeUnknownKey  = "unknown_key"
	CodeConstraint  = "constraint"
)

// Issue is one field-level validation failure. Path is the document key,
// empty for problems with the document as a whole.
type Issue struct {
	Path    string `json:"path"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Issues is the error returned when a document fails validation.
type Issues []Issue

func (is Issues) Error() string {
	msgs := make([]string, 0, len(is))
	for _, i := range is {
		if i.Path == "" {
			msgs = append(msgs, i.Message)
			continue
		}
		msgs = append(msgs, i.Path+": "+i.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (is Issues) Unwrap() error {
	return errors.ErrInvalidDocument
}

// Codes returns the issue codes in order.
func (is Issues) Codes() []string {
	codes := make([]string, len(is))
	for n, i := range is {
		codes[n] = i.Code
	}
	return codes
}

// AsIssues extracts the Issues carried by err.
func AsIssues(err error) (Issues, bool) {
	var is Issues
	if stderrors.As(err, &is) {
		return is, true
	}
	return nil, false
}
