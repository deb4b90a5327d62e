package schema

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
)

// IDField is the document key holding the store-assigned identifier.
const IDField = "_id"

// Schema validates raw documents against the shape of T. The declared keys
// are T's json field names; any other key except the identifier is rejected.
type Schema[T any] struct {
	idField  string
	fields   map[string]struct{}
	validate *validator.Validate
}

// New builds the schema for the struct type T.
func New[T any]() (*Schema[T], error) {
	tp := reflect.TypeOf((*T)(nil)).Elem()
	if tp.Kind() != reflect.Struct {
		return nil, fmt.Errorf("schema type %s is not a struct", tp)
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonName)

	return &Schema[T]{
		idField:  IDField,
		fields:   declaredFields(tp),
		validate: v,
	}, nil
}

// MustNew is like New but panics on error.
func MustNew[T any]() *Schema[T] {
	s, err := New[T]()
	if err != nil {
		panic(err)
	}
	return s
}

// IDField returns the identifier key.
func (s *Schema[T]) IDField() string {
	return s.idField
}

// Fields returns the declared keys in sorted order.
func (s *Schema[T]) Fields() []string {
	names := make([]string, 0, len(s.fields))
	for name := range s.fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate canonicalizes the identifier of raw and checks it against the
// schema. On failure the error is Issues listing every problem found.
func (s *Schema[T]) Validate(raw map[string]any) (T, error) {
	var zero T
	var issues Issues

	payload := make(map[string]any, len(raw))
	for _, key := range sortedKeys(raw) {
		value := raw[key]
		_, declared := s.fields[key]
		switch {
		case key == s.idField:
			if !declared || value == nil {
				continue
			}
			payload[key] = CanonicalID(value)
		case declared:
			payload[key] = value
		default:
			issues = append(issues, Issue{Path: key, Code: CodeUnknownKey, Message: "extra fields not permitted"})
		}
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return zero, append(issues, Issue{Code: CodeInvalidType, Message: "document is not serializable"})
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return zero, append(issues, typeIssue(err))
	}

	if err := s.validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if !stderrors.As(err, &verrs) {
			return zero, append(issues, Issue{Code: CodeConstraint, Message: "document could not be checked"})
		}
		for _, fe := range verrs {
			issues = append(issues, constraintIssue(fe))
		}
	}

	if len(issues) > 0 {
		return zero, issues
	}
	return v, nil
}

// Record returns the validated mapping for raw, or false when raw does not
// satisfy the schema.
func (s *Schema[T]) Record(raw map[string]any) (map[string]any, bool) {
	v, err := s.Validate(raw)
	if err != nil {
		return nil, false
	}
	m, err := s.Dump(v)
	if err != nil {
		return nil, false
	}
	return m, true
}

// Dump serializes v to a plain mapping. Integral numbers stay int64.
func (s *Schema[T]) Dump(v T) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding record: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("decoding record: %w", err)
	}
	for key, value := range m {
		m[key] = normalizeNumbers(value)
	}
	return m, nil
}

func normalizeNumbers(value any) any {
	switch v := value.(type) {
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n
		}
		if f, err := v.Float64(); err == nil {
			return f
		}
		return v.String()
	case map[string]any:
		for key, inner := range v {
			v[key] = normalizeNumbers(inner)
		}
		return v
	case []any:
		for n, inner := range v {
			v[n] = normalizeNumbers(inner)
		}
		return v
	default:
		return v
	}
}

func typeIssue(err error) Issue {
	var terr *json.UnmarshalTypeError
	if stderrors.As(err, &terr) {
		return Issue{
			Path:    terr.Field,
			Code:    CodeInvalidType,
			Message: fmt.Sprintf("expected %s", terr.Type),
		}
	}
	return Issue{Code: CodeInvalidType, Message: "document does not match field types"}
}

func constraintIssue(fe validator.FieldError) Issue {
	if fe.Tag() == "required" {
		return Issue{Path: fe.Field(), Code: CodeRequired, Message: "field required"}
	}
	rule := fe.Tag()
	if fe.Param() != "" {
		rule += "=" + fe.Param()
	}
	return Issue{Path: fe.Field(), Code: CodeConstraint, Message: fmt.Sprintf("must satisfy %s", rule)}
}

func declaredFields(tp reflect.Type) map[string]struct{} {
	fields := make(map[string]struct{}, tp.NumField())
	for i := 0; i < tp.NumField(); i++ {
		if name := jsonName(tp.Field(i)); name != "" {
			fields[name] = struct{}{}
		}
	}
	return fields
}

func jsonName(f reflect.StructField) string {
	if !f.IsExported() {
		return ""
	}
	tag := f.Tag.Get("json")
	if tag == "-" {
		return ""
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "" {
		return f.Name
	}
	return name
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
