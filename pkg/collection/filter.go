package collection

import (
	"regexp"
	"slices"
)

type Op int

const (
	// OpContainsFold matches string fields containing Value, ignoring case.
	// Value is literal text, not a pattern.
	OpContainsFold Op = iota + 1
	// OpIn matches string fields equal to one of Values.
	OpIn
)

// Condition is a predicate on one field. A document without the field, or
// with a non-string value in it, never matches.
type Condition struct {
	Field  string
	Op     Op
	Value  string
	Values []string
}

// Filter is a conjunction of conditions. The zero Filter matches everything.
type Filter struct {
	Conditions []Condition
}

func All() Filter {
	return Filter{}
}

func ContainsFold(field, value string) Filter {
	return Filter{Conditions: []Condition{{Field: field, Op: OpContainsFold, Value: value}}}
}

func In(field string, values ...string) Filter {
	return Filter{Conditions: []Condition{{Field: field, Op: OpIn, Values: values}}}
}

// And returns a filter requiring both f and other.
func (f Filter) And(other Filter) Filter {
	conds := make([]Condition, 0, len(f.Conditions)+len(other.Conditions))
	conds = append(conds, f.Conditions...)
	conds = append(conds, other.Conditions...)
	return Filter{Conditions: conds}
}

// Matcher compiles f for repeated evaluation in process.
func (f Filter) Matcher() func(Document) bool {
	preds := make([]func(Document) bool, 0, len(f.Conditions))
	for _, c := range f.Conditions {
		preds = append(preds, c.matcher())
	}
	return func(doc Document) bool {
		for _, p := range preds {
			if !p(doc) {
				return false
			}
		}
		return true
	}
}

// Match reports whether doc satisfies f.
func (f Filter) Match(doc Document) bool {
	return f.Matcher()(doc)
}

func (c Condition) matcher() func(Document) bool {
	switch c.Op {
	case OpContainsFold:
		re := ContainsFoldPattern(c.Value)
		return func(doc Document) bool {
			s, ok := stringField(doc, c.Field)
			return ok && re.MatchString(s)
		}
	case OpIn:
		return func(doc Document) bool {
			s, ok := stringField(doc, c.Field)
			return ok && slices.Contains(c.Values, s)
		}
	default:
		return func(Document) bool { return false }
	}
}

// ContainsFoldPattern is the case-insensitive literal substring pattern for
// value. The empty value matches every string.
func ContainsFoldPattern(value string) *regexp.Regexp {
	return regexp.MustCompile("(?i)" + regexp.QuoteMeta(value))
}

func stringField(doc Document, field string) (string, bool) {
	v, ok := doc[field]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}
