package schema

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	galleryerrors "github.com/amaumene/gallery/pkg/errors"
)

type artwork struct {
	ID     string `json:"_id,omitempty"`
	Title  string `json:"title" validate:"required"`
	Style  string `json:"style" validate:"required"`
	Artist string `json:"artist,omitempty"`
	Year   int    `json:"year,omitempty" validate:"omitempty,min=0"`
}

type noID struct {
	Title string `json:"title" validate:"required"`
}

type hexID [2]byte

func (h hexID) Hex() string    { return "0a0b" }
func (h hexID) String() string { return "hexID(0a0b)" }

func TestNew_RejectsNonStruct(t *testing.T) {
	_, err := New[int]()
	assert.Error(t, err)
	assert.Panics(t, func() { MustNew[string]() })
}

func TestSchema_Fields(t *testing.T) {
	s := MustNew[artwork]()
	assert.Equal(t, []string{"_id", "artist", "style", "title", "year"}, s.Fields())
	assert.Equal(t, IDField, s.IDField())
}

func TestSchema_Validate_Success(t *testing.T) {
	s := MustNew[artwork]()

	got, err := s.Validate(map[string]any{
		"_id":    uint64(7),
		"title":  "Impression, Sunrise",
		"style":  "Impressionism",
		"artist": "Claude Monet",
		"year":   float64(1872),
	})
	require.NoError(t, err)
	assert.Equal(t, artwork{
		ID:     "7",
		Title:  "Impression, Sunrise",
		Style:  "Impressionism",
		Artist: "Claude Monet",
		Year:   1872,
	}, got)
}

func TestSchema_Validate_Failures(t *testing.T) {
	s := MustNew[artwork]()

	tests := []struct {
		name     string
		doc      map[string]any
		wantCode string
		wantPath string
	}{
		{
			name:     "missing required field",
			doc:      map[string]any{"title": "Guernica"},
			wantCode: CodeRequired,
			wantPath: "style",
		},
		{
			name:     "empty required field",
			doc:      map[string]any{"title": "", "style": "Cubism"},
			wantCode: CodeRequired,
			wantPath: "title",
		},
		{
			name:     "extra field",
			doc:      map[string]any{"title": "Guernica", "style": "Cubism", "price": 10},
			wantCode: CodeUnknownKey,
			wantPath: "price",
		},
		{
			name:     "wrong type",
			doc:      map[string]any{"title": 1937, "style": "Cubism"},
			wantCode: CodeInvalidType,
		},
		{
			name:     "constraint",
			doc:      map[string]any{"title": "Guernica", "style": "Cubism", "year": -5},
			wantCode: CodeConstraint,
			wantPath: "year",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Validate(tt.doc)
			require.Error(t, err)
			assert.Equal(t, artwork{}, got)
			assert.True(t, errors.Is(err, galleryerrors.ErrInvalidDocument))

			issues, ok := AsIssues(err)
			require.True(t, ok)
			assert.Contains(t, issues.Codes(), tt.wantCode)
			if tt.wantPath != "" {
				var paths []string
				for _, i := range issues {
					paths = append(paths, i.Path)
				}
				assert.Contains(t, paths, tt.wantPath)
			}
		})
	}
}

func TestSchema_Validate_ReportsAllIssues(t *testing.T) {
	s := MustNew[artwork]()

	_, err := s.Validate(map[string]any{"extra": true, "title": "Only title"})
	issues, ok := AsIssues(err)
	require.True(t, ok)
	assert.ElementsMatch(t, []string{CodeUnknownKey, CodeRequired}, issues.Codes())
}

func TestSchema_Validate_DoesNotMutateInput(t *testing.T) {
	s := MustNew[artwork]()
	doc := map[string]any{"_id": int64(3), "title": "Olympia", "style": "Realism"}

	_, err := s.Validate(doc)
	require.NoError(t, err)
	assert.Equal(t, int64(3), doc["_id"])
}

func TestSchema_Validate_IDNotDeclared(t *testing.T) {
	s := MustNew[noID]()

	got, err := s.Validate(map[string]any{"_id": uint64(1), "title": "The Kiss"})
	require.NoError(t, err)
	assert.Equal(t, "The Kiss", got.Title)
}

func TestSchema_Record(t *testing.T) {
	s := MustNew[artwork]()

	rec, ok := s.Record(map[string]any{"_id": hexID{}, "title": "Nighthawks", "style": "realism", "year": 1942})
	require.True(t, ok)
	assert.Equal(t, map[string]any{
		"_id":   "0a0b",
		"title": "Nighthawks",
		"style": "realism",
		"year":  int64(1942),
	}, rec)

	_, ok = s.Record(map[string]any{"title": "Nighthawks"})
	assert.False(t, ok)
}

func TestSchema_Dump(t *testing.T) {
	s := MustNew[artwork]()

	m, err := s.Dump(artwork{Title: "The Scream", Style: "Expressionism", Year: 1893})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"title": "The Scream",
		"style": "Expressionism",
		"year":  int64(1893),
	}, m)

	back, err := s.Validate(m)
	require.NoError(t, err)
	assert.Equal(t, artwork{Title: "The Scream", Style: "Expressionism", Year: 1893}, back)
}

func TestCanonicalID(t *testing.T) {
	id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

	tests := []struct {
		name string
		id   any
		want string
	}{
		{name: "string", id: "abc", want: "abc"},
		{name: "hex before stringer", id: hexID{}, want: "0a0b"},
		{name: "uuid", id: id, want: "6ba7b810-9dad-11d1-80b4-00c04fd430c8"},
		{name: "uint64", id: uint64(18446744073709551615), want: "18446744073709551615"},
		{name: "int64", id: int64(-12), want: "-12"},
		{name: "int32", id: int32(12), want: "12"},
		{name: "integral float", id: float64(42), want: "42"},
		{name: "fractional float", id: 1.5, want: "1.5"},
		{name: "bytes", id: []byte{0xde, 0xad}, want: "dead"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanonicalID(tt.id))
			assert.Equal(t, CanonicalID(tt.id), CanonicalID(tt.id))
		})
	}
}

func TestIssues_Error(t *testing.T) {
	is := Issues{
		{Path: "title", Code: CodeRequired, Message: "field required"},
		{Code: CodeInvalidType, Message: "document is not serializable"},
	}
	assert.Equal(t, "validation failed: title: field required; document is not serializable", is.Error())
}
