package todo

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen11/go-todo-service/internal/domain"
)

// fieldErrors asserts err is a *domain.ValidationError and returns its fields.
func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	require.ErrorIs(t, err, domain.ErrValidation)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	return verr.Fields
}

func TestParseInput(t *testing.T) {
	t.Parallel()

	tooLong := "must be at most 255 characters, got 256"

	tests := []struct {
		name string
		raw  map[string]any
		want map[string]string // rejected fields; nil when the input is accepted
	}{
		{name: "title and description", raw: map[string]any{"title": "Buy milk", "description": "2%"}},
		{name: "unknown keys ignored", raw: map[string]any{"title": "Buy milk", "description": "2%", "id": 99, "done": true}},
		{name: "255 characters", raw: map[string]any{"title": strings.Repeat("a", 255), "description": "ok"}},
		{name: "255 two-byte characters", raw: map[string]any{"title": "ok", "description": strings.Repeat("é", 255)}},
		{
			name: "empty payload",
			raw:  map[string]any{},
			want: map[string]string{"title": domain.MsgRequired, "description": domain.MsgRequired},
		},
		{name: "missing title", raw: map[string]any{"description": "2%"}, want: map[string]string{"title": domain.MsgRequired}},
		{name: "missing description", raw: map[string]any{"title": "Buy milk"}, want: map[string]string{"description": domain.MsgRequired}},
		{name: "null title", raw: map[string]any{"title": nil, "description": "2%"}, want: map[string]string{"title": domain.MsgRequired}},
		{name: "empty title", raw: map[string]any{"title": "", "description": "2%"}, want: map[string]string{"title": domain.MsgRequired}},
		{name: "blank description", raw: map[string]any{"title": "Buy milk", "description": " \t\n"}, want: map[string]string{"description": domain.MsgRequired}},
		{name: "numeric title", raw: map[string]any{"title": float64(42), "description": "2%"}, want: map[string]string{"title": domain.MsgNotText}},
		{name: "array description", raw: map[string]any{"title": "Buy milk", "description": []any{"a"}}, want: map[string]string{"description": domain.MsgNotText}},
		{name: "256 characters", raw: map[string]any{"title": strings.Repeat("a", 256), "description": "ok"}, want: map[string]string{"title": tooLong}},
		{name: "256 two-byte characters", raw: map[string]any{"title": "ok", "description": strings.Repeat("é", 256)}, want: map[string]string{"description": tooLong}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			in, err := ParseInput(tt.raw)
			if tt.want != nil {
				assert.Equal(t, tt.want, fieldErrors(t, err))
				assert.Zero(t, in)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, Input{Title: tt.raw["title"].(string), Description: tt.raw["description"].(string)}, in)
		})
	}
}

func TestParseInput_TrimsBeforeValidating(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  map[string]any
		want Input
	}{
		{
			name: "surrounding spaces dropped",
			raw:  map[string]any{"title": "  padded  ", "description": "\tx\n"},
			want: Input{Title: "padded", Description: "x"},
		},
		{
			name: "inner spaces kept",
			raw:  map[string]any{"title": "Buy  oat milk", "description": "x"},
			want: Input{Title: "Buy  oat milk", Description: "x"},
		},
		{
			name: "255 characters plus trailing space",
			raw:  map[string]any{"title": strings.Repeat("a", 255) + " ", "description": " x"},
			want: Input{Title: strings.Repeat("a", 255), Description: "x"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			in, err := ParseInput(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, in)
		})
	}
}

func TestInput_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		in    Input
		field string
	}{
		{name: "valid", in: Input{Title: "Buy milk", Description: "2%"}},
		{name: "blank description", in: Input{Title: "Buy milk"}, field: FieldDescription},
		{name: "long title", in: Input{Title: strings.Repeat("x", MaxFieldLength+1), Description: "2%"}, field: FieldTitle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.in.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			assert.Contains(t, fieldErrors(t, err), tt.field)
		})
	}
}

func TestTodo_Apply(t *testing.T) {
	t.Parallel()

	td := Todo{ID: 1, Title: "A", Description: "B"}

	assert.False(t, td.Apply(Input{Title: "A", Description: "B"}), "same values")
	assert.True(t, td.Apply(Input{Title: "C", Description: "B"}), "new title")
	assert.Equal(t, Todo{ID: 1, Title: "C", Description: "B"}, td)
}

func TestParseID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw    string
		wantID int64
		wantOK bool
	}{
		{"1", 1, true},
		{"42", 42, true},
		{"0", 0, true},
		{"-3", -3, true},
		{"", 0, false},
		{"abc", 0, false},
		{"1.5", 0, false},
		{"12abc", 0, false},
		{"99999999999999999999", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			t.Parallel()
			id, ok := ParseID(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantID, id)
		})
	}
}
