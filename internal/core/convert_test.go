package core

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestToPgText(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantValid  bool
		wantString string
	}{
		{name: "simple string", input: "hello", wantValid: true, wantString: "hello"},
		{name: "surrounded whitespace trimmed", input: "  hello world  ", wantValid: true, wantString: "hello world"},
		{name: "unicode characters", input: "café", wantValid: true, wantString: "café"},
		{name: "empty string", input: "", wantValid: false},
		{name: "only spaces", input: "   ", wantValid: false},
		{name: "only newlines", input: "\n\n", wantValid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ToPgText(tt.input)
			if result.Valid != tt.wantValid {
				t.Errorf("ToPgText(%q).Valid = %v, want %v", tt.input, result.Valid, tt.wantValid)
				return
			}
			if tt.wantValid && result.String != tt.wantString {
				t.Errorf("ToPgText(%q).String = %q, want %q", tt.input, result.String, tt.wantString)
			}
			if back := FromPgText(result); back != tt.wantString {
				t.Errorf("FromPgText = %q, want %q", back, tt.wantString)
			}
		})
	}
}

func TestPgUUID(t *testing.T) {
	if ToPgUUID(uuid.Nil).Valid {
		t.Error("nil UUID should map to NULL")
	}
	if PgUUIDToString(ToPgUUID(uuid.Nil)) != "" {
		t.Error("NULL UUID should render empty")
	}

	id := uuid.New()
	if got := PgUUIDToString(ToPgUUID(id)); got != id.String() {
		t.Errorf("PgUUIDToString = %q, want %q", got, id.String())
	}
}

func TestPgTimestamptz(t *testing.T) {
	if ToPgTimestamptz(time.Time{}).Valid {
		t.Error("zero time should map to NULL")
	}
	if !FromPgTimestamptz(ToPgTimestamptz(time.Time{})).IsZero() {
		t.Error("NULL should map back to the zero time")
	}

	at := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	if got := FromPgTimestamptz(ToPgTimestamptz(at)); !got.Equal(at) {
		t.Errorf("round trip = %v, want %v", got, at)
	}
}

func TestCleanCell(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "simple string unchanged", input: "hello", want: "hello"},
		{name: "empty string", input: "", want: ""},
		{name: "surrounded by whitespace", input: "  hello  ", want: "hello"},
		{name: "text formula", input: `="hello"`, want: "hello"},
		{name: "exported phone", input: `="+15550100"`, want: "+15550100"},
		{name: "text formula with whitespace", input: `  ="test"  `, want: "test"},
		{name: "empty text formula", input: `=""`, want: ""},
		{name: "double quotes removed", input: `"hello"`, want: "hello"},
		{name: "only quotes", input: `""`, want: ""},
		{name: "lone quote kept", input: `"`, want: `"`},
		{name: "bare formula kept", input: "=SUM(A1)", want: "=SUM(A1)"},
		{name: "inner quotes kept", input: `a"b`, want: `a"b`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanCell(tt.input); got != tt.want {
				t.Errorf("CleanCell(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
