package core

import (
	"io"
	"strings"
	"testing"
)

func TestWrapForStreaming(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain ascii", "a,b\n1,2\n", "a,b\n1,2\n"},
		{"bom stripped", "\xEF\xBB\xBFa,b\n", "a,b\n"},
		{"bom only", "\xEF\xBB\xBF", ""},
		{"invalid byte replaced", "caf\xE9,x\n", "caf�,x\n"},
		{"valid multibyte kept", "Zoë,Ørsted\n", "Zoë,Ørsted\n"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := io.ReadAll(WrapForStreaming(strings.NewReader(tt.input)))
			if err != nil {
				t.Fatalf("ReadAll error: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
