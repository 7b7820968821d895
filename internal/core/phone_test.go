package core

import "testing"

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"digits only", "5551234567", "5551234567"},
		{"us formatting", "(555) 123-4567", "5551234567"},
		{"dots dropped", "555.123.4567", "5551234567"},
		{"commas and tabs", "555,123\t4567", "5551234567"},
		{"line breaks", "555\r\n1234567", "5551234567"},
		{"international kept", "+1 (555) 123-4567", "+15551234567"},
		{"plus keeps remaining characters", "+44.20.7946", "+44.20.7946"},
		{"letters dropped", "tel: 555-0100 ext", "5550100"},
		{"only letters", "n/a", ""},
		{"non-ascii digits dropped", "٥٥٥123", "123"},
		{"leading whitespace before plus", "  +61 4", "+614"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizePhone(tt.input); got != tt.want {
				t.Errorf("NormalizePhone(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizePhone_Idempotent(t *testing.T) {
	inputs := []string{"(555) 123-4567", "+1 555 123 4567", "n/a", "+44.20"}
	for _, in := range inputs {
		once := NormalizePhone(in)
		if twice := NormalizePhone(once); twice != once {
			t.Errorf("NormalizePhone not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}
