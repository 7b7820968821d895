package core

import (
	"bytes"
	"testing"
	"time"
)

func TestFormatPhoneForExport(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"   ", ""},
		{"5550100", `="+5550100"`},
		{"+15550100", `="+15550100"`},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := FormatPhoneForExport(tt.input); got != tt.want {
				t.Errorf("FormatPhoneForExport(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatPhoneForExport_RoundTripsThroughCleanCell(t *testing.T) {
	for _, phone := range []string{"5550100", "+15550100"} {
		got := NormalizePhone(CleanCell(FormatPhoneForExport(phone)))
		if got != "+"+trimPlus(phone) {
			t.Errorf("round trip of %q = %q", phone, got)
		}
	}
}

func trimPlus(s string) string {
	if len(s) > 0 && s[0] == '+' {
		return s[1:]
	}
	return s
}

func TestExportFilename(t *testing.T) {
	tests := []struct {
		at   time.Time
		want string
	}{
		{time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC), "users-export-5-3-24.csv"},
		{time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC), "users-export-31-12-25.csv"},
		{time.Date(2009, 1, 9, 0, 0, 0, 0, time.UTC), "users-export-9-1-09.csv"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := ExportFilename(tt.at); got != tt.want {
				t.Errorf("ExportFilename = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWriteUsersCSV(t *testing.T) {
	users := []User{
		{
			FirstName: "Ann", LastName: "Lee", Email: "ann@example.com", Phone: "5550100",
			Studio: "North", CreatedAt: time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC),
		},
		{
			FirstName: "Bo", LastName: "Ray, Jr", Email: "bo@example.com",
			CreatedAt: time.Date(2024, 11, 21, 0, 0, 0, 0, time.UTC),
		},
	}

	var buf bytes.Buffer
	if err := WriteUsersCSV(&buf, users); err != nil {
		t.Fatalf("WriteUsersCSV: %v", err)
	}

	want := "First Name,Last Name,Email,Phone,Studio,Created Date\n" +
		`Ann,Lee,ann@example.com,"=""+5550100""",North,3/5/2024` + "\n" +
		`Bo,"Ray, Jr",bo@example.com,,Unknown,11/21/2024` + "\n"
	if got := buf.String(); got != want {
		t.Errorf("csv mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestWriteUsersCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteUsersCSV(&buf, nil); err != nil {
		t.Fatalf("WriteUsersCSV: %v", err)
	}
	if got, want := buf.String(), "First Name,Last Name,Email,Phone,Studio,Created Date\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestWriteUsersCSV_ReadsBack(t *testing.T) {
	var buf bytes.Buffer
	users := []User{{FirstName: "Ann", LastName: "Lee", Email: "ann@example.com", Phone: "+4420", Studio: "North"}}
	if err := WriteUsersCSV(&buf, users); err != nil {
		t.Fatalf("WriteUsersCSV: %v", err)
	}

	headers, rows, err := ReadCSV(&buf, 0)
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	mapped, err := SuggestMapping(headers).Project(headers, rows)
	if err != nil {
		t.Fatalf("exported headers are not importable: %v", err)
	}
	if got := NormalizePhone(CleanCell(mapped[0].Phone)); got != "+4420" {
		t.Errorf("phone = %q, want +4420", got)
	}
}
