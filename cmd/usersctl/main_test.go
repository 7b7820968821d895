package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/JonMunkholm/StudioUsers/internal/core"
)

func TestRootCommandTree(t *testing.T) {
	root := newRootCmd(&app{})

	tests := []struct {
		args []string
		want string
	}{
		{[]string{"migrate", "up"}, "up"},
		{[]string{"migrate", "down"}, "down"},
		{[]string{"migrate", "version"}, "version"},
		{[]string{"admin", "seed"}, "seed"},
		{[]string{"import", "contacts.csv"}, "import"},
		{[]string{"export"}, "export"},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			cmd, _, err := root.Find(tt.args)
			if err != nil {
				t.Fatalf("Find: %v", err)
			}
			if cmd.Name() != tt.want {
				t.Errorf("found %q, want %q", cmd.Name(), tt.want)
			}
		})
	}
}

func TestImportCommandArgs(t *testing.T) {
	cmd := newImportCmd(&app{})
	if err := cmd.Args(cmd, nil); err == nil {
		t.Error("import without a file was accepted")
	}
	if err := cmd.Args(cmd, []string{"a.csv", "b.csv"}); err == nil {
		t.Error("import with two files was accepted")
	}
	for _, name := range []string{"first-name-column", "last-name-column", "phone-column", "email-column", "studio-column", "dry-run"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("flag --%s missing", name)
		}
	}
}

func TestResolveMapping(t *testing.T) {
	headers := []string{"First Name", "Last Name", "Cell", "Email", "Location"}
	phone, studio, empty := "Cell", "Location", ""
	columns := map[core.Field]*string{
		core.FieldPhone:     &phone,
		core.FieldStudio:    &studio,
		core.FieldFirstName: &empty,
		core.FieldEmail:     nil,
	}

	want := core.ColumnMapping{
		core.FieldFirstName: "First Name",
		core.FieldLastName:  "Last Name",
		core.FieldPhone:     "Cell",
		core.FieldEmail:     "Email",
		core.FieldStudio:    "Location",
	}
	if diff := cmp.Diff(want, resolveMapping(headers, columns)); diff != "" {
		t.Errorf("mapping mismatch (-want +got):\n%s", diff)
	}
}

func TestPrintMapping(t *testing.T) {
	var buf bytes.Buffer
	printMapping(&buf, core.ColumnMapping{core.FieldEmail: "E-mail"})

	out := buf.String()
	if !strings.Contains(out, "E-mail") {
		t.Errorf("output missing mapped column:\n%s", out)
	}
	if got := strings.Count(out, "(unmapped)"); got != 4 {
		t.Errorf("unmapped lines = %d, want 4:\n%s", got, out)
	}
}

func TestPrintSkipped(t *testing.T) {
	var buf bytes.Buffer
	printSkipped(&buf, core.ImportResult{Outcomes: []core.RowOutcome{
		{Row: 1, Email: "ann@example.com", Action: core.RowCreated},
		{Row: 2, Email: "", Action: core.RowSkipped, Reason: "required field email is empty"},
		{Row: 3, Email: "bo@example.com", Action: core.RowSkipped},
	}})

	want := "row 2 : required field email is empty\n"
	if got := buf.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestWriteExport(t *testing.T) {
	users := []core.User{{ID: 1, FirstName: "Ann", LastName: "Lee", Email: "ann@example.com", Studio: "North"}}

	var stdout bytes.Buffer
	if err := writeExport(&stdout, "-", users); err != nil {
		t.Fatalf("writeExport stdout: %v", err)
	}
	if !strings.Contains(stdout.String(), "ann@example.com") {
		t.Errorf("stdout = %q", stdout.String())
	}

	path := filepath.Join(t.TempDir(), "out.csv")
	var unused bytes.Buffer
	if err := writeExport(&unused, path, users); err != nil {
		t.Fatalf("writeExport file: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(b) != stdout.String() {
		t.Errorf("file and stdout exports differ:\n%s\n---\n%s", b, stdout.String())
	}
	if unused.Len() != 0 {
		t.Error("file export also wrote to stdout")
	}
}

func TestMigrateDownRejectsZeroSteps(t *testing.T) {
	root := newRootCmd(&app{})
	down, _, err := root.Find([]string{"migrate", "down"})
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if err := down.Flags().Set("steps", "0"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := down.RunE(down, nil); err == nil || !strings.Contains(err.Error(), "--steps") {
		t.Errorf("error = %v, want steps validation", err)
	}
}
