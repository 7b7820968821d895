package core

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

const stagedCSV = "\xEF\xBB\xBFFirst Name,Last Name,Phone,Email,Studio,Notes\n" +
	"Ann,Lee,555-0100,ann@example.com,North,\n" +
	"Bo,Ray,555-0101,bo@example.com,North,vip\n" +
	"Cy,Day,555-0102,cy@example.com,South,\n" +
	"Cy,Day,555-0102,cy@example.com,South,dup\n" +
	"No,Email,555-0104,,South,\n" +
	"Di,Fox,555-0105,di@example.com,North,\n"

func stage(t *testing.T, svc *Service) *StagedUpload {
	t.Helper()
	u, err := svc.StageUpload(context.Background(), "contacts.csv", strings.NewReader(stagedCSV))
	if err != nil {
		t.Fatalf("StageUpload: %v", err)
	}
	return u
}

func TestStageUpload(t *testing.T) {
	svc, _ := newTestService()
	defer svc.Close()

	u := stage(t, svc)
	if u.ID == "" || u.FileName != "contacts.csv" {
		t.Errorf("upload = %+v", u)
	}
	if len(u.Rows) != 6 {
		t.Errorf("rows = %d, want 6", len(u.Rows))
	}
	if u.Headers[0] != "First Name" {
		t.Errorf("first header = %q, BOM not stripped", u.Headers[0])
	}

	got, err := svc.StagedUploadByID(u.ID)
	if err != nil || got != u {
		t.Errorf("StagedUploadByID = %v, %v", got, err)
	}
}

func TestStageUpload_Errors(t *testing.T) {
	svc, _ := newTestService()
	defer svc.Close()

	if _, err := svc.StageUpload(context.Background(), "empty.csv", strings.NewReader("")); !errors.Is(err, ErrEmptyFile) {
		t.Errorf("empty file error = %v, want ErrEmptyFile", err)
	}
	if svc.staging.len() != 0 {
		t.Error("failed upload was staged")
	}
}

func TestPreviewUpload(t *testing.T) {
	svc, _ := newTestService()
	defer svc.Close()
	ctx := adminContext()

	// bo already exists without a phone; di already has one.
	if _, err := svc.ImportUsers(ctx, "", []MappedRow{
		row("Bo", "Ray", "", "bo@example.com", "North"),
		row("Di", "Fox", "5550000", "di@example.com", "North"),
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	u := stage(t, svc)
	p, err := svc.PreviewUpload(ctx, u.ID, nil)
	if err != nil {
		t.Fatalf("PreviewUpload: %v", err)
	}

	if p.TotalRows != 6 || len(p.SampleRows) != 5 {
		t.Errorf("total/sample = %d/%d, want 6/5", p.TotalRows, len(p.SampleRows))
	}
	if len(p.Missing) != 0 {
		t.Errorf("missing = %v, want none", p.Missing)
	}
	if p.Suggested[FieldEmail] != "Email" {
		t.Errorf("suggested email column = %q", p.Suggested[FieldEmail])
	}
	if p.Forecast == nil {
		t.Fatal("forecast missing for a complete mapping")
	}
	// ann, cy: create. bo: update. second cy: skip (created earlier in the
	// file). missing email: skip. di: skip (phone already set).
	want := Forecast{Create: 2, Update: 1, Skip: 3}
	if diff := cmp.Diff(want, *p.Forecast); diff != "" {
		t.Errorf("forecast mismatch (-want +got):\n%s", diff)
	}

	// The forecast matches what the import then does.
	res, err := svc.ImportStaged(ctx, u.ID, p.Suggested)
	if err != nil {
		t.Fatalf("ImportStaged: %v", err)
	}
	if res.Created != want.Create || res.Updated != want.Update || res.Skipped != want.Skip {
		t.Errorf("import = %+v, forecast = %+v", res, want)
	}
}

func TestPreviewUpload_IncompleteMappingHasNoForecast(t *testing.T) {
	svc, _ := newTestService()
	defer svc.Close()

	u := stage(t, svc)
	p, err := svc.PreviewUpload(context.Background(), u.ID, ColumnMapping{FieldEmail: "Email"})
	if err != nil {
		t.Fatalf("PreviewUpload: %v", err)
	}
	if p.Forecast != nil {
		t.Errorf("forecast = %+v, want nil", p.Forecast)
	}
	want := []Field{FieldFirstName, FieldLastName, FieldPhone, FieldStudio}
	if diff := cmp.Diff(want, p.Missing); diff != "" {
		t.Errorf("missing mismatch (-want +got):\n%s", diff)
	}
}

func TestImportStaged_IncompleteMappingWritesNothing(t *testing.T) {
	svc, store := newTestService()
	defer svc.Close()

	u := stage(t, svc)
	_, err := svc.ImportStaged(adminContext(), u.ID, ColumnMapping{FieldEmail: "Email"})
	if ValidationMessage(err) != "Please map all required fields" {
		t.Fatalf("error = %v, want incomplete mapping", err)
	}
	if store.upserts != 0 || store.userCount() != 0 {
		t.Errorf("upserts = %d users = %d, want none", store.upserts, store.userCount())
	}

	// The upload stays staged for another attempt.
	if _, err := svc.StagedUploadByID(u.ID); err != nil {
		t.Errorf("upload dropped after rejected mapping: %v", err)
	}
}

func TestImportStaged_ConsumesUpload(t *testing.T) {
	svc, _ := newTestService()
	defer svc.Close()
	ctx := adminContext()

	u := stage(t, svc)
	if _, err := svc.ImportStaged(ctx, u.ID, SuggestMapping(u.Headers)); err != nil {
		t.Fatalf("ImportStaged: %v", err)
	}
	if _, err := svc.ImportStaged(ctx, u.ID, SuggestMapping(u.Headers)); !errors.Is(err, ErrUploadNotFound) {
		t.Errorf("second import error = %v, want ErrUploadNotFound", err)
	}
}

func TestDiscardUpload(t *testing.T) {
	svc, _ := newTestService()
	defer svc.Close()

	u := stage(t, svc)
	if err := svc.DiscardUpload(u.ID); err != nil {
		t.Fatalf("DiscardUpload: %v", err)
	}
	if err := svc.DiscardUpload(u.ID); !errors.Is(err, ErrUploadNotFound) {
		t.Errorf("second discard error = %v, want ErrUploadNotFound", err)
	}
	if _, err := svc.PreviewUpload(context.Background(), u.ID, nil); !errors.Is(err, ErrUploadNotFound) {
		t.Errorf("preview after discard error = %v, want ErrUploadNotFound", err)
	}
}

func TestStagingArea_Expires(t *testing.T) {
	area := newStagingArea(10 * time.Millisecond)
	defer area.close()

	u := area.put("f.csv", []string{"a"}, nil)
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, ok := area.get(u.ID); !ok {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("staged upload did not expire")
}

func TestStagingArea_Close(t *testing.T) {
	area := newStagingArea(time.Hour)
	area.put("a.csv", nil, nil)
	area.put("b.csv", nil, nil)
	area.close()

	if n := area.len(); n != 0 {
		t.Errorf("len after close = %d, want 0", n)
	}
	u := area.put("c.csv", nil, nil)
	if _, ok := area.get(u.ID); ok {
		t.Error("put after close was kept")
	}
}
