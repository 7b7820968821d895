package core

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name    string
		form    url.Values
		want    Command
		wantErr string
	}{
		{
			name: "import users",
			form: url.Values{"intent": {"import-users"}, "users": {`[{"firstName":"Ann","lastName":"Lee","phone":"1","email":"a@x.test","studio":"N"}]`}},
			want: ImportUsersCommand{Rows: []MappedRow{{FirstName: "Ann", LastName: "Lee", Phone: "1", Email: "a@x.test", Studio: "N"}}},
		},
		{
			name:    "import without users",
			form:    url.Values{"intent": {"import-users"}},
			wantErr: "No user data provided",
		},
		{
			name:    "import empty array",
			form:    url.Values{"intent": {"import-users"}, "users": {"[]"}},
			wantErr: "No user data provided",
		},
		{
			name:    "import malformed json",
			form:    url.Values{"intent": {"import-users"}, "users": {"{nope"}},
			wantErr: "Invalid user data",
		},
		{
			name: "search",
			form: url.Values{"intent": {"search-users"}, "searchTerm": {" ann "}, "searchType": {"email"}, "studioFilter": {"North"}},
			want: SearchUsersCommand{Term: "ann", Type: SearchEmail, Studio: "North"},
		},
		{
			name:    "search without term",
			form:    url.Values{"intent": {"search-users"}, "searchType": {"email"}},
			wantErr: "Search term is required",
		},
		{
			name:    "search with bad type",
			form:    url.Values{"intent": {"search-users"}, "searchTerm": {"ann"}, "searchType": {"zip"}},
			wantErr: "Invalid search type",
		},
		{
			name: "get users defaults",
			form: url.Values{"intent": {"get-users"}},
			want: GetUsersCommand{Page: 1, PageSize: DefaultPageSize},
		},
		{
			name: "get users explicit",
			form: url.Values{"intent": {"get-users"}, "page": {"3"}, "pageSize": {"20"}, "studioFilter": {"all"}},
			want: GetUsersCommand{Page: 3, PageSize: 20, Studio: "all"},
		},
		{
			name: "get users garbage numbers",
			form: url.Values{"intent": {"get-users"}, "page": {"x"}, "pageSize": {"-5"}},
			want: GetUsersCommand{Page: 1, PageSize: DefaultPageSize},
		},
		{
			name: "get studios",
			form: url.Values{"intent": {"get-studios"}},
			want: GetStudiosCommand{},
		},
		{
			name: "delete",
			form: url.Values{"intent": {"delete-users"}, "userIds": {"[3,1]"}},
			want: DeleteUsersCommand{IDs: []int64{3, 1}},
		},
		{
			name:    "delete without ids",
			form:    url.Values{"intent": {"delete-users"}},
			wantErr: "No user IDs provided",
		},
		{
			name:    "delete empty array",
			form:    url.Values{"intent": {"delete-users"}, "userIds": {"[]"}},
			wantErr: "Invalid user IDs",
		},
		{
			name:    "delete not an array",
			form:    url.Values{"intent": {"delete-users"}, "userIds": {`"1"`}},
			wantErr: "Invalid user IDs",
		},
		{
			name:    "delete negative id",
			form:    url.Values{"intent": {"delete-users"}, "userIds": {"[-1]"}},
			wantErr: "Invalid user IDs",
		},
		{
			name: "export",
			form: url.Values{"intent": {"export-csv"}, "searchTerm": {"ann"}, "searchType": {"name"}},
			want: ExportCSVCommand{Term: "ann", Type: SearchName},
		},
		{
			name:    "unknown intent",
			form:    url.Values{"intent": {"drop-tables"}},
			wantErr: "Invalid intent",
		},
		{
			name:    "missing intent",
			form:    url.Values{},
			wantErr: "Invalid intent",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCommand(tt.form)
			if tt.wantErr != "" {
				if !IsValidationError(err) || ValidationMessage(err) != tt.wantErr {
					t.Fatalf("error = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseCommand: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("command mismatch (-want +got):\n%s", diff)
			}
			if got.Intent() != tt.form.Get("intent") {
				t.Errorf("Intent = %q, want %q", got.Intent(), tt.form.Get("intent"))
			}
		})
	}
}

func TestExecute_RequiresSession(t *testing.T) {
	svc, _ := newTestService()
	defer svc.Close()

	_, err := svc.Execute(context.Background(), GetStudiosCommand{})
	if !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("error = %v, want ErrUnauthenticated", err)
	}
}

func TestExecute(t *testing.T) {
	svc, _ := newTestService()
	defer svc.Close()
	ctx := adminContext()

	imported, err := svc.Execute(ctx, ImportUsersCommand{Rows: []MappedRow{
		row("Ann", "Lee", "5550100", "ann@example.com", "North"),
		row("Bo", "Ray", "", "bo@example.com", "South"),
	}})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if *imported.Count != 2 || *imported.Updated != 0 || *imported.Skipped != 0 {
		t.Errorf("import result = %+v", imported)
	}
	if imported.Message != "Created: 2, Updated: 0, Skipped: 0" {
		t.Errorf("import message = %q", imported.Message)
	}

	listed, err := svc.Execute(ctx, GetUsersCommand{Page: 1, PageSize: 1})
	if err != nil {
		t.Fatalf("get users: %v", err)
	}
	if len(listed.Users) != 1 || *listed.TotalCount != 2 || *listed.TotalPages != 2 {
		t.Errorf("get users result = %+v", listed)
	}

	studios, err := svc.Execute(ctx, GetStudiosCommand{})
	if err != nil {
		t.Fatalf("get studios: %v", err)
	}
	if len(studios.Studios) != 2 || studios.Studios[0].Name != "North" {
		t.Errorf("studios = %+v", studios.Studios)
	}

	exported, err := svc.Execute(ctx, ExportCSVCommand{})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if exported.Intent != IntentExportCSV || *exported.Count != 2 {
		t.Errorf("export result = %+v", exported)
	}

	ids := make([]int64, 0, len(exported.Users))
	for _, u := range exported.Users {
		ids = append(ids, u.ID)
	}
	deleted, err := svc.Execute(ctx, DeleteUsersCommand{IDs: ids})
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if *deleted.DeletedCount != 2 || deleted.Message != "Successfully deleted 2 users" {
		t.Errorf("delete result = %+v", deleted)
	}
}

func TestDeletedMessage(t *testing.T) {
	tests := map[int]string{
		0: "Successfully deleted 0 users",
		1: "Successfully deleted 1 user",
		5: "Successfully deleted 5 users",
	}
	for n, want := range tests {
		if got := DeletedMessage(n); got != want {
			t.Errorf("DeletedMessage(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestActionResult_JSONOmitsUnsetFields(t *testing.T) {
	tests := []struct {
		name   string
		result ActionResult
		want   string
	}{
		{
			name:   "empty search keeps users array",
			result: ActionResult{Success: true, Users: []User{}, Count: intPtr(0)},
			want:   `{"success":true,"users":[],"count":0}`,
		},
		{
			name:   "studios only",
			result: ActionResult{Success: true, Studios: []Studio{{ID: 1, Name: "North"}}},
			want:   `{"success":true,"studios":[{"id":1,"name":"North"}]}`,
		},
		{
			name:   "delete",
			result: ActionResult{Success: true, DeletedCount: intPtr(1), Message: DeletedMessage(1)},
			want:   `{"success":true,"deletedCount":1,"message":"Successfully deleted 1 user"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := json.Marshal(tt.result)
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}
			if string(b) != tt.want {
				t.Errorf("got %s, want %s", b, tt.want)
			}
		})
	}
}
