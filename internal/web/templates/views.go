// Package templates holds the templ components for the admin HTML pages.
//
// The *_templ.go files are generated from the .templ sources with
// `templ generate`; edit the .templ files, not the generated code.
package templates

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/StudioUsers/internal/core"
)

// UsersView is the state of the users table page.
type UsersView struct {
	Users   []core.User
	Studios []core.Studio

	Studio     string
	SearchTerm string
	SearchType core.SearchType

	// Page is zero when showing search results, which are not paginated.
	Page       int
	TotalPages int
	TotalCount int

	Message string
	Error   string
}

var searchTypes = []core.SearchType{core.SearchEmail, core.SearchPhone, core.SearchName}

func (v UsersView) searching() bool { return v.SearchTerm != "" }

func (v UsersView) searchTypeSelected(t core.SearchType) bool {
	return v.SearchType == t || (v.SearchType == "" && t == core.SearchEmail)
}

func (v UsersView) countText() string {
	if v.searching() {
		return fmt.Sprintf("%d matches", len(v.Users))
	}
	return fmt.Sprintf("%d users", v.TotalCount)
}

func (v UsersView) exportURL() templ.SafeURL {
	if v.searching() {
		return templ.URL("/api/users/export" + query("searchTerm", v.SearchTerm, "searchType", string(v.SearchType), "studioFilter", v.Studio))
	}
	return templ.URL("/api/users/export" + query("studioFilter", v.Studio))
}

func (v UsersView) pageURL(page int) templ.SafeURL {
	return templ.URL("/users" + query("page", strconv.Itoa(page), "studioFilter", v.Studio))
}

func auditPageURL(page int) templ.SafeURL {
	return templ.URL("/audit-log" + query("page", strconv.Itoa(page)))
}

func forecastText(f core.Forecast) string {
	return fmt.Sprintf("%d to create, %d to update, %d to skip", f.Create, f.Update, f.Skip)
}

// skippedRows returns the outcomes worth showing the operator.
func skippedRows(res core.ImportResult) []core.RowOutcome {
	var rows []core.RowOutcome
	for _, o := range res.Outcomes {
		if o.Action == core.RowSkipped && o.Reason != "" {
			rows = append(rows, o)
		}
	}
	return rows
}

// query builds an escaped query string from key/value pairs, skipping empty values.
func query(kv ...string) string {
	v := url.Values{}
	for i := 0; i+1 < len(kv); i += 2 {
		if kv[i+1] != "" {
			v.Set(kv[i], kv[i+1])
		}
	}
	if len(v) == 0 {
		return ""
	}
	return "?" + v.Encode()
}
