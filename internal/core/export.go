package core

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"
)

// ExportHeader is the header row of a user export.
var ExportHeader = []string{"First Name", "Last Name", "Email", "Phone", "Studio", "Created Date"}

// FormatPhoneForExport renders a stored phone as a spreadsheet formula so
// the leading "+" and any leading zeros survive opening the file.
func FormatPhoneForExport(phone string) string {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return ""
	}
	if !strings.HasPrefix(phone, "+") {
		phone = "+" + phone
	}
	return `="` + phone + `"`
}

// FormatExportDate renders a creation time as M/D/YYYY.
func FormatExportDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("1/2/2006")
}

// ExportFilename names an export produced at t: users-export-D-M-YY.csv.
func ExportFilename(t time.Time) string {
	return fmt.Sprintf("users-export-%d-%d-%s.csv", t.Day(), int(t.Month()), t.Format("06"))
}

// WriteUsersCSV writes users in export format.
func WriteUsersCSV(w io.Writer, users []User) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ExportHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	record := make([]string, len(ExportHeader))
	for _, u := range users {
		studio := u.Studio
		if studio == "" {
			studio = UnknownStudio
		}
		record[0] = u.FirstName
		record[1] = u.LastName
		record[2] = u.Email
		record[3] = FormatPhoneForExport(u.Phone)
		record[4] = studio
		record[5] = FormatExportDate(u.CreatedAt)
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write user %d: %w", u.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
