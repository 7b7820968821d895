package core

// mapping.go maps uploaded CSV columns onto the five canonical user fields.
//
// The mapping is chosen by the admin (or suggested from header names) and
// must name a header for every field before any row is projected. Projection
// is pure: it never touches the store.

import (
	"fmt"
	"strings"
	"unicode"
)

// Field is one of the canonical import fields.
type Field string

const (
	FieldFirstName Field = "firstName"
	FieldLastName  Field = "lastName"
	FieldPhone     Field = "phone"
	FieldEmail     Field = "email"
	FieldStudio    Field = "studio"
)

// CanonicalFields lists every field a mapping must cover, in display order.
var CanonicalFields = []Field{FieldFirstName, FieldLastName, FieldPhone, FieldEmail, FieldStudio}

var fieldLabels = map[Field]string{
	FieldFirstName: "First Name",
	FieldLastName:  "Last Name",
	FieldPhone:     "Phone",
	FieldEmail:     "Email",
	FieldStudio:    "Studio",
}

// Label returns the display name of the field.
func (f Field) Label() string {
	if l, ok := fieldLabels[f]; ok {
		return l
	}
	return string(f)
}

// fieldAliases are normalized header names recognized by SuggestMapping.
var fieldAliases = map[Field][]string{
	FieldFirstName: {"firstname", "first", "givenname", "forename", "fname"},
	FieldLastName:  {"lastname", "last", "surname", "familyname", "lname"},
	FieldPhone:     {"phone", "phonenumber", "mobile", "mobilenumber", "cell", "telephone", "tel"},
	FieldEmail:     {"email", "emailaddress", "mail"},
	FieldStudio:    {"studio", "studioname", "location", "site"},
}

// ColumnMapping maps each canonical field to a source column header.
type ColumnMapping map[Field]string

// ParseColumnMapping builds a mapping from string keys, rejecting unknown fields.
func ParseColumnMapping(raw map[string]string) (ColumnMapping, error) {
	m := make(ColumnMapping, len(raw))
	for k, v := range raw {
		f := Field(k)
		if _, ok := fieldLabels[f]; !ok {
			return nil, newValidationError("mapping", k, fmt.Sprintf("unknown field %q", k))
		}
		m[f] = strings.TrimSpace(v)
	}
	return m, nil
}

// Missing returns the canonical fields with no selected column.
func (m ColumnMapping) Missing() []Field {
	var missing []Field
	for _, f := range CanonicalFields {
		if strings.TrimSpace(m[f]) == "" {
			missing = append(missing, f)
		}
	}
	return missing
}

// Complete reports whether every canonical field has a selection.
func (m ColumnMapping) Complete() bool {
	return len(m.Missing()) == 0
}

// Validate checks that every canonical field is mapped to one of headers.
func (m ColumnMapping) Validate(headers []string) error {
	if missing := m.Missing(); len(missing) > 0 {
		labels := make([]string, len(missing))
		for i, f := range missing {
			labels[i] = f.Label()
		}
		return newValidationError("mapping", strings.Join(labels, ", "),
			"Please map all required fields")
	}

	present := make(map[string]bool, len(headers))
	for _, h := range headers {
		present[h] = true
	}
	for _, f := range CanonicalFields {
		if !present[m[f]] {
			return newValidationError("mapping", m[f],
				fmt.Sprintf("column not found for %s", f.Label()))
		}
	}
	return nil
}

// MappedRow is one input row projected onto the canonical fields.
type MappedRow struct {
	Row       int    `json:"row,omitempty"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	Studio    string `json:"studio"`
}

// Project validates the mapping and projects rows onto the canonical fields.
// Rows shorter than the header read missing cells as empty. Row numbers are
// 1-based positions in rows.
func (m ColumnMapping) Project(headers []string, rows [][]string) ([]MappedRow, error) {
	if err := m.Validate(headers); err != nil {
		return nil, err
	}

	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		if _, dup := idx[h]; !dup {
			idx[h] = i
		}
	}

	cell := func(row []string, f Field) string {
		pos := idx[m[f]]
		if pos >= len(row) {
			return ""
		}
		return row[pos]
	}

	out := make([]MappedRow, 0, len(rows))
	for i, row := range rows {
		out = append(out, MappedRow{
			Row:       i + 1,
			FirstName: cell(row, FieldFirstName),
			LastName:  cell(row, FieldLastName),
			Phone:     cell(row, FieldPhone),
			Email:     cell(row, FieldEmail),
			Studio:    cell(row, FieldStudio),
		})
	}
	return out, nil
}

// SuggestMapping guesses a mapping from header names. Fields with no
// recognizable header are left out; the first matching header wins.
func SuggestMapping(headers []string) ColumnMapping {
	m := make(ColumnMapping)
	for _, f := range CanonicalFields {
		for _, h := range headers {
			if matchesAlias(normalizeHeader(h), fieldAliases[f]) {
				m[f] = h
				break
			}
		}
	}
	return m
}

func matchesAlias(h string, aliases []string) bool {
	for _, a := range aliases {
		if h == a {
			return true
		}
	}
	return false
}

// normalizeHeader lowercases and drops everything but letters and digits:
// "E-mail Address" -> "emailaddress".
func normalizeHeader(h string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(h) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
