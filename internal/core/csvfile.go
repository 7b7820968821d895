package core

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrEmptyFile is returned when an upload has no header row.
var ErrEmptyFile = errors.New("empty file: no header row found")

// ReadCSV parses an uploaded CSV. The first non-blank record is the header;
// blank records are skipped and every header is trimmed. maxRows > 0 caps
// the number of data rows.
func ReadCSV(r io.Reader, maxRows int) ([]string, [][]string, error) {
	reader := csv.NewReader(WrapForStreaming(r))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.ReuseRecord = false

	var headers []string
	var rows [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("invalid csv: %w", err)
		}
		if blankRecord(record) {
			continue
		}

		if headers == nil {
			headers = make([]string, len(record))
			for i, h := range record {
				headers[i] = strings.TrimSpace(h)
			}
			continue
		}

		if maxRows > 0 && len(rows) >= maxRows {
			return nil, nil, fmt.Errorf("file too large: more than %d rows", maxRows)
		}
		rows = append(rows, record)
	}

	if headers == nil {
		return nil, nil, ErrEmptyFile
	}
	return headers, rows, nil
}

func blankRecord(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
