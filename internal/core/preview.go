package core

import "context"

const previewSampleRows = 5

// Forecast predicts the outcome counts of importing a staged upload.
type Forecast struct {
	Create int `json:"create"`
	Update int `json:"update"`
	Skip   int `json:"skip"`
}

// Preview describes a staged upload before import.
type Preview struct {
	UploadID   string        `json:"uploadId"`
	FileName   string        `json:"fileName"`
	Headers    []string      `json:"headers"`
	SampleRows [][]string    `json:"sampleRows"`
	TotalRows  int           `json:"totalRows"`
	Suggested  ColumnMapping `json:"suggestedMapping"`
	Missing    []Field       `json:"missingFields,omitempty"`
	Forecast   *Forecast     `json:"forecast,omitempty"`
}

// PreviewUpload summarizes a staged upload. When mapping is complete and
// valid for the upload's headers, the preview also carries a forecast.
func (s *Service) PreviewUpload(ctx context.Context, uploadID string, mapping ColumnMapping) (Preview, error) {
	u, err := s.StagedUploadByID(uploadID)
	if err != nil {
		return Preview{}, err
	}

	suggested := SuggestMapping(u.Headers)
	effective := mapping
	if len(effective) == 0 {
		effective = suggested
	}

	sample := u.Rows
	if len(sample) > previewSampleRows {
		sample = sample[:previewSampleRows]
	}

	p := Preview{
		UploadID:   u.ID,
		FileName:   u.FileName,
		Headers:    u.Headers,
		SampleRows: sample,
		TotalRows:  len(u.Rows),
		Suggested:  suggested,
		Missing:    effective.Missing(),
	}

	rows, err := effective.Project(u.Headers, u.Rows)
	if err != nil {
		// Forecasting needs a usable mapping; the preview itself does not.
		return p, nil
	}
	f, err := s.forecast(ctx, rows)
	if err != nil {
		return Preview{}, err
	}
	p.Forecast = &f
	return p, nil
}

// forecast applies Decide to rows without writing. Earlier rows of the
// same file are taken into account, so a repeated email forecasts as the
// import will treat it.
func (s *Service) forecast(ctx context.Context, rows []MappedRow) (Forecast, error) {
	prepared := make([]preparedRow, len(rows))
	emails := make([]string, 0, len(rows))
	for i, r := range rows {
		prepared[i] = prepareRow(r)
		if e := prepared[i].email; e != "" {
			emails = append(emails, e)
		}
	}

	existing := map[string]User{}
	if len(emails) > 0 {
		var err error
		existing, err = s.store.UsersByEmail(ctx, emails)
		if err != nil {
			return Forecast{}, err
		}
		if existing == nil {
			existing = map[string]User{}
		}
	}

	var f Forecast
	for _, p := range prepared {
		if rowProblem(p.email, p.studio) != "" {
			f.Skip++
			continue
		}

		var current *User
		if u, ok := existing[p.email]; ok {
			current = &u
		}
		switch Decide(current, p.phone) {
		case RowCreated:
			f.Create++
			existing[p.email] = User{Email: p.email, Phone: p.phone}
		case RowUpdated:
			f.Update++
			current.Phone = p.phone
			existing[p.email] = *current
		default:
			f.Skip++
		}
	}
	return f, nil
}
