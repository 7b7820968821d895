package core

// reconcile.go folds mapped import rows into created, updated and skipped
// outcomes.
//
// Rows are processed strictly in order, one upsert each. A failing row is
// logged and counted as skipped; it never stops the batch, so every row is
// attempted exactly once and the caller always gets a complete result.

import (
	"context"
	"fmt"
	"time"

	"github.com/JonMunkholm/StudioUsers/internal/logging"
)

// RowOutcome records what happened to one import row.
type RowOutcome struct {
	Row    int       `json:"row"`
	Email  string    `json:"email"`
	Action RowAction `json:"action"`
	Reason string    `json:"reason,omitempty"`
}

// ImportResult is the accumulated outcome of an import.
type ImportResult struct {
	Created  int          `json:"created"`
	Updated  int          `json:"updated"`
	Skipped  int          `json:"skipped"`
	Outcomes []RowOutcome `json:"outcomes"`
}

// Total returns the number of rows attempted.
func (r ImportResult) Total() int {
	return r.Created + r.Updated + r.Skipped
}

// Message is the human-readable summary shown after an import.
func (r ImportResult) Message() string {
	return fmt.Sprintf("Created: %d, Updated: %d, Skipped: %d", r.Created, r.Updated, r.Skipped)
}

// add is the fold step.
func (r ImportResult) add(o RowOutcome) ImportResult {
	switch o.Action {
	case RowCreated:
		r.Created++
	case RowUpdated:
		r.Updated++
	default:
		o.Action = RowSkipped
		r.Skipped++
	}
	r.Outcomes = append(r.Outcomes, o)
	return r
}

// Decide applies the reconciliation policy: create when no user has the
// email, fill in the phone when the existing user has none and the row
// brings one, skip otherwise. phone must already be normalized.
func Decide(existing *User, phone string) RowAction {
	switch {
	case existing == nil:
		return RowCreated
	case existing.Phone == "" && phone != "":
		return RowUpdated
	default:
		return RowSkipped
	}
}

// preparedRow is a MappedRow after cleaning and normalization.
type preparedRow struct {
	row       int
	firstName string
	lastName  string
	email     string
	phone     string
	studio    string
}

func prepareRow(r MappedRow) preparedRow {
	return preparedRow{
		row:       r.Row,
		firstName: CleanText(CleanCell(r.FirstName)),
		lastName:  CleanText(CleanCell(r.LastName)),
		email:     CleanText(CleanCell(r.Email)),
		phone:     NormalizePhone(CleanCell(r.Phone)),
		studio:    CleanText(CleanCell(r.Studio)),
	}
}

// Reconcile folds rows into an ImportResult. It does not take an import
// slot; ImportUsers is the guarded entry point.
func (s *Service) Reconcile(ctx context.Context, rows []MappedRow) ImportResult {
	logger := logging.FromContext(ctx)
	studios := make(studioCache)

	result := ImportResult{Outcomes: make([]RowOutcome, 0, len(rows))}
	for i, raw := range rows {
		if raw.Row == 0 {
			raw.Row = i + 1
		}
		outcome := s.reconcileRow(ctx, studios, prepareRow(raw))
		if outcome.Action == RowSkipped && outcome.Reason != "" {
			logger.Warn("import row skipped",
				"row", outcome.Row,
				"email", outcome.Email,
				"reason", outcome.Reason,
			)
		}
		result = result.add(outcome)
	}
	return result
}

func (s *Service) reconcileRow(ctx context.Context, studios studioCache, p preparedRow) RowOutcome {
	out := RowOutcome{Row: p.row, Email: p.email, Action: RowSkipped}

	if problem := rowProblem(p.email, p.studio); problem != "" {
		out.Reason = problem
		return out
	}
	if err := ctx.Err(); err != nil {
		out.Reason = err.Error()
		return out
	}

	studioID, err := studios.resolve(ctx, s, p.studio)
	if err != nil {
		out.Reason = err.Error()
		return out
	}

	action, err := s.store.UpsertUser(ctx, NewUser{
		FirstName: p.firstName,
		LastName:  p.lastName,
		Email:     p.email,
		Phone:     p.phone,
		StudioID:  studioID,
	})
	if err != nil {
		out.Reason = err.Error()
		return out
	}
	out.Action = action
	return out
}

// UsersImportedEvent is published after an import completes.
type UsersImportedEvent struct {
	Actor   string    `json:"actor,omitempty"`
	Source  string    `json:"source,omitempty"`
	Created int       `json:"created"`
	Updated int       `json:"updated"`
	Skipped int       `json:"skipped"`
	At      time.Time `json:"at"`
}

// ImportUsers runs a reconciliation under an import slot and the import
// timeout, then records the audit entry, metrics and event. source names
// the uploaded file when there is one.
func (s *Service) ImportUsers(ctx context.Context, source string, rows []MappedRow) (ImportResult, error) {
	if len(rows) == 0 {
		return ImportResult{}, newValidationError("users", "", "No user data provided")
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return ImportResult{}, err
	}
	defer s.limiter.Release()

	runCtx := ctx
	if s.importTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.importTimeout)
		defer cancel()
	}

	logger := logging.WithFields(ctx, "source", source, "rows", len(rows))
	logger.Info("import started")

	start := s.now()
	result := s.Reconcile(runCtx, rows)
	elapsed := s.now().Sub(start)

	logger.Info("import completed",
		"created", result.Created,
		"updated", result.Updated,
		"skipped", result.Skipped,
		"duration_ms", elapsed.Milliseconds(),
	)

	s.recorder.RecordImportRows(string(RowCreated), result.Created)
	s.recorder.RecordImportRows(string(RowUpdated), result.Updated)
	s.recorder.RecordImportRows(string(RowSkipped), result.Skipped)
	s.recorder.RecordImportDuration(elapsed)

	s.logAudit(ctx, ActionImport, result.Created+result.Updated, map[string]any{
		"source":  source,
		"created": result.Created,
		"updated": result.Updated,
		"skipped": result.Skipped,
	})
	s.publish(ctx, "users.imported", UsersImportedEvent{
		Actor:   actorFromContext(ctx),
		Source:  source,
		Created: result.Created,
		Updated: result.Updated,
		Skipped: result.Skipped,
		At:      s.now(),
	})

	return result, nil
}
