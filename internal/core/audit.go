package core

import (
	"context"
	"time"

	"github.com/JonMunkholm/StudioUsers/internal/logging"
)

// AuditAction represents the type of action being audited.
type AuditAction string

const (
	ActionLogin       AuditAction = "admin_login"
	ActionLoginFailed AuditAction = "admin_login_failed"
	ActionLogout      AuditAction = "admin_logout"
	ActionImport      AuditAction = "users_import"
	ActionDelete      AuditAction = "users_delete"
	ActionExport      AuditAction = "users_export"
)

// AuditSeverity represents the severity level of an audit entry.
type AuditSeverity string

const (
	SeverityLow    AuditSeverity = "low"
	SeverityMedium AuditSeverity = "medium"
	SeverityHigh   AuditSeverity = "high"
)

// AuditEntry represents a single audit log entry.
type AuditEntry struct {
	ID           string         `json:"id"`
	Action       AuditAction    `json:"action"`
	Severity     AuditSeverity  `json:"severity"`
	Actor        string         `json:"actor,omitempty"`
	IPAddress    string         `json:"ipAddress,omitempty"`
	UserAgent    string         `json:"userAgent,omitempty"`
	RowsAffected int            `json:"rowsAffected,omitempty"`
	Detail       map[string]any `json:"detail,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
}

// AuditPage is one page of the audit log, newest first.
type AuditPage struct {
	Entries    []AuditEntry `json:"entries"`
	TotalCount int          `json:"totalCount"`
	Page       int          `json:"page"`
	PageSize   int          `json:"pageSize"`
}

// determineSeverity returns the appropriate severity for an action.
func determineSeverity(action AuditAction) AuditSeverity {
	switch action {
	case ActionImport, ActionDelete:
		return SeverityHigh
	case ActionLoginFailed, ActionExport:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// logAudit records an audit entry. The actor, IP address and user agent
// come from ctx. Failures are logged and otherwise ignored.
func (s *Service) logAudit(ctx context.Context, action AuditAction, rows int, detail map[string]any) {
	entry := AuditEntry{
		Action:       action,
		Severity:     determineSeverity(action),
		Actor:        actorFromContext(ctx),
		IPAddress:    GetIPAddressFromContext(ctx),
		UserAgent:    GetUserAgentFromContext(ctx),
		RowsAffected: rows,
		Detail:       detail,
	}
	if actor, ok := detail["username"].(string); ok && entry.Actor == "" {
		entry.Actor = actor
	}

	// Audit writes must outlive a cancelled request.
	auditCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if _, err := s.store.InsertAudit(auditCtx, entry); err != nil {
		logging.FromContext(ctx).Warn("audit log write failed",
			"action", action,
			"error", err,
		)
	}
}

// ListAuditLog returns a page of audit entries.
func (s *Service) ListAuditLog(ctx context.Context, page, pageSize int) (AuditPage, error) {
	page, pageSize, offset := pageWindow(page, pageSize)

	entries, total, err := s.store.ListAudit(ctx, pageSize, offset)
	if err != nil {
		return AuditPage{}, err
	}
	return AuditPage{Entries: entries, TotalCount: total, Page: page, PageSize: pageSize}, nil
}
