package core

// # Error Codes Reference
//
// User-facing errors carry a code that admins can quote to support.
//
// # Database Errors (DB001-DB007)
//
//	DB001 - Duplicate key: A user with this email already exists
//	        Patterns: "duplicate key"
//	DB002 - Unique constraint: This value must be unique but already exists
//	        Patterns: "unique constraint", "violates unique"
//	DB003 - Foreign key: Referenced studio does not exist
//	        Patterns: "foreign key constraint", "violates foreign key"
//	DB004 - Connection refused: Unable to connect to database
//	        Patterns: "connection refused"
//	DB005 - Connection reset: Database connection was interrupted
//	        Patterns: "connection reset"
//	DB006 - Timeout: Operation timed out
//	        Patterns: "timeout"
//	DB007 - Deadlock: Database was busy with conflicting operations
//	        Patterns: "deadlock"
//
// # Validation Errors (VAL001-VAL008)
//
//	VAL001 - Incomplete mapping        "please map all required fields"
//	VAL002 - Mapped column missing     "column not found"
//	VAL003 - Missing search term       "search term is required"
//	VAL004 - Bad search type           "invalid search type"
//	VAL005 - Bad id list               "no user ids provided", "invalid user ids"
//	VAL006 - Missing credentials       "username and password are required"
//	VAL007 - Bad user data             "no user data provided", "invalid user data"
//	VAL008 - Unknown request           "invalid intent", "unknown field"
//
// # File Errors (FILE001-FILE005)
//
//	FILE001 - File too large           "file too large"
//	FILE002 - Invalid CSV              "invalid csv"
//	FILE003 - Encoding error           "encoding error"
//	FILE004 - No file                  "no file provided"
//	FILE005 - Empty file               "empty file"
//
// # Import Errors (IMP001-IMP004)
//
//	IMP001 - System busy               "too many imports"
//	IMP002 - Upload expired            "upload not found"
//	IMP003 - Request cancelled         "context canceled"
//	IMP004 - Request timeout           "context deadline exceeded"
//
// # Authentication (AUTH001-AUTH002)
//
//	AUTH001 - Not logged in            "authentication required"
//	AUTH002 - Bad credentials          "invalid credentials"
//
// # Rate Limiting (RATE001)
//
//	RATE001 - Too many requests        "rate limit"
//
// ERR000 is the fallback when nothing matches; check the server log for the
// original error.
//
// Patterns are matched case-insensitively with strings.Contains and the first
// match wins, so specific patterns come before general ones.

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// Validation
	{"please map all required fields", UserMessage{
		Message: "Please map all required fields",
		Action:  "Select a column for every field before importing",
		Code:    "VAL001",
	}},
	{"column not found", UserMessage{
		Message: "A mapped column was not found in the file",
		Action:  "Check the column mapping against the file headers",
		Code:    "VAL002",
	}},
	{"search term is required", UserMessage{
		Message: "Search term is required",
		Action:  "Enter an email, phone number or name to search for",
		Code:    "VAL003",
	}},
	{"invalid search type", UserMessage{
		Message: "Invalid search type",
		Action:  "Search by email, phone or name",
		Code:    "VAL004",
	}},
	{"no user ids provided", UserMessage{
		Message: "No user IDs provided",
		Action:  "Select at least one user",
		Code:    "VAL005",
	}},
	{"invalid user ids", UserMessage{
		Message: "Invalid user IDs",
		Action:  "Reload the user list and select again",
		Code:    "VAL005",
	}},
	{"username and password are required", UserMessage{
		Message: "Username and password are required",
		Action:  "Enter both your username and password",
		Code:    "VAL006",
	}},
	{"no user data provided", UserMessage{
		Message: "No user data provided",
		Action:  "Upload a CSV file with at least one data row",
		Code:    "VAL007",
	}},
	{"invalid user data", UserMessage{
		Message: "Invalid user data",
		Action:  "Upload the file again",
		Code:    "VAL007",
	}},
	{"invalid intent", UserMessage{
		Message: "Invalid request",
		Action:  "Reload the page and try again",
		Code:    "VAL008",
	}},
	{"unknown field", UserMessage{
		Message: "Invalid request",
		Action:  "Reload the page and try again",
		Code:    "VAL008",
	}},

	// Authentication
	{"authentication required", UserMessage{
		Message: "You are not logged in",
		Action:  "Log in and try again",
		Code:    "AUTH001",
	}},
	{"invalid credentials", UserMessage{
		Message: "Invalid credentials",
		Action:  "Check your username and password",
		Code:    "AUTH002",
	}},

	// Import
	{"too many imports", UserMessage{
		Message: "System is busy processing other imports",
		Action:  "Please wait a moment and try again",
		Code:    "IMP001",
	}},
	{"upload not found", UserMessage{
		Message: "Upload not found",
		Action:  "The upload may have expired. Please upload the file again",
		Code:    "IMP002",
	}},
	{"context canceled", UserMessage{
		Message: "Request was cancelled",
		Action:  "Please try again",
		Code:    "IMP003",
	}},
	{"context deadline exceeded", UserMessage{
		Message: "Request timed out",
		Action:  "Try a smaller file or try again later",
		Code:    "IMP004",
	}},

	// Files
	{"file too large", UserMessage{
		Message: "File is too large",
		Action:  "Split the file into smaller chunks",
		Code:    "FILE001",
	}},
	{"invalid csv", UserMessage{
		Message: "File is not a valid CSV",
		Action:  "Ensure the file is comma-separated with a header row",
		Code:    "FILE002",
	}},
	{"encoding error", UserMessage{
		Message: "File contains invalid characters",
		Action:  "Save the file as UTF-8",
		Code:    "FILE003",
	}},
	{"no file provided", UserMessage{
		Message: "No file was selected",
		Action:  "Please select a CSV file to upload",
		Code:    "FILE004",
	}},
	{"empty file", UserMessage{
		Message: "The uploaded file is empty",
		Action:  "Please upload a CSV file with a header row",
		Code:    "FILE005",
	}},

	// Database constraints
	{"duplicate key", UserMessage{
		Message: "A user with this email already exists",
		Action:  "Search for the existing user instead",
		Code:    "DB001",
	}},
	{"unique constraint", UserMessage{
		Message: "This value must be unique but already exists",
		Action:  "Check for duplicate entries in your CSV",
		Code:    "DB002",
	}},
	{"violates unique", UserMessage{
		Message: "A duplicate value was found",
		Action:  "Check for duplicate entries in your CSV",
		Code:    "DB002",
	}},
	{"foreign key constraint", UserMessage{
		Message: "Referenced studio does not exist",
		Action:  "Reload the page and try again",
		Code:    "DB003",
	}},
	{"violates foreign key", UserMessage{
		Message: "Referenced studio does not exist",
		Action:  "Reload the page and try again",
		Code:    "DB003",
	}},

	// Database connectivity
	{"connection refused", UserMessage{
		Message: "Unable to connect to database",
		Action:  "Please try again in a few moments",
		Code:    "DB004",
	}},
	{"connection reset", UserMessage{
		Message: "Database connection was interrupted",
		Action:  "Please try again",
		Code:    "DB005",
	}},
	{"timeout", UserMessage{
		Message: "Operation timed out",
		Action:  "Please try again later",
		Code:    "DB006",
	}},
	{"deadlock", UserMessage{
		Message: "Database was busy with conflicting operations",
		Action:  "Please try again",
		Code:    "DB007",
	}},

	{"rate limit", UserMessage{
		Message: "Too many requests",
		Action:  "Please wait a moment before trying again",
		Code:    "RATE001",
	}},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message. The
// first matching pattern wins; unmatched errors get ERR000.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}
	return defaultMessage
}

// FormatUserError renders err as "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}
