// Package core provides the business logic for the studio user directory.
//
// This package contains all domain logic independent of any UI or transport
// layer. It is used by the web handlers, the usersctl CLI and the tests
// without modification.
//
// # Architecture
//
// The package is organized around a few concepts:
//
//   - Column mapping: an uploaded CSV's headers are mapped onto five
//     canonical fields (first name, last name, phone, email, studio).
//   - Reconciliation: mapped rows are folded into create, update or skip
//     outcomes against the existing users, keyed by email.
//   - Queries: paginated listing, substring search and CSV export, each
//     optionally scoped to a studio.
//   - Commands: every action the admin UI can request is one variant of the
//     sealed [Command] interface and is run by [Service.Execute].
//   - Sessions: admins log in with a username and password and receive a
//     session token; the [Session] travels in the request context.
//
// # Import Flow
//
//  1. The CSV is parsed with [ReadCSV] (BOM skipped, invalid UTF-8 replaced)
//     and staged under an upload ID by [Service.StageUpload].
//  2. [Service.PreviewUpload] returns headers, sample rows, a suggested
//     [ColumnMapping] and, once a full mapping is known, a forecast.
//  3. [Service.ImportStaged] validates the mapping, projects the rows and
//     runs [Service.Reconcile].
//
// # Reconciliation Policy
//
// For each row, after phone normalization and studio resolution:
//
//   - no user with that email: create it
//   - user exists with an empty phone and the row has a phone: fill in the
//     phone and studio
//   - anything else: skip
//
// The policy is applied by a single atomic upsert per row, so concurrent
// imports cannot create duplicate users or studios. [Decide] states the same
// policy in Go and is used for previews.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - DB001-DB007: Database errors (duplicates, constraints, connections)
//   - VAL001-VAL008: Validation errors (mapping, search, ids, credentials)
//   - FILE001-FILE005: File errors (size, encoding, format)
//   - IMP001-IMP004: Import errors (busy, expired upload, cancelled, timeout)
//   - AUTH001-AUTH002: Authentication errors
//   - RATE001: Request throttling
//
// # Audit Logging
//
// Logins, imports and deletions are recorded in the audit log with a
// severity. Audit failures are logged and never fail the operation.
package core
