// Package http exposes the schedule board over a JSON API for the presentation layer.
//
// The router serves the following endpoints:
//   - GET /board: the whole board document. The user registry is included for
//     administrators only.
//   - POST /sync: runs one reconciliation tick and returns its source ("remote" or
//     "cache") together with the refreshed board. Rate limited.
//   - POST /session: logs in. Body: {"credential"} holding a provider ID token, or
//     {"email","name","photo"}. DELETE /session logs out.
//   - POST /admin-view, DELETE /admin-view: opens or closes the editing view.
//     Opening requires MANAGER or ADMIN.
//   - GET /schedule[?day=N]: the week, or one day (0 is Monday), ordered by start time
//     with rating summaries. POST /schedule creates a class, PUT /schedule/{id}
//     updates one, DELETE /schedule/{id} removes one. Writes accept "notify" to
//     broadcast the change.
//   - PUT /header: replaces the header document (ADMIN).
//   - PUT /permissions/{email} with {"role"} grants, DELETE /permissions/{email}
//     revokes (ADMIN).
//   - GET /notifications, POST /notifications with {"message","type"}.
//   - GET /ratings (feed with resolved class names), POST /ratings with
//     {"classId","stars","comment"}.
//   - GET /healthz: 200 with the cached collections and their last write time, or
//     503 when the cache database does not answer.
//
// Errors are JSON {"message","error_code","errors"} with Vietnamese messages.
package http
