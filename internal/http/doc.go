// Package http provides HTTP handlers and middleware for the timetable API.
//
// The router exposes the following endpoints:
//   - POST /login: issues a session token. Body: {"email","password"}. Response:
//     {"token","expires_at"} with the token also surfaced via the
//     `X-Session-Token` header and a `session_token` cookie.
//   - POST /logout: revokes the current session token extracted from the
//     Authorization header or session cookie. Returns 204 No Content and clears
//     the cookie.
//   - GET /sessions?week=YYYY-MM-DD, POST /sessions, GET /sessions/{id},
//     PUT /sessions/{id}, DELETE /sessions/{id}: recurring class session
//     endpoints exchanging the `sessionDTO` payload defined in
//     session_handler.go. Weekly listings include the concrete occurrences
//     expanded for the requested Monday anchored week. Conflicting writes are
//     rejected with 409 and a structured list of conflict records.
//   - GET /subjects, POST /subjects, PUT /subjects/{id}, DELETE /subjects/{id}:
//     subject catalog endpoints exchanging the `subjectDTO` payload defined in
//     subject_handler.go. Listing is available to any authenticated principal
//     while mutations require admin privileges.
//   - GET /instructors, POST /instructors, PUT /instructors/{id},
//     DELETE /instructors/{id}: administrator controlled account management
//     endpoints exchanging the `instructorDTO` payload defined in
//     instructor_handler.go.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http
