// Package errs defines the error types returned to API clients.
//
// Every failure that reaches the HTTP layer is expressed as an *HTTPError
// carrying a machine-readable code, a human-readable message and the status
// code the global error handler writes. Field-level validation errors and
// optional client actions ride along on the same type.
package errs
