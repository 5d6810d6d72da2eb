// Package middleware holds the Echo middleware chain and the global error
// handler: request ids, request-scoped logging, CORS, secure headers, rate
// limiting, New Relic tracing and panic recovery.
package middleware
