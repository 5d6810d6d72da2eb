// Package validation binds and validates request payloads.
//
// Payloads declare their rules with go-playground/validator struct tags and
// implement Validatable. Failures are returned as *errs.HTTPError values
// carrying field-level details the client can act on.
package validation
