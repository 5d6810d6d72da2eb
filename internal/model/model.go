// Package model holds the domain entities and the request payloads bound
// from HTTP requests. Each domain lives in its own sub-package.
package model
