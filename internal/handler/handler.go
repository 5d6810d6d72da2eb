// Package handler is the HTTP layer behind the router.
//
// Handlers bind and validate the request payload through the validation
// package, call the service layer and write the response. Errors are
// returned to Echo and rendered by the global error handler.
package handler
