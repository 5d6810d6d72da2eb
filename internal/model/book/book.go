// Package book defines the Book entity and its request payloads.
package book

import "fmt"

// Book is the sole domain entity. ID is assigned by the store and never
// changes; Title is never empty once persisted.
type Book struct {
	ID    int64  `json:"id" db:"id" goqu:"skipinsert"`
	Title string `json:"title" db:"title"`
}

const (
	// MessageTitleRequiredForUpdate is returned when PUT /books/:id lacks a title.
	MessageTitleRequiredForUpdate = "A new title must be provided."

	// MessageTitleRequiredForCreate is returned when POST /books lacks a title.
	MessageTitleRequiredForCreate = "Title must be provided for a new book."
)

// NotFoundMessage formats the 404 message for the raw id path segment.
func NotFoundMessage(id string) string {
	return fmt.Sprintf("Book with id %s does not exist.", id)
}
