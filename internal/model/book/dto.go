package book

import "github.com/deppfellow/bookshelf/internal/validation"

// ListBooksRequest carries no input; GET /books is an unfiltered scan.
type ListBooksRequest struct{}

func (r *ListBooksRequest) Validate() error {
	return nil
}

// GetBookRequest is bound from GET /books/:id.
//
// ID stays a raw string: a value that is not a number is a lookup that
// finds nothing, not a validation failure.
type GetBookRequest struct {
	ID string `param:"id" json:"-"`
}

func (r *GetBookRequest) Validate() error {
	return nil
}

// UpdateBookRequest is bound from PUT /books/:id.
type UpdateBookRequest struct {
	ID    string `param:"id" json:"-"`
	Title string `json:"title" validate:"required"`
}

func (r *UpdateBookRequest) Validate() error {
	return validation.Struct(r, MessageTitleRequiredForUpdate)
}

// CreateBookRequest is bound from POST /books.
type CreateBookRequest struct {
	Title string `json:"title" validate:"required"`
}

func (r *CreateBookRequest) Validate() error {
	return validation.Struct(r, MessageTitleRequiredForCreate)
}

// DeleteBookRequest is bound from DELETE /books/:id.
type DeleteBookRequest struct {
	ID string `param:"id" json:"-"`
}

func (r *DeleteBookRequest) Validate() error {
	return nil
}
