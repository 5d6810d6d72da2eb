// Package repository holds the BookStore implementations.
//
// Each store owns its queries and hides the engine behind BookStore, so the
// service layer never sees SQL, Redis or driver types.
package repository

import (
	"context"
	"errors"

	"github.com/deppfellow/bookshelf/internal/model/book"
)

const (
	booksTable = "books"
	colID      = "id"
	colTitle   = "title"
)

// ErrBookNotFound is returned by Update and Delete when no row matches the id.
var ErrBookNotFound = errors.New("book not found")

// BookStore is the persistence contract for books.
//
// FindMany returns books in ascending id order. FindUnique returns
// (nil, nil) when the book does not exist.
type BookStore interface {
	FindMany(ctx context.Context) ([]book.Book, error)
	FindUnique(ctx context.Context, id int64) (*book.Book, error)
	Create(ctx context.Context, title string) (*book.Book, error)
	Update(ctx context.Context, id int64, title string) (*book.Book, error)
	Delete(ctx context.Context, id int64) error
}
