package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/deppfellow/bookshelf/internal/errs"
	"github.com/deppfellow/bookshelf/internal/model/book"
	"github.com/deppfellow/bookshelf/internal/repository"
	"github.com/deppfellow/bookshelf/internal/server"
)

// BookService runs the five book operations against a BookStore.
//
// Requests arrive already validated. Absent books become 404s; any other
// store error is returned unchanged for the global error handler to turn
// into a 500.
type BookService struct {
	server *server.Server
	store  repository.BookStore
}

func NewBookService(s *server.Server, store repository.BookStore) *BookService {
	return &BookService{
		server: s,
		store:  store,
	}
}

func (s *BookService) ListBooks(ctx context.Context, _ *book.ListBooksRequest) ([]book.Book, error) {
	books, err := s.store.FindMany(ctx)
	if err != nil {
		return nil, err
	}
	if books == nil {
		books = []book.Book{}
	}
	return books, nil
}

func (s *BookService) GetBook(ctx context.Context, req *book.GetBookRequest) (*book.Book, error) {
	return s.findExisting(ctx, req.ID)
}

func (s *BookService) UpdateBook(ctx context.Context, req *book.UpdateBookRequest) (*book.Book, error) {
	existing, err := s.findExisting(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	updated, err := s.store.Update(ctx, existing.ID, req.Title)
	if errors.Is(err, repository.ErrBookNotFound) {
		return nil, notFound(req.ID)
	}
	if err != nil {
		return nil, err
	}

	s.logger().Info().Int64("book_id", updated.ID).Msg("book updated")

	return updated, nil
}

func (s *BookService) CreateBook(ctx context.Context, req *book.CreateBookRequest) (*book.Book, error) {
	created, err := s.store.Create(ctx, req.Title)
	if err != nil {
		return nil, err
	}

	s.logger().Info().Int64("book_id", created.ID).Msg("book created")

	return created, nil
}

func (s *BookService) DeleteBook(ctx context.Context, req *book.DeleteBookRequest) error {
	existing, err := s.findExisting(ctx, req.ID)
	if err != nil {
		return err
	}

	err = s.store.Delete(ctx, existing.ID)
	if errors.Is(err, repository.ErrBookNotFound) {
		return notFound(req.ID)
	}
	if err != nil {
		return err
	}

	s.logger().Info().Int64("book_id", existing.ID).Msg("book deleted")

	return nil
}

// findExisting resolves the raw path id to a stored book. Only a decimal
// integer, optionally surrounded by whitespace, names a book; anything else
// is a 404 like a missing one.
func (s *BookService) findExisting(ctx context.Context, rawID string) (*book.Book, error) {
	id, ok := parseID(rawID)
	if !ok {
		return nil, notFound(rawID)
	}

	b, err := s.store.FindUnique(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, notFound(rawID)
	}

	return b, nil
}

func (s *BookService) logger() *zerolog.Logger {
	if s.server == nil || s.server.Logger == nil {
		nop := zerolog.Nop()
		return &nop
	}
	return s.server.Logger
}

func parseID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

func notFound(rawID string) *errs.HTTPError {
	return errs.NewNotFoundError(book.NotFoundMessage(rawID), true)
}
