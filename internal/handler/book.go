package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/bookshelf/internal/model/book"
	"github.com/deppfellow/bookshelf/internal/server"
	"github.com/deppfellow/bookshelf/internal/service"
)

// BookHandler serves the /books resource.
type BookHandler struct {
	Handler
	books *service.BookService
}

func NewBookHandler(s *server.Server, books *service.BookService) *BookHandler {
	return &BookHandler{
		Handler: NewHandler(s),
		books:   books,
	}
}

func (h *BookHandler) ListBooks(c echo.Context, req *book.ListBooksRequest) ([]book.Book, error) {
	return h.books.ListBooks(c.Request().Context(), req)
}

func (h *BookHandler) GetBook(c echo.Context, req *book.GetBookRequest) (*book.Book, error) {
	return h.books.GetBook(c.Request().Context(), req)
}

func (h *BookHandler) UpdateBook(c echo.Context, req *book.UpdateBookRequest) (*book.Book, error) {
	return h.books.UpdateBook(c.Request().Context(), req)
}

func (h *BookHandler) CreateBook(c echo.Context, req *book.CreateBookRequest) (*book.Book, error) {
	return h.books.CreateBook(c.Request().Context(), req)
}

func (h *BookHandler) DeleteBook(c echo.Context, req *book.DeleteBookRequest) error {
	return h.books.DeleteBook(c.Request().Context(), req)
}
