package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/bookshelf/internal/handler"
)

func registerBookRoutes(r *echo.Echo, h *handler.Handlers) {
	books := h.Book
	g := r.Group("/books")

	g.GET("", handler.Handle(books.Handler, books.ListBooks, http.StatusOK))
	g.POST("", handler.Handle(books.Handler, books.CreateBook, http.StatusCreated))
	g.GET("/:id", handler.Handle(books.Handler, books.GetBook, http.StatusOK))
	g.PUT("/:id", handler.Handle(books.Handler, books.UpdateBook, http.StatusOK))
	g.DELETE("/:id", handler.HandleNoContent(books.Handler, books.DeleteBook, http.StatusNoContent))
}
