// Package service contains the business logic.
//
// It sits between the handler and repository layers: it receives
// validated requests, performs the book operations against a BookStore
// and turns outcomes into tagged errors.
package service

import (
	"github.com/deppfellow/bookshelf/internal/repository"
	"github.com/deppfellow/bookshelf/internal/server"
)

type Services struct {
	Book *BookService
}

func NewServices(s *server.Server, repos *repository.Repositories) *Services {
	return &Services{
		Book: NewBookService(s, repos.Book),
	}
}
