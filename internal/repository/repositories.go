package repository

import (
	"github.com/deppfellow/bookshelf/internal/server"
)

// Repositories is the container handed to the service layer.
type Repositories struct {
	Book BookStore
}

// NewRepositories picks the BookStore matching the connected database and
// wraps it in the Redis cache when enabled.
func NewRepositories(s *server.Server) *Repositories {
	var store BookStore

	switch {
	case s.DB != nil && s.DB.Pool != nil:
		store = NewPostgresBookRepository(s.DB.Pool)
	case s.DB != nil && s.DB.SQL != nil:
		store = NewSQLiteBookRepository(s.DB.SQL)
	default:
		store = NewMemoryBookRepository()
	}

	if s.Config.Redis.CacheEnabled && s.Redis != nil {
		s.Logger.Info().Dur("ttl", s.Config.Redis.CacheTTLDuration()).Msg("book cache enabled")
		store = NewCachedBookRepository(store, s.Redis, s.Config.Redis.CacheTTLDuration(), s.Logger)
	}

	return &Repositories{Book: store}
}

var (
	_ BookStore = (*PostgresBookRepository)(nil)
	_ BookStore = (*SQLiteBookRepository)(nil)
	_ BookStore = (*MemoryBookRepository)(nil)
	_ BookStore = (*CachedBookRepository)(nil)
)

