package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/deppfellow/bookshelf/internal/model/book"
)

// MemoryBookRepository keeps books in process memory. Ids start at 1 and
// are never reused.
type MemoryBookRepository struct {
	mu     sync.RWMutex
	books  map[int64]book.Book
	nextID int64
}

func NewMemoryBookRepository() *MemoryBookRepository {
	return &MemoryBookRepository{
		books:  make(map[int64]book.Book),
		nextID: 1,
	}
}

func (r *MemoryBookRepository) FindMany(_ context.Context) ([]book.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	books := make([]book.Book, 0, len(r.books))
	for _, b := range r.books {
		books = append(books, b)
	}
	sort.Slice(books, func(i, j int) bool { return books[i].ID < books[j].ID })

	return books, nil
}

func (r *MemoryBookRepository) FindUnique(_ context.Context, id int64) (*book.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.books[id]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (r *MemoryBookRepository) Create(_ context.Context, title string) (*book.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b := book.Book{ID: r.nextID, Title: title}
	r.books[b.ID] = b
	r.nextID++

	return &b, nil
}

func (r *MemoryBookRepository) Update(_ context.Context, id int64, title string) (*book.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.books[id]
	if !ok {
		return nil, ErrBookNotFound
	}
	b.Title = title
	r.books[id] = b

	return &b, nil
}

func (r *MemoryBookRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.books[id]; !ok {
		return ErrBookNotFound
	}
	delete(r.books, id)

	return nil
}
