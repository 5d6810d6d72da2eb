package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deppfellow/bookshelf/internal/errs"
	"github.com/deppfellow/bookshelf/internal/model/book"
	"github.com/deppfellow/bookshelf/internal/repository"
)

var errStoreDown = errors.New("connection refused")

// failingStore fails every call.
type failingStore struct{}

func (failingStore) FindMany(context.Context) ([]book.Book, error) { return nil, errStoreDown }
func (failingStore) FindUnique(context.Context, int64) (*book.Book, error) {
	return nil, errStoreDown
}
func (failingStore) Create(context.Context, string) (*book.Book, error) { return nil, errStoreDown }
func (failingStore) Update(context.Context, int64, string) (*book.Book, error) {
	return nil, errStoreDown
}
func (failingStore) Delete(context.Context, int64) error { return errStoreDown }

func newService(t *testing.T, titles ...string) (*BookService, *repository.MemoryBookRepository) {
	t.Helper()

	store := repository.NewMemoryBookRepository()
	for _, title := range titles {
		_, err := store.Create(context.Background(), title)
		require.NoError(t, err)
	}

	return NewBookService(nil, store), store
}

func requireNotFound(t *testing.T, err error, rawID string) {
	t.Helper()

	var httpErr *errs.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusNotFound, httpErr.Status)
	assert.Equal(t, "Book with id "+rawID+" does not exist.", httpErr.Message)
}

func TestListBooks(t *testing.T) {
	svc, _ := newService(t, "Dune", "Emma", "Ulysses")

	books, err := svc.ListBooks(context.Background(), &book.ListBooksRequest{})
	require.NoError(t, err)

	assert.Equal(t, []book.Book{
		{ID: 1, Title: "Dune"},
		{ID: 2, Title: "Emma"},
		{ID: 3, Title: "Ulysses"},
	}, books)
}

func TestListBooks_Empty(t *testing.T) {
	svc, _ := newService(t)

	books, err := svc.ListBooks(context.Background(), &book.ListBooksRequest{})
	require.NoError(t, err)
	assert.NotNil(t, books)
	assert.Empty(t, books)
}

func TestGetBook(t *testing.T) {
	svc, _ := newService(t, "Dune")

	found, err := svc.GetBook(context.Background(), &book.GetBookRequest{ID: "1"})
	require.NoError(t, err)
	assert.Equal(t, &book.Book{ID: 1, Title: "Dune"}, found)
}

func TestGetBook_TrimsWhitespace(t *testing.T) {
	svc, _ := newService(t, "Dune")

	found, err := svc.GetBook(context.Background(), &book.GetBookRequest{ID: " 1 "})
	require.NoError(t, err)
	assert.Equal(t, int64(1), found.ID)
}

func TestGetBook_NotFound(t *testing.T) {
	svc, _ := newService(t, "Dune")

	for _, rawID := range []string{"999", "abc", "1.5", ""} {
		t.Run(rawID, func(t *testing.T) {
			_, err := svc.GetBook(context.Background(), &book.GetBookRequest{ID: rawID})
			requireNotFound(t, err, rawID)
		})
	}
}

func TestUpdateBook(t *testing.T) {
	svc, store := newService(t, "Old Title")

	updated, err := svc.UpdateBook(context.Background(), &book.UpdateBookRequest{ID: "1", Title: "New Title"})
	require.NoError(t, err)
	assert.Equal(t, &book.Book{ID: 1, Title: "New Title"}, updated)

	stored, err := store.FindUnique(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "New Title", stored.Title)
}

func TestUpdateBook_NotFound(t *testing.T) {
	svc, store := newService(t, "Dune")

	_, err := svc.UpdateBook(context.Background(), &book.UpdateBookRequest{ID: "42", Title: "Valid Title"})
	requireNotFound(t, err, "42")

	books, err := store.FindMany(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []book.Book{{ID: 1, Title: "Dune"}}, books)
}

func TestCreateBook(t *testing.T) {
	svc, _ := newService(t, "Dune")

	created, err := svc.CreateBook(context.Background(), &book.CreateBookRequest{Title: "My Book"})
	require.NoError(t, err)
	assert.Equal(t, &book.Book{ID: 2, Title: "My Book"}, created)

	found, err := svc.GetBook(context.Background(), &book.GetBookRequest{ID: "2"})
	require.NoError(t, err)
	assert.Equal(t, created, found)
}

func TestDeleteBook(t *testing.T) {
	svc, _ := newService(t, "Dune", "Emma")

	require.NoError(t, svc.DeleteBook(context.Background(), &book.DeleteBookRequest{ID: "1"}))

	_, err := svc.GetBook(context.Background(), &book.GetBookRequest{ID: "1"})
	requireNotFound(t, err, "1")

	books, err := svc.ListBooks(context.Background(), &book.ListBooksRequest{})
	require.NoError(t, err)
	assert.Equal(t, []book.Book{{ID: 2, Title: "Emma"}}, books)
}

func TestDeleteBook_NotFound(t *testing.T) {
	svc, _ := newService(t, "Dune")

	err := svc.DeleteBook(context.Background(), &book.DeleteBookRequest{ID: "7"})
	requireNotFound(t, err, "7")

	books, err := svc.ListBooks(context.Background(), &book.ListBooksRequest{})
	require.NoError(t, err)
	assert.Len(t, books, 1)
}

func TestStoreFailuresPropagate(t *testing.T) {
	svc := NewBookService(nil, failingStore{})
	ctx := context.Background()

	_, err := svc.ListBooks(ctx, &book.ListBooksRequest{})
	assert.ErrorIs(t, err, errStoreDown)

	_, err = svc.GetBook(ctx, &book.GetBookRequest{ID: "1"})
	assert.ErrorIs(t, err, errStoreDown)

	_, err = svc.UpdateBook(ctx, &book.UpdateBookRequest{ID: "1", Title: "x"})
	assert.ErrorIs(t, err, errStoreDown)

	_, err = svc.CreateBook(ctx, &book.CreateBookRequest{Title: "x"})
	assert.ErrorIs(t, err, errStoreDown)

	assert.ErrorIs(t, svc.DeleteBook(ctx, &book.DeleteBookRequest{ID: "1"}), errStoreDown)

	var httpErr *errs.HTTPError
	assert.False(t, errors.As(err, &httpErr))
}

func TestParseID(t *testing.T) {
	for raw, want := range map[string]int64{
		"12":     12,
		"  12\n": 12,
		"-3":     -3,
		"007":    7,
	} {
		id, ok := parseID(raw)
		assert.True(t, ok, raw)
		assert.Equal(t, want, id, raw)
	}

	// Only decimal integers name a book; other numeric spellings do not.
	for _, raw := range []string{"", "12abc", "1.0", "1e0", "0x1", "Infinity", "99999999999999999999"} {
		_, ok := parseID(raw)
		assert.False(t, ok, raw)
	}
}

func TestGetBook_NonDecimalIDs(t *testing.T) {
	svc, _ := newService(t, "Dune")

	for _, raw := range []string{"1.0", "1e0", "0x1"} {
		_, err := svc.GetBook(context.Background(), &book.GetBookRequest{ID: raw})
		requireNotFound(t, err, raw)
	}
}
