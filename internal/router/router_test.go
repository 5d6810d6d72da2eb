package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deppfellow/bookshelf/internal/config"
	"github.com/deppfellow/bookshelf/internal/database"
	"github.com/deppfellow/bookshelf/internal/errs"
	"github.com/deppfellow/bookshelf/internal/handler"
	"github.com/deppfellow/bookshelf/internal/model/book"
	"github.com/deppfellow/bookshelf/internal/repository"
	"github.com/deppfellow/bookshelf/internal/server"
	"github.com/deppfellow/bookshelf/internal/service"
)

type testApp struct {
	router *echo.Echo
	store  repository.BookStore
}

func newTestServer(t *testing.T, driver string) *server.Server {
	t.Helper()

	logger := zerolog.Nop()
	cfg := &config.Config{
		Primary: config.Primary{Env: "test"},
		Server: config.ServerConfig{
			Port:               "0",
			CORSAllowedOrigins: []string{"*"},
		},
		Database: config.DatabaseConfig{
			Driver: driver,
			Path:   filepath.Join(t.TempDir(), "books.db"),
		},
		Observability: config.DefaultObservabilityConfig(),
	}

	db, err := database.New(cfg, &logger, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return &server.Server{Config: cfg, Logger: &logger, DB: db}
}

func newApp(t *testing.T, driver string, titles ...string) *testApp {
	t.Helper()

	s := newTestServer(t, driver)
	repos := repository.NewRepositories(s)
	for _, title := range titles {
		_, err := repos.Book.Create(context.Background(), title)
		require.NoError(t, err)
	}

	services := service.NewServices(s, repos)
	handlers := handler.NewHandlers(s, services)

	return &testApp{
		router: NewRouter(s, handlers),
		store:  repos.Book,
	}
}

func (a *testApp) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}

	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (a *testApp) books(t *testing.T) []book.Book {
	t.Helper()

	books, err := a.store.FindMany(context.Background())
	require.NoError(t, err)
	return books
}

// forEachDriver runs fn against the stores that need no external service.
func forEachDriver(t *testing.T, fn func(t *testing.T, driver string)) {
	for _, driver := range []string{config.DriverMemory, config.DriverSQLite} {
		t.Run(driver, func(t *testing.T) { fn(t, driver) })
	}
}

func TestListBooks(t *testing.T) {
	forEachDriver(t, func(t *testing.T, driver string) {
		app := newApp(t, driver, "Dune", "Emma")

		rec := app.do(t, http.MethodGet, "/books", "")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []book.Book{{ID: 1, Title: "Dune"}, {ID: 2, Title: "Emma"}}, decode[[]book.Book](t, rec))
	})
}

func TestListBooks_EmptyIsArray(t *testing.T) {
	app := newApp(t, config.DriverMemory)

	rec := app.do(t, http.MethodGet, "/books", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestGetBook(t *testing.T) {
	forEachDriver(t, func(t *testing.T, driver string) {
		app := newApp(t, driver, "Dune")

		rec := app.do(t, http.MethodGet, "/books/1", "")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"id":1,"title":"Dune"}`, rec.Body.String())
	})
}

func TestGetBook_NotFound(t *testing.T) {
	forEachDriver(t, func(t *testing.T, driver string) {
		app := newApp(t, driver, "Dune")

		for _, id := range []string{"999", "abc"} {
			rec := app.do(t, http.MethodGet, "/books/"+id, "")

			require.Equal(t, http.StatusNotFound, rec.Code)
			body := decode[errs.HTTPError](t, rec)
			assert.Equal(t, "Book with id "+id+" does not exist.", body.Message)
			assert.Equal(t, "NOT_FOUND", body.Code)
		}
	})
}

func TestUpdateBook(t *testing.T) {
	forEachDriver(t, func(t *testing.T, driver string) {
		app := newApp(t, driver, "Old Title")

		rec := app.do(t, http.MethodPut, "/books/1", `{"title":"New Title"}`)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, book.Book{ID: 1, Title: "New Title"}, decode[book.Book](t, rec))
		assert.Equal(t, []book.Book{{ID: 1, Title: "New Title"}}, app.books(t))
	})
}

func TestUpdateBook_BodyCannotChangeID(t *testing.T) {
	app := newApp(t, config.DriverMemory, "Old Title")

	rec := app.do(t, http.MethodPut, "/books/1", `{"id":"7","title":"New Title"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, book.Book{ID: 1, Title: "New Title"}, decode[book.Book](t, rec))
}

func TestUpdateBook_TitleRequired(t *testing.T) {
	forEachDriver(t, func(t *testing.T, driver string) {
		for name, body := range map[string]string{
			"empty":  `{"title":""}`,
			"absent": `{}`,
		} {
			t.Run(name, func(t *testing.T) {
				app := newApp(t, driver, "Dune")

				// Validation fails before the store is consulted, so a
				// missing id still answers 400.
				for _, path := range []string{"/books/1", "/books/999"} {
					rec := app.do(t, http.MethodPut, path, body)

					require.Equal(t, http.StatusBadRequest, rec.Code)
					resp := decode[errs.HTTPError](t, rec)
					assert.Equal(t, "A new title must be provided.", resp.Message)
					assert.Equal(t, []errs.FieldError{{Field: "title", Error: "is required"}}, resp.Errors)
				}

				assert.Equal(t, []book.Book{{ID: 1, Title: "Dune"}}, app.books(t))
			})
		}
	})
}

func TestUpdateBook_NotFound(t *testing.T) {
	forEachDriver(t, func(t *testing.T, driver string) {
		app := newApp(t, driver, "Dune")

		rec := app.do(t, http.MethodPut, "/books/42", `{"title":"Valid Title"}`)

		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Book with id 42 does not exist.", decode[errs.HTTPError](t, rec).Message)
		assert.Equal(t, []book.Book{{ID: 1, Title: "Dune"}}, app.books(t))
	})
}

func TestCreateBook(t *testing.T) {
	forEachDriver(t, func(t *testing.T, driver string) {
		app := newApp(t, driver, "Dune")

		rec := app.do(t, http.MethodPost, "/books", `{"title":"My Book"}`)

		require.Equal(t, http.StatusCreated, rec.Code)
		created := decode[book.Book](t, rec)
		assert.Equal(t, "My Book", created.Title)
		assert.Equal(t, int64(2), created.ID)

		rec = app.do(t, http.MethodGet, "/books", "")
		assert.Len(t, decode[[]book.Book](t, rec), 2)
	})
}

func TestCreateBook_TitleRequired(t *testing.T) {
	forEachDriver(t, func(t *testing.T, driver string) {
		app := newApp(t, driver)

		for _, body := range []string{`{"title":""}`, `{}`, ``} {
			rec := app.do(t, http.MethodPost, "/books", body)

			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "Title must be provided for a new book.", decode[errs.HTTPError](t, rec).Message)
		}

		assert.Empty(t, app.books(t))
	})
}

func TestCreateBook_MalformedJSON(t *testing.T) {
	app := newApp(t, config.DriverMemory)

	rec := app.do(t, http.MethodPost, "/books", `{"title":`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotEmpty(t, decode[errs.HTTPError](t, rec).Message)
	assert.Empty(t, app.books(t))
}

func TestDeleteBook(t *testing.T) {
	forEachDriver(t, func(t *testing.T, driver string) {
		app := newApp(t, driver, "Dune", "Emma")

		rec := app.do(t, http.MethodDelete, "/books/1", "")

		require.Equal(t, http.StatusNoContent, rec.Code)
		assert.Zero(t, rec.Body.Len())

		rec = app.do(t, http.MethodGet, "/books/1", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)

		assert.Equal(t, []book.Book{{ID: 2, Title: "Emma"}}, app.books(t))
	})
}

func TestDeleteBook_NotFound(t *testing.T) {
	forEachDriver(t, func(t *testing.T, driver string) {
		app := newApp(t, driver, "Dune")

		rec := app.do(t, http.MethodDelete, "/books/5", "")

		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Book with id 5 does not exist.", decode[errs.HTTPError](t, rec).Message)
		assert.Len(t, app.books(t), 1)
	})
}

func TestConcurrentCreates(t *testing.T) {
	app := newApp(t, config.DriverMemory)

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec := app.do(t, http.MethodPost, "/books", `{"title":"Parallel"}`)
			assert.Equal(t, http.StatusCreated, rec.Code)
		}()
	}
	wg.Wait()

	books := app.books(t)
	require.Len(t, books, 20)
	for i, b := range books {
		assert.Equal(t, int64(i+1), b.ID)
	}
}

func TestUnknownRoute(t *testing.T) {
	app := newApp(t, config.DriverMemory)

	rec := app.do(t, http.MethodGet, "/authors", "")

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Route not found", decode[errs.HTTPError](t, rec).Message)
}

func TestResponsesCarryRequestID(t *testing.T) {
	app := newApp(t, config.DriverMemory)

	rec := app.do(t, http.MethodGet, "/books", "")

	assert.Len(t, rec.Header().Get("X-Request-ID"), 36)
}

func TestStatus(t *testing.T) {
	forEachDriver(t, func(t *testing.T, driver string) {
		app := newApp(t, driver)

		rec := app.do(t, http.MethodGet, "/status", "")

		require.Equal(t, http.StatusOK, rec.Code)
		body := decode[map[string]any](t, rec)
		assert.Equal(t, "healthy", body["status"])
		assert.Equal(t, driver, body["driver"])
	})
}

func TestDocs(t *testing.T) {
	app := newApp(t, config.DriverMemory)

	rec := app.do(t, http.MethodGet, "/docs", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/static/openapi.json")
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))

	rec = app.do(t, http.MethodGet, "/static/openapi.json", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "3.0.3", decode[map[string]any](t, rec)["openapi"])
}
