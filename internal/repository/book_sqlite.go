package repository

import (
	"context"
	"database/sql"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3" // dialect registration
	"github.com/pkg/errors"

	"github.com/deppfellow/bookshelf/internal/model/book"
)

const dialectSQLite = "sqlite3"

// SQLiteBookRepository stores books in a SQLite file through database/sql.
//
// The sqlite3 dialect has no RETURNING support, so writes report the row
// through LastInsertId and RowsAffected.
type SQLiteBookRepository struct {
	db *goqu.Database
}

func NewSQLiteBookRepository(db *sql.DB) *SQLiteBookRepository {
	return &SQLiteBookRepository{db: goqu.New(dialectSQLite, db)}
}

func (r *SQLiteBookRepository) FindMany(ctx context.Context) ([]book.Book, error) {
	books := []book.Book{}

	err := r.db.From(booksTable).
		Order(goqu.I(colID).Asc()).
		Prepared(true).
		ScanStructsContext(ctx, &books)
	if err != nil {
		return nil, errors.Wrap(err, "querying books")
	}

	return books, nil
}

func (r *SQLiteBookRepository) FindUnique(ctx context.Context, id int64) (*book.Book, error) {
	var b book.Book

	found, err := r.db.From(booksTable).
		Where(goqu.C(colID).Eq(id)).
		Prepared(true).
		ScanStructContext(ctx, &b)
	if err != nil {
		return nil, errors.Wrapf(err, "querying book %d", id)
	}
	if !found {
		return nil, nil
	}

	return &b, nil
}

func (r *SQLiteBookRepository) Create(ctx context.Context, title string) (*book.Book, error) {
	res, err := r.db.Insert(booksTable).
		Rows(goqu.Record{colTitle: title}).
		Prepared(true).
		Executor().
		ExecContext(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "inserting book")
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, errors.Wrap(err, "reading inserted book id")
	}

	return &book.Book{ID: id, Title: title}, nil
}

func (r *SQLiteBookRepository) Update(ctx context.Context, id int64, title string) (*book.Book, error) {
	res, err := r.db.Update(booksTable).
		Set(goqu.Record{colTitle: title}).
		Where(goqu.C(colID).Eq(id)).
		Prepared(true).
		Executor().
		ExecContext(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "updating book %d", id)
	}

	if err := requireAffected(res); err != nil {
		return nil, err
	}

	return &book.Book{ID: id, Title: title}, nil
}

func (r *SQLiteBookRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.Delete(booksTable).
		Where(goqu.C(colID).Eq(id)).
		Prepared(true).
		Executor().
		ExecContext(ctx)
	if err != nil {
		return errors.Wrapf(err, "deleting book %d", id)
	}

	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "reading affected rows")
	}
	if n == 0 {
		return ErrBookNotFound
	}
	return nil
}
