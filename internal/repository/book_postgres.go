package repository

import (
	"context"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	"github.com/deppfellow/bookshelf/internal/model/book"
)

const dialectPostgres = "postgres"

// PostgresBookRepository stores books in Postgres through a pgx pool.
// Statements are built with goqu using numbered placeholders.
type PostgresBookRepository struct {
	pool    *pgxpool.Pool
	builder goqu.DialectWrapper
}

func NewPostgresBookRepository(pool *pgxpool.Pool) *PostgresBookRepository {
	return &PostgresBookRepository{
		pool:    pool,
		builder: goqu.Dialect(dialectPostgres),
	}
}

func (r *PostgresBookRepository) FindMany(ctx context.Context) ([]book.Book, error) {
	query, args, err := r.builder.
		From(booksTable).
		Select(colID, colTitle).
		Order(goqu.I(colID).Asc()).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, errors.Wrap(err, "building find books query")
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "querying books")
	}

	books, err := pgx.CollectRows(rows, pgx.RowToStructByName[book.Book])
	if err != nil {
		return nil, errors.Wrap(err, "scanning books")
	}

	return books, nil
}

func (r *PostgresBookRepository) FindUnique(ctx context.Context, id int64) (*book.Book, error) {
	query, args, err := r.builder.
		From(booksTable).
		Select(colID, colTitle).
		Where(goqu.C(colID).Eq(id)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, errors.Wrap(err, "building find book query")
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "querying book %d", id)
	}

	b, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[book.Book])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "scanning book %d", id)
	}

	return b, nil
}

func (r *PostgresBookRepository) Create(ctx context.Context, title string) (*book.Book, error) {
	query, args, err := r.builder.
		Insert(booksTable).
		Rows(goqu.Record{colTitle: title}).
		Returning(colID, colTitle).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, errors.Wrap(err, "building insert book query")
	}

	return r.returningOne(ctx, query, args, "inserting book")
}

func (r *PostgresBookRepository) Update(ctx context.Context, id int64, title string) (*book.Book, error) {
	query, args, err := r.builder.
		Update(booksTable).
		Set(goqu.Record{colTitle: title}).
		Where(goqu.C(colID).Eq(id)).
		Returning(colID, colTitle).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, errors.Wrap(err, "building update book query")
	}

	b, err := r.returningOne(ctx, query, args, "updating book")
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrBookNotFound
	}

	return b, err
}

func (r *PostgresBookRepository) Delete(ctx context.Context, id int64) error {
	query, args, err := r.builder.
		Delete(booksTable).
		Where(goqu.C(colID).Eq(id)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return errors.Wrap(err, "building delete book query")
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return errors.Wrapf(err, "deleting book %d", id)
	}
	if tag.RowsAffected() == 0 {
		return ErrBookNotFound
	}

	return nil
}

// returningOne runs a statement with a RETURNING clause and scans its row.
// pgx.ErrNoRows stays in the chain for callers to test.
func (r *PostgresBookRepository) returningOne(ctx context.Context, query string, args []any, action string) (*book.Book, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, action)
	}

	b, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[book.Book])
	if err != nil {
		return nil, errors.Wrap(err, action)
	}

	return b, nil
}
