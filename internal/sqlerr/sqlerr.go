// Package sqlerr classifies database driver errors.
//
// Postgres SQLSTATE codes and SQLite result codes are mapped onto a small
// Code enum. The classification is attached to error logs; clients only
// ever see a 500 for a store failure.
package sqlerr

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Code is the normalized category of a database error.
type Code string

const (
	Other                 Code = "other"
	NotNullViolation      Code = "not_null_violation"
	UniqueViolation       Code = "unique_violation"
	CheckViolation        Code = "check_violation"
	TooManyConnections    Code = "too_many_connections"
	ConnectionFailure     Code = "connection_failure"
	Busy                  Code = "busy"
	QueryCanceled         Code = "query_canceled"
	UndefinedTable        Code = "undefined_table"
	InsufficientPrivilege Code = "insufficient_privilege"
)

// Error is a driver-independent view of a database error.
type Error struct {
	Code           Code
	Driver         string
	DatabaseCode   string
	Message        string
	TableName      string
	ConstraintName string
	driverErr      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s (%s): %s", e.Driver, e.DatabaseCode, e.Code, e.Message)
}

// Unwrap exposes the original driver error.
func (e *Error) Unwrap() error {
	return e.driverErr
}

// MarshalZerologObject lets an *Error be attached to a log event with Object.
func (e *Error) MarshalZerologObject(ev *zerolog.Event) {
	ev.Str("driver", e.Driver).
		Str("code", string(e.Code)).
		Str("database_code", e.DatabaseCode)

	if e.TableName != "" {
		ev.Str("table", e.TableName)
	}
	if e.ConstraintName != "" {
		ev.Str("constraint", e.ConstraintName)
	}
}

// pgCodes maps SQLSTATE values to Code.
// https://www.postgresql.org/docs/current/errcodes-appendix.html
var pgCodes = map[string]Code{
	"23502": NotNullViolation,
	"23505": UniqueViolation,
	"23514": CheckViolation,
	"53300": TooManyConnections,
	"57014": QueryCanceled,
	"08000": ConnectionFailure,
	"08003": ConnectionFailure,
	"08006": ConnectionFailure,
	"42P01": UndefinedTable,
	"42501": InsufficientPrivilege,
}

// sqliteCodes maps extended SQLite result codes to Code.
var sqliteCodes = map[int]Code{
	sqlite3.SQLITE_CONSTRAINT_NOTNULL:    NotNullViolation,
	sqlite3.SQLITE_CONSTRAINT_UNIQUE:     UniqueViolation,
	sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY: UniqueViolation,
	sqlite3.SQLITE_CONSTRAINT_CHECK:      CheckViolation,
	sqlite3.SQLITE_BUSY:                  Busy,
	sqlite3.SQLITE_LOCKED:                Busy,
	sqlite3.SQLITE_CANTOPEN:              ConnectionFailure,
}

// MapCode maps a SQLSTATE string to a Code. Unknown states map to Other.
func MapCode(sqlState string) Code {
	if code, ok := pgCodes[sqlState]; ok {
		return code
	}
	return Other
}

// MapSQLiteCode maps an extended SQLite result code to a Code.
func MapSQLiteCode(code int) Code {
	if mapped, ok := sqliteCodes[code]; ok {
		return mapped
	}
	return Other
}

// Classify returns the database error in err's chain, or nil when err did
// not come from a database driver.
func Classify(err error) *Error {
	var classified *Error
	if errors.As(err, &classified) {
		return classified
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return &Error{
			Code:           MapCode(pgErr.Code),
			Driver:         "postgres",
			DatabaseCode:   pgErr.Code,
			Message:        pgErr.Message,
			TableName:      pgErr.TableName,
			ConstraintName: pgErr.ConstraintName,
			driverErr:      pgErr,
		}
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return &Error{
			Code:      ConnectionFailure,
			Driver:    "postgres",
			Message:   connectErr.Error(),
			driverErr: connectErr,
		}
	}

	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return &Error{
			Code:         MapSQLiteCode(sqliteErr.Code()),
			Driver:       "sqlite",
			DatabaseCode: strconv.Itoa(sqliteErr.Code()),
			Message:      sqliteErr.Error(),
			driverErr:    sqliteErr,
		}
	}

	return nil
}
