// Package extsource backs the DbLookup host function: a single blocking
// query against an external Postgres database, returning the first column
// of the first row as a Value.
//
// Grounded on the teacher's interpreter/builtins_sql.go (sqlOpen + sqlQuery
// + sqlQueryOne collapsed into one round trip, the same raw-interface{}
// Scan-then-convert pattern); the connection is opened with database/sql's
// sql.Open using pgx's registered "pgx" driver, so database/sql pools the
// connections and the wire protocol is pgx's.
package extsource

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"decicalc/decimal"
	"decicalc/interpreter"
)

// Source pools connections to one Postgres DSN, opened lazily on first use.
type Source struct {
	mu  sync.Mutex
	dsn string
	db  *sql.DB
}

func New(dsn string) *Source {
	return &Source{dsn: dsn}
}

func (s *Source) open() (*sql.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db != nil {
		return s.db, nil
	}
	db, err := sql.Open("pgx", s.dsn)
	if err != nil {
		return nil, err
	}
	db.SetConnMaxLifetime(5 * time.Minute)
	s.db = db
	return s.db, nil
}

// Lookup runs query against the database and returns the first column of
// the first row as a Value, NIL_VALUE if the query returns no rows, and a
// TypedOperationError on any driver failure (SPEC_FULL.md §4.7).
func (s *Source) Lookup(ctx context.Context, query string) (interpreter.Value, error) {
	db, err := s.open()
	if err != nil {
		return nil, &interpreter.TypedOperationError{Message: "DbLookup: " + err.Error()}
	}
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, &interpreter.TypedOperationError{Message: "DbLookup: " + err.Error()}
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, &interpreter.TypedOperationError{Message: "DbLookup: " + err.Error()}
		}
		return interpreter.NIL_VALUE, nil
	}

	var raw interface{}
	if err := rows.Scan(&raw); err != nil {
		return nil, &interpreter.TypedOperationError{Message: "DbLookup: " + err.Error()}
	}
	return resultValue(raw)
}

func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func resultValue(raw interface{}) (interpreter.Value, error) {
	switch v := raw.(type) {
	case nil:
		return interpreter.NIL_VALUE, nil
	case int64:
		return &interpreter.Float{Value: decimal.FromInt(v)}, nil
	case int32:
		return &interpreter.Float{Value: decimal.FromInt(int64(v))}, nil
	case float64:
		return &interpreter.Float{Value: decimal.FromFloat(v)}, nil
	case bool:
		if v {
			return interpreter.FLOAT_ONE, nil
		}
		return interpreter.FLOAT_ZERO, nil
	case string:
		return &interpreter.String{Value: v}, nil
	case []byte:
		return &interpreter.String{Value: string(v)}, nil
	case time.Time:
		return &interpreter.String{Value: v.Format(time.RFC3339)}, nil
	default:
		return nil, &interpreter.TypedOperationError{Message: fmt.Sprintf("DbLookup: unsupported column type %T", raw)}
	}
}
