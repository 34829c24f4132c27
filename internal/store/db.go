package store

import (
	"context"
	"database/sql"
)

// Execer, Getter and Selecter are the slices of sqlx the stores need.
// Both *sqlx.DB and *sqlx.Tx satisfy them, so a store method runs
// unchanged inside or outside a transaction.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type Getter interface {
	GetContext(ctx context.Context, dest any, query string, args ...any) error
}

type Selecter interface {
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
}

type DB interface {
	Execer
	Getter
	Selecter
}
