package repo

import "context"

// Queryer runs raw SQL statements. The GORM based repositories rarely
// need it except for DDL and role management.
type Queryer interface {
	Exec(ctx context.Context, sql string, args ...any) (affected int64, err error)
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
}

// Rows iterates over a result set. It must be closed before the next
// statement runs on the same Queryer.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Values() ([]any, error)
	Err() error
	Close()
}
