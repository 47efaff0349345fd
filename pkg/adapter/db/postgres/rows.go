package postgres

import (
	"database/sql"
	"fmt"
)

// sqlRows adapts *sql.Rows to the repo.Rows interface.
type sqlRows struct {
	*sql.Rows
}

// Close ignores the error which remains available from Err.
func (r sqlRows) Close() {
	_ = r.Rows.Close()
}

func (r sqlRows) Values() ([]any, error) {
	cols, err := r.Columns()
	if err != nil {
		return nil, fmt.Errorf("listing columns: %w", err)
	}
	vals := make([]any, len(cols))
	dest := make([]any, len(cols))
	for i := range dest {
		dest[i] = &vals[i]
	}
	if err := r.Scan(dest...); err != nil {
		return nil, err
	}
	return vals, nil
}
