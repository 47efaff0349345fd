// Copyright (c) 2025 The Car-Retal-Api Authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package postgres

import (
	"errors"
	"fmt"

	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/core/repo"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// classify wraps err with the repo.ErrSerialization if it was caused
// by a serialization failure or a detected deadlock, so use cases can
// retry their transactions without depending on the pgx types.
func classify(err error) error {
	if IsSerializationFailure(err) {
		return fmt.Errorf("%w: %w", repo.ErrSerialization, err)
	}
	return err
}

// IsSerializationFailure reports if err (or any error which is wrapped
// by it) is a PostgreSQL error with the 40001 or 40P01 SQLSTATE code.
func IsSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case pgerrcode.SerializationFailure, pgerrcode.DeadlockDetected:
		return true
	default:
		return false
	}
}

// IsUniqueViolation reports if err is caused by a unique constraint
// violation (SQLSTATE 23505).
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) &&
		pgErr.Code == pgerrcode.UniqueViolation
}

// IsForeignKeyViolation reports if err is caused by a foreign key
// constraint violation (SQLSTATE 23503).
func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) &&
		pgErr.Code == pgerrcode.ForeignKeyViolation
}
