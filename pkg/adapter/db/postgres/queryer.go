// Copyright (c) 2025 The Car-Retal-Api Authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package postgres

import (
	"context"

	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/core/repo"
	"gorm.io/gorm"
)

// Queryer constrains the generic repository functions, so they may
// be called with either a connection or a transaction.
type Queryer interface {
	*Conn | *Tx
	repo.Queryer
	GORM(ctx context.Context) *gorm.DB
}

// session implements the repo.Queryer on top of a GORM handle which
// is pinned to one connection, or to one transaction of it.
//
// Placeholders may be written as $1, ?, or @name. When args are
// given, sql must hold exactly one statement which is prepared and
// receives args separately. Only one statement may be in progress per
// session, so Rows must be closed before the next Exec or Query.
type session struct {
	db *gorm.DB
}

func (s session) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	res := s.db.WithContext(ctx).Exec(sql, args...)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (s session) Query(ctx context.Context, sql string, args ...any) (repo.Rows, error) {
	rows, err := s.db.WithContext(ctx).Raw(sql, args...).Rows()
	if err != nil {
		return nil, err
	}
	return sqlRows{rows}, nil
}

// GORM returns the session handle bound to ctx, so repositories can
// use the GORM query builder.
func (s session) GORM(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}
