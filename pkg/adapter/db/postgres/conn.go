// Copyright (c) 2025 The Car-Retal-Api Authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/core/repo"
)

// Conn is one connection which is taken from the Pool for the duration
// of a repo.ConnHandler call.
type Conn struct {
	session
}

type TxHandler = repo.TxHandler

// Tx runs f in a READ-COMMITTED transaction.
func (c *Conn) Tx(ctx context.Context, f TxHandler) error {
	return c.inTx(ctx, nil, f)
}

// SerializableTx runs f in a SERIALIZABLE transaction. Bookings use it
// so that two overlapping rentals of a car cannot commit together.
// When the DBMS aborts the transaction, the returned error wraps the
// repo.ErrSerialization and the caller may run f again.
func (c *Conn) SerializableTx(ctx context.Context, f TxHandler) error {
	return c.inTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable}, f)
}

func (c *Conn) IsConn() {
}

// inTx commits if f returns nil and rolls back if it fails or panics.
func (c *Conn) inTx(
	ctx context.Context, opts *sql.TxOptions, f TxHandler,
) (err error) {
	var opt []*sql.TxOptions
	if opts != nil {
		opt = append(opt, opts)
	}
	gtx := c.db.WithContext(ctx).Begin(opt...)
	if gtx.Error != nil {
		return fmt.Errorf("begin tx: %w", gtx.Error)
	}
	committed := false
	defer func() {
		if committed {
			return
		}
		rbErr := gtx.Rollback().Error
		if r := recover(); r != nil {
			err = fmt.Errorf("panicked: %v", r)
		}
		if rbErr != nil {
			err = fmt.Errorf("%w, rollback: %w", err, rbErr)
		}
	}()
	if err = f(ctx, &Tx{session{gtx}}); err != nil {
		return fmt.Errorf("handler: %w", classify(err))
	}
	committed = true
	if err = gtx.Commit().Error; err != nil {
		return fmt.Errorf("commit: %w", classify(err))
	}
	return nil
}
