package repo

import (
	"context"
	"errors"
)

// ErrSerialization is wrapped by the errors which are returned from
// Conn.Tx and Conn.SerializableTx when the DBMS aborted a transaction
// due to a concurrent update. Such transactions may be retried.
var ErrSerialization = errors.New("could not serialize access")

type TxHandler func(context.Context, Tx) error

type Conn interface {
	Queryer
	// Tx runs handler in a READ-COMMITTED transaction which is
	// committed if handler returns nil and rolled back otherwise.
	Tx(ctx context.Context, handler TxHandler) error
	// SerializableTx is like Tx, but uses a SERIALIZABLE transaction.
	SerializableTx(ctx context.Context, handler TxHandler) error
	IsConn()
}
