package repo

import "context"

type ConnHandler func(context.Context, Conn) error

// Pool represents a pool of database connections. The Conn method
// takes one connection and passes it to handler, releasing it after
// handler returns.
type Pool interface {
	Conn(ctx context.Context, handler ConnHandler) error
	Close() error
}
