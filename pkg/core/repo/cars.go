package repo

import (
	"context"

	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/core/model"
)

type CarsConnQueryer interface {
	CarsQueryer
}

type CarsTxQueryer interface {
	CarsQueryer

	// GetForUpdate fetches the carID car and locks its row until the
	// end of the current transaction, so concurrent bookings of the
	// same car are serialized.
	GetForUpdate(ctx context.Context, carID int64) (*model.Car, error)
}

type CarsQueryer interface {
	Get(ctx context.Context, carID int64) (*model.Car, error)
	List(ctx context.Context) ([]model.Car, error)
	Create(ctx context.Context, c *model.Car) (*model.Car, error)
	SetAvailability(ctx context.Context, carID int64, available bool) error

	// Update changes the catalog fields of the c.ID car, leaving its
	// availability intact.
	Update(ctx context.Context, c *model.Car) (*model.Car, error)

	// Delete removes the carID car. A car which is referenced by some
	// rental causes a cerr.Conflict error.
	Delete(ctx context.Context, carID int64) error
}

type Cars interface {
	Conn(Conn) CarsConnQueryer
	Tx(Tx) CarsTxQueryer
}
