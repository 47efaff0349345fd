package rentalsrp

import (
	"context"

	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/adapter/db/postgres"
	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/core/model"
	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/core/repo"
)

type Repo struct {
}

func New() *Repo {
	return &Repo{}
}

type connQueryer struct {
	*postgres.Conn
}

func (rentals *Repo) Conn(c repo.Conn) repo.RentalsConnQueryer {
	cc := c.(*postgres.Conn)
	return connQueryer{Conn: cc}
}

func (cq connQueryer) Get(ctx context.Context, rentalID int64) (*model.Rental, error) {
	return Get(ctx, cq.Conn, rentalID)
}

func (cq connQueryer) ListActiveByCar(ctx context.Context, carID int64) ([]model.Rental, error) {
	return ListActiveByCar(ctx, cq.Conn, carID)
}

func (cq connQueryer) ListByUser(ctx context.Context, userID int64) ([]model.Rental, error) {
	return ListByUser(ctx, cq.Conn, userID)
}

type txQueryer struct {
	*postgres.Tx
}

func (rentals *Repo) Tx(tx repo.Tx) repo.RentalsTxQueryer {
	tt := tx.(*postgres.Tx)
	return txQueryer{Tx: tt}
}

func (tq txQueryer) Get(ctx context.Context, rentalID int64) (*model.Rental, error) {
	return Get(ctx, tq.Tx, rentalID)
}

func (tq txQueryer) GetForUpdate(ctx context.Context, rentalID int64) (*model.Rental, error) {
	return GetForUpdate(ctx, tq.Tx, rentalID)
}

func (tq txQueryer) ListActiveByCar(ctx context.Context, carID int64) ([]model.Rental, error) {
	return ListActiveByCar(ctx, tq.Tx, carID)
}

func (tq txQueryer) ListByUser(ctx context.Context, userID int64) ([]model.Rental, error) {
	return ListByUser(ctx, tq.Tx, userID)
}

func (tq txQueryer) Insert(ctx context.Context, r *model.Rental) (*model.Rental, error) {
	return Insert(ctx, tq.Tx, r)
}

func (tq txQueryer) Close(ctx context.Context, r *model.Rental) error {
	return Close(ctx, tq.Tx, r)
}
