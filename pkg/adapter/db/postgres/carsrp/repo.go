package carsrp

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

func (cars *Repo) Conn(c repo.Conn) repo.CarsConnQueryer {
	cc := c.(*postgres.Conn)
	return connQueryer{Conn: cc}
}

func (cq connQueryer) Get(ctx context.Context, carID int64) (*model.Car, error) {
	return Get(ctx, cq.Conn, carID)
}

func (cq connQueryer) List(ctx context.Context) ([]model.Car, error) {
	return List(ctx, cq.Conn)
}

func (cq connQueryer) Create(ctx context.Context, c *model.Car) (*model.Car, error) {
	return Create(ctx, cq.Conn, c)
}

func (cq connQueryer) SetAvailability(ctx context.Context, carID int64, available bool) error {
	return SetAvailability(ctx, cq.Conn, carID, available)
}

func (cq connQueryer) Update(ctx context.Context, c *model.Car) (*model.Car, error) {
	return Update(ctx, cq.Conn, c)
}

func (cq connQueryer) Delete(ctx context.Context, carID int64) error {
	return Delete(ctx, cq.Conn, carID)
}

type txQueryer struct {
	*postgres.Tx
}

func (cars *Repo) Tx(tx repo.Tx) repo.CarsTxQueryer {
	tt := tx.(*postgres.Tx)
	return txQueryer{Tx: tt}
}

func (tq txQueryer) Get(ctx context.Context, carID int64) (*model.Car, error) {
	return Get(ctx, tq.Tx, carID)
}

func (tq txQueryer) GetForUpdate(ctx context.Context, carID int64) (*model.Car, error) {
	return GetForUpdate(ctx, tq.Tx, carID)
}

func (tq txQueryer) List(ctx context.Context) ([]model.Car, error) {
	return List(ctx, tq.Tx)
}

func (tq txQueryer) Create(ctx context.Context, c *model.Car) (*model.Car, error) {
	return Create(ctx, tq.Tx, c)
}

func (tq txQueryer) SetAvailability(ctx context.Context, carID int64, available bool) error {
	return SetAvailability(ctx, tq.Tx, carID, available)
}

func (tq txQueryer) Update(ctx context.Context, c *model.Car) (*model.Car, error) {
	return Update(ctx, tq.Tx, c)
}

func (tq txQueryer) Delete(ctx context.Context, carID int64) error {
	return Delete(ctx, tq.Tx, carID)
}
