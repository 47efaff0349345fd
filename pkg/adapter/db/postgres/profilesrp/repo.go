package profilesrp

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

func (profiles *Repo) Conn(c repo.Conn) repo.ProfilesConnQueryer {
	cc := c.(*postgres.Conn)
	return connQueryer{Conn: cc}
}

func (cq connQueryer) Get(ctx context.Context, userID int64) (*model.UserProfile, error) {
	return Get(ctx, cq.Conn, userID)
}

func (cq connQueryer) Create(ctx context.Context, p *model.UserProfile) (*model.UserProfile, error) {
	return Create(ctx, cq.Conn, p)
}

func (cq connQueryer) Update(ctx context.Context, p *model.UserProfile) (*model.UserProfile, error) {
	return Update(ctx, cq.Conn, p)
}

func (cq connQueryer) List(ctx context.Context) ([]model.UserProfile, error) {
	return List(ctx, cq.Conn)
}

func (cq connQueryer) Delete(ctx context.Context, userID int64) error {
	return Delete(ctx, cq.Conn, userID)
}

type txQueryer struct {
	*postgres.Tx
}

func (profiles *Repo) Tx(tx repo.Tx) repo.ProfilesTxQueryer {
	tt := tx.(*postgres.Tx)
	return txQueryer{Tx: tt}
}

func (tq txQueryer) Get(ctx context.Context, userID int64) (*model.UserProfile, error) {
	return Get(ctx, tq.Tx, userID)
}

func (tq txQueryer) Create(ctx context.Context, p *model.UserProfile) (*model.UserProfile, error) {
	return Create(ctx, tq.Tx, p)
}

func (tq txQueryer) Update(ctx context.Context, p *model.UserProfile) (*model.UserProfile, error) {
	return Update(ctx, tq.Tx, p)
}

func (tq txQueryer) List(ctx context.Context) ([]model.UserProfile, error) {
	return List(ctx, tq.Tx)
}

func (tq txQueryer) Delete(ctx context.Context, userID int64) error {
	return Delete(ctx, tq.Tx, userID)
}

func (tq txQueryer) AppendRental(ctx context.Context, userID int64, s model.RentalSnapshot) error {
	return AppendRental(ctx, tq.Tx, userID, s)
}

func (tq txQueryer) PatchRental(ctx context.Context, userID int64, s model.RentalSnapshot) error {
	return PatchRental(ctx, tq.Tx, userID, s)
}
