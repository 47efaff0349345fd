package repo

import (
	"context"

	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/core/model"
)

// Profiles interface presents expectations from the user profiles
// repository which also stores their rental history projection.
type Profiles interface {
	Conn(Conn) ProfilesConnQueryer
	Tx(Tx) ProfilesTxQueryer
}

type ProfilesConnQueryer interface {
	ProfilesQueryer
}

type ProfilesTxQueryer interface {
	ProfilesQueryer

	// AppendRental adds s to the end of the userID rental history.
	AppendRental(ctx context.Context, userID int64, s model.RentalSnapshot) error

	// PatchRental replaces the userID rental history entry which has
	// the same rental ID as s. A missing profile or entry causes a
	// cerr.NotFound error.
	PatchRental(ctx context.Context, userID int64, s model.RentalSnapshot) error
}

type ProfilesQueryer interface {
	Get(ctx context.Context, userID int64) (*model.UserProfile, error)

	// Create inserts p and fails with cerr.Conflict if the user
	// already has a profile.
	Create(ctx context.Context, p *model.UserProfile) (*model.UserProfile, error)

	// Update changes the personal fields of the p.UserID profile,
	// leaving its rental history intact.
	Update(ctx context.Context, p *model.UserProfile) (*model.UserProfile, error)

	// List returns all profiles ordered by their user IDs.
	List(ctx context.Context) ([]model.UserProfile, error)

	Delete(ctx context.Context, userID int64) error
}
