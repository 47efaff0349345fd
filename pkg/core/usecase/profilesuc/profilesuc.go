// Package profilesuc contains the user profiles UseCase. Beside the
// profile management use cases, it exposes the rental history
// projection which is called by the rentals use case of another
// deployment (see rentaluc.Projector).
package profilesuc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/core/cerr"
	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/core/log"
	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/core/model"
	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/core/repo"
)

type UseCase struct {
	pool       repo.Pool
	profilesrp repo.Profiles
	now        func() time.Time
}

func New(p repo.Pool, r repo.Profiles) *UseCase {
	return &UseCase{pool: p, profilesrp: r, now: time.Now}
}

func validate(p *model.UserProfile) error {
	if p.FullName == "" {
		return cerr.BadRequest(errors.New("fullName is required"))
	}
	return nil
}

// Create adds a profile for p.UserID with an empty rental history.
// Users may only create their own profiles.
func (uc *UseCase) Create(
	ctx context.Context, actor model.Actor, p *model.UserProfile,
) (created *model.UserProfile, err error) {
	if !actor.CanAccess(p.UserID) {
		return nil, cerr.Authorization(cerr.ErrNotOwner)
	}
	if err = validate(p); err != nil {
		return nil, err
	}
	pp := *p
	pp.RentalHistory = []model.RentalSnapshot{}
	pp.CreatedAt = uc.now().UTC()
	err = uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		created, err = uc.profilesrp.Conn(c).Create(ctx, &pp)
		return err
	})
	if err != nil {
		return nil, err
	}
	log.Info(ctx, "user profile is created",
		log.UserID(created.UserID), log.RequestID(ctx),
	)
	return created, nil
}

func (uc *UseCase) Get(
	ctx context.Context, actor model.Actor, userID int64,
) (p *model.UserProfile, err error) {
	if !actor.CanAccess(userID) {
		return nil, cerr.Authorization(cerr.ErrNotOwner)
	}
	err = uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		p, err = uc.profilesrp.Conn(c).Get(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Update changes the personal fields of the p.UserID profile.
func (uc *UseCase) Update(
	ctx context.Context, actor model.Actor, p *model.UserProfile,
) (updated *model.UserProfile, err error) {
	if !actor.CanAccess(p.UserID) {
		return nil, cerr.Authorization(cerr.ErrNotOwner)
	}
	if err = validate(p); err != nil {
		return nil, err
	}
	err = uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		updated, err = uc.profilesrp.Conn(c).Update(ctx, p)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// List returns all profiles to admins.
func (uc *UseCase) List(
	ctx context.Context, actor model.Actor,
) (list []model.UserProfile, err error) {
	if !actor.Admin {
		return nil, cerr.Authorization(cerr.ErrAdminOnly)
	}
	err = uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		list, err = uc.profilesrp.Conn(c).List(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}

// Delete removes the userID profile with its rental history. The
// rentals themselves are kept, and later changes of them are no longer
// projected into any profile.
func (uc *UseCase) Delete(
	ctx context.Context, actor model.Actor, userID int64,
) error {
	if !actor.CanAccess(userID) {
		return cerr.Authorization(cerr.ErrNotOwner)
	}
	err := uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		return uc.profilesrp.Conn(c).Delete(ctx, userID)
	})
	if err != nil {
		return err
	}
	log.Info(ctx, "user profile is deleted",
		log.UserID(userID), log.RequestID(ctx),
	)
	return nil
}

// AppendRental adds s to the userID rental history. Only admins (and
// services which hold an admin token) may change the history.
func (uc *UseCase) AppendRental(
	ctx context.Context, actor model.Actor, userID int64, s model.RentalSnapshot,
) error {
	return uc.history(ctx, actor, func(ctx context.Context, q repo.ProfilesTxQueryer) error {
		return q.AppendRental(ctx, userID, s)
	})
}

// PatchRental replaces the userID rental history entry which has the
// s.RentalID rental ID.
func (uc *UseCase) PatchRental(
	ctx context.Context, actor model.Actor, userID int64, s model.RentalSnapshot,
) error {
	return uc.history(ctx, actor, func(ctx context.Context, q repo.ProfilesTxQueryer) error {
		return q.PatchRental(ctx, userID, s)
	})
}

func (uc *UseCase) history(
	ctx context.Context,
	actor model.Actor,
	f func(context.Context, repo.ProfilesTxQueryer) error,
) error {
	if !actor.Admin {
		return cerr.Authorization(cerr.ErrAdminOnly)
	}
	err := uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			return f(ctx, uc.profilesrp.Tx(tx))
		})
	})
	if err != nil {
		return fmt.Errorf("updating rental history: %w", err)
	}
	return nil
}
