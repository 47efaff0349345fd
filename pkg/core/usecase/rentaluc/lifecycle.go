// Copyright (c) 2025 The Car-Retal-Api Authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package rentaluc

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/core/cerr"
	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/core/log"
	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/core/model"
	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/core/repo"
)

// closeFunc changes an active rental r into a terminal state and
// returns an error if the transition is not allowed.
type closeFunc func(r *model.Rental, car *model.Car) error

// Return completes the rentalID rental. Its end date is set to the
// current time and its total price is recomputed for the started days
// of actual usage (at least one day). Only active rentals which have
// started may be returned.
func (uc *UseCase) Return(
	ctx context.Context, actor model.Actor, rentalID int64,
) (*model.Rental, error) {
	r, err := uc.close(ctx, actor, rentalID,
		func(r *model.Rental, car *model.Car) error {
			now := uc.now().UTC()
			if !now.After(r.StartDate) {
				return cerr.InvalidState(cerr.ErrRentalNotStarted)
			}
			days := max(1, model.BillableDays(now.Sub(r.StartDate)))
			r.TotalPrice = model.Price(days, car.PricePerDay)
			r.EndDate = now
			r.Status = model.RentalStatusCompleted
			r.ClosedAt = &now
			return nil
		},
	)
	if err != nil {
		return nil, err
	}
	uc.metrics.RentalReturned()
	log.Info(ctx, "rental is returned",
		log.RentalID(r.ID), log.CarID(r.CarID), log.RequestID(ctx),
	)
	uc.project(ctx, "patch", r)
	return r, nil
}

// Cancel cancels the rentalID rental before its start. Its period is
// kept intact for auditing, while the cancellation time is recorded.
func (uc *UseCase) Cancel(
	ctx context.Context, actor model.Actor, rentalID int64,
) (*model.Rental, error) {
	r, err := uc.close(ctx, actor, rentalID,
		func(r *model.Rental, _ *model.Car) error {
			now := uc.now().UTC()
			if !r.StartDate.After(now) {
				return cerr.InvalidState(cerr.ErrRentalStarted)
			}
			r.Status = model.RentalStatusCancelled
			r.ClosedAt = &now
			return nil
		},
	)
	if err != nil {
		return nil, err
	}
	uc.metrics.RentalCancelled()
	log.Info(ctx, "rental is cancelled",
		log.RentalID(r.ID), log.CarID(r.CarID), log.RequestID(ctx),
	)
	uc.project(ctx, "patch", r)
	return r, nil
}

// close locks the rentalID rental and its car, moves the rental to
// a terminal state using f, and updates the projections.
func (uc *UseCase) close(
	ctx context.Context, actor model.Actor, rentalID int64, f closeFunc,
) (r *model.Rental, err error) {
	err = uc.serializable(ctx, func(ctx context.Context, tx repo.Tx) error {
		rq := uc.rentalsrp.Tx(tx)
		r, err = rq.GetForUpdate(ctx, rentalID)
		if err != nil {
			return err
		}
		if !actor.CanAccess(r.UserID) {
			return notOwner()
		}
		if r.Status != model.RentalStatusActive {
			return cerr.InvalidState(cerr.ErrRentalNotActive)
		}
		cq := uc.carsrp.Tx(tx)
		car, err := cq.GetForUpdate(ctx, r.CarID)
		if err != nil {
			return err
		}
		if err = f(r, car); err != nil {
			return err
		}
		if err = rq.Close(ctx, r); err != nil {
			return fmt.Errorf("closing rental: %w", err)
		}
		if uc.profilesrp != nil {
			err = uc.profilesrp.Tx(tx).PatchRental(
				ctx, r.UserID, r.Snapshot(),
			)
			if cerr.StatusCode(err) == http.StatusNotFound {
				// rental stays the source of truth
				uc.metrics.ProjectionFailed("patch")
				log.Warn(ctx, "rental history entry is missing",
					log.RentalID(r.ID), log.UserID(r.UserID),
					log.Err("err", err),
				)
			} else if err != nil {
				return fmt.Errorf("patching rental history: %w", err)
			}
		}
		return uc.refreshAvailability(ctx, rq, cq, car)
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// refreshAvailability marks car as available if it has no active
// rental anymore.
func (uc *UseCase) refreshAvailability(
	ctx context.Context,
	rq repo.RentalsQueryer,
	cq repo.CarsQueryer,
	car *model.Car,
) error {
	if car.Available {
		return nil
	}
	active, err := rq.ListActiveByCar(ctx, car.ID)
	if err != nil {
		return fmt.Errorf("listing active rentals: %w", err)
	}
	if len(active) > 0 {
		return nil
	}
	if err = cq.SetAvailability(ctx, car.ID, true); err != nil {
		return fmt.Errorf("updating car availability: %w", err)
	}
	return nil
}

// project informs the remote projector (if any) about the r rental
// creation (op=append) or closure (op=patch). Failures are logged
// and counted because the rental change is already committed.
func (uc *UseCase) project(ctx context.Context, op string, r *model.Rental) {
	if uc.projector == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	var err error
	switch op {
	case "append":
		err = uc.projector.AppendRental(ctx, r.UserID, r.Snapshot())
	default:
		err = uc.projector.PatchRental(ctx, r.UserID, r.Snapshot())
	}
	if err != nil {
		uc.metrics.ProjectionFailed(op)
		log.Error(ctx, "rental history projection failed",
			log.RentalID(r.ID), log.UserID(r.UserID),
			log.Err("err", err), log.RequestID(ctx),
		)
	}
}
