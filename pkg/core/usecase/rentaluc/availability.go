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

// overlaps reports if any active rental of the carID car, other than
// the excludeID rental, overlaps with p. Zero excludeID excludes none.
func overlaps(
	ctx context.Context,
	q repo.RentalsQueryer,
	carID int64,
	p model.Period,
	excludeID int64,
) (bool, error) {
	active, err := q.ListActiveByCar(ctx, carID)
	if err != nil {
		return false, fmt.Errorf("listing active rentals: %w", err)
	}
	for i := range active {
		if active[i].ID == excludeID {
			continue
		}
		if active[i].Period().Overlaps(p) {
			return true, nil
		}
	}
	return false, nil
}

// CheckOverlap reports if the carID car has an active rental, other
// than the excludeID rental, which overlaps with the p period.
// Pass zero as excludeID in order to consider all active rentals.
func (uc *UseCase) CheckOverlap(
	ctx context.Context, carID int64, p model.Period, excludeID int64,
) (busy bool, err error) {
	if err = p.Validate(); err != nil {
		return false, cerr.BadRequest(err)
	}
	err = uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		busy, err = overlaps(ctx, uc.rentalsrp.Conn(c), carID, p, excludeID)
		return err
	})
	return busy, err
}

// CheckAvailability reports if the carID car may be booked in the p
// period. It is the negation of CheckOverlap, but fails for unknown
// cars too.
func (uc *UseCase) CheckAvailability(
	ctx context.Context, carID int64, p model.Period,
) (available bool, err error) {
	if err = p.Validate(); err != nil {
		return false, cerr.BadRequest(err)
	}
	err = uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		if _, err := uc.carsrp.Conn(c).Get(ctx, carID); err != nil {
			return err
		}
		busy, err := overlaps(ctx, uc.rentalsrp.Conn(c), carID, p, 0)
		available = !busy
		return err
	})
	return available, err
}

// Create books the p.CarID car for the p.UserID user in the p.Period
// period. The car row is locked in a serializable transaction while
// the overlapping active rentals are checked, so two concurrent
// bookings of one car may not both succeed. The total price is
// computed as the number of started days times the car price per day.
// Periods longer than the configured maximum rental length are
// rejected.
func (uc *UseCase) Create(
	ctx context.Context, actor model.Actor, p CreateParams,
) (*model.Rental, error) {
	if !actor.CanAccess(p.UserID) {
		return nil, notOwner()
	}
	if err := p.Period.ValidateLength(uc.maxLength); err != nil {
		return nil, cerr.BadRequest(err)
	}
	var rental *model.Rental
	err := uc.serializable(ctx, func(ctx context.Context, tx repo.Tx) error {
		cq := uc.carsrp.Tx(tx)
		car, err := cq.GetForUpdate(ctx, p.CarID)
		if err != nil {
			return err
		}
		rq := uc.rentalsrp.Tx(tx)
		busy, err := overlaps(ctx, rq, p.CarID, p.Period, 0)
		if err != nil {
			return err
		}
		if busy {
			return cerr.Conflict(cerr.ErrCarBooked)
		}
		days := model.BillableDays(p.Period.Duration())
		rental, err = rq.Insert(ctx, &model.Rental{
			UserID:          p.UserID,
			CarID:           p.CarID,
			StartDate:       p.Period.Start,
			EndDate:         p.Period.End,
			PickupLocation:  p.PickupLocation,
			DropoffLocation: p.DropoffLocation,
			TotalPrice:      model.Price(days, car.PricePerDay),
			Status:          model.RentalStatusActive,
			CreatedAt:       uc.now().UTC(),
		})
		if err != nil {
			return fmt.Errorf("inserting rental: %w", err)
		}
		if uc.profilesrp != nil {
			err = uc.profilesrp.Tx(tx).AppendRental(
				ctx, rental.UserID, rental.Snapshot(),
			)
			if err != nil {
				return fmt.Errorf("appending rental history: %w", err)
			}
		}
		if car.Available {
			if err = cq.SetAvailability(ctx, car.ID, false); err != nil {
				return fmt.Errorf("updating car availability: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		if cerr.StatusCode(err) == http.StatusConflict {
			uc.metrics.RentalConflicted()
		}
		return nil, err
	}
	uc.metrics.RentalCreated()
	log.Info(ctx, "rental is created",
		log.RentalID(rental.ID), log.CarID(rental.CarID),
		log.UserID(rental.UserID), log.RequestID(ctx),
	)
	uc.project(ctx, "append", rental)
	return rental, nil
}
