// Copyright (c) 2025 The Car-Retal-Api Authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package rentaluc contains the rentals UseCase which keeps the car
// schedules consistent. It supports these use cases:
//  1. Checking the availability of a car in a time period,
//  2. Creating a rental (booking a car),
//  3. Returning a rented car,
//  4. Cancelling a rental before its start,
//  5. Fetching and listing rentals.
//
// Rentals are the single source of truth for scheduling. The rental
// history of user profiles and the availability flag of cars are
// projections which are updated whenever a rental changes.
package rentaluc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/core/cerr"
	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/core/log"
	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/core/model"
	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/core/repo"
)

// Projector updates the rental history of user profiles which are
// kept by another service. It is called after the rental transaction
// is committed.
type Projector interface {
	AppendRental(ctx context.Context, userID int64, s model.RentalSnapshot) error
	PatchRental(ctx context.Context, userID int64, s model.RentalSnapshot) error
}

// Metrics receives the rental events which should be counted.
type Metrics interface {
	RentalCreated()
	RentalConflicted()
	RentalReturned()
	RentalCancelled()
	ProjectionFailed(op string)
}

type nopMetrics struct{}

func (nopMetrics) RentalCreated()          {}
func (nopMetrics) RentalConflicted()       {}
func (nopMetrics) RentalReturned()         {}
func (nopMetrics) RentalCancelled()        {}
func (nopMetrics) ProjectionFailed(string) {}

// UseCase represents the rentals use case. It holds a database
// connection pool, the rentals and cars repositories, and either a
// profiles repository (for updating the rental history in the same
// transaction) or a Projector (for updating it remotely).
type UseCase struct {
	pool      repo.Pool
	rentalsrp repo.Rentals
	carsrp    repo.Cars

	profilesrp repo.Profiles
	projector  Projector

	now       func() time.Time
	metrics   Metrics
	retries   int
	retrySet  bool
	maxLength time.Duration
}

// DefaultMaxRentalDays is the longest bookable period, in days,
// unless the WithMaxRentalDays option is passed.
const DefaultMaxRentalDays = 365

// New instantiates a rentals use case.
// Exactly one of the WithProfiles or WithProjector options must be
// passed, so the rental history projection has a destination.
func New(
	p repo.Pool, r repo.Rentals, c repo.Cars, opts ...Option,
) (*UseCase, error) {
	uc := &UseCase{pool: p, rentalsrp: r, carsrp: c}
	for _, opt := range opts {
		if err := opt(uc); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}
	switch {
	case uc.profilesrp == nil && uc.projector == nil:
		return nil, errors.New("no rental history projection is configured")
	case uc.profilesrp != nil && uc.projector != nil:
		return nil, errors.New("both local and remote history projections are configured")
	}
	// now, deal with defaults
	if uc.now == nil {
		uc.now = time.Now
	}
	if uc.metrics == nil {
		uc.metrics = nopMetrics{}
	}
	if !uc.retrySet {
		uc.retries = 1
	}
	if uc.maxLength == 0 {
		uc.maxLength = DefaultMaxRentalDays * model.Day
	}
	return uc, nil
}

// CreateParams contains the arguments of the Create use case.
type CreateParams struct {
	UserID          int64
	CarID           int64
	Period          model.Period
	PickupLocation  string
	DropoffLocation string
}

func notOwner() error {
	return cerr.Authorization(cerr.ErrNotOwner)
}

// serializable runs h in a serializable transaction and repeats it
// as long as it fails due to concurrent updates, at most uc.retries
// more times.
func (uc *UseCase) serializable(ctx context.Context, h repo.TxHandler) error {
	var err error
	for attempt := 0; attempt <= uc.retries; attempt++ {
		err = uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
			return c.SerializableTx(ctx, h)
		})
		if !errors.Is(err, repo.ErrSerialization) {
			return err
		}
		log.Warn(ctx, "rental transaction is aborted by a concurrent update",
			slog.Int("attempt", attempt+1), log.Err("err", err),
		)
	}
	return cerr.Conflict(fmt.Errorf("%w: %w", cerr.ErrConcurrentUpdate, err))
}

// Get returns the rentalID rental if actor may access it.
func (uc *UseCase) Get(
	ctx context.Context, actor model.Actor, rentalID int64,
) (r *model.Rental, err error) {
	err = uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		r, err = uc.rentalsrp.Conn(c).Get(ctx, rentalID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if !actor.CanAccess(r.UserID) {
		return nil, notOwner()
	}
	return r, nil
}

// ListByUser returns all rentals of the userID user, most recent
// first.
func (uc *UseCase) ListByUser(
	ctx context.Context, actor model.Actor, userID int64,
) (rentals []model.Rental, err error) {
	if !actor.CanAccess(userID) {
		return nil, notOwner()
	}
	err = uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		rentals, err = uc.rentalsrp.Conn(c).ListByUser(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rentals, nil
}
