// Copyright (c) 2025 The Car-Retal-Api Authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package carsuc contains the cars UseCase which supports the car
// catalog use cases. Currently, five uses cases are supported:
//  1. Listing all cars,
//  2. Fetching a car by its ID,
//  3. Adding a car to the catalog (for admins),
//  4. Editing the catalog fields of a car (for admins),
//  5. Removing a car which was never rented (for admins).
package carsuc

import (
	"context"
	"errors"
	"fmt"

	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/core/cerr"
	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/core/log"
	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/core/model"
	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/core/repo"
)

// UseCase serves the car catalog from the cars repository. The
// rentals repository is consulted before removing a car.
type UseCase struct {
	pool      repo.Pool
	carsrp    repo.Cars
	rentalsrp repo.Rentals

	maxPricePerDay float64
}

// New instantiates a cars use case. The price cap defaults to
// DefaultMaxPricePerDay unless WithMaxPricePerDay is given.
func New(
	p repo.Pool, c repo.Cars, r repo.Rentals, opts ...Option,
) (*UseCase, error) {
	uc := &UseCase{pool: p, carsrp: c, rentalsrp: r}
	for _, opt := range opts {
		if err := opt(uc); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}
	if uc.maxPricePerDay == 0 {
		uc.maxPricePerDay = DefaultMaxPricePerDay
	}
	return uc, nil
}

// DefaultMaxPricePerDay caps the daily price of new cars.
const DefaultMaxPricePerDay = 100000

// List returns the catalog ordered by ID.
func (cars *UseCase) List(ctx context.Context) (list []model.Car, err error) {
	err = cars.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		list, err = cars.carsrp.Conn(c).List(ctx)
		return err
	})
	if err != nil {
		list = nil
	}
	return
}

// Get use case returns the carID car or a NotFound error.
func (cars *UseCase) Get(ctx context.Context, carID int64) (car *model.Car, err error) {
	err = cars.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		car, err = cars.carsrp.Conn(c).Get(ctx, carID)
		return err
	})
	if err != nil {
		car = nil
	}
	return
}

func (cars *UseCase) validate(actor model.Actor, car *model.Car) error {
	if !actor.Admin {
		return cerr.Authorization(cerr.ErrAdminOnly)
	}
	switch {
	case car.Name == "":
		return cerr.BadRequest(errors.New("name is required"))
	case car.CarModel == "":
		return cerr.BadRequest(errors.New("carModel is required"))
	case car.PricePerDay <= 0 || car.PricePerDay > cars.maxPricePerDay:
		return cerr.BadRequest(fmt.Errorf(
			"pricePerDay must be in (0, %g]", cars.maxPricePerDay,
		))
	}
	return nil
}

// Create use case adds car to the catalog if actor is an admin.
// New cars are always available since they have no rental yet.
func (cars *UseCase) Create(ctx context.Context, actor model.Actor, car *model.Car) (created *model.Car, err error) {
	if err = cars.validate(actor, car); err != nil {
		return nil, err
	}
	c := *car
	c.Available = true
	err = cars.pool.Conn(ctx, func(ctx context.Context, cn repo.Conn) error {
		created, err = cars.carsrp.Conn(cn).Create(ctx, &c)
		return err
	})
	if err != nil {
		return nil, err
	}
	log.Info(ctx, "car is created", log.CarID(created.ID), log.RequestID(ctx))
	return created, nil
}

// Update use case replaces the catalog fields of the car.ID car. The
// availability flag is left alone since it follows the rentals.
// The new price only affects rentals which are created or returned
// afterwards.
func (cars *UseCase) Update(ctx context.Context, actor model.Actor, car *model.Car) (updated *model.Car, err error) {
	if err = cars.validate(actor, car); err != nil {
		return nil, err
	}
	err = cars.pool.Conn(ctx, func(ctx context.Context, cn repo.Conn) error {
		updated, err = cars.carsrp.Conn(cn).Update(ctx, car)
		return err
	})
	if err != nil {
		return nil, err
	}
	log.Info(ctx, "car is updated", log.CarID(updated.ID), log.RequestID(ctx))
	return updated, nil
}

// Delete use case removes the carID car from the catalog. The car row
// is locked while its active rentals are checked, so it cannot be
// booked concurrently. Cars which have active rentals are refused with
// ErrCarRented and cars which have past rentals with ErrCarHasRentals,
// both as Conflict errors.
func (cars *UseCase) Delete(ctx context.Context, actor model.Actor, carID int64) error {
	if !actor.Admin {
		return cerr.Authorization(cerr.ErrAdminOnly)
	}
	err := cars.pool.Conn(ctx, func(ctx context.Context, cn repo.Conn) error {
		return cn.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			cq := cars.carsrp.Tx(tx)
			if _, err := cq.GetForUpdate(ctx, carID); err != nil {
				return err
			}
			active, err := cars.rentalsrp.Tx(tx).ListActiveByCar(ctx, carID)
			if err != nil {
				return fmt.Errorf("listing active rentals: %w", err)
			}
			if len(active) > 0 {
				return cerr.Conflict(fmt.Errorf(
					"%w: id=%d, active=%d", cerr.ErrCarRented, carID, len(active),
				))
			}
			return cq.Delete(ctx, carID)
		})
	})
	if err != nil {
		return err
	}
	log.Info(ctx, "car is deleted", log.CarID(carID), log.RequestID(ctx))
	return nil
}
