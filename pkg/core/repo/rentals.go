// Copyright (c) 2025 The Car-Retal-Api Authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package repo

import (
	"context"

	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/core/model"
)

// Rentals interface presents expectations from the rentals repository.
// Rentals are only modified within transactions because each change
// must be checked against the other active rentals of the same car.
type Rentals interface {
	Conn(Conn) RentalsConnQueryer
	Tx(Tx) RentalsTxQueryer
}

type RentalsConnQueryer interface {
	RentalsQueryer
}

type RentalsTxQueryer interface {
	RentalsQueryer

	// GetForUpdate fetches the rentalID rental and locks its row
	// until the end of the current transaction.
	GetForUpdate(ctx context.Context, rentalID int64) (*model.Rental, error)

	// Insert persists r and returns it with its generated ID and
	// CreatedAt fields.
	Insert(ctx context.Context, r *model.Rental) (*model.Rental, error)

	// Close persists the EndDate, TotalPrice, Status, and ClosedAt
	// fields of r which must exist.
	Close(ctx context.Context, r *model.Rental) error
}

type RentalsQueryer interface {
	// Get returns the rentalID rental or a cerr.NotFound error.
	Get(ctx context.Context, rentalID int64) (*model.Rental, error)

	// ListActiveByCar returns all active rentals of the carID car.
	ListActiveByCar(ctx context.Context, carID int64) ([]model.Rental, error)

	// ListByUser returns all rentals of the userID user, most recent
	// start dates first.
	ListByUser(ctx context.Context, userID int64) ([]model.Rental, error)
}
