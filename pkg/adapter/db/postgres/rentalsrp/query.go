// Copyright (c) 2025 The Car-Retal-Api Authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package rentalsrp implements the repo.Rentals interface using GORM.
// Each query is implemented as a generic function which accepts either
// a connection or a transaction, while the Repo type adapts them to
// the repo package interfaces.
package rentalsrp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/adapter/db/postgres"
	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/core/cerr"
	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/core/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type gRental struct {
	ID              int64 `gorm:"primaryKey"`
	UserID          int64
	CarID           int64
	StartDate       time.Time
	EndDate         time.Time
	PickupLocation  string
	DropoffLocation string
	TotalPrice      float64
	Status          string
	CreatedAt       time.Time
	ClosedAt        *time.Time
}

func (gr *gRental) TableName() string {
	return "rentals"
}

// Model converts gr to a model.Rental. Unknown status strings are
// reported as errors because the status column is constrained by a
// CHECK and they indicate a schema mismatch.
func (gr *gRental) Model() (*model.Rental, error) {
	st, err := model.ParseRentalStatus(gr.Status)
	if err != nil {
		return nil, fmt.Errorf("rental %d status %q: %w", gr.ID, gr.Status, err)
	}
	return &model.Rental{
		ID:              gr.ID,
		UserID:          gr.UserID,
		CarID:           gr.CarID,
		StartDate:       gr.StartDate.UTC(),
		EndDate:         gr.EndDate.UTC(),
		PickupLocation:  gr.PickupLocation,
		DropoffLocation: gr.DropoffLocation,
		TotalPrice:      gr.TotalPrice,
		Status:          st,
		CreatedAt:       gr.CreatedAt.UTC(),
		ClosedAt:        gr.ClosedAt,
	}, nil
}

func models(grs []gRental) ([]model.Rental, error) {
	rentals := make([]model.Rental, 0, len(grs))
	for i := range grs {
		r, err := grs[i].Model()
		if err != nil {
			return nil, err
		}
		rentals = append(rentals, *r)
	}
	return rentals, nil
}

func Get[Q postgres.Queryer](ctx context.Context, q Q, rentalID int64) (*model.Rental, error) {
	return get(q.GORM(ctx), rentalID)
}

// GetForUpdate fetches a rental and locks its row until the end of tx.
func GetForUpdate(ctx context.Context, tx *postgres.Tx, rentalID int64) (*model.Rental, error) {
	gdb := tx.GORM(ctx).Clauses(clause.Locking{Strength: "UPDATE"})
	return get(gdb, rentalID)
}

func get(gdb *gorm.DB, rentalID int64) (*model.Rental, error) {
	gr := &gRental{}
	err := gdb.Take(gr, "id = ?", rentalID).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, cerr.NotFound(
			fmt.Errorf("%w: id=%d", cerr.ErrRentalNotFound, rentalID),
		)
	case err != nil:
		return nil, fmt.Errorf("query: %w", err)
	}
	return gr.Model()
}

func ListActiveByCar[Q postgres.Queryer](ctx context.Context, q Q, carID int64) ([]model.Rental, error) {
	var grs []gRental
	err := q.GORM(ctx).Where(
		"car_id = ? AND status = ?", carID, model.RentalStatusActive.String(),
	).Order("start_date").Find(&grs).Error
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	return models(grs)
}

func ListByUser[Q postgres.Queryer](ctx context.Context, q Q, userID int64) ([]model.Rental, error) {
	var grs []gRental
	err := q.GORM(ctx).Where(
		"user_id = ?", userID,
	).Order("start_date DESC, id DESC").Find(&grs).Error
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	return models(grs)
}

func Insert(ctx context.Context, tx *postgres.Tx, r *model.Rental) (*model.Rental, error) {
	if err := r.Status.Validate(); err != nil {
		return nil, err
	}
	gr := &gRental{
		UserID:          r.UserID,
		CarID:           r.CarID,
		StartDate:       r.StartDate,
		EndDate:         r.EndDate,
		PickupLocation:  r.PickupLocation,
		DropoffLocation: r.DropoffLocation,
		TotalPrice:      r.TotalPrice,
		Status:          r.Status.String(),
		CreatedAt:       r.CreatedAt,
		ClosedAt:        r.ClosedAt,
	}
	if err := tx.GORM(ctx).Create(gr).Error; err != nil {
		if postgres.IsForeignKeyViolation(err) {
			return nil, cerr.NotFound(
				fmt.Errorf("%w: id=%d", cerr.ErrCarNotFound, r.CarID),
			)
		}
		return nil, fmt.Errorf("insert: %w", err)
	}
	return gr.Model()
}

func Close(ctx context.Context, tx *postgres.Tx, r *model.Rental) error {
	if err := r.Status.Validate(); err != nil {
		return err
	}
	gdb := tx.GORM(ctx).Model(&gRental{}).Where(
		"id = ?", r.ID,
	).Updates(map[string]any{
		"end_date":    r.EndDate,
		"total_price": r.TotalPrice,
		"status":      r.Status.String(),
		"closed_at":   r.ClosedAt,
	})
	if err := gdb.Error; err != nil {
		return fmt.Errorf("update: %w", err)
	}
	if gdb.RowsAffected != 1 {
		return cerr.NotFound(
			fmt.Errorf("%w: id=%d", cerr.ErrRentalNotFound, r.ID),
		)
	}
	return nil
}
