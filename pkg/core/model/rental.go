// Copyright (c) 2025 The Car-Retal-Api Authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import "time"

// Rental models the booking of a car by a user in a time period.
// Rentals are the single source of truth for scheduling: for a fixed
// car, no two active rentals may have overlapping periods.
type Rental struct {
	ID              int64        `json:"id"`
	UserID          int64        `json:"userId"`
	CarID           int64        `json:"carId"`
	StartDate       time.Time    `json:"startDate"`
	EndDate         time.Time    `json:"endDate"`
	PickupLocation  string       `json:"pickupLocation,omitempty"`
	DropoffLocation string       `json:"dropoffLocation,omitempty"`
	TotalPrice      float64      `json:"totalPrice"`
	Status          RentalStatus `json:"status"`
	CreatedAt       time.Time    `json:"createdAt"`
	ClosedAt        *time.Time   `json:"closedAt,omitempty"`
}

// Period returns the [StartDate, EndDate) interval of r.
func (r *Rental) Period() Period {
	return Period{Start: r.StartDate, End: r.EndDate}
}

// Snapshot copies the fields of r which are kept in the rental history
// of its user profile.
func (r *Rental) Snapshot() RentalSnapshot {
	return RentalSnapshot{
		RentalID:        r.ID,
		CarID:           r.CarID,
		StartDate:       r.StartDate,
		EndDate:         r.EndDate,
		PickupLocation:  r.PickupLocation,
		DropoffLocation: r.DropoffLocation,
		TotalPrice:      r.TotalPrice,
		Status:          r.Status,
	}
}
