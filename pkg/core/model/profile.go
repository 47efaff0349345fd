// Copyright (c) 2025 The Car-Retal-Api Authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import "time"

// UserProfile models the profile of a platform user.
// RentalHistory is a denormalized copy of the user rentals, appended
// when a rental is created and patched in place when it is returned
// or cancelled.
type UserProfile struct {
	ID            int64            `json:"id"`
	UserID        int64            `json:"userId"`
	FullName      string           `json:"fullName"`
	Phone         string           `json:"phone,omitempty"`
	Address       string           `json:"address,omitempty"`
	AvatarURL     string           `json:"avatarUrl,omitempty"`
	RentalHistory []RentalSnapshot `json:"rentalHistory"`
	CreatedAt     time.Time        `json:"createdAt"`
}

// RentalSnapshot is one entry of the UserProfile.RentalHistory.
type RentalSnapshot struct {
	RentalID        int64        `json:"rentalId"`
	CarID           int64        `json:"carId"`
	StartDate       time.Time    `json:"startDate"`
	EndDate         time.Time    `json:"endDate"`
	PickupLocation  string       `json:"pickupLocation,omitempty"`
	DropoffLocation string       `json:"dropoffLocation,omitempty"`
	TotalPrice      float64      `json:"totalPrice"`
	Status          RentalStatus `json:"status"`
}

// PatchRental replaces the history entry which has the same RentalID
// as s, keeping the order of entries. It returns false if no such
// entry exists and leaves the history intact.
func PatchRental(history []RentalSnapshot, s RentalSnapshot) bool {
	for i := range history {
		if history[i].RentalID == s.RentalID {
			history[i] = s
			return true
		}
	}
	return false
}
