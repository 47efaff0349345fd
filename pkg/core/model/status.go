// Copyright (c) 2025 The Car-Retal-Api Authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import (
	"errors"
	"fmt"
)

// RentalStatus specifies the lifecycle state of a rental.
// Although this enum is numeric, it is (de)serialized as a string
// both in the REST APIs and in the database.
type RentalStatus int

// Valid values for the RentalStatus enum.
const (
	RentalStatusInvalid RentalStatus = iota // zero value is invalid

	RentalStatusActive    // car-time-slot is held by the rental
	RentalStatusCompleted // car was returned (terminal)
	RentalStatusCancelled // rental was cancelled before start (terminal)
)

// ErrUnknownRentalStatus indicates that a given string may not be
// parsed as a known rental status. The invalid string itself is not
// included since the caller of ParseRentalStatus knows about it.
var ErrUnknownRentalStatus = errors.New("unknown rental status")

// RentalStatusError indicates an invalid numeric rental status.
type RentalStatusError int

// Error implements the error interface.
func (e RentalStatusError) Error() string {
	return fmt.Sprintf("invalid rental status: %d", e)
}

// Validate returns nil if RentalStatus value is valid. For invalid
// values, an instance of the RentalStatusError will be returned.
func (s RentalStatus) Validate() error {
	switch s {
	case RentalStatusActive, RentalStatusCompleted, RentalStatusCancelled:
		return nil
	default:
		return RentalStatusError(s)
	}
}

// IsTerminal reports if no further transition may leave s.
func (s RentalStatus) IsTerminal() bool {
	return s == RentalStatusCompleted || s == RentalStatusCancelled
}

// String converts the RentalStatus enum to a string.
// Invalid statuses cause a panic.
func (s RentalStatus) String() string {
	switch s {
	case RentalStatusActive:
		return "active"
	case RentalStatusCompleted:
		return "completed"
	case RentalStatusCancelled:
		return "cancelled"
	default:
		panic(RentalStatusError(s))
	}
}

// ParseRentalStatus parses the given string and returns a RentalStatus.
// For invalid strings, RentalStatusInvalid and ErrUnknownRentalStatus
// will be returned.
func ParseRentalStatus(s string) (RentalStatus, error) {
	switch s {
	case "active":
		return RentalStatusActive, nil
	case "completed":
		return RentalStatusCompleted, nil
	case "cancelled":
		return RentalStatusCancelled, nil
	default:
		return RentalStatusInvalid, ErrUnknownRentalStatus
	}
}

// MarshalText implements the encoding.TextMarshaler interface.
func (s RentalStatus) MarshalText() ([]byte, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements the encoding.TextUnmarshaler interface.
func (s *RentalStatus) UnmarshalText(text []byte) error {
	ss, err := ParseRentalStatus(string(text))
	if err != nil {
		return err
	}
	*s = ss
	return nil
}
