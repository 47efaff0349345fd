// Copyright (c) 2025 The Car-Retal-Api Authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package rentaluc

import (
	"errors"
	"fmt"
	"time"

	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/core/model"
	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/core/repo"
)

// Option is a functional option for the rentals use case.
type Option func(uc *UseCase) error

// WithProfiles option makes the rentals use case to update the rental
// history of user profiles in the same transaction which changes
// a rental. A missing user profile fails the rental creation.
func WithProfiles(p repo.Profiles) Option {
	return func(uc *UseCase) error {
		if p == nil {
			return errors.New("profiles repo is nil")
		}
		if uc.profilesrp != nil {
			return errors.New("profiles repo is already configured")
		}
		uc.profilesrp = p
		return nil
	}
}

// WithProjector option makes the rentals use case to update the
// rental history of user profiles using p after each rental change
// is committed. Failures are logged and counted, but they do not
// revert the rental change.
func WithProjector(p Projector) Option {
	return func(uc *UseCase) error {
		if p == nil {
			return errors.New("projector is nil")
		}
		if uc.projector != nil {
			return errors.New("projector is already configured")
		}
		uc.projector = p
		return nil
	}
}

// WithClock replaces the time.Now function which is used for
// computing prices and deciding if a rental has started.
func WithClock(now func() time.Time) Option {
	return func(uc *UseCase) error {
		if now == nil {
			return errors.New("clock is nil")
		}
		uc.now = now
		return nil
	}
}

// WithMetrics option configures the Metrics which should be informed
// about rental events.
func WithMetrics(m Metrics) Option {
	return func(uc *UseCase) error {
		if m == nil {
			return errors.New("metrics is nil")
		}
		uc.metrics = m
		return nil
	}
}

// WithSerializationRetries option configures how many times a rental
// transaction may be repeated after being aborted by a concurrent
// update. It defaults to one.
func WithSerializationRetries(n int) Option {
	return func(uc *UseCase) error {
		if n < 0 || n > 10 {
			return fmt.Errorf("retries (%d) is not in [0, 10]", n)
		}
		uc.retries = n
		uc.retrySet = true
		return nil
	}
}

// MaxRentalDaysLimit is the upper bound of WithMaxRentalDays.
const MaxRentalDaysLimit = 3650

// WithMaxRentalDays option configures the longest period, in days,
// which may be booked by one rental. It defaults to
// DefaultMaxRentalDays.
func WithMaxRentalDays(n int) Option {
	return func(uc *UseCase) error {
		if n < 1 || n > MaxRentalDaysLimit {
			return fmt.Errorf(
				"max rental days (%d) is not in [1, %d]", n, MaxRentalDaysLimit,
			)
		}
		uc.maxLength = time.Duration(n) * model.Day
		return nil
	}
}
