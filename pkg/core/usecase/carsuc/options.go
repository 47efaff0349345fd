// Copyright (c) 2025 The Car-Retal-Api Authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package carsuc

import (
	"errors"
	"fmt"
)

// Option is a functional option for the cars use case.
type Option func(uc *UseCase) error

// WithMaxPricePerDay option configures a cars UseCase instance in
// order to reject new cars which are more expensive than max per day.
// This option may be passed to the New() function.
func WithMaxPricePerDay(max float64) Option {
	return func(uc *UseCase) error {
		if max <= 0 {
			return fmt.Errorf("max price (%g) is not positive", max)
		}
		if uc.maxPricePerDay != 0 {
			return errors.New("max price is already configured")
		}
		uc.maxPricePerDay = max
		return nil
	}
}
