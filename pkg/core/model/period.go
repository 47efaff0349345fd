// Copyright (c) 2025 The Car-Retal-Api Authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import (
	"errors"
	"fmt"
	"time"
)

// Day is the billing unit of rentals.
const Day = 24 * time.Hour

// Errors of the Period validation.
var (
	ErrEmptyPeriod   = errors.New("end date must be after start date")
	ErrPeriodTooLong = errors.New("rental period is too long")
)

// Period is a half-open time interval [Start, End).
type Period struct {
	Start, End time.Time
}

// Validate returns ErrEmptyPeriod unless Start is before End.
func (p Period) Validate() error {
	if !p.Start.Before(p.End) {
		return ErrEmptyPeriod
	}
	return nil
}

// ValidateLength is like Validate, but it also returns
// ErrPeriodTooLong if p lasts longer than maxLen.
func (p Period) ValidateLength(maxLen time.Duration) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if p.Duration() > maxLen {
		return fmt.Errorf("%w: at most %d days are allowed",
			ErrPeriodTooLong, BillableDays(maxLen),
		)
	}
	return nil
}

// Overlaps reports if p and o intersect. Since both are half-open,
// a period which ends exactly when the other one starts does not
// overlap with it. Nested and partially overlapping periods do.
func (p Period) Overlaps(o Period) bool {
	return p.Start.Before(o.End) && p.End.After(o.Start)
}

// Duration returns End-Start. It saturates to the extreme
// time.Duration values for periods longer than about 292 years.
func (p Period) Duration() time.Duration {
	return p.End.Sub(p.Start)
}

// BillableDays returns the number of started days in d, so partial
// days are charged as full days. Non-positive durations bill nothing.
func BillableDays(d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	days := int64(d / Day)
	if d%Day != 0 {
		days++
	}
	return days
}

// Price computes the total price of days rental days.
func Price(days int64, pricePerDay float64) float64 {
	return float64(days) * pricePerDay
}
