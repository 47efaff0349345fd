// Copyright (c) 2025 The Car-Retal-Api Authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package settings

import (
	"cmp"
	"fmt"
)

// RangeError reports a setting which was clamped into [Min, Max].
type RangeError[T cmp.Ordered] struct {
	Value, Min, Max T
}

func (e *RangeError[T]) Error() string {
	return fmt.Sprintf("%v is out of the [%v, %v] range", e.Value, e.Min, e.Max)
}

// Clamp moves the optional *v setting into the [lo, hi] range.
// A nil v is accepted as is. Out of range values are replaced by the
// nearest boundary and reported with a *RangeError, so callers may
// either fail or log and carry on with the clamped value.
func Clamp[T cmp.Ordered](v *T, lo, hi T) error {
	if lo > hi {
		panic(fmt.Sprintf("settings: empty range [%v, %v]", lo, hi))
	}
	if v == nil {
		return nil
	}
	if c := min(max(*v, lo), hi); c != *v {
		err := &RangeError[T]{Value: *v, Min: lo, Max: hi}
		*v = c
		return err
	}
	return nil
}
