// Copyright (c) 2025 The Car-Retal-Api Authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package settings contains the helpers which are shared by the
// configuration sections. Optional settings are kept as pointers, so
// a missing YAML key can be told apart from a zero value and filled
// by its default after loading.
package settings

// Default points *p to a copy of def if *p is nil.
func Default[T any](p **T, def T) {
	if *p == nil {
		*p = &def
	}
}
