// Copyright (c) 2025 The Car-Retal-Api Authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package model defines the inner most layer of the Clean Architecture
// containing the business-level models, also called entities or domain.
// This layer may not depend on outter layers, while all other layers
// may depend on it.
// Structs in this package carry json tags since they are returned by
// the REST APIs as they are, while their database representations
// (with ORM tags and column names) are kept by the repository packages.
package model

// Car models a car of the rental catalog.
// The Available flag is a projection of the rentals table which is
// updated whenever a rental of this car is created, returned, or
// cancelled. It is not authoritative; overlapping checks always
// consult the rentals themselves.
type Car struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	CarModel    string  `json:"carModel"`
	Year        int     `json:"year,omitempty"`
	Color       string  `json:"color,omitempty"`
	PricePerDay float64 `json:"pricePerDay"`
	Available   bool    `json:"availability"`
}
