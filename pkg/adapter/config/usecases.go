// Copyright (c) 2025 The Car-Retal-Api Authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/adapter/auth/jwtauth"
	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/adapter/config/settings"
	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/adapter/restful/client/usersvc"
	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/core/model"
	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/core/repo"
	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/core/usecase/carsuc"
	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/core/usecase/profilesuc"
	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/core/usecase/rentaluc"
)

// Usecases contains the configuration settings for all use cases.
type Usecases struct {
	Cars    Cars    // cars use cases related settings
	Rentals Rentals // rentals use cases related settings
}

// ValidateAndNormalize validates the settings of all use cases.
func (u *Usecases) ValidateAndNormalize() error {
	if err := u.Cars.ValidateAndNormalize(); err != nil {
		return fmt.Errorf("cars: %w", err)
	}
	if err := u.Rentals.ValidateAndNormalize(); err != nil {
		return fmt.Errorf("rentals: %w", err)
	}
	return nil
}

// Cars contains the configuration settings for the cars use cases.
// A nil field is left for the use cases layer to choose its default.
type Cars struct {
	// MaxPricePerDay is the most expensive daily price which may be
	// set for a new car.
	MaxPricePerDay *float64 `yaml:"max-price-per-day"`
}

// ValidateAndNormalize rejects a non-positive price cap.
func (c *Cars) ValidateAndNormalize() error {
	if c.MaxPricePerDay != nil && *c.MaxPricePerDay <= 0 {
		return fmt.Errorf(
			"max-price-per-day (%g) must be positive", *c.MaxPricePerDay,
		)
	}
	return nil
}

// NewUseCase instantiates a new cars use case based on the settings
// in the `c` struct.
func (c Cars) NewUseCase(
	p repo.Pool, cars repo.Cars, rentals repo.Rentals,
) (*carsuc.UseCase, error) {
	opts := make([]carsuc.Option, 0, 1)
	if c.MaxPricePerDay != nil {
		opts = append(opts, carsuc.WithMaxPricePerDay(*c.MaxPricePerDay))
	}
	return carsuc.New(p, cars, rentals, opts...)
}

// Rental history modes. In the local mode, user profiles live in the
// same database and are updated in the rental transactions. In the
// remote mode, the user service is called after each commit.
const (
	HistoryLocal  = "local"
	HistoryRemote = "remote"
)

// These are the acceptable bounds of the Rentals.Timeout setting.
var (
	MinUserServiceTimeout = settings.Duration(100 * time.Millisecond)
	MaxUserServiceTimeout = settings.Duration(time.Minute)
)

// Rentals contains the configuration settings for the rentals use
// cases.
type Rentals struct {
	// History is either local (the default) or remote.
	History string
	// UserServiceURL is the base URL of the user service which is
	// required in the remote mode.
	UserServiceURL string `yaml:"user-service-url,omitempty"`
	// ServiceToken authenticates the user service calls. If it is
	// empty, short-lived admin tokens are signed with the jwt-secret.
	ServiceToken string `yaml:"service-token,omitempty"`
	// Timeout bounds each user service call, 5s by default.
	Timeout *settings.Duration
	// SerializationRetries is the number of times that a rental
	// transaction is repeated after a concurrent update aborts it.
	SerializationRetries *int `yaml:"serialization-retries"`
	// MaxRentalDays is the longest bookable rental period, 365 days
	// by default.
	MaxRentalDays *int `yaml:"max-rental-days"`
}

// ValidateAndNormalize fills the defaults and validates the history
// mode related settings.
func (r *Rentals) ValidateAndNormalize() error {
	switch r.History {
	case "":
		r.History = HistoryLocal
	case HistoryLocal, HistoryRemote:
	default:
		return fmt.Errorf("unknown history mode: %q", r.History)
	}
	if r.History == HistoryRemote {
		u, err := url.Parse(r.UserServiceURL)
		if err != nil || u.Host == "" ||
			(u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Errorf(
				"invalid user-service-url: %q", r.UserServiceURL,
			)
		}
	}
	settings.Default(&r.Timeout, settings.Duration(5*time.Second))
	if err := settings.Clamp(
		r.Timeout, MinUserServiceTimeout, MaxUserServiceTimeout,
	); err != nil {
		return fmt.Errorf("timeout: %w", err)
	}
	if err := settings.Clamp(r.SerializationRetries, 0, 10); err != nil {
		return fmt.Errorf("serialization-retries: %w", err)
	}
	settings.Default(&r.MaxRentalDays, rentaluc.DefaultMaxRentalDays)
	if err := settings.Clamp(
		r.MaxRentalDays, 1, rentaluc.MaxRentalDaysLimit,
	); err != nil {
		return fmt.Errorf("max-rental-days: %w", err)
	}
	return nil
}

// serviceTokenTTL is the lifetime of the signed service tokens.
const serviceTokenTTL = time.Minute

// tokenSource returns the static service token, or signs a fresh
// admin token with v for each call.
func (r Rentals) tokenSource(v *jwtauth.Verifier) usersvc.TokenSource {
	if r.ServiceToken != "" {
		return usersvc.StaticToken(r.ServiceToken)
	}
	return func() (string, error) {
		return v.Sign(model.Actor{Admin: true}, serviceTokenTTL)
	}
}

// NewUseCase instantiates a new rentals use case based on the
// settings in the `r` struct. The profiles repository is only used
// in the local history mode and v is only used in the remote mode.
// The m metrics may be nil.
func (r Rentals) NewUseCase(
	p repo.Pool,
	rentals repo.Rentals,
	cars repo.Cars,
	profiles repo.Profiles,
	v *jwtauth.Verifier,
	m rentaluc.Metrics,
) (*rentaluc.UseCase, error) {
	opts := make([]rentaluc.Option, 0, 4)
	switch r.History {
	case HistoryRemote:
		c, err := usersvc.New(
			r.UserServiceURL, r.tokenSource(v), r.Timeout.Std(),
		)
		if err != nil {
			return nil, fmt.Errorf("creating user service client: %w", err)
		}
		opts = append(opts, rentaluc.WithProjector(c))
	default:
		opts = append(opts, rentaluc.WithProfiles(profiles))
	}
	if m != nil {
		opts = append(opts, rentaluc.WithMetrics(m))
	}
	if r.SerializationRetries != nil {
		opts = append(opts, rentaluc.WithSerializationRetries(
			*r.SerializationRetries,
		))
	}
	if r.MaxRentalDays != nil {
		opts = append(opts, rentaluc.WithMaxRentalDays(*r.MaxRentalDays))
	}
	return rentaluc.New(p, rentals, cars, opts...)
}

// NewProfilesUseCase instantiates the user profiles use case.
func (u Usecases) NewProfilesUseCase(
	p repo.Pool, r repo.Profiles,
) *profilesuc.UseCase {
	return profilesuc.New(p, r)
}
