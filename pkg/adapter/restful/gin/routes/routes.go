// Copyright (c) 2025 The Car-Retal-Api Authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package routes contains all resource packages and facilitates
// instantiation and registration of all repo, use case, and resource
// packages based on the user provided configuration settings.
package routes

import (
	"context"
	"fmt"

	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/adapter/config"
	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/adapter/db/postgres/carsrp"
	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/adapter/db/postgres/profilesrp"
	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/adapter/db/postgres/rentalsrp"
	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/adapter/restful/gin/carsrs"
	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/adapter/restful/gin/middleware"
	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/adapter/restful/gin/profilesrs"
	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/adapter/restful/gin/rentalsrs"
	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/core/repo"
	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/core/usecase/rentaluc"
	"github.com/gin-gonic/gin"
)

// Repos holds the repositories which are passed to the use cases.
type Repos struct {
	Cars     repo.Cars
	Rentals  repo.Rentals
	Profiles repo.Profiles
}

// PostgresRepos returns the GORM based repositories.
func PostgresRepos() Repos {
	return Repos{
		Cars:     carsrp.New(),
		Rentals:  rentalsrp.New(),
		Profiles: profilesrp.New(),
	}
}

// Register instantiates relevant use cases based on the c
// configuration settings and the rs repositories. The p connections
// pool is passed to the use case instances, so they may
// acquire/release connections and transactions on demand. These
// connections/transactions will be passed to the repositories later
// in order to run relevant queries on them and accomplish those use
// cases. Register instantiates a series of "resource" structs, from
// packages which are named like carsrs, in order to adapt the use
// cases interfaces with the REST APIs. These resources are registered
// as request handlers using the e gin-gonic engine instance, behind
// the rate limiting, metrics, and authentication middlewares.
// The returned closer releases the Redis client of rate limiters and
// must be called after the server is stopped.
func Register(
	ctx context.Context, e *gin.Engine, p repo.Pool, rs Repos, c *config.Config,
) (closer func() error, err error) {
	closer = func() error { return nil }
	v, err := c.Auth.NewVerifier()
	if err != nil {
		return nil, fmt.Errorf("creating jwt verifier: %w", err)
	}
	var um rentaluc.Metrics
	if m := c.Metrics.New(); m != nil {
		e.Use(middleware.Metrics(m))
		e.GET(c.Metrics.Path, gin.WrapH(m.Handler()))
		um = m
	}
	limiters, err := c.RateLimit.NewLimiters(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating rate limiters: %w", err)
	}
	var sensitive []gin.HandlerFunc
	if limiters != nil {
		closer = limiters.Close
		e.Use(middleware.RateLimit(limiters.Global, limiters.Whitelist))
		sensitive = append(sensitive, middleware.RateLimit(
			limiters.Sensitive, limiters.Whitelist,
		))
	}
	defer func() {
		if err != nil {
			_ = closer()
			closer = nil
		}
	}()

	carsUseCase, err := c.Usecases.Cars.NewUseCase(p, rs.Cars, rs.Rentals)
	if err != nil {
		return nil, fmt.Errorf("creating cars use case: %w", err)
	}
	rentalsUseCase, err := c.Usecases.Rentals.NewUseCase(
		p, rs.Rentals, rs.Cars, rs.Profiles, v, um,
	)
	if err != nil {
		return nil, fmt.Errorf("creating rentals use case: %w", err)
	}
	profilesUseCase := c.Usecases.NewProfilesUseCase(p, rs.Profiles)

	auth := middleware.Auth(v)
	api := e.Group("/api")
	carsrs.Register(api.Group("car"), carsUseCase, auth, middleware.AdminOnly())
	rentalsrs.Register(
		api.Group("rental", append(sensitive, auth)...), rentalsUseCase,
	)
	profilesrs.Register(api.Group("user", auth), profilesUseCase)
	return closer, nil
}
