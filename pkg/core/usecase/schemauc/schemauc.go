// Copyright (c) 2025 The Car-Retal-Api Authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package schemauc contains the database initialization use case which
// prepares an empty database for the rentals web server.
package schemauc

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/core/log"
	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/core/model"
	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/core/repo"
)

// Settings interface specifies the configuration settings which are
// required for the database initialization.
type Settings interface {
	// ConnectionPool connects as the r role. Caller closes the pool.
	ConnectionPool(ctx context.Context, r repo.Role) (repo.Pool, error)

	// NewSchemaRepo instantiates a repo.Schema which manages roles
	// and the tables.
	NewSchemaRepo() repo.Schema

	// RenewPasswords generates new random passwords for the given
	// roles and calls change in order to update them in the database.
	// The new passwords are stored in a temporary pass-file which
	// replaces the main pass-file when the returned finalizer is
	// called. Caller must call finalizer after the transaction which
	// ran change is committed. If the process crashes between those
	// steps, the ConnectionPool tries both pass-files.
	RenewPasswords(
		ctx context.Context,
		change func(
			ctx context.Context, roles []repo.Role, passwords []string,
		) error,
		roles ...repo.Role,
	) (finalizer func() error, err error)
}

// DevCars is the car catalog which is inserted by InitDev.
var DevCars = []model.Car{
	{Name: "Corolla", CarModel: "Toyota", Year: 2022, Color: "white", PricePerDay: 45},
	{Name: "Civic", CarModel: "Honda", Year: 2023, Color: "black", PricePerDay: 50},
	{Name: "Model 3", CarModel: "Tesla", Year: 2024, Color: "red", PricePerDay: 110},
}

// InitDBUseCase prepares an empty database for the rentalweb server,
// either for production (InitProd) or with sample cars (InitDev).
type InitDBUseCase struct {
	settings   Settings
	schemaRepo repo.Schema
	carsRepo   repo.Cars // seeds DevCars
}

// NewInitDB creates an InitDBUseCase instance, using the ss settings
// in order to find the target database connection information.
func NewInitDB(ss Settings, cars repo.Cars) *InitDBUseCase {
	return &InitDBUseCase{
		settings:   ss,
		schemaRepo: ss.NewSchemaRepo(),
		carsRepo:   cars,
	}
}

// InitProd creates the rental schema (if missing) using the admin
// role. It also creates the normal role (if it does not exist), grants
// privileges on the schema to the normal role so it can create tables,
// and renews passwords of both admin and normal roles in a single
// transaction. Thereafter, it connects to the target database using
// the normal role and creates the tables in a second transaction.
// Running InitProd on an initialized database keeps its rows intact.
func (iduc *InitDBUseCase) InitProd(ctx context.Context) error {
	return iduc.initDB(ctx, false)
}

// InitDev is like InitProd, but also fills an empty cars table with
// the DevCars catalog.
func (iduc *InitDBUseCase) InitDev(ctx context.Context) error {
	return iduc.initDB(ctx, true)
}

func (iduc *InitDBUseCase) initDB(ctx context.Context, dev bool) error {
	if err := iduc.prepareSchema(ctx); err != nil {
		return fmt.Errorf("preparing schema: %w", err)
	}
	p, err := iduc.settings.ConnectionPool(ctx, repo.NormalRole)
	if err != nil {
		return fmt.Errorf("creating DB pool for normal role: %w", err)
	}
	defer p.Close()
	err = p.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			if err := iduc.schemaRepo.Tx(tx).CreateTables(ctx); err != nil {
				return fmt.Errorf("creating tables: %w", err)
			}
			if !dev {
				return nil
			}
			return iduc.seedCars(ctx, iduc.carsRepo.Tx(tx))
		})
	})
	if err != nil {
		return fmt.Errorf("normal connection: %w", err)
	}
	log.Info(ctx, "database is initialized", slog.Bool("dev", dev))
	return nil
}

func (iduc *InitDBUseCase) seedCars(
	ctx context.Context, q repo.CarsTxQueryer,
) error {
	cars, err := q.List(ctx)
	if err != nil {
		return fmt.Errorf("listing cars: %w", err)
	}
	if len(cars) > 0 {
		return nil
	}
	for i := range DevCars {
		c := DevCars[i]
		c.Available = true
		if _, err := q.Create(ctx, &c); err != nil {
			return fmt.Errorf("inserting %q car: %w", c.Name, err)
		}
	}
	return nil
}

// prepareSchema runs as the admin role. It creates the schema and
// the normal role, lets the normal role use them, and renews both
// passwords in the same transaction.
func (iduc *InitDBUseCase) prepareSchema(ctx context.Context) error {
	p, err := iduc.settings.ConnectionPool(ctx, repo.AdminRole)
	if err != nil {
		return fmt.Errorf("creating DB pool for admin: %w", err)
	}
	defer p.Close()
	sn, normal := repo.SchemaName, repo.NormalRole
	var finalizer func() error
	steps := []struct {
		name string
		run  func(ctx context.Context, q repo.SchemaTxQueryer) error
	}{
		{"creating schema", func(ctx context.Context, q repo.SchemaTxQueryer) error {
			return q.CreateSchemaIfNotExists(ctx, sn)
		}},
		{"creating normal role", func(ctx context.Context, q repo.SchemaTxQueryer) error {
			return q.CreateRoleIfNotExists(ctx, normal)
		}},
		{"granting schema privileges", func(ctx context.Context, q repo.SchemaTxQueryer) error {
			return q.GrantPrivileges(ctx, sn, normal)
		}},
		{"setting search_path", func(ctx context.Context, q repo.SchemaTxQueryer) error {
			return q.SetSearchPath(ctx, sn, normal)
		}},
		{"renewing passwords", func(ctx context.Context, q repo.SchemaTxQueryer) (err error) {
			finalizer, err = iduc.settings.RenewPasswords(
				ctx, q.ChangePasswords, repo.AdminRole, normal,
			)
			return err
		}},
	}
	err = p.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			q := iduc.schemaRepo.Tx(tx)
			for _, st := range steps {
				if err := st.run(ctx, q); err != nil {
					return fmt.Errorf("%s: %w", st.name, err)
				}
				log.Debug(ctx, st.name, slog.String("schema", sn))
			}
			return nil
		})
	})
	if err != nil {
		return fmt.Errorf("admin connection: %w", err)
	}
	if err := finalizer(); err != nil {
		return fmt.Errorf("finalizing passwords renewal: %w", err)
	}
	return nil
}
