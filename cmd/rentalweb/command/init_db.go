// Copyright (c) 2025 The Car-Retal-Api Authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package command

import (
	"context"
	"fmt"

	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/adapter/db/postgres/carsrp"
	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/core/usecase/schemauc"
	"github.com/spf13/cobra"
)

const credsRenewalMessage = `The admin role connection information are read from the pass-dir
directory (.pgpass file) and the normal role is created if missing.
Passwords of both roles are renewed and stored as SCRAM-SHA-256
hashes in the database, while the plaintext passwords are written
to the .pgpass file of pass-dir.`

var initProdCmd = &cobra.Command{
	Use:   "init-prod",
	Short: "Initialize database contents with production suitable data",
	Long: `Initialize database contents with production suitable data.
The database connection information are read from the config file.
` + credsRenewalMessage + `

The rental schema and its tables are created if they do not exist.
Existing rows are kept intact.`,
	RunE: initDB(false),
	Args: cobra.NoArgs,
}

var initDevCmd = &cobra.Command{
	Use:   "init-dev",
	Short: "Initialize database contents with development suitable data",
	Long: `Initialize database contents with development suitable data.
It works like init-prod, but also fills an empty cars table with a
small catalog of sample cars.
` + credsRenewalMessage,
	RunE: initDB(true),
	Args: cobra.NoArgs,
}

func initDB(dev bool) func(*cobra.Command, []string) error {
	return func(_ *cobra.Command, _ []string) error {
		ctx := context.Background()
		c, err := loadConfig()
		if err != nil {
			return err
		}
		uc := schemauc.NewInitDB(c, carsrp.New())
		if dev {
			err = uc.InitDev(ctx)
		} else {
			err = uc.InitProd(ctx)
		}
		if err != nil {
			return fmt.Errorf("initializing DB (dev=%v): %w", dev, err)
		}
		return nil
	}
}

func init() {
	dbCmd.AddCommand(initProdCmd)
	dbCmd.AddCommand(initDevCmd)
}
