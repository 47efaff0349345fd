// Copyright (c) 2025 The Car-Retal-Api Authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package repo

import "context"

// Schema manages the rental schema, its tables, and the database
// roles during the db init-dev and init-prod commands.
type Schema interface {
	Conn(Conn) SchemaConnQueryer
	Tx(Tx) SchemaTxQueryer
}

type SchemaConnQueryer interface {
	SchemaQueryer
}

// SchemaTxQueryer adds the operations which must be atomic.
type SchemaTxQueryer interface {
	SchemaQueryer

	// ChangePasswords sets passwords[i] for roles[i]. Only their
	// SCRAM verifiers reach the DBMS.
	ChangePasswords(
		ctx context.Context, roles []Role, passwords []string,
	) error

	// CreateTables creates the cars, user_profiles, and rentals
	// tables and their indexes in the search_path schema unless they
	// exist.
	CreateTables(ctx context.Context) error
}

// SchemaQueryer role names are suffixed by the repository settings.
// Schema names must be trusted.
type SchemaQueryer interface {
	CreateSchemaIfNotExists(ctx context.Context, schema string) error

	// CreateRoleIfNotExists creates a LOGIN role without a password.
	CreateRoleIfNotExists(ctx context.Context, role Role) error

	// GrantPrivileges lets role create and use tables of schema.
	GrantPrivileges(ctx context.Context, schema string, role Role) error

	// SetSearchPath makes schema the only default schema of role.
	SetSearchPath(ctx context.Context, schema string, role Role) error
}
