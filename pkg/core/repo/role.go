// Copyright (c) 2025 The Car-Retal-Api Authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package repo

// Role is a string specifying a database connection role. Each role
// has a set of granted privileges which indicates which operations
// may be performed after using it for connecting to a database.
type Role string

// These constants specify the expected database roles. The AdminRole
// must exist beforehand (i.e., must be created manually) and it must
// have super user privileges, so it can be used to create the
// NormalRole (if it is not already created).
// The authentication information of these roles are kept in a pass
// file as indicated in the configuration file.
const (
	// AdminRole is an administrator (super user) role which is only
	// used by the database initialization command in order to create
	// the rentals schema, the normal role, and grant it privileges.
	AdminRole Role = "admin"

	// NormalRole is an unprivileged role which is used by the web
	// server for all rentals, cars, and user profiles queries.
	NormalRole Role = "rental"
)

// SchemaName is the name of the database schema which holds the
// cars, rentals, and user_profiles tables.
const SchemaName = "rental"
