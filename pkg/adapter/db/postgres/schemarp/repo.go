// Copyright (c) 2025 The Car-Retal-Api Authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package schemarp implements the repo.Schema interface, creating the
// rentals schema, its tables, and the admin/normal database roles.
package schemarp

import (
	"context"

	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/adapter/db/postgres"
	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/core/repo"
	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/core/scram"
)

// Repo creates roles whose names end with roleSuffix, so multiple
// deployments may share one DBMS. Passwords are sent as verifiers
// which are computed by hasher.
type Repo struct {
	roleSuffix repo.Role
	hasher     scram.Hasher
}

func New(roleSuffix repo.Role, hasher scram.Hasher) *Repo {
	return &Repo{roleSuffix: roleSuffix, hasher: hasher}
}

func (schema *Repo) Conn(c repo.Conn) repo.SchemaConnQueryer {
	return queryer[*postgres.Conn]{c.(*postgres.Conn), schema}
}

func (schema *Repo) Tx(tx repo.Tx) repo.SchemaTxQueryer {
	return txQueryer{queryer[*postgres.Tx]{tx.(*postgres.Tx), schema}}
}

// queryer binds the package functions to one connection or tx.
type queryer[Q postgres.Queryer] struct {
	q      Q
	schema *Repo
}

func (s queryer[Q]) CreateSchemaIfNotExists(ctx context.Context, name string) error {
	return CreateSchemaIfNotExists(ctx, s.q, name)
}

func (s queryer[Q]) CreateRoleIfNotExists(ctx context.Context, role repo.Role) error {
	return CreateRoleIfNotExists(ctx, s.q, s.schema.roleSuffix, role)
}

func (s queryer[Q]) GrantPrivileges(
	ctx context.Context, name string, role repo.Role,
) error {
	return GrantPrivileges(ctx, s.q, s.schema.roleSuffix, name, role)
}

func (s queryer[Q]) SetSearchPath(
	ctx context.Context, name string, role repo.Role,
) error {
	return SetSearchPath(ctx, s.q, s.schema.roleSuffix, name, role)
}

// txQueryer adds the statements which must not run outside of a tx.
type txQueryer struct {
	queryer[*postgres.Tx]
}

func (t txQueryer) ChangePasswords(
	ctx context.Context, roles []repo.Role, passwords []string,
) error {
	return ChangePasswords(
		ctx, t.q, t.schema.roleSuffix, t.schema.hasher, roles, passwords,
	)
}

func (t txQueryer) CreateTables(ctx context.Context) error {
	return CreateTables(ctx, t.q)
}
