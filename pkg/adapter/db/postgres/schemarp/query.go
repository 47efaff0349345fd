// Copyright (c) 2025 The Car-Retal-Api Authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package schemarp

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/adapter/db/postgres"
	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/core/repo"
	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/core/scram"
	"github.com/jackc/pgx/v5"
)

//go:embed schema.sql
var schemaDDL string

// scramIters is the PBKDF2 iterations count of the role password
// hashes as recommended by RFC 7677.
const scramIters = 15000

func ident(s string) string {
	return pgx.Identifier{s}.Sanitize()
}

// CreateSchemaIfNotExists creates the `schema` schema unless it
// exists already.
//
// Caller is responsible to pass a trusted schema name string.
func CreateSchemaIfNotExists[Q postgres.Queryer](
	ctx context.Context, q Q, schema string,
) error {
	_, err := q.Exec(ctx, "CREATE SCHEMA IF NOT EXISTS "+ident(schema))
	return err
}

// CreateRoleIfNotExists creates the `role` role (having the roleSuffix
// suffix) with the LOGIN option and without any password if it does not
// exist right now.
func CreateRoleIfNotExists[Q postgres.Queryer](
	ctx context.Context, q Q, roleSuffix repo.Role, role repo.Role,
) error {
	r := string(role + roleSuffix)
	n := 0
	rows, err := q.Query(
		ctx, "SELECT 1 FROM pg_catalog.pg_roles WHERE rolname=$1", r,
	)
	if err != nil {
		return fmt.Errorf("checking role existence: %w", err)
	}
	for rows.Next() {
		n++
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("checking role existence: %w", err)
	}
	if n > 0 {
		return nil
	}
	_, err = q.Exec(ctx, "CREATE ROLE "+ident(r)+" WITH LOGIN")
	return err
}

// GrantPrivileges grants ALL privileges on the `schema` schema and its
// current and future tables and sequences to the `role` role.
func GrantPrivileges[Q postgres.Queryer](
	ctx context.Context,
	q Q,
	roleSuffix repo.Role,
	schema string,
	role repo.Role,
) error {
	s, r := ident(schema), ident(string(role+roleSuffix))
	for _, stmt := range []string{
		"GRANT ALL PRIVILEGES ON SCHEMA " + s + " TO " + r,
		"GRANT ALL PRIVILEGES ON ALL TABLES IN SCHEMA " + s + " TO " + r,
		"GRANT ALL PRIVILEGES ON ALL SEQUENCES IN SCHEMA " + s + " TO " + r,
	} {
		if _, err := q.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("%q: %w", stmt, err)
		}
	}
	return nil
}

// SetSearchPath alters the `role` role, so its default search_path
// will be the `schema` schema alone.
func SetSearchPath[Q postgres.Queryer](
	ctx context.Context,
	q Q,
	roleSuffix repo.Role,
	schema string,
	role repo.Role,
) error {
	_, err := q.Exec(ctx, fmt.Sprintf(
		"ALTER ROLE %s SET search_path TO %s",
		ident(string(role+roleSuffix)), ident(schema),
	))
	return err
}

// ChangePasswords updates the passwords of the given roles in the
// tx transaction. Passwords are hashed by the hasher, so only their
// SCRAM verifiers are sent to the DBMS.
func ChangePasswords(
	ctx context.Context,
	tx *postgres.Tx,
	roleSuffix repo.Role,
	hasher scram.Hasher,
	roles []repo.Role,
	passwords []string,
) error {
	if len(roles) != len(passwords) {
		return errors.New("roles and passwords lengths mismatch")
	}
	for i, role := range roles {
		h, err := hasher.Hash(passwords[i], "", scramIters)
		if err != nil {
			return fmt.Errorf("hashing password of %q: %w", role, err)
		}
		r := ident(string(role + roleSuffix))
		// DDL statements take no bind parameters, but h is made of
		// printable ASCII characters without any quotes.
		_, err = tx.Exec(ctx, fmt.Sprintf(
			"ALTER ROLE %s WITH PASSWORD '%s'", r, h,
		))
		if err != nil {
			return fmt.Errorf("altering %q role: %w", role, err)
		}
	}
	return nil
}

// CreateTables creates the cars, user_profiles, and rentals tables
// in the current search_path schema if they are missing.
func CreateTables(ctx context.Context, tx *postgres.Tx) error {
	if _, err := tx.Exec(ctx, schemaDDL); err != nil {
		return fmt.Errorf("running schema DDL: %w", err)
	}
	return nil
}
