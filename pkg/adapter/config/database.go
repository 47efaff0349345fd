// Copyright (c) 2025 The Car-Retal-Api Authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/adapter/db/postgres"
	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/adapter/db/postgres/schemarp"
	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/adapter/hash/scram"
	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/core/log"
	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/core/repo"
	scrami "github.com/Myst1-Dev1/Car-Retal-Api/pkg/core/scram"
)

// Database contains the database related configuration settings.
type Database struct {
	Host    string // domain name or IP address of the DBMS server
	Port    int    // port number of the DBMS server
	Name    string // database name, like rentals
	PassDir string `yaml:"pass-dir"` // path of the passwords dir

	// RoleSuffix specifies a possibly empty suffix for the database
	// role names. Normally, repo.AdminRole and repo.NormalRole roles
	// are used. In the parallel test cases, it is required to create
	// multiple non-colliding roles in the same database cluster and
	// so having a unique (per test) role suffix helps with parallelism.
	RoleSuffix repo.Role `yaml:"role-suffix,omitempty"`

	// AuthMethod specifies the database authentication method name.
	// Currently, only scram-sha-1 and scram-sha-256 methods are
	// supported. The scram-sha-256 is the default value.
	AuthMethod string `yaml:"auth-method,omitempty"`

	// URL is a complete connection URL for the normal role. When it
	// is set (usually by the DATABASE_URL environment variable), the
	// pass-dir is not consulted for the normal role connections.
	URL string `yaml:"url,omitempty"`

	hasher scrami.Hasher `yaml:"-"`
}

// String describes the d target without revealing any password.
func (d Database) String() string {
	if d.URL != "" && d.Host == "" {
		u, err := url.Parse(d.URL)
		if err != nil {
			return "Database{url: <invalid>}"
		}
		return fmt.Sprintf("Database{url: %s}", u.Redacted())
	}
	return fmt.Sprintf("Database{%s:%d/%s}", d.Host, d.Port, d.Name)
}

// ConnectionPool connects as the r role (suffixed by d.RoleSuffix).
// The normal role uses d.URL when it is set. Otherwise, the password
// is read from the .pgpass file of d.PassDir, whose lines look like
//
//	host:port:dbname:role:password
//
// If that fails, an interrupted password renewal may have left the new
// passwords in .pgpass.new, so it is tried too and moved over .pgpass
// when it works.
func (d Database) ConnectionPool(
	ctx context.Context, r repo.Role,
) (repo.Pool, error) {
	if d.URL != "" && r == repo.NormalRole {
		p, err := postgres.NewPool(ctx, d.URL)
		if err != nil {
			return nil, err
		}
		return p, nil
	}
	if d.PassDir == "" {
		return nil, fmt.Errorf("pass-dir is required for the %s role", r)
	}
	cur := passPath(d.PassDir, passFile)
	p, err := d.poolFromPassFile(ctx, r, cur)
	if err == nil {
		return p, nil
	}
	log.Warn(ctx, "connection failed, trying the new pass-file",
		log.Err("err", err),
	)
	next := passPath(d.PassDir, newPassFile)
	if p, err = d.poolFromPassFile(ctx, r, next); err != nil {
		return nil, fmt.Errorf("can use neither pass-file: %w", err)
	}
	if err := os.Rename(next, cur); err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("promoting %q: %w", next, err)
	}
	return p, nil
}

func (d Database) poolFromPassFile(
	ctx context.Context, r repo.Role, path string,
) (*postgres.Pool, error) {
	u, err := d.ConnectionURL(r, path)
	if err != nil {
		return nil, fmt.Errorf("using %q pass-file: %w", path, err)
	}
	return postgres.NewPool(ctx, u)
}

// ConnectionURL builds a postgresql:// URL for the r role (suffixed by
// d.RoleSuffix) whose password is looked up in the path pgpass file.
func (d Database) ConnectionURL(r repo.Role, path string) (string, error) {
	role := string(r + d.RoleSuffix)
	pass, err := lookupPassword(path, d.passKey(role)+":")
	if err != nil {
		return "", err
	}
	u := url.URL{
		Scheme: "postgresql",
		User:   url.UserPassword(role, pass),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.Name,
	}
	return u.String(), nil
}

// passKey returns the host:port:dbname:role prefix of pgpass lines.
func (d Database) passKey(role string) string {
	return fmt.Sprintf("%s:%d:%s:%s", d.Host, d.Port, d.Name, role)
}

// NewSchemaRepo returns the schema repository with the d.RoleSuffix
// and the hasher which matches d.AuthMethod.
func (d Database) NewSchemaRepo() repo.Schema {
	return schemarp.New(d.RoleSuffix, d.hasher)
}

// RenewPasswords writes fresh random passwords of roles into the
// .pgpass.new file and passes them to change, which should ALTER the
// (suffixed) roles in a transaction. Once that transaction commits,
// the returned finalizer must be called to move .pgpass.new over the
// .pgpass file.
func (d Database) RenewPasswords(
	ctx context.Context,
	change func(
		ctx context.Context, roles []repo.Role, passwords []string,
	) error,
	roles ...repo.Role,
) (finalizer func() error, err error) {
	if d.PassDir == "" {
		return nil, errors.New("pass-dir is required for renewing passwords")
	}
	passwords := make([]string, 0, len(roles))
	var sb strings.Builder
	for _, r := range roles {
		pass, err := randomPassword()
		if err != nil {
			return nil, fmt.Errorf("generating %s password: %w", r, err)
		}
		passwords = append(passwords, pass)
		fmt.Fprintf(&sb, "%s:%s\n", d.passKey(string(r+d.RoleSuffix)), pass)
	}
	cur := passPath(d.PassDir, passFile)
	next := passPath(d.PassDir, newPassFile)
	if err := os.WriteFile(next, []byte(sb.String()), 0o600); err != nil {
		return nil, fmt.Errorf("writing %q file: %w", next, err)
	}
	if err := change(ctx, roles, passwords); err != nil {
		return nil, fmt.Errorf("passwords change callback: %w", err)
	}
	return func() error { return os.Rename(next, cur) }, nil
}

// ValidateAndNormalize validates the database settings and returns an
// error if they were not acceptable. It also picks the passwords
// hasher and fills the default port.
func (d *Database) ValidateAndNormalize() error {
	switch am := d.AuthMethod; am {
	case "scram-sha-1":
		d.hasher = scram.SHA1()
	case "":
		d.AuthMethod = "scram-sha-256"
		fallthrough
	case "scram-sha-256":
		d.hasher = scram.SHA256()
	default:
		return fmt.Errorf(
			"unsupported database authentication method: %q", am,
		)
	}
	if d.URL != "" {
		u, err := url.Parse(d.URL)
		if err != nil {
			return errors.New("invalid database url")
		}
		if u.Scheme != "postgres" && u.Scheme != "postgresql" {
			return fmt.Errorf("unsupported database url scheme: %q", u.Scheme)
		}
		return nil
	}
	if d.Port == 0 {
		d.Port = 5432
	}
	switch {
	case d.Host == "":
		return errors.New("host is required (or set the url)")
	case d.Name == "":
		return errors.New("name is required (or set the url)")
	case d.PassDir == "":
		return errors.New("pass-dir is required (or set the url)")
	case d.Port < 1 || d.Port > 65535:
		return fmt.Errorf("invalid port: %d", d.Port)
	}
	return nil
}
