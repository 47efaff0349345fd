// Copyright (c) 2025 The Car-Retal-Api Authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package config is an adapter which accepts yaml formatted config
// files from its users and allows the rentalweb to instantiate
// different components, from the adapter or use cases layers, using
// those loaded configuration settings.
// The parsed and validated configurations are passed to their
// ultimate components as a series of individual params (for the
// mandatory items) and a series of functional options (for the
// optional items), so use cases never depend on this package.
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/core/repo"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config contains all settings which are required by different parts
// of the project, such as adapters or use cases. It is implemented
// with primitive fields or other structs which are defined locally,
// not models or structs which are defined in lower layers, so the
// configuration file format can be kept intact while other layers
// change freely.
type Config struct {
	Database  Database  // PostgreSQL database connection settings
	Gin       Gin       // Gin-Gonic instantiation settings
	Logging   Logging   // Structured logging settings
	Auth      Auth      // Bearer token verification settings
	RateLimit RateLimit `yaml:"ratelimit"` // Redis rate limiter settings
	Metrics   Metrics   // Prometheus exposition settings
	Usecases  Usecases  // Supported use cases configuration settings
}

// Environment variables which override their corresponding settings
// from the configuration file.
const (
	EnvDatabaseURL    = "DATABASE_URL"
	EnvJWTSecret      = "JWT_SECRET"
	EnvRedisAddr      = "REDIS_ADDR"
	EnvUserServiceURL = "USER_SERVICE_URL"
	EnvPort           = "PORT"
	EnvLogLevel       = "LOG_LEVEL"
)

// Load function loads, validates, and normalizes the configuration
// file and returns its settings as an instance of the Config struct.
// A .env file in the working directory (if any) is loaded into the
// process environment beforehand, without replacing the variables
// which are set already.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env file: %w", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML document holding one mapping into a Config.
// Unknown keys are ignored. The Env* variables override their
// settings before the whole Config is validated and normalized.
func Parse(data []byte) (*Config, error) {
	n := &yaml.Node{}
	if err := yaml.Unmarshal(data, n); err != nil {
		return nil, fmt.Errorf("unmarshalling yaml: %w", err)
	}
	if l := len(n.Content); l != 1 {
		return nil, fmt.Errorf(
			"found %d children nodes, instead of 1 mapping child", l,
		)
	}
	c := &Config{}
	if err := n.Decode(c); err != nil {
		return nil, fmt.Errorf("decoding yaml node: %w", err)
	}
	c.overrideFromEnv()
	if err := c.ValidateAndNormalize(); err != nil {
		return nil, fmt.Errorf("validating configs: %w", err)
	}
	return c, nil
}

func (c *Config) overrideFromEnv() {
	env := func(name string, dst *string, prefix string) {
		if v, ok := os.LookupEnv(name); ok && v != "" {
			*dst = prefix + v
		}
	}
	env(EnvDatabaseURL, &c.Database.URL, "")
	env(EnvJWTSecret, &c.Auth.JWTSecret, "")
	env(EnvRedisAddr, &c.RateLimit.Redis, "")
	env(EnvUserServiceURL, &c.Usecases.Rentals.UserServiceURL, "")
	env(EnvPort, &c.Gin.Address, ":")
	env(EnvLogLevel, &c.Logging.Level, "")
}

// ValidateAndNormalize checks every section in turn and fills their
// defaults, stopping at the first invalid one.
func (c *Config) ValidateAndNormalize() error {
	c.Gin.normalize()
	c.Metrics.normalize()
	for _, sec := range []struct {
		name  string
		check func() error
	}{
		{"database", c.Database.ValidateAndNormalize},
		{"logging", c.Logging.ValidateAndNormalize},
		{"auth", c.Auth.ValidateAndNormalize},
		{"ratelimit", c.RateLimit.ValidateAndNormalize},
		{"usecases", c.Usecases.ValidateAndNormalize},
	} {
		if err := sec.check(); err != nil {
			return fmt.Errorf("validating %s settings: %w", sec.name, err)
		}
	}
	return nil
}

// ConnectionPool connects to the configured database as the r role.
func (c *Config) ConnectionPool(
	ctx context.Context, r repo.Role,
) (repo.Pool, error) {
	p, err := c.Database.ConnectionPool(ctx, r)
	if err != nil {
		return nil, fmt.Errorf(
			"%s.ConnectionPool(%s): %w", c.Database, r, err,
		)
	}
	return p, nil
}

// NewSchemaRepo returns a schema repository which suffixes role names
// like ConnectionPool and RenewPasswords do.
func (c *Config) NewSchemaRepo() repo.Schema {
	return c.Database.NewSchemaRepo()
}

// RenewPasswords delegates to Database.RenewPasswords.
func (c *Config) RenewPasswords(
	ctx context.Context,
	change func(
		ctx context.Context, roles []repo.Role, passwords []string,
	) error,
	roles ...repo.Role,
) (finalizer func() error, err error) {
	return c.Database.RenewPasswords(ctx, change, roles...)
}
