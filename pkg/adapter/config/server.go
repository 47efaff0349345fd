// Copyright (c) 2025 The Car-Retal-Api Authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/adapter/auth/jwtauth"
	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/adapter/config/settings"
	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/adapter/metrics/prom"
	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/adapter/ratelimit/redislimit"
	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/adapter/restful/gin"
	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/core/log"
	"github.com/redis/go-redis/v9"
)

// Gin contains the gin-gonic related configuration settings.
// Boolean fields are defined as pointers, so it is possible to detect
// if they are or are not initialized.
type Gin struct {
	Address  string // listening address, like :8080
	Logger   *bool  // Whether to register the request logger middleware
	Recovery *bool  // Whether to register the gin.Recovery() middleware
}

func (g *Gin) normalize() {
	settings.Default(&g.Logger, false)
	settings.Default(&g.Recovery, false)
	if g.Address == "" {
		g.Address = ":8080"
	}
}

// NewEngine instantiates a new gin-gonic engine instance based on
// the `g` settings.
func (g Gin) NewEngine() *gin.Engine {
	middlewares := make([]gin.HandlerFunc, 0, 3)
	middlewares = append(middlewares, gin.RequestID())
	if *g.Logger {
		middlewares = append(middlewares, gin.Logger())
	}
	if *g.Recovery {
		middlewares = append(middlewares, gin.Recovery())
	}
	return gin.New(middlewares...)
}

// Logging contains the structured logging settings.
type Logging struct {
	Level  string // debug, info, warn, or error
	Format string // text or json
}

// ValidateAndNormalize fills the info level and text format defaults
// and rejects unknown values.
func (l *Logging) ValidateAndNormalize() error {
	if l.Level == "" {
		l.Level = "info"
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(l.Level)); err != nil {
		return fmt.Errorf("invalid level %q: %w", l.Level, err)
	}
	l.Format = strings.ToLower(l.Format)
	switch l.Format {
	case "":
		l.Format = "text"
	case "text", "json":
	default:
		return fmt.Errorf("invalid format %q", l.Format)
	}
	return nil
}

// Setup installs the default logger which writes into w.
func (l Logging) Setup(w io.Writer) error {
	return log.Setup(w, l.Level, l.Format)
}

// Auth contains the bearer token settings.
type Auth struct {
	// JWTSecret is the HS256 secret which is shared with the auth
	// service. It is usually passed by the JWT_SECRET variable.
	JWTSecret string `yaml:"jwt-secret"`
}

// ValidateAndNormalize ensures that a secret is configured.
func (a *Auth) ValidateAndNormalize() error {
	if a.JWTSecret == "" {
		return errors.New("jwt-secret is required")
	}
	return nil
}

// NewVerifier instantiates a bearer token verifier.
func (a Auth) NewVerifier() (*jwtauth.Verifier, error) {
	return jwtauth.New(a.JWTSecret)
}

// Window configures one fixed-window limiter.
type Window struct {
	Limit  *int64             // maximum requests per window
	Period *settings.Duration // length of each window
}

func (w *Window) normalize(limit int64, period time.Duration) error {
	settings.Default(&w.Limit, limit)
	settings.Default(&w.Period, settings.Duration(period))
	if *w.Limit <= 0 {
		return fmt.Errorf("limit (%d) must be positive", *w.Limit)
	}
	if err := settings.Clamp(w.Period,
		settings.Duration(time.Second), settings.Duration(24*time.Hour),
	); err != nil {
		return fmt.Errorf("period: %w", err)
	}
	return nil
}

// RateLimit contains the Redis based rate limiter settings.
// Rate limiting is disabled when Redis is empty.
type RateLimit struct {
	Redis     string   // host:port of the Redis server
	Prefix    string   // prefix of the counter keys
	Global    Window   // guards all routes, 10/s by default
	Sensitive Window   // guards the rental routes, 50/15m by default
	Whitelist []string // client IPs which are never limited
}

// ValidateAndNormalize fills the default windows and validates the
// whitelisted addresses.
func (r *RateLimit) ValidateAndNormalize() error {
	if r.Prefix == "" {
		r.Prefix = "ratelimit"
	}
	if err := r.Global.normalize(10, time.Second); err != nil {
		return fmt.Errorf("global: %w", err)
	}
	if err := r.Sensitive.normalize(50, 15*time.Minute); err != nil {
		return fmt.Errorf("sensitive: %w", err)
	}
	for _, ip := range r.Whitelist {
		if net.ParseIP(ip) == nil {
			return fmt.Errorf("invalid whitelisted ip: %q", ip)
		}
	}
	return nil
}

// Limiters holds the instantiated limiters and their Redis client.
type Limiters struct {
	Global    *redislimit.Limiter
	Sensitive *redislimit.Limiter
	Whitelist []string

	client *redis.Client
}

// Close closes the Redis client.
func (l *Limiters) Close() error {
	return l.client.Close()
}

// NewLimiters connects to Redis and instantiates the global and
// sensitive limiters. It returns nil limiters if rate limiting is
// disabled.
func (r RateLimit) NewLimiters(ctx context.Context) (*Limiters, error) {
	if r.Redis == "" {
		return nil, nil
	}
	rdb, err := redislimit.NewClient(ctx, r.Redis)
	if err != nil {
		return nil, err
	}
	l := &Limiters{Whitelist: r.Whitelist, client: rdb}
	l.Global, err = redislimit.New(
		rdb, r.Prefix+":global",
		*r.Global.Limit, r.Global.Period.Std(),
	)
	if err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("global limiter: %w", err)
	}
	l.Sensitive, err = redislimit.New(
		rdb, r.Prefix+":sensitive",
		*r.Sensitive.Limit, r.Sensitive.Period.Std(),
	)
	if err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("sensitive limiter: %w", err)
	}
	return l, nil
}

// Metrics contains the Prometheus exposition settings.
type Metrics struct {
	Enabled *bool  // defaults to true
	Path    string // defaults to /metrics
}

func (m *Metrics) normalize() {
	settings.Default(&m.Enabled, true)
	if m.Path == "" {
		m.Path = "/metrics"
	}
}

// New instantiates the Prometheus metrics or returns nil if they are
// disabled.
func (m Metrics) New() *prom.Metrics {
	if !*m.Enabled {
		return nil
	}
	return prom.New()
}
