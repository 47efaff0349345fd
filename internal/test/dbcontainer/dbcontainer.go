// Copyright (c) 2025 The Car-Retal-Api Authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package dbcontainer starts a disposable postgres:16 container for
// the integration tests of the GORM repositories and the schema use
// case. It talks to podman (or docker) through the DOCKER_HOST socket,
// e.g. DOCKER_HOST=unix://$XDG_RUNTIME_DIR/podman/podman.sock, and
// skips the calling test when that variable is not set.
package dbcontainer

import (
	"context"
	"errors"
	"net"
	"os"
	"testing"
	"time"

	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/adapter/db/postgres"
	"github.com/bitcomplete/sqltestutil"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

// PostgresVersion is the image tag of the started containers.
const PostgresVersion = "16"

// New starts a container and connects to it within timeout, while
// ctx is also used for the final shutdown. The dfrs functions must be
// deferred by the caller even if ok is false, since a started
// container may still need to be removed.
func New(ctx context.Context, timeout time.Duration, t *testing.T) (
	pg *sqltestutil.PostgresContainer,
	pool *postgres.Pool,
	dfrs []func(),
	ok bool,
) {
	if os.Getenv("DOCKER_HOST") == "" {
		t.Skip("DOCKER_HOST is not set; skipping database tests")
	}
	startCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	pg, err := sqltestutil.StartPostgresContainer(startCtx, PostgresVersion)
	if !assert.NoError(t, err, "starting postgres container") {
		return nil, nil, nil, false
	}
	dfrs = append(dfrs, func() {
		assert.NoError(t, pg.Shutdown(ctx), "stopping postgres container")
	})
	if pool, err = connect(startCtx, pg.ConnectionString()); err != nil {
		assert.NoError(t, err, "connecting to postgres container")
		return pg, nil, dfrs, false
	}
	dfrs = append(dfrs, func() {
		assert.NoError(t, pool.Close(), "closing the connections pool")
	})
	return pg, pool, dfrs, true
}

// connect retries while the DBMS is starting up or the port is not
// reachable yet, until ctx expires.
func connect(ctx context.Context, url string) (*postgres.Pool, error) {
	for {
		pool, err := postgres.NewPool(ctx, url)
		if err == nil || !starting(err) || ctx.Err() != nil {
			return pool, err
		}
		select {
		case <-ctx.Done():
			return nil, err
		case <-time.After(100 * time.Millisecond):
		}
	}
}

func starting(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.CannotConnectNow
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
