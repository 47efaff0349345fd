// Copyright (c) 2025 The Car-Retal-Api Authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package redislimit implements fixed-window request counters which
// are kept in Redis, so all replicas of the web server share them.
package redislimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter allows at most limit acquisitions per key in each window.
// Each window has its own counter key which expires with the window.
type Limiter struct {
	rdb    redis.Cmdable
	prefix string
	limit  int64
	window time.Duration
	now    func() time.Time
}

// Option is a functional option for the Limiter.
type Option func(l *Limiter)

// WithClock replaces the time.Now function which is used to find the
// current window.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		l.now = now
	}
}

// New instantiates a Limiter. The limit and window must be positive.
func New(
	rdb redis.Cmdable,
	prefix string,
	limit int64,
	window time.Duration,
	opts ...Option,
) (*Limiter, error) {
	switch {
	case rdb == nil:
		return nil, errors.New("nil redis client")
	case limit <= 0:
		return nil, fmt.Errorf("limit (%d) must be positive", limit)
	case window < time.Millisecond:
		return nil, fmt.Errorf("window (%v) is too short", window)
	}
	l := &Limiter{
		rdb:    rdb,
		prefix: prefix,
		limit:  limit,
		window: window,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// TryAcquire counts one request for the key and reports if it is
// still within the limit of the current window. Errors are returned
// as is and the caller decides to fail open or closed.
func (l *Limiter) TryAcquire(ctx context.Context, key string) (bool, error) {
	w := l.now().UnixMilli() / l.window.Milliseconds()
	k := fmt.Sprintf("%s:%s:%d", l.prefix, key, w)
	pipe := l.rdb.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.PExpire(ctx, k, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("counting %q: %w", k, err)
	}
	return incr.Val() <= l.limit, nil
}

// NewClient connects to the addr Redis server and pings it.
func NewClient(ctx context.Context, addr string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("pinging redis at %q: %w", addr, err)
	}
	return rdb, nil
}
