// Copyright (c) 2025 The Car-Retal-Api Authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package memrepo is an internal helper for the test packages.
// It implements the repo package interfaces over in-memory maps, so
// use cases and RESTful resources may be tested without a DBMS.
// Transactions are executed one at a time and their changes are
// discarded by restoring a snapshot of the Store when they fail.
package memrepo

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/core/model"
	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/core/repo"
)

// ErrRawSQL is returned by the Exec and Query methods since no SQL
// engine backs the in-memory store.
var ErrRawSQL = errors.New("raw SQL is not supported by memrepo")

type data struct {
	cars     map[int64]model.Car
	rentals  map[int64]model.Rental
	profiles map[int64]model.UserProfile // by user id
	lastID   int64
}

func (d *data) clone() *data {
	dd := &data{
		cars:     make(map[int64]model.Car, len(d.cars)),
		rentals:  make(map[int64]model.Rental, len(d.rentals)),
		profiles: make(map[int64]model.UserProfile, len(d.profiles)),
		lastID:   d.lastID,
	}
	for k, v := range d.cars {
		dd.cars[k] = v
	}
	for k, v := range d.rentals {
		dd.rentals[k] = v
	}
	for k, v := range d.profiles {
		v.RentalHistory = append(
			[]model.RentalSnapshot(nil), v.RentalHistory...,
		)
		dd.profiles[k] = v
	}
	return dd
}

// Store keeps the cars, rentals, and user profiles. It implements the
// repo.Pool interface and its zero value is not usable; use New.
type Store struct {
	txMu sync.Mutex // held during each transaction
	mu   sync.Mutex // guards d and the failure counters
	d    *data

	serializationFailures int
	commits               int
}

func New() *Store {
	return &Store{d: &data{
		cars:     make(map[int64]model.Car),
		rentals:  make(map[int64]model.Rental),
		profiles: make(map[int64]model.UserProfile),
	}}
}

// FailSerializableCommits makes the next n serializable transactions
// roll back and report a repo.ErrSerialization error after their
// handlers succeed, imitating concurrent updates.
func (s *Store) FailSerializableCommits(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.serializationFailures = n
}

// Commits returns the number of committed transactions.
func (s *Store) Commits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commits
}

func (s *Store) view(f func(d *data) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return f(s.d)
}

func (s *Store) Conn(ctx context.Context, h repo.ConnHandler) error {
	return h(ctx, &Conn{s: s})
}

func (s *Store) Close() error {
	return nil
}

type Conn struct {
	s *Store
}

func (c *Conn) Tx(ctx context.Context, h repo.TxHandler) error {
	return c.tx(ctx, false, h)
}

func (c *Conn) SerializableTx(ctx context.Context, h repo.TxHandler) error {
	return c.tx(ctx, true, h)
}

func (c *Conn) tx(
	ctx context.Context, serializable bool, h repo.TxHandler,
) (err error) {
	s := c.s
	s.txMu.Lock()
	defer s.txMu.Unlock()
	s.mu.Lock()
	backup := s.d.clone()
	s.mu.Unlock()
	rollback := func() {
		s.mu.Lock()
		s.d = backup
		s.mu.Unlock()
	}
	defer func() {
		if r := recover(); r != nil {
			rollback()
			err = fmt.Errorf("panicked: %v", r)
		}
	}()
	if err = h(ctx, &Tx{s: s}); err != nil {
		rollback()
		return fmt.Errorf("handler: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if serializable && s.serializationFailures > 0 {
		s.serializationFailures--
		s.d = backup
		return fmt.Errorf("commit: %w", repo.ErrSerialization)
	}
	s.commits++
	return nil
}

func (c *Conn) Exec(context.Context, string, ...any) (int64, error) {
	return 0, ErrRawSQL
}

func (c *Conn) Query(context.Context, string, ...any) (repo.Rows, error) {
	return nil, ErrRawSQL
}

func (c *Conn) IsConn() {
}

type Tx struct {
	s *Store
}

func (tx *Tx) Exec(context.Context, string, ...any) (int64, error) {
	return 0, ErrRawSQL
}

func (tx *Tx) Query(context.Context, string, ...any) (repo.Rows, error) {
	return nil, ErrRawSQL
}

func (tx *Tx) IsTx() {
}

func store(q any) *Store {
	switch v := q.(type) {
	case *Conn:
		return v.s
	case *Tx:
		return v.s
	default:
		panic(fmt.Sprintf("memrepo: unsupported queryer type %T", q))
	}
}
