// Copyright (c) 2025 The Car-Retal-Api Authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package scram declares the password hashing expectations of the
// database initialization use case. Role passwords are sent to the
// DBMS as SCRAM verifiers, so DDL statements never carry a plaintext
// password even if the DBMS logs them. The implementation lives in
// the adapter layer.
package scram

// Hasher computes SCRAM verifiers with a fixed hash function, such as
// SHA-1 or SHA-256 (RFC 5802, RFC 7677).
type Hasher interface {
	// Hash returns the verifier of the non-empty pass password in
	// the format which PostgreSQL accepts in CREATE/ALTER ROLE:
	//
	//	SCRAM-SHA-X$<iters>:<b64 salt>$<b64 StoredKey>:<b64 ServerKey>
	//
	// The salt is base64 encoded and a random salt is generated when
	// it is empty. The iters must be at least 4096.
	Hash(pass, salt string, iters int) (string, error)
}
