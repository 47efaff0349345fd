// Copyright (c) 2025 The Car-Retal-Api Authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package scram implements the core scram.Hasher interface using the
// github.com/xdg-go/scram module for SCRAM-SHA-1 and SCRAM-SHA-256.
package scram

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/xdg-go/scram"
)

// MinIterations is the least iterations count which Hash accepts.
const MinIterations = 4096

// Mechanism computes SCRAM verifiers with one hash function.
type Mechanism struct {
	gen      scram.HashGeneratorFcn
	saltSize int // bytes, equal to the hash output size
	name     string
}

// SHA1 returns the SCRAM-SHA-1 mechanism.
func SHA1() *Mechanism {
	return &Mechanism{gen: scram.SHA1, saltSize: 20, name: "SCRAM-SHA-1"}
}

// SHA256 returns the SCRAM-SHA-256 mechanism which is the default
// password encryption of PostgreSQL.
func SHA256() *Mechanism {
	return &Mechanism{gen: scram.SHA256, saltSize: 32, name: "SCRAM-SHA-256"}
}

// Name returns the mechanism name, e.g. SCRAM-SHA-256.
func (m *Mechanism) Name() string {
	return m.name
}

// Hash returns the pass verifier. The password is normalized with
// SASLprep by the xdg-go/scram client, so invalid passwords fail.
func (m *Mechanism) Hash(pass, salt string, iters int) (string, error) {
	if pass == "" {
		return "", errors.New("password must be non-empty")
	}
	if iters < MinIterations {
		return "", fmt.Errorf(
			"iters (%d) is less than %d", iters, MinIterations,
		)
	}
	var rawSalt []byte
	if salt == "" {
		rawSalt = make([]byte, m.saltSize)
		if _, err := rand.Read(rawSalt); err != nil {
			return "", fmt.Errorf("creating random salt: %w", err)
		}
		salt = base64.StdEncoding.EncodeToString(rawSalt)
	} else {
		var err error
		if rawSalt, err = base64.StdEncoding.DecodeString(salt); err != nil {
			return "", fmt.Errorf("decoding base64 salt: %w", err)
		}
	}
	// The username does not affect the stored keys.
	c, err := m.gen.NewClient("role", pass, "")
	if err != nil {
		return "", fmt.Errorf("creating SCRAM client: %w", err)
	}
	sc := c.GetStoredCredentials(scram.KeyFactors{
		Salt:  string(rawSalt),
		Iters: iters,
	})
	enc := base64.StdEncoding.EncodeToString
	return fmt.Sprintf("%s$%d:%s$%s:%s",
		m.name, iters, salt, enc(sc.StoredKey), enc(sc.ServerKey),
	), nil
}
