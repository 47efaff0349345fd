// Copyright (c) 2025 The Car-Retal-Api Authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package jwtauth verifies and signs the HS256 bearer tokens which are
// shared by the platform services. Tokens carry the user identifier
// in the "id" claim and the admin flag in the "isAdmin" claim.
package jwtauth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/core/cerr"
	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/core/model"
	"github.com/golang-jwt/jwt/v5"
)

// Errors which are reported (wrapped by cerr.Authentication) when a
// request can not be authenticated.
var (
	ErrMissingToken = errors.New("no token provided")
	ErrInvalidToken = errors.New("invalid token")
)

// Claims is the payload of the platform tokens.
type Claims struct {
	UserID  int64 `json:"id"`
	IsAdmin bool  `json:"isAdmin"`
	jwt.RegisteredClaims
}

// Verifier parses and signs tokens with a shared secret.
type Verifier struct {
	secret []byte
	parser *jwt.Parser
}

// New instantiates a Verifier. The secret must not be empty.
func New(secret string) (*Verifier, error) {
	if secret == "" {
		return nil, errors.New("empty jwt secret")
	}
	return &Verifier{
		secret: []byte(secret),
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithExpirationRequired(),
		),
	}, nil
}

// FromHeader extracts the token from an Authorization header value
// which should use the Bearer scheme.
func FromHeader(h string) (string, error) {
	const prefix = "Bearer "
	if len(h) < len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return "", cerr.Authentication(ErrMissingToken)
	}
	tok := strings.TrimSpace(h[len(prefix):])
	if tok == "" {
		return "", cerr.Authentication(ErrMissingToken)
	}
	return tok, nil
}

// Parse verifies the signature and expiry of the tok token and returns
// the authenticated actor.
func (v *Verifier) Parse(tok string) (model.Actor, error) {
	claims := &Claims{}
	_, err := v.parser.ParseWithClaims(
		tok, claims, func(*jwt.Token) (any, error) {
			return v.secret, nil
		},
	)
	if err != nil {
		return model.Actor{}, cerr.Authentication(
			fmt.Errorf("%w: %w", ErrInvalidToken, err),
		)
	}
	if claims.UserID <= 0 && !claims.IsAdmin {
		return model.Actor{}, cerr.Authentication(ErrInvalidToken)
	}
	return model.Actor{UserID: claims.UserID, Admin: claims.IsAdmin}, nil
}

// Sign creates a token for the a actor which expires after ttl.
// It is used for the service token of the user service client.
func (v *Verifier) Sign(a model.Actor, ttl time.Duration) (string, error) {
	now := time.Now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID:  a.UserID,
		IsAdmin: a.Admin,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	s, err := tok.SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return s, nil
}
