// Copyright (c) 2025 The Car-Retal-Api Authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package usersvc is a client of the user service REST APIs which
// keep the rental history of user profiles. It implements the
// rentaluc.Projector interface for the remote history mode.
package usersvc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/core/cerr"
	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/core/log"
	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/core/model"
	"github.com/goccy/go-json"
)

// TokenSource returns the bearer token which authenticates this
// service against the user service. It is called once per request.
type TokenSource func() (string, error)

// StaticToken returns a TokenSource which always returns tok.
func StaticToken(tok string) TokenSource {
	return func() (string, error) {
		return tok, nil
	}
}

// Client calls the user service.
type Client struct {
	base  *url.URL
	token TokenSource
	hc    *http.Client
}

// New instantiates a Client for the baseURL user service. Requests
// are cancelled after timeout.
func New(
	baseURL string, token TokenSource, timeout time.Duration,
) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing user service url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return nil, fmt.Errorf("invalid user service url: %q", baseURL)
	}
	if token == nil {
		return nil, errors.New("nil token source")
	}
	return &Client{
		base:  u,
		token: token,
		hc:    &http.Client{Timeout: timeout},
	}, nil
}

// AppendRental adds s to the rental history of the userID user.
func (c *Client) AppendRental(
	ctx context.Context, userID int64, s model.RentalSnapshot,
) error {
	p := c.base.JoinPath(
		"api/user", strconv.FormatInt(userID, 10), "rentalHistory",
	)
	return c.send(ctx, http.MethodPost, p, s)
}

// PatchRental replaces the history entry of s.RentalID for the
// userID user.
func (c *Client) PatchRental(
	ctx context.Context, userID int64, s model.RentalSnapshot,
) error {
	p := c.base.JoinPath(
		"api/user", strconv.FormatInt(userID, 10),
		"rentalHistory", strconv.FormatInt(s.RentalID, 10),
	)
	return c.send(ctx, http.MethodPatch, p, s)
}

func (c *Client) send(
	ctx context.Context, method string, u *url.URL, body any,
) error {
	b, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshalling body: %w", err)
	}
	tok, err := c.token()
	if err != nil {
		return fmt.Errorf("obtaining service token: %w", err)
	}
	req, err := http.NewRequestWithContext(
		ctx, method, u.String(), bytes.NewReader(b),
	)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+tok)
	res, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, u.Path, err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 200 && res.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil
	}
	msg := errorMessage(res.Body)
	log.Debug(ctx, "user service rejected the request",
		slog.Int("status", res.StatusCode), slog.String("msg", msg),
	)
	err = fmt.Errorf("%s %s: status %d: %s", method, u.Path, res.StatusCode, msg)
	if res.StatusCode == http.StatusNotFound {
		return cerr.NotFound(fmt.Errorf("%w: %w", cerr.ErrProfileNotFound, err))
	}
	return err
}

// errorMessage extracts the message of an error envelope, or returns
// the raw body if it is not an envelope.
func errorMessage(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, 4096))
	env := struct {
		Message string `json:"message"`
	}{}
	if err := json.Unmarshal(b, &env); err == nil && env.Message != "" {
		return env.Message
	}
	return string(bytes.TrimSpace(b))
}
