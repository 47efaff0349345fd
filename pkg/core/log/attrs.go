// Copyright (c) 2025 The Car-Retal-Api Authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package log

import (
	"context"
	"log/slog"
)

// Err returns an Attr for the given error value.
// The error value is resolved as a string by its Error() method.
// If error value is nil, the constant "no-error" value will be used.
func Err(key string, value error) slog.Attr {
	if value == nil {
		return slog.String(key, "no-error")
	}
	return slog.String(key, value.Error())
}

// RentalID returns an Attr for a rental identifier.
func RentalID(id int64) slog.Attr {
	return slog.Int64("rental_id", id)
}

// CarID returns an Attr for a car identifier.
func CarID(id int64) slog.Attr {
	return slog.Int64("car_id", id)
}

// UserID returns an Attr for a user identifier.
func UserID(id int64) slog.Attr {
	return slog.Int64("user_id", id)
}

type requestIDKey struct{}

// WithRequestID returns a copy of ctx which carries the id request
// identifier, so it can be logged by RequestID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns an Attr for the request identifier which is kept
// in ctx, or "none" if ctx carries no request identifier.
func RequestID(ctx context.Context) slog.Attr {
	id, ok := ctx.Value(requestIDKey{}).(string)
	if !ok {
		id = "none"
	}
	return slog.String("req_id", id)
}
