// Copyright (c) 2025 The Car-Retal-Api Authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package middleware contains the gin-gonic middlewares which are
// shared by all resources: request identifiers, request logging,
// bearer token authentication, rate limiting, and request metrics.
package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/adapter/auth/jwtauth"
	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/adapter/restful/gin/serdser"
	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/core/cerr"
	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/core/log"
	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/core/model"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader is the header which carries the request identifier
// from the gateway and back to the client.
const RequestIDHeader = "X-Request-ID"

// RequestID reuses the incoming request identifier (or generates a new
// UUID) and stores it in the request context, so log.RequestID can
// find it. The engine must have ContextWithFallback enabled in order
// to pass the gin.Context itself as a context.Context.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		c.Header(RequestIDHeader, id)
		c.Request = c.Request.WithContext(
			log.WithRequestID(c.Request.Context(), id),
		)
		c.Next()
	}
}

// Logger logs one record per request after it is handled. Server
// errors are logged at the error level and client errors at the
// warning level.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		status := c.Writer.Status()
		lvl := slog.LevelInfo
		switch {
		case status >= http.StatusInternalServerError:
			lvl = slog.LevelError
		case status >= http.StatusBadRequest:
			lvl = slog.LevelWarn
		}
		attrs := []slog.Attr{
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.String("route", c.FullPath()),
			slog.Int("status", status),
			slog.Duration("latency", time.Since(start)),
			slog.String("client_ip", c.ClientIP()),
			log.RequestID(c.Request.Context()),
		}
		if errs := c.Errors.ByType(gin.ErrorTypePrivate); len(errs) > 0 {
			attrs = append(attrs, slog.String("errors", errs.String()))
		}
		log.At(c.Request.Context(), lvl, "request", attrs...)
	}
}

// Verifier authenticates bearer tokens.
type Verifier interface {
	Parse(tok string) (model.Actor, error)
}

const actorKey = "actor"

// Auth requires a valid bearer token and stores the authenticated
// actor for the Actor function.
func Auth(v Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok, err := jwtauth.FromHeader(c.GetHeader("Authorization"))
		if err == nil {
			var a model.Actor
			if a, err = v.Parse(tok); err == nil {
				c.Set(actorKey, a)
				c.Next()
				return
			}
		}
		serdser.SerErr(c, err)
		c.Abort()
	}
}

// AdminOnly rejects non-admin actors. It must come after Auth.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if a, ok := Actor(c); !ok || !a.Admin {
			serdser.SerErr(c, cerr.Authorization(cerr.ErrAdminOnly))
			c.Abort()
			return
		}
		c.Next()
	}
}

// Actor returns the actor which is authenticated by Auth.
func Actor(c *gin.Context) (model.Actor, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return model.Actor{}, false
	}
	a, ok := v.(model.Actor)
	return a, ok
}

// Limiter counts requests per key.
type Limiter interface {
	TryAcquire(ctx context.Context, key string) (bool, error)
}

// ErrTooManyRequests is reported when a client exceeds a rate limit.
var ErrTooManyRequests = errors.New("Too many requests")

// RateLimit rejects clients which exceeded the l limit with 429.
// Whitelisted client IPs are not counted. Limiter errors are logged
// and the request is allowed.
func RateLimit(l Limiter, whitelist []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if slices.Contains(whitelist, ip) {
			c.Next()
			return
		}
		ok, err := l.TryAcquire(c.Request.Context(), ip)
		switch {
		case err != nil:
			log.Error(c.Request.Context(), "rate limiter failed, allowing request",
				log.Err("err", err), log.RequestID(c.Request.Context()),
			)
		case !ok:
			serdser.SerErr(c, cerr.TooManyRequests(ErrTooManyRequests))
			c.Abort()
			return
		}
		c.Next()
	}
}

// Observer records the latency of handled requests.
type Observer interface {
	ObserveRequest(method, route string, status int, d time.Duration)
}

// Metrics reports each request latency to o, labelled by its route
// template. Unmatched requests share the "unmatched" route label.
func Metrics(o Observer) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		o.ObserveRequest(
			c.Request.Method, route, c.Writer.Status(), time.Since(start),
		)
	}
}
