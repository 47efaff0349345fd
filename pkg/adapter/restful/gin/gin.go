// Copyright (c) 2025 The Car-Retal-Api Authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package gin wraps the gin-gonic engine construction, so the config
// package can choose the global middlewares without importing the
// gin-gonic package itself.
package gin

import (
	"log/slog"
	"net/http"

	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/adapter/restful/gin/middleware"
	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/adapter/restful/gin/serdser"
	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/core/log"
	"github.com/gin-gonic/gin"
)

type HandlerFunc = gin.HandlerFunc
type Engine = gin.Engine

// New creates an engine with the given global middlewares. The
// gin.Context of handlers falls back to the request context, so it
// may be passed to the use cases as a context.Context.
func New(middlewares ...HandlerFunc) *Engine {
	e := gin.New()
	e.ContextWithFallback = true
	e.Use(middlewares...)
	return e
}

func RequestID() HandlerFunc {
	return middleware.RequestID()
}

// Logger logs each request with slog.
func Logger() HandlerFunc {
	return middleware.Logger()
}

// Recovery converts panics to a 500 failure envelope.
func Recovery() HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, err any) {
		log.Error(c, "handler panicked",
			slog.Any("panic", err), log.RequestID(c),
		)
		serdser.Fail(
			c, http.StatusInternalServerError, "Internal server error", nil,
		)
		c.Abort()
	})
}
