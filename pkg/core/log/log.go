// Copyright (c) 2025 The Car-Retal-Api Authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package log wraps the log/slog package for the rental service.
// Its Debug, Info, Warn, and Error functions take a context and
// statically typed slog.Attr values (see attrs.go for the domain
// specific ones), so records keep the caller position while avoiding
// the allocations of the key/value variadic slog API.
package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"strings"
	"time"
)

// Setup installs a new default slog logger which writes records with
// at least the given level into w. The format may be "text" or "json".
func Setup(w io.Writer, level, format string) error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("parsing log level %q: %w", level, err)
	}
	opts := &slog.HandlerOptions{Level: lvl, AddSource: true}
	var h slog.Handler
	switch strings.ToLower(format) {
	case "", "text":
		h = slog.NewTextHandler(w, opts)
	case "json":
		h = slog.NewJSONHandler(w, opts)
	default:
		return fmt.Errorf("unknown log format %q", format)
	}
	slog.SetDefault(slog.New(h))
	return nil
}

func Debug(ctx context.Context, msg string, attrs ...slog.Attr) {
	emit(ctx, slog.LevelDebug, msg, attrs)
}

func Info(ctx context.Context, msg string, attrs ...slog.Attr) {
	emit(ctx, slog.LevelInfo, msg, attrs)
}

func Warn(ctx context.Context, msg string, attrs ...slog.Attr) {
	emit(ctx, slog.LevelWarn, msg, attrs)
}

func Error(ctx context.Context, msg string, attrs ...slog.Attr) {
	emit(ctx, slog.LevelError, msg, attrs)
}

// At logs msg with a dynamic level, e.g. one which depends on an
// HTTP status code.
func At(ctx context.Context, level slog.Level, msg string, attrs ...slog.Attr) {
	emit(ctx, level, msg, attrs)
}

// emit must be called directly by the exported functions, since it
// skips exactly one frame of this package when recording the caller.
func emit(ctx context.Context, level slog.Level, msg string, attrs []slog.Attr) {
	h := slog.Default().Handler()
	if !h.Enabled(ctx, level) {
		return
	}
	var pc [1]uintptr
	runtime.Callers(3, pc[:]) // runtime.Callers, emit, exported func
	r := slog.NewRecord(time.Now(), level, msg, pc[0])
	r.AddAttrs(attrs...)
	_ = h.Handle(ctx, r)
}
