// Copyright (c) 2025 The Car-Retal-Api Authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package serdser contains the common (de)serialization helpers of the
// resource packages. Successful responses are wrapped as
// {"success": true, "data": ...} and failures are reported as
// {"success": false, "message": ..., "errors": {field: [msgs]}}.
package serdser

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/core/cerr"
	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/core/log"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Errors maps request field names to their validation messages.
type Errors map[string][]string

// Failure is the body of all non-2xx responses.
type Failure struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Errors  Errors `json:"errors,omitempty"`
}

// Success is the body of all 2xx responses with a payload.
type Success struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// OK writes data with the status code in a success envelope.
func OK(c *gin.Context, status int, data any) {
	c.JSON(status, Success{Success: true, Data: data})
}

// Fail writes a failure envelope with the status code.
func Fail(c *gin.Context, status int, msg string, errs Errors) {
	c.JSON(status, Failure{Message: msg, Errors: errs})
}

// Bind binds the request into req using the b binding and validates it
// using the binding tags. It writes a 400 response and returns false
// if the request was not acceptable.
func Bind(c *gin.Context, req any, b binding.Binding) bool {
	switch err := c.ShouldBindWith(req, b).(type) {
	case *validator.InvalidValidationError:
		Fail(c, http.StatusInternalServerError, err.Error(), nil)
	case validator.ValidationErrors:
		var nameToErrs Errors
		for _, ferr := range err {
			AddErr(&nameToErrs, ferr.Field(), ferr.Error())
		}
		Fail(c, http.StatusBadRequest, "Invalid request", nameToErrs)
	default:
		if err == nil {
			return true
		}
		Fail(c, http.StatusBadRequest, err.Error(), nil)
	}
	return false
}

// AddErr appends msgs to the name field errors, allocating the map
// on demand.
func AddErr(errs *Errors, name string, msgs ...string) {
	if (*errs) == nil {
		*errs = make(Errors)
	}
	(*errs)[name] = append((*errs)[name], msgs...)
}

// Assert adds msgs to the name field errors if ok is false and
// returns ok.
func Assert(errs *Errors, ok bool, name string, msgs ...string) bool {
	if ok {
		return true
	}
	AddErr(errs, name, msgs...)
	return false
}

// Invalid writes a 400 response if errs is not empty and reports if
// a response was written.
func Invalid(c *gin.Context, errs Errors) bool {
	if len(errs) == 0 {
		return false
	}
	Fail(c, http.StatusBadRequest, "Invalid request", errs)
	return true
}

// SerErr writes the err error using its cerr status code. Errors
// without a status code are logged and hidden behind a generic 500
// message.
func SerErr(c *gin.Context, err error) {
	var ce *cerr.Error
	if errors.As(err, &ce) {
		Fail(c, ce.HTTPStatusCode, ce.Err.Error(), nil)
		return
	}
	log.Error(c, "request failed", log.Err("err", err), log.RequestID(c))
	Fail(c, http.StatusInternalServerError, "Internal server error", nil)
}

// ParseID parses the name path param as a positive integer. It
// writes a 400 response and returns false otherwise.
func ParseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		Fail(c, http.StatusBadRequest, "Invalid request", Errors{
			name: {"must be a positive integer"},
		})
		return 0, false
	}
	return id, true
}

// ParseTime accepts RFC 3339 timestamps and YYYY-MM-DD dates (which
// are taken as UTC midnight). Results are always in UTC.
func ParseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, errors.New("must be an RFC 3339 time or a YYYY-MM-DD date")
	}
	return t, nil
}
