// Package cerr contains the core errors which carry their expected
// HTTP status code, so the adapters layer can report them properly.
package cerr

import (
	"errors"
	"fmt"
	"net/http"
)

// Rental domain errors. They are wrapped by an Error with the relevant
// status code when returned from the use cases.
var (
	ErrCarBooked        = errors.New("car already booked in this window")
	ErrRentalStarted    = errors.New("cannot cancel a rental already in progress or completed")
	ErrRentalNotActive  = errors.New("rental is not active")
	ErrRentalNotStarted = errors.New("rental has not started yet")
	ErrNotOwner         = errors.New("resource belongs to another user")
	ErrAdminOnly        = errors.New("admin privileges are required")
	ErrConcurrentUpdate = errors.New("concurrent update detected, please retry")
	ErrCarRented        = errors.New("car has active rentals")
	ErrCarHasRentals    = errors.New("car has rental records")

	ErrCarNotFound     = errors.New("car not found")
	ErrRentalNotFound  = errors.New("rental not found")
	ErrProfileNotFound = errors.New("user profile not found")
	ErrProfileExists   = errors.New("user profile already exists")
	ErrHistoryNotFound = errors.New("rental history entry not found")
)

type Error struct {
	Err            error
	HTTPStatusCode int
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Error() string {
	return fmt.Sprintf("[%d] %s", e.HTTPStatusCode, e.Err.Error())
}

func BadRequest(err error) *Error {
	return &Error{Err: err, HTTPStatusCode: http.StatusBadRequest}
}

// InvalidState reports an illegal state transition, e.g. cancelling
// a rental which has already started.
func InvalidState(err error) *Error {
	return &Error{Err: err, HTTPStatusCode: http.StatusBadRequest}
}

func Authentication(err error) *Error {
	return &Error{Err: err, HTTPStatusCode: http.StatusUnauthorized}
}

func Authorization(err error) *Error {
	return &Error{Err: err, HTTPStatusCode: http.StatusForbidden}
}

func NotFound(err error) *Error {
	return &Error{Err: err, HTTPStatusCode: http.StatusNotFound}
}

func Conflict(err error) *Error {
	return &Error{Err: err, HTTPStatusCode: http.StatusConflict}
}

func TooManyRequests(err error) *Error {
	return &Error{Err: err, HTTPStatusCode: http.StatusTooManyRequests}
}

// StatusCode returns the HTTP status code of the first Error in the
// err chain, or 500 if there is none.
func StatusCode(err error) int {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.HTTPStatusCode
	}
	return http.StatusInternalServerError
}
