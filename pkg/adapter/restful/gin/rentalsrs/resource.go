// Copyright (c) 2025 The Car-Retal-Api Authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package rentalsrs realizes the rentals resource, allowing the
// booking, returning, cancelling, and availability REST APIs to be
// accepted and delegated to the rentals use cases respectively.
package rentalsrs

import (
	"context"
	"net/http"

	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/adapter/restful/gin/middleware"
	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/adapter/restful/gin/serdser"
	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/core/model"
	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/core/usecase/rentaluc"
	"github.com/gin-gonic/gin"
)

type resource struct {
	rentals *rentaluc.UseCase
}

// Register instantiates a resource adapting the rentals use case
// instance with the relevant REST APIs, relative to the r group
// (which is expected to be /api/rental and to authenticate users):
//  1. POST createRental in order to book a car,
//  2. GET checkRentalAvailability?carId&startDate&endDate,
//  3. GET myRentals[?userId] in order to list rentals of a user,
//  4. GET :id in order to fetch one rental,
//  5. POST :id/return and POST :id/cancel in order to close a rental.
func Register(r *gin.RouterGroup, rentals *rentaluc.UseCase) {
	rs := &resource{rentals: rentals}
	r.POST("createRental", rs.CreateRental)
	r.GET("checkRentalAvailability", rs.CheckAvailability)
	r.GET("myRentals", rs.ListRentals)
	r.GET(":id", rs.GetRental)
	r.POST(":id/return", rs.ReturnRental)
	r.POST(":id/cancel", rs.CancelRental)
}

func (rs *resource) CreateRental(c *gin.Context) {
	actor, _ := middleware.Actor(c)
	p := rs.DserCreateRentalReq(c, actor)
	if p == nil {
		return
	}
	rental, err := rs.rentals.Create(c, actor, *p)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	serdser.OK(c, http.StatusCreated, rental)
}

func (rs *resource) CheckAvailability(c *gin.Context) {
	carID, period := rs.DserAvailabilityReq(c)
	if carID == 0 {
		return
	}
	available, err := rs.rentals.CheckAvailability(c, carID, period)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	serdser.OK(c, http.StatusOK, availability{Available: available})
}

func (rs *resource) ListRentals(c *gin.Context) {
	actor, _ := middleware.Actor(c)
	userID := rs.DserUserQuery(c, actor)
	if userID == 0 {
		return
	}
	list, err := rs.rentals.ListByUser(c, actor, userID)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	if list == nil {
		list = []model.Rental{}
	}
	serdser.OK(c, http.StatusOK, list)
}

func (rs *resource) GetRental(c *gin.Context) {
	rs.byID(c, rs.rentals.Get)
}

func (rs *resource) ReturnRental(c *gin.Context) {
	rs.byID(c, rs.rentals.Return)
}

func (rs *resource) CancelRental(c *gin.Context) {
	rs.byID(c, rs.rentals.Cancel)
}

// rentalOp is one of the use case methods which act on a rental.
type rentalOp func(
	ctx context.Context, actor model.Actor, rentalID int64,
) (*model.Rental, error)

func (rs *resource) byID(c *gin.Context, op rentalOp) {
	id, ok := serdser.ParseID(c, "id")
	if !ok {
		return
	}
	actor, _ := middleware.Actor(c)
	rental, err := op(c, actor, id)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	serdser.OK(c, http.StatusOK, rental)
}
