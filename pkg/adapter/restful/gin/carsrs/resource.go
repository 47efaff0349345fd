// Copyright (c) 2025 The Car-Retal-Api Authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package carsrs realizes the cars resource, allowing the car catalog
// REST APIs to be accepted and delegated to the cars use cases
// respectively.
package carsrs

import (
	"net/http"

	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/adapter/restful/gin/middleware"
	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/adapter/restful/gin/serdser"
	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/core/model"
	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/core/usecase/carsuc"
	"github.com/gin-gonic/gin"
)

type resource struct {
	cars *carsuc.UseCase
}

// Register instantiates a resource adapting the cars use case instance
// with the relevant REST APIs, relative to the r group (which is
// expected to be /api/car):
//  1. GET getCars in order to list the catalog,
//  2. GET :id in order to fetch one car,
//  3. POST createCar in order to add a car,
//  4. PUT :id in order to edit a car,
//  5. DELETE :id in order to remove a car which was never rented.
//
// The last three are guarded by the auth middlewares which are passed
// to Register.
func Register(r *gin.RouterGroup, cars *carsuc.UseCase, auth ...gin.HandlerFunc) {
	rs := &resource{cars: cars}
	r.GET("getCars", rs.ListCars)
	r.GET(":id", rs.GetCar)
	guarded := r.Group("", auth...)
	guarded.POST("createCar", rs.CreateCar)
	guarded.PUT(":id", rs.UpdateCar)
	guarded.DELETE(":id", rs.DeleteCar)
}

func (rs *resource) ListCars(c *gin.Context) {
	list, err := rs.cars.List(c)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	if list == nil {
		list = []model.Car{}
	}
	serdser.OK(c, http.StatusOK, list)
}

func (rs *resource) GetCar(c *gin.Context) {
	id, ok := serdser.ParseID(c, "id")
	if !ok {
		return
	}
	car, err := rs.cars.Get(c, id)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	serdser.OK(c, http.StatusOK, car)
}

func (rs *resource) CreateCar(c *gin.Context) {
	car := rs.DserCreateCarReq(c)
	if car == nil {
		return
	}
	actor, _ := middleware.Actor(c)
	created, err := rs.cars.Create(c, actor, car)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	serdser.OK(c, http.StatusCreated, created)
}

func (rs *resource) UpdateCar(c *gin.Context) {
	id, ok := serdser.ParseID(c, "id")
	if !ok {
		return
	}
	car := rs.DserCreateCarReq(c)
	if car == nil {
		return
	}
	car.ID = id
	actor, _ := middleware.Actor(c)
	updated, err := rs.cars.Update(c, actor, car)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	serdser.OK(c, http.StatusOK, updated)
}

func (rs *resource) DeleteCar(c *gin.Context) {
	id, ok := serdser.ParseID(c, "id")
	if !ok {
		return
	}
	actor, _ := middleware.Actor(c)
	if err := rs.cars.Delete(c, actor, id); err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
