// Copyright (c) 2025 The Car-Retal-Api Authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package profilesrs realizes the user profiles resource, including
// the rental history endpoints which the rentals service calls when
// the profiles are kept by a remote user service.
package profilesrs

import (
	"net/http"

	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/adapter/restful/gin/middleware"
	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/adapter/restful/gin/serdser"
	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/core/model"
	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/core/usecase/profilesuc"
	"github.com/gin-gonic/gin"
)

type resource struct {
	profiles *profilesuc.UseCase
}

// Register instantiates a resource adapting the profiles use case
// instance with the relevant REST APIs, relative to the r group
// (which is expected to be /api/user and to authenticate users):
//  1. POST createProfile, GET getProfileById[?userId],
//     PUT updateProfile, and DELETE deleteAccount[?userId] for the
//     profile itself,
//  2. GET getAllProfiles for admins,
//  3. POST :userId/rentalHistory and
//     PATCH :userId/rentalHistory/:rentalId for the history entries.
func Register(r *gin.RouterGroup, profiles *profilesuc.UseCase) {
	rs := &resource{profiles: profiles}
	r.POST("createProfile", rs.CreateProfile)
	r.GET("getProfileById", rs.GetProfile)
	r.PUT("updateProfile", rs.UpdateProfile)
	r.DELETE("deleteAccount", rs.DeleteProfile)
	r.GET("getAllProfiles", rs.ListProfiles)
	r.POST(":userId/rentalHistory", rs.AppendRental)
	r.PATCH(":userId/rentalHistory/:rentalId", rs.PatchRental)
}

func (rs *resource) CreateProfile(c *gin.Context) {
	actor, _ := middleware.Actor(c)
	p := rs.DserProfileReq(c, actor)
	if p == nil {
		return
	}
	created, err := rs.profiles.Create(c, actor, p)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	serdser.OK(c, http.StatusCreated, created)
}

func (rs *resource) GetProfile(c *gin.Context) {
	actor, _ := middleware.Actor(c)
	userID := rs.DserUserQuery(c, actor)
	if userID == 0 {
		return
	}
	p, err := rs.profiles.Get(c, actor, userID)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	serdser.OK(c, http.StatusOK, p)
}

func (rs *resource) UpdateProfile(c *gin.Context) {
	actor, _ := middleware.Actor(c)
	p := rs.DserProfileReq(c, actor)
	if p == nil {
		return
	}
	updated, err := rs.profiles.Update(c, actor, p)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	serdser.OK(c, http.StatusOK, updated)
}

func (rs *resource) DeleteProfile(c *gin.Context) {
	actor, _ := middleware.Actor(c)
	userID := rs.DserUserQuery(c, actor)
	if userID == 0 {
		return
	}
	if err := rs.profiles.Delete(c, actor, userID); err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (rs *resource) ListProfiles(c *gin.Context) {
	actor, _ := middleware.Actor(c)
	list, err := rs.profiles.List(c, actor)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	if list == nil {
		list = []model.UserProfile{}
	}
	serdser.OK(c, http.StatusOK, list)
}

func (rs *resource) AppendRental(c *gin.Context) {
	userID, s := rs.DserHistoryReq(c, false)
	if userID == 0 {
		return
	}
	actor, _ := middleware.Actor(c)
	if err := rs.profiles.AppendRental(c, actor, userID, *s); err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (rs *resource) PatchRental(c *gin.Context) {
	userID, s := rs.DserHistoryReq(c, true)
	if userID == 0 {
		return
	}
	actor, _ := middleware.Actor(c)
	if err := rs.profiles.PatchRental(c, actor, userID, *s); err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
