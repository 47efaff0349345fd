// Copyright (c) 2025 The Car-Retal-Api Authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package gin_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Myst1-Dev1/Car-Retal-Api/internal/test/memrepo"
	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/adapter/auth/jwtauth"
	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/adapter/config"
	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/adapter/restful/gin"
	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/adapter/restful/gin/routes"
	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/core/model"
	"github.com/alicebob/miniredis/v2"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/suite"
)

// cfg is formatted with the Redis address and the global rate limit.
const cfg = `
database:
  url: postgres://unused/rentals
auth:
  jwt-secret: gin-test-secret
ratelimit:
  redis: %s
  global:
    limit: %d
    period: 1h
  sensitive:
    limit: 1000
`

const ownerID = 7

type GinTestSuite struct {
	suite.Suite

	Redis  *miniredis.Miniredis
	Gin    *gin.Engine
	closer func() error

	admin, owner, other string
}

func TestGinTestSuite(t *testing.T) {
	suite.Run(t, new(GinTestSuite))
}

func (gts *GinTestSuite) SetupTest() {
	gts.Redis = miniredis.RunT(gts.T())
	gts.setup(1000)
}

func (gts *GinTestSuite) setup(globalLimit int) {
	c, err := config.Parse([]byte(fmt.Sprintf(cfg, gts.Redis.Addr(), globalLimit)))
	gts.Require().NoError(err, "failed to parse config")

	gts.Gin = c.Gin.NewEngine()
	gts.Require().NotNil(gts.Gin, "cannot instantiate Gin engine")
	gts.closer, err = routes.Register(
		context.Background(), gts.Gin, memrepo.New(), routes.Repos{
			Cars:     memrepo.Cars{},
			Rentals:  memrepo.Rentals{},
			Profiles: memrepo.Profiles{},
		}, c,
	)
	gts.Require().NoError(err, "failed to register Gin routes")

	v, err := c.Auth.NewVerifier()
	gts.Require().NoError(err)
	sign := func(a model.Actor) string {
		tok, err := v.Sign(a, time.Hour)
		gts.Require().NoError(err)
		return tok
	}
	gts.admin = sign(model.Actor{UserID: 1, Admin: true})
	gts.owner = sign(model.Actor{UserID: ownerID})
	gts.other = sign(model.Actor{UserID: 8})
}

func (gts *GinTestSuite) TearDownTest() {
	gts.NoError(gts.closer())
}

type envelope struct {
	Success bool
	Message string
	Data    json.RawMessage
	Errors  map[string][]string
}

func (gts *GinTestSuite) send(
	method, path, token string, body any,
) (*httptest.ResponseRecorder, envelope) {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		gts.Require().NoError(err)
		r = strings.NewReader(string(b))
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	gts.Gin.ServeHTTP(w, req)
	env := envelope{}
	if w.Code != http.StatusNoContent && !strings.HasPrefix(path, "/metrics") {
		gts.NoError(json.Unmarshal(w.Body.Bytes(), &env), "body is not json")
	}
	return w, env
}

func (gts *GinTestSuite) decode(env envelope, v any) {
	gts.Require().NoError(json.Unmarshal(env.Data, v))
}

func (gts *GinTestSuite) createCar() model.Car {
	w, env := gts.send(http.MethodPost, "/api/car/createCar", gts.admin,
		map[string]any{
			"name": "Corolla", "carModel": "Toyota", "pricePerDay": 40,
		},
	)
	gts.Require().Equal(http.StatusCreated, w.Code, env.Message)
	car := model.Car{}
	gts.decode(env, &car)
	return car
}

func (gts *GinTestSuite) createProfile(token string) {
	w, env := gts.send(http.MethodPost, "/api/user/createProfile", token,
		map[string]any{"fullName": "Jane Roe"},
	)
	gts.Require().Equal(http.StatusCreated, w.Code, env.Message)
}

func day(offset int) string {
	return time.Now().UTC().Truncate(model.Day).
		Add(time.Duration(offset) * model.Day).Format(time.DateOnly)
}

func (gts *GinTestSuite) book(carID int64, start, end string) (
	*httptest.ResponseRecorder, envelope,
) {
	return gts.send(http.MethodPost, "/api/rental/createRental", gts.owner,
		map[string]any{"carId": carID, "startDate": start, "endDate": end},
	)
}

func (gts *GinTestSuite) TestCarsCatalog() {
	w, env := gts.send(http.MethodGet, "/api/car/getCars", "", nil)
	gts.Equal(http.StatusOK, w.Code)
	gts.JSONEq(`[]`, string(env.Data))

	car := gts.createCar()
	gts.True(car.Available)
	w, env = gts.send(http.MethodGet, fmt.Sprintf("/api/car/%d", car.ID), "", nil)
	gts.Equal(http.StatusOK, w.Code)
	got := model.Car{}
	gts.decode(env, &got)
	gts.Equal(car, got)

	w, _ = gts.send(http.MethodGet, "/api/car/999", "", nil)
	gts.Equal(http.StatusNotFound, w.Code)
	w, env = gts.send(http.MethodGet, "/api/car/abc", "", nil)
	gts.Equal(http.StatusBadRequest, w.Code)
	gts.Contains(env.Errors, "id")

	w, _ = gts.send(http.MethodPost, "/api/car/createCar", gts.owner,
		map[string]any{"name": "X", "carModel": "Y", "pricePerDay": 1},
	)
	gts.Equal(http.StatusForbidden, w.Code)
	w, _ = gts.send(http.MethodPost, "/api/car/createCar", "", nil)
	gts.Equal(http.StatusUnauthorized, w.Code)
	w, env = gts.send(http.MethodPost, "/api/car/createCar", gts.admin,
		map[string]any{"name": "X", "pricePerDay": 0},
	)
	gts.Equal(http.StatusBadRequest, w.Code)
	gts.Contains(env.Errors, "CarModel")
	gts.Contains(env.Errors, "PricePerDay")
}

func (gts *GinTestSuite) TestCarAdministration() {
	car := gts.createCar()
	path := fmt.Sprintf("/api/car/%d", car.ID)
	edit := map[string]any{
		"name": "Corolla", "carModel": "Toyota", "color": "blue",
		"pricePerDay": 45,
	}
	w, _ := gts.send(http.MethodPut, path, gts.owner, edit)
	gts.Equal(http.StatusForbidden, w.Code)
	w, env := gts.send(http.MethodPut, path, gts.admin,
		map[string]any{"name": "Corolla"},
	)
	gts.Equal(http.StatusBadRequest, w.Code)
	gts.Contains(env.Errors, "CarModel")
	w, _ = gts.send(http.MethodPut, "/api/car/999", gts.admin, edit)
	gts.Equal(http.StatusNotFound, w.Code)
	w, env = gts.send(http.MethodPut, path, gts.admin, edit)
	gts.Require().Equal(http.StatusOK, w.Code, env.Message)
	got := model.Car{}
	gts.decode(env, &got)
	gts.Equal(45.0, got.PricePerDay)
	gts.Equal("blue", got.Color)
	gts.True(got.Available)

	gts.createProfile(gts.owner)
	w, env = gts.book(car.ID, day(3), day(5))
	gts.Require().Equal(http.StatusCreated, w.Code, env.Message)
	rental := model.Rental{}
	gts.decode(env, &rental)
	gts.Equal(90.0, rental.TotalPrice, "updated price")

	w, env = gts.send(http.MethodDelete, path, gts.admin, nil)
	gts.Equal(http.StatusConflict, w.Code)
	gts.Contains(env.Message, "car has active rentals")
	w, _ = gts.send(http.MethodPost,
		fmt.Sprintf("/api/rental/%d/cancel", rental.ID), gts.owner, nil,
	)
	gts.Require().Equal(http.StatusOK, w.Code)
	w, env = gts.send(http.MethodDelete, path, gts.admin, nil)
	gts.Equal(http.StatusConflict, w.Code)
	gts.Contains(env.Message, "car has rental records")

	spare := gts.createCar()
	sparePath := fmt.Sprintf("/api/car/%d", spare.ID)
	w, _ = gts.send(http.MethodDelete, sparePath, gts.owner, nil)
	gts.Equal(http.StatusForbidden, w.Code)
	w, _ = gts.send(http.MethodDelete, sparePath, gts.admin, nil)
	gts.Equal(http.StatusNoContent, w.Code)
	w, _ = gts.send(http.MethodGet, sparePath, "", nil)
	gts.Equal(http.StatusNotFound, w.Code)
}

func (gts *GinTestSuite) TestBookingLifecycle() {
	car := gts.createCar()
	gts.createProfile(gts.owner)

	w, env := gts.book(car.ID, day(3), day(5))
	gts.Require().Equal(http.StatusCreated, w.Code, env.Message)
	rental := model.Rental{}
	gts.decode(env, &rental)
	gts.Equal(int64(ownerID), rental.UserID)
	gts.Equal(80.0, rental.TotalPrice)
	gts.Equal(model.RentalStatusActive, rental.Status)

	w, env = gts.book(car.ID, day(4), day(6))
	gts.Equal(http.StatusConflict, w.Code)
	gts.Equal("car already booked in this window", env.Message)
	w, _ = gts.book(car.ID, day(5), day(6))
	gts.Equal(http.StatusCreated, w.Code, "back-to-back periods do not overlap")

	path := fmt.Sprintf(
		"/api/rental/checkRentalAvailability?carId=%d&startDate=%s&endDate=%s",
		car.ID, day(4), day(5),
	)
	w, env = gts.send(http.MethodGet, path, gts.other, nil)
	gts.Equal(http.StatusOK, w.Code)
	gts.JSONEq(`{"available":false}`, string(env.Data))

	rentalPath := fmt.Sprintf("/api/rental/%d", rental.ID)
	w, _ = gts.send(http.MethodGet, rentalPath, gts.other, nil)
	gts.Equal(http.StatusForbidden, w.Code)
	w, _ = gts.send(http.MethodPost, rentalPath+"/return", gts.owner, nil)
	gts.Equal(http.StatusBadRequest, w.Code, "not started yet")

	w, env = gts.send(http.MethodPost, rentalPath+"/cancel", gts.owner, nil)
	gts.Require().Equal(http.StatusOK, w.Code, env.Message)
	gts.decode(env, &rental)
	gts.Equal(model.RentalStatusCancelled, rental.Status)
	gts.NotNil(rental.ClosedAt)
	w, _ = gts.send(http.MethodPost, rentalPath+"/cancel", gts.owner, nil)
	gts.Equal(http.StatusBadRequest, w.Code, "already cancelled")

	w, env = gts.send(http.MethodGet, path, gts.other, nil)
	gts.Equal(http.StatusOK, w.Code)
	gts.JSONEq(`{"available":true}`, string(env.Data))

	w, env = gts.send(http.MethodGet, "/api/rental/myRentals", gts.owner, nil)
	gts.Equal(http.StatusOK, w.Code)
	var list []model.Rental
	gts.decode(env, &list)
	gts.Len(list, 2)

	w, env = gts.send(http.MethodGet, "/api/user/getProfileById", gts.owner, nil)
	gts.Equal(http.StatusOK, w.Code)
	p := model.UserProfile{}
	gts.decode(env, &p)
	gts.Require().Len(p.RentalHistory, 2)
	gts.Equal(model.RentalStatusCancelled, p.RentalHistory[0].Status)
}

func (gts *GinTestSuite) TestReturnStartedRental() {
	car := gts.createCar()
	gts.createProfile(gts.owner)
	w, env := gts.book(car.ID, day(-1), day(2))
	gts.Require().Equal(http.StatusCreated, w.Code, env.Message)
	rental := model.Rental{}
	gts.decode(env, &rental)

	path := fmt.Sprintf("/api/rental/%d", rental.ID)
	w, _ = gts.send(http.MethodPost, path+"/cancel", gts.owner, nil)
	gts.Equal(http.StatusBadRequest, w.Code, "already started")
	w, env = gts.send(http.MethodPost, path+"/return", gts.owner, nil)
	gts.Require().Equal(http.StatusOK, w.Code, env.Message)
	gts.decode(env, &rental)
	gts.Equal(model.RentalStatusCompleted, rental.Status)
	gts.GreaterOrEqual(rental.TotalPrice, 40.0)

	w, env = gts.send(http.MethodGet, fmt.Sprintf("/api/car/%d", car.ID), "", nil)
	gts.Equal(http.StatusOK, w.Code)
	gts.decode(env, &car)
	gts.True(car.Available)
}

func (gts *GinTestSuite) TestBadRequest() {
	for name, tc := range map[string]struct {
		body  any
		field string
	}{
		"no car":     {map[string]any{"startDate": day(1), "endDate": day(2)}, "CarID"},
		"no start":   {map[string]any{"carId": 1, "endDate": day(2)}, "StartDate"},
		"bad date":   {map[string]any{"carId": 1, "startDate": "x", "endDate": day(2)}, "startDate"},
		"empty":      {map[string]any{"carId": 1, "startDate": day(2), "endDate": day(2)}, "endDate"},
		"reversed":   {map[string]any{"carId": 1, "startDate": day(3), "endDate": day(2)}, "endDate"},
		"negative":   {map[string]any{"carId": -1, "startDate": day(1), "endDate": day(2)}, "CarID"},
		"bad userId": {map[string]any{"userId": -3, "carId": 1, "startDate": day(1), "endDate": day(2)}, "UserID"},
	} {
		gts.Run(name, func() {
			w, env := gts.send(
				http.MethodPost, "/api/rental/createRental", gts.owner, tc.body,
			)
			gts.Equal(http.StatusBadRequest, w.Code)
			gts.False(env.Success)
			gts.Contains(env.Errors, tc.field)
		})
	}

	w, _ := gts.send(http.MethodPost, "/api/rental/createRental", gts.owner,
		map[string]any{
			"userId": 8, "carId": 1, "startDate": day(1), "endDate": day(2),
		},
	)
	gts.Equal(http.StatusForbidden, w.Code, "booking for another user")

	w, env := gts.send(http.MethodGet,
		"/api/rental/checkRentalAvailability?carId=1&startDate=2025-01-02",
		gts.owner, nil,
	)
	gts.Equal(http.StatusBadRequest, w.Code)
	gts.Contains(env.Errors, "EndDate")
}

func (gts *GinTestSuite) TestOverlongRental() {
	car := gts.createCar()
	gts.createProfile(gts.owner)
	w, env := gts.book(car.ID, "2025-01-01", "9999-01-01")
	gts.Equal(http.StatusBadRequest, w.Code)
	gts.Contains(env.Message, "rental period is too long")

	w, env = gts.send(http.MethodGet, "/api/rental/myRentals", gts.owner, nil)
	gts.Equal(http.StatusOK, w.Code)
	gts.JSONEq(`[]`, string(env.Data))
}

func (gts *GinTestSuite) TestUnknownCar() {
	gts.createProfile(gts.owner)
	w, _ := gts.book(42, day(1), day(2))
	gts.Equal(http.StatusNotFound, w.Code)

	w, _ = gts.send(http.MethodGet, fmt.Sprintf(
		"/api/rental/checkRentalAvailability?carId=42&startDate=%s&endDate=%s",
		day(1), day(2),
	), gts.owner, nil)
	gts.Equal(http.StatusNotFound, w.Code)
}

func (gts *GinTestSuite) TestProfiles() {
	w, _ := gts.send(http.MethodGet, "/api/user/getProfileById", gts.owner, nil)
	gts.Equal(http.StatusNotFound, w.Code)

	gts.createProfile(gts.owner)
	w, env := gts.send(http.MethodPost, "/api/user/createProfile", gts.owner,
		map[string]any{"fullName": "Jane Roe"},
	)
	gts.Equal(http.StatusConflict, w.Code, env.Message)
	w, env = gts.send(http.MethodPost, "/api/user/createProfile", gts.other,
		map[string]any{"fullName": "Jo"},
	)
	gts.Equal(http.StatusBadRequest, w.Code)
	gts.Contains(env.Errors, "FullName")

	w, env = gts.send(http.MethodPut, "/api/user/updateProfile", gts.owner,
		map[string]any{"fullName": "Jane Doe", "phone": "+1-555-0100"},
	)
	gts.Equal(http.StatusOK, w.Code, env.Message)
	p := model.UserProfile{}
	gts.decode(env, &p)
	gts.Equal("Jane Doe", p.FullName)

	w, _ = gts.send(http.MethodGet,
		fmt.Sprintf("/api/user/getProfileById?userId=%d", ownerID), gts.other, nil,
	)
	gts.Equal(http.StatusForbidden, w.Code)
	w, _ = gts.send(http.MethodGet,
		fmt.Sprintf("/api/user/getProfileById?userId=%d", ownerID), gts.admin, nil,
	)
	gts.Equal(http.StatusOK, w.Code)

	gts.createProfile(gts.other)
	w, _ = gts.send(http.MethodGet, "/api/user/getAllProfiles", gts.owner, nil)
	gts.Equal(http.StatusForbidden, w.Code)
	w, env = gts.send(http.MethodGet, "/api/user/getAllProfiles", gts.admin, nil)
	gts.Equal(http.StatusOK, w.Code)
	var all []model.UserProfile
	gts.decode(env, &all)
	gts.Len(all, 2)

	w, _ = gts.send(http.MethodDelete,
		fmt.Sprintf("/api/user/deleteAccount?userId=%d", ownerID), gts.other, nil,
	)
	gts.Equal(http.StatusForbidden, w.Code)
	w, _ = gts.send(http.MethodDelete, "/api/user/deleteAccount", gts.owner, nil)
	gts.Equal(http.StatusNoContent, w.Code)
	w, _ = gts.send(http.MethodGet, "/api/user/getProfileById", gts.owner, nil)
	gts.Equal(http.StatusNotFound, w.Code)
	w, _ = gts.send(http.MethodDelete, "/api/user/deleteAccount", gts.owner, nil)
	gts.Equal(http.StatusNotFound, w.Code)
}

func (gts *GinTestSuite) TestRentalHistory() {
	gts.createProfile(gts.owner)
	s := model.RentalSnapshot{
		RentalID:   11,
		CarID:      3,
		StartDate:  time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC),
		TotalPrice: 80,
		Status:     model.RentalStatusActive,
	}
	base := fmt.Sprintf("/api/user/%d/rentalHistory", ownerID)
	w, _ := gts.send(http.MethodPost, base, gts.owner, s)
	gts.Equal(http.StatusForbidden, w.Code, "admins only")
	w, env := gts.send(http.MethodPost, base, gts.admin, s)
	gts.Require().Equal(http.StatusNoContent, w.Code, env.Message)

	s.Status = model.RentalStatusCompleted
	w, env = gts.send(http.MethodPatch, base+"/12", gts.admin, s)
	gts.Equal(http.StatusBadRequest, w.Code)
	gts.Contains(env.Errors, "rentalId")
	w, env = gts.send(http.MethodPatch, base+"/11", gts.admin, s)
	gts.Require().Equal(http.StatusNoContent, w.Code, env.Message)

	s.RentalID = 12
	w, _ = gts.send(http.MethodPatch, base+"/12", gts.admin, s)
	gts.Equal(http.StatusNotFound, w.Code)

	w, env = gts.send(http.MethodGet, "/api/user/getProfileById", gts.owner, nil)
	gts.Equal(http.StatusOK, w.Code)
	p := model.UserProfile{}
	gts.decode(env, &p)
	gts.Require().Len(p.RentalHistory, 1)
	gts.Equal(model.RentalStatusCompleted, p.RentalHistory[0].Status)
}

func (gts *GinTestSuite) TestRateLimitAndMetrics() {
	gts.Require().NoError(gts.closer())
	gts.setup(3)
	for i := 0; i < 3; i++ {
		w, _ := gts.send(http.MethodGet, "/api/car/getCars", "", nil)
		gts.Require().Equal(http.StatusOK, w.Code, "request %d", i)
	}
	w, env := gts.send(http.MethodGet, "/api/car/getCars", "", nil)
	gts.Equal(http.StatusTooManyRequests, w.Code)
	gts.Equal("Too many requests", env.Message)

	gts.Redis.FastForward(2 * time.Hour)
	w, _ = gts.send(http.MethodGet, "/api/car/getCars", "", nil)
	gts.Equal(http.StatusOK, w.Code, "counter expired")

	w, _ = gts.send(http.MethodGet, "/metrics", "", nil)
	gts.Equal(http.StatusOK, w.Code)
	gts.Contains(w.Body.String(),
		`http_request_duration_seconds_count{method="GET",route="/api/car/getCars",status="429"} 1`,
	)
	gts.Contains(w.Body.String(),
		`http_request_duration_seconds_count{method="GET",route="/api/car/getCars",status="200"} 4`,
	)
}

func (gts *GinTestSuite) TestExpiredToken() {
	v, err := jwtauth.New("gin-test-secret")
	gts.Require().NoError(err)
	tok, err := v.Sign(model.Actor{UserID: ownerID}, -time.Minute)
	gts.Require().NoError(err)
	w, env := gts.send(http.MethodGet, "/api/rental/myRentals", tok, nil)
	gts.Equal(http.StatusUnauthorized, w.Code)
	gts.False(env.Success)
}
