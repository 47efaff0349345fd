// Copyright (c) 2025 The Car-Retal-Api Authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package rentaluc_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/Myst1-Dev1/Car-Retal-Api/internal/test/memrepo"
	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/core/cerr"
	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/core/model"
	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/core/repo"
	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/core/usecase/rentaluc"
	"github.com/stretchr/testify/suite"
)

const userID = 7

var (
	owner = model.Actor{UserID: userID}
	admin = model.Actor{UserID: 1, Admin: true}
)

func date(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func period(start, end string) model.Period {
	return model.Period{Start: date(start), End: date(end)}
}

type counters struct {
	mu                                       sync.Mutex
	created, conflicted, returned, cancelled int
	failed                                   map[string]int
}

func (c *counters) RentalCreated()    { c.mu.Lock(); c.created++; c.mu.Unlock() }
func (c *counters) RentalConflicted() { c.mu.Lock(); c.conflicted++; c.mu.Unlock() }
func (c *counters) RentalReturned()   { c.mu.Lock(); c.returned++; c.mu.Unlock() }
func (c *counters) RentalCancelled()  { c.mu.Lock(); c.cancelled++; c.mu.Unlock() }

func (c *counters) ProjectionFailed(op string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failed == nil {
		c.failed = make(map[string]int)
	}
	c.failed[op]++
}

type RentalsUseCaseTestSuite struct {
	suite.Suite

	ctx     context.Context
	store   *memrepo.Store
	now     time.Time
	metrics *counters
	uc      *rentaluc.UseCase
	car     *model.Car
}

func TestRentalsUseCaseTestSuite(t *testing.T) {
	suite.Run(t, new(RentalsUseCaseTestSuite))
}

func (ts *RentalsUseCaseTestSuite) SetupTest() {
	ts.ctx = context.Background()
	ts.store = memrepo.New()
	ts.now = date("2024-12-01")
	ts.metrics = &counters{}
	uc, err := rentaluc.New(
		ts.store, memrepo.Rentals{}, memrepo.Cars{},
		rentaluc.WithProfiles(memrepo.Profiles{}),
		rentaluc.WithClock(func() time.Time { return ts.now }),
		rentaluc.WithMetrics(ts.metrics),
	)
	ts.Require().NoError(err)
	ts.uc = uc
	ts.car = ts.addCar(100)
	ts.addProfile(userID)
}

func (ts *RentalsUseCaseTestSuite) addCar(price float64) (car *model.Car) {
	err := ts.store.Conn(ts.ctx, func(ctx context.Context, c repo.Conn) (err error) {
		car, err = memrepo.Cars{}.Conn(c).Create(ctx, &model.Car{
			Name: "Civic", CarModel: "Honda", PricePerDay: price,
			Available: true,
		})
		return err
	})
	ts.Require().NoError(err)
	return car
}

func (ts *RentalsUseCaseTestSuite) addProfile(uid int64) {
	err := ts.store.Conn(ts.ctx, func(ctx context.Context, c repo.Conn) error {
		_, err := memrepo.Profiles{}.Conn(c).Create(ctx, &model.UserProfile{
			UserID: uid, FullName: "Jane Doe",
		})
		return err
	})
	ts.Require().NoError(err)
}

func (ts *RentalsUseCaseTestSuite) getCar() (car *model.Car) {
	err := ts.store.Conn(ts.ctx, func(ctx context.Context, c repo.Conn) (err error) {
		car, err = memrepo.Cars{}.Conn(c).Get(ctx, ts.car.ID)
		return err
	})
	ts.Require().NoError(err)
	return car
}

func (ts *RentalsUseCaseTestSuite) history() []model.RentalSnapshot {
	var p *model.UserProfile
	err := ts.store.Conn(ts.ctx, func(ctx context.Context, c repo.Conn) (err error) {
		p, err = memrepo.Profiles{}.Conn(c).Get(ctx, userID)
		return err
	})
	ts.Require().NoError(err)
	return p.RentalHistory
}

func (ts *RentalsUseCaseTestSuite) create(p model.Period) (*model.Rental, error) {
	return ts.uc.Create(ts.ctx, owner, rentaluc.CreateParams{
		UserID: userID, CarID: ts.car.ID, Period: p,
		PickupLocation: "airport",
	})
}

func (ts *RentalsUseCaseTestSuite) TestCreateComputesPriceAndProjections() {
	r, err := ts.create(period("2025-01-01", "2025-01-04"))
	ts.Require().NoError(err)
	ts.NotZero(r.ID)
	ts.Equal(300.0, r.TotalPrice)
	ts.Equal(model.RentalStatusActive, r.Status)
	ts.Equal("airport", r.PickupLocation)
	ts.False(ts.getCar().Available)
	h := ts.history()
	ts.Require().Len(h, 1)
	ts.Equal(r.Snapshot(), h[0])
	ts.Equal(1, ts.metrics.created)
}

func (ts *RentalsUseCaseTestSuite) TestCreateRoundsPartialDaysUp() {
	start := date("2025-01-01")
	r, err := ts.create(model.Period{
		Start: start, End: start.Add(60 * time.Hour),
	})
	ts.Require().NoError(err)
	ts.Equal(300.0, r.TotalPrice)
}

func (ts *RentalsUseCaseTestSuite) TestOverlappingCreateConflicts() {
	_, err := ts.create(period("2025-01-01", "2025-01-05"))
	ts.Require().NoError(err)
	_, err = ts.create(period("2025-01-04", "2025-01-06"))
	ts.ErrorIs(err, cerr.ErrCarBooked)
	ts.Equal(http.StatusConflict, cerr.StatusCode(err))
	ts.Equal(1, ts.metrics.conflicted)
	ts.Len(ts.history(), 1, "conflicting rental must not be projected")
}

func (ts *RentalsUseCaseTestSuite) TestBackToBackCreateSucceeds() {
	_, err := ts.create(period("2025-01-01", "2025-01-05"))
	ts.Require().NoError(err)
	_, err = ts.create(period("2025-01-05", "2025-01-08"))
	ts.NoError(err)
	_, err = ts.create(period("2024-12-28", "2025-01-01"))
	ts.NoError(err)
	rentals, err := ts.uc.ListByUser(ts.ctx, owner, userID)
	ts.Require().NoError(err)
	ts.Len(rentals, 3)
	ts.Equal(date("2025-01-05"), rentals[0].StartDate)
}

func (ts *RentalsUseCaseTestSuite) TestCreateValidation() {
	_, err := ts.create(period("2025-01-05", "2025-01-05"))
	ts.ErrorIs(err, model.ErrEmptyPeriod)
	ts.Equal(http.StatusBadRequest, cerr.StatusCode(err))

	_, err = ts.uc.Create(ts.ctx, owner, rentaluc.CreateParams{
		UserID: userID, CarID: 999,
		Period: period("2025-01-01", "2025-01-02"),
	})
	ts.ErrorIs(err, cerr.ErrCarNotFound)

	_, err = ts.uc.Create(ts.ctx, model.Actor{UserID: 8}, rentaluc.CreateParams{
		UserID: userID, CarID: ts.car.ID,
		Period: period("2025-01-01", "2025-01-02"),
	})
	ts.Equal(http.StatusForbidden, cerr.StatusCode(err))
}

func (ts *RentalsUseCaseTestSuite) TestCreateRejectsOverlongPeriod() {
	_, err := ts.create(period("2025-01-01", "9999-01-01"))
	ts.ErrorIs(err, model.ErrPeriodTooLong)
	ts.Equal(http.StatusBadRequest, cerr.StatusCode(err))
	_, err = ts.create(period("2025-01-01", "2026-01-02"))
	ts.ErrorIs(err, model.ErrPeriodTooLong)
	ts.True(ts.getCar().Available)
	ts.Empty(ts.history())
	ts.Zero(ts.metrics.created)

	r, err := ts.create(period("2025-01-01", "2026-01-01"))
	ts.Require().NoError(err)
	ts.Equal(36500.0, r.TotalPrice)
}

func (ts *RentalsUseCaseTestSuite) TestMaxRentalDaysOption() {
	uc, err := rentaluc.New(
		ts.store, memrepo.Rentals{}, memrepo.Cars{},
		rentaluc.WithProfiles(memrepo.Profiles{}),
		rentaluc.WithMaxRentalDays(7),
	)
	ts.Require().NoError(err)
	params := rentaluc.CreateParams{
		UserID: userID, CarID: ts.car.ID,
		Period: period("2025-01-01", "2025-01-09"),
	}
	_, err = uc.Create(ts.ctx, owner, params)
	ts.ErrorIs(err, model.ErrPeriodTooLong)
	params.Period = period("2025-01-01", "2025-01-08")
	r, err := uc.Create(ts.ctx, owner, params)
	ts.Require().NoError(err)
	ts.Equal(700.0, r.TotalPrice)

	for _, n := range []int{0, rentaluc.MaxRentalDaysLimit + 1} {
		_, err = rentaluc.New(
			ts.store, memrepo.Rentals{}, memrepo.Cars{},
			rentaluc.WithProfiles(memrepo.Profiles{}),
			rentaluc.WithMaxRentalDays(n),
		)
		ts.Error(err)
	}
}

func (ts *RentalsUseCaseTestSuite) TestCreateWithoutProfileRollsBack() {
	_, err := ts.uc.Create(ts.ctx, admin, rentaluc.CreateParams{
		UserID: 99, CarID: ts.car.ID,
		Period: period("2025-01-01", "2025-01-02"),
	})
	ts.ErrorIs(err, cerr.ErrProfileNotFound)
	ts.Equal(http.StatusNotFound, cerr.StatusCode(err))
	ts.True(ts.getCar().Available, "availability must be rolled back")
	busy, err := ts.uc.CheckOverlap(
		ts.ctx, ts.car.ID, period("2025-01-01", "2025-01-02"), 0,
	)
	ts.Require().NoError(err)
	ts.False(busy, "rental must be rolled back")
}

func (ts *RentalsUseCaseTestSuite) TestAvailabilityIsNegatedOverlap() {
	r, err := ts.create(period("2025-01-01", "2025-01-05"))
	ts.Require().NoError(err)
	for _, p := range []model.Period{
		period("2025-01-02", "2025-01-03"),
		period("2025-01-05", "2025-01-06"),
		period("2024-12-01", "2025-02-01"),
	} {
		busy, err := ts.uc.CheckOverlap(ts.ctx, ts.car.ID, p, 0)
		ts.Require().NoError(err)
		available, err := ts.uc.CheckAvailability(ts.ctx, ts.car.ID, p)
		ts.Require().NoError(err)
		ts.Equal(!busy, available, "period: %v", p)
	}
	busy, err := ts.uc.CheckOverlap(
		ts.ctx, ts.car.ID, period("2025-01-02", "2025-01-03"), r.ID,
	)
	ts.Require().NoError(err)
	ts.False(busy, "excluded rental must be ignored")

	_, err = ts.uc.CheckAvailability(
		ts.ctx, 999, period("2025-01-02", "2025-01-03"),
	)
	ts.Equal(http.StatusNotFound, cerr.StatusCode(err))
}

func (ts *RentalsUseCaseTestSuite) TestCancel() {
	r, err := ts.create(period("2025-01-01", "2025-01-05"))
	ts.Require().NoError(err)

	_, err = ts.uc.Cancel(ts.ctx, model.Actor{UserID: 8}, r.ID)
	ts.Equal(http.StatusForbidden, cerr.StatusCode(err))

	ts.now = date("2024-12-15")
	c, err := ts.uc.Cancel(ts.ctx, owner, r.ID)
	ts.Require().NoError(err)
	ts.Equal(model.RentalStatusCancelled, c.Status)
	ts.Equal(r.EndDate, c.EndDate, "cancel keeps the period")
	ts.Require().NotNil(c.ClosedAt)
	ts.Equal(ts.now, *c.ClosedAt)
	ts.True(ts.getCar().Available)
	ts.Equal(model.RentalStatusCancelled, ts.history()[0].Status)

	_, err = ts.uc.Cancel(ts.ctx, owner, r.ID)
	ts.ErrorIs(err, cerr.ErrRentalNotActive)
	ts.Equal(http.StatusBadRequest, cerr.StatusCode(err))

	_, err = ts.create(period("2025-01-02", "2025-01-03"))
	ts.NoError(err, "cancelled rental must free its period")
}

func (ts *RentalsUseCaseTestSuite) TestCancelAfterStartFails() {
	r, err := ts.create(period("2025-01-01", "2025-01-05"))
	ts.Require().NoError(err)
	ts.now = date("2025-01-02")
	_, err = ts.uc.Cancel(ts.ctx, owner, r.ID)
	ts.ErrorIs(err, cerr.ErrRentalStarted)
	ts.Equal(http.StatusBadRequest, cerr.StatusCode(err))
	ts.now = date("2025-01-01")
	_, err = ts.uc.Cancel(ts.ctx, owner, r.ID)
	ts.ErrorIs(err, cerr.ErrRentalStarted, "start instant counts as started")
}

func (ts *RentalsUseCaseTestSuite) TestCancelKeepsOtherBookingsUnavailable() {
	r1, err := ts.create(period("2025-01-01", "2025-01-05"))
	ts.Require().NoError(err)
	_, err = ts.create(period("2025-02-01", "2025-02-05"))
	ts.Require().NoError(err)
	_, err = ts.uc.Cancel(ts.ctx, owner, r1.ID)
	ts.Require().NoError(err)
	ts.False(ts.getCar().Available)
}

func (ts *RentalsUseCaseTestSuite) TestReturn() {
	r, err := ts.create(period("2025-01-01", "2025-01-05"))
	ts.Require().NoError(err)

	_, err = ts.uc.Return(ts.ctx, owner, r.ID)
	ts.ErrorIs(err, cerr.ErrRentalNotStarted)

	ts.now = date("2025-01-01").Add(36 * time.Hour)
	rr, err := ts.uc.Return(ts.ctx, owner, r.ID)
	ts.Require().NoError(err)
	ts.Equal(model.RentalStatusCompleted, rr.Status)
	ts.Equal(200.0, rr.TotalPrice)
	ts.Equal(ts.now, rr.EndDate)
	ts.True(ts.getCar().Available)
	h := ts.history()
	ts.Require().Len(h, 1)
	ts.Equal(model.RentalStatusCompleted, h[0].Status)
	ts.Equal(200.0, h[0].TotalPrice)
	ts.Equal(1, ts.metrics.returned)

	_, err = ts.uc.Return(ts.ctx, owner, r.ID)
	ts.ErrorIs(err, cerr.ErrRentalNotActive)
}

func (ts *RentalsUseCaseTestSuite) TestReturnBillsAtLeastOneDay() {
	r, err := ts.create(period("2025-01-01", "2025-01-05"))
	ts.Require().NoError(err)
	ts.now = date("2025-01-01").Add(time.Hour)
	rr, err := ts.uc.Return(ts.ctx, admin, r.ID)
	ts.Require().NoError(err)
	ts.Equal(100.0, rr.TotalPrice)
}

func (ts *RentalsUseCaseTestSuite) TestReturnUnknownRental() {
	_, err := ts.uc.Return(ts.ctx, admin, 12345)
	ts.ErrorIs(err, cerr.ErrRentalNotFound)
	ts.Equal(http.StatusNotFound, cerr.StatusCode(err))
}

func (ts *RentalsUseCaseTestSuite) TestGet() {
	r, err := ts.create(period("2025-01-01", "2025-01-05"))
	ts.Require().NoError(err)
	got, err := ts.uc.Get(ts.ctx, owner, r.ID)
	ts.Require().NoError(err)
	ts.Equal(r, got)
	_, err = ts.uc.Get(ts.ctx, model.Actor{UserID: 8}, r.ID)
	ts.ErrorIs(err, cerr.ErrNotOwner)
	_, err = ts.uc.ListByUser(ts.ctx, model.Actor{UserID: 8}, userID)
	ts.ErrorIs(err, cerr.ErrNotOwner)
}

func (ts *RentalsUseCaseTestSuite) TestSerializationFailureIsRetried() {
	ts.store.FailSerializableCommits(1)
	_, err := ts.create(period("2025-01-01", "2025-01-05"))
	ts.Require().NoError(err)
	ts.Len(ts.history(), 1)

	ts.store.FailSerializableCommits(2)
	_, err = ts.create(period("2025-02-01", "2025-02-05"))
	ts.ErrorIs(err, cerr.ErrConcurrentUpdate)
	ts.ErrorIs(err, repo.ErrSerialization)
	ts.Equal(http.StatusConflict, cerr.StatusCode(err))
	ts.Len(ts.history(), 1)
}

func (ts *RentalsUseCaseTestSuite) TestConcurrentCreatesOfOneCar() {
	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = ts.create(period("2025-03-01", "2025-03-03"))
		}(i)
	}
	wg.Wait()
	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		ts.ErrorIs(err, cerr.ErrCarBooked)
	}
	ts.Equal(1, succeeded)
}

type fakeProjector struct {
	mu      sync.Mutex
	appends []model.RentalSnapshot
	patches []model.RentalSnapshot
	err     error
}

func (fp *fakeProjector) AppendRental(_ context.Context, _ int64, s model.RentalSnapshot) error {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	fp.appends = append(fp.appends, s)
	return fp.err
}

func (fp *fakeProjector) PatchRental(_ context.Context, _ int64, s model.RentalSnapshot) error {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	fp.patches = append(fp.patches, s)
	return fp.err
}

func (ts *RentalsUseCaseTestSuite) TestRemoteProjection() {
	fp := &fakeProjector{}
	uc, err := rentaluc.New(
		ts.store, memrepo.Rentals{}, memrepo.Cars{},
		rentaluc.WithProjector(fp),
		rentaluc.WithClock(func() time.Time { return ts.now }),
		rentaluc.WithMetrics(ts.metrics),
	)
	ts.Require().NoError(err)
	r, err := uc.Create(ts.ctx, admin, rentaluc.CreateParams{
		UserID: 99, CarID: ts.car.ID,
		Period: period("2025-01-01", "2025-01-05"),
	})
	ts.Require().NoError(err, "remote mode does not need a local profile")
	ts.Equal([]model.RentalSnapshot{r.Snapshot()}, fp.appends)

	fp.err = errors.New("user service is down")
	c, err := uc.Cancel(ts.ctx, admin, r.ID)
	ts.Require().NoError(err, "projection failures do not revert rentals")
	ts.Equal([]model.RentalSnapshot{c.Snapshot()}, fp.patches)
	ts.Equal(1, ts.metrics.failed["patch"])
}

func TestNewRequiresOneProjection(t *testing.T) {
	s := memrepo.New()
	_, err := rentaluc.New(s, memrepo.Rentals{}, memrepo.Cars{})
	if err == nil {
		t.Fatal("expected an error without projections")
	}
	_, err = rentaluc.New(
		s, memrepo.Rentals{}, memrepo.Cars{},
		rentaluc.WithProfiles(memrepo.Profiles{}),
		rentaluc.WithProjector(&fakeProjector{}),
	)
	if err == nil {
		t.Fatal("expected an error with both projections")
	}
	_, err = rentaluc.New(
		s, memrepo.Rentals{}, memrepo.Cars{},
		rentaluc.WithProfiles(memrepo.Profiles{}),
		rentaluc.WithSerializationRetries(-1),
	)
	if err == nil {
		t.Fatal("expected an error for negative retries")
	}
}
