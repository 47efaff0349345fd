package memrepo

import (
	"context"
	"fmt"
	"sort"

	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/core/cerr"
	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/core/model"
	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/core/repo"
)

// Cars implements the repo.Cars interface.
type Cars struct{}

func (Cars) Conn(c repo.Conn) repo.CarsConnQueryer {
	return cars{s: store(c)}
}

func (Cars) Tx(tx repo.Tx) repo.CarsTxQueryer {
	return cars{s: store(tx)}
}

type cars struct {
	s *Store
}

func carNotFound(id int64) error {
	return cerr.NotFound(fmt.Errorf("%w: id=%d", cerr.ErrCarNotFound, id))
}

func (q cars) Get(_ context.Context, id int64) (car *model.Car, err error) {
	err = q.s.view(func(d *data) error {
		c, ok := d.cars[id]
		if !ok {
			return carNotFound(id)
		}
		car = &c
		return nil
	})
	return car, err
}

func (q cars) GetForUpdate(ctx context.Context, id int64) (*model.Car, error) {
	return q.Get(ctx, id)
}

func (q cars) List(context.Context) (list []model.Car, err error) {
	err = q.s.view(func(d *data) error {
		list = make([]model.Car, 0, len(d.cars))
		for _, c := range d.cars {
			list = append(list, c)
		}
		sort.Slice(list, func(i, j int) bool {
			return list[i].ID < list[j].ID
		})
		return nil
	})
	return list, err
}

func (q cars) Create(_ context.Context, c *model.Car) (*model.Car, error) {
	cc := *c
	_ = q.s.view(func(d *data) error {
		d.lastID++
		cc.ID = d.lastID
		d.cars[cc.ID] = cc
		return nil
	})
	return &cc, nil
}

func (q cars) SetAvailability(_ context.Context, id int64, available bool) error {
	return q.s.view(func(d *data) error {
		c, ok := d.cars[id]
		if !ok {
			return carNotFound(id)
		}
		c.Available = available
		d.cars[id] = c
		return nil
	})
}

func (q cars) Update(_ context.Context, c *model.Car) (car *model.Car, err error) {
	err = q.s.view(func(d *data) error {
		old, ok := d.cars[c.ID]
		if !ok {
			return carNotFound(c.ID)
		}
		old.Name = c.Name
		old.CarModel = c.CarModel
		old.Year = c.Year
		old.Color = c.Color
		old.PricePerDay = c.PricePerDay
		d.cars[c.ID] = old
		car = &old
		return nil
	})
	return car, err
}

// Delete mimics the rentals.car_id foreign key.
func (q cars) Delete(_ context.Context, id int64) error {
	return q.s.view(func(d *data) error {
		if _, ok := d.cars[id]; !ok {
			return carNotFound(id)
		}
		for _, r := range d.rentals {
			if r.CarID == id {
				return cerr.Conflict(fmt.Errorf(
					"%w: id=%d", cerr.ErrCarHasRentals, id,
				))
			}
		}
		delete(d.cars, id)
		return nil
	})
}

// Rentals implements the repo.Rentals interface.
type Rentals struct{}

func (Rentals) Conn(c repo.Conn) repo.RentalsConnQueryer {
	return rentals{s: store(c)}
}

func (Rentals) Tx(tx repo.Tx) repo.RentalsTxQueryer {
	return rentals{s: store(tx)}
}

type rentals struct {
	s *Store
}

func rentalNotFound(id int64) error {
	return cerr.NotFound(
		fmt.Errorf("%w: id=%d", cerr.ErrRentalNotFound, id),
	)
}

func (q rentals) Get(_ context.Context, id int64) (rental *model.Rental, err error) {
	err = q.s.view(func(d *data) error {
		r, ok := d.rentals[id]
		if !ok {
			return rentalNotFound(id)
		}
		rental = &r
		return nil
	})
	return rental, err
}

func (q rentals) GetForUpdate(ctx context.Context, id int64) (*model.Rental, error) {
	return q.Get(ctx, id)
}

func (q rentals) filter(keep func(r *model.Rental) bool) []model.Rental {
	var list []model.Rental
	_ = q.s.view(func(d *data) error {
		for _, r := range d.rentals {
			if keep(&r) {
				list = append(list, r)
			}
		}
		return nil
	})
	return list
}

func (q rentals) ListActiveByCar(_ context.Context, carID int64) ([]model.Rental, error) {
	list := q.filter(func(r *model.Rental) bool {
		return r.CarID == carID && r.Status == model.RentalStatusActive
	})
	sort.Slice(list, func(i, j int) bool {
		return list[i].StartDate.Before(list[j].StartDate)
	})
	return list, nil
}

func (q rentals) ListByUser(_ context.Context, userID int64) ([]model.Rental, error) {
	list := q.filter(func(r *model.Rental) bool {
		return r.UserID == userID
	})
	sort.Slice(list, func(i, j int) bool {
		if list[i].StartDate.Equal(list[j].StartDate) {
			return list[i].ID > list[j].ID
		}
		return list[i].StartDate.After(list[j].StartDate)
	})
	return list, nil
}

func (q rentals) Insert(_ context.Context, r *model.Rental) (*model.Rental, error) {
	rr := *r
	err := q.s.view(func(d *data) error {
		if _, ok := d.cars[rr.CarID]; !ok {
			return carNotFound(rr.CarID)
		}
		d.lastID++
		rr.ID = d.lastID
		d.rentals[rr.ID] = rr
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &rr, nil
}

func (q rentals) Close(_ context.Context, r *model.Rental) error {
	return q.s.view(func(d *data) error {
		old, ok := d.rentals[r.ID]
		if !ok {
			return rentalNotFound(r.ID)
		}
		old.EndDate = r.EndDate
		old.TotalPrice = r.TotalPrice
		old.Status = r.Status
		old.ClosedAt = r.ClosedAt
		d.rentals[r.ID] = old
		return nil
	})
}

// Profiles implements the repo.Profiles interface.
type Profiles struct{}

func (Profiles) Conn(c repo.Conn) repo.ProfilesConnQueryer {
	return profiles{s: store(c)}
}

func (Profiles) Tx(tx repo.Tx) repo.ProfilesTxQueryer {
	return profiles{s: store(tx)}
}

type profiles struct {
	s *Store
}

func profileNotFound(userID int64) error {
	return cerr.NotFound(
		fmt.Errorf("%w: userId=%d", cerr.ErrProfileNotFound, userID),
	)
}

func cloneProfile(p model.UserProfile) *model.UserProfile {
	p.RentalHistory = append(
		[]model.RentalSnapshot{}, p.RentalHistory...,
	)
	return &p
}

func (q profiles) Get(_ context.Context, userID int64) (prof *model.UserProfile, err error) {
	err = q.s.view(func(d *data) error {
		p, ok := d.profiles[userID]
		if !ok {
			return profileNotFound(userID)
		}
		prof = cloneProfile(p)
		return nil
	})
	return prof, err
}

func (q profiles) Create(_ context.Context, p *model.UserProfile) (prof *model.UserProfile, err error) {
	err = q.s.view(func(d *data) error {
		if _, ok := d.profiles[p.UserID]; ok {
			return cerr.Conflict(fmt.Errorf(
				"%w: userId=%d", cerr.ErrProfileExists, p.UserID,
			))
		}
		d.lastID++
		pp := *cloneProfile(*p)
		pp.ID = d.lastID
		d.profiles[p.UserID] = pp
		prof = cloneProfile(pp)
		return nil
	})
	return prof, err
}

func (q profiles) Update(_ context.Context, p *model.UserProfile) (prof *model.UserProfile, err error) {
	err = q.s.view(func(d *data) error {
		old, ok := d.profiles[p.UserID]
		if !ok {
			return profileNotFound(p.UserID)
		}
		old.FullName = p.FullName
		old.Phone = p.Phone
		old.Address = p.Address
		old.AvatarURL = p.AvatarURL
		d.profiles[p.UserID] = old
		prof = cloneProfile(old)
		return nil
	})
	return prof, err
}

func (q profiles) List(context.Context) (list []model.UserProfile, err error) {
	err = q.s.view(func(d *data) error {
		list = make([]model.UserProfile, 0, len(d.profiles))
		for _, p := range d.profiles {
			list = append(list, *cloneProfile(p))
		}
		sort.Slice(list, func(i, j int) bool {
			return list[i].UserID < list[j].UserID
		})
		return nil
	})
	return list, err
}

func (q profiles) Delete(_ context.Context, userID int64) error {
	return q.s.view(func(d *data) error {
		if _, ok := d.profiles[userID]; !ok {
			return profileNotFound(userID)
		}
		delete(d.profiles, userID)
		return nil
	})
}

func (q profiles) AppendRental(_ context.Context, userID int64, s model.RentalSnapshot) error {
	return q.s.view(func(d *data) error {
		p, ok := d.profiles[userID]
		if !ok {
			return profileNotFound(userID)
		}
		p.RentalHistory = append(
			append([]model.RentalSnapshot{}, p.RentalHistory...), s,
		)
		d.profiles[userID] = p
		return nil
	})
}

func (q profiles) PatchRental(_ context.Context, userID int64, s model.RentalSnapshot) error {
	return q.s.view(func(d *data) error {
		p, ok := d.profiles[userID]
		if !ok {
			return profileNotFound(userID)
		}
		pp := cloneProfile(p)
		if !model.PatchRental(pp.RentalHistory, s) {
			return cerr.NotFound(fmt.Errorf(
				"%w: userId=%d, rentalId=%d",
				cerr.ErrHistoryNotFound, userID, s.RentalID,
			))
		}
		d.profiles[userID] = *pp
		return nil
	})
}
