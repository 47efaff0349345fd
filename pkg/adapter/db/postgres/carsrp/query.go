package carsrp

import (
	"context"
	"errors"
	"fmt"

	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/adapter/db/postgres"
	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/core/cerr"
	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/core/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type gCar struct {
	ID          int64 `gorm:"primaryKey"`
	Name        string
	CarModel    string
	Year        int
	Color       string
	PricePerDay float64
	Available   bool
}

func (gc *gCar) TableName() string {
	return "cars"
}

func (gc *gCar) Model() *model.Car {
	return &model.Car{
		ID:          gc.ID,
		Name:        gc.Name,
		CarModel:    gc.CarModel,
		Year:        gc.Year,
		Color:       gc.Color,
		PricePerDay: gc.PricePerDay,
		Available:   gc.Available,
	}
}

func fromModel(c *model.Car) *gCar {
	return &gCar{
		ID:          c.ID,
		Name:        c.Name,
		CarModel:    c.CarModel,
		Year:        c.Year,
		Color:       c.Color,
		PricePerDay: c.PricePerDay,
		Available:   c.Available,
	}
}

func Get[Q postgres.Queryer](ctx context.Context, q Q, carID int64) (*model.Car, error) {
	return get(q.GORM(ctx), carID)
}

// GetForUpdate is like Get, but locks the selected row until the end
// of the current transaction. It is only meaningful in a transaction.
func GetForUpdate(ctx context.Context, tx *postgres.Tx, carID int64) (*model.Car, error) {
	gdb := tx.GORM(ctx).Clauses(clause.Locking{Strength: "UPDATE"})
	return get(gdb, carID)
}

func get(gdb *gorm.DB, carID int64) (*model.Car, error) {
	gc := &gCar{}
	err := gdb.Take(gc, "id = ?", carID).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, notFound(carID)
	case err != nil:
		return nil, fmt.Errorf("query: %w", err)
	}
	return gc.Model(), nil
}

func List[Q postgres.Queryer](ctx context.Context, q Q) ([]model.Car, error) {
	var gcs []gCar
	if err := q.GORM(ctx).Order("id").Find(&gcs).Error; err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	cars := make([]model.Car, 0, len(gcs))
	for i := range gcs {
		cars = append(cars, *gcs[i].Model())
	}
	return cars, nil
}

func Create[Q postgres.Queryer](ctx context.Context, q Q, c *model.Car) (*model.Car, error) {
	gc := fromModel(c)
	gc.ID = 0
	if err := q.GORM(ctx).Create(gc).Error; err != nil {
		return nil, fmt.Errorf("insert: %w", err)
	}
	return gc.Model(), nil
}

func notFound(carID int64) error {
	return cerr.NotFound(
		fmt.Errorf("%w: id=%d", cerr.ErrCarNotFound, carID),
	)
}

func Update[Q postgres.Queryer](ctx context.Context, q Q, c *model.Car) (*model.Car, error) {
	var gcs []gCar
	gdb := q.GORM(ctx).Model(&gcs).Clauses(clause.Returning{}).Where(
		"id = ?", c.ID,
	).Updates(map[string]any{
		"name":          c.Name,
		"car_model":     c.CarModel,
		"year":          c.Year,
		"color":         c.Color,
		"price_per_day": c.PricePerDay,
	})
	if err := gdb.Error; err != nil {
		return nil, fmt.Errorf("update: %w", err)
	}
	if len(gcs) != 1 {
		return nil, notFound(c.ID)
	}
	return gcs[0].Model(), nil
}

// Delete relies on the rentals.car_id foreign key for refusing to
// remove cars which have rental records.
func Delete[Q postgres.Queryer](ctx context.Context, q Q, carID int64) error {
	gdb := q.GORM(ctx).Delete(&gCar{}, "id = ?", carID)
	if err := gdb.Error; err != nil {
		if postgres.IsForeignKeyViolation(err) {
			return cerr.Conflict(fmt.Errorf(
				"%w: id=%d", cerr.ErrCarHasRentals, carID,
			))
		}
		return fmt.Errorf("delete: %w", err)
	}
	if gdb.RowsAffected != 1 {
		return notFound(carID)
	}
	return nil
}

func SetAvailability[Q postgres.Queryer](ctx context.Context, q Q, carID int64, available bool) error {
	gdb := q.GORM(ctx).Model(&gCar{}).Where(
		"id = ?", carID,
	).Update("available", available)
	if err := gdb.Error; err != nil {
		return fmt.Errorf("update: %w", err)
	}
	if gdb.RowsAffected != 1 {
		return notFound(carID)
	}
	return nil
}
