package profilesrp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/adapter/db/postgres"
	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/core/cerr"
	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/core/model"
	"github.com/goccy/go-json"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type gProfile struct {
	ID            int64 `gorm:"primaryKey"`
	UserID        int64
	FullName      string
	Phone         string
	Address       string
	AvatarURL     string `gorm:"column:avatar_url"`
	RentalHistory datatypes.JSON
	CreatedAt     time.Time
}

func (gp *gProfile) TableName() string {
	return "user_profiles"
}

func (gp *gProfile) Model() (*model.UserProfile, error) {
	history, err := decodeHistory(gp.RentalHistory)
	if err != nil {
		return nil, fmt.Errorf("profile of user %d: %w", gp.UserID, err)
	}
	return &model.UserProfile{
		ID:            gp.ID,
		UserID:        gp.UserID,
		FullName:      gp.FullName,
		Phone:         gp.Phone,
		Address:       gp.Address,
		AvatarURL:     gp.AvatarURL,
		RentalHistory: history,
		CreatedAt:     gp.CreatedAt.UTC(),
	}, nil
}

func decodeHistory(b datatypes.JSON) ([]model.RentalSnapshot, error) {
	history := []model.RentalSnapshot{}
	if len(b) == 0 {
		return history, nil
	}
	if err := json.Unmarshal(b, &history); err != nil {
		return nil, fmt.Errorf("decoding rental history: %w", err)
	}
	return history, nil
}

func notFound(userID int64) error {
	return cerr.NotFound(
		fmt.Errorf("%w: userId=%d", cerr.ErrProfileNotFound, userID),
	)
}

func Get[Q postgres.Queryer](ctx context.Context, q Q, userID int64) (*model.UserProfile, error) {
	return get(q.GORM(ctx), userID)
}

func get(gdb *gorm.DB, userID int64) (*model.UserProfile, error) {
	gp := &gProfile{}
	err := gdb.Take(gp, "user_id = ?", userID).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, notFound(userID)
	case err != nil:
		return nil, fmt.Errorf("query: %w", err)
	}
	return gp.Model()
}

func Create[Q postgres.Queryer](ctx context.Context, q Q, p *model.UserProfile) (*model.UserProfile, error) {
	history := p.RentalHistory
	if history == nil {
		history = []model.RentalSnapshot{}
	}
	b, err := json.Marshal(history)
	if err != nil {
		return nil, fmt.Errorf("encoding rental history: %w", err)
	}
	gp := &gProfile{
		UserID:        p.UserID,
		FullName:      p.FullName,
		Phone:         p.Phone,
		Address:       p.Address,
		AvatarURL:     p.AvatarURL,
		RentalHistory: datatypes.JSON(b),
		CreatedAt:     p.CreatedAt,
	}
	if err := q.GORM(ctx).Create(gp).Error; err != nil {
		if postgres.IsUniqueViolation(err) {
			return nil, cerr.Conflict(fmt.Errorf(
				"%w: userId=%d", cerr.ErrProfileExists, p.UserID,
			))
		}
		return nil, fmt.Errorf("insert: %w", err)
	}
	return gp.Model()
}

func Update[Q postgres.Queryer](ctx context.Context, q Q, p *model.UserProfile) (*model.UserProfile, error) {
	var gps []gProfile
	gdb := q.GORM(ctx).Model(&gps).Clauses(clause.Returning{}).Where(
		"user_id = ?", p.UserID,
	).Updates(map[string]any{
		"full_name":  p.FullName,
		"phone":      p.Phone,
		"address":    p.Address,
		"avatar_url": p.AvatarURL,
	})
	if err := gdb.Error; err != nil {
		return nil, fmt.Errorf("update: %w", err)
	}
	if len(gps) != 1 {
		return nil, notFound(p.UserID)
	}
	return gps[0].Model()
}

func List[Q postgres.Queryer](ctx context.Context, q Q) ([]model.UserProfile, error) {
	var gps []gProfile
	if err := q.GORM(ctx).Order("user_id").Find(&gps).Error; err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	profiles := make([]model.UserProfile, 0, len(gps))
	for i := range gps {
		p, err := gps[i].Model()
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, *p)
	}
	return profiles, nil
}

func Delete[Q postgres.Queryer](ctx context.Context, q Q, userID int64) error {
	gdb := q.GORM(ctx).Delete(&gProfile{}, "user_id = ?", userID)
	if err := gdb.Error; err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	if gdb.RowsAffected != 1 {
		return notFound(userID)
	}
	return nil
}

// AppendRental concatenates a one-element array to the jsonb history,
// so concurrent appends are serialized by the row lock of UPDATE.
func AppendRental[Q postgres.Queryer](ctx context.Context, q Q, userID int64, s model.RentalSnapshot) error {
	b, err := json.Marshal([]model.RentalSnapshot{s})
	if err != nil {
		return fmt.Errorf("encoding rental snapshot: %w", err)
	}
	gdb := q.GORM(ctx).Model(&gProfile{}).Where(
		"user_id = ?", userID,
	).Update("rental_history", gorm.Expr(
		"COALESCE(rental_history, '[]'::jsonb) || ?::jsonb", string(b),
	))
	if err := gdb.Error; err != nil {
		return fmt.Errorf("update: %w", err)
	}
	if gdb.RowsAffected != 1 {
		return notFound(userID)
	}
	return nil
}

func PatchRental(ctx context.Context, tx *postgres.Tx, userID int64, s model.RentalSnapshot) error {
	gdb := tx.GORM(ctx).Clauses(clause.Locking{Strength: "UPDATE"})
	p, err := get(gdb, userID)
	if err != nil {
		return err
	}
	if !model.PatchRental(p.RentalHistory, s) {
		return cerr.NotFound(fmt.Errorf(
			"%w: userId=%d, rentalId=%d",
			cerr.ErrHistoryNotFound, userID, s.RentalID,
		))
	}
	b, err := json.Marshal(p.RentalHistory)
	if err != nil {
		return fmt.Errorf("encoding rental history: %w", err)
	}
	err = tx.GORM(ctx).Model(&gProfile{}).Where(
		"user_id = ?", userID,
	).Update("rental_history", datatypes.JSON(b)).Error
	if err != nil {
		return fmt.Errorf("update: %w", err)
	}
	return nil
}
