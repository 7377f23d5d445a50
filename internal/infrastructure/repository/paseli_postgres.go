package repository

import (
	"context"
	"errors"

	"arcadesync/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PaseliRepository struct {
	db *gorm.DB
}

func NewPaseliRepository(db *gorm.DB) *PaseliRepository {
	return &PaseliRepository{db: db}
}

func (r *PaseliRepository) GetByCardID(ctx context.Context, cardID string) (*domain.PaseliAccount, error) {
	var acc domain.PaseliAccount
	err := r.db.WithContext(ctx).Where("card_id = ?", cardID).First(&acc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &acc, nil
}

func (r *PaseliRepository) Upsert(ctx context.Context, acc *domain.PaseliAccount) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "card_id"}},
			UpdateAll: true,
		}).
		Create(acc).Error
}
