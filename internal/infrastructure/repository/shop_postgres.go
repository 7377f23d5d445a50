package repository

import (
	"context"
	"errors"

	"arcadesync/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ShopRepository struct {
	db *gorm.DB
}

func NewShopRepository(db *gorm.DB) *ShopRepository {
	return &ShopRepository{db: db}
}

func (r *ShopRepository) GetByPCBID(ctx context.Context, pcbid string) (*domain.Shop, error) {
	var shop domain.Shop
	err := r.db.WithContext(ctx).Where("pcbid = ?", pcbid).First(&shop).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &shop, nil
}

func (r *ShopRepository) Upsert(ctx context.Context, shop *domain.Shop) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "pcbid"}},
			UpdateAll: true,
		}).
		Create(shop).Error
}
