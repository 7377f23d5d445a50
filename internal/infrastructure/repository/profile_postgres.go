package repository

import (
	"context"
	"errors"

	"arcadesync/internal/domain"

	"gorm.io/gorm"
)

type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) GetByCard(ctx context.Context, card string) (*domain.Profile, error) {
	var p domain.Profile
	err := r.db.WithContext(ctx).Where("card = ?", card).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *ProfileRepository) GetByRefID(ctx context.Context, refid string) (*domain.Profile, error) {
	var p domain.Profile
	err := r.db.WithContext(ctx).Where("ref_id = ?", refid).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *ProfileRepository) GetByUsrID(ctx context.Context, usrID int) (*domain.Profile, error) {
	var p domain.Profile
	err := r.db.WithContext(ctx).Where("usr_id = ?", usrID).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, err
	}
	return &p, nil
}

// All нужен резолверу для линейного фолбека по обрезанной карте.
// На ожидаемых объемах (один зал) это дешево; контракт резолвера
// позволяет заменить скан на индексный поиск, не трогая вызывающих.
func (r *ProfileRepository) All(ctx context.Context) ([]domain.Profile, error) {
	var profiles []domain.Profile
	err := r.db.WithContext(ctx).Find(&profiles).Error
	return profiles, err
}

func (r *ProfileRepository) Create(ctx context.Context, p *domain.Profile) error {
	return r.db.WithContext(ctx).Create(p).Error
}

// Save перезаписывает запись целиком по первичному ключу.
func (r *ProfileRepository) Save(ctx context.Context, p *domain.Profile) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *ProfileRepository) UsrIDExists(ctx context.Context, usrID int) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Profile{}).
		Where("usr_id = ?", usrID).
		Count(&count).Error
	return count > 0, err
}
