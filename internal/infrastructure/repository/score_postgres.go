package repository

import (
	"context"

	"arcadesync/internal/domain"

	"gorm.io/gorm"
)

type ScoreRepository struct {
	db *gorm.DB
}

func NewScoreRepository(db *gorm.DB) *ScoreRepository {
	return &ScoreRepository{db: db}
}

func (r *ScoreRepository) Insert(ctx context.Context, s *domain.ScoreEntry) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *ScoreRepository) SearchByUsrID(ctx context.Context, usrID int) ([]domain.ScoreEntry, error) {
	var scores []domain.ScoreEntry
	err := r.db.WithContext(ctx).
		Where("usr_id = ?", usrID).
		Order("timestamp asc").
		Find(&scores).Error
	return scores, err
}
