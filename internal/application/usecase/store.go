package usecase

import (
	"context"

	"arcadesync/internal/domain"
)

// ProfileStore — контракт хранилища профилей (поиск по предикату).
// Реализация — postgres-репозиторий; тесты подставляют память.
type ProfileStore interface {
	GetByCard(ctx context.Context, card string) (*domain.Profile, error)
	GetByRefID(ctx context.Context, refid string) (*domain.Profile, error)
	GetByUsrID(ctx context.Context, usrID int) (*domain.Profile, error)
	All(ctx context.Context) ([]domain.Profile, error)
	Create(ctx context.Context, p *domain.Profile) error
	Save(ctx context.Context, p *domain.Profile) error
	UsrIDExists(ctx context.Context, usrID int) (bool, error)
}

// ScoreStore — журнал попыток, только вставка и выборка по аккаунту.
type ScoreStore interface {
	Insert(ctx context.Context, s *domain.ScoreEntry) error
	SearchByUsrID(ctx context.Context, usrID int) ([]domain.ScoreEntry, error)
}
