package usecase

import (
	"context"
	"errors"
	"strings"

	"arcadesync/internal/domain"
)

// Resolver находит профиль по входящим идентификаторам. Клиенты разных
// билдов присылают карту с непостоянными хвостовыми пробелами, поэтому
// точные выборки дополняются обрезанными и, в крайнем случае,
// линейным сканом по обрезанной карте.
type Resolver struct {
	profiles ProfileStore
}

func NewResolver(profiles ProfileStore) *Resolver {
	return &Resolver{profiles: profiles}
}

// Resolve пробует стратегии по порядку, первая удачная побеждает.
// Идентификатор из одних пробелов не участвует в выборках: пустая
// строка в предикате совпала бы с каждой записью без refid.
func (r *Resolver) Resolve(ctx context.Context, cardID, refID string) (*domain.Profile, error) {
	cardClean := strings.TrimSpace(cardID)
	refClean := strings.TrimSpace(refID)

	if cardClean != "" {
		p, err := r.lookupCard(ctx, cardID)
		if err != nil {
			return nil, err
		}
		if p != nil {
			return p, nil
		}
	}

	if refClean != "" {
		p, err := r.profiles.GetByRefID(ctx, refID)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, domain.ErrProfileNotFound) {
			return nil, err
		}
		p, err = r.profiles.GetByRefID(ctx, refClean)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, domain.ErrProfileNotFound) {
			return nil, err
		}
	}

	// Фолбек: записи, сохраненные с другим вариантом пробелов.
	// O(n) по таблице, терпимо на масштабе одного зала.
	if cardClean != "" {
		all, err := r.profiles.All(ctx)
		if err != nil {
			return nil, err
		}
		for i := range all {
			if strings.TrimSpace(all[i].Card) == cardClean {
				return &all[i], nil
			}
		}
	}

	return nil, domain.ErrProfileNotFound
}

func (r *Resolver) lookupCard(ctx context.Context, cardID string) (*domain.Profile, error) {
	p, err := r.profiles.GetByCard(ctx, cardID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, domain.ErrProfileNotFound) {
		return nil, err
	}
	p, err = r.profiles.GetByCard(ctx, strings.TrimSpace(cardID))
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, domain.ErrProfileNotFound) {
		return nil, err
	}
	return nil, nil
}
