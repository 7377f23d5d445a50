package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"strings"

	"arcadesync/internal/domain"
)

const (
	usrIDMin = 100000
	usrIDMax = 999999

	// Сколько раз пробуем случайный usr_id, прежде чем сдаться.
	maxAllocAttempts = 100
)

var ErrUsrIDExhausted = errors.New("usr_id allocation failed")

// SignUp создает профиль при первом появлении карты. Повторный вызов
// с той же картой не меняет уже выданные usr_id/crew_id.
type SignUp struct {
	profiles ProfileStore
}

func NewSignUp(profiles ProfileStore) *SignUp {
	return &SignUp{profiles: profiles}
}

func (s *SignUp) CreateOrFetch(ctx context.Context, cardID, refID, name string) (*domain.Profile, error) {
	cardID = strings.TrimSpace(cardID)
	if cardID == "" {
		return nil, domain.ErrMissingDataID
	}
	refID = strings.TrimSpace(refID)
	name = strings.TrimSpace(name)
	if name == "" {
		name = "PLAYER"
	}

	p, err := s.profiles.GetByCard(ctx, cardID)
	if err != nil && !errors.Is(err, domain.ErrProfileNotFound) {
		return nil, err
	}

	if p == nil {
		usrID, err := s.allocUsrID(ctx)
		if err != nil {
			return nil, err
		}
		p = &domain.Profile{
			Card:   cardID,
			DataID: cardID,
			RefID:  refID,
			UsrID:  usrID,
			CrewID: fmt.Sprintf("%012d", rand.Int64N(1_000_000_000_000)),
			Name:   name,
			Rank:   1,
		}
		if err := s.profiles.Create(ctx, p); err != nil {
			return nil, err
		}
		log.Printf("sign_up: created profile card=%q usr_id=%d", cardID, p.UsrID)
		return p, nil
	}

	// Существующий профиль: только добиваем отсутствующие поля.
	changed := false
	if p.RefID == "" && refID != "" {
		p.RefID = refID
		changed = true
	}
	if p.DataID == "" {
		p.DataID = cardID
		changed = true
	}
	if p.Name == "" {
		p.Name = name
		changed = true
	}
	if changed {
		if err := s.profiles.Save(ctx, p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// allocUsrID выдает свободный id из фиксированного диапазона.
// Случайный выбор сохраняет форму id на проводе, проверка на
// коллизию с повтором гарантирует уникальность.
func (s *SignUp) allocUsrID(ctx context.Context) (int, error) {
	for i := 0; i < maxAllocAttempts; i++ {
		id := usrIDMin + rand.IntN(usrIDMax-usrIDMin+1)
		exists, err := s.profiles.UsrIDExists(ctx, id)
		if err != nil {
			return 0, err
		}
		if !exists {
			return id, nil
		}
	}
	return 0, ErrUsrIDExhausted
}
