package usecase

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"arcadesync/internal/domain"
)

// memProfileStore — хранилище в памяти для тестов, повторяет контракт
// postgres-репозитория (включая копирование записей на выдаче).
type memProfileStore struct {
	mu       sync.Mutex
	nextPK   uint
	profiles []*domain.Profile
}

func newMemProfileStore() *memProfileStore {
	return &memProfileStore{}
}

func copyProfile(p *domain.Profile) *domain.Profile {
	raw, _ := json.Marshal(p)
	var out domain.Profile
	_ = json.Unmarshal(raw, &out)
	return &out
}

func (s *memProfileStore) GetByCard(_ context.Context, card string) (*domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.profiles {
		if p.Card == card {
			return copyProfile(p), nil
		}
	}
	return nil, domain.ErrProfileNotFound
}

func (s *memProfileStore) GetByRefID(_ context.Context, refid string) (*domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.profiles {
		if p.RefID == refid {
			return copyProfile(p), nil
		}
	}
	return nil, domain.ErrProfileNotFound
}

func (s *memProfileStore) GetByUsrID(_ context.Context, usrID int) (*domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.profiles {
		if p.UsrID == usrID {
			return copyProfile(p), nil
		}
	}
	return nil, domain.ErrProfileNotFound
}

func (s *memProfileStore) All(_ context.Context) ([]domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Profile, 0, len(s.profiles))
	for _, p := range s.profiles {
		out = append(out, *copyProfile(p))
	}
	return out, nil
}

func (s *memProfileStore) Create(_ context.Context, p *domain.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextPK++
	p.ID = s.nextPK
	s.profiles = append(s.profiles, copyProfile(p))
	return nil
}

func (s *memProfileStore) Save(_ context.Context, p *domain.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.profiles {
		if existing.ID == p.ID {
			s.profiles[i] = copyProfile(p)
			return nil
		}
	}
	s.nextPK++
	p.ID = s.nextPK
	s.profiles = append(s.profiles, copyProfile(p))
	return nil
}

func (s *memProfileStore) UsrIDExists(_ context.Context, usrID int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.profiles {
		if p.UsrID == usrID {
			return true, nil
		}
	}
	return false, nil
}

// seed добавляет профиль напрямую, минуя sign_up.
func (s *memProfileStore) seed(p domain.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextPK++
	p.ID = s.nextPK
	s.profiles = append(s.profiles, copyProfile(&p))
}

func (s *memProfileStore) byCardTrimmed(card string) *domain.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.profiles {
		if strings.TrimSpace(p.Card) == strings.TrimSpace(card) {
			return copyProfile(p)
		}
	}
	return nil
}

type memScoreStore struct {
	mu     sync.Mutex
	nextPK uint
	rows   []domain.ScoreEntry
}

func newMemScoreStore() *memScoreStore {
	return &memScoreStore{}
}

func (s *memScoreStore) Insert(_ context.Context, e *domain.ScoreEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextPK++
	e.ID = s.nextPK
	s.rows = append(s.rows, *e)
	return nil
}

func (s *memScoreStore) SearchByUsrID(_ context.Context, usrID int) ([]domain.ScoreEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.ScoreEntry
	for _, r := range s.rows {
		if r.UsrID == usrID {
			out = append(out, r)
		}
	}
	return out, nil
}
