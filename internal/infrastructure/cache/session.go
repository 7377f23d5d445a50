package cache

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionStore ведет сессии eacoin в redis: глобальный счетчик через
// INCR и карта сессия->карта с TTL. Переживает рестарт процесса и не
// растет бесконечно, в отличие от карты в памяти.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionStore(client *redis.Client) *SessionStore {
	// Сессия живет один игровой заход; двух часов хватает с запасом.
	return &SessionStore{client: client, ttl: 2 * time.Hour}
}

// Begin выделяет новый id сессии и привязывает к нему карту.
func (s *SessionStore) Begin(ctx context.Context, cardID string) (int64, error) {
	id, err := s.client.Incr(ctx, "eacoin:sessid").Result()
	if err != nil {
		return 0, err
	}
	if err := s.client.Set(ctx, sessionKey(id), cardID, s.ttl).Err(); err != nil {
		return 0, err
	}
	return id, nil
}

// Lookup возвращает карту сессии; пустая строка — сессия неизвестна
// (истекла или сервер перезапущен до чекина).
func (s *SessionStore) Lookup(ctx context.Context, sessID int64) (string, error) {
	val, err := s.client.Get(ctx, sessionKey(sessID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

func sessionKey(id int64) string {
	return "eacoin:session:" + strconv.FormatInt(id, 10)
}
