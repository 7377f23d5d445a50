package usecase

import "sync"

// accountLocks сериализует сохранения одного аккаунта: слияние — это
// fetch-modify-save без транзакции, и два параллельных save одного
// usr_id иначе теряют изменения друг друга. Карта не чистится: рост
// ограничен числом аккаунтов, мьютекс на игрока — копейки.
type accountLocks struct {
	mu    sync.Mutex
	locks map[int]*sync.Mutex
}

func newAccountLocks() *accountLocks {
	return &accountLocks{locks: make(map[int]*sync.Mutex)}
}

func (a *accountLocks) get(usrID int) *sync.Mutex {
	a.mu.Lock()
	defer a.mu.Unlock()
	m, ok := a.locks[usrID]
	if !ok {
		m = &sync.Mutex{}
		a.locks[usrID] = m
	}
	return m
}
