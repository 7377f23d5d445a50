package domain

import (
	"errors"
	"time"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrMissingDataID   = errors.New("data_id missing")
	ErrMissingUsrID    = errors.New("usr_id missing")
)

// UnlockMusicEntry — запись о разблокированной музыке, ключ music_id.
type UnlockMusicEntry struct {
	MusicID     int `json:"music_id"`
	UnlockPhase int `json:"unlock_phase"`
	CanBuying   int `json:"can_buying"`
	IsNew       int `json:"is_new"`
	UseItemID   int `json:"use_item_id"`
	UseItemNum  int `json:"use_item_num"`
}

// ItemEntry — предмет инвентаря, составной ключ (item_id, item_type).
type ItemEntry struct {
	ItemID     int    `json:"item_id"`
	ItemType   int    `json:"item_type"`
	IsNew      int    `json:"is_new"`
	LimitDate  string `json:"limit_date"`
	RemainTime int    `json:"remain_time"`
	Param      int    `json:"param"`
}

// Deck хранится как сырой набор тегов клиента: схема дек меняется
// между билдами, валидировать нечего.
type Deck map[string]string

// Profile — сохранение одного игрока. Card — внешний токен (основной ключ
// поиска, бывает с хвостовыми пробелами), UsrID выдается сервером один раз.
type Profile struct {
	ID     uint   `gorm:"primaryKey"`
	Card   string `gorm:"index"`
	DataID string
	RefID  string `gorm:"index"`
	UsrID  int    `gorm:"uniqueIndex"`
	CrewID string

	Name    string
	Rank    int `gorm:"default:1"`
	Exp     int
	Comment string

	// Булево-подобные флаги хранятся как текст: старые записи содержат
	// "true"/"false", новые — "0"/"1". Приведение типов делает композер.
	IsTutorialCleared   string
	TutorialSkipped     string
	GachaTicketReceived string

	PlayInfo    map[string]string `gorm:"serializer:json"`
	MainOption  map[string]string `gorm:"serializer:json"`
	Privacy     map[string]string `gorm:"serializer:json"`
	Nametag     map[string]string `gorm:"serializer:json"`
	SortSetting map[string]string `gorm:"serializer:json"`

	UnlockMusic []UnlockMusicEntry `gorm:"serializer:json"`
	Items       []ItemEntry        `gorm:"serializer:json"`
	Decks       []Deck             `gorm:"serializer:json"`

	Counts        map[string]int      `gorm:"serializer:json"`
	MusicMissions []map[string]string `gorm:"serializer:json"`
	PASkill       map[string]string   `gorm:"serializer:json"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
