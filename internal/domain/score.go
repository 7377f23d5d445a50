package domain

// ClearThreshold — минимальный clear_status, засчитываемый как клир.
const ClearThreshold = 10

// ScoreEntry — одна попытка. Строки только добавляются, агрегация
// всегда считается заново по всей истории.
type ScoreEntry struct {
	ID              uint `gorm:"primaryKey"`
	UsrID           int  `gorm:"index"`
	MusicID         int
	Difficulty      int
	Score           int
	ClearStatus     int
	Combo           int
	AchievementRate int
	ScoreRank       int
	ComboRank       int
	Timestamp       int64
}

// BestScore — лучший результат по ключу (music_id, difficulty).
type BestScore struct {
	MusicID         int
	Difficulty      int
	Score           int
	AchievementRate int
	ClearStatus     int
	Combo           int
	ScoreRank       int
	ComboRank       int
	PlayCount       int
	ClearCount      int
}
