package usecase

import (
	"context"
	"log"
	"sort"
	"time"

	"arcadesync/internal/domain"
	"arcadesync/internal/protocol"
)

// Scores пишет журнал попыток и строит агрегат лучших результатов.
type Scores struct {
	scores ScoreStore
}

func NewScores(scores ScoreStore) *Scores {
	return &Scores{scores: scores}
}

// SaveMusicScores добавляет по строке на каждую запись usr_music_play_log.
// Строки не изменяются и не удаляются.
func (s *Scores) SaveMusicScores(ctx context.Context, usrID int, playLog *protocol.Node) (int, error) {
	if playLog == nil {
		return 0, nil
	}
	saved := 0
	for _, music := range playLog.FindAll("music") {
		entry := &domain.ScoreEntry{
			UsrID:           usrID,
			MusicID:         music.Int("music_id", 0),
			Difficulty:      music.Int("chart_difficulty_type", 0),
			Score:           music.Int("score", 0),
			ClearStatus:     music.Int("clear_status", 0),
			Combo:           music.Int("combo", 0),
			AchievementRate: music.Int("achievement_rate", 0),
			ScoreRank:       music.Int("score_rank", 0),
			ComboRank:       music.Int("combo_rank", 0),
			Timestamp:       time.Now().Unix(),
		}
		if err := s.scores.Insert(ctx, entry); err != nil {
			return saved, err
		}
		saved++
		log.Printf("save_musicscore: usr_id=%d music=%d diff=%d score=%d",
			usrID, entry.MusicID, entry.Difficulty, entry.Score)
	}
	return saved, nil
}

// Aggregate сворачивает всю историю в лучший результат на ключ
// (music_id, difficulty). Пересчет всегда с нуля — инкрементального
// состояния нет.
func (s *Scores) Aggregate(ctx context.Context, usrID int) ([]domain.BestScore, error) {
	rows, err := s.scores.SearchByUsrID(ctx, usrID)
	if err != nil {
		return nil, err
	}

	type key struct{ music, diff int }
	best := make(map[key]*domain.BestScore)
	for _, row := range rows {
		k := key{row.MusicID, row.Difficulty}
		b, ok := best[k]
		if !ok {
			b = &domain.BestScore{MusicID: row.MusicID, Difficulty: row.Difficulty}
			best[k] = b
		}
		b.Score = max(b.Score, row.Score)
		b.AchievementRate = max(b.AchievementRate, row.AchievementRate)
		b.ClearStatus = max(b.ClearStatus, row.ClearStatus)
		b.Combo = max(b.Combo, row.Combo)
		b.ScoreRank = max(b.ScoreRank, row.ScoreRank)
		b.ComboRank = max(b.ComboRank, row.ComboRank)
		b.PlayCount++
		if row.ClearStatus >= domain.ClearThreshold {
			b.ClearCount++
		}
	}

	out := make([]domain.BestScore, 0, len(best))
	for _, b := range best {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].MusicID != out[j].MusicID {
			return out[i].MusicID < out[j].MusicID
		}
		return out[i].Difficulty < out[j].Difficulty
	})
	return out, nil
}
