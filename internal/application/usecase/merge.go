package usecase

import (
	"context"
	"errors"
	"log"
	"strconv"
	"sync/atomic"

	"arcadesync/internal/domain"
	"arcadesync/internal/protocol"
)

// Монотонные счетчики play_info: сохраненное значение никогда не
// опускается ниже текущего.
var monotonicCounters = []string{
	"beginner_play_count",
	"standard_play_count",
	"freetime4_play_count",
	"freetime6_play_count",
	"freetime8_play_count",
	"freetime12_play_count",
	"local_matching_play_count",
	"global_matching_play_count",
	"freetime_play_count",
	"freetime_play_total_time",
}

// Режим игры -> счетчик, к которому применяется дельта game_play_count
// из лога действий.
var modePlayCounter = map[int]string{
	10: "standard_play_count",
	20: "freetime6_play_count",
	21: "freetime8_play_count",
	23: "freetime12_play_count",
	30: "local_matching_play_count",
	40: "global_matching_play_count",
}

// Режимы, дельта которых дополнительно идет в агрегат freetime_play_count.
var freetimeModes = map[int]bool{20: true, 21: true, 23: true}

// Merger применяет входящий снапшот сохранения к хранимому профилю.
type Merger struct {
	profiles ProfileStore
	locks    *accountLocks

	// Сохранения по неизвестному usr_id молча подтверждаются (контракт
	// клиента), но считаются здесь, чтобы потерю данных было видно в логах.
	unresolvedSaves atomic.Int64
}

func NewMerger(profiles ProfileStore) *Merger {
	return &Merger{profiles: profiles, locks: newAccountLocks()}
}

func (m *Merger) UnresolvedSaves() int64 {
	return m.unresolvedSaves.Load()
}

// Save разбирает узел usr запроса сохранения и сливает его в профиль.
// Отсутствие профиля — не ошибка для клиента: возвращается nil, как и
// у успешного сохранения.
func (m *Merger) Save(ctx context.Context, usr *protocol.Node) error {
	idNode := usr.Find("usr_id")
	if idNode == nil || idNode.Value == "" {
		return domain.ErrMissingUsrID
	}
	usrID, err := strconv.Atoi(idNode.Value)
	if err != nil {
		return domain.ErrMissingUsrID
	}

	lock := m.locks.get(usrID)
	lock.Lock()
	defer lock.Unlock()

	p, err := m.profiles.GetByUsrID(ctx, usrID)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			m.unresolvedSaves.Add(1)
			log.Printf("save: profile not found for usr_id=%d, dropping payload", usrID)
			return nil
		}
		return err
	}

	m.applyFlags(p, usr)
	m.applyProfile(p, usr)
	m.applyPlayInfo(p, usr)
	m.applyOptionMaps(p, usr)
	m.applyUnlockMusic(p, usr)
	m.applyItems(p, usr)
	m.applyDecks(p, usr)
	m.applyMusicMissions(p, usr)
	m.applyPASkill(p, usr)
	m.applyActionLog(p, usr)
	m.applyCounts(p, usr)

	if err := m.profiles.Save(ctx, p); err != nil {
		return err
	}
	log.Printf("save: profile saved usr_id=%d", usrID)
	return nil
}

func (m *Merger) applyFlags(p *domain.Profile, usr *protocol.Node) {
	if usr.Has("gacha_ticket_received") {
		p.GachaTicketReceived = strconv.Itoa(usr.Int("gacha_ticket_received", 0))
	}
}

func (m *Merger) applyProfile(p *domain.Profile, usr *protocol.Node) {
	prof := usr.Find("usr_profile")
	if prof == nil {
		return
	}
	if prof.Has("usr_name") {
		p.Name = prof.Text("usr_name", "")
	}
	if prof.Has("is_tutorial_cleared") {
		p.IsTutorialCleared = strconv.Itoa(prof.BoolInt("is_tutorial_cleared", 0))
	}
	if prof.Has("usr_rank") {
		p.Rank = prof.Int("usr_rank", 0)
	}
	if prof.Has("exp") {
		p.Exp = prof.Int("exp", 0)
	}
	if prof.Has("comment") {
		p.Comment = prof.Text("comment", "")
	}
}

func (m *Merger) applyPlayInfo(p *domain.Profile, usr *protocol.Node) {
	info := usr.Find("usr_play_info")
	if info == nil {
		return
	}
	if p.PlayInfo == nil {
		p.PlayInfo = make(map[string]string)
	}
	pi := p.PlayInfo

	// Не-счетчики: прямая перезапись снапшотом.
	pi["softcode"] = info.Text("softcode", "")
	pi["asset_version"] = strconv.Itoa(info.Int("asset_version", 0))
	pi["start_date"] = info.Text("start_date", "")
	pi["end_date"] = info.Text("end_date", "")
	pi["play_days"] = strconv.Itoa(info.Int("play_days", 0))
	pi["consecutive_days"] = strconv.Itoa(info.Int("consecutive_days", 0))
	pi["consecutive_weeks"] = strconv.Itoa(info.Int("consecutive_weeks", 0))
	pi["last_play_week"] = info.Text("last_play_week", "")
	pi["today_play_count"] = strconv.Itoa(info.Int("today_play_count", 0))
	pi["mode_id"] = strconv.Itoa(info.Int("mode_id", 0))
	pi["music_id"] = strconv.Itoa(info.Int("music_id", 0))
	pi["folder_id"] = strconv.Itoa(info.Int("folder_id", 0))
	pi["chart_difficulty_type"] = strconv.Itoa(info.Int("chart_difficulty_type", 0))
	pi["pcb_id"] = info.Text("pcb_id", "")
	pi["loc_id"] = info.Text("loc_id", "")
	pi["shop_name"] = info.Text("shop_name", "")

	// Счетчики: max(вход, хранимое) — регресс невозможен.
	for _, field := range monotonicCounters {
		incoming := info.Int(field, 0)
		stored := mapInt(pi, field)
		if incoming > stored {
			pi[field] = strconv.Itoa(incoming)
		} else {
			pi[field] = strconv.Itoa(stored)
		}
	}
}

// applyActionLog накапливает дельты лога действий в generic-счетчики и
// доводит счетчик игр текущего режима: клиентский снапшот может еще не
// включать только что сыгранную сессию, лог — включает.
func (m *Merger) applyActionLog(p *domain.Profile, usr *protocol.Node) {
	logNode := usr.Find("usr_action_count_change_log")
	if logNode == nil {
		return
	}
	if p.Counts == nil {
		p.Counts = make(map[string]int)
	}

	gamePlayDelta := 0
	for _, action := range logNode.FindAll("action_log") {
		key := action.Text("key", "")
		if key == "" {
			continue
		}
		delta := action.Int("change_count", 0)
		p.Counts[key] += delta
		if key == "game_play_count" {
			gamePlayDelta += delta
		}
	}

	if gamePlayDelta <= 0 {
		return
	}
	if p.PlayInfo == nil {
		p.PlayInfo = make(map[string]string)
	}
	mode := mapInt(p.PlayInfo, "mode_id")
	field, ok := modePlayCounter[mode]
	if !ok {
		return
	}
	log.Printf("save: action log delta +%d for mode %d", gamePlayDelta, mode)
	p.PlayInfo[field] = strconv.Itoa(mapInt(p.PlayInfo, field) + gamePlayDelta)
	if freetimeModes[mode] {
		p.PlayInfo["freetime_play_count"] = strconv.Itoa(mapInt(p.PlayInfo, "freetime_play_count") + gamePlayDelta)
	}
}

func (m *Merger) applyOptionMaps(p *domain.Profile, usr *protocol.Node) {
	groups := []struct {
		tag  string
		dest *map[string]string
	}{
		{"usr_main_option", &p.MainOption},
		{"usr_privacy", &p.Privacy},
		{"usr_nametag", &p.Nametag},
		{"usr_sort_setting", &p.SortSetting},
	}
	for _, g := range groups {
		node := usr.Find(g.tag)
		if node == nil {
			continue
		}
		if *g.dest == nil {
			*g.dest = make(map[string]string)
		}
		for _, child := range node.Children {
			(*g.dest)[child.Name] = child.Value
		}
	}
}

func (m *Merger) applyUnlockMusic(p *domain.Profile, usr *protocol.Node) {
	node := usr.Find("usr_unlock_music")
	if node == nil {
		return
	}
	index := make(map[int]int, len(p.UnlockMusic))
	for i, u := range p.UnlockMusic {
		index[u.MusicID] = i
	}
	for _, music := range node.FindAll("music") {
		entry := domain.UnlockMusicEntry{
			MusicID:     music.Int("music_id", 0),
			UnlockPhase: music.Int("unlock_phase", 0),
			CanBuying:   music.Int("can_buying", 0),
			IsNew:       music.Int("is_new", 0),
			UseItemID:   music.Int("use_item_id", 0),
			UseItemNum:  music.Int("use_item_num", 0),
		}
		if i, ok := index[entry.MusicID]; ok {
			p.UnlockMusic[i] = entry
		} else {
			index[entry.MusicID] = len(p.UnlockMusic)
			p.UnlockMusic = append(p.UnlockMusic, entry)
		}
	}
}

func (m *Merger) applyItems(p *domain.Profile, usr *protocol.Node) {
	node := usr.Find("usr_item")
	if node == nil {
		return
	}
	type itemKey struct{ id, typ int }
	index := make(map[itemKey]int, len(p.Items))
	for i, it := range p.Items {
		index[itemKey{it.ItemID, it.ItemType}] = i
	}
	for _, item := range node.FindAll("item") {
		entry := domain.ItemEntry{
			ItemID:     item.Int("item_id", 0),
			ItemType:   item.Int("item_type", 0),
			IsNew:      item.Int("is_new", 0),
			LimitDate:  item.Text("limit_date", ""),
			RemainTime: item.Int("remain_time", 0),
			Param:      item.Int("param", 0),
		}
		key := itemKey{entry.ItemID, entry.ItemType}
		if i, ok := index[key]; ok {
			p.Items[i] = entry
		} else {
			index[key] = len(p.Items)
			p.Items = append(p.Items, entry)
		}
	}
}

// applyDecks заменяет список дек целиком: клиент всегда шлет полный набор.
func (m *Merger) applyDecks(p *domain.Profile, usr *protocol.Node) {
	node := usr.Find("usr_deck")
	if node == nil {
		return
	}
	decks := make([]domain.Deck, 0, len(node.Children))
	for _, deckNode := range node.FindAll("deck") {
		d := make(domain.Deck, len(deckNode.Children))
		for _, child := range deckNode.Children {
			d[child.Name] = child.Value
		}
		decks = append(decks, d)
	}
	p.Decks = decks
}

func (m *Merger) applyMusicMissions(p *domain.Profile, usr *protocol.Node) {
	node := usr.Find("usr_music_mission")
	if node == nil || len(node.Children) == 0 {
		return
	}
	missions := make([]map[string]string, 0, len(node.Children))
	for _, mm := range node.FindAll("music_mission") {
		entry := make(map[string]string, len(mm.Children))
		for _, child := range mm.Children {
			entry[child.Name] = child.Value
		}
		missions = append(missions, entry)
	}
	p.MusicMissions = missions
}

func (m *Merger) applyPASkill(p *domain.Profile, usr *protocol.Node) {
	node := usr.Find("pa_skill")
	if node == nil || len(node.Children) == 0 {
		return
	}
	skill := make(map[string]string, len(node.Children))
	for _, child := range node.Children {
		skill[child.Name] = child.Value
	}
	p.PASkill = skill
}

func (m *Merger) applyCounts(p *domain.Profile, usr *protocol.Node) {
	node := usr.Find("usr_count")
	if node == nil {
		return
	}
	if p.Counts == nil {
		p.Counts = make(map[string]int)
	}
	for _, count := range node.FindAll("count") {
		key := count.Text("key", "")
		valNode := count.Find("value")
		if key == "" || valNode == nil {
			continue
		}
		v, err := strconv.Atoi(valNode.Value)
		if err != nil {
			continue
		}
		p.Counts[key] = v
	}
}

// mapInt читает числовое значение из текстовой карты, мусор дает 0.
func mapInt(m map[string]string, key string) int {
	v, err := strconv.Atoi(m[key])
	if err != nil {
		return 0
	}
	return v
}
