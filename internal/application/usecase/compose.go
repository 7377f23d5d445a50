package usecase

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"arcadesync/internal/domain"
	"arcadesync/internal/protocol"
)

// Статический каталог контента: диапазон id плюс два специальных,
// на каждый id — все уровни сложности.
const (
	catalogMusicMin = 1
	catalogMusicMax = 285
	catalogDiffMax  = 5
)

var catalogSpecialIDs = []int{99900, 99901}

// Composer собирает полный снапшот профиля для клиента. Каждое поле
// каждого блока эмитится всегда, с явным дефолтом — клиент не умеет
// обрабатывать отсутствующие поля.
type Composer struct{}

func NewComposer() *Composer {
	return &Composer{}
}

// ComposeNotFound — сигнальный ответ без данных.
func (c *Composer) ComposeNotFound() *protocol.Node {
	return protocol.NewNode("usr", protocol.S32("result", 1))
}

func (c *Composer) Compose(p *domain.Profile) *protocol.Node {
	cleared := safeBool(p.IsTutorialCleared)
	skipped := safeBool(p.TutorialSkipped)
	gacha := safeBool(p.GachaTicketReceived)

	// Гача-тикет выдается после туториала: его наличие — надежный
	// признак завершения, даже если сам флаг не сохранился.
	isCleared := cleared == 1 || gacha == 1

	name := p.Name
	if name == "" {
		name = "PLAYER"
	}
	crewID := p.CrewID
	if crewID == "" {
		crewID = "0"
	}

	usr := protocol.NewNode("usr",
		protocol.S32("result", 0),
		protocol.Str("now_date", time.Now().Format("2006-01-02 15:04:05")),
		protocol.S32("usr_id", p.UsrID),
		protocol.Str("crew_id", crewID),
		protocol.S32("gacha_ticket_received", gacha),
		protocol.S32("tutorial_skipped", skipped),

		protocol.NewNode("usr_profile",
			protocol.Str("usr_name", name),
			protocol.S32("usr_rank", p.Rank),
			protocol.S32("exp", p.Exp),
			protocol.Str("comment", p.Comment),
			protocol.Bool("is_tutorial_cleared", isCleared),
		),

		c.composePlayInfo(p.PlayInfo),
		c.composeMainOption(p.MainOption),
		c.composePrivacy(p.Privacy),
		c.composeNametag(p.Nametag),
		c.composeSortSetting(p.SortSetting),
		c.composeUnlockMusic(),
		c.composeItems(),
		protocol.NewNode("usr_name_titles"),
		c.composeDecks(p.Decks),
		protocol.NewNode("usr_character_card"),
		protocol.NewNode("usr_character"),
		protocol.NewNode("usr_login_bonus"),
		protocol.NewNode("usr_music_mission"),
		protocol.NewNode("usr_extend_music_mission"),
		c.composeCounts(p.Counts),
		protocol.NewNode("usr_chatstamp"),
		protocol.NewNode("usr_action_count"),
		c.composePASkill(p.PASkill),
	)
	return usr
}

func (c *Composer) composePlayInfo(pi map[string]string) *protocol.Node {
	return protocol.NewNode("usr_play_info",
		protocol.Str("softcode", mapStr(pi, "softcode", "")),
		protocol.S32("asset_version", mapIntDef(pi, "asset_version", 0)),
		protocol.Str("start_date", mapStr(pi, "start_date", "")),
		protocol.Str("end_date", mapStr(pi, "end_date", "")),
		protocol.S32("play_days", mapIntDef(pi, "play_days", 0)),
		protocol.S32("consecutive_days", mapIntDef(pi, "consecutive_days", 0)),
		protocol.S32("consecutive_weeks", mapIntDef(pi, "consecutive_weeks", 0)),
		protocol.Str("last_play_week", mapStr(pi, "last_play_week", "")),
		protocol.S32("today_play_count", mapIntDef(pi, "today_play_count", 0)),
		protocol.S32("mode_id", mapIntDef(pi, "mode_id", 0)),
		protocol.S32("music_id", mapIntDef(pi, "music_id", 3)),
		protocol.S32("folder_id", mapIntDef(pi, "folder_id", 1)),
		protocol.S32("chart_difficulty_type", mapIntDef(pi, "chart_difficulty_type", 0)),
		protocol.Str("pcb_id", mapStr(pi, "pcb_id", "")),
		protocol.Str("loc_id", mapStr(pi, "loc_id", "")),
		protocol.Str("shop_name", mapStr(pi, "shop_name", "")),
		protocol.S32("beginner_play_count", mapIntDef(pi, "beginner_play_count", 0)),
		protocol.S32("standard_play_count", mapIntDef(pi, "standard_play_count", 0)),
		protocol.S32("freetime4_play_count", mapIntDef(pi, "freetime4_play_count", 0)),
		protocol.S32("freetime6_play_count", mapIntDef(pi, "freetime6_play_count", 0)),
		protocol.S32("freetime8_play_count", mapIntDef(pi, "freetime8_play_count", 0)),
		protocol.S32("freetime12_play_count", mapIntDef(pi, "freetime12_play_count", 0)),
		protocol.S32("local_matching_play_count", mapIntDef(pi, "local_matching_play_count", 0)),
		protocol.S32("global_matching_play_count", mapIntDef(pi, "global_matching_play_count", 0)),
		protocol.S32("freetime_play_count", mapIntDef(pi, "freetime_play_count", 0)),
		protocol.S32("freetime_play_total_time", mapIntDef(pi, "freetime_play_total_time", 0)),
	)
}

func (c *Composer) composeMainOption(mo map[string]string) *protocol.Node {
	return protocol.NewNode("usr_main_option",
		protocol.S32("notes_design_type", mapIntDef(mo, "notes_design_type", 0)),
		protocol.S32("tap_se_type", mapIntDef(mo, "tap_se_type", 0)),
		protocol.S32("tap_effect_type", mapIntDef(mo, "tap_effect_type", 0)),
		protocol.S32("right_fader_color", mapIntDef(mo, "right_fader_color", 0)),
		protocol.S32("left_fader_color", mapIntDef(mo, "left_fader_color", 0)),
		protocol.S32("chart_option", mapIntDef(mo, "chart_option", 0)),
		protocol.S32("high_speed", mapIntDef(mo, "high_speed", 0)),
		protocol.S32("notes_display_timing", mapIntDef(mo, "notes_display_timing", 0)),
		protocol.S32("judge_timing", mapIntDef(mo, "judge_timing", 0)),
		protocol.S32("judge_display_position", mapIntDef(mo, "judge_display_position", 0)),
		protocol.S32("display_fast_slow", mapIntDef(mo, "display_fast_slow", 0)),
		protocol.S32("lane_alpha", mapIntDef(mo, "lane_alpha", 0)),
		protocol.S32("movie_brightness", mapIntDef(mo, "movie_brightness", 0)),
		protocol.S32("skill_cut_in", mapIntDef(mo, "skill_cut_in", 0)),
		protocol.Bool("is_voice_active", mapBool(mo, "is_voice_active")),
		protocol.S32("combo_special_display", mapIntDef(mo, "combo_special_display", 0)),
		protocol.S32("music_volume", mapIntDef(mo, "music_volume", 0)),
		protocol.S32("se_volume", mapIntDef(mo, "se_volume", 0)),
		protocol.S32("voice_volume", mapIntDef(mo, "voice_volume", 0)),
		protocol.S32("out_game_music_volume", mapIntDef(mo, "out_game_music_volume", 0)),
		protocol.S32("out_game_se_volume", mapIntDef(mo, "out_game_se_volume", 0)),
		protocol.S32("out_game_voice_volume", mapIntDef(mo, "out_game_voice_volume", 0)),
		protocol.S32("master_volume", mapIntDef(mo, "master_volume", 0)),
		protocol.S32("headphone_volume", mapIntDef(mo, "headphone_volume", 0)),
		protocol.S32("bass_shaker_volume", mapIntDef(mo, "bass_shaker_volume", 0)),
		protocol.Bool("force_open_prev_in_game_option", mapBool(mo, "force_open_prev_in_game_option")),
		protocol.S32("display_bar_line", mapIntDef(mo, "display_bar_line", 0)),
		protocol.Str("bga_id", mapStr(mo, "bga_id", "")),
	)
}

func (c *Composer) composePrivacy(pr map[string]string) *protocol.Node {
	return protocol.NewNode("usr_privacy",
		protocol.S32("disp_name_to_other", mapIntDef(pr, "disp_name_to_other", 1)),
		protocol.S32("disp_shop_to_other", mapIntDef(pr, "disp_shop_to_other", 1)),
		protocol.S32("disp_shop_to_me", mapIntDef(pr, "disp_shop_to_me", 1)),
		protocol.S32("disp_skill_to_other", mapIntDef(pr, "disp_skill_to_other", 1)),
		protocol.S32("disp_skill_to_me", mapIntDef(pr, "disp_skill_to_me", 1)),
	)
}

func (c *Composer) composeNametag(nt map[string]string) *protocol.Node {
	return protocol.NewNode("usr_nametag",
		protocol.Str("nametag_badge1_id", mapStr(nt, "nametag_badge1_id", "0")),
		protocol.Str("nametag_badge2_id", mapStr(nt, "nametag_badge2_id", "0")),
		protocol.Str("nametag_badge3_id", mapStr(nt, "nametag_badge3_id", "0")),
		protocol.Str("nametag_plate_id", mapStr(nt, "nametag_plate_id", "0")),
		protocol.Str("nametag_title_id", mapStr(nt, "nametag_title_id", "0")),
		protocol.Str("set_title_name", mapStr(nt, "set_title_name", "")),
		protocol.Str("set_title_rarity", mapStr(nt, "set_title_rarity", "0")),
	)
}

func (c *Composer) composeSortSetting(ss map[string]string) *protocol.Node {
	fields := []string{
		"musicselect_sort",
		"musicselect_filter",
		"musicselect_order",
		"character_training_list_sort",
		"character_training_list_filter",
		"character_training_list_order",
		"character_replacement_list_sort",
		"character_replacement_list_filter",
		"character_replacement_list_order",
		"character_material_list_sort",
		"character_material_list_filter",
		"character_material_list_order",
	}
	node := protocol.NewNode("usr_sort_setting")
	for _, f := range fields {
		node.Add(protocol.S32(f, mapIntDef(ss, f, 0)))
	}
	return node
}

func catalogMusicIDs() []int {
	ids := make([]int, 0, catalogMusicMax+len(catalogSpecialIDs))
	for id := catalogMusicMin; id <= catalogMusicMax; id++ {
		ids = append(ids, id)
	}
	return append(ids, catalogSpecialIDs...)
}

func (c *Composer) composeUnlockMusic() *protocol.Node {
	node := protocol.NewNode("usr_unlock_music")
	for _, id := range catalogMusicIDs() {
		for diff := 0; diff < catalogDiffMax; diff++ {
			node.Add(protocol.NewNode("music",
				protocol.S32("music_id", id),
				protocol.S32("chart_difficulty_type", diff),
				protocol.S32("unlock_type", 0),
			))
		}
	}
	return node
}

func (c *Composer) composeItems() *protocol.Node {
	node := protocol.NewNode("usr_item")
	for _, id := range catalogMusicIDs() {
		for diff := 0; diff < catalogDiffMax; diff++ {
			node.Add(protocol.NewNode("item",
				protocol.Str("item_id", fmt.Sprintf("chart.%d.%d", id, diff)),
				protocol.S32("count", 1),
				protocol.S32("income", 0),
				protocol.S32("expense", 0),
			))
		}
	}
	return node
}

func (c *Composer) composeDecks(decks []domain.Deck) *protocol.Node {
	node := protocol.NewNode("usr_deck")
	for _, d := range decks {
		node.Add(protocol.NewNode("deck",
			protocol.S32("deck_number", mapIntDef(d, "deck_number", 0)),
			protocol.Bool("is_main", mapIntDef(d, "is_main", 0) != 0),
			protocol.Bool("is_select", mapIntDef(d, "is_select", 0) != 0),
			protocol.Str("deck_name", mapStr(d, "deck_name", "DECK 1")),
			protocol.Str("contenter_index", mapStr(d, "contenter_index", "1")),
			protocol.Str("supportsnap1_index", mapStr(d, "supportsnap1_index", "0")),
			protocol.Str("supportsnap2_index", mapStr(d, "supportsnap2_index", "0")),
			protocol.Str("supportsnap3_index", mapStr(d, "supportsnap3_index", "0")),
			protocol.Str("supportsnap4_index", mapStr(d, "supportsnap4_index", "0")),
			protocol.Str("frame_id", mapStr(d, "frame_id", "")),
			protocol.Str("pose_id", mapStr(d, "pose_id", "")),
		))
	}
	return node
}

func (c *Composer) composeCounts(counts map[string]int) *protocol.Node {
	node := protocol.NewNode("usr_count")
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		node.Add(protocol.NewNode("count",
			protocol.Str("key", k),
			protocol.S32("value", counts[k]),
		))
	}
	return node
}

func (c *Composer) composePASkill(ps map[string]string) *protocol.Node {
	return protocol.NewNode("pa_skill",
		protocol.NewNode("pa_skill_history"),
		protocol.S32("pa_skill_history_index", mapIntDef(ps, "pa_skill_history_index", 0)),
		protocol.S32("skill", mapIntDef(ps, "skill", 0)),
	)
}

// safeBool приводит булево-подобный текст к 0/1: литерал "true" — 1,
// иначе парсим как число, мусор — 0.
func safeBool(v string) int {
	if strings.EqualFold(strings.TrimSpace(v), "true") {
		return 1
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n == 0 {
		return 0
	}
	return 1
}

func mapStr(m map[string]string, key, def string) string {
	if v, ok := m[key]; ok && v != "" {
		return v
	}
	return def
}

// mapIntDef — как mapInt, но с настраиваемым дефолтом и допуском
// булевых литералов в значении.
func mapIntDef(m map[string]string, key string, def int) int {
	v, ok := m[key]
	if !ok || v == "" {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		if strings.EqualFold(strings.TrimSpace(v), "true") {
			return 1
		}
		return 0
	}
	return n
}

func mapBool(m map[string]string, key string) bool {
	v, ok := m[key]
	if !ok || v == "" {
		return false
	}
	if strings.EqualFold(strings.TrimSpace(v), "true") {
		return true
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	return err == nil && n != 0
}
