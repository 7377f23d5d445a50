package usecase

import (
	"testing"

	"arcadesync/internal/domain"
	"arcadesync/internal/protocol"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComposeNotFound(t *testing.T) {
	c := NewComposer()

	usr := c.ComposeNotFound()
	require.Equal(t, "usr", usr.Name)
	require.Len(t, usr.Children, 1)
	assert.Equal(t, "1", usr.Find("result").Value)
}

func TestComposeDefaultsForFreshProfile(t *testing.T) {
	c := NewComposer()
	usr := c.Compose(&domain.Profile{UsrID: 123456, Rank: 1})

	assert.Equal(t, "0", usr.Find("result").Value)
	assert.Equal(t, "123456", usr.Find("usr_id").Value)
	assert.Equal(t, "0", usr.Find("crew_id").Value)
	assert.Equal(t, "0", usr.Find("gacha_ticket_received").Value)

	prof := usr.Find("usr_profile")
	require.NotNil(t, prof)
	assert.Equal(t, "PLAYER", prof.Find("usr_name").Value)
	assert.Equal(t, "1", prof.Find("usr_rank").Value)
	assert.Equal(t, "0", prof.Find("is_tutorial_cleared").Value)

	pi := usr.Find("usr_play_info")
	require.NotNil(t, pi)
	assert.Equal(t, "3", pi.Find("music_id").Value)
	assert.Equal(t, "1", pi.Find("folder_id").Value)
	assert.Equal(t, "0", pi.Find("standard_play_count").Value)
}

// Наличие гача-тикета само по себе означает пройденный туториал.
func TestComposeTutorialClearedFromGachaTicket(t *testing.T) {
	c := NewComposer()
	usr := c.Compose(&domain.Profile{
		UsrID:               123456,
		IsTutorialCleared:   "0",
		GachaTicketReceived: "1",
	})

	assert.Equal(t, "1", usr.Find("usr_profile").Find("is_tutorial_cleared").Value)
	assert.Equal(t, "1", usr.Find("gacha_ticket_received").Value)
}

func TestComposeEveryBlockPresent(t *testing.T) {
	c := NewComposer()
	usr := c.Compose(&domain.Profile{UsrID: 1})

	for _, tag := range []string{
		"usr_profile", "usr_play_info", "usr_main_option", "usr_privacy",
		"usr_nametag", "usr_sort_setting", "usr_unlock_music", "usr_item",
		"usr_name_titles", "usr_deck", "usr_character_card", "usr_character",
		"usr_login_bonus", "usr_music_mission", "usr_extend_music_mission",
		"usr_count", "usr_chatstamp", "usr_action_count", "pa_skill",
	} {
		assert.NotNil(t, usr.Find(tag), tag)
	}
}

func TestComposeCatalogSize(t *testing.T) {
	c := NewComposer()
	usr := c.Compose(&domain.Profile{UsrID: 1})

	// 285 обычных треков + 2 специальных, по 5 сложностей на каждый.
	const want = (285 + 2) * 5
	assert.Len(t, usr.Find("usr_unlock_music").Children, want)

	items := usr.Find("usr_item")
	assert.Len(t, items.Children, want)
	assert.Equal(t, "chart.1.0", items.Children[0].Find("item_id").Value)
	last := items.Children[len(items.Children)-1]
	assert.Equal(t, "chart.99901.4", last.Find("item_id").Value)
}

func TestComposePrivacyDefaultsOpen(t *testing.T) {
	c := NewComposer()
	usr := c.Compose(&domain.Profile{UsrID: 1})

	pr := usr.Find("usr_privacy")
	for _, child := range pr.Children {
		assert.Equal(t, "1", child.Value, child.Name)
	}
}

func TestComposeDeckDefaults(t *testing.T) {
	c := NewComposer()
	usr := c.Compose(&domain.Profile{
		UsrID: 1,
		Decks: []domain.Deck{{"deck_number": "2", "is_main": "1"}},
	})

	decks := usr.Find("usr_deck")
	require.Len(t, decks.Children, 1)
	deck := decks.Children[0]
	assert.Equal(t, "2", deck.Find("deck_number").Value)
	assert.Equal(t, "1", deck.Find("is_main").Value)
	assert.Equal(t, "DECK 1", deck.Find("deck_name").Value)
	assert.Equal(t, "1", deck.Find("contenter_index").Value)
	assert.Equal(t, "0", deck.Find("supportsnap1_index").Value)
}

func TestComposeCountsSorted(t *testing.T) {
	c := NewComposer()
	usr := c.Compose(&domain.Profile{
		UsrID:  1,
		Counts: map[string]int{"zeta": 3, "alpha": 1, "mid": 2},
	})

	counts := usr.Find("usr_count")
	require.Len(t, counts.Children, 3)
	assert.Equal(t, "alpha", counts.Children[0].Find("key").Value)
	assert.Equal(t, "mid", counts.Children[1].Find("key").Value)
	assert.Equal(t, "zeta", counts.Children[2].Find("key").Value)
	assert.Equal(t, "1", counts.Children[0].Find("value").Value)
}

func TestComposeTypedLeaves(t *testing.T) {
	c := NewComposer()
	usr := c.Compose(&domain.Profile{UsrID: 1})

	assert.Equal(t, protocol.TypeS32, usr.Find("usr_id").Type)
	assert.Equal(t, protocol.TypeStr, usr.Find("crew_id").Type)
	assert.Equal(t, protocol.TypeBool, usr.Find("usr_profile").Find("is_tutorial_cleared").Type)
}

func TestSafeBool(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"true", 1},
		{"True", 1},
		{" true ", 1},
		{"1", 1},
		{"5", 1},
		{"0", 0},
		{"false", 0},
		{"", 0},
		{"garbage", 0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, safeBool(tc.in), "safeBool(%q)", tc.in)
	}
}

func TestMapIntDefToleratesBoolLiterals(t *testing.T) {
	m := map[string]string{"a": "true", "b": "junk", "c": "7"}
	assert.Equal(t, 1, mapIntDef(m, "a", 0))
	assert.Equal(t, 0, mapIntDef(m, "b", 9))
	assert.Equal(t, 7, mapIntDef(m, "c", 0))
	assert.Equal(t, 4, mapIntDef(m, "missing", 4))
}
