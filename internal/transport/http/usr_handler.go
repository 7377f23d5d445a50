package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"arcadesync/internal/application/usecase"
	"arcadesync/internal/domain"
	"arcadesync/internal/protocol"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// UsrHandler обслуживает модуль usr. Операция выбирается по атрибуту
// method: реестр заполняется при старте, неизвестный метод — 404,
// а не падение в рантайме.
type UsrHandler struct {
	registry map[string]handlerFunc

	resolver *usecase.Resolver
	signUp   *usecase.SignUp
	merger   *usecase.Merger
	composer *usecase.Composer
	scores   *usecase.Scores
}

func NewUsrHandler(
	resolver *usecase.Resolver,
	signUp *usecase.SignUp,
	merger *usecase.Merger,
	composer *usecase.Composer,
	scores *usecase.Scores,
) *UsrHandler {
	h := &UsrHandler{
		resolver: resolver,
		signUp:   signUp,
		merger:   merger,
		composer: composer,
		scores:   scores,
	}
	h.registry = map[string]handlerFunc{
		"sign_up":         h.handleSignUp,
		"get":             h.handleGet,
		"save":            h.handleSave,
		"get_usr_music":   h.handleGetUsrMusic,
		"save_musicscore": h.handleSaveMusicScore,
		"checkin":         h.handleEmpty,
		"checkout":        h.handleEmpty,
		"get_temp":        h.handleEmpty,
		"save_temp":       h.handleEmpty,
	}
	return h
}

func (h *UsrHandler) Dispatch(c *gin.Context) {
	reqID := uuid.NewString()[:8]

	call, err := parseCall(c)
	if err != nil {
		log.Printf("[%s] usr: bad request body: %v", reqID, err)
		c.Status(http.StatusBadRequest)
		return
	}
	mod := call.First()
	if mod == nil {
		c.Status(http.StatusBadRequest)
		return
	}
	method := mod.AttrOr("method", "")
	fn, ok := h.registry[method]
	if !ok {
		log.Printf("[%s] usr: unknown method %q", reqID, method)
		c.Status(http.StatusNotFound)
		return
	}

	node, err := fn(c, call)
	if err != nil {
		if errors.Is(err, domain.ErrMissingDataID) || errors.Is(err, domain.ErrMissingUsrID) {
			log.Printf("[%s] usr %s: %v", reqID, method, err)
			c.Status(http.StatusBadRequest)
			return
		}
		// Ошибка изолирована в рамках запроса, процесс живет дальше.
		log.Printf("[%s] usr %s failed: %v", reqID, method, err)
		c.Status(http.StatusInternalServerError)
		return
	}
	respond(c, node)
}

// extractDataID повторяет клиентскую логику: data_id приоритетен,
// ref_id — запасной, srcid корня — последний шанс.
func extractDataID(call, mod *protocol.Node) string {
	var dataID string
	for _, child := range mod.Children {
		if child.Name == "data_id" {
			dataID = child.Value
			break
		}
		if child.Name == "ref_id" && dataID == "" {
			dataID = child.Value
		}
	}
	if dataID == "" {
		dataID = call.AttrOr("srcid", "")
	}
	return dataID
}

func (h *UsrHandler) handleSignUp(c *gin.Context, call *protocol.Node) (*protocol.Node, error) {
	mod := call.First()
	dataID := mod.Text("data_id", "")
	refID := mod.Text("ref_id", "")
	name := mod.Text("usr_name", "")
	if dataID == "" {
		dataID = call.AttrOr("srcid", "")
	}
	if dataID == "" {
		return nil, domain.ErrMissingDataID
	}

	p, err := h.signUp.CreateOrFetch(c.Request.Context(), dataID, refID, name)
	if err != nil {
		return nil, err
	}

	return protocol.NewNode("usr",
		protocol.S32("usr_id", p.UsrID),
		protocol.Str("crew_id", p.CrewID),
	), nil
}

func (h *UsrHandler) handleGet(c *gin.Context, call *protocol.Node) (*protocol.Node, error) {
	dataID := extractDataID(call, call.First())
	if dataID == "" {
		return nil, domain.ErrMissingDataID
	}

	p, err := h.resolver.Resolve(c.Request.Context(), dataID, dataID)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			log.Printf("usr get: profile not found for card=%q", dataID)
			return h.composer.ComposeNotFound(), nil
		}
		return nil, err
	}
	if p.Name == "" {
		return h.composer.ComposeNotFound(), nil
	}
	return h.composer.Compose(p), nil
}

func (h *UsrHandler) handleSave(c *gin.Context, call *protocol.Node) (*protocol.Node, error) {
	if err := h.merger.Save(c.Request.Context(), call.First()); err != nil {
		return nil, err
	}
	return protocol.NewNode("usr",
		protocol.Str("now_date", time.Now().Format("2006-01-02 15:04:05")),
	), nil
}

func (h *UsrHandler) handleGetUsrMusic(c *gin.Context, call *protocol.Node) (*protocol.Node, error) {
	mod := call.First()
	usrID := mod.Int("usr_id", -1)
	if usrID < 0 {
		return nil, domain.ErrMissingUsrID
	}

	best, err := h.scores.Aggregate(c.Request.Context(), usrID)
	if err != nil {
		return nil, err
	}

	highscore := protocol.NewNode("usr_music_highscore")
	for _, b := range best {
		highscore.Add(protocol.NewNode("music",
			protocol.S32("music_id", b.MusicID),
			protocol.S32("chart_difficulty_type", b.Difficulty),
			protocol.S32("achievement_rate", b.AchievementRate),
			protocol.S32("highscore", b.Score),
			protocol.S32("score_rank", b.ScoreRank),
			protocol.S32("maxcombo", b.Combo),
			protocol.S32("combo_rank", b.ComboRank),
			protocol.S32("clear_status", b.ClearStatus),
			protocol.S32("play_count", b.PlayCount),
			protocol.S32("clear_count", b.ClearCount),
			protocol.S32("perfect_clear_count", 0),
			protocol.S32("full_combo_count", 0),
		))
	}
	return protocol.NewNode("usr", highscore), nil
}

func (h *UsrHandler) handleSaveMusicScore(c *gin.Context, call *protocol.Node) (*protocol.Node, error) {
	mod := call.First()
	usrID := mod.Int("usr_id", -1)
	if usrID < 0 {
		return nil, domain.ErrMissingUsrID
	}

	if _, err := h.scores.SaveMusicScores(c.Request.Context(), usrID, mod.Find("usr_music_play_log")); err != nil {
		return nil, err
	}
	return protocol.NewNode("usr",
		protocol.Str("now_date", time.Now().Format("2006-01-02 15:04:05")),
	), nil
}

func (h *UsrHandler) handleEmpty(c *gin.Context, call *protocol.Node) (*protocol.Node, error) {
	return protocol.NewNode("usr"), nil
}
