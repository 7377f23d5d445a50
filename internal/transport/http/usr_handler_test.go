package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"arcadesync/internal/application/usecase"
	"arcadesync/internal/domain"
	"arcadesync/internal/protocol"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProfileStore struct {
	mu       sync.Mutex
	nextPK   uint
	profiles []*domain.Profile
}

func (s *stubProfileStore) clone(p *domain.Profile) *domain.Profile {
	raw, _ := json.Marshal(p)
	var out domain.Profile
	_ = json.Unmarshal(raw, &out)
	return &out
}

func (s *stubProfileStore) GetByCard(_ context.Context, card string) (*domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.profiles {
		if p.Card == card {
			return s.clone(p), nil
		}
	}
	return nil, domain.ErrProfileNotFound
}

func (s *stubProfileStore) GetByRefID(_ context.Context, refid string) (*domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.profiles {
		if p.RefID == refid {
			return s.clone(p), nil
		}
	}
	return nil, domain.ErrProfileNotFound
}

func (s *stubProfileStore) GetByUsrID(_ context.Context, usrID int) (*domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.profiles {
		if p.UsrID == usrID {
			return s.clone(p), nil
		}
	}
	return nil, domain.ErrProfileNotFound
}

func (s *stubProfileStore) All(_ context.Context) ([]domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Profile, 0, len(s.profiles))
	for _, p := range s.profiles {
		out = append(out, *s.clone(p))
	}
	return out, nil
}

func (s *stubProfileStore) Create(_ context.Context, p *domain.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextPK++
	p.ID = s.nextPK
	s.profiles = append(s.profiles, s.clone(p))
	return nil
}

func (s *stubProfileStore) Save(_ context.Context, p *domain.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.profiles {
		if existing.ID == p.ID {
			s.profiles[i] = s.clone(p)
			return nil
		}
	}
	s.nextPK++
	p.ID = s.nextPK
	s.profiles = append(s.profiles, s.clone(p))
	return nil
}

func (s *stubProfileStore) UsrIDExists(_ context.Context, usrID int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.profiles {
		if p.UsrID == usrID {
			return true, nil
		}
	}
	return false, nil
}

type stubScoreStore struct {
	mu   sync.Mutex
	rows []domain.ScoreEntry
}

func (s *stubScoreStore) Insert(_ context.Context, e *domain.ScoreEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, *e)
	return nil
}

func (s *stubScoreStore) SearchByUsrID(_ context.Context, usrID int) ([]domain.ScoreEntry, error) {
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

func newTestRouter(store *stubProfileStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	scores := &stubScoreStore{}
	h := NewUsrHandler(
		usecase.NewResolver(store),
		usecase.NewSignUp(store),
		usecase.NewMerger(store),
		usecase.NewComposer(),
		usecase.NewScores(scores),
	)
	r := gin.New()
	r.POST("/polaris/usr", h.Dispatch)
	return r
}

func callBody(t *testing.T, method string, children ...*protocol.Node) []byte {
	t.Helper()
	mod := protocol.NewNode("usr", children...).SetAttr("method", method)
	call := protocol.NewNode("call", mod).SetAttr("srcid", "PCB001")
	raw, err := protocol.Marshal(call)
	require.NoError(t, err)
	return raw
}

func post(r *gin.Engine, body []byte) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/polaris/usr", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/xml")
	r.ServeHTTP(w, req)
	return w
}

func TestDispatchUnknownMethod(t *testing.T) {
	r := newTestRouter(&stubProfileStore{})

	w := post(r, callBody(t, "no_such_method"))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDispatchMalformedBody(t *testing.T) {
	r := newTestRouter(&stubProfileStore{})

	w := post(r, []byte("not xml at all <"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDispatchSignUpThenGet(t *testing.T) {
	r := newTestRouter(&stubProfileStore{})

	w := post(r, callBody(t, "sign_up",
		protocol.Str("data_id", "E004000012345678"),
		protocol.Str("usr_name", "ACE"),
	))
	require.Equal(t, http.StatusOK, w.Code)

	resp, err := protocol.Unmarshal(w.Body.Bytes())
	require.NoError(t, err)
	usr := resp.Find("usr")
	require.NotNil(t, usr)
	usrID, err := strconv.Atoi(usr.Find("usr_id").Value)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, usrID, 100000)
	assert.LessOrEqual(t, usrID, 999999)

	w = post(r, callBody(t, "get",
		protocol.Str("data_id", "E004000012345678"),
	))
	require.Equal(t, http.StatusOK, w.Code)

	resp, err = protocol.Unmarshal(w.Body.Bytes())
	require.NoError(t, err)
	usr = resp.Find("usr")
	require.NotNil(t, usr)
	assert.Equal(t, "0", usr.Find("result").Value)
	assert.Equal(t, "ACE", usr.Find("usr_profile").Find("usr_name").Value)
}

func TestDispatchGetUnknownCard(t *testing.T) {
	r := newTestRouter(&stubProfileStore{})

	w := post(r, callBody(t, "get",
		protocol.Str("data_id", "E004999999999999"),
	))
	require.Equal(t, http.StatusOK, w.Code)

	resp, err := protocol.Unmarshal(w.Body.Bytes())
	require.NoError(t, err)
	usr := resp.Find("usr")
	require.NotNil(t, usr)
	assert.Equal(t, "1", usr.Find("result").Value)
	assert.Nil(t, usr.Find("usr_profile"))
}

func TestDispatchSaveUnknownUsrAcked(t *testing.T) {
	r := newTestRouter(&stubProfileStore{})

	w := post(r, callBody(t, "save",
		protocol.S32("usr_id", 123456),
	))
	// Сохранение без профиля молча подтверждается, клиент не должен падать.
	require.Equal(t, http.StatusOK, w.Code)

	resp, err := protocol.Unmarshal(w.Body.Bytes())
	require.NoError(t, err)
	usr := resp.Find("usr")
	require.NotNil(t, usr)
	assert.NotEmpty(t, usr.Find("now_date").Value)
}

func TestDispatchStubMethodsRespondEmpty(t *testing.T) {
	r := newTestRouter(&stubProfileStore{})

	for _, method := range []string{"checkin", "checkout", "get_temp", "save_temp"} {
		w := post(r, callBody(t, method))
		require.Equal(t, http.StatusOK, w.Code, method)
		resp, err := protocol.Unmarshal(w.Body.Bytes())
		require.NoError(t, err)
		assert.NotNil(t, resp.Find("usr"), method)
	}
}
