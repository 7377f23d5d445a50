package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"arcadesync/internal/application/usecase"
	"arcadesync/internal/domain"
	"arcadesync/internal/infrastructure/security"
	"arcadesync/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type stubPaseliStore struct {
	mu   sync.Mutex
	accs map[string]*domain.PaseliAccount
}

func newStubPaseliStore() *stubPaseliStore {
	return &stubPaseliStore{accs: make(map[string]*domain.PaseliAccount)}
}

func (s *stubPaseliStore) GetByCardID(_ context.Context, cardID string) (*domain.PaseliAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accs[cardID]
	if !ok {
		return nil, nil
	}
	cp := *acc
	return &cp, nil
}

func (s *stubPaseliStore) Upsert(_ context.Context, acc *domain.PaseliAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *acc
	s.accs[acc.CardID] = &cp
	return nil
}

func newAdminTestRouter(t *testing.T, paseli *stubPaseliStore) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hasher := security.NewPasswordHasherWithCost(bcrypt.MinCost)
	hash, err := hasher.Hash("op-secret")
	require.NoError(t, err)
	tokens := security.NewTokenManager("test-secret")

	h := NewAdminHandler(
		usecase.NewResolver(&stubProfileStore{}),
		paseli,
		hasher,
		tokens,
		hash,
	)

	r := gin.New()
	r.POST("/api/v1/admin/login", h.Login)
	protected := r.Group("/api/v1/admin")
	protected.Use(middleware.AuthMiddleware(tokens))
	protected.PUT("/paseli/:cardid", h.SetBalance)
	return r
}

func adminToken(t *testing.T, r *gin.Engine, password string) (int, string) {
	t.Helper()
	body, _ := json.Marshal(gin.H{"password": password})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		return w.Code, ""
	}
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w.Code, resp["access_token"]
}

func TestAdminLogin(t *testing.T) {
	r := newAdminTestRouter(t, newStubPaseliStore())

	code, token := adminToken(t, r, "op-secret")
	require.Equal(t, http.StatusOK, code)
	assert.NotEmpty(t, token)

	code, _ = adminToken(t, r, "wrong")
	assert.Equal(t, http.StatusUnauthorized, code)
}

func putBalance(r *gin.Engine, token string, body []byte) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/v1/admin/paseli/CARD001", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestAdminSetBalanceRequiresToken(t *testing.T) {
	r := newAdminTestRouter(t, newStubPaseliStore())

	w := putBalance(r, "", []byte(`{"balance": 100}`))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminSetBalance(t *testing.T) {
	paseli := newStubPaseliStore()
	r := newAdminTestRouter(t, paseli)

	_, token := adminToken(t, r, "op-secret")
	require.NotEmpty(t, token)

	w := putBalance(r, token, []byte(`{"balance": 2500}`))
	require.Equal(t, http.StatusOK, w.Code)
	acc, _ := paseli.GetByCardID(context.Background(), "CARD001")
	require.NotNil(t, acc)
	assert.Equal(t, 2500, acc.Balance)

	// Обнуление баланса — валидный запрос.
	w = putBalance(r, token, []byte(`{"balance": 0}`))
	require.Equal(t, http.StatusOK, w.Code)
	acc, _ = paseli.GetByCardID(context.Background(), "CARD001")
	require.NotNil(t, acc)
	assert.Equal(t, 0, acc.Balance)

	// Отсутствие поля — все еще 400.
	w = putBalance(r, token, []byte(`{}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
