package handlers

import (
	"errors"
	"net/http"

	"arcadesync/internal/application/usecase"
	"arcadesync/internal/domain"
	"arcadesync/internal/infrastructure/security"

	"github.com/gin-gonic/gin"
)

// AdminHandler — операторский JSON API: просмотр профиля, правка
// баланса paseli. Не является частью протокола автоматов.
type AdminHandler struct {
	resolver *usecase.Resolver
	paseli   PaseliStore
	hasher   *security.PasswordHasher
	tokens   *security.TokenManager

	passwordHash string
}

func NewAdminHandler(
	resolver *usecase.Resolver,
	paseli PaseliStore,
	hasher *security.PasswordHasher,
	tokens *security.TokenManager,
	passwordHash string,
) *AdminHandler {
	return &AdminHandler{
		resolver:     resolver,
		paseli:       paseli,
		hasher:       hasher,
		tokens:       tokens,
		passwordHash: passwordHash,
	}
}

type adminLoginReq struct {
	Password string `json:"password" binding:"required"`
}

func (h *AdminHandler) Login(c *gin.Context) {
	var req adminLoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.hasher.Compare(h.passwordHash, req.Password); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	token, err := h.tokens.Generate("admin")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": token})
}

func (h *AdminHandler) GetProfile(c *gin.Context) {
	card := c.Param("card")
	p, err := h.resolver.Resolve(c.Request.Context(), card, card)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"usr_id":  p.UsrID,
		"crew_id": p.CrewID,
		"name":    p.Name,
		"rank":    p.Rank,
		"exp":     p.Exp,
	})
}

// Balance — указатель: binding:"required" на int отвергал бы
// легитимный ноль.
type setBalanceReq struct {
	Balance *int `json:"balance" binding:"required"`
}

func (h *AdminHandler) SetBalance(c *gin.Context) {
	var req setBalanceReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cardID := c.Param("cardid")

	acc, err := h.paseli.GetByCardID(c.Request.Context(), cardID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if acc == nil {
		acc = &domain.PaseliAccount{CardID: cardID}
	}
	acc.Balance = *req.Balance
	if err := h.paseli.Upsert(c.Request.Context(), acc); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"card_id": cardID, "balance": acc.Balance})
}
