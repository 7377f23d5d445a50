package handlers

import (
	"context"
	"log"
	"net/http"
	"strconv"

	"arcadesync/internal/domain"
	"arcadesync/internal/infrastructure/cache"
	"arcadesync/internal/protocol"

	"github.com/gin-gonic/gin"
)

// EacoinHandler — электронная валюта: чекин сессии, списание, баланс.
type EacoinHandler struct {
	sessions *cache.SessionStore
	shops    ShopStore
	paseli   PaseliStore

	arcadeName     string
	defaultBalance int
}

func NewEacoinHandler(
	sessions *cache.SessionStore,
	shops ShopStore,
	paseli PaseliStore,
	arcadeName string,
	defaultBalance int,
) *EacoinHandler {
	return &EacoinHandler{
		sessions:       sessions,
		shops:          shops,
		paseli:         paseli,
		arcadeName:     arcadeName,
		defaultBalance: defaultBalance,
	}
}

func (h *EacoinHandler) Checkin(c *gin.Context) {
	call, err := parseCall(c)
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	pcbid := call.AttrOr("srcid", "")
	cardID := call.First().Text("cardid", "")
	if cardID == "" {
		c.Status(http.StatusBadRequest)
		return
	}

	opName := h.opName(c.Request.Context(), pcbid)
	balance := h.balance(c.Request.Context(), cardID)

	sessID, err := h.sessions.Begin(c.Request.Context(), cardID)
	if err != nil {
		log.Printf("eacoin checkin: session begin failed: %v", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	respond(c, protocol.NewNode("eacoin",
		protocol.S16("sequence", 1),
		protocol.U8("acstatus", 1),
		protocol.Str("acid", "1"),
		protocol.Str("acname", opName),
		protocol.S32("balance", balance),
		protocol.Str("sessid", strconv.FormatInt(sessID, 10)),
		protocol.U8("inshopcharge", 1),
	))
}

func (h *EacoinHandler) Consume(c *gin.Context) {
	call, err := parseCall(c)
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	mod := call.First()
	sessID, _ := strconv.ParseInt(mod.Text("sessid", ""), 10, 64)
	payment := mod.Int("payment", 0)

	cardID, err := h.sessions.Lookup(c.Request.Context(), sessID)
	if err != nil {
		log.Printf("eacoin consume: session lookup failed: %v", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	// Сессия неизвестна (истекла или сервер перезапущен посреди захода):
	// отвечаем дефолтным балансом, не трогая счета.
	if cardID == "" {
		respond(c, protocol.NewNode("eacoin",
			protocol.U8("acstatus", 0),
			protocol.U8("autocharge", 0),
			protocol.S32("balance", h.defaultBalance),
		))
		return
	}

	acc, err := h.paseli.GetByCardID(c.Request.Context(), cardID)
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	if acc == nil {
		acc = &domain.PaseliAccount{CardID: cardID, Balance: h.defaultBalance}
	}

	newBalance := acc.Balance - payment
	acc.TotalSpent += payment
	acc.Balance = newBalance
	// Баланс, ушедший ниже порога или выше дефолта, сбрасывается на дефолт.
	if newBalance < 1000 || newBalance > h.defaultBalance {
		acc.Balance = h.defaultBalance
	}
	if err := h.paseli.Upsert(c.Request.Context(), acc); err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}

	respond(c, protocol.NewNode("eacoin",
		protocol.U8("acstatus", 0),
		protocol.U8("autocharge", 0),
		protocol.S32("balance", newBalance),
	))
}

func (h *EacoinHandler) GetBalance(c *gin.Context) {
	if _, err := parseCall(c); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	respond(c, protocol.NewNode("eacoin",
		protocol.U8("acstatus", 0),
		protocol.S32("balance", h.defaultBalance),
	))
}

func (h *EacoinHandler) Checkout(c *gin.Context) {
	if _, err := parseCall(c); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	respond(c, protocol.NewNode("eacoin"))
}

func (h *EacoinHandler) opName(ctx context.Context, pcbid string) string {
	shop, err := h.shops.GetByPCBID(ctx, pcbid)
	if err != nil || shop == nil {
		return h.arcadeName
	}
	return shop.OpName
}

func (h *EacoinHandler) balance(ctx context.Context, cardID string) int {
	acc, err := h.paseli.GetByCardID(ctx, cardID)
	if err != nil || acc == nil {
		return h.defaultBalance
	}
	return acc.Balance
}
