package handlers

import (
	"net/http"
	"strconv"

	"arcadesync/internal/domain"
	"arcadesync/internal/protocol"

	"github.com/gin-gonic/gin"
)

// ShopHandler — имя оператора по pcbid кабинета.
type ShopHandler struct {
	shops      ShopStore
	arcadeName string
}

func NewShopHandler(shops ShopStore, arcadeName string) *ShopHandler {
	return &ShopHandler{shops: shops, arcadeName: arcadeName}
}

func (h *ShopHandler) GetName(c *gin.Context) {
	call, err := parseCall(c)
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	pcbid := call.AttrOr("srcid", "")

	opName := h.arcadeName
	if shop, err := h.shops.GetByPCBID(c.Request.Context(), pcbid); err == nil && shop != nil {
		opName = shop.OpName
	}

	node := protocol.NewNode("shop").
		SetAttr("cls_opt", "0").
		SetAttr("opname", opName).
		SetAttr("pid", "13")
	respond(c, node)
}

func (h *ShopHandler) SaveName(c *gin.Context) {
	call, err := parseCall(c)
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	pcbid := call.AttrOr("srcid", "")
	opName := ""
	if mod := call.First(); mod != nil {
		opName = mod.AttrOr("opname", "")
	}

	if err := h.shops.Upsert(c.Request.Context(), &domain.Shop{PCBID: pcbid, OpName: opName}); err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	respond(c, protocol.NewNode("shop"))
}

// Дальше — операции с фиксированным ответом: клиент требует формы,
// состояния за ними нет.

func (h *ShopHandler) GetConvention(c *gin.Context) {
	if _, err := parseCall(c); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	node := protocol.NewNode("shop", protocol.Bool("valid", true)).
		SetAttr("music_0", "-1").
		SetAttr("music_1", "-1").
		SetAttr("music_2", "-1").
		SetAttr("music_3", "-1").
		SetAttr("start_time", "0").
		SetAttr("end_time", "0")
	respond(c, node)
}

func (h *ShopHandler) SentInfo(c *gin.Context) {
	if _, err := parseCall(c); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	respond(c, protocol.NewNode("shop"))
}

func (h *ShopHandler) SendEscapePackageInfo(c *gin.Context) {
	if _, err := parseCall(c); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	respond(c, protocol.NewNode("shop").SetAttr("expire", "1200"))
}

func (h *ShopHandler) GetClosingTime(c *gin.Context) {
	if _, err := parseCall(c); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	node := protocol.NewNode("shop", protocol.Bool("exist", true))
	for i := 0; i < 7; i++ {
		node.Add(protocol.NewNode("week").
			SetAttr("cls_opt", "0").
			SetAttr("week", strconv.Itoa(i)))
	}
	respond(c, node)
}

func (h *ShopHandler) SaveClosingTime(c *gin.Context) {
	if _, err := parseCall(c); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	respond(c, protocol.NewNode("shop"))
}
