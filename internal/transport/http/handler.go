package handlers

import (
	"context"
	"io"
	"net/http"

	"arcadesync/internal/domain"
	"arcadesync/internal/protocol"

	"github.com/gin-gonic/gin"
)

// handlerFunc — обработчик одной операции протокола: получает дерево
// запроса, возвращает внутренний узел ответа.
type handlerFunc func(c *gin.Context, call *protocol.Node) (*protocol.Node, error)

// ShopStore и PaseliStore — части репозиториев, нужные обработчикам.
// Реализация — postgres-репозитории; тесты подставляют память.
type ShopStore interface {
	GetByPCBID(ctx context.Context, pcbid string) (*domain.Shop, error)
	Upsert(ctx context.Context, s *domain.Shop) error
}

type PaseliStore interface {
	GetByCardID(ctx context.Context, cardID string) (*domain.PaseliAccount, error)
	Upsert(ctx context.Context, acc *domain.PaseliAccount) error
}

// parseCall читает тело запроса и разбирает его в дерево узлов.
func parseCall(c *gin.Context) (*protocol.Node, error) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, err
	}
	return protocol.Unmarshal(body)
}

// respond оборачивает узел модуля в response и отдает клиенту.
func respond(c *gin.Context, inner *protocol.Node) {
	body, err := protocol.Marshal(protocol.NewNode("response", inner))
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Data(http.StatusOK, "application/xml", body)
}
