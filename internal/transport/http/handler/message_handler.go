package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resident-portal/internal/domain"
	"resident-portal/internal/service"
	"resident-portal/internal/transport/http/ez"
)

type MessageHandler struct {
	svc *service.MessageService
}

func NewMessageHandler(svc *service.MessageService) *MessageHandler {
	return &MessageHandler{svc: svc}
}

func (h *MessageHandler) MountAPI(g ez.Groups) {
	ez.Register(g.Authed, ez.Action[service.MessageFilter, ez.Page[domain.Message]]{
		Method: http.MethodGet,
		Path:   "/messages",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, in *service.MessageFilter) (ez.Page[domain.Message], error) {
			items, total, err := h.svc.List(c.Request.Context(), *in)
			return ez.Page[domain.Message]{Items: items, Total: total}, err
		},
	})

	ez.Register(g.Authed, ez.Action[struct{}, *domain.Message]{
		Method: http.MethodGet,
		Path:   "/messages/:id",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.Message, error) {
			return h.svc.Get(c.Request.Context(), ez.Param(c, "id"))
		},
	})

	ez.Register(g.Authed, ez.Action[service.MessageInput, *domain.Message]{
		Method: http.MethodPost,
		Path:   "/messages",
		Binder: ez.BindJSON,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, in *service.MessageInput) (*domain.Message, error) {
			me, err := caller(c)
			if err != nil {
				return nil, err
			}
			return h.svc.Create(c.Request.Context(), me, *in)
		},
	}, g.Admin)

	ez.Register(g.Authed, ez.Action[struct{}, ez.Ack]{
		Method: http.MethodDelete,
		Path:   "/messages/:id",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (ez.Ack, error) {
			id := ez.Param(c, "id")
			if err := h.svc.Delete(c.Request.Context(), id); err != nil {
				return ez.Ack{}, err
			}
			return ez.Ack{ID: id, Deleted: true}, nil
		},
	}, g.Admin)
}
