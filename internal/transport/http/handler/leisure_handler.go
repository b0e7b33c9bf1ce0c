package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resident-portal/internal/domain"
	"resident-portal/internal/service"
	"resident-portal/internal/transport/http/ez"
)

type LeisureHandler struct {
	svc *service.LeisureService
}

func NewLeisureHandler(svc *service.LeisureService) *LeisureHandler {
	return &LeisureHandler{svc: svc}
}

func (h *LeisureHandler) MountAPI(g ez.Groups) {
	ez.Register(g.Authed, ez.Action[service.JoinInput, *domain.LeisureParticipant]{
		Method: http.MethodPost,
		Path:   "/leisure/events/:id/join",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *service.JoinInput) (*domain.LeisureParticipant, error) {
			me, err := caller(c)
			if err != nil {
				return nil, err
			}
			return h.svc.Join(c.Request.Context(), ez.Param(c, "id"), me.ID, *in)
		},
	})

	ez.Register(g.Authed, ez.Action[struct{}, ez.Ack]{
		Method: http.MethodDelete,
		Path:   "/leisure/events/:id/join",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (ez.Ack, error) {
			me, err := caller(c)
			if err != nil {
				return ez.Ack{}, err
			}
			id := ez.Param(c, "id")
			if err := h.svc.Leave(c.Request.Context(), id, me.ID); err != nil {
				return ez.Ack{}, err
			}
			return ez.Ack{ID: id, Deleted: true}, nil
		},
	})
}
