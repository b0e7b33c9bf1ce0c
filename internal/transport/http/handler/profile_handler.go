package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resident-portal/internal/domain"
	"resident-portal/internal/service"
	"resident-portal/internal/transport/http/ez"
)

type ProfileHandler struct {
	svc *service.ProfileService
}

func NewProfileHandler(svc *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{svc: svc}
}

func (h *ProfileHandler) MountAPI(g ez.Groups) {
	ez.Register(g.Authed, ez.Action[service.ProfileFilter, ez.Page[domain.Profile]]{
		Method: http.MethodGet,
		Path:   "/profiles",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, in *service.ProfileFilter) (ez.Page[domain.Profile], error) {
			items, total, err := h.svc.List(c.Request.Context(), *in)
			return ez.Page[domain.Profile]{Items: items, Total: total}, err
		},
	})

	ez.Register(g.Authed, ez.Action[service.SelfUpdate, *domain.Profile]{
		Method: http.MethodPut,
		Path:   "/profiles/me",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *service.SelfUpdate) (*domain.Profile, error) {
			me, err := caller(c)
			if err != nil {
				return nil, err
			}
			return h.svc.UpdateSelf(c.Request.Context(), me.ID, *in)
		},
	})

	ez.Register(g.Authed, ez.Action[struct{}, *domain.Profile]{
		Method: http.MethodGet,
		Path:   "/profiles/:id",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.Profile, error) {
			return h.svc.Get(c.Request.Context(), ez.Param(c, "id"))
		},
	})

	ez.Register(g.Authed, ez.Action[service.AdminUpdate, *domain.Profile]{
		Method: http.MethodPut,
		Path:   "/profiles/:id",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *service.AdminUpdate) (*domain.Profile, error) {
			return h.svc.Update(c.Request.Context(), ez.Param(c, "id"), *in)
		},
	}, g.Admin)

	ez.Register(g.Authed, ez.Action[struct{}, ez.Ack]{
		Method: http.MethodDelete,
		Path:   "/profiles/:id",
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
