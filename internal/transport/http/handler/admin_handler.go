package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resident-portal/internal/domain"
	"resident-portal/internal/service"
	"resident-portal/internal/transport/http/ez"
)

// AdminHandler is the approval console and dashboard, mounted on /api/admin.
type AdminHandler struct {
	profiles *service.ProfileService
	stats    *service.StatsService
}

func NewAdminHandler(profiles *service.ProfileService, stats *service.StatsService) *AdminHandler {
	return &AdminHandler{profiles: profiles, stats: stats}
}

func (h *AdminHandler) MountAdmin(admin *gin.RouterGroup) {
	ez.Register(admin, ez.Action[struct{}, ez.Page[domain.Profile]]{
		Method: http.MethodGet,
		Path:   "/approvals/pending",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (ez.Page[domain.Profile], error) {
			items, err := h.profiles.ListPending(c.Request.Context())
			return ez.Page[domain.Profile]{Items: items, Total: int64(len(items))}, err
		},
	})

	ez.Register(admin, ez.Action[service.ApproveInput, *domain.Profile]{
		Method: http.MethodPost,
		Path:   "/approvals/:id/approve",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *service.ApproveInput) (*domain.Profile, error) {
			return h.profiles.Approve(c.Request.Context(), ez.Param(c, "id"), in.GrantAdmin)
		},
	})

	ez.Register(admin, ez.Action[struct{}, *domain.Profile]{
		Method: http.MethodPost,
		Path:   "/approvals/:id/reject",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.Profile, error) {
			return h.profiles.Reject(c.Request.Context(), ez.Param(c, "id"))
		},
	})

	ez.Register(admin, ez.Action[service.RoleInput, *domain.Profile]{
		Method: http.MethodPut,
		Path:   "/profiles/:id/role",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *service.RoleInput) (*domain.Profile, error) {
			return h.profiles.SetRole(c.Request.Context(), ez.Param(c, "id"), *in)
		},
	})

	ez.Register(admin, ez.Action[service.BulkInput, *service.BulkResult]{
		Method: http.MethodPost,
		Path:   "/approvals/bulk-approve",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *service.BulkInput) (*service.BulkResult, error) {
			return h.profiles.BulkApprove(c.Request.Context(), *in)
		},
	})

	ez.Register(admin, ez.Action[service.BulkInput, *service.BulkResult]{
		Method: http.MethodPost,
		Path:   "/approvals/bulk-delete",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *service.BulkInput) (*service.BulkResult, error) {
			return h.profiles.BulkDelete(c.Request.Context(), *in)
		},
	})

	ez.Register(admin, ez.Action[struct{}, *service.Stats]{
		Method: http.MethodGet,
		Path:   "/stats",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (*service.Stats, error) {
			return h.stats.Overview(c.Request.Context())
		},
	})
}
