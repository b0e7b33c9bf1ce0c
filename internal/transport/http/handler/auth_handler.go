package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resident-portal/internal/core/apperr"
	"resident-portal/internal/domain"
	"resident-portal/internal/service"
	"resident-portal/internal/transport/http/ez"
	mdw "resident-portal/internal/transport/http/middleware"
)

type AuthHandler struct {
	svc *service.AuthService
	// limit guards the credential endpoints; nil disables it.
	limit gin.HandlerFunc
}

func NewAuthHandler(svc *service.AuthService, limit gin.HandlerFunc) *AuthHandler {
	return &AuthHandler{svc: svc, limit: limit}
}

func (h *AuthHandler) Priority() int { return 10 }

func (h *AuthHandler) MountAPI(g ez.Groups) {
	a := g.Public.Group("/auth")

	ez.Register(a, ez.Action[service.LoginInput, *service.Session]{
		Method: http.MethodPost,
		Path:   "/login",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *service.LoginInput) (*service.Session, error) {
			return h.svc.Login(c.Request.Context(), *in)
		},
	}, h.limit)

	ez.Register(a, ez.Action[service.SignupInput, *service.Session]{
		Method: http.MethodPost,
		Path:   "/signup",
		Binder: ez.BindJSON,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, in *service.SignupInput) (*service.Session, error) {
			return h.svc.Signup(c.Request.Context(), *in)
		},
	}, h.limit)

	ez.Register(a, ez.Action[service.RefreshInput, *service.Session]{
		Method: http.MethodPost,
		Path:   "/refresh",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *service.RefreshInput) (*service.Session, error) {
			return h.svc.Refresh(c.Request.Context(), *in)
		},
	}, h.limit)

	ez.Register(g.Authed, ez.Action[struct{}, *domain.Profile]{
		Method:  http.MethodGet,
		Path:    "/auth/me",
		Binder:  ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.Profile, error) { return caller(c) },
	})
}

// caller is the profile resolved by the auth gate.
func caller(c *gin.Context) (*domain.Profile, error) {
	p, ok := mdw.CurrentProfile(c)
	if !ok {
		return nil, apperr.Unauthorized(apperr.CodeNoToken, "Authentication required")
	}
	return p, nil
}
