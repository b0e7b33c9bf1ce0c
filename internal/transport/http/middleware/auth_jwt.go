package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"resident-portal/internal/core/apperr"
	"resident-portal/internal/domain"
	resp "resident-portal/internal/transport/http/response"
)

// Context keys set by the auth gate.
const (
	KeyUserID  = "userId"
	KeyEmail   = "email"
	KeyRole    = "role"
	KeyProfile = "profile"
)

// TokenResolver verifies a bearer token and loads the caller's profile.
type TokenResolver interface {
	Resolve(ctx context.Context, token string) (*domain.Profile, error)
}

func bearer(c *gin.Context) string {
	ah := strings.TrimSpace(c.GetHeader("Authorization"))
	if len(ah) > 7 && strings.EqualFold(ah[:7], "Bearer ") {
		return strings.TrimSpace(ah[7:])
	}
	return ""
}

// RequireAuth rejects requests without a valid token for an existing profile.
func RequireAuth(r TokenResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok := bearer(c)
		if tok == "" {
			reject(c, apperr.Unauthorized(apperr.CodeNoToken, "Authentication required"))
			return
		}
		p, err := r.Resolve(c.Request.Context(), tok)
		if err != nil {
			reject(c, err)
			return
		}
		setIdentity(c, p)
		c.Next()
	}
}

// OptionalAuth annotates the request when a valid token is present and lets it
// through anonymously otherwise.
func OptionalAuth(r TokenResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tok := bearer(c); tok != "" {
			if p, err := r.Resolve(c.Request.Context(), tok); err == nil {
				setIdentity(c, p)
			}
		}
		c.Next()
	}
}

// RequireAdmin must run after RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(KeyRole) != string(domain.RoleAdmin) {
			reject(c, apperr.Forbidden(""))
			return
		}
		c.Next()
	}
}

func reject(c *gin.Context, err error) {
	authRejected.WithLabelValues(apperr.From(err).Code).Inc()
	resp.Fail(c, err)
}

func setIdentity(c *gin.Context, p *domain.Profile) {
	c.Set(KeyUserID, p.ID)
	c.Set(KeyEmail, p.Email)
	c.Set(KeyRole, string(p.Role))
	c.Set(KeyProfile, p)
}

// CurrentProfile returns the profile the auth gate resolved, if any.
func CurrentProfile(c *gin.Context) (*domain.Profile, bool) {
	v, ok := c.Get(KeyProfile)
	if !ok {
		return nil, false
	}
	p, ok := v.(*domain.Profile)
	return p, ok
}
