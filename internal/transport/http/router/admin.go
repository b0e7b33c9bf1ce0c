package router

import (
	"github.com/gin-gonic/gin"

	mdw "resident-portal/internal/transport/http/middleware"
)

// mountAdmin builds /api/admin on top of the authenticated group; every
// route below it requires role=admin.
func mountAdmin(authed *gin.RouterGroup, reg *Registry) {
	admin := authed.Group("/admin")
	admin.Use(mdw.RequireAdmin())
	reg.MountAdmin(admin)
}
