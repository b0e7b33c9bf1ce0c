package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resident-portal/internal/service"
	"resident-portal/internal/transport/http/ez"
)

type SearchHandler struct {
	svc *service.SearchService
}

func NewSearchHandler(svc *service.SearchService) *SearchHandler {
	return &SearchHandler{svc: svc}
}

type searchQuery struct {
	Q string `form:"q"`
}

func (h *SearchHandler) MountAPI(g ez.Groups) {
	ez.Register(g.Authed, ez.Action[searchQuery, []service.SearchHit]{
		Method: http.MethodGet,
		Path:   "/search",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, in *searchQuery) ([]service.SearchHit, error) {
			return h.svc.Search(c.Request.Context(), in.Q)
		},
	})
}
