package ez

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"resident-portal/internal/core/apperr"
	"resident-portal/internal/service"
	resp "resident-portal/internal/transport/http/response"
)

type CrudHooks[T any] struct {
	// BeforeCreate runs after binding and before the service validates.
	BeforeCreate func(c *gin.Context, m *T) error
}

// CrudConfig mounts list/get for every caller and create/update/delete
// behind the Admin middleware unless OpenWrites is set.
type CrudConfig[T any] struct {
	Groups     Groups
	Path       string
	Service    *service.Resource[T]
	Hooks      CrudHooks[T]
	OpenWrites bool
}

func Crud[T any](cfg CrudConfig[T]) {
	g := cfg.Groups.Authed
	svc := cfg.Service
	var write []gin.HandlerFunc
	if !cfg.OpenWrites && cfg.Groups.Admin != nil {
		write = append(write, cfg.Groups.Admin)
	}

	Register(g, Action[struct{}, Page[T]]{
		Method: http.MethodGet,
		Path:   cfg.Path,
		Binder: BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (Page[T], error) {
			items, total, err := svc.List(c.Request.Context(), ListParams(c))
			return Page[T]{Items: items, Total: total}, err
		},
	})

	Register(g, Action[struct{}, *T]{
		Method: http.MethodGet,
		Path:   cfg.Path + "/:id",
		Binder: BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (*T, error) {
			return svc.Get(c.Request.Context(), Param(c, "id"))
		},
	})

	g.POST(cfg.Path, with(write, func(c *gin.Context) {
		m := new(T)
		if err := c.ShouldBindJSON(m); err != nil {
			resp.Fail(c, BindError(err))
			return
		}
		if cfg.Hooks.BeforeCreate != nil {
			if err := cfg.Hooks.BeforeCreate(c, m); err != nil {
				resp.Fail(c, err)
				return
			}
		}
		out, err := svc.Create(c.Request.Context(), m)
		if err != nil {
			resp.Fail(c, err)
			return
		}
		resp.Created(c, out)
	})...)

	g.PUT(cfg.Path+"/:id", with(write, func(c *gin.Context) {
		raw, err := c.GetRawData()
		if err != nil || !json.Valid(raw) || len(raw) == 0 || raw[0] != '{' {
			resp.Fail(c, apperr.BadRequest("Body must be a JSON object"))
			return
		}
		out, err := svc.Update(c.Request.Context(), Param(c, "id"), raw)
		if err != nil {
			resp.Fail(c, err)
			return
		}
		resp.OK(c, out)
	})...)

	Register(g, Action[struct{}, Ack]{
		Method: http.MethodDelete,
		Path:   cfg.Path + "/:id",
		Binder: BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (Ack, error) {
			id := Param(c, "id")
			if err := svc.Delete(c.Request.Context(), id); err != nil {
				return Ack{}, err
			}
			return Ack{ID: id, Deleted: true}, nil
		},
	}, write...)
}

// ListParams collects equality filters and paging from the query string.
// Unknown filter names are dropped by the service.
func ListParams(c *gin.Context) service.ListParams {
	p := service.ListParams{Filters: map[string]string{}}
	for k, v := range c.Request.URL.Query() {
		if len(v) == 0 {
			continue
		}
		switch k {
		case "page":
			p.Page, _ = strconv.Atoi(v[0])
		case "size", "limit":
			p.Size, _ = strconv.Atoi(v[0])
		default:
			p.Filters[k] = v[0]
		}
	}
	return p
}

func with(mw []gin.HandlerFunc, h gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(mw)+1)
	for _, m := range mw {
		if m != nil {
			out = append(out, m)
		}
	}
	return append(out, h)
}
