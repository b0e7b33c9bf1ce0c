package ez

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"resident-portal/internal/core/apperr"
	resp "resident-portal/internal/transport/http/response"
)

// Groups are the route groups a module mounts on.
type Groups struct {
	Public *gin.RouterGroup // no token needed
	Authed *gin.RouterGroup // valid token for an existing profile
	Admin  gin.HandlerFunc  // add per route on Authed for admin-only mutations
}

type Binder string

const (
	BindJSON  Binder = "json"
	BindQuery Binder = "query"
	BindNone  Binder = "none"
)

// Action is a single endpoint: bind I, run Handler, write O. Handlers hand
// the input to a service, which validates it.
type Action[I any, O any] struct {
	Method string
	Path   string
	Binder Binder
	// Status defaults to 200.
	Status  int
	Handler func(c *gin.Context, in *I) (O, error)
}

// Page makes an action answer with a bare JSON array plus X-Total-Count.
type Page[T any] struct {
	Items []T
	Total int64
}

func (p Page[T]) write(c *gin.Context) { resp.List(c, p.Items, p.Total) }

type pageWriter interface{ write(*gin.Context) }

// Ack is the body of a successful delete.
type Ack struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

// Register mounts a on g; mw run before the action.
func Register[I any, O any](g gin.IRoutes, a Action[I, O], mw ...gin.HandlerFunc) {
	h := func(c *gin.Context) {
		var in I
		var err error
		switch a.Binder {
		case BindJSON:
			if err = c.ShouldBindJSON(&in); errors.Is(err, io.EOF) {
				err = nil // empty body binds the zero value
			}
		case BindQuery:
			err = c.ShouldBindQuery(&in)
		}
		if err != nil {
			resp.Fail(c, BindError(err))
			return
		}
		out, err := a.Handler(c, &in)
		if err != nil {
			resp.Fail(c, err)
			return
		}
		if pw, ok := any(out).(pageWriter); ok {
			pw.write(c)
			return
		}
		status := a.Status
		if status == 0 {
			status = http.StatusOK
		}
		c.JSON(status, out)
	}

	g.Handle(strings.ToUpper(a.Method), a.Path, with(mw, h)...)
}

// BindError turns a decoding failure into a client error, naming the field
// when the decoder knows it.
func BindError(err error) error {
	var te *json.UnmarshalTypeError
	if errors.As(err, &te) && te.Field != "" {
		return apperr.Validation([]apperr.FieldError{{Path: te.Field, Message: te.Field + " must be " + jsonKind(te.Type.Kind().String())}})
	}
	var se *json.SyntaxError
	if errors.As(err, &se) || errors.Is(err, io.ErrUnexpectedEOF) {
		return apperr.BadRequest("Invalid JSON body")
	}
	return apperr.BadRequest(err.Error())
}

func jsonKind(k string) string {
	switch {
	case strings.HasPrefix(k, "int"), strings.HasPrefix(k, "uint"), strings.HasPrefix(k, "float"):
		return "a number"
	case k == "slice", k == "array":
		return "an array"
	case k == "struct", k == "map":
		return "an object"
	case k == "bool":
		return "a boolean"
	}
	return "a " + k
}

// Param reads a path parameter.
func Param(c *gin.Context, name string) string { return strings.TrimSpace(c.Param(name)) }
