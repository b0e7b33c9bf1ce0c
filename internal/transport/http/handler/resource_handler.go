package handler

import (
	"github.com/gin-gonic/gin"

	"resident-portal/internal/domain"
	"resident-portal/internal/service"
	"resident-portal/internal/transport/http/ez"
)

// Resources are the plain CRUD collections.
type Resources struct {
	Sites                *service.Resource[domain.Site]
	Modules              *service.Resource[domain.Module]
	Subjects             *service.Resource[domain.Subject]
	Files                *service.Resource[domain.File]
	Contributions        *service.Resource[domain.Contribution]
	LeisureEvents        *service.Resource[domain.LeisureEvent]
	LeisureParticipants  *service.Resource[domain.LeisureParticipant]
	LeisureContributions *service.Resource[domain.LeisureContribution]
	Attendance           *service.Resource[domain.Attendance]
	Settings             *service.Resource[domain.Setting]
}

type ResourceHandler struct {
	r Resources
}

func NewResourceHandler(r Resources) *ResourceHandler { return &ResourceHandler{r: r} }

func (h *ResourceHandler) Priority() int { return 50 }

func (h *ResourceHandler) MountAPI(g ez.Groups) {
	ez.Crud(ez.CrudConfig[domain.Site]{Groups: g, Path: "/sites", Service: h.r.Sites})
	ez.Crud(ez.CrudConfig[domain.Module]{Groups: g, Path: "/modules", Service: h.r.Modules})
	ez.Crud(ez.CrudConfig[domain.Subject]{Groups: g, Path: "/subjects", Service: h.r.Subjects})
	ez.Crud(ez.CrudConfig[domain.File]{
		Groups: g, Path: "/files", Service: h.r.Files,
		Hooks: ez.CrudHooks[domain.File]{BeforeCreate: func(c *gin.Context, f *domain.File) error {
			me, err := caller(c)
			if err != nil {
				return err
			}
			f.UploadedBy = me.ID
			return nil
		}},
	})
	ez.Crud(ez.CrudConfig[domain.Contribution]{Groups: g, Path: "/contributions", Service: h.r.Contributions})
	ez.Crud(ez.CrudConfig[domain.LeisureEvent]{Groups: g, Path: "/leisure/events", Service: h.r.LeisureEvents})
	ez.Crud(ez.CrudConfig[domain.LeisureParticipant]{Groups: g, Path: "/leisure/participants", Service: h.r.LeisureParticipants})
	ez.Crud(ez.CrudConfig[domain.LeisureContribution]{Groups: g, Path: "/leisure/contributions", Service: h.r.LeisureContributions})
	ez.Crud(ez.CrudConfig[domain.Attendance]{Groups: g, Path: "/attendance", Service: h.r.Attendance})
	ez.Crud(ez.CrudConfig[domain.Setting]{Groups: g, Path: "/settings", Service: h.r.Settings})
}
