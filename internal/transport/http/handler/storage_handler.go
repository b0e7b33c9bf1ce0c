package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"resident-portal/internal/core/apperr"
	"resident-portal/internal/service"
	"resident-portal/internal/transport/http/ez"
)

type StorageHandler struct {
	svc *service.StorageService
}

func NewStorageHandler(svc *service.StorageService) *StorageHandler {
	return &StorageHandler{svc: svc}
}

func (h *StorageHandler) MountAPI(g ez.Groups) {
	ez.Register(g.Authed, ez.Action[struct{}, *service.StoredFile]{
		Method: http.MethodPost,
		Path:   "/storage/upload",
		Binder: ez.BindNone,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, _ *struct{}) (*service.StoredFile, error) {
			fh, err := c.FormFile("file")
			if err != nil {
				var tooBig *http.MaxBytesError
				switch {
				case errors.Is(err, http.ErrMissingFile):
					return nil, apperr.Validation([]apperr.FieldError{{Path: "file", Message: "file is required"}})
				case errors.As(err, &tooBig):
					return nil, apperr.New(http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "File exceeds the upload limit")
				}
				return nil, apperr.BadRequest("Invalid multipart form")
			}
			return h.svc.Save(c.Request.Context(), fh)
		},
	})
}
