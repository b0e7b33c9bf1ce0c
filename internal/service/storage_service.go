package service

import (
	"bytes"
	"context"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"resident-portal/internal/core/apperr"
	"resident-portal/pkg/utils"
)

var extRe = regexp.MustCompile(`^\.[a-z0-9]{1,10}$`)

type StoredFile struct {
	URL      string `json:"url"`
	Name     string `json:"name"`
	Size     int64  `json:"size"`
	MimeType string `json:"mimeType"`
}

// StorageService writes uploads to a local directory under random names.
type StorageService struct {
	dir      string
	prefix   string
	maxBytes int64
	log      *zap.Logger
}

func NewStorageService(dir, publicPrefix string, maxBytes int64, l *zap.Logger) (*StorageService, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &StorageService{dir: dir, prefix: "/" + strings.Trim(publicPrefix, "/"), maxBytes: maxBytes, log: l}, nil
}

func (s *StorageService) Dir() string    { return s.dir }
func (s *StorageService) Prefix() string { return s.prefix }

// Save stores fh and returns its public URL. The original name is kept only as metadata.
func (s *StorageService) Save(ctx context.Context, fh *multipart.FileHeader) (*StoredFile, error) {
	if fh == nil {
		return nil, apperr.Validation([]apperr.FieldError{{Path: "file", Message: "file is required"}})
	}
	if s.maxBytes > 0 && fh.Size > s.maxBytes {
		return nil, apperr.New(http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "File exceeds the upload limit")
	}
	src, err := fh.Open()
	if err != nil {
		return nil, apperr.BadRequest("Unreadable upload")
	}
	defer src.Close()

	head := make([]byte, 512)
	n, _ := io.ReadFull(src, head)
	head = head[:n]
	mimeType := fh.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(head)
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !extRe.MatchString(ext) {
		ext = ""
		if exts, _ := mime.ExtensionsByType(mimeType); len(exts) > 0 {
			ext = exts[0]
		}
	}
	name := utils.NewID() + ext
	full := filepath.Join(s.dir, name)

	dst, err := os.OpenFile(full, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, apperr.Internal("Could not store file", err)
	}
	size, err := io.Copy(dst, io.MultiReader(bytes.NewReader(head), src))
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(full)
		return nil, apperr.Internal("Could not store file", err)
	}
	if ctx.Err() != nil {
		_ = os.Remove(full)
		return nil, apperr.Internal("Upload cancelled", ctx.Err())
	}
	s.log.Info("file stored", zap.String("name", name), zap.Int64("size", size), zap.String("mime", mimeType))
	return &StoredFile{URL: path.Join(s.prefix, name), Name: filepath.Base(fh.Filename), Size: size, MimeType: mimeType}, nil
}
