package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/example/storefront/internal/apperr"
	"github.com/example/storefront/internal/infra/storage"
)

var (
	errNoImage  = apperr.Validation("No image uploaded")
	errNotImage = apperr.Validation("Only image files are allowed")
)

// Upload 一次上传的文件
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// UploadService 校验图片并交给存储后端
type UploadService struct {
	store    storage.Store
	maxBytes int64
}

func NewUploadService(store storage.Store, maxBytes int64) *UploadService {
	return &UploadService{store: store, maxBytes: maxBytes}
}

// Save 返回存储后的引用路径
func (s *UploadService) Save(ctx context.Context, up *Upload) (string, error) {
	if up == nil || up.Body == nil {
		return "", errNoImage
	}
	if s.maxBytes > 0 && up.Size > s.maxBytes {
		return "", apperr.Validationf("File too large. Max size is %dKB.", s.maxBytes/1024)
	}
	if !strings.HasPrefix(up.ContentType, "image/") {
		return "", errNotImage
	}

	body := up.Body
	if s.maxBytes > 0 {
		body = io.LimitReader(up.Body, s.maxBytes)
	}
	ref, err := s.store.Save(ctx, up.Filename, up.ContentType, body)
	if err != nil {
		return "", storeErr("upload.save", fmt.Errorf("%s: %w", up.Filename, err))
	}
	return ref, nil
}
