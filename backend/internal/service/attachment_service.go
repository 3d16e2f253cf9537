package service

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"depot-records/backend/internal/dto"
)

var (
	ErrAttachmentsDisabled = errors.New("attachment storage is not configured")
	ErrAttachmentType      = errors.New("file type is not allowed")
	ErrAttachmentEmpty     = errors.New("file is empty")
)

var allowedAttachmentTypes = map[string]bool{
	".pdf": true, ".png": true, ".jpg": true, ".jpeg": true,
	".doc": true, ".docx": true, ".xls": true, ".xlsx": true,
	".csv": true, ".txt": true,
}

// ObjectUploader 存储文件并返回访问地址
// *s3.Uploader 实现了该接口
type ObjectUploader interface {
	UploadFile(ctx context.Context, body io.Reader, objectKey, contentType string) (string, error)
}

// AttachmentService 存储附件，返回记录 attachments 字段保存的引用
type AttachmentService interface {
	Upload(ctx context.Context, filename, contentType string, size int64, body io.Reader) (*dto.AttachmentResponse, error)
}

type attachmentService struct {
	uploader  ObjectUploader
	keyPrefix string
	now       func() time.Time
	logger    *zap.Logger
}

// NewAttachmentService uploader 为 nil 时拒绝所有上传
func NewAttachmentService(uploader ObjectUploader, keyPrefix string, now func() time.Time, logger *zap.Logger) AttachmentService {
	if now == nil {
		now = time.Now
	}
	return &attachmentService{uploader: uploader, keyPrefix: keyPrefix, now: now, logger: logger}
}

func (s *attachmentService) Upload(ctx context.Context, filename, contentType string, size int64, body io.Reader) (*dto.AttachmentResponse, error) {
	if s.uploader == nil {
		return nil, ErrAttachmentsDisabled
	}
	if size == 0 {
		return nil, ErrAttachmentEmpty
	}
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	ext := strings.ToLower(path.Ext(name))
	if !allowedAttachmentTypes[ext] {
		return nil, ErrAttachmentType
	}

	key := s.objectKey(ext)
	url, err := s.uploader.UploadFile(ctx, body, key, contentType)
	if err != nil {
		s.logger.Error("upload attachment failed", zap.String("key", key), zap.Error(err))
		return nil, err
	}

	s.logger.Info("attachment stored", zap.String("key", key), zap.Int64("size", size))
	return &dto.AttachmentResponse{
		Key:         key,
		URL:         url,
		Filename:    name,
		ContentType: contentType,
		Size:        size,
	}, nil
}

// objectKey <prefix>YYYY/MM/<uuid><ext>
func (s *attachmentService) objectKey(ext string) string {
	return s.keyPrefix + s.now().UTC().Format("2006/01") + "/" + uuid.NewString() + ext
}
