package services

import (
	"context"
	"errors"
	"path"

	"pairchat/internal/storage"
	chat_errors "pairchat/pkg/errors"

	"github.com/google/uuid"
)

const maxImageBytes = 10 << 20

// UploadService issues presigned PUT URLs for image attachments. The
// client uploads directly to the store and sends the resulting URL with
// the message.
type UploadService struct {
	storage *storage.Client
}

func NewUploadService(storage *storage.Client) *UploadService {
	return &UploadService{storage: storage}
}

type PresignInput struct {
	UploaderID  uuid.UUID
	FileName    string
	ContentType string
	FileSize    int64
}

type PresignResult struct {
	UploadURL string
	Headers   map[string]string
	FileURL   string
}

func (s *UploadService) PresignImage(ctx context.Context, in PresignInput) (PresignResult, error) {
	if s.storage == nil {
		return PresignResult{}, errors.New("image storage is not configured")
	}
	if in.UploaderID == uuid.Nil || in.FileName == "" || in.ContentType == "" || in.FileSize <= 0 {
		return PresignResult{}, chat_errors.ErrInvalidInput
	}
	if in.FileSize > maxImageBytes {
		return PresignResult{}, chat_errors.ErrInvalidInput
	}
	if err := s.storage.ValidateImageContentType(in.ContentType); err != nil {
		return PresignResult{}, chat_errors.ErrInvalidInput
	}

	key := "uploads/" + in.UploaderID.String() + "/" + uuid.New().String() + path.Ext(in.FileName)
	uploadURL, headers, err := s.storage.PresignPut(ctx, key, in.ContentType, in.FileSize)
	if err != nil {
		return PresignResult{}, err
	}

	return PresignResult{
		UploadURL: uploadURL,
		Headers:   headers,
		FileURL:   s.storage.FileURL(key),
	}, nil
}
