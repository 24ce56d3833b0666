package media

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	pkgerrors "github.com/automarkt/automarkt-backend/pkg/errors"
	"github.com/automarkt/automarkt-backend/pkg/logger"
)

var allowedImageMimeTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

type objectStorage interface {
	ObjectKey(name string) string
	Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error)
	Delete(ctx context.Context, key string) error
}

// Image is a staged upload: the raw bytes plus the declared content type.
type Image struct {
	FileName    string
	ContentType string
	SizeBytes   int64
	Body        io.Reader
}

// Service stores listing images in object storage and hands back durable
// public URLs.
type Service interface {
	UploadImage(ctx context.Context, userID string, img Image) (string, error)
	UploadBatch(ctx context.Context, userID string, imgs []Image) ([]string, error)
}

// ServiceParams groups dependencies for the media service.
type ServiceParams struct {
	Storage     objectStorage
	Logger      *logger.Logger
	MaxUploadMB int
	MaxImages   int
}

type service struct {
	storage   objectStorage
	logg      *logger.Logger
	maxBytes  int64
	maxImages int
}

// NewService constructs a media service backed by the provided object storage.
func NewService(params ServiceParams) (Service, error) {
	if params.Storage == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "object storage is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	if params.MaxUploadMB <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "max upload size must be positive")
	}
	if params.MaxImages <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "max image count must be positive")
	}
	return &service{
		storage:   params.Storage,
		logg:      params.Logger,
		maxBytes:  int64(params.MaxUploadMB) * 1024 * 1024,
		maxImages: params.MaxImages,
	}, nil
}

// UploadImage validates and stores a single image, returning its public URL.
func (s *service) UploadImage(ctx context.Context, userID string, img Image) (string, error) {
	if userID == "" {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	ext, err := s.validateImage(img)
	if err != nil {
		return "", err
	}

	key := s.storage.ObjectKey(buildObjectName(userID, ext))
	url, err := s.storage.Upload(ctx, key, img.ContentType, img.Body)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upload image")
	}
	return url, nil
}

// UploadBatch stores every staged image or none of them. When an upload
// fails, objects stored so far are removed and the aggregated error is
// returned so the caller can retry the whole batch.
func (s *service) UploadBatch(ctx context.Context, userID string, imgs []Image) ([]string, error) {
	if userID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if len(imgs) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one image is required")
	}
	if len(imgs) > s.maxImages {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("at most %d images allowed", s.maxImages))
	}

	exts := make([]string, len(imgs))
	for i := range imgs {
		ext, err := s.validateImage(imgs[i])
		if err != nil {
			return nil, err
		}
		exts[i] = ext
	}

	urls := make([]string, 0, len(imgs))
	keys := make([]string, 0, len(imgs))
	var failures error
	for i := range imgs {
		key := s.storage.ObjectKey(buildObjectName(userID, exts[i]))
		url, err := s.storage.Upload(ctx, key, imgs[i].ContentType, imgs[i].Body)
		if err != nil {
			failures = multierr.Append(failures, fmt.Errorf("image %d: %w", i, err))
			break
		}
		urls = append(urls, url)
		keys = append(keys, key)
	}

	if failures != nil {
		s.rollback(ctx, keys)
		return nil, pkgerrors.Wrap(pkgerrors.CodePartialFailure, failures, "image batch aborted")
	}
	return urls, nil
}

func (s *service) rollback(ctx context.Context, keys []string) {
	for _, key := range keys {
		if err := s.storage.Delete(ctx, key); err != nil {
			s.logg.Error(s.logg.WithField(ctx, "object_key", key), "rollback stored image", err)
		}
	}
}

func (s *service) validateImage(img Image) (string, error) {
	contentType := strings.ToLower(strings.TrimSpace(img.ContentType))
	ext, ok := allowedImageMimeTypes[contentType]
	if !ok {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "only jpeg, png and webp images are accepted")
	}
	if img.Body == nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "image body is required")
	}
	if img.SizeBytes <= 0 {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "image size must be positive")
	}
	if img.SizeBytes > s.maxBytes {
		return "", pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("image exceeds %d byte limit", s.maxBytes))
	}
	return ext, nil
}

func buildObjectName(userID string, ext string) string {
	return fmt.Sprintf("%s/%s%s", sanitizeSegment(userID), uuid.NewString(), ext)
}

func sanitizeSegment(value string) string {
	var b strings.Builder
	b.Grow(len(value))
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	out := strings.Trim(b.String(), "-")
	if out == "" {
		return "anonymous"
	}
	return out
}
