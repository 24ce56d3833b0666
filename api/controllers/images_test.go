package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/automarkt/automarkt-backend/api/middleware"
	"github.com/automarkt/automarkt-backend/internal/media"
	pkgerrors "github.com/automarkt/automarkt-backend/pkg/errors"
)

type stubMediaService struct {
	uploadImageFn func(ctx context.Context, userID string, img media.Image) (string, error)
	uploadBatchFn func(ctx context.Context, userID string, imgs []media.Image) ([]string, error)
}

func (s *stubMediaService) UploadImage(ctx context.Context, userID string, img media.Image) (string, error) {
	if s.uploadImageFn == nil {
		panic("unexpected UploadImage call")
	}
	return s.uploadImageFn(ctx, userID, img)
}

func (s *stubMediaService) UploadBatch(ctx context.Context, userID string, imgs []media.Image) ([]string, error) {
	if s.uploadBatchFn == nil {
		panic("unexpected UploadBatch call")
	}
	return s.uploadBatchFn(ctx, userID, imgs)
}

func imageUploadRequest(t *testing.T, fieldName, fileName, userID string) *http.Request {
	t.Helper()
	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)
	part, err := writer.CreateFormFile(fieldName, fileName)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write([]byte("fake-image-bytes")); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/images", buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if userID != "" {
		req = req.WithContext(middleware.WithUserID(req.Context(), userID))
	}
	return req
}

func TestImageUpload(t *testing.T) {
	logg := newTestLogger()

	t.Run("stores the part and returns its URL", func(t *testing.T) {
		userID := uuid.New().String()
		svc := &stubMediaService{
			uploadImageFn: func(_ context.Context, gotUser string, img media.Image) (string, error) {
				if gotUser != userID {
					t.Fatalf("expected user %s, got %s", userID, gotUser)
				}
				if img.FileName != "front.jpg" {
					t.Fatalf("expected filename front.jpg, got %q", img.FileName)
				}
				return "https://storage.googleapis.com/bucket/car-images/x.jpg", nil
			},
		}

		rec := httptest.NewRecorder()
		ImageUpload(svc, 10, logg).ServeHTTP(rec, imageUploadRequest(t, "image", "front.jpg", userID))
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}

		var body map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body["url"] == "" {
			t.Fatalf("expected url in body, got %s", rec.Body.String())
		}
	})

	t.Run("missing image part rejects", func(t *testing.T) {
		rec := httptest.NewRecorder()
		ImageUpload(&stubMediaService{}, 10, logg).ServeHTTP(rec, imageUploadRequest(t, "attachment", "front.jpg", uuid.New().String()))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("unsupported type surfaces as validation error", func(t *testing.T) {
		svc := &stubMediaService{
			uploadImageFn: func(context.Context, string, media.Image) (string, error) {
				return "", pkgerrors.New(pkgerrors.CodeValidation, "unsupported image type")
			},
		}
		rec := httptest.NewRecorder()
		ImageUpload(svc, 10, logg).ServeHTTP(rec, imageUploadRequest(t, "image", "notes.txt", uuid.New().String()))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}
