package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/automarkt/automarkt-backend/api/middleware"
	"github.com/automarkt/automarkt-backend/internal/listings"
	"github.com/automarkt/automarkt-backend/internal/media"
	"github.com/automarkt/automarkt-backend/internal/submission"
	pkgerrors "github.com/automarkt/automarkt-backend/pkg/errors"
)

type stubSubmissionService struct {
	getFn    func(ctx context.Context, userID string) (*submission.Draft, error)
	patchFn  func(ctx context.Context, userID string, patch submission.DraftPatch) (*submission.Draft, error)
	nextFn   func(ctx context.Context, userID string) (*submission.Draft, error)
	backFn   func(ctx context.Context, userID string) (*submission.Draft, error)
	goToFn   func(ctx context.Context, userID string, step submission.Step) (*submission.Draft, error)
	resetFn  func(ctx context.Context, userID string) error
	submitFn func(ctx context.Context, userID string, staged []media.Image) (*listings.ListingDTO, error)
}

func (s *stubSubmissionService) Get(ctx context.Context, userID string) (*submission.Draft, error) {
	if s.getFn == nil {
		panic("unexpected Get call")
	}
	return s.getFn(ctx, userID)
}

func (s *stubSubmissionService) Patch(ctx context.Context, userID string, patch submission.DraftPatch) (*submission.Draft, error) {
	if s.patchFn == nil {
		panic("unexpected Patch call")
	}
	return s.patchFn(ctx, userID, patch)
}

func (s *stubSubmissionService) Next(ctx context.Context, userID string) (*submission.Draft, error) {
	if s.nextFn == nil {
		panic("unexpected Next call")
	}
	return s.nextFn(ctx, userID)
}

func (s *stubSubmissionService) Back(ctx context.Context, userID string) (*submission.Draft, error) {
	if s.backFn == nil {
		panic("unexpected Back call")
	}
	return s.backFn(ctx, userID)
}

func (s *stubSubmissionService) GoTo(ctx context.Context, userID string, step submission.Step) (*submission.Draft, error) {
	if s.goToFn == nil {
		panic("unexpected GoTo call")
	}
	return s.goToFn(ctx, userID, step)
}

func (s *stubSubmissionService) Reset(ctx context.Context, userID string) error {
	if s.resetFn == nil {
		panic("unexpected Reset call")
	}
	return s.resetFn(ctx, userID)
}

func (s *stubSubmissionService) Submit(ctx context.Context, userID string, staged []media.Image) (*listings.ListingDTO, error) {
	if s.submitFn == nil {
		panic("unexpected Submit call")
	}
	return s.submitFn(ctx, userID, staged)
}

func draftRequest(method, target, body, userID string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req = req.WithContext(middleware.WithUserID(req.Context(), userID))
	}
	return req
}

func TestDraftFetch(t *testing.T) {
	logg := newTestLogger()
	userID := uuid.New().String()

	svc := &stubSubmissionService{
		getFn: func(_ context.Context, gotUser string) (*submission.Draft, error) {
			if gotUser != userID {
				t.Fatalf("expected user %s, got %s", userID, gotUser)
			}
			return submission.NewDraft(), nil
		},
	}

	rec := httptest.NewRecorder()
	DraftFetch(svc, logg).ServeHTTP(rec, draftRequest(http.MethodGet, "/api/drafts", "", userID))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var draft submission.Draft
	if err := json.Unmarshal(rec.Body.Bytes(), &draft); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if draft.Step != submission.StepVehicle {
		t.Fatalf("expected fresh draft at vehicle step, got %q", draft.Step)
	}
}

func TestDraftPatch(t *testing.T) {
	logg := newTestLogger()

	t.Run("forwards the decoded patch", func(t *testing.T) {
		svc := &stubSubmissionService{
			patchFn: func(_ context.Context, _ string, patch submission.DraftPatch) (*submission.Draft, error) {
				if patch.Make == nil || *patch.Make != "Skoda" {
					t.Fatalf("expected make patch, got %+v", patch.Make)
				}
				if patch.Model != nil {
					t.Fatalf("untouched fields must stay nil")
				}
				return submission.NewDraft(), nil
			},
		}

		rec := httptest.NewRecorder()
		DraftPatch(svc, logg).ServeHTTP(rec, draftRequest(http.MethodPut, "/api/drafts", `{"make": "Skoda"}`, uuid.New().String()))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("rejects unknown fields", func(t *testing.T) {
		rec := httptest.NewRecorder()
		DraftPatch(&stubSubmissionService{}, logg).ServeHTTP(rec, draftRequest(http.MethodPut, "/api/drafts", `{"horsepower": 300}`, uuid.New().String()))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestDraftNextSurfacesStepValidation(t *testing.T) {
	logg := newTestLogger()

	svc := &stubSubmissionService{
		nextFn: func(context.Context, string) (*submission.Draft, error) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "step is not complete").
				WithDetails(map[string]string{"make": "make is required"})
		},
	}

	rec := httptest.NewRecorder()
	DraftNext(svc, logg).ServeHTTP(rec, draftRequest(http.MethodPost, "/api/drafts/next", "", uuid.New().String()))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	var body struct {
		Error   string            `json:"error"`
		Details map[string]string `json:"details"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Details["make"] == "" {
		t.Fatalf("expected field details in error payload, got %s", rec.Body.String())
	}
}

func TestDraftGoTo(t *testing.T) {
	logg := newTestLogger()

	t.Run("forwards the requested step", func(t *testing.T) {
		svc := &stubSubmissionService{
			goToFn: func(_ context.Context, _ string, step submission.Step) (*submission.Draft, error) {
				if step != submission.StepCondition {
					t.Fatalf("expected condition step, got %q", step)
				}
				return submission.NewDraft(), nil
			},
		}

		rec := httptest.NewRecorder()
		DraftGoTo(svc, logg).ServeHTTP(rec, draftRequest(http.MethodPost, "/api/drafts/goto", `{"step": "condition"}`, uuid.New().String()))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("unreachable step rejects", func(t *testing.T) {
		svc := &stubSubmissionService{
			goToFn: func(context.Context, string, submission.Step) (*submission.Draft, error) {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "step is not reachable")
			},
		}
		rec := httptest.NewRecorder()
		DraftGoTo(svc, logg).ServeHTTP(rec, draftRequest(http.MethodPost, "/api/drafts/goto", `{"step": "images"}`, uuid.New().String()))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("missing step field rejects", func(t *testing.T) {
		rec := httptest.NewRecorder()
		DraftGoTo(&stubSubmissionService{}, logg).ServeHTTP(rec, draftRequest(http.MethodPost, "/api/drafts/goto", `{}`, uuid.New().String()))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestDraftReset(t *testing.T) {
	logg := newTestLogger()

	called := false
	svc := &stubSubmissionService{
		resetFn: func(context.Context, string) error {
			called = true
			return nil
		},
	}

	rec := httptest.NewRecorder()
	DraftReset(svc, logg).ServeHTTP(rec, draftRequest(http.MethodDelete, "/api/drafts", "", uuid.New().String()))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !called {
		t.Fatalf("expected Reset to be invoked")
	}
}

func TestDraftSubmit(t *testing.T) {
	logg := newTestLogger()

	newMultipart := func(t *testing.T, fileNames ...string) (*bytes.Buffer, string) {
		t.Helper()
		buf := &bytes.Buffer{}
		writer := multipart.NewWriter(buf)
		for _, name := range fileNames {
			part, err := writer.CreateFormFile("images", name)
			if err != nil {
				t.Fatalf("create part: %v", err)
			}
			if _, err := part.Write([]byte("fake-image-bytes")); err != nil {
				t.Fatalf("write part: %v", err)
			}
		}
		if err := writer.Close(); err != nil {
			t.Fatalf("close writer: %v", err)
		}
		return buf, writer.FormDataContentType()
	}

	t.Run("stages multipart images and returns the created listing", func(t *testing.T) {
		userID := uuid.New().String()
		created := uuid.New()

		svc := &stubSubmissionService{
			submitFn: func(_ context.Context, gotUser string, staged []media.Image) (*listings.ListingDTO, error) {
				if gotUser != userID {
					t.Fatalf("expected user %s, got %s", userID, gotUser)
				}
				if len(staged) != 2 {
					t.Fatalf("expected 2 staged images, got %d", len(staged))
				}
				if staged[0].FileName != "front.jpg" {
					t.Fatalf("expected part order preserved, got %q", staged[0].FileName)
				}
				return &listings.ListingDTO{ID: created, UserID: gotUser}, nil
			},
		}

		body, contentType := newMultipart(t, "front.jpg", "rear.jpg")
		req := httptest.NewRequest(http.MethodPost, "/api/drafts/submit", body)
		req.Header.Set("Content-Type", contentType)
		req = req.WithContext(middleware.WithUserID(req.Context(), userID))

		rec := httptest.NewRecorder()
		DraftSubmit(svc, 10, 12, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}

		var listing listings.ListingDTO
		if err := json.Unmarshal(rec.Body.Bytes(), &listing); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if listing.ID != created {
			t.Fatalf("expected created listing in body, got %s", rec.Body.String())
		}
	})

	t.Run("submit without staged images still reaches the service", func(t *testing.T) {
		svc := &stubSubmissionService{
			submitFn: func(_ context.Context, _ string, staged []media.Image) (*listings.ListingDTO, error) {
				if len(staged) != 0 {
					t.Fatalf("expected no staged images, got %d", len(staged))
				}
				return &listings.ListingDTO{ID: uuid.New()}, nil
			},
		}

		rec := httptest.NewRecorder()
		DraftSubmit(svc, 10, 12, logg).ServeHTTP(rec, draftRequest(http.MethodPost, "/api/drafts/submit", "", uuid.New().String()))
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("incomplete draft keeps its error shape", func(t *testing.T) {
		svc := &stubSubmissionService{
			submitFn: func(context.Context, string, []media.Image) (*listings.ListingDTO, error) {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "draft is not complete")
			},
		}

		rec := httptest.NewRecorder()
		DraftSubmit(svc, 10, 12, logg).ServeHTTP(rec, draftRequest(http.MethodPost, "/api/drafts/submit", "", uuid.New().String()))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}
