package controllers

import (
	"net/http"
	"strings"

	"github.com/automarkt/automarkt-backend/api/middleware"
	"github.com/automarkt/automarkt-backend/api/responses"
	"github.com/automarkt/automarkt-backend/api/validators"
	"github.com/automarkt/automarkt-backend/internal/media"
	"github.com/automarkt/automarkt-backend/internal/submission"
	pkgerrors "github.com/automarkt/automarkt-backend/pkg/errors"
	"github.com/automarkt/automarkt-backend/pkg/logger"
)

type goToPayload struct {
	Step string `json:"step" validate:"required"`
}

// DraftFetch loads the caller's draft, starting a fresh one when nothing
// usable is stored.
func DraftFetch(svc submission.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "submission service unavailable"))
			return
		}

		draft, err := svc.Get(ctx, middleware.UserIDFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, draft)
	}
}

// DraftPatch merges the submitted field changes into the stored draft.
func DraftPatch(svc submission.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "submission service unavailable"))
			return
		}

		var patch submission.DraftPatch
		if err := validators.DecodeJSONBody(r, &patch); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		draft, err := svc.Patch(ctx, middleware.UserIDFromContext(ctx), patch)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, draft)
	}
}

// DraftReset discards the stored draft.
func DraftReset(svc submission.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "submission service unavailable"))
			return
		}

		if err := svc.Reset(ctx, middleware.UserIDFromContext(ctx)); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"success": true})
	}
}

// DraftNext validates the current step and advances on success.
func DraftNext(svc submission.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "submission service unavailable"))
			return
		}

		draft, err := svc.Next(ctx, middleware.UserIDFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, draft)
	}
}

// DraftBack steps backwards without validation.
func DraftBack(svc submission.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "submission service unavailable"))
			return
		}

		draft, err := svc.Back(ctx, middleware.UserIDFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, draft)
	}
}

// DraftGoTo jumps to a reachable step.
func DraftGoTo(svc submission.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "submission service unavailable"))
			return
		}

		var payload goToPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		draft, err := svc.GoTo(ctx, middleware.UserIDFromContext(ctx), submission.Step(strings.TrimSpace(payload.Step)))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, draft)
	}
}

// DraftSubmit finishes the workflow. Images staged as multipart "images"
// parts are uploaded alongside any URLs already on the draft; the created
// listing is returned and the draft is cleared.
func DraftSubmit(svc submission.Service, maxUploadMB, maxImages int, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "submission service unavailable"))
			return
		}

		var staged []media.Image
		if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
			limit := int64(maxUploadMB) * 1024 * 1024 * int64(maxImages)
			r.Body = http.MaxBytesReader(w, r.Body, limit+1024)
			if err := r.ParseMultipartForm(limit); err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart payload"))
				return
			}
			if r.MultipartForm != nil {
				for _, header := range r.MultipartForm.File["images"] {
					file, err := header.Open()
					if err != nil {
						responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unreadable image part"))
						return
					}
					defer file.Close()
					staged = append(staged, media.Image{
						FileName:    header.Filename,
						ContentType: header.Header.Get("Content-Type"),
						SizeBytes:   header.Size,
						Body:        file,
					})
				}
			}
		}

		listing, err := svc.Submit(ctx, middleware.UserIDFromContext(ctx), staged)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, listing)
	}
}
