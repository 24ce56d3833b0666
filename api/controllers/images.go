package controllers

import (
	"net/http"

	"github.com/automarkt/automarkt-backend/api/middleware"
	"github.com/automarkt/automarkt-backend/api/responses"
	"github.com/automarkt/automarkt-backend/internal/media"
	pkgerrors "github.com/automarkt/automarkt-backend/pkg/errors"
	"github.com/automarkt/automarkt-backend/pkg/logger"
)

// ImageUpload accepts a multipart "image" part, stores it and returns the
// public URL of the stored object.
func ImageUpload(svc media.Service, maxUploadMB int, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "media service unavailable"))
			return
		}

		limit := int64(maxUploadMB) * 1024 * 1024
		r.Body = http.MaxBytesReader(w, r.Body, limit+1024)
		if err := r.ParseMultipartForm(limit); err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart payload"))
			return
		}

		file, header, err := r.FormFile("image")
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "image file is required"))
			return
		}
		defer file.Close()

		url, err := svc.UploadImage(ctx, middleware.UserIDFromContext(ctx), media.Image{
			FileName:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			SizeBytes:   header.Size,
			Body:        file,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]string{"url": url})
	}
}
