package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/automarkt/automarkt-backend/api/middleware"
	"github.com/automarkt/automarkt-backend/api/responses"
	"github.com/automarkt/automarkt-backend/api/validators"
	"github.com/automarkt/automarkt-backend/internal/favorites"
	pkgerrors "github.com/automarkt/automarkt-backend/pkg/errors"
	"github.com/automarkt/automarkt-backend/pkg/logger"
)

type favoritePayload struct {
	CarID string `json:"carId" validate:"required,uuid"`
}

// FavoritesList returns the caller's favorited cars.
func FavoritesList(svc favorites.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "favorites service unavailable"))
			return
		}

		items, err := svc.List(ctx, middleware.UserIDFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

// FavoriteAdd bookmarks a car for the caller.
func FavoriteAdd(svc favorites.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "favorites service unavailable"))
			return
		}

		carID, err := decodeFavoritePayload(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.Add(ctx, middleware.UserIDFromContext(ctx), carID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{"car_id": carID, "favorited": true})
	}
}

// FavoriteRemove drops the bookmark; removing an absent one still succeeds.
func FavoriteRemove(svc favorites.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "favorites service unavailable"))
			return
		}

		carID, err := decodeFavoritePayload(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.Remove(ctx, middleware.UserIDFromContext(ctx), carID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"success": true})
	}
}

func decodeFavoritePayload(r *http.Request) (uuid.UUID, error) {
	var payload favoritePayload
	if err := validators.DecodeJSONBody(r, &payload); err != nil {
		return uuid.Nil, err
	}
	carID, err := uuid.Parse(strings.TrimSpace(payload.CarID))
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid car id")
	}
	return carID, nil
}
