package submission

import (
	"context"
	"time"

	"github.com/automarkt/automarkt-backend/internal/listings"
	"github.com/automarkt/automarkt-backend/internal/media"
	pkgerrors "github.com/automarkt/automarkt-backend/pkg/errors"
	"github.com/automarkt/automarkt-backend/pkg/logger"
)

type listingCreator interface {
	Create(ctx context.Context, userID string, input listings.CreateListingInput) (*listings.ListingDTO, error)
}

type imageUploader interface {
	UploadBatch(ctx context.Context, userID string, imgs []media.Image) ([]string, error)
}

// Service drives the multi-step listing submission workflow.
type Service interface {
	Get(ctx context.Context, userID string) (*Draft, error)
	Patch(ctx context.Context, userID string, patch DraftPatch) (*Draft, error)
	Next(ctx context.Context, userID string) (*Draft, error)
	Back(ctx context.Context, userID string) (*Draft, error)
	GoTo(ctx context.Context, userID string, step Step) (*Draft, error)
	Reset(ctx context.Context, userID string) error
	Submit(ctx context.Context, userID string, staged []media.Image) (*listings.ListingDTO, error)
}

// ServiceParams groups dependencies for the workflow service.
type ServiceParams struct {
	Store    Store
	Listings listingCreator
	Media    imageUploader
	Logger   *logger.Logger
}

type service struct {
	store    Store
	listings listingCreator
	media    imageUploader
	logg     *logger.Logger
}

// NewService constructs the workflow service.
func NewService(params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "draft store is required")
	}
	if params.Listings == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "listing service is required")
	}
	if params.Media == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "media service is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	return &service{
		store:    params.Store,
		listings: params.Listings,
		media:    params.Media,
		logg:     params.Logger,
	}, nil
}

// Get loads the draft, falling back to a fresh one.
func (s *service) Get(ctx context.Context, userID string) (*Draft, error) {
	if userID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	return s.store.Load(ctx, userID)
}

// Patch applies the provided field changes and persists the whole draft.
func (s *service) Patch(ctx context.Context, userID string, patch DraftPatch) (*Draft, error) {
	if userID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	draft, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	patch.apply(&draft.Record)
	draft.UpdatedAt = time.Now().UTC()
	if err := s.store.Save(ctx, userID, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

// Next validates the current step's fields. On success the step is marked
// complete and the draft advances; on failure the draft stays put and the
// field errors are surfaced.
func (s *service) Next(ctx context.Context, userID string) (*Draft, error) {
	if userID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	draft, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if vErr := validateStep(draft.Record, draft.Step); vErr != nil {
		return nil, vErr
	}
	draft.markCompleted(draft.Step)
	if idx := stepIndex(draft.Step); idx < len(stepSequence)-1 {
		draft.Step = stepSequence[idx+1].ID
	}
	draft.UpdatedAt = time.Now().UTC()
	if err := s.store.Save(ctx, userID, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

// Back moves to the previous step without validation. At the first step it
// is a no-op.
func (s *service) Back(ctx context.Context, userID string) (*Draft, error) {
	if userID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	draft, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if idx := stepIndex(draft.Step); idx > 0 {
		draft.Step = stepSequence[idx-1].ID
		draft.UpdatedAt = time.Now().UTC()
		if err := s.store.Save(ctx, userID, draft); err != nil {
			return nil, err
		}
	}
	return draft, nil
}

// GoTo jumps to a step the gating rule allows, rejecting everything else.
func (s *service) GoTo(ctx context.Context, userID string, step Step) (*Draft, error) {
	if userID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if !step.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown step")
	}
	draft, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !draft.CanNavigateTo(step) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "step is not reachable yet")
	}
	if draft.Step != step {
		draft.Step = step
		draft.UpdatedAt = time.Now().UTC()
		if err := s.store.Save(ctx, userID, draft); err != nil {
			return nil, err
		}
	}
	return draft, nil
}

// Reset discards the persisted draft.
func (s *service) Reset(ctx context.Context, userID string) error {
	if userID == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	return s.store.Clear(ctx, userID)
}

// Submit finishes the workflow: staged images are uploaded first, then the
// assembled listing is created, then the draft is cleared. Any failure
// leaves the draft intact so the seller can retry from the last step.
func (s *service) Submit(ctx context.Context, userID string, staged []media.Image) (*listings.ListingDTO, error) {
	if userID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	draft, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if draft.Step != LastStep() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "submission is only possible from the final step")
	}
	if vErr := validateForSubmitWithStaged(draft.Record, len(staged)); vErr != nil {
		return nil, vErr
	}

	imageURLs := append([]string{}, draft.Record.Images...)
	if len(staged) > 0 {
		uploaded, err := s.media.UploadBatch(ctx, userID, staged)
		if err != nil {
			return nil, err
		}
		imageURLs = append(imageURLs, uploaded...)
	}

	input, convErr := draft.Record.toCreateInput(imageURLs)
	if convErr != nil {
		return nil, convErr
	}
	listing, err := s.listings.Create(ctx, userID, input)
	if err != nil {
		return nil, err
	}

	if err := s.store.Clear(ctx, userID); err != nil {
		// The listing exists; a stale draft is an annoyance, not a failure.
		s.logg.Error(ctx, "clear draft after submit", err)
	}
	return listing, nil
}
