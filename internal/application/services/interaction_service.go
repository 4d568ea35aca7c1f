package services

import (
	"context"

	"github.com/Eih3/walking/internal/domain/entities"
	"github.com/Eih3/walking/internal/domain/providers"
	"github.com/Eih3/walking/internal/infrastructure/observability"
	apperrors "github.com/Eih3/walking/pkg/errors"
)

// Messages shown to the user. The server answers with the "updated"
// texts verbatim when a rating or review already existed.
const (
	RatingUpdatedMessage  = "Your rating has been updated."
	ReviewUpdatedMessage  = "Your review has been updated."
	ThankYouMessage       = "Thank you for your rating."
	UploadCompleteMessage = "Upload complete"
	FailureMessage        = "Something went wrong. Please try again."
)

// InteractionService performs the landmark page interactions. It keeps no
// state between calls; every operation is a single request/response pair
// (two sequential ones for image uploads).
type InteractionService struct {
	api      providers.LandmarkAPI
	host     providers.ImageHostProvider
	renderer providers.PageRenderer
	orphans  providers.OrphanedImageStore
	metrics  *observability.Metrics
}

// NewInteractionService creates a new interaction service. orphans and
// metrics may be nil.
func NewInteractionService(
	api providers.LandmarkAPI,
	host providers.ImageHostProvider,
	renderer providers.PageRenderer,
	orphans providers.OrphanedImageStore,
	metrics *observability.Metrics,
) *InteractionService {
	return &InteractionService{
		api:      api,
		host:     host,
		renderer: renderer,
		orphans:  orphans,
		metrics:  metrics,
	}
}

// SubmitRating sends the clicked score as-is and picks the confirmation.
func (s *InteractionService) SubmitRating(ctx context.Context, landmark entities.LandmarkContext, score string) (*entities.InteractionResult, error) {
	if !landmark.Valid() {
		return nil, apperrors.NewValidationError("landmark id is required")
	}

	reply, err := s.api.RateLandmark(ctx, entities.RatingSubmission{
		LandmarkID: landmark.LandmarkID,
		Score:      score,
	})
	if err != nil {
		observability.LoggerFromContext(ctx).Error().Err(err).
			Str("landmark_id", landmark.LandmarkID.String()).
			Msg("rating submission failed")
		return nil, apperrors.NewExternalError("failed to submit rating", err)
	}

	notification := ResolveNotification(reply, RatingUpdatedMessage, ThankYouMessage)
	return &entities.InteractionResult{Notification: &notification}, nil
}

// SubmitReview sends the notes text and picks the confirmation.
func (s *InteractionService) SubmitReview(ctx context.Context, landmark entities.LandmarkContext, notes string) (*entities.InteractionResult, error) {
	if !landmark.Valid() {
		return nil, apperrors.NewValidationError("landmark id is required")
	}

	reply, err := s.api.SaveNotes(ctx, entities.ReviewSubmission{
		LandmarkID: landmark.LandmarkID,
		Notes:      notes,
	})
	if err != nil {
		observability.LoggerFromContext(ctx).Error().Err(err).
			Str("landmark_id", landmark.LandmarkID.String()).
			Msg("review submission failed")
		return nil, apperrors.NewExternalError("failed to submit review", err)
	}

	notification := ResolveNotification(reply, ReviewUpdatedMessage, ThankYouMessage)
	return &entities.InteractionResult{Notification: &notification}, nil
}

// UploadImage hosts the file externally, then records the returned link
// with the landmark server. The first failing step ends the operation.
func (s *InteractionService) UploadImage(ctx context.Context, landmark entities.LandmarkContext, upload entities.ImageUpload) (*entities.InteractionResult, error) {
	if !landmark.Valid() {
		return nil, apperrors.NewValidationError("landmark id is required")
	}
	if upload.Content == nil {
		return nil, apperrors.NewValidationError("an image file is required")
	}
	if s.host == nil {
		return nil, apperrors.NewInternalError("image hosting is not configured", nil)
	}
	logger := observability.LoggerFromContext(ctx).With().
		Str("landmark_id", landmark.LandmarkID.String()).
		Logger()

	hosted, err := s.host.Upload(ctx, upload)
	if err != nil {
		logger.Error().Err(err).Str("file_name", upload.FileName).Msg("image host upload failed")
		return nil, apperrors.NewExternalError("failed to upload image", err)
	}

	imageHTML, err := s.renderer.RenderImage(hosted.Link)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to render image", err)
	}

	err = s.api.AddImage(ctx, entities.ImagePersistence{
		LandmarkID: landmark.LandmarkID,
		ImageURL:   hosted.Link,
	})
	if err != nil {
		logger.Error().Err(err).Str("link", hosted.Link).Msg("hosted image was not recorded by the landmark server")
		s.recordOrphan(ctx, landmark, hosted, err)
		return nil, apperrors.NewExternalError("failed to save image", err)
	}

	logger.Info().Str("link", hosted.Link).Msg("image uploaded")
	return &entities.InteractionResult{
		Notification: &entities.Notification{
			Kind:    entities.NotificationInfo,
			Message: UploadCompleteMessage,
		},
		Image:     hosted,
		ImageHTML: imageHTML,
	}, nil
}

// LoadSuggestions fetches and renders nearby favorites. A successful
// response always reveals the heading, even when it lists nothing.
func (s *InteractionService) LoadSuggestions(ctx context.Context, landmark entities.LandmarkContext) (*entities.InteractionResult, error) {
	if !landmark.Valid() {
		return nil, apperrors.NewValidationError("landmark id is required")
	}

	suggestions, err := s.api.OtherFavorites(ctx, landmark.LandmarkID)
	if err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).
			Str("landmark_id", landmark.LandmarkID.String()).
			Msg("failed to load suggestions")
		return nil, apperrors.NewExternalError("failed to load suggestions", err)
	}

	itemsHTML, err := s.renderer.RenderSuggestions(suggestions)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to render suggestions", err)
	}

	if suggestions == nil {
		suggestions = []entities.Suggestion{}
	}
	return &entities.InteractionResult{
		HeadingVisible: true,
		Suggestions:    suggestions,
		ItemsHTML:      itemsHTML,
	}, nil
}

// ListOrphanedImages returns images the landmark server never recorded.
func (s *InteractionService) ListOrphanedImages(ctx context.Context, limit int64) ([]entities.OrphanedImage, error) {
	if s.orphans == nil {
		return []entities.OrphanedImage{}, nil
	}
	orphans, err := s.orphans.List(ctx, limit)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list orphaned images", err)
	}
	return orphans, nil
}

func (s *InteractionService) recordOrphan(ctx context.Context, landmark entities.LandmarkContext, hosted *entities.HostedImage, cause error) {
	observability.RecordOrphanedImage(ctx, s.metrics, landmark.LandmarkID.String())
	if s.orphans == nil {
		return
	}
	err := s.orphans.Record(ctx, entities.OrphanedImage{
		LandmarkID: landmark.LandmarkID,
		Link:       hosted.Link,
		DeleteHash: hosted.DeleteHash,
		Reason:     cause.Error(),
	})
	if err != nil {
		observability.LoggerFromContext(ctx).Error().Err(err).Str("link", hosted.Link).Msg("failed to record orphaned image")
	}
}

// ResolveNotification chooses the confirmation for a rating or review reply.
// A structured status wins; otherwise only an exact match of the body with
// the sentinel counts as an update.
func ResolveNotification(reply *entities.ServerReply, sentinel, fallback string) entities.Notification {
	switch reply.Status {
	case string(entities.NotificationUpdated):
		return entities.Notification{Kind: entities.NotificationUpdated, Message: sentinel}
	case string(entities.NotificationCreated):
		return entities.Notification{Kind: entities.NotificationCreated, Message: fallback}
	}

	if reply.Body == sentinel {
		return entities.Notification{Kind: entities.NotificationUpdated, Message: sentinel}
	}
	return entities.Notification{Kind: entities.NotificationCreated, Message: fallback}
}

// FailureNotification is shown when an interaction could not complete.
func FailureNotification() entities.Notification {
	return entities.Notification{Kind: entities.NotificationFailed, Message: FailureMessage}
}
