package providers

import (
	"context"

	"github.com/Eih3/walking/internal/domain/entities"
)

// LandmarkAPI defines the landmark server endpoints the page talks to
type LandmarkAPI interface {
	// RateLandmark posts a score to /rate_landmark
	RateLandmark(ctx context.Context, rating entities.RatingSubmission) (*entities.ServerReply, error)

	// SaveNotes posts a review to /notes_landmark
	SaveNotes(ctx context.Context, review entities.ReviewSubmission) (*entities.ServerReply, error)

	// AddImage records a hosted image link through /add_image
	AddImage(ctx context.Context, image entities.ImagePersistence) error

	// OtherFavorites fetches suggestions from /other_favorites
	OtherFavorites(ctx context.Context, landmarkID entities.LandmarkID) ([]entities.Suggestion, error)
}
