package providers

import (
	"context"

	"github.com/Eih3/walking/internal/domain/entities"
)

// ImageHostProvider uploads user images to a third-party host
type ImageHostProvider interface {
	// Upload sends the file and returns the hosted image link
	Upload(ctx context.Context, upload entities.ImageUpload) (*entities.HostedImage, error)
}

// OrphanedImageStore keeps hosted images whose server-side record failed
type OrphanedImageStore interface {
	Record(ctx context.Context, orphan entities.OrphanedImage) error
	List(ctx context.Context, limit int64) ([]entities.OrphanedImage, error)
}

// PageRenderer produces the HTML fragments inserted into the landmark page
type PageRenderer interface {
	RenderImage(link string) (string, error)
	RenderSuggestions(suggestions []entities.Suggestion) (string, error)
}
