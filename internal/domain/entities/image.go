package entities

import (
	"io"
	"time"
)

// ImageUpload is a single file picked by the user.
type ImageUpload struct {
	FileName    string
	ContentType string
	Content     io.Reader
}

// HostedImage is what the image host returns for an accepted upload.
type HostedImage struct {
	ID         string `json:"id,omitempty"`
	Link       string `json:"link"`
	DeleteHash string `json:"deletehash,omitempty"`
}

// OrphanedImage records a hosted image the landmark server never stored.
type OrphanedImage struct {
	ID         string     `json:"id"`
	LandmarkID LandmarkID `json:"landmark_id"`
	Link       string     `json:"link"`
	DeleteHash string     `json:"delete_hash,omitempty"`
	Reason     string     `json:"reason"`
	RecordedAt time.Time  `json:"recorded_at"`
}
