package entities

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// LandmarkID is the opaque identifier the landmark server assigns. The
// server emits it as a JSON number; strings are accepted too.
type LandmarkID string

// UnmarshalJSON accepts both `7` and `"7"`.
func (id *LandmarkID) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*id = ""
		return nil
	}
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*id = LandmarkID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return fmt.Errorf("landmark id must be a number or string: %w", err)
	}
	*id = LandmarkID(n.String())
	return nil
}

// String returns the id as sent on the wire.
func (id LandmarkID) String() string {
	return string(id)
}

// LandmarkContext identifies the landmark whose page raised an event.
type LandmarkContext struct {
	LandmarkID LandmarkID
}

// NewLandmarkContext trims the raw id taken from a path value, flag or env var.
func NewLandmarkContext(raw string) LandmarkContext {
	return LandmarkContext{LandmarkID: LandmarkID(strings.TrimSpace(raw))}
}

// Valid reports whether a landmark id is present.
func (c LandmarkContext) Valid() bool {
	return c.LandmarkID != ""
}

// RatingSubmission is sent to /rate_landmark.
type RatingSubmission struct {
	LandmarkID LandmarkID
	Score      string
}

// ReviewSubmission is sent to /notes_landmark.
type ReviewSubmission struct {
	LandmarkID LandmarkID
	Notes      string
}

// ImagePersistence is sent to /add_image once the image host accepted the file.
type ImagePersistence struct {
	LandmarkID LandmarkID
	ImageURL   string
}

// Suggestion is one nearby, highly rated landmark from /other_favorites.
type Suggestion struct {
	LandmarkID  LandmarkID `json:"landmark_id"`
	Name        string     `json:"landmark_name"`
	Image       string     `json:"landmark_image,omitempty"`
	Description string     `json:"description,omitempty"`
}

// ServerReply is the raw answer to a rating or review submission.
type ServerReply struct {
	Body        string
	ContentType string
	// Status is set when the server answered with a structured JSON
	// body carrying a "status" field.
	Status string
}
