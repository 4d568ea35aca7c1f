package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/Eih3/walking/internal/application/services"
	"github.com/Eih3/walking/internal/domain/entities"
	"github.com/Eih3/walking/internal/infrastructure/observability"
	apperrors "github.com/Eih3/walking/pkg/errors"
)

const defaultMaxUploadBytes = 10 << 20

// InteractionService defines the page interactions used by the handler.
type InteractionService interface {
	SubmitRating(ctx context.Context, landmark entities.LandmarkContext, score string) (*entities.InteractionResult, error)
	SubmitReview(ctx context.Context, landmark entities.LandmarkContext, notes string) (*entities.InteractionResult, error)
	UploadImage(ctx context.Context, landmark entities.LandmarkContext, upload entities.ImageUpload) (*entities.InteractionResult, error)
	LoadSuggestions(ctx context.Context, landmark entities.LandmarkContext) (*entities.InteractionResult, error)
	ListOrphanedImages(ctx context.Context, limit int64) ([]entities.OrphanedImage, error)
}

// InteractionHandler receives landmark page events.
type InteractionHandler struct {
	service        InteractionService
	maxUploadBytes int64
}

// NewInteractionHandler creates a new interaction handler.
func NewInteractionHandler(service InteractionService, maxUploadBytes int64) *InteractionHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
	}
	return &InteractionHandler{
		service:        service,
		maxUploadBytes: maxUploadBytes,
	}
}

// RateLandmark handles POST /events/landmarks/{landmarkID}/rating
func (h *InteractionHandler) RateLandmark(w http.ResponseWriter, r *http.Request) {
	score, err := readField(r, "score")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	result, err := h.service.SubmitRating(r.Context(), landmarkFromPath(r), score)
	h.respond(w, r, result, err)
}

// ReviewLandmark handles POST /events/landmarks/{landmarkID}/review
func (h *InteractionHandler) ReviewLandmark(w http.ResponseWriter, r *http.Request) {
	notes, err := readField(r, "notes")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	result, err := h.service.SubmitReview(r.Context(), landmarkFromPath(r), notes)
	h.respond(w, r, result, err)
}

// UploadImage handles POST /events/landmarks/{landmarkID}/image
func (h *InteractionHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondWithError(w, http.StatusRequestEntityTooLarge, "image is too large")
			return
		}
		respondWithError(w, http.StatusBadRequest, "multipart form with an image is required")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "image is required")
		return
	}
	defer file.Close()

	result, err := h.service.UploadImage(r.Context(), landmarkFromPath(r), entities.ImageUpload{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Content:     file,
	})
	h.respond(w, r, result, err)
}

// GetSuggestions handles GET /events/landmarks/{landmarkID}/suggestions
func (h *InteractionHandler) GetSuggestions(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.LoadSuggestions(r.Context(), landmarkFromPath(r))
	if err != nil || result == nil {
		h.respond(w, r, result, err)
		return
	}

	suggestions := result.Suggestions
	if suggestions == nil {
		suggestions = []entities.Suggestion{}
	}
	respondWithJSON(w, http.StatusOK, suggestionsResponse{
		HeadingVisible: result.HeadingVisible,
		Suggestions:    suggestions,
		ItemsHTML:      result.ItemsHTML,
	})
}

// suggestionsResponse always carries every key, including for an empty list.
type suggestionsResponse struct {
	HeadingVisible bool                  `json:"heading_visible"`
	Suggestions    []entities.Suggestion `json:"suggestions"`
	ItemsHTML      string                `json:"items_html"`
}

// ListOrphanedImages handles GET /admin/orphaned-images
func (h *InteractionHandler) ListOrphanedImages(w http.ResponseWriter, r *http.Request) {
	limit := int64(100)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 {
			respondWithError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	orphans, err := h.service.ListOrphanedImages(r.Context(), limit)
	if err != nil {
		observability.LoggerFromContext(r.Context()).Error().Err(err).Msg("failed to list orphaned images")
		respondWithError(w, http.StatusInternalServerError, "failed to list orphaned images")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"orphaned_images": orphans,
		"count":           len(orphans),
	})
}

// Health handles GET /health
func (h *InteractionHandler) Health(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// respond writes the result, or the generic failure notification.
func (h *InteractionHandler) respond(w http.ResponseWriter, r *http.Request, result *entities.InteractionResult, err error) {
	if err == nil {
		respondWithJSON(w, http.StatusOK, result)
		return
	}

	status := http.StatusInternalServerError
	switch apperrors.TypeOf(err) {
	case apperrors.ErrorTypeValidation:
		status = http.StatusBadRequest
	case apperrors.ErrorTypeExternal:
		status = http.StatusBadGateway
	}
	observability.LoggerFromContext(r.Context()).Warn().Err(err).
		Str("path", r.URL.Path).
		Int("status", status).
		Msg("page interaction failed")

	failure := services.FailureNotification()
	respondWithJSON(w, status, entities.InteractionResult{Notification: &failure})
}

func landmarkFromPath(r *http.Request) entities.LandmarkContext {
	return entities.NewLandmarkContext(r.PathValue("landmarkID"))
}

// readField reads a single value from a JSON, urlencoded or multipart body.
func readField(r *http.Request, name string) (string, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var payload map[string]json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			return "", err
		}
		raw, ok := payload[name]
		if !ok {
			return "", nil
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s, nil
		}
		// Numbers (e.g. a score) are forwarded in their literal form.
		return strings.TrimSpace(string(raw)), nil
	}
	return r.FormValue(name), nil
}

func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"error": message,
	})
}
