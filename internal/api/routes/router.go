package routes

import (
	"net/http"

	"github.com/Eih3/walking/internal/api/handlers"
	"github.com/Eih3/walking/internal/api/middleware"
	"github.com/Eih3/walking/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	interactionHandler *handlers.InteractionHandler

	allowedOrigins []string
	adminSecret    string
	metrics        *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	interactionHandler *handlers.InteractionHandler,
	allowedOrigins []string,
	adminSecret string,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:                http.NewServeMux(),
		interactionHandler: interactionHandler,
		allowedOrigins:     allowedOrigins,
		adminSecret:        adminSecret,
		metrics:            metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	r.mux.HandleFunc("GET /health", r.interactionHandler.Health)

	// Landmark page events
	r.mux.HandleFunc("POST /events/landmarks/{landmarkID}/rating", r.interactionHandler.RateLandmark)
	r.mux.HandleFunc("POST /events/landmarks/{landmarkID}/review", r.interactionHandler.ReviewLandmark)
	r.mux.HandleFunc("POST /events/landmarks/{landmarkID}/image", r.interactionHandler.UploadImage)
	r.mux.HandleFunc("GET /events/landmarks/{landmarkID}/suggestions", r.interactionHandler.GetSuggestions)

	// Orphaned image ledger
	adminAuth := middleware.AdminAuthMiddleware(r.adminSecret)
	r.mux.Handle("GET /admin/orphaned-images", adminAuth(http.HandlerFunc(r.interactionHandler.ListOrphanedImages)))

	// Apply middleware in reverse order (last middleware wraps first)
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)

	// CORS wraps everything so preflight requests never reach the handlers
	handler = middleware.CORSMiddleware(r.allowedOrigins)(handler)

	return handler
}
