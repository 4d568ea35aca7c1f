package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
}

func TestCORSMiddleware(t *testing.T) {
	tests := []struct {
		name           string
		allowed        []string
		origin         string
		method         string
		wantOrigin     string
		wantStatusCode int
	}{
		{
			name:           "wildcard by default",
			allowed:        nil,
			origin:         "https://walks.example.com",
			method:         http.MethodGet,
			wantOrigin:     "*",
			wantStatusCode: http.StatusTeapot,
		},
		{
			name:           "listed origin is echoed",
			allowed:        []string{"https://walks.example.com"},
			origin:         "https://walks.example.com",
			method:         http.MethodPost,
			wantOrigin:     "https://walks.example.com",
			wantStatusCode: http.StatusTeapot,
		},
		{
			name:           "unlisted origin gets no header",
			allowed:        []string{"https://walks.example.com"},
			origin:         "https://evil.example.com",
			method:         http.MethodPost,
			wantOrigin:     "",
			wantStatusCode: http.StatusTeapot,
		},
		{
			name:           "preflight short circuits",
			allowed:        []string{"*"},
			origin:         "https://walks.example.com",
			method:         http.MethodOptions,
			wantOrigin:     "*",
			wantStatusCode: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/events/landmarks/7/rating", nil)
			req.Header.Set("Origin", tt.origin)
			w := httptest.NewRecorder()

			CORSMiddleware(tt.allowed)(okHandler()).ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatusCode, w.Code)
			assert.Equal(t, tt.wantOrigin, w.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestLoggingMiddleware_PassesStatusThrough(t *testing.T) {
	w := httptest.NewRecorder()
	LoggingMiddleware(okHandler()).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusTeapot, w.Code)
}

func TestObservabilityMiddleware_NilMetrics(t *testing.T) {
	mux := http.NewServeMux()
	mux.Handle("GET /events/landmarks/{landmarkID}/suggestions", okHandler())

	w := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		ObservabilityMiddleware(nil)(mux).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/events/landmarks/7/suggestions", nil))
	})
	assert.Equal(t, http.StatusTeapot, w.Code)
}
